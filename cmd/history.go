package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"charon/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagHistorySessions bool
	flagHistoryLimit    int
	flagHistoryJSON     bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent lookups or agent sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if a.store == nil {
			return fmt.Errorf("history store is disabled (store.enabled is false or the database could not be opened)")
		}
		out := cmd.OutOrStdout()

		if flagHistorySessions {
			sessions, err := a.store.ListSessions(flagHistoryLimit)
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			if flagHistoryJSON {
				return writeJSON(out, sessions)
			}
			printSessions(out, sessions)
			return nil
		}

		resolutions, err := a.store.ListResolutions(flagHistoryLimit)
		if err != nil {
			return fmt.Errorf("list resolutions: %w", err)
		}
		if flagHistoryJSON {
			return writeJSON(out, resolutions)
		}
		printResolutions(out, resolutions)
		return nil
	},
}

func init() {
	historyCmd.Flags().BoolVar(&flagHistorySessions, "sessions", false, "show agent sessions instead of lookups")
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "maximum number of entries")
	historyCmd.Flags().BoolVar(&flagHistoryJSON, "json", false, "print entries as JSON")
	rootCmd.AddCommand(historyCmd)
}

func printResolutions(w io.Writer, rs []store.Resolution) {
	if len(rs) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No lookups recorded yet."))
		return
	}
	for _, r := range rs {
		when := dimStyle.Render(r.CreatedAt.Local().Format("2006-01-02 15:04"))
		if !r.Success {
			fmt.Fprintf(w, "%s  %-5s %q %s\n", when, r.Source, r.Query, errorStyle.Render("not found"))
			continue
		}
		fmt.Fprintf(w, "%s  %-5s %q → %s %s\n", when, r.Source, r.Query,
			pathStyle.Render(r.FolderPath), dimStyle.Render(fmt.Sprintf("(%d files, score %d)", r.FileCount, r.Score)))
	}
}

func printSessions(w io.Writer, ss []store.Session) {
	if len(ss) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No sessions recorded yet."))
		return
	}
	for _, s := range ss {
		fmt.Fprintf(w, "%s  %s %s %s\n",
			dimStyle.Render(s.StartedAt.Local().Format("2006-01-02 15:04")),
			titleStyle.Render(s.Agent),
			s.Query,
			dimStyle.Render(fmt.Sprintf("(%s)", s.EndedAt.Sub(s.StartedAt).Round(100*time.Millisecond))))
		for _, line := range s.Transcript {
			first, _, _ := strings.Cut(line, "\n")
			fmt.Fprintln(w, "    "+dimStyle.Render("│")+" "+first)
		}
	}
}
