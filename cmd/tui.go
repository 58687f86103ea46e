package cmd

import (
	"io"

	"charon/internal/resolver"
	"charon/internal/session"
	"charon/internal/tui"

	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive finder (the default command)",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	// The alt screen owns the terminal; the session panels only go to the store.
	tracker := session.NewTracker(io.Discard, session.StoreSink(a.store))
	return tui.Run(tui.Config{
		Root:     a.root(),
		Resolver: a.resolver,
		Agent:    newFileAgent(a, tracker),
		Record:   func(q string, res resolver.Result) { a.record("tui", q, res) },
	})
}
