package cmd

import (
	"fmt"

	"charon/internal/outline"
	"charon/internal/outline/languages"

	"github.com/spf13/cobra"
)

var (
	flagOutlineJSON    bool
	flagOutlineWorkers int
)

var outlineCmd = &cobra.Command{
	Use:   "outline <name...>",
	Short: "Show the classes and functions defined in a project",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := resolveOrReport(cmd.Context(), a, args, cmd.ErrOrStderr(), "cli")
		if err != nil {
			return err
		}

		outlines := outline.New(languages.Default()).Project(cmd.Context(), res.Files, flagOutlineWorkers)
		if flagOutlineJSON {
			return writeJSON(cmd.OutOrStdout(), outlines)
		}
		md := fmt.Sprintf("# %s\n\n%s", res.ProjectName, outline.Markdown(outlines, res.FolderPath))
		fmt.Fprintln(cmd.OutOrStdout(), renderMarkdown(md))
		return nil
	},
}

func init() {
	outlineCmd.Flags().BoolVar(&flagOutlineJSON, "json", false, "print the outline as JSON")
	outlineCmd.Flags().IntVar(&flagOutlineWorkers, "workers", 0, "parallel parsers (default: one per CPU)")
	rootCmd.AddCommand(outlineCmd)
}
