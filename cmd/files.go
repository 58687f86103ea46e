package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "files <name...>",
	Short: "List the source files of the best matching project folder",
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
		for _, f := range res.Files {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
		return nil
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree <name...>",
	Short: "Draw the directory tree of the best matching project folder",
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
		fmt.Fprintln(cmd.OutOrStdout(), res.TreeStructure)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(treeCmd)
}
