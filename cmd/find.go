package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"charon/internal/resolver"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"
)

// errNotResolved signals a failed lookup whose message was already printed.
var errNotResolved = errors.New("folder not resolved")

var (
	flagFindJSON bool
	flagFindPick bool
)

var findCmd = &cobra.Command{
	Use:   "find <name...>",
	Short: "Find the project folder best matching a name",
	Long: `Find searches the root directory for the folder whose name best matches
the given words, then lists its source files and draws its tree.

With --pick, an interactive fuzzy finder over every candidate folder is
opened instead, pre-filled with the given words.`,
	RunE: runFind,
}

func init() {
	findCmd.Flags().BoolVar(&flagFindJSON, "json", false, "print the result as JSON")
	findCmd.Flags().BoolVar(&flagFindPick, "pick", false, "choose the folder interactively")
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	query := resolver.QueryFromArgs(args)
	if !flagFindPick && query == "" {
		return fmt.Errorf("a folder name is required (or use --pick)")
	}

	var res resolver.Result
	if flagFindPick {
		folder, err := pickFolder(cmd.Context(), a, query)
		if err != nil {
			return err
		}
		res = a.resolver.Describe(cmd.Context(), a.root(), folder)
	} else {
		res = a.resolver.ResolveFolder(cmd.Context(), a.root(), query)
	}
	a.record("cli", query, res)

	out := cmd.OutOrStdout()
	if flagFindJSON {
		if err := writeJSON(out, res); err != nil {
			return err
		}
	} else {
		printResult(out, res)
	}
	if !res.Success {
		return errNotResolved
	}
	return nil
}

// pickFolder opens a fuzzy finder over every candidate under the root with a
// tree preview of the highlighted folder.
func pickFolder(ctx context.Context, a *app, query string) (string, error) {
	candidates, err := a.resolver.Candidates(a.root())
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", resolver.ErrEmptyCandidateSet
	}

	labels := make([]string, len(candidates))
	for i, c := range candidates {
		rel, err := filepath.Rel(a.root(), c)
		if err != nil {
			rel = c
		}
		labels[i] = rel
	}

	options := []fuzzyfinder.Option{
		fuzzyfinder.WithHeader("Pick a project folder"),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			return a.resolver.RenderTree(ctx, a.root(), candidates[i])
		}),
	}
	if query != "" {
		options = append(options, fuzzyfinder.WithQuery(query))
	}

	idx, err := fuzzyfinder.Find(candidates, func(i int) string { return labels[i] }, options...)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", fmt.Errorf("no folder selected")
		}
		return "", fmt.Errorf("select folder: %w", err)
	}
	return candidates[idx], nil
}
