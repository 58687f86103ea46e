package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"charon/internal/resolver"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult writes a human-readable report of a resolution.
func printResult(w io.Writer, res resolver.Result) {
	for _, warn := range res.Warnings {
		fmt.Fprintln(w, warnStyle.Render("warning: "+warn))
	}
	if !res.Success {
		fmt.Fprintln(w, errorStyle.Render(res.Message))
		return
	}

	fmt.Fprintln(w, titleStyle.Render(res.ProjectName)+" "+pathStyle.Render(res.FolderPath))
	msg := successStyle.Render(res.Message)
	if res.Provisional() {
		msg = warnStyle.Render(res.Message + " No name matched; this is the first folder found.")
	}
	fmt.Fprintln(w, msg)

	if len(res.Files) > 0 {
		fmt.Fprintln(w)
		for _, f := range res.Files {
			fmt.Fprintln(w, "  "+relTo(res.FolderPath, f))
		}
	}
	if res.TreeStructure != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, dimStyle.Render(strings.TrimRight(res.TreeStructure, "\n")))
	}
}

func relTo(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// resolveOrReport resolves args against the root and records the lookup. A
// failed lookup prints its message to errOut and returns errNotResolved.
func resolveOrReport(ctx context.Context, a *app, args []string, errOut io.Writer, source string) (resolver.Result, error) {
	query := resolver.QueryFromArgs(args)
	res := a.resolver.ResolveFolder(ctx, a.root(), query)
	a.record(source, query, res)
	if !res.Success {
		fmt.Fprintln(errOut, errorStyle.Render(res.Message))
		return res, errNotResolved
	}
	return res, nil
}
