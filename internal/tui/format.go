package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"charon/internal/resolver"
)

// maxListedFiles caps the file list shown for one result.
const maxListedFiles = 50

// FormatResult renders a resolution as markdown.
func FormatResult(res resolver.Result) string {
	var b strings.Builder
	if !res.Success {
		fmt.Fprintf(&b, "**%s**\n", res.Message)
		for _, w := range res.Warnings {
			fmt.Fprintf(&b, "\n> %s", w)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "## %s\n\n", res.ProjectName)
	fmt.Fprintf(&b, "`%s`\n\n", res.FolderPath)
	b.WriteString(res.Message)
	if res.Provisional() {
		b.WriteString(" _(no name matched; showing the first folder found)_")
	}
	b.WriteString("\n\n")

	for i, f := range res.Files {
		if i == maxListedFiles {
			fmt.Fprintf(&b, "- ... and %d more\n", len(res.Files)-maxListedFiles)
			break
		}
		rel, err := filepath.Rel(res.FolderPath, f)
		if err != nil {
			rel = f
		}
		fmt.Fprintf(&b, "- %s\n", filepath.ToSlash(rel))
	}
	if res.TreeStructure != "" {
		fmt.Fprintf(&b, "\n```\n%s\n```\n", strings.TrimRight(res.TreeStructure, "\n"))
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(&b, "\n> %s\n", w)
	}
	return b.String()
}
