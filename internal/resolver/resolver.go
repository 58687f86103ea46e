// Package resolver finds a project folder under a root directory from a
// free-text name and reports what is inside it.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"charon/internal/logging"
	"charon/internal/walker"

	"github.com/rs/zerolog"
)

var (
	// ErrPathNotFound is returned when the root does not exist or is not a directory.
	ErrPathNotFound = walker.ErrPathNotFound
	// ErrEmptyCandidateSet is returned when the root holds no eligible subdirectory.
	ErrEmptyCandidateSet = errors.New("no candidate folders")
	// ErrBlankQuery is returned when the query has no tokens.
	ErrBlankQuery = errors.New("blank query")
)

// Result describes one resolution. It is the payload handed to callers such
// as the CLI, the MCP tool and the file agent.
type Result struct {
	Success       bool     `json:"success"`
	ProjectName   string   `json:"project_name"`
	FolderPath    string   `json:"folder_path"`
	Files         []string `json:"files"`
	TreeStructure string   `json:"tree_structure"`
	Message       string   `json:"message"`
	Score         int      `json:"score"`
	Exact         bool     `json:"exact"`
	Warnings      []string `json:"warnings,omitempty"`

	// Err is the failure cause for unsuccessful results.
	Err error `json:"-"`
}

// Provisional reports whether a successful result came from the zero-score
// fallback rather than an actual token hit.
func (r Result) Provisional() bool {
	return r.Success && !r.Exact && r.Score == 0
}

// Options configures a Resolver.
type Options struct {
	SkipDirs   []string
	Extensions []string
	Renderer   TreeRenderer
	Logger     zerolog.Logger
}

// Resolver holds configuration only; every call re-walks the filesystem.
type Resolver struct {
	skip     walker.SkipSet
	exts     []string
	renderer TreeRenderer
	log      zerolog.Logger
}

// New creates a Resolver. Empty SkipDirs and Extensions fall back to the
// walker defaults; a nil Renderer falls back to the native renderer.
func New(opts Options) *Resolver {
	skipDirs := opts.SkipDirs
	if len(skipDirs) == 0 {
		skipDirs = walker.DefaultSkipDirs
	}
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = walker.DefaultExtensions
	}
	skip := walker.NewSkipSet(skipDirs...)

	renderer := opts.Renderer
	if renderer == nil {
		renderer = &NativeRenderer{Skip: skip, MaxEntries: DefaultMaxEntries}
	}

	return &Resolver{
		skip:     skip,
		exts:     exts,
		renderer: renderer,
		log:      logging.Component(opts.Logger, "resolver"),
	}
}

// skipFor merges the configured skip-set with the root's ignore file.
func (r *Resolver) skipFor(root string) walker.SkipSet {
	extra := walker.LoadIgnoreFile(root)
	if len(extra) == 0 {
		return r.skip
	}
	return r.skip.Merge(extra...)
}

// Candidates returns every eligible folder under root in scan order.
func (r *Resolver) Candidates(root string) ([]string, error) {
	candidates, warnings, err := walker.Scan(root, r.skipFor(root))
	r.logWarnings(warnings)
	return candidates, err
}

// Find runs the scanner and matcher without building a report.
func (r *Resolver) Find(root, query string) (Match, []walker.Warning, error) {
	return r.find(root, query, r.skipFor(root))
}

func (r *Resolver) find(root, query string, skip walker.SkipSet) (Match, []walker.Warning, error) {
	if len(Tokenize(query)) == 0 {
		return Match{}, nil, ErrBlankQuery
	}
	candidates, warnings, err := walker.Scan(root, skip)
	if err != nil {
		return Match{}, warnings, err
	}
	m, ok := MatchFolder(candidates, query)
	if !ok {
		return Match{}, warnings, ErrEmptyCandidateSet
	}
	return m, warnings, nil
}

// ListSourceFiles returns the source files under folder in traversal order,
// honouring the ignore file of root.
func (r *Resolver) ListSourceFiles(root, folder string) ([]string, []walker.Warning, error) {
	return walker.SourceFiles(folder, r.exts, r.skipFor(root))
}

// RenderTree renders folder with the ignore file of root applied, returning
// "" if the renderer fails.
func (r *Resolver) RenderTree(ctx context.Context, root, folder string) string {
	return r.renderTree(ctx, folder, r.skipFor(root))
}

func (r *Resolver) renderTree(ctx context.Context, folder string, skip walker.SkipSet) string {
	var out string
	var err error
	if sr, ok := r.renderer.(SkipRenderer); ok {
		out, err = sr.RenderSkipping(ctx, folder, skip)
	} else {
		out, err = r.renderer.Render(ctx, folder)
	}
	if err != nil {
		r.log.Warn().Err(err).Str("folder", folder).Msg("tree rendering failed")
		return ""
	}
	return out
}

// ResolveFolder finds the folder under root that best matches query and
// describes it. It never returns an error: failures are reported through
// Result.Success, Result.Message and Result.Err.
func (r *Resolver) ResolveFolder(ctx context.Context, root, query string) Result {
	r.log.Debug().Str("root", root).Str("query", query).Msg("resolving folder")

	skip := r.skipFor(root)
	m, warnings, err := r.find(root, query, skip)
	if err != nil {
		res := notFound(root, query, err)
		res.Warnings = warningStrings(warnings)
		r.logWarnings(warnings)
		r.log.Info().Err(err).Str("query", query).Msg("folder not found")
		return res
	}
	r.logWarnings(warnings)

	if m.Score == 0 && !m.Exact {
		r.log.Warn().Str("query", query).Str("path", m.Path).Msg("no token matched; returning first candidate")
	} else {
		r.log.Info().Str("path", m.Path).Int("score", m.Score).Bool("exact", m.Exact).Msg("found folder")
	}

	res := r.describe(ctx, m.Path, skip)
	res.Score = m.Score
	res.Exact = m.Exact
	res.Warnings = append(warningStrings(warnings), res.Warnings...)
	return res
}

// Describe reports on a folder under root that has already been chosen.
func (r *Resolver) Describe(ctx context.Context, root, folder string) Result {
	return r.describe(ctx, folder, r.skipFor(root))
}

func (r *Resolver) describe(ctx context.Context, folder string, skip walker.SkipSet) Result {
	files, warnings, err := walker.SourceFiles(folder, r.exts, skip)
	if err != nil {
		return notFound(filepath.Dir(folder), filepath.Base(folder), err)
	}
	r.logWarnings(warnings)
	if files == nil {
		files = []string{}
	}

	name := filepath.Base(folder)
	return Result{
		Success:       true,
		ProjectName:   name,
		FolderPath:    folder,
		Files:         files,
		TreeStructure: r.renderTree(ctx, folder, skip),
		Message:       fmt.Sprintf("Found project %q with %d source files.", name, len(files)),
		Warnings:      warningStrings(warnings),
	}
}

func notFound(root, query string, err error) Result {
	msg := fmt.Sprintf("No folder named %q was found.", query)
	if errors.Is(err, ErrPathNotFound) {
		msg = fmt.Sprintf("Root directory %q was not found.", root)
	}
	return Result{
		Success:       false,
		Files:         []string{},
		TreeStructure: fmt.Sprintf("Folder %q not found in %s", query, root),
		Message:       msg,
		Err:           err,
	}
}

func (r *Resolver) logWarnings(warnings []walker.Warning) {
	for _, w := range warnings {
		r.log.Warn().Err(w.Err).Str("path", w.Path).Msg("skipped unreadable directory")
	}
}

func warningStrings(warnings []walker.Warning) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.String()
	}
	return out
}

// QueryFromArgs joins CLI arguments into one query.
func QueryFromArgs(args []string) string {
	return strings.Join(args, " ")
}
