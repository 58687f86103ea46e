// Package agent implements the file agent: given a project name and a task,
// it locates the project, reads the most relevant files and asks a model
// which files to change.
package agent

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"charon/internal/llm"
	"charon/internal/logging"
	"charon/internal/outline"
	"charon/internal/resolver"
	"charon/internal/session"

	"github.com/rs/zerolog"
)

// Name is the session name the agent runs under.
const Name = "file_agent"

const (
	defaultMaxFiles     = 3
	defaultMaxFileBytes = 16 << 10
)

var listMarker = regexp.MustCompile(`^\s*(?:[-*]|\d+[.)])\s+`)

// Config wires a FileAgent.
type Config struct {
	Root     string
	Resolver *resolver.Resolver
	Chat     llm.Chatter
	Outliner *outline.Outliner
	Tracker  *session.Tracker
	Logger   zerolog.Logger

	// MaxFiles caps how many files are read (default 3).
	MaxFiles int
	// MaxFileBytes caps how much of each file is sent to the model (default 16 KiB).
	MaxFileBytes int
}

// Report is the outcome of one Ask.
type Report struct {
	Result   resolver.Result `json:"result"`
	Selected []string        `json:"selected_files"`
	Answer   string          `json:"answer"`
}

// FileAgent answers "which files do I change for this task" questions.
type FileAgent struct {
	cfg Config
	log zerolog.Logger
}

// New creates a FileAgent.
func New(cfg Config) *FileAgent {
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = defaultMaxFiles
	}
	if cfg.MaxFileBytes <= 0 {
		cfg.MaxFileBytes = defaultMaxFileBytes
	}
	if cfg.Tracker == nil {
		cfg.Tracker = session.NewTracker(io.Discard, nil)
	}
	return &FileAgent{
		cfg: cfg,
		log: logging.Component(cfg.Logger, Name),
	}
}

// Ask resolves project under the configured root and asks the model which
// files to modify for task. A failed resolution returns the Result with an
// error and never calls the model.
func (a *FileAgent) Ask(ctx context.Context, project, task string) (Report, error) {
	tr := a.cfg.Tracker
	tr.Start(Name, fmt.Sprintf("%s: %s", project, task))
	defer func() {
		if err := tr.End(); err != nil {
			a.log.Warn().Err(err).Msg("saving session failed")
		}
	}()

	tr.Logf("Searching for folder: %s", project)
	res := a.cfg.Resolver.ResolveFolder(ctx, a.cfg.Root, project)
	rep := Report{Result: res}
	if !res.Success {
		tr.Print(res.Message, true)
		return rep, fmt.Errorf("resolve %q: %w", project, res.Err)
	}
	tr.Log(res.Message)
	if len(res.Files) == 0 {
		rep.Answer = fmt.Sprintf("Project %q has no source files to analyze.", res.ProjectName)
		tr.Print(rep.Answer, true)
		return rep, nil
	}

	tr.Log("Selecting relevant files")
	reply, err := a.cfg.Chat.Generate(ctx, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf(selectPrompt,
			res.ProjectName, res.FolderPath, res.TreeStructure,
			relativeList(res.Files, res.FolderPath), task, a.cfg.MaxFiles)},
	})
	if err != nil {
		return rep, fmt.Errorf("select files: %w", err)
	}
	rep.Selected = SelectFiles(reply, res.Files, res.FolderPath, a.cfg.MaxFiles)
	if len(rep.Selected) == 0 {
		a.log.Warn().Str("reply", reply).Msg("model named no listed file; using the first files")
		rep.Selected = firstN(res.Files, a.cfg.MaxFiles)
	}
	for _, f := range rep.Selected {
		tr.Logf("Reading %s", relative(f, res.FolderPath))
	}

	outlines := a.cfg.Outliner.Project(ctx, res.Files, 0)
	reply, err = a.cfg.Chat.Generate(ctx, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf(recommendPrompt,
			task, outline.Markdown(outlines, res.FolderPath), a.readFiles(rep.Selected, res.FolderPath))},
	})
	if err != nil {
		return rep, fmt.Errorf("recommend changes: %w", err)
	}
	rep.Answer = strings.TrimSpace(reply)
	tr.Print(rep.Answer, true)
	return rep, nil
}

// SelectFiles picks the files named in a model reply, one per line, keeping
// only paths that appear in files. Paths may be absolute or relative to
// folder and may carry list markers or backticks. At most limit are returned.
func SelectFiles(reply string, files []string, folder string, limit int) []string {
	known := make(map[string]string, len(files)*2)
	for _, f := range files {
		known[f] = f
		known[relative(f, folder)] = f
	}

	var out []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(reply, "\n") {
		line = listMarker.ReplaceAllString(line, "")
		line = strings.Trim(strings.TrimSpace(line), "`\"'")
		f, ok := known[filepath.ToSlash(line)]
		if !ok {
			f, ok = known[line]
		}
		if !ok || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
		if len(out) == limit {
			break
		}
	}
	return out
}

func (a *FileAgent) readFiles(paths []string, folder string) string {
	var b strings.Builder
	for _, p := range paths {
		content, err := readBounded(p, a.cfg.MaxFileBytes)
		if err != nil {
			a.log.Warn().Err(err).Str("file", p).Msg("read failed")
			fmt.Fprintf(&b, "--- %s ---\n(unreadable: %v)\n\n", relative(p, folder), err)
			continue
		}
		fmt.Fprintf(&b, "--- %s ---\n%s\n\n", relative(p, folder), content)
	}
	return b.String()
}

func readBounded(path string, limit int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf, err := io.ReadAll(io.LimitReader(f, int64(limit)+1))
	if err != nil {
		return "", err
	}
	if len(buf) > limit {
		return string(buf[:limit]) + "\n... (truncated)", nil
	}
	return string(buf), nil
}

func relativeList(files []string, folder string) string {
	var b strings.Builder
	for _, f := range files {
		b.WriteString(relative(f, folder))
		b.WriteByte('\n')
	}
	return b.String()
}

func relative(path, folder string) string {
	rel, err := filepath.Rel(folder, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func firstN(files []string, n int) []string {
	if len(files) < n {
		n = len(files)
	}
	return append([]string(nil), files[:n]...)
}
