package resolver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"charon/internal/walker"

	"github.com/charmbracelet/lipgloss/tree"
)

// TreeRenderer produces a human-readable tree of a folder's contents.
type TreeRenderer interface {
	Render(ctx context.Context, path string) (string, error)
}

// SkipRenderer is implemented by renderers that can prune a per-call
// skip-set, such as one extended by a root's ignore file.
type SkipRenderer interface {
	RenderSkipping(ctx context.Context, path string, skip walker.SkipSet) (string, error)
}

// RendererFunc adapts a plain function to TreeRenderer.
type RendererFunc func(ctx context.Context, path string) (string, error)

func (f RendererFunc) Render(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

// Renderer kinds accepted by NewRenderer.
const (
	RendererNative = "native"
	RendererExec   = "exec"
)

// DefaultMaxEntries bounds native trees unless configured otherwise.
const DefaultMaxEntries = 500

// NewRenderer returns the renderer registered under kind. maxEntries bounds
// the native renderer; 0 means unbounded.
func NewRenderer(kind string, skip walker.SkipSet, maxEntries int) (TreeRenderer, error) {
	switch kind {
	case "", RendererNative:
		return &NativeRenderer{Skip: skip, MaxEntries: maxEntries}, nil
	case RendererExec:
		return &ExecRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown tree renderer %q", kind)
	}
}

// NativeRenderer draws the tree in-process. Hidden entries and skip-set
// directories are left out, the same way the scanner prunes them.
type NativeRenderer struct {
	Skip walker.SkipSet
	// MaxEntries bounds the number of rendered entries; 0 means unbounded.
	MaxEntries int
}

func (r *NativeRenderer) Render(ctx context.Context, path string) (string, error) {
	return r.RenderSkipping(ctx, path, r.Skip)
}

// RenderSkipping renders path pruning skip instead of r.Skip.
func (r *NativeRenderer) RenderSkipping(ctx context.Context, path string, skip walker.SkipSet) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", path)
	}

	count := 0
	var build func(dir string, t *tree.Tree) error
	build = func(dir string, t *tree.Tree) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			name := e.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}
			if e.IsDir() && skip.Has(name) {
				continue
			}
			if r.MaxEntries > 0 && count >= r.MaxEntries {
				t.Child("…")
				return nil
			}
			count++
			if e.IsDir() {
				sub := tree.Root(name + "/")
				if err := build(filepath.Join(dir, name), sub); err != nil && !isPermission(err) {
					return err
				}
				t.Child(sub)
				continue
			}
			t.Child(name)
		}
		return nil
	}

	root := tree.Root(filepath.Base(path) + "/")
	if err := build(path, root); err != nil {
		return "", err
	}
	return root.String() + "\n", nil
}

func isPermission(err error) bool {
	return errors.Is(err, fs.ErrPermission)
}

// ExecRenderer shells out to the external `tree` program.
type ExecRenderer struct {
	// Binary defaults to "tree".
	Binary string
	// Args are placed before the path; defaults to "-l" (follow symlinks).
	Args []string
}

func (r *ExecRenderer) Render(ctx context.Context, path string) (string, error) {
	return r.RenderSkipping(ctx, path, nil)
}

// RenderSkipping passes skip to tree as an -I pattern.
func (r *ExecRenderer) RenderSkipping(ctx context.Context, path string, skip walker.SkipSet) (string, error) {
	bin := r.Binary
	if bin == "" {
		bin = "tree"
	}
	args := r.Args
	if args == nil {
		args = []string{"-l"}
	}
	args = append([]string{}, args...)
	if len(skip) > 0 {
		names := skip.Names()
		sort.Strings(names)
		args = append(args, "-I", strings.Join(names, "|"))
	}
	cmd := exec.CommandContext(ctx, bin, append(args, path)...)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("run %s: %w", bin, err)
	}
	return string(out), nil
}
