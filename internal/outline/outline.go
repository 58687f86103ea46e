// Package outline extracts definition outlines (classes, functions, types)
// from source files with tree-sitter.
package outline

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// maxFileSize is the largest file that will be parsed (1 MB).
const maxFileSize = 1 << 20

// Symbol is one definition found in a file.
type Symbol struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	// Depth is the number of enclosing symbols; methods of a top-level class have depth 1.
	Depth int `json:"depth"`
}

// FileOutline is the outline of one file.
type FileOutline struct {
	Path     string   `json:"path"`
	Language string   `json:"language,omitempty"`
	Symbols  []Symbol `json:"symbols"`
	Err      string   `json:"error,omitempty"`
}

// Outliner parses files using the grammars in its registry.
type Outliner struct {
	registry *Registry
}

// New creates an outliner backed by the given registry.
func New(r *Registry) *Outliner {
	return &Outliner{registry: r}
}

// Outline parses src and returns its symbols in source order. Files without
// a registered grammar yield nil and no error.
func (o *Outliner) Outline(ctx context.Context, path string, src []byte) ([]Symbol, error) {
	spec := o.registry.Lookup(path)
	if spec == nil {
		return nil, nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(spec.Language)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	q, err := sitter.NewQuery([]byte(spec.Query), spec.Language)
	if err != nil {
		return nil, fmt.Errorf("compile query for %s: %w", spec.Name, err)
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, tree.RootNode())

	var found []span
	seen := make(map[[2]uint32]bool)
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		var node *sitter.Node
		var name string
		for _, c := range m.Captures {
			switch q.CaptureNameForId(c.Index) {
			case "symbol":
				node = c.Node
			case "name":
				name = c.Node.Content(src)
			}
		}
		if node == nil {
			continue
		}
		key := [2]uint32{node.StartByte(), node.EndByte()}
		if seen[key] {
			continue
		}
		seen[key] = true
		found = append(found, span{
			sym: Symbol{
				Name:      name,
				Kind:      kindOf(node.Type()),
				StartLine: int(node.StartPoint().Row) + 1,
				EndLine:   int(node.EndPoint().Row) + 1,
			},
			start: node.StartByte(),
			end:   node.EndByte(),
		})
	}

	return nest(found), nil
}

// OutlineFile reads and outlines a file from disk.
func (o *Outliner) OutlineFile(ctx context.Context, path string) FileOutline {
	fo := FileOutline{Path: path}
	spec := o.registry.Lookup(path)
	if spec == nil {
		return fo
	}
	fo.Language = spec.Name

	info, err := os.Stat(path)
	if err != nil {
		fo.Err = err.Error()
		return fo
	}
	if info.Size() > maxFileSize {
		fo.Err = "file too large to outline"
		return fo
	}
	src, err := os.ReadFile(path)
	if err != nil {
		fo.Err = err.Error()
		return fo
	}
	syms, err := o.Outline(ctx, path, src)
	if err != nil {
		fo.Err = err.Error()
		return fo
	}
	fo.Symbols = syms
	return fo
}

// Project outlines files with a pool of workers. The result has the same
// length and order as files. workers <= 0 means one per CPU.
func (o *Outliner) Project(ctx context.Context, files []string, workers int) []FileOutline {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	out := make([]FileOutline, len(files))
	jobs := make(chan int, workers)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					out[i] = FileOutline{Path: files[i], Err: ctx.Err().Error()}
					continue
				}
				out[i] = o.OutlineFile(ctx, files[i])
			}
		}()
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return out
}

// Markdown renders outlines as a nested list, paths relative to base.
func Markdown(outlines []FileOutline, base string) string {
	var b strings.Builder
	for _, fo := range outlines {
		if len(fo.Symbols) == 0 && fo.Err == "" {
			continue
		}
		path := strings.TrimPrefix(strings.TrimPrefix(fo.Path, base), "/")
		fmt.Fprintf(&b, "- `%s`\n", path)
		if fo.Err != "" {
			fmt.Fprintf(&b, "  - (error: %s)\n", fo.Err)
			continue
		}
		for _, s := range fo.Symbols {
			fmt.Fprintf(&b, "%s- %s `%s` (lines %d-%d)\n",
				strings.Repeat("  ", s.Depth+1), s.Kind, s.Name, s.StartLine, s.EndLine)
		}
	}
	return b.String()
}

type span struct {
	sym        Symbol
	start, end uint32
}

// nest sorts spans by position and sets each symbol's depth from the spans
// that enclose it.
func nest(spans []span) []Symbol {
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	var stack []span
	syms := make([]Symbol, 0, len(spans))
	for _, s := range spans {
		for len(stack) > 0 && stack[len(stack)-1].end <= s.start {
			stack = stack[:len(stack)-1]
		}
		s.sym.Depth = len(stack)
		syms = append(syms, s.sym)
		stack = append(stack, s)
	}
	return syms
}

func kindOf(nodeType string) string {
	switch nodeType {
	case "function_definition", "function_declaration":
		return "function"
	case "class_definition", "class_declaration":
		return "class"
	case "method_declaration", "method_definition":
		return "method"
	case "type_spec", "type_alias_declaration":
		return "type"
	case "interface_declaration":
		return "interface"
	case "variable_declarator":
		return "function"
	default:
		return nodeType
	}
}
