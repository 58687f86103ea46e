package outline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"charon/internal/outline"
	"charon/internal/outline/languages"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pySource = `import os


class Loader:
    def __init__(self, path):
        self.path = path

    def load(self):
        return open(self.path).read()


def main():
    Loader("x").load()
`

func TestOutlinePython(t *testing.T) {
	o := outline.New(languages.Default())

	syms, err := o.Outline(context.Background(), "app/main.py", []byte(pySource))
	require.NoError(t, err)
	require.Len(t, syms, 4)

	assert.Equal(t, outline.Symbol{Name: "Loader", Kind: "class", StartLine: 4, EndLine: 9, Depth: 0}, syms[0])
	assert.Equal(t, "__init__", syms[1].Name)
	assert.Equal(t, "function", syms[1].Kind)
	assert.Equal(t, 1, syms[1].Depth)
	assert.Equal(t, "load", syms[2].Name)
	assert.Equal(t, 1, syms[2].Depth)
	assert.Equal(t, outline.Symbol{Name: "main", Kind: "function", StartLine: 12, EndLine: 13, Depth: 0}, syms[3])
}

func TestOutlineGo(t *testing.T) {
	o := outline.New(languages.Default())
	src := "package x\n\ntype T struct{}\n\nfunc (t T) M() {}\n\nfunc F() {}\n"

	syms, err := o.Outline(context.Background(), "x.go", []byte(src))
	require.NoError(t, err)

	var names []string
	for _, s := range syms {
		names = append(names, s.Kind+":"+s.Name)
	}
	assert.Equal(t, []string{"type:T", "method:M", "function:F"}, names)
}

func TestOutlineUnknownExtension(t *testing.T) {
	o := outline.New(languages.Default())
	syms, err := o.Outline(context.Background(), "notes.txt", []byte("hello"))
	require.NoError(t, err)
	assert.Nil(t, syms)
}

func TestProjectKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.py")
	b := filepath.Join(dir, "b.txt")
	c := filepath.Join(dir, "c.py")
	missing := filepath.Join(dir, "gone.py")
	require.NoError(t, os.WriteFile(a, []byte("def a():\n    pass\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("text"), 0o644))
	require.NoError(t, os.WriteFile(c, []byte("class C:\n    pass\n"), 0o644))

	o := outline.New(languages.Default())
	got := o.Project(context.Background(), []string{a, b, c, missing}, 2)
	require.Len(t, got, 4)

	assert.Equal(t, a, got[0].Path)
	assert.Equal(t, "python", got[0].Language)
	require.Len(t, got[0].Symbols, 1)
	assert.Equal(t, "a", got[0].Symbols[0].Name)

	assert.Equal(t, b, got[1].Path)
	assert.Empty(t, got[1].Language)
	assert.Empty(t, got[1].Symbols)

	assert.Equal(t, "C", got[2].Symbols[0].Name)
	assert.NotEmpty(t, got[3].Err)
}

func TestMarkdown(t *testing.T) {
	md := outline.Markdown([]outline.FileOutline{
		{Path: "/p/a.py", Symbols: []outline.Symbol{
			{Name: "A", Kind: "class", StartLine: 1, EndLine: 4},
			{Name: "run", Kind: "function", StartLine: 2, EndLine: 4, Depth: 1},
		}},
		{Path: "/p/empty.py"},
		{Path: "/p/bad.py", Err: "boom"},
	}, "/p")

	assert.Equal(t, "- `a.py`\n"+
		"  - class `A` (lines 1-4)\n"+
		"    - function `run` (lines 2-4)\n"+
		"- `bad.py`\n"+
		"  - (error: boom)\n", md)
}

func TestRegistryExtensions(t *testing.T) {
	r := languages.Default()
	exts := r.Extensions()
	assert.Contains(t, exts, ".py")
	assert.Contains(t, exts, ".go")
	assert.Nil(t, r.Lookup("Makefile"))
	assert.Equal(t, "python", r.Lookup("X.PY").Name)
}
