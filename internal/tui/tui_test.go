package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"charon/internal/resolver"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResolver() *resolver.Resolver {
	return resolver.New(resolver.Options{
		Renderer: resolver.RendererFunc(func(context.Context, string) (string, error) { return "demo\n└── app.py", nil }),
	})
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model)
}

func typeLine(m Model, line string) (Model, tea.Cmd) {
	m.input.SetValue(line)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func TestSearchFlow(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "demo"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "demo", "app.py"), nil, 0o644))

	var recorded []string
	cfg := Config{Root: root, Resolver: testResolver(), Record: func(q string, res resolver.Result) {
		recorded = append(recorded, q)
	}}
	m := sized(t, New(cfg))

	m, cmd := typeLine(m, "demo")
	require.NotNil(t, cmd)
	assert.Equal(t, stateSearching, m.state)
	assert.Empty(t, m.input.Value())

	msg := resolve(cfg, "demo")()
	next, _ := m.Update(msg)
	m = next.(Model)

	assert.Equal(t, stateIdle, m.state)
	assert.Equal(t, []string{"demo"}, recorded)
	require.Len(t, m.entries, 2)
	assert.Equal(t, "result", m.entries[1].role)
	assert.Contains(t, m.entries[1].content, "## demo")
	assert.Contains(t, m.entries[1].content, "- app.py")
}

func TestCommands(t *testing.T) {
	m := sized(t, New(Config{Root: "/nowhere", Resolver: testResolver()}))

	m, _ = typeLine(m, "/help")
	require.Len(t, m.entries, 1)
	assert.Equal(t, "system", m.entries[0].role)

	m, _ = typeLine(m, "/ask charon add tests")
	require.Len(t, m.entries, 2)
	assert.Equal(t, "error", m.entries[1].role)
	assert.Equal(t, stateIdle, m.state)

	m, _ = typeLine(m, "/clear")
	assert.Empty(t, m.entries)

	_, cmd := typeLine(m, "/exit")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestKeysIgnoredWhileBusy(t *testing.T) {
	m := sized(t, New(Config{Root: "/nowhere", Resolver: testResolver()}))
	m, _ = typeLine(m, "demo")
	m, cmd := typeLine(m, "again")
	assert.Nil(t, cmd)
	assert.Len(t, m.entries, 1)
}

func TestFormatResult(t *testing.T) {
	ok := FormatResult(resolver.Result{
		Success:       true,
		ProjectName:   "demo",
		FolderPath:    "/r/demo",
		Files:         []string{"/r/demo/app.py", "/r/demo/pkg/mod.py"},
		TreeStructure: "demo\n",
		Message:       `Found project "demo" with 2 source files.`,
		Exact:         true,
		Score:         1,
	})
	assert.Contains(t, ok, "## demo")
	assert.Contains(t, ok, "- pkg/mod.py\n")
	assert.Contains(t, ok, "```\ndemo\n```")
	assert.NotContains(t, ok, "no name matched")

	provisional := FormatResult(resolver.Result{Success: true, ProjectName: "a", FolderPath: "/r/a", Message: "m"})
	assert.Contains(t, provisional, "no name matched")

	failed := FormatResult(resolver.Result{Message: `No folder named "x" was found.`, Warnings: []string{"w"}})
	assert.Equal(t, "**No folder named \"x\" was found.**\n\n> w", failed)
}
