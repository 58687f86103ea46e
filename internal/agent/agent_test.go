package agent

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"charon/internal/llm"
	"charon/internal/outline"
	"charon/internal/outline/languages"
	"charon/internal/resolver"
	"charon/internal/session"
	"charon/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	replies []string
	calls   [][]llm.Message
	err     error
}

func (f *fakeChat) Generate(_ context.Context, msgs []llm.Message) (string, error) {
	f.calls = append(f.calls, msgs)
	if f.err != nil {
		return "", f.err
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"project-charon/main.py":         "def main():\n    pass\n",
		"project-charon/agents/files.py": "class FileAgent:\n    def run(self):\n        pass\n",
		"project-charon/README.md":       "# charon\n",
		"other/x.py":                     "x = 1\n",
	}
	for rel, body := range files {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return root
}

func newAgent(root string, chat llm.Chatter, out *bytes.Buffer, sink session.Sink) *FileAgent {
	return New(Config{
		Root:     root,
		Resolver: resolver.New(resolver.Options{Renderer: resolver.RendererFunc(func(context.Context, string) (string, error) { return "TREE", nil })}),
		Chat:     chat,
		Outliner: outline.New(languages.Default()),
		Tracker:  session.NewTracker(out, sink),
	})
}

func TestAskHappyPath(t *testing.T) {
	root := writeProject(t)
	chat := &fakeChat{replies: []string{
		"- `agents/files.py`\nnot/a/file.py\n2. main.py\n",
		"Modify agents/files.py.",
	}}
	var out bytes.Buffer
	var saved []store.Session
	a := newAgent(root, chat, &out, func(s store.Session) error { saved = append(saved, s); return nil })

	rep, err := a.Ask(context.Background(), "charon", "add a dry-run flag")
	require.NoError(t, err)

	folder := filepath.Join(root, "project-charon")
	assert.Equal(t, folder, rep.Result.FolderPath)
	assert.Equal(t, []string{filepath.Join(folder, "agents", "files.py"), filepath.Join(folder, "main.py")}, rep.Selected)
	assert.Equal(t, "Modify agents/files.py.", rep.Answer)

	require.Len(t, chat.calls, 2)
	selectMsg := chat.calls[0][1].Content
	assert.Contains(t, selectMsg, "TREE")
	assert.Contains(t, selectMsg, "agents/files.py\n")
	assert.Contains(t, selectMsg, "Task: add a dry-run flag")

	final := chat.calls[1][1].Content
	assert.Contains(t, final, "--- agents/files.py ---\nclass FileAgent:")
	assert.Contains(t, final, "class `FileAgent`")
	assert.NotContains(t, final, "x = 1")

	assert.Contains(t, out.String(), "File Agent Session Started")
	require.Len(t, saved, 1)
	assert.Equal(t, Name, saved[0].Agent)
	assert.Equal(t, "Modify agents/files.py.", saved[0].Transcript[len(saved[0].Transcript)-1])
}

func TestAskProjectNotFound(t *testing.T) {
	chat := &fakeChat{}
	var out bytes.Buffer
	a := newAgent(filepath.Join(t.TempDir(), "missing"), chat, &out, nil)

	rep, err := a.Ask(context.Background(), "charon", "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, resolver.ErrPathNotFound)
	assert.False(t, rep.Result.Success)
	assert.Empty(t, chat.calls)
	assert.Contains(t, out.String(), "was not found")
}

func TestAskFallsBackToFirstFiles(t *testing.T) {
	root := writeProject(t)
	chat := &fakeChat{replies: []string{"I am not sure.", "ok"}}
	a := newAgent(root, chat, &bytes.Buffer{}, nil)
	a.cfg.MaxFiles = 1

	rep, err := a.Ask(context.Background(), "charon", "task")
	require.NoError(t, err)
	require.Len(t, rep.Selected, 1)
	assert.Equal(t, rep.Result.Files[0], rep.Selected[0])
}

func TestAskModelError(t *testing.T) {
	root := writeProject(t)
	a := newAgent(root, &fakeChat{err: errors.New("connection refused")}, &bytes.Buffer{}, nil)

	_, err := a.Ask(context.Background(), "charon", "task")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select files: connection refused")
}

func TestSelectFiles(t *testing.T) {
	files := []string{"/p/a.py", "/p/sub/b.py", "/p/c.py"}

	got := SelectFiles("1) sub/b.py\n* /p/a.py\nsub/b.py\nc.py", files, "/p", 2)
	assert.Equal(t, []string{"/p/sub/b.py", "/p/a.py"}, got)

	assert.Empty(t, SelectFiles("nothing useful", files, "/p", 3))
	assert.Equal(t, []string{"/p/c.py"}, SelectFiles("`c.py`", files, "/p", 3))
}

func TestReadBoundedTruncates(t *testing.T) {
	p := filepath.Join(t.TempDir(), "big.py")
	require.NoError(t, os.WriteFile(p, []byte(strings.Repeat("a", 50)), 0o644))

	got, err := readBounded(p, 10)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 10)+"\n... (truncated)", got)

	got, err = readBounded(p, 100)
	require.NoError(t, err)
	assert.Len(t, got, 50)
}
