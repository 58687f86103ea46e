package session

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"charon/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	var buf bytes.Buffer
	var saved []store.Session
	tr := NewTracker(&buf, func(s store.Session) error {
		saved = append(saved, s)
		return nil
	})

	id := tr.Start("file_agent", "find charon")
	require.NotEmpty(t, id)
	assert.NotNil(t, tr.active)

	tr.Log("Searching for folder: charon")
	tr.Print("Primary files: main.py", true)
	require.NoError(t, tr.End())

	out := buf.String()
	assert.Contains(t, out, "File Agent Session Started")
	assert.Contains(t, out, "Query: find charon")
	assert.Contains(t, out, "│ Searching for folder: charon")
	assert.Contains(t, out, "Primary files: main.py")
	assert.Contains(t, out, "File Agent completed")
	assert.Nil(t, tr.active)

	require.Len(t, saved, 1)
	assert.Equal(t, id, saved[0].ID)
	assert.Equal(t, "find charon", saved[0].Query)
	assert.Equal(t, []string{"Searching for folder: charon", "Primary files: main.py"}, saved[0].Transcript)
	assert.False(t, saved[0].EndedAt.Before(saved[0].StartedAt))
}

func TestLogWithoutSession(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTracker(&buf, nil)

	tr.Logf("Folder %q not found", "x")
	tr.Print("plain", false)

	assert.Contains(t, buf.String(), `Folder "x" not found`)
	assert.Contains(t, buf.String(), "plain")
	assert.NotContains(t, buf.String(), "│")
	assert.NoError(t, tr.End())
}

func TestStartEndsPreviousSession(t *testing.T) {
	var buf bytes.Buffer
	var agents []string
	tr := NewTracker(&buf, func(s store.Session) error {
		agents = append(agents, s.Agent)
		return nil
	})
	tr.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	tr.Start("book_agent", "a")
	tr.Start("unknown_agent", "b")
	require.NoError(t, tr.End())

	assert.Equal(t, []string{"book_agent", "unknown_agent"}, agents)
	assert.Contains(t, buf.String(), "unknown_agent Session Started")
}

func TestEndReturnsSinkError(t *testing.T) {
	tr := NewTracker(&bytes.Buffer{}, func(store.Session) error { return errors.New("disk full") })
	tr.Start("file_agent", "q")
	assert.EqualError(t, tr.End(), "disk full")
}

func TestStoreSinkNil(t *testing.T) {
	assert.Nil(t, StoreSink(nil))
}
