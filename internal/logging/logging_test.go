package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log, closeFn, err := New(Config{Level: "warn", Console: &buf, NoColor: true})
	require.NoError(t, err)
	defer closeFn()

	log.Info().Msg("quiet")
	log.Warn().Msg("loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log, _, err := New(Config{Level: "chatty", Console: &buf, NoColor: true})
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "charon.log")
	var buf bytes.Buffer
	log, closeFn, err := New(Config{Level: "info", File: path, Console: &buf, NoColor: true})
	require.NoError(t, err)

	Component(log, "resolver").Info().Str("query", "alpha").Msg("found folder")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"resolver"`)
	assert.Contains(t, string(data), `"query":"alpha"`)
}
