package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.FilesAgent.SkipDirs, cfg.FilesAgent.SkipDirs)
	assert.Equal(t, []string{".py", ".ipynb"}, cfg.FilesAgent.SourceExtensions)
	assert.Equal(t, "native", cfg.FilesAgent.TreeRenderer)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Store.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
files_agent:
  root_directory: /srv/code
  skip_dirs: [node_modules, target]
  source_extensions: [.go]
  tree_renderer: exec
  model:
    model_id: llama3
logging:
  level: debug
store:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/code", cfg.FilesAgent.RootDirectory)
	assert.Equal(t, []string{"node_modules", "target"}, cfg.FilesAgent.SkipDirs)
	assert.Equal(t, []string{".go"}, cfg.FilesAgent.SourceExtensions)
	assert.Equal(t, "exec", cfg.FilesAgent.TreeRenderer)
	assert.Equal(t, "llama3", cfg.FilesAgent.Model.ModelID)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Store.Enabled)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, "http://localhost:11434", cfg.LLM.OllamaURL)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CHARON_FILES_AGENT_ROOT_DIRECTORY", "/from/env")
	t.Setenv("CHARON_LOGGING_LEVEL", "warn")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.FilesAgent.RootDirectory)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("files_agent: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.FilesAgent.RootDirectory = "/work"
	require.NoError(t, cfg.SaveToPath(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/work", loaded.FilesAgent.RootDirectory)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty root", func(c *Config) { c.FilesAgent.RootDirectory = "" }},
		{"bad renderer", func(c *Config) { c.FilesAgent.TreeRenderer = "ascii" }},
		{"empty extension", func(c *Config) { c.FilesAgent.SourceExtensions = []string{" "} }},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }},
		{"store without path", func(c *Config) { c.Store.DBPath = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "code"), ExpandPath("~/code"))
	assert.Equal(t, "/abs", ExpandPath("/abs"))
	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, "~alice/x", ExpandPath("~alice/x"))
}

func TestTreeMaxEntries(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 500, cfg.FilesAgent.TreeMaxEntries)

	cfg.FilesAgent.TreeMaxEntries = -1
	assert.Error(t, cfg.Validate())
}
