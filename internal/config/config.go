package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"charon/internal/walker"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all charon configuration. It is loaded from
// ~/.charon/config.yaml and can be overridden by CHARON_* environment variables.
type Config struct {
	FilesAgent FilesAgentConfig `mapstructure:"files_agent" yaml:"files_agent"`
	LLM        LLMConfig        `mapstructure:"llm" yaml:"llm"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Store      StoreConfig      `mapstructure:"store" yaml:"store"`
}

// FilesAgentConfig configures folder resolution and the file agent.
type FilesAgentConfig struct {
	// RootDirectory is the search boundary for project folders.
	RootDirectory string `mapstructure:"root_directory" yaml:"root_directory"`
	// SkipDirs are directory names never scanned or listed.
	SkipDirs []string `mapstructure:"skip_dirs" yaml:"skip_dirs"`
	// SourceExtensions is the allow-list for listed source files.
	SourceExtensions []string `mapstructure:"source_extensions" yaml:"source_extensions"`
	// TreeRenderer is "native" or "exec".
	TreeRenderer string `mapstructure:"tree_renderer" yaml:"tree_renderer"`
	// TreeMaxEntries bounds the native tree; 0 means unbounded.
	TreeMaxEntries int         `mapstructure:"tree_max_entries" yaml:"tree_max_entries"`
	Model          ModelConfig `mapstructure:"model" yaml:"model"`
}

// ModelConfig names the model used by an agent.
type ModelConfig struct {
	ModelID string `mapstructure:"model_id" yaml:"model_id"`
}

// LLMConfig points at the Ollama instance.
type LLMConfig struct {
	OllamaURL string `mapstructure:"ollama_url" yaml:"ollama_url"`
}

// LoggingConfig controls the zerolog output.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	// File receives JSON log lines in addition to the console; empty disables it.
	File string `mapstructure:"file" yaml:"file,omitempty"`
}

// StoreConfig controls the history database.
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	DBPath  string `mapstructure:"db_path" yaml:"db_path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		FilesAgent: FilesAgentConfig{
			RootDirectory:    filepath.Join(home, "projects"),
			SkipDirs:         append([]string(nil), walker.DefaultSkipDirs...),
			SourceExtensions: append([]string(nil), walker.DefaultExtensions...),
			TreeRenderer:     "native",
			TreeMaxEntries:   500,
			Model:            ModelConfig{ModelID: "qwen3:8b"},
		},
		LLM: LLMConfig{
			OllamaURL: "http://localhost:11434",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Store: StoreConfig{
			Enabled: true,
			DBPath:  "~/.charon/charon.db",
		},
	}
}

// DefaultPath returns ~/.charon/config.yaml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".charon", "config.yaml")
}

// Load reads configuration from path, or from DefaultPath when path is
// empty. A missing file is not an error: defaults and environment
// overrides still apply.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	path = ExpandPath(path)

	v := viper.New()
	setDefaults(v, Default())

	// Example: CHARON_FILES_AGENT_ROOT_DIRECTORY
	v.SetEnvPrefix("CHARON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.FilesAgent.RootDirectory = ExpandPath(cfg.FilesAgent.RootDirectory)
	cfg.Store.DBPath = ExpandPath(cfg.Store.DBPath)
	cfg.Logging.File = ExpandPath(cfg.Logging.File)

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys that
// are absent from the file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("files_agent.root_directory", d.FilesAgent.RootDirectory)
	v.SetDefault("files_agent.skip_dirs", d.FilesAgent.SkipDirs)
	v.SetDefault("files_agent.source_extensions", d.FilesAgent.SourceExtensions)
	v.SetDefault("files_agent.tree_renderer", d.FilesAgent.TreeRenderer)
	v.SetDefault("files_agent.tree_max_entries", d.FilesAgent.TreeMaxEntries)
	v.SetDefault("files_agent.model.model_id", d.FilesAgent.Model.ModelID)
	v.SetDefault("llm.ollama_url", d.LLM.OllamaURL)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("store.enabled", d.Store.Enabled)
	v.SetDefault("store.db_path", d.Store.DBPath)
}

// SaveToPath writes the configuration as YAML, creating parent directories.
func (c *Config) SaveToPath(path string) error {
	path = ExpandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for values the rest of charon rejects.
func (c *Config) Validate() error {
	if c.FilesAgent.RootDirectory == "" {
		return fmt.Errorf("files_agent.root_directory cannot be empty")
	}

	switch c.FilesAgent.TreeRenderer {
	case "", "native", "exec":
	default:
		return fmt.Errorf("invalid tree_renderer '%s', must be one of: native, exec", c.FilesAgent.TreeRenderer)
	}

	if c.FilesAgent.TreeMaxEntries < 0 {
		return fmt.Errorf("files_agent.tree_max_entries cannot be negative")
	}

	for _, ext := range c.FilesAgent.SourceExtensions {
		if strings.TrimSpace(ext) == "" {
			return fmt.Errorf("files_agent.source_extensions contains an empty entry")
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level '%s', must be one of: debug, info, warn, error", c.Logging.Level)
	}

	if c.Store.Enabled && c.Store.DBPath == "" {
		return fmt.Errorf("store.db_path cannot be empty when the store is enabled")
	}

	return nil
}

// ExpandPath expands a leading ~ or ~/ to the user's home directory. Other
// forms such as ~user are returned unchanged.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
