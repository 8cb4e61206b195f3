// Package config provides configuration loading and structs for semdex.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Indexing  IndexingConfig  `yaml:"indexing"`
	Search    SearchConfig    `yaml:"search"`
	Server    ServerConfig    `yaml:"server"`
	Watch     WatchConfig     `yaml:"watch"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// StorageConfig holds paths for the record store and the keyword sidecar.
type StorageConfig struct {
	DatabasePath     string `yaml:"database_path"`
	KeywordIndexPath string `yaml:"keyword_index_path"`
	KeywordEnabled   *bool  `yaml:"keyword_enabled"`
}

// KeywordEnabledOrDefault returns whether the keyword sidecar is on;
// defaults to true when unset.
func (s *StorageConfig) KeywordEnabledOrDefault() bool {
	if s.KeywordEnabled != nil {
		return *s.KeywordEnabled
	}
	return true
}

// EmbeddingConfig selects and tunes the embedding provider.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // ollama, onnx, or mock
	Dimensions int    `yaml:"dimensions"`
	CacheSize  int    `yaml:"cache_size"`

	// Ollama provider.
	OllamaURL      string `yaml:"ollama_url"`
	OllamaModel    string `yaml:"ollama_model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`

	// ONNX provider.
	ModelPath   string `yaml:"model_path"`
	LibraryPath string `yaml:"library_path"`
	MaxTokens   int    `yaml:"max_tokens"`
}

// IndexingConfig tunes the ingestion pipeline.
type IndexingConfig struct {
	Workers     int      `yaml:"workers"`
	OnDuplicate string   `yaml:"on_duplicate"` // reject or replace
	IgnoreDirs  []string `yaml:"ignore_dirs"`
}

// SearchConfig holds query-side limits.
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// WatchConfig holds watch mode settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	DebounceMs  int      `yaml:"debounce_ms"`
}

// Load reads and parses the config file at path, applies defaults, and
// expands paths. An empty path falls back to ./semdex.yaml, then
// ~/.config/semdex/config.yaml; when neither exists the defaults alone
// apply.
func Load(path string) (*Config, error) {
	if path == "" {
		path = findConfig()
	}
	if path == "" {
		cfg := &Config{}
		ApplyDefaults(cfg)
		expandPaths(cfg, ".")
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	expandPaths(&cfg, filepath.Dir(path))
	return &cfg, nil
}

func findConfig() string {
	candidates := []string{"semdex.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "semdex", "config.yaml"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func expandPaths(cfg *Config, configDir string) {
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.KeywordIndexPath = expandPath(cfg.Storage.KeywordIndexPath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
