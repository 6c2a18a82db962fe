// Package config loads qanoon configuration: defaults, then an optional
// YAML file, then QANOON_* environment overrides, highest last.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full qanoon configuration.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Search  SearchConfig  `yaml:"search"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// PathsConfig locates the data directory and the glossary file.
type PathsConfig struct {
	// DataDir holds the corpus, indexes, and metadata database.
	DataDir string `yaml:"data_dir"`

	// Glossary is the YAML synonym file. Absence degrades expansion to
	// the built-in concept table only.
	Glossary string `yaml:"glossary"`
}

// SearchConfig tunes the ranking pipeline defaults. Per-request values
// still win.
type SearchConfig struct {
	// Alpha weights dense against lexical fusion, in [0,1].
	Alpha float64 `yaml:"alpha"`

	// LexicalK and VectorK are the candidate windows.
	LexicalK int `yaml:"lexical_k"`
	VectorK  int `yaml:"vector_k"`

	// TopK is the default result cap.
	TopK int `yaml:"topk"`

	// CacheSize bounds the query embedding cache.
	CacheSize int `yaml:"cache_size"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`

	// JWTSecret signs session tokens. Must be overridden outside
	// development.
	JWTSecret string `yaml:"jwt_secret"`

	// TokenTTL is the session token lifetime.
	TokenTTL time.Duration `yaml:"token_ttl"`

	// Watch enables corpus reload on data directory changes.
	Watch bool `yaml:"watch"`
}

// LoggingConfig configures structured log output.
type LoggingConfig struct {
	// Level is debug, info, warn, or error.
	Level string `yaml:"level"`

	// File is the rotated log destination; empty logs to stderr only.
	File string `yaml:"file"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			DataDir:  "data",
			Glossary: "configs/glossary.yaml",
		},
		Search: SearchConfig{
			Alpha:     0.7,
			LexicalK:  50,
			VectorK:   50,
			TopK:      5,
			CacheSize: 1000,
		},
		Server: ServerConfig{
			Addr:      ":8090",
			JWTSecret: "dev-secret-change-me",
			TokenTTL:  24 * time.Hour,
			Watch:     true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from path (optional) and the environment. An
// empty or missing path keeps the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies QANOON_* environment variables, the highest
// precedence layer.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("QANOON_DATA_DIR"); v != "" {
		c.Paths.DataDir = v
	}
	if v := os.Getenv("QANOON_GLOSSARY"); v != "" {
		c.Paths.Glossary = v
	}
	if v := os.Getenv("QANOON_ALPHA"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Search.Alpha = f
		}
	}
	if v := os.Getenv("QANOON_TOPK"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.TopK = n
		}
	}
	if v := os.Getenv("QANOON_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("QANOON_JWT_SECRET"); v != "" {
		c.Server.JWTSecret = v
	}
	if v := os.Getenv("QANOON_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("QANOON_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
}

// Validate rejects configurations the engine would reject per request
// anyway, failing startup instead of the first query.
func (c *Config) Validate() error {
	if c.Search.Alpha < 0 || c.Search.Alpha > 1 {
		return fmt.Errorf("search.alpha must be in [0,1], got %g", c.Search.Alpha)
	}
	if c.Search.TopK <= 0 {
		return fmt.Errorf("search.topk must be positive, got %d", c.Search.TopK)
	}
	if c.Search.LexicalK <= 0 || c.Search.VectorK <= 0 {
		return fmt.Errorf("candidate windows must be positive, got lexical_k=%d vector_k=%d", c.Search.LexicalK, c.Search.VectorK)
	}
	if c.Paths.DataDir == "" {
		return fmt.Errorf("paths.data_dir must not be empty")
	}
	return nil
}

// Data directory layout.

// ChunksPath is the corpus JSONL written by ingest.
func (c *Config) ChunksPath() string {
	return filepath.Join(c.Paths.DataDir, "chunks.jsonl")
}

// MetaPath is the metadata database.
func (c *Config) MetaPath() string {
	return filepath.Join(c.Paths.DataDir, "meta.db")
}

// LexicalIndexPath is the Bleve index directory.
func (c *Config) LexicalIndexPath() string {
	return filepath.Join(c.Paths.DataDir, "idx", "lexical.bleve")
}

// DenseIndexPath is the serialized HNSW graph.
func (c *Config) DenseIndexPath() string {
	return filepath.Join(c.Paths.DataDir, "idx", "dense.hnsw")
}

// LockPath is the ingest lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "ingest.lock")
}
