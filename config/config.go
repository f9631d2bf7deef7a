package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DataDirName is the per-project directory holding the index and config.
	DataDirName = ".vectorconvert"
	// FileName is the project-level config file name.
	FileName = "vectorconvert.yaml"
)

// Config holds all configuration for vectorconvert.
type Config struct {
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ChunkingConfig holds chunking parameters. Sizes are in characters.
type ChunkingConfig struct {
	ChunkSize          int `yaml:"chunk_size"`
	ChunkOverlap       int `yaml:"chunk_overlap"`
	MinSubstantialSize int `yaml:"min_substantial_size"`
	MinMergeSize       int `yaml:"min_merge_size"`
}

// IngestConfig holds document discovery and ingestion settings.
type IngestConfig struct {
	Includes    []string `yaml:"includes"`
	Excludes    []string `yaml:"excludes"`
	Workers     int      `yaml:"workers"`
	UseChunking bool     `yaml:"use_chunking"` // false stores each document as a single chunk
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Provider  string `yaml:"provider"`    // "openai", "ollama", "mock"
	Model     string `yaml:"model"`       // e.g., "all-MiniLM-L6-v2"
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable for API key
	BaseURL   string `yaml:"base_url"`
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
	CacheSize int    `yaml:"cache_size"` // 0 disables the embedding cache
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

var knownProviders = []string{"openai", "ollama", "mock"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			ChunkSize:          1000,
			ChunkOverlap:       200,
			MinSubstantialSize: 100,
			MinMergeSize:       50,
		},
		Ingest: IngestConfig{
			Includes:    []string{"**/*.md", "**/*.markdown", "**/*.txt"},
			Excludes:    []string{"**/.git/**", "**/node_modules/**", "**/" + DataDirName + "/**"},
			Workers:     4,
			UseChunking: true,
		},
		Embedding: EmbeddingConfig{
			Enabled:   true,
			Provider:  "mock",
			Model:     "all-MiniLM-L6-v2",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 384,
			BatchSize: 2,
			CacheSize: 1024,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error

	if c.Chunking.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("chunking.chunk_size must be positive, got %d", c.Chunking.ChunkSize))
	}
	if c.Chunking.ChunkOverlap < 0 || c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		errs = append(errs, fmt.Errorf("chunking.chunk_overlap must be in [0, chunk_size), got %d", c.Chunking.ChunkOverlap))
	}
	if c.Ingest.Workers < 0 {
		errs = append(errs, fmt.Errorf("ingest.workers must not be negative, got %d", c.Ingest.Workers))
	}
	if c.Embedding.Enabled {
		if !isKnownProvider(c.Embedding.Provider) {
			errs = append(errs, fmt.Errorf("embedding.provider %q is not one of %s",
				c.Embedding.Provider, strings.Join(knownProviders, ", ")))
		}
		if c.Embedding.BatchSize <= 0 {
			errs = append(errs, fmt.Errorf("embedding.batch_size must be positive, got %d", c.Embedding.BatchSize))
		}
	}

	return errors.Join(errs...)
}

func isKnownProvider(name string) bool {
	for _, p := range knownProviders {
		if p == name {
			return true
		}
	}
	return false
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for vectorconvert.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, DataDirName, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// IndexDBPath returns the path to the index database.
func IndexDBPath(dir string) string {
	return filepath.Join(dir, DataDirName, "index.db")
}

// EnsureDataDir ensures the .vectorconvert directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, DataDirName), 0755)
}
