package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Chunking.ChunkSize != 1000 {
		t.Errorf("expected ChunkSize=1000, got %d", cfg.Chunking.ChunkSize)
	}
	if cfg.Chunking.ChunkOverlap != 200 {
		t.Errorf("expected ChunkOverlap=200, got %d", cfg.Chunking.ChunkOverlap)
	}
	if cfg.Chunking.MinMergeSize != 50 {
		t.Errorf("expected MinMergeSize=50, got %d", cfg.Chunking.MinMergeSize)
	}
	if cfg.Embedding.BatchSize != 2 {
		t.Errorf("expected BatchSize=2, got %d", cfg.Embedding.BatchSize)
	}
	if !cfg.Ingest.UseChunking {
		t.Error("expected UseChunking=true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)

	content := `
chunking:
  chunk_size: 500
  chunk_overlap: 50
ingest:
  use_chunking: false
embedding:
  provider: ollama
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Chunking.ChunkSize != 500 {
		t.Errorf("expected ChunkSize=500, got %d", cfg.Chunking.ChunkSize)
	}
	if cfg.Chunking.MinSubstantialSize != 100 {
		t.Errorf("unset fields should keep defaults, got MinSubstantialSize=%d", cfg.Chunking.MinSubstantialSize)
	}
	if cfg.Ingest.UseChunking {
		t.Error("expected UseChunking=false")
	}
	if cfg.Embedding.Provider != "ollama" {
		t.Errorf("expected Provider=ollama, got %s", cfg.Embedding.Provider)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("chunking: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	if err := EnsureDataDir(tmpDir); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(tmpDir, DataDirName, "config.yaml")

	content := `
embedding:
  batch_size: 8
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Embedding.BatchSize != 8 {
		t.Errorf("expected BatchSize=8, got %d", cfg.Embedding.BatchSize)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	cfg := DefaultConfig()
	cfg.Chunking.ChunkSize = 750
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Chunking.ChunkSize != 750 {
		t.Errorf("expected ChunkSize=750, got %d", loaded.Chunking.ChunkSize)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero chunk size", func(c *Config) { c.Chunking.ChunkSize = 0 }, true},
		{"overlap too large", func(c *Config) { c.Chunking.ChunkOverlap = 1000 }, true},
		{"negative overlap", func(c *Config) { c.Chunking.ChunkOverlap = -1 }, true},
		{"unknown provider", func(c *Config) { c.Embedding.Provider = "voyage" }, true},
		{"unknown provider disabled", func(c *Config) {
			c.Embedding.Provider = "voyage"
			c.Embedding.Enabled = false
		}, false},
		{"zero batch size", func(c *Config) { c.Embedding.BatchSize = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIndexDBPath(t *testing.T) {
	path := IndexDBPath("/home/user/project")
	expected := filepath.Join("/home/user/project", ".vectorconvert", "index.db")
	if path != expected {
		t.Errorf("expected %s, got %s", expected, path)
	}
}
