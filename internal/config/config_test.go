package config

import (
	"log/slog"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LLMBaseURL != "http://localhost:11434" {
		t.Errorf("LLMBaseURL = %q, want default", cfg.LLMBaseURL)
	}
	if cfg.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("EmbeddingModel = %q, want text-embedding-3-small", cfg.EmbeddingModel)
	}
	if cfg.EmbeddingDimension != 1536 {
		t.Errorf("EmbeddingDimension = %d, want 1536", cfg.EmbeddingDimension)
	}
	if cfg.VectorBackend != "pgvector" {
		t.Errorf("VectorBackend = %q, want pgvector", cfg.VectorBackend)
	}
	if cfg.APIPort != "9000" {
		t.Errorf("APIPort = %q, want 9000", cfg.APIPort)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://app@db:5432/docs")
	t.Setenv("VECTOR_BACKEND", "qdrant")
	t.Setenv("QDRANT_COLLECTION", "docs")
	t.Setenv("EMBEDDING_DIMENSION", "768")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DatabaseURL != "postgres://app@db:5432/docs" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.VectorBackend != "qdrant" {
		t.Errorf("VectorBackend = %q, want qdrant", cfg.VectorBackend)
	}
	if cfg.QdrantCollection != "docs" {
		t.Errorf("QdrantCollection = %q, want docs", cfg.QdrantCollection)
	}
	if cfg.EmbeddingDimension != 768 {
		t.Errorf("EmbeddingDimension = %d, want 768", cfg.EmbeddingDimension)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad dimension", "EMBEDDING_DIMENSION", "abc"},
		{"negative dimension", "EMBEDDING_DIMENSION", "-1"},
		{"bad backend", "VECTOR_BACKEND", "faiss"},
		{"bad log level", "LOG_LEVEL", "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q succeeded, want error", tt.key, tt.value)
			}
		})
	}
}

// clearEnv unsets every variable Load reads so tests are hermetic regardless
// of the developer's environment or .env file.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "LLM_BASE_URL", "LLM_MODEL",
		"EMBEDDING_BASE_URL", "EMBEDDING_API_KEY", "EMBEDDING_MODEL", "EMBEDDING_DIMENSION",
		"VECTOR_BACKEND", "QDRANT_URL", "QDRANT_COLLECTION",
		"MCP_SERVER_COMMAND", "MCP_SERVER_URL",
		"HISTORY_DB_PATH", "API_PORT", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}
