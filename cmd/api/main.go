package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"ragserver/internal/chunker"
	"ragserver/internal/config"
	"ragserver/internal/history"
	"ragserver/internal/http"
	"ragserver/internal/llm"
	"ragserver/internal/mcpclient"
	"ragserver/internal/rag"
	"ragserver/internal/service"
	"ragserver/internal/storage"
	"ragserver/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	slog.Info("Starting RAG API server", "log_level", cfg.LogLevel, "log_format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	pool, err := storage.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := storage.Migrate(ctx, pool, cfg.EmbeddingDimension); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database ready", "dimension", cfg.EmbeddingDimension)

	documentRepo := storage.NewDocumentRepo(pool)
	fragmentRepo := storage.NewFragmentRepo(pool)

	// Select the vector search backend
	vectors, err := vectorstore.FromBackend(ctx, cfg.VectorBackend, pool, cfg.QdrantURL, cfg.QdrantCollection, cfg.EmbeddingDimension)
	if err != nil {
		log.Fatalf("Failed to initialize vector store: %v", err)
	}
	slog.Info("Vector store ready", "backend", cfg.VectorBackend)

	// External service clients
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimension)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMModel)

	// Create RAG service
	ragService := rag.NewService(
		documentRepo,
		fragmentRepo,
		embedder,
		vectors,
		chunker.New(800, 100),
		rag.NewCache(),
	)
	slog.Info("RAG service initialized")

	// Conversation history store
	if dir := filepath.Dir(cfg.HistoryDBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Failed to create history directory: %v", err)
		}
	}
	historyStore, err := history.Open(cfg.HistoryDBPath)
	if err != nil {
		log.Fatalf("Failed to open history database: %v", err)
	}
	defer historyStore.Close()

	// Assistant with MCP tool access and retrieval context
	assistant := service.NewAssistantService(
		llmClient,
		&toolConnector{command: cfg.MCPServerCommand, endpoint: cfg.MCPServerURL},
		&contextRetriever{rag: ragService},
		historyStore,
	)

	// Create router with dependencies
	deps := &http.Deps{
		Assistant:    assistant,
		Documents:    ragService,
		Search:       ragService,
		Tools:        &toolConnector{command: cfg.MCPServerCommand, endpoint: cfg.MCPServerURL},
		PingDatabase: pool.Ping,
		LLMAvailable: llmClient.IsAvailable,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	server := &nethttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting API server", "addr", addr)
		slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModel)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatalf("API server failed: %v", err)
		}
	case <-ctx.Done():
		slog.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutdown failed", "error", err)
		}
	}
}

// toolConnector opens MCP sessions for the assistant, over stdio when a
// server command is configured and over streamable HTTP otherwise.
type toolConnector struct {
	command  string
	endpoint string
}

func (t *toolConnector) Connect(ctx context.Context) (service.ToolClient, error) {
	if t.command != "" {
		return mcpclient.ConnectCommand(ctx, t.command)
	}
	if t.endpoint != "" {
		return mcpclient.ConnectHTTP(ctx, t.endpoint)
	}
	return nil, errors.New("no MCP server configured")
}

// contextRetriever feeds top search hits into assistant prompts.
type contextRetriever struct {
	rag *rag.Service
}

func (r *contextRetriever) TopFragments(ctx context.Context, query string, limit int) ([]service.ContextFragment, error) {
	resp, err := r.rag.Search(ctx, rag.SearchRequest{Query: query, Limit: limit})
	if err != nil {
		return nil, err
	}
	fragments := make([]service.ContextFragment, 0, len(resp.Results))
	for _, result := range resp.Results {
		fragments = append(fragments, service.ContextFragment{
			Title:      result.Title,
			Content:    result.Content,
			Similarity: result.Similarity,
		})
	}
	return fragments, nil
}
