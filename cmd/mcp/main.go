package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"ragserver/internal/chunker"
	"ragserver/internal/config"
	"ragserver/internal/llm"
	"ragserver/internal/mcpserver"
	"ragserver/internal/rag"
	"ragserver/internal/storage"
	"ragserver/internal/vectorstore"
)

func main() {
	httpAddr := flag.String("http", "", "serve MCP over streamable HTTP on this address instead of stdio")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Over stdio the stdout stream carries the protocol, so logs go to
	// stderr unconditionally.
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := storage.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := storage.Migrate(ctx, pool, cfg.EmbeddingDimension); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	vectors, err := vectorstore.FromBackend(ctx, cfg.VectorBackend, pool, cfg.QdrantURL, cfg.QdrantCollection, cfg.EmbeddingDimension)
	if err != nil {
		log.Fatalf("Failed to initialize vector store: %v", err)
	}

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimension)

	ragService := rag.NewService(
		storage.NewDocumentRepo(pool),
		storage.NewFragmentRepo(pool),
		embedder,
		vectors,
		chunker.New(800, 100),
		rag.NewCache(),
	)

	server := mcpserver.NewServer(ragService)

	if *httpAddr != "" {
		slog.Info("Starting MCP server", "transport", "http", "addr", *httpAddr)
		if err := server.RunHTTP(ctx, *httpAddr); err != nil {
			log.Fatalf("MCP server failed: %v", err)
		}
		return
	}

	slog.Info("Starting MCP server", "transport", "stdio")
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("MCP server failed: %v", err)
	}
}
