package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// FromBackend selects the similarity search backend by name. With "pgvector"
// the search runs inside Postgres against the fragments table; with "qdrant"
// the embeddings are mirrored into a dedicated collection.
func FromBackend(ctx context.Context, backend string, pool *pgxpool.Pool, qdrantURL, collection string, vectorSize int) (VectorStore, error) {
	switch backend {
	case "", "pgvector":
		return NewPgvectorStore(pool), nil
	case "qdrant":
		host, port, err := splitQdrantURL(qdrantURL)
		if err != nil {
			return nil, fmt.Errorf("parse qdrant url: %w", err)
		}
		store, err := NewQdrantStore(host, port, collection, vectorSize)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureReady(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown vector backend %q", backend)
	}
}

// splitQdrantURL extracts host and gRPC port from a Qdrant URL. A URL
// without an explicit port defaults to 6334.
func splitQdrantURL(raw string) (string, int, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", 0, err
	}
	host := u.Hostname()
	if host == "" {
		host = raw
	}
	port := 6334
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return "", 0, err
		}
	}
	return host, port, nil
}
