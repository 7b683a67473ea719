package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// New opens a Postgres connection pool for the given connection string and
// verifies connectivity.
func New(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	cfg.MaxConns = 10
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// Migrate creates the schema. It is idempotent and safe to run at every
// startup. The embedding column dimension must match the embedding model;
// changing models means recreating the fragments table.
func Migrate(ctx context.Context, pool *pgxpool.Pool, dimension int) error {
	schema := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS documents (
			id uuid PRIMARY KEY,
			title varchar(40) NOT NULL,
			metadata jsonb,
			path varchar(50) NOT NULL,
			valid boolean NOT NULL DEFAULT true,
			version integer NOT NULL DEFAULT 1,
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS documents_title_idx ON documents (title)`,
		`CREATE INDEX IF NOT EXISTS documents_valid_idx ON documents (valid)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS documents_title_version_idx ON documents (title, version)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS fragments (
			id bigserial PRIMARY KEY,
			document_id uuid NOT NULL REFERENCES documents(id) ON DELETE CASCADE ON UPDATE RESTRICT,
			chunk_index integer NOT NULL,
			content text NOT NULL,
			embedding vector(%d),
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz NOT NULL DEFAULT now(),
			UNIQUE (document_id, chunk_index)
		)`, dimension),
		`CREATE INDEX IF NOT EXISTS fragments_document_chunk_idx ON fragments (document_id, chunk_index)`,
		`CREATE INDEX IF NOT EXISTS fragments_embedding_idx ON fragments USING hnsw (embedding vector_cosine_ops)`,
	}

	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
