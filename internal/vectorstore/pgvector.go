package vectorstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"ragserver/internal/storage"
)

// PgvectorStore searches fragment embeddings directly in Postgres using the
// pgvector extension. Embeddings live on the fragment rows, so the indexing
// and removal hooks have nothing to do: the relational writes are the index.
type PgvectorStore struct {
	pool *pgxpool.Pool
}

func NewPgvectorStore(pool *pgxpool.Pool) *PgvectorStore {
	return &PgvectorStore{pool: pool}
}

// EnsureReady is a no-op; storage.Migrate creates the HNSW index.
func (s *PgvectorStore) EnsureReady(ctx context.Context) error { return nil }

func (s *PgvectorStore) IndexFragments(ctx context.Context, doc *storage.Document, fragments []*storage.Fragment) error {
	return nil
}

func (s *PgvectorStore) RemoveDocument(ctx context.Context, documentID uuid.UUID) error {
	return nil
}

func (s *PgvectorStore) SetDocumentValidity(ctx context.Context, documentID uuid.UUID, valid bool) error {
	return nil
}

func (s *PgvectorStore) Search(ctx context.Context, query []float32, opts SearchOptions) ([]SearchResult, error) {
	sql, args := buildSearchQuery(pgvector.NewVector(query), opts)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("search fragments: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.FragmentID, &r.DocumentID, &r.Title, &r.Version, &r.Metadata, &r.ChunkIndex, &r.Content, &r.Similarity); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		r.Similarity = roundSimilarity(r.Similarity)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search results: %w", err)
	}
	return results, nil
}

// buildSearchQuery assembles the similarity query. The <=> operator is
// cosine distance, so similarity is 1 minus it; ordering by the raw operator
// lets the HNSW index drive the scan.
func buildSearchQuery(query pgvector.Vector, opts SearchOptions) (string, []any) {
	var b strings.Builder
	args := []any{query}

	b.WriteString(`SELECT f.id, f.document_id, d.title, d.version, d.metadata, f.chunk_index, f.content,
		1 - (f.embedding <=> $1) AS similarity
		FROM fragments f
		JOIN documents d ON d.id = f.document_id
		WHERE d.valid = true`)

	if opts.DocumentID != nil {
		args = append(args, *opts.DocumentID)
		fmt.Fprintf(&b, " AND f.document_id = $%d", len(args))
	}
	if opts.Threshold > 0 {
		args = append(args, opts.Threshold)
		fmt.Fprintf(&b, " AND 1 - (f.embedding <=> $1) >= $%d", len(args))
	}

	b.WriteString(" ORDER BY f.embedding <=> $1")

	args = append(args, opts.Limit)
	fmt.Fprintf(&b, " LIMIT $%d", len(args))

	return b.String(), args
}
