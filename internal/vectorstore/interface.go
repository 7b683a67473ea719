// Package vectorstore provides nearest-neighbor fragment search. Two
// backends exist: pgvector, which searches the fragments table in place, and
// qdrant, which maintains a mirror of the embeddings in a Qdrant collection.
package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks ragserver/internal/vectorstore VectorStore

import (
	"context"

	"github.com/google/uuid"

	"ragserver/internal/storage"
)

// SearchOptions narrows a similarity search.
type SearchOptions struct {
	// Limit caps the number of results.
	Limit int
	// Threshold, when positive, drops results whose similarity is below
	// it.
	Threshold float64
	// DocumentID, when non-nil, restricts the search to one document.
	DocumentID *uuid.UUID
}

// SearchResult is one ranked fragment with its owning document's identity.
// Similarity is 1 − cosine distance, rounded to 4 decimal places. Results
// with equal similarity come back in store order; callers must not rely on
// tie order.
type SearchResult struct {
	FragmentID int64          `json:"fragment_id"`
	DocumentID uuid.UUID      `json:"document_id"`
	Title      string         `json:"document_title"`
	Version    int            `json:"document_version"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	ChunkIndex int            `json:"chunk_index"`
	Content    string         `json:"content"`
	Similarity float64        `json:"similarity"`
}

// VectorStore answers similarity queries over fragment embeddings. The
// mutating hooks keep an external index in step with the relational store;
// backends whose index is the relational store implement them as no-ops.
type VectorStore interface {
	// EnsureReady prepares the backend (creates collections, etc.).
	EnsureReady(ctx context.Context) error
	// IndexFragments makes a document's fragments searchable.
	IndexFragments(ctx context.Context, doc *storage.Document, fragments []*storage.Fragment) error
	// RemoveDocument drops a document's fragments from the index.
	RemoveDocument(ctx context.Context, documentID uuid.UUID) error
	// SetDocumentValidity flips the validity flag used to exclude
	// soft-deleted documents from search.
	SetDocumentValidity(ctx context.Context, documentID uuid.UUID, valid bool) error
	// Search returns the fragments nearest to the query vector among
	// valid documents, ordered by descending similarity.
	Search(ctx context.Context, query []float32, opts SearchOptions) ([]SearchResult, error)
}

// roundSimilarity rounds to the 4 decimal places exposed to callers.
func roundSimilarity(s float64) float64 {
	if s < 0 {
		return float64(int(s*10000-0.5)) / 10000
	}
	return float64(int(s*10000+0.5)) / 10000
}
