package storage

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// ErrNotFound is returned when a requested document or fragment does not
// exist.
var ErrNotFound = errors.New("not found")

// MaxTitleLength bounds document titles; a title identifies a document family
// across versions.
const MaxTitleLength = 40

// Document is a versioned metadata record. Versions of the same title share
// the title and count up from 1; valid=false marks a logically deleted
// version whose rows stay in place.
type Document struct {
	ID        uuid.UUID
	Title     string
	Metadata  map[string]any
	Path      string
	Valid     bool
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Fragment is one chunk of a document's text together with its embedding.
// Fragments are exclusively owned by their document and are removed with it.
type Fragment struct {
	ID         int64
	DocumentID uuid.UUID
	ChunkIndex int
	Content    string
	Embedding  *pgvector.Vector
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
