package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks ragserver/internal/storage DocumentStore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentStore defines document persistence operations.
type DocumentStore interface {
	// Create inserts a new document. doc.ID is assigned when zero.
	Create(ctx context.Context, doc *Document) (*Document, error)
	// GetByID returns the document or ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Document, error)
	// FindByTitleAndVersion returns one specific version or ErrNotFound.
	FindByTitleAndVersion(ctx context.Context, title string, version int) (*Document, error)
	// GetLatestVersion returns the highest version of a title regardless
	// of validity, or ErrNotFound when the title is unknown.
	GetLatestVersion(ctx context.Context, title string) (*Document, error)
	// GetAllVersions returns every version of a title, newest first.
	GetAllVersions(ctx context.Context, title string) ([]*Document, error)
	// Update rewrites the mutable fields of a document.
	Update(ctx context.Context, doc *Document) error
	// MarkInvalid soft-deletes a version.
	MarkInvalid(ctx context.Context, id uuid.UUID) error
	// Delete hard-deletes a document; fragments go with it via cascade.
	Delete(ctx context.Context, id uuid.UUID) error
	// ListValid returns valid documents, newest created first.
	ListValid(ctx context.Context) ([]*Document, error)
	// CreateNewVersion creates version latest+1 for a title, copying
	// metadata and path from the current latest. ErrNotFound when the
	// title has no versions yet.
	CreateNewVersion(ctx context.Context, title string) (*Document, error)
}

const documentColumns = "id, title, metadata, path, valid, version, created_at, updated_at"

// DocumentRepo implements DocumentStore on Postgres.
type DocumentRepo struct {
	pool *pgxpool.Pool
}

// NewDocumentRepo creates a DocumentRepo.
func NewDocumentRepo(pool *pgxpool.Pool) *DocumentRepo {
	return &DocumentRepo{pool: pool}
}

func scanDocument(row pgx.Row) (*Document, error) {
	var doc Document
	err := row.Scan(&doc.ID, &doc.Title, &doc.Metadata, &doc.Path,
		&doc.Valid, &doc.Version, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}
	return &doc, nil
}

// Create inserts a new document, assigning a fresh UUID when doc.ID is zero.
func (r *DocumentRepo) Create(ctx context.Context, doc *Document) (*Document, error) {
	id := doc.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO documents (id, title, metadata, path, valid, version)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+documentColumns,
		id, doc.Title, doc.Metadata, doc.Path, doc.Valid, doc.Version,
	)

	created, err := scanDocument(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return created, nil
}

// GetByID returns the document or ErrNotFound.
func (r *DocumentRepo) GetByID(ctx context.Context, id uuid.UUID) (*Document, error) {
	return scanDocument(r.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, id))
}

// FindByTitleAndVersion returns one specific version or ErrNotFound.
func (r *DocumentRepo) FindByTitleAndVersion(ctx context.Context, title string, version int) (*Document, error) {
	return scanDocument(r.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE title = $1 AND version = $2`,
		title, version))
}

// GetLatestVersion returns the highest version of a title, valid or not.
func (r *DocumentRepo) GetLatestVersion(ctx context.Context, title string) (*Document, error) {
	return scanDocument(r.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents
		 WHERE title = $1 ORDER BY version DESC LIMIT 1`, title))
}

// GetAllVersions returns every version of a title, newest first.
func (r *DocumentRepo) GetAllVersions(ctx context.Context, title string) ([]*Document, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+documentColumns+` FROM documents
		 WHERE title = $1 ORDER BY version DESC`, title)
	if err != nil {
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// Update rewrites the mutable fields of a document.
func (r *DocumentRepo) Update(ctx context.Context, doc *Document) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE documents
		 SET title = $2, metadata = $3, path = $4, valid = $5, version = $6, updated_at = now()
		 WHERE id = $1`,
		doc.ID, doc.Title, doc.Metadata, doc.Path, doc.Valid, doc.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkInvalid soft-deletes a version.
func (r *DocumentRepo) MarkInvalid(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE documents SET valid = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark document invalid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete hard-deletes a document. The foreign key cascade removes its
// fragments.
func (r *DocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListValid returns valid documents, newest created first.
func (r *DocumentRepo) ListValid(ctx context.Context) ([]*Document, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+documentColumns+` FROM documents
		 WHERE valid = true ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query valid documents: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// CreateNewVersion creates version latest+1 for a title, copying metadata and
// path from the current latest. Two concurrent callers can read the same
// latest version; the unique (title, version) index makes the loser fail
// instead of duplicating a version.
func (r *DocumentRepo) CreateNewVersion(ctx context.Context, title string) (*Document, error) {
	latest, err := r.GetLatestVersion(ctx, title)
	if err != nil {
		return nil, err
	}

	return r.Create(ctx, &Document{
		Title:    title,
		Metadata: latest.Metadata,
		Path:     latest.Path,
		Valid:    true,
		Version:  latest.Version + 1,
	})
}

func collectDocuments(rows pgx.Rows) ([]*Document, error) {
	var docs []*Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return docs, nil
}
