package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_fragment_store.go -package=mocks ragserver/internal/storage FragmentStore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FragmentStore defines fragment persistence operations.
type FragmentStore interface {
	// Insert inserts a single fragment and fills in the generated ID.
	Insert(ctx context.Context, fragment *Fragment) error
	// InsertBatch inserts all fragments in one transaction. Either every
	// fragment commits or none do.
	InsertBatch(ctx context.Context, fragments []*Fragment) (int, error)
	// GetByID returns the fragment or ErrNotFound.
	GetByID(ctx context.Context, id int64) (*Fragment, error)
	// ListByDocument returns a document's fragments ordered by chunk
	// index.
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*Fragment, error)
	// Update rewrites a fragment's content and embedding.
	Update(ctx context.Context, fragment *Fragment) error
	// Delete removes a single fragment.
	Delete(ctx context.Context, id int64) error
	// DeleteByDocument removes all fragments of a document and reports
	// how many went away.
	DeleteByDocument(ctx context.Context, documentID uuid.UUID) (int, error)
	// CountByDocument counts a document's fragments.
	CountByDocument(ctx context.Context, documentID uuid.UUID) (int, error)
}

const fragmentColumns = "id, document_id, chunk_index, content, embedding, created_at, updated_at"

// FragmentRepo implements FragmentStore on Postgres.
type FragmentRepo struct {
	pool *pgxpool.Pool
}

// NewFragmentRepo creates a FragmentRepo.
func NewFragmentRepo(pool *pgxpool.Pool) *FragmentRepo {
	return &FragmentRepo{pool: pool}
}

func scanFragment(row pgx.Row) (*Fragment, error) {
	var f Fragment
	err := row.Scan(&f.ID, &f.DocumentID, &f.ChunkIndex, &f.Content,
		&f.Embedding, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan fragment: %w", err)
	}
	return &f, nil
}

// Insert inserts a single fragment and fills in the generated ID.
func (r *FragmentRepo) Insert(ctx context.Context, fragment *Fragment) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO fragments (document_id, chunk_index, content, embedding)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		fragment.DocumentID, fragment.ChunkIndex, fragment.Content, fragment.Embedding,
	).Scan(&fragment.ID, &fragment.CreatedAt, &fragment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert fragment: %w", err)
	}
	return nil
}

// InsertBatch inserts all fragments inside one transaction using a pipelined
// batch. A failure on any row rolls the whole ingestion back, so readers
// never observe a partially ingested document.
func (r *FragmentRepo) InsertBatch(ctx context.Context, fragments []*Fragment) (int, error) {
	if len(fragments) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	batch := &pgx.Batch{}
	for _, f := range fragments {
		batch.Queue(
			`INSERT INTO fragments (document_id, chunk_index, content, embedding)
			 VALUES ($1, $2, $3, $4)`,
			f.DocumentID, f.ChunkIndex, f.Content, f.Embedding,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range fragments {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return 0, fmt.Errorf("failed to insert fragment %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit fragment batch: %w", err)
	}
	return len(fragments), nil
}

// GetByID returns the fragment or ErrNotFound.
func (r *FragmentRepo) GetByID(ctx context.Context, id int64) (*Fragment, error) {
	return scanFragment(r.pool.QueryRow(ctx,
		`SELECT `+fragmentColumns+` FROM fragments WHERE id = $1`, id))
}

// ListByDocument returns a document's fragments ordered by chunk index.
func (r *FragmentRepo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*Fragment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+fragmentColumns+` FROM fragments
		 WHERE document_id = $1 ORDER BY chunk_index ASC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fragments: %w", err)
	}
	defer rows.Close()

	var fragments []*Fragment
	for rows.Next() {
		f, err := scanFragment(rows)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return fragments, nil
}

// Update rewrites a fragment's content and embedding.
func (r *FragmentRepo) Update(ctx context.Context, fragment *Fragment) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE fragments SET content = $2, embedding = $3, updated_at = now()
		 WHERE id = $1`,
		fragment.ID, fragment.Content, fragment.Embedding,
	)
	if err != nil {
		return fmt.Errorf("failed to update fragment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a single fragment.
func (r *FragmentRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM fragments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete fragment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByDocument removes all fragments of a document.
func (r *FragmentRepo) DeleteByDocument(ctx context.Context, documentID uuid.UUID) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM fragments WHERE document_id = $1`, documentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete fragments: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// CountByDocument counts a document's fragments.
func (r *FragmentRepo) CountByDocument(ctx context.Context, documentID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM fragments WHERE document_id = $1`, documentID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count fragments: %w", err)
	}
	return count, nil
}
