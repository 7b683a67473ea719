// Package history keeps a local log of assistant conversations in SQLite.
// Writes are best-effort; the assistant keeps working when the log fails.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Entry is one completed exchange between the user and the assistant.
type Entry struct {
	ID               string
	UserMessage      string
	AssistantMessage string
	// ToolUsed is empty for conversational replies.
	ToolUsed  string
	CreatedAt time.Time
}

// Store persists conversation entries.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping history database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		user_message TEXT NOT NULL,
		assistant_message TEXT NOT NULL,
		tool_used TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history database: %w", err)
	}

	return &Store{db: db}, nil
}

// Save appends one exchange. A missing ID is filled in.
func (s *Store) Save(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, user_message, assistant_message, tool_used)
		VALUES (?, ?, ?, ?)`,
		entry.ID, entry.UserMessage, entry.AssistantMessage, entry.ToolUsed)
	if err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	return nil
}

// Recent returns the latest n exchanges, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_message, assistant_message, tool_used, created_at
		FROM conversations ORDER BY created_at DESC, rowid DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserMessage, &e.AssistantMessage, &e.ToolUsed, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}
	return entries, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
