package history

import (
	"context"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	exchanges := []Entry{
		{UserMessage: "first", AssistantMessage: "reply one"},
		{UserMessage: "second", AssistantMessage: "reply two", ToolUsed: "search_semantic"},
		{UserMessage: "third", AssistantMessage: "reply three"},
	}
	for _, e := range exchanges {
		if err := store.Save(ctx, e); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	entries, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].UserMessage != "third" {
		t.Errorf("expected newest entry first, got %q", entries[0].UserMessage)
	}
	if entries[1].ToolUsed != "search_semantic" {
		t.Errorf("expected tool name preserved, got %q", entries[1].ToolUsed)
	}
	if entries[0].ID == "" {
		t.Error("expected generated ID")
	}
	if entries[0].CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestSaveKeepsProvidedID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, Entry{ID: "fixed", UserMessage: "hi", AssistantMessage: "hello"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	entries, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if entries[0].ID != "fixed" {
		t.Errorf("expected provided ID kept, got %q", entries[0].ID)
	}
}

func TestRecentEmpty(t *testing.T) {
	store := openTestStore(t)

	entries, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}
