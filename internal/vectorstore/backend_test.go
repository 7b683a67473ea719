package vectorstore

import (
	"context"
	"testing"
)

func TestSplitQdrantURL(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{
			name:     "http url with port",
			raw:      "http://localhost:6334",
			wantHost: "localhost",
			wantPort: 6334,
		},
		{
			name:     "rest port preserved",
			raw:      "http://qdrant.internal:6333",
			wantHost: "qdrant.internal",
			wantPort: 6333,
		},
		{
			name:     "no port defaults to grpc",
			raw:      "http://qdrant",
			wantHost: "qdrant",
			wantPort: 6334,
		},
		{
			name:     "bare hostname",
			raw:      "qdrant",
			wantHost: "qdrant",
			wantPort: 6334,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, err := splitQdrantURL(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("splitQdrantURL(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if host != tt.wantHost || port != tt.wantPort {
				t.Errorf("splitQdrantURL(%q) = (%q, %d), want (%q, %d)", tt.raw, host, port, tt.wantHost, tt.wantPort)
			}
		})
	}
}

func TestFromBackendUnknown(t *testing.T) {
	_, err := FromBackend(context.Background(), "faiss", nil, "", "", 1536)
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestFromBackendDefaultsToPgvector(t *testing.T) {
	store, err := FromBackend(context.Background(), "", nil, "", "", 1536)
	if err != nil {
		t.Fatalf("FromBackend: %v", err)
	}
	if _, ok := store.(*PgvectorStore); !ok {
		t.Errorf("expected *PgvectorStore, got %T", store)
	}
}
