// Package rag implements the retrieval pipeline: document ingestion
// (chunk, embed, store) and similarity search over the stored fragments.
package rag

import (
	"github.com/google/uuid"

	"ragserver/internal/storage"
	"ragserver/internal/vectorstore"
)

const (
	// defaultLimit is used when a search request leaves Limit zero.
	defaultLimit = 5
	// maxLimit bounds the number of results a single search may request.
	maxLimit = 20
	// fragmentsPerDocument caps how many fragments a grouped search
	// keeps per document.
	fragmentsPerDocument = 3
)

// UploadRequest describes a document to ingest.
type UploadRequest struct {
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
	// CreateNewVersion allows uploading over an existing title as a new
	// version instead of failing with a conflict.
	CreateNewVersion bool `json:"create_new_version"`
	// Markdown strips markdown syntax from Content before chunking.
	Markdown bool `json:"markdown"`
}

// UploadResult reports a completed ingestion.
type UploadResult struct {
	Document      *storage.Document `json:"document"`
	FragmentCount int               `json:"fragments_created"`
}

// SearchRequest describes a similarity search. In grouped mode Limit is the
// maximum number of document groups rather than fragments.
type SearchRequest struct {
	Query           string     `json:"query"`
	Limit           int        `json:"limit"`
	Threshold       float64    `json:"threshold"`
	DocumentID      *uuid.UUID `json:"document_id,omitempty"`
	GroupByDocument bool       `json:"group_by_document"`
}

// DocumentGroup is a grouped search hit: one document with its best
// fragments and the mean of their similarities.
type DocumentGroup struct {
	DocumentID     uuid.UUID                  `json:"document_id"`
	Title          string                     `json:"document_title"`
	Version        int                        `json:"document_version"`
	MeanSimilarity float64                    `json:"mean_similarity"`
	Fragments      []vectorstore.SearchResult `json:"fragments"`
}

// SearchResponse carries either flat results or document groups, never both.
type SearchResponse struct {
	Query   string                     `json:"query"`
	Results []vectorstore.SearchResult `json:"results,omitempty"`
	Groups  []DocumentGroup            `json:"groups,omitempty"`
	Count   int                        `json:"count"`
}
