package rag

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"ragserver/internal/chunker"
	"ragserver/internal/contextutil"
	"ragserver/internal/llm"
	"ragserver/internal/service"
	"ragserver/internal/storage"
	"ragserver/internal/vectorstore"
)

// Service ties the ingestion and retrieval pipeline together: chunking,
// embedding, relational storage and the vector index.
type Service struct {
	documents storage.DocumentStore
	fragments storage.FragmentStore
	embedder  llm.Embedder
	vectors   vectorstore.VectorStore
	chunker   *chunker.Chunker
	cache     *Cache
}

func NewService(documents storage.DocumentStore, fragments storage.FragmentStore,
	embedder llm.Embedder, vectors vectorstore.VectorStore,
	ch *chunker.Chunker, cache *Cache) *Service {
	return &Service{
		documents: documents,
		fragments: fragments,
		embedder:  embedder,
		vectors:   vectors,
		chunker:   ch,
		cache:     cache,
	}
}

// Upload ingests a document: it creates the document row, chunks the
// content, embeds every chunk and stores the fragments in one transaction.
// If embedding or storage fails after the row was created, the row is
// removed again so no partially ingested document is left behind.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	logger := contextutil.Logger(ctx)

	if err := validateUpload(req); err != nil {
		return nil, err
	}

	content := req.Content
	if req.Markdown {
		content = chunker.StripMarkdown(content)
	}

	latest, err := s.documents.GetLatestVersion(ctx, req.Title)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("look up latest version of %q: %w", req.Title, err)
	}

	var doc *storage.Document
	if latest != nil {
		if !req.CreateNewVersion {
			return nil, fmt.Errorf("document %q %w", req.Title, service.ErrConflict)
		}
		doc, err = s.documents.CreateNewVersion(ctx, req.Title)
		if err != nil {
			return nil, fmt.Errorf("create new version of %q: %w", req.Title, err)
		}
		if req.Metadata != nil {
			doc.Metadata = req.Metadata
			if err := s.documents.Update(ctx, doc); err != nil {
				return nil, fmt.Errorf("update metadata of %q: %w", req.Title, err)
			}
		}
	} else {
		doc, err = s.documents.Create(ctx, &storage.Document{
			Title:    req.Title,
			Metadata: req.Metadata,
			Path:     "uploads/" + req.Title,
			Valid:    true,
			Version:  1,
		})
		if err != nil {
			return nil, fmt.Errorf("create document %q: %w", req.Title, err)
		}
	}

	chunks := s.chunker.Chunk(content)
	if len(chunks) == 0 {
		s.removeDocumentRow(ctx, doc.ID)
		return nil, &service.ValidationError{Field: "content", Message: "produced no chunks"}
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		s.removeDocumentRow(ctx, doc.ID)
		return nil, fmt.Errorf("embed %d chunks: %w", len(chunks), err)
	}

	fragments := make([]*storage.Fragment, len(chunks))
	for i, chunk := range chunks {
		vec := pgvector.NewVector(embeddings[i])
		fragments[i] = &storage.Fragment{
			DocumentID: doc.ID,
			ChunkIndex: i,
			Content:    chunk,
			Embedding:  &vec,
		}
	}

	inserted, err := s.fragments.InsertBatch(ctx, fragments)
	if err != nil {
		s.removeDocumentRow(ctx, doc.ID)
		return nil, fmt.Errorf("store %d fragments: %w", len(fragments), err)
	}

	if err := s.vectors.IndexFragments(ctx, doc, fragments); err != nil {
		logger.Warn("vector index update failed",
			"document_id", doc.ID, "error", err)
	}

	if s.cache != nil {
		s.cache.InvalidateAll()
	}

	logger.Info("document ingested",
		"title", doc.Title, "version", doc.Version, "fragments", inserted)

	return &UploadResult{Document: doc, FragmentCount: inserted}, nil
}

// Search embeds the query and runs a similarity search. Plain searches
// (no threshold, no document filter, no grouping) go through the cache.
func (s *Service) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	limit, err := validateSearch(req)
	if err != nil {
		return nil, err
	}

	plain := !req.GroupByDocument && req.DocumentID == nil && req.Threshold == 0
	if plain && s.cache != nil {
		if results, ok := s.cache.Get(req.Query, limit); ok {
			return &SearchResponse{Query: req.Query, Results: results, Count: len(results)}, nil
		}
	}

	query, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	if req.GroupByDocument {
		groups, err := s.groupedSearch(ctx, query, req, limit)
		if err != nil {
			return nil, err
		}
		return &SearchResponse{Query: req.Query, Groups: groups, Count: len(groups)}, nil
	}

	results, err := s.vectors.Search(ctx, query, vectorstore.SearchOptions{
		Limit:      limit,
		Threshold:  req.Threshold,
		DocumentID: req.DocumentID,
	})
	if err != nil {
		return nil, fmt.Errorf("search fragments: %w", err)
	}

	if plain && s.cache != nil {
		s.cache.Set(req.Query, limit, results)
	}
	return &SearchResponse{Query: req.Query, Results: results, Count: len(results)}, nil
}

// groupedSearch over-fetches fragments, buckets them per document (keeping
// at most fragmentsPerDocument each), ranks the buckets by mean similarity
// and only then truncates to the requested number of documents.
func (s *Service) groupedSearch(ctx context.Context, query []float32, req SearchRequest, maxDocuments int) ([]DocumentGroup, error) {
	results, err := s.vectors.Search(ctx, query, vectorstore.SearchOptions{
		Limit:      maxDocuments * fragmentsPerDocument * 2,
		Threshold:  req.Threshold,
		DocumentID: req.DocumentID,
	})
	if err != nil {
		return nil, fmt.Errorf("search fragments: %w", err)
	}

	var order []uuid.UUID
	buckets := make(map[uuid.UUID][]vectorstore.SearchResult)
	for _, r := range results {
		if len(buckets[r.DocumentID]) == 0 {
			order = append(order, r.DocumentID)
		}
		if len(buckets[r.DocumentID]) < fragmentsPerDocument {
			buckets[r.DocumentID] = append(buckets[r.DocumentID], r)
		}
	}

	groups := make([]DocumentGroup, 0, len(order))
	for _, id := range order {
		fragments := buckets[id]
		var sum float64
		for _, f := range fragments {
			sum += f.Similarity
		}
		groups = append(groups, DocumentGroup{
			DocumentID:     id,
			Title:          fragments[0].Title,
			Version:        fragments[0].Version,
			MeanSimilarity: roundSimilarity(sum / float64(len(fragments))),
			Fragments:      fragments,
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].MeanSimilarity > groups[j].MeanSimilarity
	})
	if len(groups) > maxDocuments {
		groups = groups[:maxDocuments]
	}
	return groups, nil
}

// Versions returns every version of a titled document, newest first.
func (s *Service) Versions(ctx context.Context, title string) ([]*storage.Document, error) {
	if strings.TrimSpace(title) == "" {
		return nil, &service.ValidationError{Field: "title", Message: "is required"}
	}
	docs, err := s.documents.GetAllVersions(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("list versions of %q: %w", title, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("document %q: %w", title, service.ErrNotFound)
	}
	return docs, nil
}

// Delete removes a document. Soft deletion marks the version invalid so it
// drops out of search but keeps its rows; hard deletion removes the row and
// its fragments.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, soft bool) error {
	logger := contextutil.Logger(ctx)

	if _, err := s.documents.GetByID(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("document %s: %w", id, service.ErrNotFound)
		}
		return fmt.Errorf("look up document %s: %w", id, err)
	}

	if soft {
		if err := s.documents.MarkInvalid(ctx, id); err != nil {
			return fmt.Errorf("mark document %s invalid: %w", id, err)
		}
		if err := s.vectors.SetDocumentValidity(ctx, id, false); err != nil {
			logger.Warn("vector index validity update failed",
				"document_id", id, "error", err)
		}
	} else {
		if err := s.documents.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete document %s: %w", id, err)
		}
		if err := s.vectors.RemoveDocument(ctx, id); err != nil {
			logger.Warn("vector index removal failed",
				"document_id", id, "error", err)
		}
	}

	if s.cache != nil {
		s.cache.InvalidateAll()
	}

	logger.Info("document deleted", "document_id", id, "soft", soft)
	return nil
}

// ListDocuments returns all valid documents, newest first.
func (s *Service) ListDocuments(ctx context.Context) ([]*storage.Document, error) {
	docs, err := s.documents.ListValid(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// InvalidateCache drops all cached search results.
func (s *Service) InvalidateCache() {
	if s.cache != nil {
		s.cache.InvalidateAll()
	}
}

// removeDocumentRow undoes a document creation after a later ingestion step
// failed. Failure here only leaves an empty document behind, so it is
// logged rather than surfaced.
func (s *Service) removeDocumentRow(ctx context.Context, id uuid.UUID) {
	if err := s.documents.Delete(ctx, id); err != nil {
		contextutil.Logger(ctx).Warn("cleanup of partially ingested document failed",
			"document_id", id, "error", err)
	}
}

func validateUpload(req UploadRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return &service.ValidationError{Field: "title", Message: "is required"}
	}
	if len(req.Title) > storage.MaxTitleLength {
		return &service.ValidationError{
			Field:   "title",
			Message: fmt.Sprintf("must be at most %d characters", storage.MaxTitleLength),
		}
	}
	if strings.TrimSpace(req.Content) == "" {
		return &service.ValidationError{Field: "content", Message: "is required"}
	}
	return nil
}

func validateSearch(req SearchRequest) (int, error) {
	if strings.TrimSpace(req.Query) == "" {
		return 0, &service.ValidationError{Field: "query", Message: "is required"}
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	if limit < 1 || limit > maxLimit {
		return 0, &service.ValidationError{
			Field:   "limit",
			Message: fmt.Sprintf("must be between 1 and %d", maxLimit),
		}
	}
	if req.Threshold < 0 || req.Threshold > 1 {
		return 0, &service.ValidationError{Field: "threshold", Message: "must be between 0 and 1"}
	}
	return limit, nil
}

// roundSimilarity matches the rounding the vector stores apply to
// individual results.
func roundSimilarity(s float64) float64 {
	if s < 0 {
		return float64(int(s*10000-0.5)) / 10000
	}
	return float64(int(s*10000+0.5)) / 10000
}
