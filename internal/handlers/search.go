package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"ragserver/internal/contextutil"
	"ragserver/internal/rag"
)

// SearchService is the slice of the retrieval service the search endpoints
// need.
type SearchService interface {
	Search(ctx context.Context, req rag.SearchRequest) (*rag.SearchResponse, error)
	InvalidateCache()
}

// SearchHandler handles similarity search requests.
type SearchHandler struct {
	search SearchService
}

func NewSearchHandler(search SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// SearchRequest is the HTTP request payload for search.
type SearchRequest struct {
	Query           string  `json:"query"`
	Limit           int     `json:"limit"`
	Threshold       float64 `json:"threshold"`
	DocumentID      string  `json:"document_id,omitempty"`
	GroupByDocument bool    `json:"group_by_document"`
}

// Search handles POST /api/search.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		contextutil.Logger(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	svcReq := rag.SearchRequest{
		Query:           req.Query,
		Limit:           req.Limit,
		Threshold:       req.Threshold,
		GroupByDocument: req.GroupByDocument,
	}
	if req.DocumentID != "" {
		id, err := uuid.Parse(req.DocumentID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid document ID")
			return
		}
		svcReq.DocumentID = &id
	}

	resp, err := h.search.Search(ctx, svcReq)
	if err != nil {
		serviceError(ctx, w, err, "Failed to search")
		return
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}

// InvalidateCache handles DELETE /api/search/cache.
func (h *SearchHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.search.InvalidateCache()
	contextutil.Logger(ctx).InfoContext(ctx, "search cache invalidated")
	writeJSON(ctx, w, http.StatusOK, map[string]any{"invalidated": true})
}
