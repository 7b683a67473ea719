package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"ragserver/internal/contextutil"
	"ragserver/internal/rag"
	"ragserver/internal/storage"
)

// DocumentService is the slice of the retrieval service the document
// endpoints need.
type DocumentService interface {
	Upload(ctx context.Context, req rag.UploadRequest) (*rag.UploadResult, error)
	ListDocuments(ctx context.Context) ([]*storage.Document, error)
	Versions(ctx context.Context, title string) ([]*storage.Document, error)
	Delete(ctx context.Context, id uuid.UUID, soft bool) error
}

// DocumentsHandler handles document upload, listing, versioning and
// deletion.
type DocumentsHandler struct {
	documents DocumentService
}

func NewDocumentsHandler(documents DocumentService) *DocumentsHandler {
	return &DocumentsHandler{documents: documents}
}

// DocumentResponse is the HTTP rendering of a stored document.
type DocumentResponse struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Path      string         `json:"path"`
	Valid     bool           `json:"valid"`
	Version   int            `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func toDocumentResponse(doc *storage.Document) DocumentResponse {
	return DocumentResponse{
		ID:        doc.ID.String(),
		Title:     doc.Title,
		Metadata:  doc.Metadata,
		Path:      doc.Path,
		Valid:     doc.Valid,
		Version:   doc.Version,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

// UploadRequest is the HTTP request payload for document upload.
type UploadRequest struct {
	Title            string         `json:"title"`
	Content          string         `json:"content"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	CreateNewVersion bool           `json:"create_new_version"`
	Markdown         bool           `json:"markdown"`
}

// UploadResponse is the HTTP response payload for document upload.
type UploadResponse struct {
	Document         DocumentResponse `json:"document"`
	FragmentsCreated int              `json:"fragments_created"`
}

// Upload handles POST /api/documents/upload.
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		contextutil.Logger(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.documents.Upload(ctx, rag.UploadRequest{
		Title:            req.Title,
		Content:          req.Content,
		Metadata:         req.Metadata,
		CreateNewVersion: req.CreateNewVersion,
		Markdown:         req.Markdown,
	})
	if err != nil {
		serviceError(ctx, w, err, "Failed to upload document")
		return
	}

	writeJSON(ctx, w, http.StatusCreated, UploadResponse{
		Document:         toDocumentResponse(result.Document),
		FragmentsCreated: result.FragmentCount,
	})
}

// List handles GET /api/documents.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docs, err := h.documents.ListDocuments(ctx)
	if err != nil {
		serviceError(ctx, w, err, "Failed to list documents")
		return
	}

	out := make([]DocumentResponse, len(docs))
	for i, doc := range docs {
		out[i] = toDocumentResponse(doc)
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{
		"documents": out,
		"count":     len(out),
	})
}

// Versions handles GET /api/documents/{title}/versions.
func (h *DocumentsHandler) Versions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	title := chi.URLParam(r, "title")

	docs, err := h.documents.Versions(ctx, title)
	if err != nil {
		serviceError(ctx, w, err, "Failed to list versions")
		return
	}

	out := make([]DocumentResponse, len(docs))
	for i, doc := range docs {
		out[i] = toDocumentResponse(doc)
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{
		"title":    title,
		"versions": out,
	})
}

// Delete handles DELETE /api/documents/{id}. The soft query parameter
// selects soft deletion.
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid document ID")
		return
	}
	soft := r.URL.Query().Get("soft") == "true"

	if err := h.documents.Delete(ctx, id, soft); err != nil {
		serviceError(ctx, w, err, "Failed to delete document")
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]any{
		"deleted": id.String(),
		"soft":    soft,
	})
}
