package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"ragserver/internal/rag"
	"ragserver/internal/service"
	"ragserver/internal/vectorstore"
)

// UploadDocumentInput is the input schema for the upload_document tool.
type UploadDocumentInput struct {
	DocumentTitle    string         `json:"document_title" jsonschema:"title of the document, at most 40 characters"`
	Content          string         `json:"content" jsonschema:"full text content of the document"`
	Metadata         map[string]any `json:"metadata,omitempty" jsonschema:"optional metadata to store with the document"`
	CreateNewVersion bool           `json:"create_new_version,omitempty" jsonschema:"upload as a new version when the title already exists"`
	Markdown         bool           `json:"markdown,omitempty" jsonschema:"strip markdown syntax before indexing"`
}

// UploadDocumentOutput is the structured result of upload_document.
type UploadDocumentOutput struct {
	DocumentID       string `json:"document_id"`
	Title            string `json:"document_title"`
	Version          int    `json:"document_version"`
	FragmentsCreated int    `json:"fragments_created"`
	TotalCharacters  int    `json:"total_characters"`
}

// SearchSemanticInput is the input schema for the search_semantic tool.
type SearchSemanticInput struct {
	Query           string  `json:"query" jsonschema:"natural language search query"`
	Limit           int     `json:"limit,omitempty" jsonschema:"maximum number of results, 1 to 20 (default 5)"`
	Threshold       float64 `json:"threshold,omitempty" jsonschema:"minimum similarity between 0 and 1 (default 0)"`
	DocumentID      string  `json:"document_id,omitempty" jsonschema:"restrict the search to one document"`
	GroupByDocument bool    `json:"group_by_document,omitempty" jsonschema:"group results per document"`
}

// SearchSemanticOutput is the structured result of search_semantic.
type SearchSemanticOutput struct {
	Query   string                     `json:"query"`
	Results []vectorstore.SearchResult `json:"results,omitempty"`
	Groups  []rag.DocumentGroup        `json:"groups,omitempty"`
	Count   int                        `json:"count"`
}

// GetDocumentVersionsInput is the input schema for get_document_versions.
type GetDocumentVersionsInput struct {
	DocumentTitle string `json:"document_title" jsonschema:"title of the document family"`
}

// DocumentVersionOutput is one version in the get_document_versions result.
type DocumentVersionOutput struct {
	DocumentID string         `json:"document_id"`
	Version    int            `json:"version"`
	Valid      bool           `json:"valid"`
	CreatedAt  string         `json:"created_at"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// GetDocumentVersionsOutput is the structured result of get_document_versions.
type GetDocumentVersionsOutput struct {
	DocumentTitle string                  `json:"document_title"`
	Versions      []DocumentVersionOutput `json:"versions"`
}

// DeleteDocumentInput is the input schema for delete_document.
type DeleteDocumentInput struct {
	DocumentID string `json:"document_id" jsonschema:"UUID of the document version to delete"`
	SoftDelete bool   `json:"soft_delete,omitempty" jsonschema:"mark invalid instead of removing rows"`
}

// DeleteDocumentOutput is the structured result of delete_document.
type DeleteDocumentOutput struct {
	DocumentID string `json:"document_id"`
	SoftDelete bool   `json:"soft_delete"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "upload_document",
		Description: "Upload a document to the knowledge base: it is chunked, embedded and made searchable",
	}, s.handleUploadDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_semantic",
		Description: "Search the knowledge base by meaning rather than keywords",
	}, s.handleSearchSemantic)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document_versions",
		Description: "List every stored version of a titled document",
	}, s.handleGetDocumentVersions)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_document",
		Description: "Delete a document version, either softly (hidden from search) or permanently",
	}, s.handleDeleteDocument)
}

func (s *Server) handleUploadDocument(ctx context.Context, _ *mcp.CallToolRequest, input UploadDocumentInput) (*mcp.CallToolResult, UploadDocumentOutput, error) {
	result, err := s.rag.Upload(ctx, rag.UploadRequest{
		Title:            input.DocumentTitle,
		Content:          input.Content,
		Metadata:         input.Metadata,
		CreateNewVersion: input.CreateNewVersion,
		Markdown:         input.Markdown,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) || errors.Is(err, service.ErrConflict) {
			return toolError(err.Error()), UploadDocumentOutput{}, nil
		}
		return nil, UploadDocumentOutput{}, err
	}

	output := UploadDocumentOutput{
		DocumentID:       result.Document.ID.String(),
		Title:            result.Document.Title,
		Version:          result.Document.Version,
		FragmentsCreated: result.FragmentCount,
		TotalCharacters:  len(input.Content),
	}

	text := fmt.Sprintf("Document uploaded successfully.\n\nTitle: %s\nID: %s\nVersion: %d\nFragments created: %d\nTotal characters: %d",
		output.Title, output.DocumentID, output.Version, output.FragmentsCreated, output.TotalCharacters)
	return textResult(text), output, nil
}

func (s *Server) handleSearchSemantic(ctx context.Context, _ *mcp.CallToolRequest, input SearchSemanticInput) (*mcp.CallToolResult, SearchSemanticOutput, error) {
	req := rag.SearchRequest{
		Query:           input.Query,
		Limit:           input.Limit,
		Threshold:       input.Threshold,
		GroupByDocument: input.GroupByDocument,
	}
	if input.GroupByDocument {
		limit := input.Limit
		if limit <= 0 {
			limit = 5
		}
		req.Limit = max(limit/3, 1)
	}
	if input.DocumentID != "" {
		id, err := uuid.Parse(input.DocumentID)
		if err != nil {
			return toolError(fmt.Sprintf("invalid document_id %q", input.DocumentID)), SearchSemanticOutput{}, nil
		}
		req.DocumentID = &id
	}

	resp, err := s.rag.Search(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			return toolError(err.Error()), SearchSemanticOutput{}, nil
		}
		return nil, SearchSemanticOutput{}, err
	}

	output := SearchSemanticOutput{
		Query:   resp.Query,
		Results: resp.Results,
		Groups:  resp.Groups,
		Count:   resp.Count,
	}
	return textResult(formatSearchText(resp)), output, nil
}

func (s *Server) handleGetDocumentVersions(ctx context.Context, _ *mcp.CallToolRequest, input GetDocumentVersionsInput) (*mcp.CallToolResult, GetDocumentVersionsOutput, error) {
	docs, err := s.rag.Versions(ctx, input.DocumentTitle)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) || errors.Is(err, service.ErrNotFound) {
			return toolError(err.Error()), GetDocumentVersionsOutput{}, nil
		}
		return nil, GetDocumentVersionsOutput{}, err
	}

	output := GetDocumentVersionsOutput{
		DocumentTitle: input.DocumentTitle,
		Versions:      make([]DocumentVersionOutput, len(docs)),
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Versions of %q:\n", input.DocumentTitle)
	for i, doc := range docs {
		output.Versions[i] = DocumentVersionOutput{
			DocumentID: doc.ID.String(),
			Version:    doc.Version,
			Valid:      doc.Valid,
			CreatedAt:  doc.CreatedAt.Format("2006-01-02 15:04:05"),
			Metadata:   doc.Metadata,
		}
		state := "valid"
		if !doc.Valid {
			state = "deleted"
		}
		fmt.Fprintf(&b, "\nVersion %d (%s)\n  ID: %s\n  Created: %s\n",
			doc.Version, state, doc.ID, output.Versions[i].CreatedAt)
	}
	return textResult(b.String()), output, nil
}

func (s *Server) handleDeleteDocument(ctx context.Context, _ *mcp.CallToolRequest, input DeleteDocumentInput) (*mcp.CallToolResult, DeleteDocumentOutput, error) {
	id, err := uuid.Parse(input.DocumentID)
	if err != nil {
		return toolError(fmt.Sprintf("invalid document_id %q", input.DocumentID)), DeleteDocumentOutput{}, nil
	}

	if err := s.rag.Delete(ctx, id, input.SoftDelete); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return toolError(err.Error()), DeleteDocumentOutput{}, nil
		}
		return nil, DeleteDocumentOutput{}, err
	}

	output := DeleteDocumentOutput{DocumentID: input.DocumentID, SoftDelete: input.SoftDelete}
	mode := "permanently deleted"
	if input.SoftDelete {
		mode = "marked as deleted (recoverable)"
	}
	return textResult(fmt.Sprintf("Document %s %s.", input.DocumentID, mode)), output, nil
}

func formatSearchText(resp *rag.SearchResponse) string {
	if resp.Count == 0 {
		return fmt.Sprintf("No results found for %q.", resp.Query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d result(s) for %q:\n", resp.Count, resp.Query)

	if len(resp.Groups) > 0 {
		for i, group := range resp.Groups {
			fmt.Fprintf(&b, "\n%d. %s (v%d) — mean similarity %.1f%%\n",
				i+1, group.Title, group.Version, group.MeanSimilarity*100)
			for _, f := range group.Fragments {
				fmt.Fprintf(&b, "   [%.1f%%] %s\n", f.Similarity*100, excerpt(f.Content))
			}
		}
		return b.String()
	}

	for i, r := range resp.Results {
		fmt.Fprintf(&b, "\n%d. %s (v%d) — similarity %.1f%%\n   %s\n",
			i+1, r.Title, r.Version, r.Similarity*100, excerpt(r.Content))
	}
	return b.String()
}

// excerpt shortens fragment content for the text rendering; the full text
// stays available in the structured output.
func excerpt(content string) string {
	const maxLen = 200
	content = strings.ReplaceAll(content, "\n", " ")
	if len(content) <= maxLen {
		return content
	}
	return content[:maxLen] + "…"
}
