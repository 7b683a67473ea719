package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"ragserver/internal/contextutil"
	"ragserver/internal/service"
)

// Assistant is the slice of the assistant service the chat endpoints need.
type Assistant interface {
	ProcessMessage(ctx context.Context, message string) (*service.AssistantResponse, error)
}

// ChatHandler handles assistant chat requests and tool discovery.
type ChatHandler struct {
	assistant Assistant
	tools     service.ToolConnector
}

func NewChatHandler(assistant Assistant, tools service.ToolConnector) *ChatHandler {
	return &ChatHandler{assistant: assistant, tools: tools}
}

// MessageRequest is the HTTP request payload for a chat message.
type MessageRequest struct {
	Message string `json:"message"`
}

// Message handles POST /api/chat/message.
func (h *ChatHandler) Message(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		contextutil.Logger(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.assistant.ProcessMessage(ctx, req.Message)
	if err != nil {
		serviceError(ctx, w, err, "Failed to process message")
		return
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}

// ToolResponse is one advertised tool.
type ToolResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Tools handles GET /api/chat/tools.
func (h *ChatHandler) Tools(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.Logger(ctx)

	client, err := h.tools.Connect(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "tool server unreachable", "error", err)
		writeError(w, http.StatusBadGateway, "Tool server unreachable")
		return
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.WarnContext(ctx, "tool server disconnect failed", "error", err)
		}
	}()

	tools, err := client.ListTools(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "listing tools failed", "error", err)
		writeError(w, http.StatusBadGateway, "Failed to list tools")
		return
	}

	out := make([]ToolResponse, len(tools))
	for i, tool := range tools {
		out[i] = ToolResponse{Name: tool.Name, Description: tool.Description}
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{
		"tools": out,
		"count": len(out),
	})
}
