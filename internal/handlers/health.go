package handlers

import (
	"context"
	"net/http"
	"time"

	"ragserver/internal/contextutil"
)

// HealthHandler reports liveness and the reachability of the downstream
// dependencies.
type HealthHandler struct {
	pingDatabase func(ctx context.Context) error
	llmAvailable func(ctx context.Context) bool
	timeout      time.Duration
}

func NewHealthHandler(pingDatabase func(ctx context.Context) error, llmAvailable func(ctx context.Context) bool) *HealthHandler {
	return &HealthHandler{
		pingDatabase: pingDatabase,
		llmAvailable: llmAvailable,
		timeout:      5 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Issues    []string          `json:"issues,omitempty"`
}

// Check handles GET /api/health. It returns 200 when all dependencies
// respond and 503 otherwise.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.Logger(ctx)

	checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string

	if err := h.pingDatabase(checkCtx); err != nil {
		logger.WarnContext(ctx, "database health check failed", "error", err)
		checks["database"] = "error"
		issues = append(issues, "database_unavailable")
	} else {
		checks["database"] = "ok"
	}

	if h.llmAvailable(checkCtx) {
		checks["llm"] = "ok"
	} else {
		logger.WarnContext(ctx, "llm health check failed")
		checks["llm"] = "error"
		issues = append(issues, "llm_unavailable")
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if len(issues) > 0 {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(ctx, w, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	})
}
