// Package mcpserver exposes the retrieval pipeline as MCP tools over stdio
// or streamable HTTP.
package mcpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"ragserver/internal/rag"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Server wraps an MCP server around the retrieval service.
type Server struct {
	rag    *rag.Service
	server *mcp.Server
}

// NewServer creates the MCP server and registers all tools.
func NewServer(ragService *rag.Service) *Server {
	impl := &mcp.Implementation{
		Name:    "ragserver",
		Version: Version,
	}

	s := &Server{
		rag:    ragService,
		server: mcp.NewServer(impl, nil),
	}

	s.registerTools()
	s.registerCalculator()
	s.registerTextTools()

	return s
}

// Run serves MCP over stdio until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves MCP over streamable HTTP on addr until the context is
// cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// toolError reports a failed tool invocation to the caller without failing
// the protocol exchange.
func toolError(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
