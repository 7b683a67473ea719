package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_generator.go -package=mocks ragserver/internal/service Generator
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_tool_client.go -package=mocks ragserver/internal/service ToolClient,ToolConnector
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_context_retriever.go -package=mocks ragserver/internal/service ContextRetriever
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_history_writer.go -package=mocks ragserver/internal/service HistoryWriter

import (
	"context"
	"fmt"
	"strings"

	"ragserver/internal/contextutil"
	"ragserver/internal/history"
	"ragserver/internal/llm"
)

// decisionTemperature keeps tool selection deterministic.
var decisionTemperature = 0.1

// contextFragmentLimit is how many retrieved fragments a conversational
// reply may cite.
const contextFragmentLimit = 3

// Generator produces text from prompts. This interface is defined from the
// service layer's perspective (consumer-first).
type Generator interface {
	// Generate returns the full completion for a prompt.
	Generate(ctx context.Context, prompt string, opts llm.GenerateOptions) (string, error)
	// GenerateStream streams the completion through onChunk.
	GenerateStream(ctx context.Context, prompt string, opts llm.GenerateOptions, onChunk func(chunk string, done bool) error) error
	// IsAvailable reports whether the backing model can be reached.
	IsAvailable(ctx context.Context) bool
}

// ToolClient is a connected tool server session.
type ToolClient interface {
	// ListTools returns the tools the server advertises.
	ListTools(ctx context.Context) ([]llm.ToolInfo, error)
	// CallTool invokes a tool and returns its text output.
	CallTool(ctx context.Context, name string, args map[string]any) (string, error)
	// Close tears down the session.
	Close() error
}

// ToolConnector dials the tool server. The assistant connects per exchange
// and disconnects best-effort afterwards.
type ToolConnector interface {
	Connect(ctx context.Context) (ToolClient, error)
}

// ContextFragment is a retrieved piece of knowledge-base text used to
// ground a conversational reply.
type ContextFragment struct {
	Title      string
	Content    string
	Similarity float64
}

// ContextRetriever finds knowledge-base fragments relevant to a message.
type ContextRetriever interface {
	TopFragments(ctx context.Context, query string, limit int) ([]ContextFragment, error)
}

// HistoryWriter records completed exchanges.
type HistoryWriter interface {
	Save(ctx context.Context, entry history.Entry) error
}

// AssistantResponse is the assistant's reply to one message.
type AssistantResponse struct {
	Content  string         `json:"content"`
	Type     string         `json:"type"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Response types.
const (
	ResponseTypeTool           = "tool"
	ResponseTypeConversational = "conversational"
	ResponseTypeError          = "error"
)

// AssistantService answers chat messages, either by invoking a tool the
// model selected or by a conversational reply grounded in retrieved context.
type AssistantService struct {
	generator Generator
	tools     ToolConnector
	retriever ContextRetriever
	history   HistoryWriter
}

// NewAssistantService creates an AssistantService. retriever and historyLog
// may be nil; the assistant then answers without retrieved context and
// without recording exchanges.
func NewAssistantService(generator Generator, tools ToolConnector,
	retriever ContextRetriever, historyLog HistoryWriter) *AssistantService {
	return &AssistantService{
		generator: generator,
		tools:     tools,
		retriever: retriever,
		history:   historyLog,
	}
}

// ProcessMessage handles one user message and returns the reply.
func (s *AssistantService) ProcessMessage(ctx context.Context, message string) (*AssistantResponse, error) {
	return s.process(ctx, message, nil)
}

// StreamMessage handles one user message, forwarding conversational output
// through onChunk as it is generated. Tool output arrives as a single chunk.
func (s *AssistantService) StreamMessage(ctx context.Context, message string, onChunk func(chunk string) error) (*AssistantResponse, error) {
	return s.process(ctx, message, onChunk)
}

func (s *AssistantService) process(ctx context.Context, message string, onChunk func(chunk string) error) (*AssistantResponse, error) {
	logger := contextutil.Logger(ctx)

	if strings.TrimSpace(message) == "" {
		return nil, &ValidationError{Field: "message", Message: "cannot be empty"}
	}
	if !s.generator.IsAvailable(ctx) {
		return nil, fmt.Errorf("language model unavailable: %w", ErrExternalService)
	}

	decision, client := s.decide(ctx, message)
	if client != nil {
		defer func() {
			if err := client.Close(); err != nil {
				logger.Warn("tool server disconnect failed", "error", err)
			}
		}()
	}

	var resp *AssistantResponse
	if decision.UseTool && len(decision.Arguments) > 0 {
		resp = s.invokeTool(ctx, client, decision)
	} else {
		var err error
		resp, err = s.converse(ctx, message, onChunk)
		if err != nil {
			return nil, err
		}
	}

	if onChunk != nil && resp.Type != ResponseTypeConversational {
		if err := onChunk(resp.Content); err != nil {
			return nil, fmt.Errorf("forward response: %w", err)
		}
	}

	s.record(ctx, message, resp)
	return resp, nil
}

// decide asks the model whether a tool should handle the message. Any
// failure along the way (no tool server, no tools, malformed model output)
// degrades to the conversational path. The returned client is non-nil when
// a connection was established and must be closed by the caller.
func (s *AssistantService) decide(ctx context.Context, message string) (llm.Decision, ToolClient) {
	logger := contextutil.Logger(ctx)

	if s.tools == nil {
		return llm.NoTool("no tool server configured"), nil
	}

	client, err := s.tools.Connect(ctx)
	if err != nil {
		logger.Warn("tool server unreachable", "error", err)
		return llm.NoTool("tool server unreachable"), nil
	}

	tools, err := client.ListTools(ctx)
	if err != nil || len(tools) == 0 {
		if err != nil {
			logger.Warn("listing tools failed", "error", err)
		}
		return llm.NoTool("no tools available"), client
	}

	raw, err := s.generator.Generate(ctx, llm.DecisionPrompt(message, tools),
		llm.GenerateOptions{Temperature: &decisionTemperature})
	if err != nil {
		logger.Warn("tool decision failed", "error", err)
		return llm.NoTool("decision generation failed"), client
	}

	decision, ok := llm.ParseDecision(raw)
	if !ok {
		logger.Debug("unparseable tool decision", "raw", raw)
	}
	return decision, client
}

func (s *AssistantService) invokeTool(ctx context.Context, client ToolClient, decision llm.Decision) *AssistantResponse {
	output, err := client.CallTool(ctx, decision.Tool, decision.Arguments)
	if err != nil {
		contextutil.Logger(ctx).Warn("tool invocation failed",
			"tool", decision.Tool, "error", err)
		return &AssistantResponse{
			Content: fmt.Sprintf("The %s tool failed: %v", decision.Tool, err),
			Type:    ResponseTypeError,
			Metadata: map[string]any{
				"tool":      decision.Tool,
				"reasoning": decision.Reasoning,
			},
		}
	}

	return &AssistantResponse{
		Content: output,
		Type:    ResponseTypeTool,
		Metadata: map[string]any{
			"tool":      decision.Tool,
			"arguments": decision.Arguments,
			"reasoning": decision.Reasoning,
		},
	}
}

func (s *AssistantService) converse(ctx context.Context, message string, onChunk func(chunk string) error) (*AssistantResponse, error) {
	logger := contextutil.Logger(ctx)

	var fragments []ContextFragment
	if s.retriever != nil {
		var err error
		fragments, err = s.retriever.TopFragments(ctx, message, contextFragmentLimit)
		if err != nil {
			logger.Warn("context retrieval failed", "error", err)
			fragments = nil
		}
	}

	prompt := conversationalPrompt(message, fragments)

	var content string
	if onChunk != nil {
		var b strings.Builder
		err := s.generator.GenerateStream(ctx, prompt, llm.GenerateOptions{},
			func(chunk string, done bool) error {
				b.WriteString(chunk)
				if chunk == "" {
					return nil
				}
				return onChunk(chunk)
			})
		if err != nil {
			return nil, fmt.Errorf("generate reply: %w", err)
		}
		content = b.String()
	} else {
		var err error
		content, err = s.generator.Generate(ctx, prompt, llm.GenerateOptions{})
		if err != nil {
			return nil, fmt.Errorf("generate reply: %w", err)
		}
	}

	resp := &AssistantResponse{
		Content: content,
		Type:    ResponseTypeConversational,
	}
	if len(fragments) > 0 {
		resp.Metadata = map[string]any{"context_fragments": len(fragments)}
	}
	return resp, nil
}

// record appends the exchange to the history log; failures are logged and
// otherwise ignored.
func (s *AssistantService) record(ctx context.Context, message string, resp *AssistantResponse) {
	if s.history == nil {
		return
	}

	var toolUsed string
	if resp.Type == ResponseTypeTool {
		toolUsed, _ = resp.Metadata["tool"].(string)
	}
	err := s.history.Save(ctx, history.Entry{
		UserMessage:      message,
		AssistantMessage: resp.Content,
		ToolUsed:         toolUsed,
	})
	if err != nil {
		contextutil.Logger(ctx).Warn("recording conversation failed", "error", err)
	}
}

func conversationalPrompt(message string, fragments []ContextFragment) string {
	if len(fragments) == 0 {
		return fmt.Sprintf("You are a helpful assistant. Answer concisely.\n\nQuestion: %s\n\nAnswer:", message)
	}

	var b strings.Builder
	b.WriteString("You are a helpful assistant. Use the context below when it is relevant and cite sources by their number, like [1]. If the context does not help, answer from general knowledge.\n\nContext:\n")
	for i, f := range fragments {
		fmt.Fprintf(&b, "[%d] %s\n%s\n\n", i+1, f.Title, f.Content)
	}
	fmt.Fprintf(&b, "Question: %s\n\nAnswer:", message)
	return b.String()
}
