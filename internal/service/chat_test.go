package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"ragserver/internal/history"
	"ragserver/internal/llm"
	"ragserver/internal/service"
	"ragserver/internal/service/mocks"
)

func init() {
	// Suppress logs from slog.Default() used in the service layer.
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type assistantMocks struct {
	generator *mocks.MockGenerator
	connector *mocks.MockToolConnector
	client    *mocks.MockToolClient
	retriever *mocks.MockContextRetriever
	history   *mocks.MockHistoryWriter
}

func newAssistant(t *testing.T) (*service.AssistantService, assistantMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := assistantMocks{
		generator: mocks.NewMockGenerator(ctrl),
		connector: mocks.NewMockToolConnector(ctrl),
		client:    mocks.NewMockToolClient(ctrl),
		retriever: mocks.NewMockContextRetriever(ctrl),
		history:   mocks.NewMockHistoryWriter(ctrl),
	}
	svc := service.NewAssistantService(m.generator, m.connector, m.retriever, m.history)
	return svc, m
}

var searchTool = []llm.ToolInfo{{Name: "search_semantic", Description: "search the knowledge base"}}

// generateByPrompt answers the decision prompt with decisionJSON and any
// other prompt with reply.
func generateByPrompt(decisionJSON, reply string) func(context.Context, string, llm.GenerateOptions) (string, error) {
	return func(_ context.Context, prompt string, _ llm.GenerateOptions) (string, error) {
		if strings.Contains(prompt, "Respond ONLY with valid JSON") {
			return decisionJSON, nil
		}
		return reply, nil
	}
}

func TestProcessMessageEmptyMessage(t *testing.T) {
	svc, _ := newAssistant(t)

	_, err := svc.ProcessMessage(context.Background(), "   ")
	if !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestProcessMessageModelUnavailable(t *testing.T) {
	svc, m := newAssistant(t)
	ctx := context.Background()

	m.generator.EXPECT().IsAvailable(ctx).Return(false)

	_, err := svc.ProcessMessage(ctx, "hello")
	if !errors.Is(err, service.ErrExternalService) {
		t.Errorf("expected ErrExternalService, got %v", err)
	}
}

func TestProcessMessageToolPath(t *testing.T) {
	svc, m := newAssistant(t)
	ctx := context.Background()

	decision := `{"use_tool": true, "tool": "search_semantic", "arguments": {"query": "deploys"}, "reasoning": "user wants documents"}`

	m.generator.EXPECT().IsAvailable(ctx).Return(true)
	m.connector.EXPECT().Connect(ctx).Return(m.client, nil)
	m.client.EXPECT().ListTools(ctx).Return(searchTool, nil)
	m.generator.EXPECT().Generate(ctx, gomock.Any(), gomock.Any()).
		DoAndReturn(generateByPrompt(decision, ""))
	m.client.EXPECT().CallTool(ctx, "search_semantic", map[string]any{"query": "deploys"}).
		Return("Found 2 results.", nil)
	m.client.EXPECT().Close().Return(nil)
	m.history.EXPECT().Save(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, entry history.Entry) error {
			if entry.ToolUsed != "search_semantic" {
				t.Errorf("expected tool recorded, got %q", entry.ToolUsed)
			}
			return nil
		})

	resp, err := svc.ProcessMessage(ctx, "find deploy docs")
	if err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}
	if resp.Type != service.ResponseTypeTool {
		t.Errorf("expected tool response, got %q", resp.Type)
	}
	if resp.Content != "Found 2 results." {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.Metadata["tool"] != "search_semantic" {
		t.Errorf("unexpected metadata %+v", resp.Metadata)
	}
}

func TestProcessMessageConversationalWithContext(t *testing.T) {
	svc, m := newAssistant(t)
	ctx := context.Background()

	decision := `{"use_tool": false, "reasoning": "general question"}`
	fragments := []service.ContextFragment{
		{Title: "guide", Content: "Deploy with make deploy.", Similarity: 0.9},
	}

	m.generator.EXPECT().IsAvailable(ctx).Return(true)
	m.connector.EXPECT().Connect(ctx).Return(m.client, nil)
	m.client.EXPECT().ListTools(ctx).Return(searchTool, nil)
	m.retriever.EXPECT().TopFragments(ctx, "how do I deploy?", 3).Return(fragments, nil)
	m.generator.EXPECT().Generate(ctx, gomock.Any(), gomock.Any()).
		DoAndReturn(generateByPrompt(decision, "Run make deploy [1].")).Times(2)
	m.client.EXPECT().Close().Return(nil)
	m.history.EXPECT().Save(ctx, gomock.Any()).Return(nil)

	resp, err := svc.ProcessMessage(ctx, "how do I deploy?")
	if err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}
	if resp.Type != service.ResponseTypeConversational {
		t.Errorf("expected conversational response, got %q", resp.Type)
	}
	if resp.Content != "Run make deploy [1]." {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.Metadata["context_fragments"] != 1 {
		t.Errorf("expected context fragment count, got %+v", resp.Metadata)
	}
}

func TestProcessMessageToolServerUnreachable(t *testing.T) {
	svc, m := newAssistant(t)
	ctx := context.Background()

	m.generator.EXPECT().IsAvailable(ctx).Return(true)
	m.connector.EXPECT().Connect(ctx).Return(nil, errors.New("connection refused"))
	m.retriever.EXPECT().TopFragments(ctx, "hello", 3).Return(nil, nil)
	m.generator.EXPECT().Generate(ctx, gomock.Any(), gomock.Any()).Return("Hi there.", nil)
	m.history.EXPECT().Save(ctx, gomock.Any()).Return(nil)

	resp, err := svc.ProcessMessage(ctx, "hello")
	if err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}
	if resp.Type != service.ResponseTypeConversational {
		t.Errorf("expected conversational fallback, got %q", resp.Type)
	}
}

func TestProcessMessageMalformedDecision(t *testing.T) {
	svc, m := newAssistant(t)
	ctx := context.Background()

	m.generator.EXPECT().IsAvailable(ctx).Return(true)
	m.connector.EXPECT().Connect(ctx).Return(m.client, nil)
	m.client.EXPECT().ListTools(ctx).Return(searchTool, nil)
	m.retriever.EXPECT().TopFragments(ctx, "hello", 3).Return(nil, nil)
	m.generator.EXPECT().Generate(ctx, gomock.Any(), gomock.Any()).
		DoAndReturn(generateByPrompt("certainly! here is my decision", "Hi.")).Times(2)
	m.client.EXPECT().Close().Return(nil)
	m.history.EXPECT().Save(ctx, gomock.Any()).Return(nil)

	resp, err := svc.ProcessMessage(ctx, "hello")
	if err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}
	if resp.Type != service.ResponseTypeConversational {
		t.Errorf("expected conversational fallback, got %q", resp.Type)
	}
}

func TestProcessMessageToolFailure(t *testing.T) {
	svc, m := newAssistant(t)
	ctx := context.Background()

	decision := `{"use_tool": true, "tool": "divide", "arguments": {"a": 1, "b": 0}, "reasoning": "math"}`

	m.generator.EXPECT().IsAvailable(ctx).Return(true)
	m.connector.EXPECT().Connect(ctx).Return(m.client, nil)
	m.client.EXPECT().ListTools(ctx).Return(searchTool, nil)
	m.generator.EXPECT().Generate(ctx, gomock.Any(), gomock.Any()).
		DoAndReturn(generateByPrompt(decision, ""))
	m.client.EXPECT().CallTool(ctx, "divide", gomock.Any()).
		Return("", errors.New("division by zero"))
	m.client.EXPECT().Close().Return(nil)
	m.history.EXPECT().Save(ctx, gomock.Any()).Return(nil)

	resp, err := svc.ProcessMessage(ctx, "what is 1/0?")
	if err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}
	if resp.Type != service.ResponseTypeError {
		t.Errorf("expected error response, got %q", resp.Type)
	}
	if !strings.Contains(resp.Content, "division by zero") {
		t.Errorf("expected tool failure in content, got %q", resp.Content)
	}
}

func TestProcessMessageHistoryFailureIsNonFatal(t *testing.T) {
	svc, m := newAssistant(t)
	ctx := context.Background()

	m.generator.EXPECT().IsAvailable(ctx).Return(true)
	m.connector.EXPECT().Connect(ctx).Return(nil, errors.New("no server"))
	m.retriever.EXPECT().TopFragments(ctx, "hello", 3).Return(nil, nil)
	m.generator.EXPECT().Generate(ctx, gomock.Any(), gomock.Any()).Return("Hi.", nil)
	m.history.EXPECT().Save(ctx, gomock.Any()).Return(errors.New("disk full"))

	resp, err := svc.ProcessMessage(ctx, "hello")
	if err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}
	if resp.Content != "Hi." {
		t.Errorf("unexpected content %q", resp.Content)
	}
}

func TestStreamMessage(t *testing.T) {
	svc, m := newAssistant(t)
	ctx := context.Background()

	m.generator.EXPECT().IsAvailable(ctx).Return(true)
	m.connector.EXPECT().Connect(ctx).Return(m.client, nil)
	m.client.EXPECT().ListTools(ctx).Return(searchTool, nil)
	m.generator.EXPECT().Generate(ctx, gomock.Any(), gomock.Any()).
		Return(`{"use_tool": false, "reasoning": "chat"}`, nil)
	m.retriever.EXPECT().TopFragments(ctx, "hello", 3).Return(nil, nil)
	m.generator.EXPECT().GenerateStream(ctx, gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ llm.GenerateOptions, onChunk func(string, bool) error) error {
			for _, chunk := range []string{"Hel", "lo."} {
				if err := onChunk(chunk, false); err != nil {
					return err
				}
			}
			return onChunk("", true)
		})
	m.client.EXPECT().Close().Return(nil)
	m.history.EXPECT().Save(ctx, gomock.Any()).Return(nil)

	var chunks []string
	resp, err := svc.StreamMessage(ctx, "hello", func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("StreamMessage() error = %v", err)
	}
	if resp.Content != "Hello." {
		t.Errorf("expected accumulated content, got %q", resp.Content)
	}
	if len(chunks) != 2 {
		t.Errorf("expected 2 forwarded chunks, got %v", chunks)
	}
}
