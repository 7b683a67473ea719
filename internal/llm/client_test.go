package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Model != "mistral" {
			t.Errorf("model = %q, want mistral", req.Model)
		}
		if req.Stream {
			t.Error("stream = true for non-streaming call")
		}

		_ = json.NewEncoder(w).Encode(generateResponse{Response: "hello back", Done: true})
	}))
	defer server.Close()

	c := NewClient(server.URL, "mistral")
	got, err := c.Generate(context.Background(), "hello", GenerateOptions{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "hello back" {
		t.Errorf("Generate() = %q, want %q", got, "hello back")
	}
}

func TestClientGenerateTemperature(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		temp, ok := req.Options["temperature"]
		if !ok {
			t.Error("temperature option missing")
		} else if temp != 0.1 {
			t.Errorf("temperature = %v, want 0.1", temp)
		}

		_ = json.NewEncoder(w).Encode(generateResponse{Response: "ok", Done: true})
	}))
	defer server.Close()

	temp := 0.1
	c := NewClient(server.URL, "mistral")
	if _, err := c.Generate(context.Background(), "hi", GenerateOptions{Temperature: &temp}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
}

func TestClientGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL, "mistral")
	if _, err := c.Generate(context.Background(), "hi", GenerateOptions{}); err == nil {
		t.Fatal("Generate() succeeded, want error")
	}
}

func TestClientGenerateStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chunks := []generateResponse{
			{Response: "Hello"},
			{Response: ", "},
			{Response: "world", Done: true},
		}
		enc := json.NewEncoder(w)
		for _, c := range chunks {
			_ = enc.Encode(c)
		}
	}))
	defer server.Close()

	c := NewClient(server.URL, "mistral")

	var full strings.Builder
	sawDone := false
	err := c.GenerateStream(context.Background(), "hi", GenerateOptions{}, func(chunk string, done bool) error {
		full.WriteString(chunk)
		if done {
			sawDone = true
		}
		return nil
	})
	if err != nil {
		t.Fatalf("GenerateStream() error = %v", err)
	}
	if full.String() != "Hello, world" {
		t.Errorf("streamed = %q, want %q", full.String(), "Hello, world")
	}
	if !sawDone {
		t.Error("done flag never delivered")
	}
}

func TestClientGenerateStreamCallbackError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		enc := json.NewEncoder(w)
		for i := 0; i < 10; i++ {
			_ = enc.Encode(generateResponse{Response: "x"})
		}
		_ = enc.Encode(generateResponse{Done: true})
	}))
	defer server.Close()

	c := NewClient(server.URL, "mistral")

	calls := 0
	err := c.GenerateStream(context.Background(), "hi", GenerateOptions{}, func(chunk string, done bool) error {
		calls++
		return fmt.Errorf("stop")
	})
	if err == nil {
		t.Fatal("GenerateStream() succeeded, want callback error")
	}
	if calls != 1 {
		t.Errorf("callback invoked %d times after error, want 1", calls)
	}
}

func TestClientListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"models":[{"name":"mistral"},{"name":"llama3"}]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "mistral")
	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(models) != 2 || models[0] != "mistral" || models[1] != "llama3" {
		t.Errorf("ListModels() = %v", models)
	}
}

func TestClientIsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	c := NewClient(server.URL, "mistral")
	if !c.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = false for healthy server")
	}

	server.Close()
	if c.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = true for closed server")
	}
}
