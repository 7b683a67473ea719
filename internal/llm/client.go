// Package llm holds the clients for the local inference servers: text
// generation over the Ollama API and embeddings over an OpenAI-compatible
// endpoint, plus the parser that turns free-form model output into a tool
// decision.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ragserver/internal/contextutil"
)

// Client talks to an Ollama-compatible text generation API.
type Client struct {
	BaseURL string
	Model   string
	client  *http.Client
}

// NewClient creates a generation client. Generation requests can be slow on
// local hardware, hence the long timeout.
func NewClient(baseURL, model string) *Client {
	return &Client{
		BaseURL: baseURL,
		Model:   model,
		client:  &http.Client{Timeout: 2 * time.Minute},
	}
}

// GenerateOptions tunes a single generation call.
type GenerateOptions struct {
	// Temperature overrides the model default when non-nil.
	Temperature *float64
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Generate returns the complete model response for prompt.
func (c *Client) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	logger := contextutil.Logger(ctx)
	logger.DebugContext(ctx, "generating response", "model", c.Model, "prompt_length", len(prompt))

	body, err := c.post(ctx, generateRequest{
		Model:   c.Model,
		Prompt:  prompt,
		Stream:  false,
		Options: options(opts),
	})
	if err != nil {
		return "", err
	}
	defer func() {
		_ = body.Close()
	}()

	var out generateResponse
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode generate response: %w", err)
	}

	return out.Response, nil
}

// GenerateStream streams the model response for prompt, invoking onChunk for
// each response fragment. The final invocation has done=true. A non-nil error
// from onChunk aborts the stream.
func (c *Client) GenerateStream(ctx context.Context, prompt string, opts GenerateOptions, onChunk func(chunk string, done bool) error) error {
	body, err := c.post(ctx, generateRequest{
		Model:   c.Model,
		Prompt:  prompt,
		Stream:  true,
		Options: options(opts),
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = body.Close()
	}()

	// The streaming API emits one JSON object per line.
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var out generateResponse
		if err := json.Unmarshal(line, &out); err != nil {
			return fmt.Errorf("failed to decode stream chunk: %w", err)
		}

		if err := onChunk(out.Response, out.Done); err != nil {
			return err
		}
		if out.Done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream read error: %w", err)
	}
	return nil
}

// ListModels returns the names of the models the server has loaded.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model listing failed with status %d", resp.StatusCode)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("failed to decode model list: %w", err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// IsAvailable reports whether the generation server answers at all.
func (c *Client) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	return resp.StatusCode == http.StatusOK
}

func (c *Client) post(ctx context.Context, payload generateRequest) (io.ReadCloser, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/generate", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call generation API: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, fmt.Errorf("generation API error: %d - %s", resp.StatusCode, string(body))
	}

	return resp.Body, nil
}

func options(opts GenerateOptions) map[string]any {
	if opts.Temperature == nil {
		return nil
	}
	return map[string]any{"temperature": *opts.Temperature}
}
