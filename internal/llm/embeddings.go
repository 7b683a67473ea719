package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks ragserver/internal/llm Embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ragserver/internal/contextutil"
)

const (
	// maxBatchSize caps the number of inputs per provider call. The
	// provider allows more, but staying conservative keeps request bodies
	// small and failures cheap.
	maxBatchSize = 100
	// batchDelay is the pause between consecutive sub-batch calls, a
	// crude guard against provider rate limits.
	batchDelay = 100 * time.Millisecond
)

// EmbeddingError reports a failed embedding provider call. Provider failures
// surface to the caller as-is; there is no retry.
type EmbeddingError struct {
	Op  string
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding %s failed: %v", e.Op, e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// Embedder converts texts to fixed-dimension vectors.
type Embedder interface {
	// Embed embeds a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch embeds texts preserving input order. Empty input
	// returns an empty slice without calling the provider.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingsClient calls an OpenAI-compatible /v1/embeddings endpoint.
// It implements Embedder.
type EmbeddingsClient struct {
	BaseURL   string
	APIKey    string
	Model     string
	Dimension int
	client    *http.Client
	delay     time.Duration
}

// NewEmbeddingsClient creates an embeddings client. dimension is the expected
// vector size; every returned vector is validated against it.
func NewEmbeddingsClient(baseURL, apiKey, model string, dimension int) *EmbeddingsClient {
	return &EmbeddingsClient{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		Model:     model,
		Dimension: dimension,
		client:    &http.Client{Timeout: 30 * time.Second},
		delay:     batchDelay,
	}
}

type embeddingsRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed embeds a single text.
func (c *EmbeddingsClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.call(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch partitions texts into sub-batches of at most maxBatchSize,
// issues one provider call per sub-batch with a fixed pause in between, and
// concatenates the results in input order.
func (c *EmbeddingsClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	logger := contextutil.Logger(ctx)
	all := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += maxBatchSize {
		end := min(start+maxBatchSize, len(texts))

		vectors, err := c.call(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		all = append(all, vectors...)

		logger.InfoContext(ctx, "embedded batch",
			"batch_start", start, "batch_size", end-start)

		if end < len(texts) {
			select {
			case <-time.After(c.delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return all, nil
}

func (c *EmbeddingsClient) call(ctx context.Context, input []string) ([][]float32, error) {
	payload := embeddingsRequest{
		Model:      c.Model,
		Input:      input,
		Dimensions: c.Dimension,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &EmbeddingError{Op: "encode", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/embeddings", bytes.NewReader(data))
	if err != nil {
		return nil, &EmbeddingError{Op: "request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &EmbeddingError{Op: "call", Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &EmbeddingError{
			Op:  "call",
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var out embeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &EmbeddingError{Op: "decode", Err: err}
	}

	if len(out.Data) != len(input) {
		return nil, &EmbeddingError{
			Op:  "decode",
			Err: fmt.Errorf("got %d embeddings for %d inputs", len(out.Data), len(input)),
		}
	}

	vectors := make([][]float32, len(out.Data))
	for i, d := range out.Data {
		if len(d.Embedding) != c.Dimension {
			return nil, &EmbeddingError{
				Op:  "decode",
				Err: fmt.Errorf("embedding %d has %d dimensions, expected %d", i, len(d.Embedding), c.Dimension),
			}
		}
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// EncodeVector serializes a vector to the bracketed text form pgvector
// accepts: "[0.1,0.2,...]".
func EncodeVector(vector []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vector {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

// ParseVector parses the bracketed text form back into a vector. It is the
// inverse of EncodeVector for any finite float32 input.
func ParseVector(s string) ([]float32, error) {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimPrefix(trimmed, "[")
	trimmed = strings.TrimSuffix(trimmed, "]")
	if trimmed == "" {
		return []float32{}, nil
	}

	parts := strings.Split(trimmed, ",")
	vector := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vector component %d: %w", i, err)
		}
		vector[i] = float32(f)
	}
	return vector, nil
}
