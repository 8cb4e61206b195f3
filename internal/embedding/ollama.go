package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OllamaConfig configures the Ollama HTTP embedder. Zero values take
// defaults suitable for a local Ollama install.
type OllamaConfig struct {
	BaseURL    string
	Model      string
	Dimensions int
	Timeout    time.Duration
	CacheSize  int
}

func (c *OllamaConfig) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:11434"
	}
	if c.Model == "" {
		c.Model = "nomic-embed-text"
	}
	if c.Dimensions <= 0 {
		c.Dimensions = 768
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	if c.CacheSize <= 0 {
		c.CacheSize = 1000
	}
}

// OllamaEmbedder embeds text through Ollama's /api/embed endpoint. Single
// embeds go through an LRU cache keyed by the text itself; batch calls hit
// the server directly.
type OllamaEmbedder struct {
	baseURL    string
	model      string
	dimensions int
	client     *http.Client
	cache      *EmbeddingCache
}

// NewOllamaEmbedder returns an embedder for the given config.
func NewOllamaEmbedder(cfg OllamaConfig) *OllamaEmbedder {
	cfg.applyDefaults()
	return &OllamaEmbedder{
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		client:     &http.Client{Timeout: cfg.Timeout},
		cache:      NewEmbeddingCache(cfg.CacheSize),
	}
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed returns the embedding for text, using the cache when possible.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}
	embeddings, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	e.cache.Set(text, embeddings[0])
	return embeddings[0], nil
}

// EmbedBatch embeds texts in one request, preserving input order.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	body, err := json.Marshal(embedRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrEmbed, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrEmbed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: server returned %d: %s", ErrEmbed, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrEmbed, err)
	}
	if len(parsed.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", ErrEmbed, len(parsed.Embeddings), len(texts))
	}
	for i, emb := range parsed.Embeddings {
		if len(emb) != e.dimensions {
			return nil, fmt.Errorf("%w: input %d has %d dimensions, model %q configured for %d",
				ErrEmbed, i, len(emb), e.model, e.dimensions)
		}
	}
	return parsed.Embeddings, nil
}

// Dimensions returns the configured embedding width.
func (e *OllamaEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op; the HTTP client holds no persistent resources.
func (e *OllamaEmbedder) Close() error {
	return nil
}
