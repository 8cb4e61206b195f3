// Package embedding produces vector embeddings for text behind a provider
// interface, with Ollama HTTP, local ONNX, and deterministic mock
// implementations.
package embedding

import (
	"context"
	"errors"
)

// ErrEmbed marks embedding provider failures. Callers match it with
// errors.Is to tell embedding trouble apart from extraction or storage
// trouble.
var ErrEmbed = errors.New("embedding failed")

// Embedder produces fixed-width vector embeddings for text. Dimensions is
// constant for the lifetime of an instance; every vector it returns has that
// length.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
