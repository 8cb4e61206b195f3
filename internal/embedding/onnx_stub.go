//go:build !cgo

package embedding

import (
	"context"
	"fmt"
)

// ONNXConfig configures the local ONNX embedder.
type ONNXConfig struct {
	ModelPath   string
	LibraryPath string
	Dimensions  int
	MaxTokens   int
	CacheSize   int
}

// ONNXEmbedder is unavailable without cgo.
type ONNXEmbedder struct{}

func NewONNXEmbedder(ONNXConfig) (*ONNXEmbedder, error) {
	return nil, fmt.Errorf("%w: onnx embedder requires a cgo build", ErrEmbed)
}

func (e *ONNXEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("%w: onnx embedder requires a cgo build", ErrEmbed)
}

func (e *ONNXEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, fmt.Errorf("%w: onnx embedder requires a cgo build", ErrEmbed)
}

func (e *ONNXEmbedder) Dimensions() int { return 0 }

func (e *ONNXEmbedder) Close() error { return nil }
