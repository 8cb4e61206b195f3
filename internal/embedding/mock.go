package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/semdex/semdex/pkg/utils"
)

// MockEmbedder is a deterministic bag-of-words embedder. Each lower-cased
// token adds weight to two hash-chosen components, and the result is
// L2-normalized, so texts sharing words score measurably higher cosine than
// unrelated texts. Good enough to exercise ranking in tests and demo runs
// without a model server.
type MockEmbedder struct {
	dimensions int
	// FailOn, when non-empty, makes Embed fail for any text containing it.
	// Lets tests drive the embedding-failure path of the pipeline.
	FailOn string
}

// NewMockEmbedder returns a mock embedder of the given width (384, the width
// of the usual MiniLM export, when non-positive).
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed returns the bag-of-words embedding for text. The empty string embeds
// to the zero vector, which the scorer treats as maximally dissimilar.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.FailOn != "" && strings.Contains(text, e.FailOn) {
		return nil, fmt.Errorf("%w: mock refuses text containing %q", ErrEmbed, e.FailOn)
	}
	emb := make([]float32, e.dimensions)
	for _, word := range SplitWords(strings.ToLower(text)) {
		h := HashString(word)
		emb[h%e.dimensions] += 1.0
		emb[(h/7)%e.dimensions] += 0.5
	}
	utils.NormalizeL2(emb)
	return emb, nil
}

// EmbedBatch embeds each text independently.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the embedding width.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op.
func (e *MockEmbedder) Close() error {
	return nil
}
