//go:build cgo

package embedding

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/semdex/semdex/pkg/utils"
)

// ONNXConfig configures the local ONNX embedder.
type ONNXConfig struct {
	ModelPath   string
	LibraryPath string
	Dimensions  int
	MaxTokens   int
	CacheSize   int
}

func (c *ONNXConfig) applyDefaults() {
	if c.Dimensions <= 0 {
		c.Dimensions = 384
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 256
	}
	if c.CacheSize <= 0 {
		c.CacheSize = 1000
	}
}

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

func initRuntime(libraryPath string) error {
	ortInitOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// ONNXEmbedder runs a local sentence-transformer model through onnxruntime.
// Inference is serialized; the session holds pre-allocated tensors.
type ONNXEmbedder struct {
	session    *ort.DynamicAdvancedSession
	tokenizer  Tokenizer
	dimensions int
	maxTokens  int
	cache      *EmbeddingCache

	mu sync.Mutex
}

// NewONNXEmbedder loads the model at cfg.ModelPath and prepares a session.
func NewONNXEmbedder(cfg ONNXConfig) (*ONNXEmbedder, error) {
	cfg.applyDefaults()
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("%w: onnx model path is required", ErrEmbed)
	}
	if err := initRuntime(cfg.LibraryPath); err != nil {
		return nil, fmt.Errorf("%w: initialize onnxruntime: %v", ErrEmbed, err)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		nil)
	if err != nil {
		return nil, fmt.Errorf("%w: load model %s: %v", ErrEmbed, cfg.ModelPath, err)
	}

	return &ONNXEmbedder{
		session:    session,
		tokenizer:  &SimpleTokenizer{},
		dimensions: cfg.Dimensions,
		maxTokens:  cfg.MaxTokens,
		cache:      NewEmbeddingCache(cfg.CacheSize),
	}, nil
}

func (e *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbed, err)
	}

	inputIDs, attentionMask, tokenTypeIDs := e.tokenizer.Tokenize(text, e.maxTokens)

	e.mu.Lock()
	embedding, err := e.run(inputIDs, attentionMask, tokenTypeIDs)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	utils.NormalizeL2(embedding)
	e.cache.Set(text, embedding)
	return embedding, nil
}

func (e *ONNXEmbedder) run(inputIDs, attentionMask, tokenTypeIDs []int64) ([]float32, error) {
	inputShape := ort.NewShape(1, int64(e.maxTokens))

	idsTensor, err := ort.NewTensor(inputShape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: create input tensor: %v", ErrEmbed, err)
	}
	defer idsTensor.Destroy()

	maskTensor, err := ort.NewTensor(inputShape, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("%w: create mask tensor: %v", ErrEmbed, err)
	}
	defer maskTensor.Destroy()

	typesTensor, err := ort.NewTensor(inputShape, tokenTypeIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: create type tensor: %v", ErrEmbed, err)
	}
	defer typesTensor.Destroy()

	outputShape := ort.NewShape(1, int64(e.maxTokens), int64(e.dimensions))
	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		return nil, fmt.Errorf("%w: create output tensor: %v", ErrEmbed, err)
	}
	defer outputTensor.Destroy()

	err = e.session.Run(
		[]ort.ArbitraryTensor{idsTensor, maskTensor, typesTensor},
		[]ort.ArbitraryTensor{outputTensor})
	if err != nil {
		return nil, fmt.Errorf("%w: run inference: %v", ErrEmbed, err)
	}

	return meanPool(outputTensor.GetData(), attentionMask, e.maxTokens, e.dimensions), nil
}

// meanPool averages token vectors weighted by the attention mask, the usual
// pooling for sentence-transformer checkpoints.
func meanPool(hidden []float32, attentionMask []int64, maxTokens, dimensions int) []float32 {
	pooled := make([]float32, dimensions)
	var count float32
	for t := 0; t < maxTokens; t++ {
		if attentionMask[t] == 0 {
			continue
		}
		count++
		base := t * dimensions
		for d := 0; d < dimensions; d++ {
			pooled[d] += hidden[base+d]
		}
	}
	if count > 0 {
		for d := range pooled {
			pooled[d] /= count
		}
	}
	return pooled
}

func (e *ONNXEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}

func (e *ONNXEmbedder) Dimensions() int { return e.dimensions }

func (e *ONNXEmbedder) Close() error {
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
	return nil
}
