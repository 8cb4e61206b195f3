// Package indexer provides the file ingestion pipeline: extract, embed, store.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/semdex/semdex/internal/embedding"
	"github.com/semdex/semdex/internal/extract"
	"github.com/semdex/semdex/internal/fileid"
	"github.com/semdex/semdex/internal/keyword"
	"github.com/semdex/semdex/internal/models"
	"github.com/semdex/semdex/internal/storage"
	"github.com/semdex/semdex/internal/walker"
	"github.com/semdex/semdex/pkg/utils"
)

// previewRunes is the stored preview length, counted in runes.
const previewRunes = 1000

// DuplicatePolicy decides what happens when a path is already indexed.
type DuplicatePolicy int

const (
	// PolicyReject fails ingestion of an already-indexed path.
	PolicyReject DuplicatePolicy = iota
	// PolicyReplace atomically swaps the stored record for the path.
	PolicyReplace
)

// Indexer ingests files into the record store and the keyword sidecar.
type Indexer struct {
	store     storage.Storage
	embedder  embedding.Embedder
	keyword   keyword.Index
	extractor *extract.Extractor

	policy  DuplicatePolicy
	workers int
	ignores []string
	logger  *zap.Logger
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLogger sets a logger for ingestion events.
func WithLogger(l *zap.Logger) Option {
	return func(idx *Indexer) { idx.logger = l }
}

// WithDuplicatePolicy sets how already-indexed paths are handled.
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(idx *Indexer) { idx.policy = p }
}

// WithWorkers sets the number of concurrent ingestion workers for directory
// batches. Values below 1 mean serial ingestion.
func WithWorkers(n int) Option {
	return func(idx *Indexer) { idx.workers = n }
}

// WithIgnores sets the directory names pruned during directory walks.
func WithIgnores(dirs []string) Option {
	return func(idx *Indexer) { idx.ignores = dirs }
}

// NewIndexer creates an indexer with the given dependencies. A nil keyword
// index disables the sidecar; a nil extractor gets the default one.
func NewIndexer(
	store storage.Storage,
	embedder embedding.Embedder,
	kw keyword.Index,
	extractor *extract.Extractor,
	opts ...Option,
) *Indexer {
	if kw == nil {
		kw = keyword.NopIndex{}
	}
	if extractor == nil {
		extractor = extract.NewExtractor()
	}
	idx := &Indexer{
		store:     store,
		embedder:  embedder,
		keyword:   kw,
		extractor: extractor,
		policy:    PolicyReject,
		workers:   1,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// IndexFile ingests a single file: stat, extension gate, extract, embed,
// store. Nothing is persisted unless every stage succeeds; a file that fails
// the extension gate is never opened. The returned record is the stored one.
func (idx *Indexer) IndexFile(ctx context.Context, path string) (*models.FileRecord, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: not a regular file: %s", extract.ErrUnsupported, absPath)
	}

	text, err := idx.extractor.Extract(absPath)
	if err != nil {
		return nil, fmt.Errorf("extract content: %w", err)
	}

	vec, err := idx.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	rec := models.NewFileRecord(absPath, mimeTypeFor(absPath), info.Size(),
		vec, utils.Preview(text, previewRunes))

	switch idx.policy {
	case PolicyReplace:
		err = idx.store.Replace(ctx, rec)
	default:
		err = idx.store.Create(ctx, rec)
	}
	if err != nil {
		return nil, fmt.Errorf("store record: %w", err)
	}

	// The sidecar write is best effort; the record store is the source of
	// truth and is already committed at this point.
	doc := &keyword.Document{Path: absPath, Name: searchableName(rec.Name), Preview: rec.Preview}
	if kwErr := idx.keyword.Index(ctx, fileid.ForPath(absPath), doc); kwErr != nil {
		idx.logger.Warn("keyword index write failed",
			zap.String("path", absPath), zap.Error(kwErr))
	}

	idx.logger.Debug("file indexed",
		zap.String("path", absPath),
		zap.Int64("size_bytes", rec.SizeBytes),
		zap.Int("dimensions", len(rec.Embedding)))
	return rec, nil
}

// IndexDirectory walks dir and ingests every regular file found. Files with
// unsupported extensions are counted as skipped; any other per-file error is
// recorded in the report and the batch keeps going. With more than one
// worker files are ingested concurrently, the store's unique path constraint
// arbitrating same-path races.
func (idx *Indexer) IndexDirectory(ctx context.Context, dir string) (*Report, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return nil, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", absDir)
	}

	files, errs := walker.Walk(ctx, absDir, idx.ignores)

	report := &Report{}
	var mu sync.Mutex

	workers := idx.workers
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for path := range files {
				_, indexErr := idx.IndexFile(ctx, path)
				mu.Lock()
				switch {
				case indexErr == nil:
					report.Indexed++
				case errors.Is(indexErr, extract.ErrUnsupported):
					report.Skipped++
				default:
					report.Failed++
					report.Failures = append(report.Failures,
						Failure{Path: path, Reason: indexErr.Error()})
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if walkErr := <-errs; walkErr != nil {
		return report, fmt.Errorf("walk directory: %w", walkErr)
	}

	idx.logger.Info("directory indexed",
		zap.String("dir", absDir),
		zap.Int("indexed", report.Indexed),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, nil
}

// Delete removes the record for path from the store and the sidecar.
func (idx *Indexer) Delete(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	if err := idx.store.Delete(ctx, absPath); err != nil {
		return err
	}
	if kwErr := idx.keyword.Delete(ctx, fileid.ForPath(absPath)); kwErr != nil {
		idx.logger.Warn("keyword index delete failed",
			zap.String("path", absPath), zap.Error(kwErr))
	}
	idx.logger.Debug("file deleted", zap.String("path", absPath))
	return nil
}

// Reset drops every record from the store and clears the sidecar. A sidecar
// failure is logged but does not fail the reset; stale sidecar hits are
// dropped at query time anyway.
func (idx *Indexer) Reset(ctx context.Context) error {
	if err := idx.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	if kwErr := idx.keyword.Reset(); kwErr != nil {
		idx.logger.Warn("keyword index reset failed", zap.Error(kwErr))
	}
	idx.logger.Info("index reset")
	return nil
}

// mimeTypeFor guesses the MIME type from the extension alone; file content
// is never sniffed. Unknown extensions yield "".
func mimeTypeFor(path string) string {
	ext := models.ExtensionOf(path)
	if ext == "" {
		return ""
	}
	return mime.TypeByExtension("." + ext)
}

// searchableName returns name with underscores replaced by spaces so the
// sidecar's standard analyzer can match the words of filenames like
// "quarterly_report_2024.pdf".
func searchableName(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}
