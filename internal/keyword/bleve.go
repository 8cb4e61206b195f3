package keyword

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// BleveIndex implements Index using Bleve.
type BleveIndex struct {
	index bleve.Index
	path  string
}

func indexMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so a query for
	// an exact word matches it. The English analyzer stems, which breaks
	// identifier and error-code lookups.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("name", textFieldMapping)
	docMapping.AddFieldMappingsAt("preview", textFieldMapping)
	docMapping.AddFieldMappingsAt("path", bleve.NewKeywordFieldMapping())
	im.AddDocumentMapping("file", docMapping)
	im.DefaultType = "file"
	im.DefaultMapping = docMapping

	return im
}

// NewBleveIndex creates or opens a Bleve index at path. An existing index is
// reused; remove the directory to rebuild after a mapping change.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open keyword index: %w", openErr)
		}
		return &BleveIndex{index: index, path: path}, nil
	}

	index, err := bleve.New(path, indexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create keyword index: %w", err)
	}
	return &BleveIndex{index: index, path: path}, nil
}

// Index stores doc under id, replacing any previous document with that id.
func (b *BleveIndex) Index(ctx context.Context, id string, doc *Document) error {
	return b.index.Index(id, doc)
}

// Search runs a match query over name and preview and returns up to limit
// hits, best first.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int) ([]*Result, error) {
	if limit <= 0 {
		return nil, nil
	}
	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	req.Size = limit
	results, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}
	out := make([]*Result, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &Result{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// Delete removes the document with id. Deleting an unknown id is not an
// error; Bleve treats it as a no-op.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	return b.index.Delete(id)
}

// DocCount returns the number of indexed documents.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Reset drops the index directory and recreates an empty index.
func (b *BleveIndex) Reset() error {
	if err := b.index.Close(); err != nil {
		return fmt.Errorf("failed to close keyword index: %w", err)
	}
	if err := os.RemoveAll(b.path); err != nil {
		return fmt.Errorf("failed to remove keyword index: %w", err)
	}
	index, err := bleve.New(b.path, indexMapping())
	if err != nil {
		return fmt.Errorf("failed to recreate keyword index: %w", err)
	}
	b.index = index
	return nil
}

// Close closes the underlying Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
