// Package keyword provides the optional keyword (BM25) sidecar index.
//
// The sidecar answers exact-word queries that embeddings are bad at (error
// codes, identifiers, flag names). It is strictly separate from vector
// search: keyword scores and cosine scores are never combined, and the
// record store stays the single source of truth. Sidecar writes are best
// effort; a failed sidecar write must not fail an ingestion.
package keyword

import (
	"context"
	"errors"
)

// ErrDisabled is returned by the nop index when keyword search is requested
// but the sidecar is not configured.
var ErrDisabled = errors.New("keyword index disabled")

// Document is the analyzed view of an indexed file.
type Document struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Preview string `json:"preview"`
}

// Result is a single keyword hit. ID is the fileid document ID; callers
// resolve it back to a stored record.
type Result struct {
	ID    string
	Score float64
}

// Index defines the sidecar operations.
type Index interface {
	Index(ctx context.Context, id string, doc *Document) error
	Search(ctx context.Context, query string, limit int) ([]*Result, error)
	Delete(ctx context.Context, id string) error
	DocCount() (uint64, error)
	Reset() error
	Close() error
}

// NopIndex is the sidecar used when keyword search is disabled. Writes
// vanish; searches fail with ErrDisabled.
type NopIndex struct{}

func (NopIndex) Index(context.Context, string, *Document) error { return nil }

func (NopIndex) Search(context.Context, string, int) ([]*Result, error) {
	return nil, ErrDisabled
}

func (NopIndex) Delete(context.Context, string) error { return nil }

func (NopIndex) DocCount() (uint64, error) { return 0, nil }

func (NopIndex) Reset() error { return nil }

func (NopIndex) Close() error { return nil }
