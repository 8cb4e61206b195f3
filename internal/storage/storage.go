// Package storage defines the persistence interface for file records.
package storage

import (
	"context"
	"errors"

	"github.com/semdex/semdex/internal/models"
)

var (
	// ErrDuplicatePath is returned by Create when the path is already indexed.
	ErrDuplicatePath = errors.New("path already indexed")
	// ErrNotFound is returned when no record exists for the given path.
	ErrNotFound = errors.New("record not found")
)

// Storage persists file records keyed by path. Either the whole record is
// stored or nothing is; implementations must not leave partial rows behind.
type Storage interface {
	// Create inserts a record. Fails with ErrDuplicatePath when a record
	// for the same path already exists.
	Create(ctx context.Context, rec *models.FileRecord) error
	// Replace atomically removes any record for rec.Path and inserts rec.
	Replace(ctx context.Context, rec *models.FileRecord) error
	// Get returns the record for path, or ErrNotFound.
	Get(ctx context.Context, path string) (*models.FileRecord, error)
	// All returns every stored record, embeddings included.
	All(ctx context.Context) ([]*models.FileRecord, error)
	// Delete removes the record for path, or returns ErrNotFound.
	Delete(ctx context.Context, path string) error
	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)
	// Reset removes all records.
	Reset(ctx context.Context) error

	Close() error
}
