// Package models defines core data structures for indexed files, queries, and search results.
package models

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileRecord represents one indexed file: filesystem metadata, the embedding
// computed from its extracted text, and a short content preview. Path is the
// unique key across the store; ID is the storage identity assigned at
// creation. Records are immutable once stored (a re-index either fails on
// the duplicate path or replaces the whole record, depending on policy).
type FileRecord struct {
	ID        string    `json:"id" db:"id"`
	Path      string    `json:"path" db:"path"`
	Name      string    `json:"name" db:"name"`
	Extension string    `json:"extension,omitempty" db:"extension"`
	MimeType  string    `json:"mime_type,omitempty" db:"mime_type"`
	SizeBytes int64     `json:"size_bytes" db:"size_bytes"`
	Embedding []float32 `json:"-" db:"-"`
	Preview   string    `json:"preview" db:"preview"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewFileRecord builds a record for path. Name and Extension are derived
// from the path and cannot be set independently. MimeType may be empty when
// no type could be guessed from the extension.
func NewFileRecord(path, mimeType string, sizeBytes int64, embedding []float32, preview string) *FileRecord {
	return &FileRecord{
		ID:        uuid.New().String(),
		Path:      path,
		Name:      filepath.Base(path),
		Extension: ExtensionOf(path),
		MimeType:  mimeType,
		SizeBytes: sizeBytes,
		Embedding: embedding,
		Preview:   preview,
	}
}

// ExtensionOf returns the lower-cased extension of path without the leading
// dot, or "" when the base name has none. A name that consists only of an
// extension (".txt") or a dotfile (".gitignore") has no extension.
func ExtensionOf(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" || ext == base {
		return ""
	}
	return strings.ToLower(ext[1:])
}
