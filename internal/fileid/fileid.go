// Package fileid derives deterministic document IDs from file paths. The
// keyword sidecar indexes by these IDs so a path maps to the same document
// across index, replace, and delete.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

const prefix = "file:"

// ForPath returns a stable document ID for the given path. The path is
// cleaned first, so lexically equivalent spellings yield the same ID.
func ForPath(path string) string {
	normalized := filepath.Clean(path)
	hash := sha256.Sum256([]byte(normalized))
	return prefix + hex.EncodeToString(hash[:])
}
