// Package walker streams regular files found under a directory root.
package walker

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultIgnores are directory names pruned from every walk. Hidden
// directories are pruned regardless of this list.
var DefaultIgnores = []string{
	"node_modules",
	"vendor",
	"__pycache__",
	"target",
	"dist",
	"build",
}

// Walk traverses the tree rooted at root and sends the path of every regular
// file on the returned channel. Directories named in ignore (DefaultIgnores
// when nil) and hidden directories are pruned. Symlinks and other irregular
// entries are skipped. The walk emits all regular files regardless of
// extension; deciding what is indexable is the caller's job.
//
// Both channels are closed when the walk finishes. At most one error is sent:
// an unreadable root or a cancelled context ends the walk early.
func Walk(ctx context.Context, root string, ignore []string) (<-chan string, <-chan error) {
	files := make(chan string, 64)
	errs := make(chan error, 1)

	if ignore == nil {
		ignore = DefaultIgnores
	}
	ignored := make(map[string]bool, len(ignore))
	for _, name := range ignore {
		ignored[name] = true
	}

	go func() {
		defer close(files)
		defer close(errs)

		absRoot, err := filepath.Abs(root)
		if err != nil {
			errs <- err
			return
		}
		if _, err := os.Stat(absRoot); err != nil {
			errs <- err
			return
		}

		err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable entries below the root are skipped,
				// not fatal.
				return nil
			}

			if d.IsDir() {
				if path == absRoot {
					return nil
				}
				name := d.Name()
				if ignored[name] || strings.HasPrefix(name, ".") {
					return filepath.SkipDir
				}
				return nil
			}

			if !d.Type().IsRegular() {
				return nil
			}

			select {
			case files <- path:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			errs <- err
		}
	}()

	return files, errs
}
