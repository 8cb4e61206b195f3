package extract

import (
	"errors"
	"fmt"

	"github.com/lu4p/cat"
)

// extractODT handles OpenDocument text and RTF through lu4p/cat, which
// dispatches on the file extension itself. It needs a real path; the
// byte-based entry point cannot serve these formats.
func extractODT(path string, _ []byte) (string, error) {
	if path == "" {
		return "", errors.New("extract ODT/RTF: requires a file path")
	}
	text, err := cat.File(path)
	if err != nil {
		return "", fmt.Errorf("extract ODT/RTF: %w", err)
	}
	return text, nil
}
