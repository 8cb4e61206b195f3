// Package extract turns supported document formats into plain text.
//
// The format set is closed: every supported extension maps to exactly one
// Format tag, each tag to exactly one extraction function, and anything
// outside the set fails with ErrUnsupported before any content is read.
package extract

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/semdex/semdex/internal/models"
)

// Format identifies one extraction code path.
type Format int

const (
	FormatUnknown Format = iota
	// FormatPlain decodes content as UTF-8 text (invalid sequences replaced).
	FormatPlain
	// FormatPDF walks PDF pages for their plain text.
	FormatPDF
	// FormatDOCX scans OOXML word documents; .doc routes here too, so modern
	// mislabeled OOXML files work and legacy OLE files fail with a clear error.
	FormatDOCX
	// FormatXLSX reads spreadsheet cells sheet by sheet.
	FormatXLSX
	// FormatPPTX scans OOXML slide text nodes.
	FormatPPTX
	// FormatODT extracts OpenDocument text and RTF through lu4p/cat.
	FormatODT
	// FormatODP and FormatODS scan OpenDocument content.xml text nodes.
	FormatODP
	FormatODS
)

func (f Format) String() string {
	switch f {
	case FormatPlain:
		return "plain"
	case FormatPDF:
		return "pdf"
	case FormatDOCX:
		return "docx"
	case FormatXLSX:
		return "xlsx"
	case FormatPPTX:
		return "pptx"
	case FormatODT:
		return "odt"
	case FormatODP:
		return "odp"
	case FormatODS:
		return "ods"
	default:
		return "unknown"
	}
}

// ErrUnsupported marks extensions outside the supported set.
var ErrUnsupported = errors.New("unsupported file type")

// ErrPDF marks failures on the PDF code path, so callers can tell a
// malformed PDF apart from other extraction failures.
var ErrPDF = errors.New("pdf extraction failed")

// extractFunc turns file content into text. path is passed for extractors
// that re-open the file through a library; byte-based extractors ignore it.
type extractFunc func(path string, content []byte) (string, error)

// formatForExtension is the closed extension -> Format mapping. Extensions
// are lower-case without the leading dot.
var formatForExtension = map[string]Format{
	"txt": FormatPlain, "md": FormatPlain, "rst": FormatPlain,
	"rs": FormatPlain, "py": FormatPlain, "go": FormatPlain, "js": FormatPlain,
	"json": FormatPlain, "yaml": FormatPlain, "yml": FormatPlain, "toml": FormatPlain,
	"css": FormatPlain, "html": FormatPlain, "htm": FormatPlain, "xml": FormatPlain,
	"csv": FormatPlain, "log": FormatPlain,
	"pdf":  FormatPDF,
	"doc":  FormatDOCX,
	"docx": FormatDOCX,
	"xlsx": FormatXLSX,
	"pptx": FormatPPTX,
	"odt":  FormatODT,
	"rtf":  FormatODT,
	"odp":  FormatODP,
	"ods":  FormatODS,
}

var defaultExtractors = map[Format]extractFunc{
	FormatPlain: func(_ string, c []byte) (string, error) { return extractPlain(c) },
	FormatPDF:   func(_ string, c []byte) (string, error) { return extractPDF(c) },
	FormatDOCX:  func(_ string, c []byte) (string, error) { return extractDOCX(c) },
	FormatXLSX:  func(_ string, c []byte) (string, error) { return extractXLSX(c) },
	FormatPPTX:  func(_ string, c []byte) (string, error) { return extractPPTX(c) },
	FormatODT:   extractODT,
	FormatODP:   func(_ string, c []byte) (string, error) { return extractODP(c) },
	FormatODS:   func(_ string, c []byte) (string, error) { return extractODS(c) },
}

// FormatForExt returns the Format for an extension (lower-case, no leading
// dot), or FormatUnknown for anything outside the supported set.
func FormatForExt(ext string) Format {
	return formatForExtension[ext]
}

// IsSupported reports whether ext maps to a known extraction code path.
func IsSupported(ext string) bool {
	return FormatForExt(ext) != FormatUnknown
}

// SupportedExtensions returns the closed extension set, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(formatForExtension))
	for ext := range formatForExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Extractor extracts plain text from document files.
type Extractor struct {
	extractors map[Format]extractFunc
}

// NewExtractor returns an Extractor with the default format dispatch table.
func NewExtractor() *Extractor {
	return &Extractor{extractors: defaultExtractors}
}

// Extract reads the file at path and returns its text content. The format
// is chosen by extension through the closed mapping; unsupported extensions
// fail with ErrUnsupported before the file is read.
func (e *Extractor) Extract(path string) (string, error) {
	ext := models.ExtensionOf(path)
	format := FormatForExt(ext)
	fn, ok := e.extractors[format]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return fn(path, content)
}

// ExtractBytes extracts text from in-memory content for the format mapped
// to ext (lower-case, no leading dot). Formats whose extractor re-opens the
// file by path (odt, rtf) cannot run from bytes and return an error.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	format := FormatForExt(ext)
	fn, ok := e.extractors[format]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	return fn("", content)
}
