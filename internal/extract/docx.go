package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// wordMainContentType identifies the main document part in an OOXML package.
const wordMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"

// wordTextNode matches <w:t>...</w:t> with any attributes, the text runs of
// a word document body.
var wordTextNode = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// Override elements in [Content_Types].xml carry PartName and ContentType in
// either attribute order.
var (
	wordPartFirst = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(wordMainContentType) + `"`)
	wordTypeFirst = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(wordMainContentType) + `"[^>]+PartName="([^"]+)"`)
)

// extractDOCX extracts text from an OOXML word document. The main part is
// located through [Content_Types].xml when present (some producers write
// word/document2.xml and the like), falling back to the conventional
// word/document.xml. Text is the concatenation of all w:t runs, so paragraph
// and run attributes never hide content.
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract DOCX: not a zip: %w", err)
	}

	docPath := wordMainPartPath(zr)
	docXML, err := readZipFile(zr, docPath)
	if err != nil {
		return "", fmt.Errorf("extract DOCX: %w", err)
	}

	parts := wordTextNode.FindAllStringSubmatch(string(docXML), -1)
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strings.TrimSpace(p[1]))
	}
	return strings.TrimSpace(b.String()), nil
}

// wordMainPartPath resolves the main document part from [Content_Types].xml,
// defaulting to word/document.xml when the manifest is absent or unhelpful.
func wordMainPartPath(zr *zip.Reader) string {
	manifest, err := readZipFile(zr, "[Content_Types].xml")
	if err != nil {
		return "word/document.xml"
	}
	s := string(manifest)
	if m := wordPartFirst.FindStringSubmatch(s); len(m) > 1 {
		return strings.TrimPrefix(m[1], "/")
	}
	if m := wordTypeFirst.FindStringSubmatch(s); len(m) > 1 {
		return strings.TrimPrefix(m[1], "/")
	}
	return "word/document.xml"
}

// readZipFile returns the content of name within the archive.
func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s not found", name)
}
