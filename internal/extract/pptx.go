package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// slideTextNode matches <a:t>...</a:t> with any attributes, the text runs of
// OOXML slides.
var slideTextNode = regexp.MustCompile(`<a:t[^>]*>([^<]*)</a:t>`)

// extractPPTX collects the text runs of every ppt/slides/slideN.xml in the
// archive, in archive order.
func extractPPTX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract PPTX: not a zip: %w", err)
	}
	var b strings.Builder
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, "ppt/slides/slide") || !strings.HasSuffix(f.Name, ".xml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("extract PPTX: open %s: %w", f.Name, err)
		}
		slide, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("extract PPTX: read %s: %w", f.Name, err)
		}
		for _, p := range slideTextNode.FindAllStringSubmatch(string(slide), -1) {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strings.TrimSpace(p[1]))
		}
	}
	return strings.TrimSpace(b.String()), nil
}
