package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// OpenDocument presentations and spreadsheets keep their content in a
// content.xml at the archive root; text lives in text:p, text:span, and (for
// presentations) text:h elements, all of which may carry attributes.
var (
	odTextP    = regexp.MustCompile(`<text:p[^>]*>([^<]*)</text:p>`)
	odTextSpan = regexp.MustCompile(`<text:span[^>]*>([^<]*)</text:span>`)
	odTextH    = regexp.MustCompile(`<text:h[^>]*>([^<]*)</text:h>`)
)

// extractODP extracts slide text from an OpenDocument presentation.
func extractODP(content []byte) (string, error) {
	return extractOpenDocument(content, "ODP", []*regexp.Regexp{odTextP, odTextSpan, odTextH})
}

// extractODS extracts cell text from an OpenDocument spreadsheet.
func extractODS(content []byte) (string, error) {
	return extractOpenDocument(content, "ODS", []*regexp.Regexp{odTextP, odTextSpan})
}

func extractOpenDocument(content []byte, kind string, patterns []*regexp.Regexp) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract %s: not a zip: %w", kind, err)
	}
	contentXML, err := readZipFile(zr, "content.xml")
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", kind, err)
	}
	s := string(contentXML)
	var b strings.Builder
	for _, pattern := range patterns {
		for _, p := range pattern.FindAllStringSubmatch(s, -1) {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strings.TrimSpace(p[1]))
		}
	}
	return strings.TrimSpace(b.String()), nil
}
