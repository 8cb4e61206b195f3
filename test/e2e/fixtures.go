package e2e

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SupportedFileExtensions lists every format the corpus is written in.
// OpenDocument text (.odt) is absent on purpose: its extractor hands the
// file to a library that rejects archives without the full package
// structure, which these minimal builders do not produce.
var SupportedFileExtensions = []string{
	".txt", ".md", ".rst", ".docx", ".xlsx", ".pptx", ".odp", ".ods",
}

// BuildFileBytes encodes text as a document of the given extension.
func BuildFileBytes(ext, text string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".txt", ".md", ".rst":
		return []byte(text), nil
	case ".docx":
		return buildDocx(text)
	case ".xlsx":
		return buildXlsx(text)
	case ".pptx":
		return buildPptx(text)
	case ".odp":
		return buildOdp(text)
	case ".ods":
		return buildOds(text)
	default:
		return nil, fmt.Errorf("no builder for extension %q", ext)
	}
}

type zipEntry struct {
	name string
	data string
}

func buildZip(entries []zipEntry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", e.name, err)
		}
		if _, err := w.Write([]byte(e.data)); err != nil {
			return nil, fmt.Errorf("write %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeXML(s string) string { return xmlEscaper.Replace(s) }

// splitFirstWord cuts text after its first word so builders can spread
// content across multiple runs.
func splitFirstWord(text string) (string, string) {
	i := strings.IndexByte(text, ' ')
	if i < 0 {
		return text, ""
	}
	return text[:i], text[i+1:]
}

// splitHalf divides text at a word boundary near the middle.
func splitHalf(text string) (string, string) {
	words := strings.Fields(text)
	if len(words) < 2 {
		return text, ""
	}
	mid := len(words) / 2
	return strings.Join(words[:mid], " "), strings.Join(words[mid:], " ")
}

// splitSentences breaks text on ". " boundaries, keeping the period.
func splitSentences(text string) []string {
	parts := strings.SplitAfter(text, ". ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// buildDocx produces a word document with the text spread over two runs and
// a [Content_Types].xml manifest declaring the main part, the same shape
// real producers emit.
func buildDocx(text string) ([]byte, error) {
	first, rest := splitFirstWord(text)
	runs := "<w:r><w:t>" + escapeXML(first) + "</w:t></w:r>"
	if rest != "" {
		runs += `<w:r><w:t xml:space="preserve">` + escapeXML(rest) + "</w:t></w:r>"
	}
	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body><w:p>` + runs + `</w:p></w:body></w:document>`
	types := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
		`</Types>`
	return buildZip([]zipEntry{
		{"[Content_Types].xml", types},
		{"word/document.xml", document},
	})
}

// buildPptx produces a presentation with the text split over two slides.
func buildPptx(text string) ([]byte, error) {
	head, tail := splitHalf(text)
	entries := []zipEntry{{"ppt/slides/slide1.xml", slideXML(head)}}
	if tail != "" {
		entries = append(entries, zipEntry{"ppt/slides/slide2.xml", slideXML(tail)})
	}
	return buildZip(entries)
}

func slideXML(text string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"` +
		` xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">` +
		`<p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>` + escapeXML(text) +
		`</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`
}

// buildXlsx produces a workbook with one sentence per row of the first
// sheet.
func buildXlsx(text string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	for i, sentence := range splitSentences(text) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue("Sheet1", cell, sentence); err != nil {
			return nil, fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// buildOdp produces an OpenDocument presentation with a single paragraph.
func buildOdp(text string) ([]byte, error) {
	content := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<office:document-content` +
		` xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"` +
		` xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0">` +
		`<office:body><office:presentation>` +
		`<text:p text:style-name="P1">` + escapeXML(text) + `</text:p>` +
		`</office:presentation></office:body></office:document-content>`
	return buildZip([]zipEntry{
		{"mimetype", "application/vnd.oasis.opendocument.presentation"},
		{"content.xml", content},
	})
}

// buildOds produces an OpenDocument spreadsheet with one sentence per cell.
func buildOds(text string) ([]byte, error) {
	var cells strings.Builder
	for _, sentence := range splitSentences(text) {
		cells.WriteString(`<table:table-cell office:value-type="string"><text:p>`)
		cells.WriteString(escapeXML(sentence))
		cells.WriteString(`</text:p></table:table-cell>`)
	}
	content := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<office:document-content` +
		` xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"` +
		` xmlns:table="urn:oasis:names:tc:opendocument:xmlns:table:1.0"` +
		` xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0">` +
		`<office:body><office:spreadsheet>` +
		`<table:table table:name="Sheet1"><table:table-row>` + cells.String() +
		`</table:table-row></table:table>` +
		`</office:spreadsheet></office:body></office:document-content>`
	return buildZip([]zipEntry{
		{"mimetype", "application/vnd.oasis.opendocument.spreadsheet"},
		{"content.xml", content},
	})
}
