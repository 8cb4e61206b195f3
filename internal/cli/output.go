// Package cli formats command output for semdex.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/semdex/semdex/internal/indexer"
	"github.com/semdex/semdex/internal/models"
	"github.com/semdex/semdex/pkg/utils"
)

// OutputFormat selects how command results are rendered.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact is one result per line, for piping into other tools.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a format name from a command-line flag.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, OutputCompact, OutputJSON:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
	}
}

// WriteSearchResults writes a search response to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		writeSearchResultsCompact(w, response)
		return nil
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	mode := "semantic"
	if response.Keyword {
		mode = "keyword"
	}
	fmt.Fprintf(w, "\nFound %d %s result(s) in %dms\n\n", response.Total, mode, response.QueryTime)
	for i, result := range response.Results {
		writeOneResult(w, i+1, result)
	}
}

func writeOneResult(w io.Writer, rank int, result *models.SearchResult) {
	rec := result.Record
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "Rank: %d | Score: %.4f\n", rank, result.Score)
	fmt.Fprintf(w, "Path: %s\n", rec.Path)
	if rec.MimeType != "" {
		fmt.Fprintf(w, "Type: %s | Size: %d bytes\n", rec.MimeType, rec.SizeBytes)
	} else {
		fmt.Fprintf(w, "Size: %d bytes\n", rec.SizeBytes)
	}
	if rec.Preview != "" {
		fmt.Fprintf(w, "\n%s\n", utils.Truncate(rec.Preview, 200))
	}
	fmt.Fprintln(w)
}

// writeSearchResultsCompact prints "score<TAB>path" per result, so output
// pipes cleanly into cut, sort, or fzf.
func writeSearchResultsCompact(w io.Writer, response *models.SearchResponse) {
	for _, result := range response.Results {
		fmt.Fprintf(w, "%.4f\t%s\n", result.Score, result.Record.Path)
	}
}

// WriteReport writes a directory ingestion report to w in the given format.
func WriteReport(w io.Writer, report *indexer.Report, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	fmt.Fprintf(w, "Indexed %d file(s), skipped %d unsupported, %d failed\n",
		report.Indexed, report.Skipped, report.Failed)
	for _, f := range report.Failures {
		fmt.Fprintf(w, "  %s: %s\n", f.Path, f.Reason)
	}
	return nil
}
