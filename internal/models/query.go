package models

// SearchQuery is a search request arriving from the CLI or the HTTP API.
// An empty query string is legal: it embeds like any other text and ranks
// against the full record set.
type SearchQuery struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
	// Keyword routes the request to the keyword sidecar instead of vector
	// ranking. The two result sets are never fused.
	Keyword bool `json:"keyword,omitempty"`
}

// Normalize applies the wrapper-level limit defaults: an unset or negative
// limit becomes defaultLimit, and limits above maxLimit are clamped. The
// engine itself treats limit 0 as "no results"; defaulting happens only at
// this edge.
func (q *SearchQuery) Normalize(defaultLimit, maxLimit int) {
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if maxLimit > 0 && q.Limit > maxLimit {
		q.Limit = maxLimit
	}
}
