package models

// SearchResult is a single similarity hit: the matched record and its cosine
// score against the query embedding, in [-1, 1] (degenerate vectors score
// 0.0). Results are constructed per query and never persisted.
type SearchResult struct {
	Record *FileRecord `json:"record"`
	Score  float64     `json:"score"`
}

// SearchResponse is the wire shape for a completed search request.
type SearchResponse struct {
	Results []*SearchResult `json:"results"`
	Total   int             `json:"total"`
	Query   string          `json:"query"`
	// Keyword reports that the keyword sidecar served this response instead
	// of vector ranking.
	Keyword   bool  `json:"keyword,omitempty"`
	QueryTime int64 `json:"query_time_ms"`
}
