package indexer

// Failure records one file that could not be ingested during a batch run.
type Failure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Report summarizes a directory ingestion. Files with unsupported extensions
// are skipped, not failed; every other per-file error lands in Failures and
// the batch keeps going.
type Report struct {
	Indexed  int       `json:"indexed"`
	Skipped  int       `json:"skipped"`
	Failed   int       `json:"failed"`
	Failures []Failure `json:"failures,omitempty"`
}

// Total returns the number of files the batch looked at.
func (r *Report) Total() int {
	return r.Indexed + r.Skipped + r.Failed
}
