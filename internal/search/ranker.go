package search

import (
	"sort"

	"github.com/semdex/semdex/internal/models"
	"github.com/semdex/semdex/internal/vector"
)

// Ranker orders stored records against a query embedding. Implementations
// decide scoring and ordering; the engine only supplies the candidates.
type Ranker interface {
	Rank(query []float32, records []*models.FileRecord, limit int) []*models.SearchResult
}

// LinearRanker scores every record once with cosine similarity and returns
// the top limit records, best first. Ties keep store order.
type LinearRanker struct{}

func (LinearRanker) Rank(query []float32, records []*models.FileRecord, limit int) []*models.SearchResult {
	results := make([]*models.SearchResult, 0, len(records))
	if limit <= 0 {
		return results
	}
	for _, rec := range records {
		results = append(results, &models.SearchResult{
			Record: rec,
			Score:  vector.Cosine(query, rec.Embedding),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
