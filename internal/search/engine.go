// Package search provides the semantic search engine.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/semdex/semdex/internal/embedding"
	"github.com/semdex/semdex/internal/fileid"
	"github.com/semdex/semdex/internal/keyword"
	"github.com/semdex/semdex/internal/models"
	"github.com/semdex/semdex/internal/storage"
)

// Engine answers search queries over the record store. Semantic search
// embeds the query and ranks a full scan of the store; keyword search asks
// the sidecar and hydrates its hits back into records. The two never mix.
type Engine struct {
	store    storage.Storage
	embedder embedding.Embedder
	keyword  keyword.Index
	ranker   Ranker
}

// NewEngine creates a search engine. A nil ranker defaults to LinearRanker;
// a nil keyword index disables keyword search.
func NewEngine(store storage.Storage, embedder embedding.Embedder, kw keyword.Index, ranker Ranker) *Engine {
	if ranker == nil {
		ranker = LinearRanker{}
	}
	if kw == nil {
		kw = keyword.NopIndex{}
	}
	return &Engine{
		store:    store,
		embedder: embedder,
		keyword:  kw,
		ranker:   ranker,
	}
}

// Search embeds the query and ranks every stored record by similarity.
// An empty query is legal and is embedded like any other text. A limit of
// zero or less yields an empty result list. Store failures fail the whole
// search rather than returning partial rankings.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	start := time.Now()

	if query.Limit <= 0 {
		return &models.SearchResponse{
			Results:   []*models.SearchResult{},
			Query:     query.Query,
			QueryTime: time.Since(start).Milliseconds(),
		}, nil
	}

	queryEmbedding, err := e.embedder.Embed(ctx, query.Query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	records, err := e.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	results := e.ranker.Rank(queryEmbedding, records, query.Limit)

	return &models.SearchResponse{
		Results:   results,
		Total:     len(results),
		Query:     query.Query,
		QueryTime: time.Since(start).Milliseconds(),
	}, nil
}

// SearchKeyword runs an exact-word query against the sidecar index. Hits are
// resolved back to stored records; hits whose file has since left the store
// are dropped. Scores are BM25 values from the sidecar and are not
// comparable with cosine scores.
func (e *Engine) SearchKeyword(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	start := time.Now()

	if query.Limit <= 0 {
		return &models.SearchResponse{
			Results:   []*models.SearchResult{},
			Query:     query.Query,
			Keyword:   true,
			QueryTime: time.Since(start).Milliseconds(),
		}, nil
	}

	hits, err := e.keyword.Search(ctx, query.Query, query.Limit)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	records, err := e.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	byID := make(map[string]*models.FileRecord, len(records))
	for _, rec := range records {
		byID[fileid.ForPath(rec.Path)] = rec
	}

	results := make([]*models.SearchResult, 0, len(hits))
	for _, hit := range hits {
		rec, ok := byID[hit.ID]
		if !ok {
			continue
		}
		results = append(results, &models.SearchResult{Record: rec, Score: hit.Score})
	}

	return &models.SearchResponse{
		Results:   results,
		Total:     len(results),
		Query:     query.Query,
		Keyword:   true,
		QueryTime: time.Since(start).Milliseconds(),
	}, nil
}
