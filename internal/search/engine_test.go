package search

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/semdex/semdex/internal/embedding"
	"github.com/semdex/semdex/internal/fileid"
	"github.com/semdex/semdex/internal/keyword"
	"github.com/semdex/semdex/internal/models"
	"github.com/semdex/semdex/internal/storage"
)

func newTestEngine(t *testing.T) (*Engine, storage.Storage, *embedding.MockEmbedder) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	embedder := embedding.NewMockEmbedder(128)
	return NewEngine(store, embedder, nil, nil), store, embedder
}

// indexText stores a record whose embedding comes from the given text, the
// same way the ingestion pipeline would.
func indexText(t *testing.T, store storage.Storage, embedder embedding.Embedder, path, text string) {
	t.Helper()
	emb, err := embedder.Embed(context.Background(), text)
	if err != nil {
		t.Fatal(err)
	}
	rec := models.NewFileRecord(path, "text/plain", int64(len(text)), emb, text)
	if err := store.Create(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
}

func TestEngineSearchRanksRelevantFirst(t *testing.T) {
	engine, store, embedder := newTestEngine(t)
	ctx := context.Background()

	indexText(t, store, embedder, "/docs/rust.md",
		"rust ownership and the borrow checker give memory safety without garbage collection")
	indexText(t, store, embedder, "/docs/weather.txt",
		"tomorrow will be sunny with a light breeze and scattered clouds")
	indexText(t, store, embedder, "/docs/pasta.txt",
		"boil water add salt cook the pasta until al dente")

	resp, err := engine.Search(ctx, &models.SearchQuery{Query: "rust memory safety", Limit: 3})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Total != 3 {
		t.Fatalf("Total = %d, want 3", resp.Total)
	}
	if resp.Results[0].Record.Path != "/docs/rust.md" {
		t.Errorf("top result = %s, want /docs/rust.md", resp.Results[0].Record.Path)
	}
	if resp.Results[0].Score <= resp.Results[1].Score {
		t.Errorf("top score %f not above second %f", resp.Results[0].Score, resp.Results[1].Score)
	}
}

func TestEngineSearchReturnsMinOfLimitAndCorpus(t *testing.T) {
	engine, store, embedder := newTestEngine(t)
	ctx := context.Background()

	for _, p := range []string{"/a.txt", "/b.txt", "/c.txt"} {
		indexText(t, store, embedder, p, "some shared content "+p)
	}

	resp, err := engine.Search(ctx, &models.SearchQuery{Query: "content", Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 2 {
		t.Errorf("limit 2: got %d results", len(resp.Results))
	}

	resp, err = engine.Search(ctx, &models.SearchQuery{Query: "content", Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 3 {
		t.Errorf("limit 10 over corpus of 3: got %d results", len(resp.Results))
	}
}

func TestEngineSearchNonPositiveLimit(t *testing.T) {
	engine, store, embedder := newTestEngine(t)
	indexText(t, store, embedder, "/a.txt", "anything")

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "anything", Limit: 0})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Results == nil || len(resp.Results) != 0 {
		t.Errorf("limit 0: got %v, want empty results", resp.Results)
	}
	if resp.Total != 0 {
		t.Errorf("Total = %d, want 0", resp.Total)
	}
}

func TestEngineSearchEmptyQuery(t *testing.T) {
	engine, store, embedder := newTestEngine(t)
	ctx := context.Background()

	indexText(t, store, embedder, "/a.txt", "alpha")
	indexText(t, store, embedder, "/b.txt", "beta")

	// The empty query embeds to the zero vector; every record scores 0
	// but the search itself succeeds.
	resp, err := engine.Search(ctx, &models.SearchQuery{Query: "", Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(resp.Results))
	}
	for _, r := range resp.Results {
		if r.Score != 0 {
			t.Errorf("%s scored %f against empty query, want 0", r.Record.Path, r.Score)
		}
	}
}

func TestEngineSearchEmptyStore(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "anything", Limit: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 0 || resp.Total != 0 {
		t.Errorf("empty store: got %d results", len(resp.Results))
	}
}

func TestEngineSearchEmbedderFailure(t *testing.T) {
	engine, store, embedder := newTestEngine(t)
	indexText(t, store, embedder, "/a.txt", "fine content")

	embedder.FailOn = "poison"
	_, err := engine.Search(context.Background(), &models.SearchQuery{Query: "poison query", Limit: 5})
	if !errors.Is(err, embedding.ErrEmbed) {
		t.Errorf("got %v, want ErrEmbed", err)
	}
}

func TestEngineSearchStoreFailure(t *testing.T) {
	engine, store, embedder := newTestEngine(t)
	indexText(t, store, embedder, "/a.txt", "content")

	// A failing store must fail the whole search, not degrade it.
	store.Close()
	_, err := engine.Search(context.Background(), &models.SearchQuery{Query: "content", Limit: 5})
	if err == nil {
		t.Error("expected error from closed store")
	}
}

func TestEngineSearchKeyword(t *testing.T) {
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	kw, err := keyword.NewBleveIndex(filepath.Join(t.TempDir(), "kw.bleve"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { kw.Close() })

	embedder := embedding.NewMockEmbedder(64)
	engine := NewEngine(store, embedder, kw, nil)
	ctx := context.Background()

	indexText(t, store, embedder, "/docs/errors.md", "the dreaded E0502 borrow error")
	if err := kw.Index(ctx, fileid.ForPath("/docs/errors.md"), &keyword.Document{
		Path: "/docs/errors.md", Name: "errors.md", Preview: "the dreaded E0502 borrow error",
	}); err != nil {
		t.Fatal(err)
	}
	// A stale sidecar entry whose file is no longer stored must be dropped.
	if err := kw.Index(ctx, fileid.ForPath("/docs/gone.md"), &keyword.Document{
		Path: "/docs/gone.md", Name: "gone.md", Preview: "E0502 here too",
	}); err != nil {
		t.Fatal(err)
	}

	resp, err := engine.SearchKeyword(ctx, &models.SearchQuery{Query: "E0502", Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Keyword {
		t.Error("response should be flagged as keyword search")
	}
	if len(resp.Results) != 1 {
		t.Fatalf("got %d results, want 1 (stale hit dropped)", len(resp.Results))
	}
	if resp.Results[0].Record.Path != "/docs/errors.md" {
		t.Errorf("hit = %s", resp.Results[0].Record.Path)
	}
	if resp.Results[0].Score <= 0 {
		t.Errorf("keyword score = %f, want positive", resp.Results[0].Score)
	}
}

func TestEngineSearchKeywordDisabled(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.SearchKeyword(context.Background(), &models.SearchQuery{Query: "term", Limit: 5})
	if !errors.Is(err, keyword.ErrDisabled) {
		t.Errorf("got %v, want ErrDisabled", err)
	}
}
