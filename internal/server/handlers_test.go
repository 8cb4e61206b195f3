package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/semdex/semdex/internal/config"
	"github.com/semdex/semdex/internal/embedding"
	"github.com/semdex/semdex/internal/extract"
	"github.com/semdex/semdex/internal/indexer"
	"github.com/semdex/semdex/internal/keyword"
	"github.com/semdex/semdex/internal/models"
	"github.com/semdex/semdex/internal/search"
	"github.com/semdex/semdex/internal/storage"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*Server, *indexer.Indexer) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Storage: config.StorageConfig{
			DatabasePath:     filepath.Join(dir, "index.db"),
			KeywordIndexPath: filepath.Join(dir, "keyword.bleve"),
		},
		Embedding: config.EmbeddingConfig{Provider: config.ProviderMock, Dimensions: 64},
	}
	config.ApplyDefaults(cfg)

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	kw, err := keyword.NewBleveIndex(cfg.Storage.KeywordIndexPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { kw.Close() })

	embedder := embedding.NewMockEmbedder(64)
	engine := search.NewEngine(store, embedder, kw, nil)
	idx := indexer.NewIndexer(store, embedder, kw, nil)
	return NewServer(engine, idx, store, kw, cfg, zap.NewNop()), idx
}

func writeServerTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	r := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(data))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}

func TestHandleSearch(t *testing.T) {
	srv, idx := newTestServer(t)
	dir := t.TempDir()
	path := writeServerTestFile(t, dir, "notes.txt", "rust ownership and borrowing rules")
	if _, err := idx.IndexFile(context.Background(), path); err != nil {
		t.Fatal(err)
	}

	w := postJSON(t, srv.handleSearch, "/api/v1/search", map[string]string{"query": "rust ownership"})
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var resp models.SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 || len(resp.Results) != 1 {
		t.Fatalf("results: got total=%d len=%d", resp.Total, len(resp.Results))
	}
	if resp.Results[0].Record.Path != path {
		t.Errorf("result path = %s, want %s", resp.Results[0].Record.Path, path)
	}
	if resp.Keyword {
		t.Error("semantic search response should not carry the keyword flag")
	}
}

func TestHandleSearch_keywordMode(t *testing.T) {
	srv, idx := newTestServer(t)
	dir := t.TempDir()
	path := writeServerTestFile(t, dir, "recipe.txt", "tomato pasta with basil")
	if _, err := idx.IndexFile(context.Background(), path); err != nil {
		t.Fatal(err)
	}

	w := postJSON(t, srv.handleSearch, "/api/v1/search",
		map[string]interface{}{"query": "tomato", "keyword": true})
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var resp models.SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Keyword {
		t.Error("keyword search response should carry the keyword flag")
	}
	if resp.Total != 1 {
		t.Errorf("total = %d, want 1", resp.Total)
	}
}

func TestHandleSearch_keywordDisabled(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.engine = search.NewEngine(srv.storage, embedding.NewMockEmbedder(64), keyword.NopIndex{}, nil)

	w := postJSON(t, srv.handleSearch, "/api/v1/search",
		map[string]interface{}{"query": "anything", "keyword": true})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestHandleSearch_invalidBody(t *testing.T) {
	srv, _ := newTestServer(t)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	srv.handleSearch(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestHandleSearch_limitClamped(t *testing.T) {
	srv, idx := newTestServer(t)
	srv.cfg.Search.MaxLimit = 2
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		path := writeServerTestFile(t, dir, name, "shared words in every file")
		if _, err := idx.IndexFile(context.Background(), path); err != nil {
			t.Fatal(err)
		}
	}

	w := postJSON(t, srv.handleSearch, "/api/v1/search",
		map[string]interface{}{"query": "shared words", "limit": 100})
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var resp models.SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 {
		t.Errorf("total = %d, want limit clamped to 2", resp.Total)
	}
}

func TestHandleIndex_file(t *testing.T) {
	srv, _ := newTestServer(t)
	dir := t.TempDir()
	path := writeServerTestFile(t, dir, "doc.txt", "indexable content")

	w := postJSON(t, srv.handleIndex, "/api/v1/index", map[string]string{"path": path})
	if w.Code != http.StatusCreated {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var rec models.FileRecord
	if err := json.NewDecoder(w.Body).Decode(&rec); err != nil {
		t.Fatal(err)
	}
	if rec.Path != path {
		t.Errorf("record path = %s, want %s", rec.Path, path)
	}
	if rec.ID == "" {
		t.Error("record ID should be set")
	}
}

func TestHandleIndex_directory(t *testing.T) {
	srv, _ := newTestServer(t)
	dir := t.TempDir()
	writeServerTestFile(t, dir, "a.txt", "first file")
	writeServerTestFile(t, dir, "b.md", "second file")
	writeServerTestFile(t, dir, "c.bin", "not supported")

	w := postJSON(t, srv.handleIndex, "/api/v1/index", map[string]string{"path": dir})
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var report indexer.Report
	if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.Indexed != 2 || report.Skipped != 1 || report.Failed != 0 {
		t.Errorf("report = %+v, want 2 indexed, 1 skipped", report)
	}
}

func TestHandleIndex_missingPath(t *testing.T) {
	srv, _ := newTestServer(t)
	w := postJSON(t, srv.handleIndex, "/api/v1/index",
		map[string]string{"path": filepath.Join(t.TempDir(), "ghost.txt")})
	if w.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", w.Code)
	}
}

func TestHandleIndex_emptyPath(t *testing.T) {
	srv, _ := newTestServer(t)
	w := postJSON(t, srv.handleIndex, "/api/v1/index", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestHandleIndex_unsupportedExtension(t *testing.T) {
	srv, _ := newTestServer(t)
	dir := t.TempDir()
	path := writeServerTestFile(t, dir, "image.png", "\x89PNG")

	w := postJSON(t, srv.handleIndex, "/api/v1/index", map[string]string{"path": path})
	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status: got %d, want 415, body: %s", w.Code, w.Body.String())
	}
}

func TestHandleIndex_duplicate(t *testing.T) {
	srv, _ := newTestServer(t)
	dir := t.TempDir()
	path := writeServerTestFile(t, dir, "doc.txt", "content")

	if w := postJSON(t, srv.handleIndex, "/api/v1/index", map[string]string{"path": path}); w.Code != http.StatusCreated {
		t.Fatalf("first index: got %d", w.Code)
	}
	w := postJSON(t, srv.handleIndex, "/api/v1/index", map[string]string{"path": path})
	if w.Code != http.StatusConflict {
		t.Errorf("second index: got %d, want 409", w.Code)
	}
}

func TestHandleGetFile(t *testing.T) {
	srv, idx := newTestServer(t)
	dir := t.TempDir()
	path := writeServerTestFile(t, dir, "doc.txt", "content")
	if _, err := idx.IndexFile(context.Background(), path); err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/v1/files?path="+url.QueryEscape(path), nil)
	w := httptest.NewRecorder()
	srv.handleGetFile(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var rec models.FileRecord
	if err := json.NewDecoder(w.Body).Decode(&rec); err != nil {
		t.Fatal(err)
	}
	if rec.Path != path {
		t.Errorf("record path = %s, want %s", rec.Path, path)
	}
}

func TestHandleGetFile_notFound(t *testing.T) {
	srv, _ := newTestServer(t)
	r := httptest.NewRequest(http.MethodGet, "/api/v1/files?path=/no/such/file.txt", nil)
	w := httptest.NewRecorder()
	srv.handleGetFile(w, r)
	if w.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", w.Code)
	}
}

func TestHandleGetFile_missingParam(t *testing.T) {
	srv, _ := newTestServer(t)
	r := httptest.NewRequest(http.MethodGet, "/api/v1/files", nil)
	w := httptest.NewRecorder()
	srv.handleGetFile(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestHandleDeleteFile(t *testing.T) {
	srv, idx := newTestServer(t)
	dir := t.TempDir()
	path := writeServerTestFile(t, dir, "doc.txt", "content")
	if _, err := idx.IndexFile(context.Background(), path); err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(http.MethodDelete, "/api/v1/files?path="+url.QueryEscape(path), nil)
	w := httptest.NewRecorder()
	srv.handleDeleteFile(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	if n, _ := srv.storage.Count(context.Background()); n != 0 {
		t.Errorf("count after delete = %d, want 0", n)
	}

	// Deleting again reports not found.
	w2 := httptest.NewRecorder()
	srv.handleDeleteFile(w2, httptest.NewRequest(http.MethodDelete, "/api/v1/files?path="+url.QueryEscape(path), nil))
	if w2.Code != http.StatusNotFound {
		t.Errorf("second delete: got %d, want 404", w2.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	srv, idx := newTestServer(t)
	dir := t.TempDir()
	path := writeServerTestFile(t, dir, "doc.txt", "content")
	if _, err := idx.IndexFile(context.Background(), path); err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	srv.handleStatus(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var out struct {
		Files          int64  `json:"files"`
		KeywordDocs    uint64 `json:"keyword_docs"`
		DiskUsageBytes *int64 `json:"disk_usage_bytes"`
		Config         *struct {
			EmbeddingProvider string `json:"embedding_provider"`
			KeywordEnabled    bool   `json:"keyword_enabled"`
		} `json:"config"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Files != 1 {
		t.Errorf("files: got %d, want 1", out.Files)
	}
	if out.KeywordDocs != 1 {
		t.Errorf("keyword_docs: got %d, want 1", out.KeywordDocs)
	}
	if out.DiskUsageBytes == nil || *out.DiskUsageBytes < 1 {
		t.Errorf("disk_usage_bytes: got %v, want >= 1", out.DiskUsageBytes)
	}
	if out.Config == nil || out.Config.EmbeddingProvider != "mock" {
		t.Errorf("config block: got %+v", out.Config)
	}
}

func TestHandleReset(t *testing.T) {
	srv, idx := newTestServer(t)
	dir := t.TempDir()
	path := writeServerTestFile(t, dir, "doc.txt", "content")
	if _, err := idx.IndexFile(context.Background(), path); err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(http.MethodPost, "/api/v1/reset", nil)
	w := httptest.NewRecorder()
	srv.handleReset(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	if n, _ := srv.storage.Count(context.Background()); n != 0 {
		t.Errorf("count after reset = %d, want 0", n)
	}
}

func TestRoutes(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status: got %d", resp.StatusCode)
	}

	searchBody := bytes.NewReader([]byte(`{"query":"anything"}`))
	resp2, err := http.Post(ts.URL+"/api/v1/search", "application/json", searchBody)
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Errorf("search status: got %d", resp2.StatusCode)
	}
}

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{storage.ErrNotFound, http.StatusNotFound},
		{storage.ErrDuplicatePath, http.StatusConflict},
		{extract.ErrUnsupported, http.StatusUnsupportedMediaType},
		{extract.ErrPDF, http.StatusUnprocessableEntity},
		{keyword.ErrDisabled, http.StatusBadRequest},
		{embedding.ErrEmbed, http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := statusForError(c.err); got != c.want {
			t.Errorf("statusForError(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}
