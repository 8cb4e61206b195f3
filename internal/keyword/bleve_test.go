package keyword

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := NewBleveIndex(filepath.Join(t.TempDir(), "kw.bleve"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestBleveIndexAndSearch(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	docs := map[string]*Document{
		"file:aaa": {Path: "/docs/rust.md", Name: "rust.md", Preview: "ownership and borrowing in rust"},
		"file:bbb": {Path: "/docs/cooking.md", Name: "cooking.md", Preview: "recipes for pasta and risotto"},
	}
	for id, doc := range docs {
		if err := idx.Index(ctx, id, doc); err != nil {
			t.Fatal(err)
		}
	}

	hits, err := idx.Search(ctx, "ownership", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != "file:aaa" {
		t.Errorf("got %+v, want single hit file:aaa", hits)
	}
	if hits[0].Score <= 0 {
		t.Errorf("score = %f, want positive", hits[0].Score)
	}

	hits, err = idx.Search(ctx, "quantum", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("got %+v, want no hits", hits)
	}
}

func TestBleveSearchMatchesFilename(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	if err := idx.Index(ctx, "file:ccc", &Document{
		Path: "/notes/meeting.txt", Name: "meeting.txt", Preview: "agenda items",
	}); err != nil {
		t.Fatal(err)
	}

	hits, err := idx.Search(ctx, "meeting", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("filename terms should be searchable, got %+v", hits)
	}
}

func TestBleveSearchLimit(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	for _, id := range []string{"file:1", "file:2", "file:3"} {
		doc := &Document{Path: "/p/" + id, Name: "shared.txt", Preview: "shared words here"}
		if err := idx.Index(ctx, id, doc); err != nil {
			t.Fatal(err)
		}
	}

	hits, err := idx.Search(ctx, "shared", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Errorf("got %d hits, want limit 2", len(hits))
	}

	hits, err = idx.Search(ctx, "shared", 0)
	if err != nil || hits != nil {
		t.Errorf("limit 0 should return nothing, got %v, %v", hits, err)
	}
}

func TestBleveIndexReplacesSameID(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	id := "file:ddd"
	if err := idx.Index(ctx, id, &Document{Path: "/a.txt", Name: "a.txt", Preview: "original words"}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Index(ctx, id, &Document{Path: "/a.txt", Name: "a.txt", Preview: "replacement content"}); err != nil {
		t.Fatal(err)
	}

	if hits, _ := idx.Search(ctx, "original", 5); len(hits) != 0 {
		t.Errorf("old content still searchable: %+v", hits)
	}
	if hits, _ := idx.Search(ctx, "replacement", 5); len(hits) != 1 {
		t.Errorf("new content not searchable: %+v", hits)
	}
	if n, _ := idx.DocCount(); n != 1 {
		t.Errorf("DocCount = %d, want 1 after same-id reindex", n)
	}
}

func TestBleveDelete(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	if err := idx.Index(ctx, "file:eee", &Document{Path: "/x.txt", Name: "x.txt", Preview: "deletable"}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Delete(ctx, "file:eee"); err != nil {
		t.Fatal(err)
	}
	if hits, _ := idx.Search(ctx, "deletable", 5); len(hits) != 0 {
		t.Errorf("deleted doc still searchable: %+v", hits)
	}
	// Unknown ids are a no-op.
	if err := idx.Delete(ctx, "file:unknown"); err != nil {
		t.Errorf("delete unknown id: %v", err)
	}
}

func TestBleveReset(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	for _, id := range []string{"file:1", "file:2"} {
		if err := idx.Index(ctx, id, &Document{Path: "/p" + id, Name: "n.txt", Preview: "words"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := idx.Reset(); err != nil {
		t.Fatal(err)
	}
	if n, _ := idx.DocCount(); n != 0 {
		t.Errorf("DocCount after Reset = %d, want 0", n)
	}
	// The index must stay usable.
	if err := idx.Index(ctx, "file:3", &Document{Path: "/q", Name: "q.txt", Preview: "fresh"}); err != nil {
		t.Errorf("Index after Reset: %v", err)
	}
}

func TestBleveReopenExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kw.bleve")
	ctx := context.Background()

	idx, err := NewBleveIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.Index(ctx, "file:fff", &Document{Path: "/keep.txt", Name: "keep.txt", Preview: "persistent"}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewBleveIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	if hits, _ := reopened.Search(ctx, "persistent", 5); len(hits) != 1 {
		t.Errorf("reopened index lost documents: %+v", hits)
	}
}

func TestNopIndex(t *testing.T) {
	var idx Index = NopIndex{}
	ctx := context.Background()

	if err := idx.Index(ctx, "id", &Document{}); err != nil {
		t.Errorf("nop Index: %v", err)
	}
	if _, err := idx.Search(ctx, "anything", 5); !errors.Is(err, ErrDisabled) {
		t.Errorf("nop Search: got %v, want ErrDisabled", err)
	}
	if err := idx.Delete(ctx, "id"); err != nil {
		t.Errorf("nop Delete: %v", err)
	}
	if n, err := idx.DocCount(); n != 0 || err != nil {
		t.Errorf("nop DocCount: %d, %v", n, err)
	}
}
