package retrieval

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/twinlabs/twin/internal/vectorstore"
)

type fakeStore struct {
	results  []vectorstore.SearchResult
	searched []float32
	limit    uint64
	upserted []vectorstore.Point
	deleted  []string
	err      error
}

func (f *fakeStore) Search(ctx context.Context, vector []float32, limit uint64) ([]vectorstore.SearchResult, error) {
	f.searched = vector
	f.limit = limit
	return f.results, f.err
}

func (f *fakeStore) Upsert(ctx context.Context, points []vectorstore.Point) error {
	f.upserted = append(f.upserted, points...)
	return f.err
}

func (f *fakeStore) Delete(ctx context.Context, ids []string) error {
	f.deleted = append(f.deleted, ids...)
	return f.err
}

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vector, f.err
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = f.vector
	}
	return vectors, nil
}

func TestIndex_Search(t *testing.T) {
	store := &fakeStore{
		results: []vectorstore.SearchResult{
			{ID: "1", Score: 0.92, Payload: map[string]interface{}{"content": "Bio text", "source": "bio.md"}},
			{ID: "2", Score: 0.75, Payload: map[string]interface{}{"content": "Project text", "source": "projects.md"}},
		},
	}
	index := NewIndex(store, &fakeEmbedder{vector: []float32{0.1, 0.2}})

	docs, err := index.Search(context.Background(), "what do you build?", 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if store.limit != 2 {
		t.Errorf("store limit = %d, want 2", store.limit)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d docs, want 2", len(docs))
	}

	// Score is distance 1 - similarity, ascending: best match first
	if math.Abs(docs[0].Score-0.08) > 1e-6 {
		t.Errorf("docs[0].Score = %v, want 0.08", docs[0].Score)
	}
	if math.Abs(docs[1].Score-0.25) > 1e-6 {
		t.Errorf("docs[1].Score = %v, want 0.25", docs[1].Score)
	}
	if docs[0].Score > docs[1].Score {
		t.Error("store order must be preserved, best match first")
	}

	if docs[0].Source != "bio.md" || docs[0].Content != "Bio text" {
		t.Errorf("docs[0] = %+v", docs[0])
	}
}

func TestIndex_Search_MissingSource(t *testing.T) {
	store := &fakeStore{
		results: []vectorstore.SearchResult{
			{ID: "1", Score: 0.5, Payload: map[string]interface{}{"content": "orphan"}},
			{ID: "2", Score: 0.4, Payload: map[string]interface{}{"content": "blank", "source": ""}},
		},
	}
	index := NewIndex(store, &fakeEmbedder{vector: []float32{0.1}})

	docs, err := index.Search(context.Background(), "q", 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	for i, doc := range docs {
		if doc.Source != "unknown" {
			t.Errorf("docs[%d].Source = %q, want unknown fallback", i, doc.Source)
		}
	}
}

func TestIndex_Search_EmbedFailure(t *testing.T) {
	index := NewIndex(&fakeStore{}, &fakeEmbedder{err: errors.New("api down")})

	if _, err := index.Search(context.Background(), "q", 3); err == nil {
		t.Fatal("Search() should surface embed failure")
	}
}

func TestIndex_Search_StoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("qdrant down")}
	index := NewIndex(store, &fakeEmbedder{vector: []float32{0.1}})

	if _, err := index.Search(context.Background(), "q", 3); err == nil {
		t.Fatal("Search() should surface store failure")
	}
}

func TestIndex_Upsert(t *testing.T) {
	store := &fakeStore{}
	index := NewIndex(store, &fakeEmbedder{vector: []float32{0.5}})

	docs := []IngestDocument{
		{ID: "id-1", Content: "Bio", Source: "bio.md", Kind: "profile"},
		{ID: "id-2", Content: "Deck", Source: "Deck (Slide 1)", Kind: "slides"},
	}

	if err := index.Upsert(context.Background(), docs); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if len(store.upserted) != 2 {
		t.Fatalf("got %d points, want 2", len(store.upserted))
	}

	p := store.upserted[0]
	if p.ID != "id-1" {
		t.Errorf("point ID = %q", p.ID)
	}
	if p.Payload["content"] != "Bio" || p.Payload["source"] != "bio.md" || p.Payload["kind"] != "profile" {
		t.Errorf("payload = %v", p.Payload)
	}
	if len(p.Vector) != 1 {
		t.Errorf("vector = %v", p.Vector)
	}
}

func TestIndex_Upsert_Empty(t *testing.T) {
	store := &fakeStore{}
	index := NewIndex(store, &fakeEmbedder{})

	if err := index.Upsert(context.Background(), nil); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if len(store.upserted) != 0 {
		t.Error("empty input should be a no-op")
	}
}

func TestIndex_Delete(t *testing.T) {
	store := &fakeStore{}
	index := NewIndex(store, &fakeEmbedder{})

	if err := index.Delete(context.Background(), []string{"a", "b"}); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(store.deleted) != 2 {
		t.Errorf("deleted = %v", store.deleted)
	}
}
