// Package retrieval implements embed-and-search over the profile index.
package retrieval

import (
	"context"
	"fmt"

	"github.com/twinlabs/twin/internal/vectorstore"
)

// Document is a retrieved chunk. Score is a distance: lower = more similar.
// Results are ordered ascending by score, best match first, and that order
// is preserved all the way into the answer's source list.
type Document struct {
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
}

// IngestDocument is a document to be embedded and stored
type IngestDocument struct {
	ID      string
	Content string
	Source  string
	Kind    string
}

// Embedder turns text into vectors
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Store is the subset of the vector store the index uses
type Store interface {
	Search(ctx context.Context, vector []float32, limit uint64) ([]vectorstore.SearchResult, error)
	Upsert(ctx context.Context, points []vectorstore.Point) error
	Delete(ctx context.Context, ids []string) error
}

// Index combines the embedder and the vector store
type Index struct {
	store    Store
	embedder Embedder
}

// NewIndex creates a retrieval index
func NewIndex(store Store, embedder Embedder) *Index {
	return &Index{
		store:    store,
		embedder: embedder,
	}
}

// Search embeds the raw query text and returns the k nearest documents. The
// store reports cosine similarity; it is converted to a distance (1 - s) so
// lower means closer, matching the score contract. The similarity ordering
// from the store is kept as-is.
func (i *Index) Search(ctx context.Context, query string, k int) ([]Document, error) {
	vector, err := i.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := i.store.Search(ctx, vector, uint64(k))
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	docs := make([]Document, 0, len(results))
	for _, r := range results {
		content, _ := r.Payload["content"].(string)
		source, ok := r.Payload["source"].(string)
		if !ok || source == "" {
			source = "unknown"
		}
		docs = append(docs, Document{
			Content: content,
			Source:  source,
			Score:   1 - float64(r.Score),
		})
	}

	return docs, nil
}

// Upsert embeds and stores documents
func (i *Index) Upsert(ctx context.Context, docs []IngestDocument) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for j, d := range docs {
		texts[j] = d.Content
	}

	vectors, err := i.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed documents: %w", err)
	}

	points := make([]vectorstore.Point, len(docs))
	for j, d := range docs {
		points[j] = vectorstore.Point{
			ID:     d.ID,
			Vector: vectors[j],
			Payload: map[string]interface{}{
				"content": d.Content,
				"source":  d.Source,
				"kind":    d.Kind,
			},
		}
	}

	if err := i.store.Upsert(ctx, points); err != nil {
		return fmt.Errorf("failed to store documents: %w", err)
	}

	return nil
}

// Delete removes documents by ID
func (i *Index) Delete(ctx context.Context, ids []string) error {
	return i.store.Delete(ctx, ids)
}
