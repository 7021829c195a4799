// Package ingest loads profile documents and slide decks into the retrieval
// index.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/twinlabs/twin/internal/logging"
	"github.com/twinlabs/twin/internal/retrieval"
	"github.com/twinlabs/twin/internal/slides"
	"github.com/twinlabs/twin/internal/storage"
)

// docNamespace makes document IDs deterministic: re-ingesting the same
// source overwrites its point instead of duplicating it.
var docNamespace = uuid.MustParse("7d3e1c2a-9f64-4b8e-b7a1-52c33a80a8d1")

// DocumentID derives the stable point ID for a document key
func DocumentID(key string) string {
	return uuid.NewSHA1(docNamespace, []byte(key)).String()
}

// Index stores documents for later retrieval
type Index interface {
	Upsert(ctx context.Context, docs []retrieval.IngestDocument) error
	Delete(ctx context.Context, ids []string) error
}

// Ingestor loads documents into the index and records them in the manifest
type Ingestor struct {
	index    Index
	manifest *storage.DocumentStore
}

// New creates an ingestor
func New(index Index, manifest *storage.DocumentStore) *Ingestor {
	return &Ingestor{
		index:    index,
		manifest: manifest,
	}
}

// LoadProfileDocs reads all markdown files in a directory, sorted by name.
// Each file becomes one document with the filename as its source.
func LoadProfileDocs(dir string) ([]retrieval.IngestDocument, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("scan profile dir: %w", err)
	}
	sort.Strings(matches)

	docs := make([]retrieval.IngestDocument, 0, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		name := filepath.Base(path)
		docs = append(docs, retrieval.IngestDocument{
			ID:      DocumentID("profile:" + name),
			Content: string(data),
			Source:  name,
			Kind:    storage.KindProfile,
		})
	}

	return docs, nil
}

// SlideDocs converts extracted presentations into per-slide documents. Empty
// slides are skipped.
func SlideDocs(presentations []slides.Presentation) []retrieval.IngestDocument {
	var docs []retrieval.IngestDocument

	for _, pres := range presentations {
		for _, slide := range pres.Slides {
			var contentParts []string
			if slide.Title != "" {
				contentParts = append(contentParts, "Slide Title: "+slide.Title)
			}
			if slide.Body != "" {
				contentParts = append(contentParts, "Content: "+slide.Body)
			}
			if len(contentParts) == 0 {
				continue
			}

			content := fmt.Sprintf("From '%s', Slide %d:\n%s",
				pres.Title, slide.Number, strings.Join(contentParts, "\n"))
			source := fmt.Sprintf("%s (Slide %d)", pres.Title, slide.Number)

			docs = append(docs, retrieval.IngestDocument{
				ID:      DocumentID(fmt.Sprintf("slides:%s:%d", pres.Title, slide.Number)),
				Content: content,
				Source:  source,
				Kind:    storage.KindSlides,
			})
		}
	}

	return docs
}

// IngestProfile loads the profile markdown directory into the index
func (ig *Ingestor) IngestProfile(ctx context.Context, dir string) (int, error) {
	docs, err := LoadProfileDocs(dir)
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, fmt.Errorf("no markdown files found in %s", dir)
	}

	return len(docs), ig.store(ctx, docs)
}

// IngestSlides replaces all slide documents with the given presentations.
// Old slide entries are removed first so renamed or deleted decks do not
// linger in the index.
func (ig *Ingestor) IngestSlides(ctx context.Context, presentations []slides.Presentation) (int, error) {
	oldIDs, err := ig.manifest.IDsByKind(storage.KindSlides)
	if err != nil {
		return 0, err
	}
	if len(oldIDs) > 0 {
		logging.WithField("count", len(oldIDs)).Info("removing previously ingested slides")
		if err := ig.index.Delete(ctx, oldIDs); err != nil {
			return 0, fmt.Errorf("remove old slides: %w", err)
		}
		if err := ig.manifest.DeleteByKind(storage.KindSlides); err != nil {
			return 0, err
		}
	}

	docs := SlideDocs(presentations)
	if len(docs) == 0 {
		return 0, nil
	}

	return len(docs), ig.store(ctx, docs)
}

func (ig *Ingestor) store(ctx context.Context, docs []retrieval.IngestDocument) error {
	if err := ig.index.Upsert(ctx, docs); err != nil {
		return err
	}

	for _, d := range docs {
		if err := ig.manifest.Record(d.ID, d.Source, d.Kind); err != nil {
			return err
		}
	}

	return nil
}
