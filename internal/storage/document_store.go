package storage

import (
	"fmt"
	"time"
)

// Document kinds recorded in the ingest manifest
const (
	KindProfile = "profile"
	KindSlides  = "slides"
)

// DocumentStore tracks which documents have been ingested into the vector
// index, so re-ingestion can replace stale entries.
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a document store
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Record registers an ingested document
func (s *DocumentStore) Record(id, source, kind string) error {
	_, err := s.db.conn.Exec(`
		INSERT INTO documents (id, source, kind, ingested_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source      = excluded.source,
			kind        = excluded.kind,
			ingested_at = excluded.ingested_at
	`, id, source, kind, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record document: %w", err)
	}
	return nil
}

// IDsByKind returns the IDs of all recorded documents of a kind
func (s *DocumentStore) IDsByKind(kind string) ([]string, error) {
	rows, err := s.db.conn.Query(`SELECT id FROM documents WHERE kind = ?`, kind)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// DeleteByKind removes all manifest entries of a kind
func (s *DocumentStore) DeleteByKind(kind string) error {
	_, err := s.db.conn.Exec(`DELETE FROM documents WHERE kind = ?`, kind)
	if err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	return nil
}

// Count returns the number of recorded documents
func (s *DocumentStore) Count() (int, error) {
	var count int
	err := s.db.conn.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}
