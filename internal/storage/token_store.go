package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// ProviderGoogle identifies the Google OAuth token record
const ProviderGoogle = "google"

// TokenStore persists OAuth tokens
type TokenStore struct {
	db *DB
}

// NewTokenStore creates a token store
func NewTokenStore(db *DB) *TokenStore {
	return &TokenStore{db: db}
}

// Save stores or replaces the token for a provider
func (s *TokenStore) Save(provider string, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}

	_, err = s.db.conn.Exec(`
		INSERT INTO tokens (provider, token_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(provider) DO UPDATE SET
			token_json = excluded.token_json,
			updated_at = excluded.updated_at
	`, provider, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	return nil
}

// Load returns the stored token for a provider, or nil if none exists
func (s *TokenStore) Load(provider string) (*oauth2.Token, error) {
	var data string
	err := s.db.conn.QueryRow(`
		SELECT token_json FROM tokens WHERE provider = ?
	`, provider).Scan(&data)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal([]byte(data), &token); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}

	return &token, nil
}

// Delete removes the token for a provider
func (s *TokenStore) Delete(provider string) error {
	_, err := s.db.conn.Exec(`DELETE FROM tokens WHERE provider = ?`, provider)
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}
