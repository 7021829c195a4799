package storage

import (
	"path/filepath"
	"sort"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func testDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(Config{InMemory: true})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("migration failed: %v", err)
	}

	return db
}

func TestOpen_FileDatabase(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "twin.db")

	db, err := Open(Config{Path: path})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	if db.Conn() == nil {
		t.Error("Conn() should not be nil")
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := testDB(t)

	// Running migrations again must not fail
	if err := db.Migrate(); err != nil {
		t.Errorf("second Migrate() error = %v", err)
	}
}

func TestTokenStore_SaveAndLoad(t *testing.T) {
	store := NewTokenStore(testDB(t))

	token := &oauth2.Token{
		AccessToken:  "access-123",
		RefreshToken: "refresh-456",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}

	if err := store.Save(ProviderGoogle, token); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load(ProviderGoogle)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded == nil {
		t.Fatal("Load() returned nil for saved token")
	}

	if loaded.AccessToken != token.AccessToken {
		t.Errorf("AccessToken = %q, want %q", loaded.AccessToken, token.AccessToken)
	}
	if loaded.RefreshToken != token.RefreshToken {
		t.Errorf("RefreshToken = %q, want %q", loaded.RefreshToken, token.RefreshToken)
	}
	if !loaded.Expiry.Equal(token.Expiry) {
		t.Errorf("Expiry = %v, want %v", loaded.Expiry, token.Expiry)
	}
}

func TestTokenStore_Load_Missing(t *testing.T) {
	store := NewTokenStore(testDB(t))

	token, err := store.Load(ProviderGoogle)
	if err != nil {
		t.Fatalf("Load() error = %v, want nil for missing token", err)
	}
	if token != nil {
		t.Errorf("Load() = %+v, want nil", token)
	}
}

func TestTokenStore_Save_Replaces(t *testing.T) {
	store := NewTokenStore(testDB(t))

	first := &oauth2.Token{AccessToken: "first"}
	second := &oauth2.Token{AccessToken: "second"}

	if err := store.Save(ProviderGoogle, first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(ProviderGoogle, second); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	loaded, err := store.Load(ProviderGoogle)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.AccessToken != "second" {
		t.Errorf("AccessToken = %q, want replacement to win", loaded.AccessToken)
	}
}

func TestTokenStore_Delete(t *testing.T) {
	store := NewTokenStore(testDB(t))

	if err := store.Save(ProviderGoogle, &oauth2.Token{AccessToken: "x"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Delete(ProviderGoogle); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	token, err := store.Load(ProviderGoogle)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if token != nil {
		t.Error("token should be gone after Delete()")
	}
}

func TestDocumentStore_RecordAndQuery(t *testing.T) {
	store := NewDocumentStore(testDB(t))

	records := []struct{ id, source, kind string }{
		{"id-1", "bio.md", KindProfile},
		{"id-2", "projects.md", KindProfile},
		{"id-3", "Deck (Slide 1)", KindSlides},
	}
	for _, r := range records {
		if err := store.Record(r.id, r.source, r.kind); err != nil {
			t.Fatalf("Record(%s) error = %v", r.id, err)
		}
	}

	count, err := store.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}

	ids, err := store.IDsByKind(KindProfile)
	if err != nil {
		t.Fatalf("IDsByKind() error = %v", err)
	}
	sort.Strings(ids)
	if len(ids) != 2 || ids[0] != "id-1" || ids[1] != "id-2" {
		t.Errorf("IDsByKind(profile) = %v", ids)
	}
}

func TestDocumentStore_Record_Upserts(t *testing.T) {
	store := NewDocumentStore(testDB(t))

	if err := store.Record("id-1", "old.md", KindProfile); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := store.Record("id-1", "new.md", KindSlides); err != nil {
		t.Fatalf("second Record() error = %v", err)
	}

	count, _ := store.Count()
	if count != 1 {
		t.Errorf("Count() = %d, want 1 after upsert", count)
	}

	ids, err := store.IDsByKind(KindSlides)
	if err != nil {
		t.Fatalf("IDsByKind() error = %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("record should have moved to new kind, got %v", ids)
	}
}

func TestDocumentStore_DeleteByKind(t *testing.T) {
	store := NewDocumentStore(testDB(t))

	store.Record("p-1", "bio.md", KindProfile)
	store.Record("s-1", "Deck (Slide 1)", KindSlides)
	store.Record("s-2", "Deck (Slide 2)", KindSlides)

	if err := store.DeleteByKind(KindSlides); err != nil {
		t.Fatalf("DeleteByKind() error = %v", err)
	}

	slideIDs, _ := store.IDsByKind(KindSlides)
	if len(slideIDs) != 0 {
		t.Errorf("slide documents should be gone, got %v", slideIDs)
	}

	profileIDs, _ := store.IDsByKind(KindProfile)
	if len(profileIDs) != 1 {
		t.Errorf("profile documents should survive, got %v", profileIDs)
	}
}
