package repository

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "loandesk-test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	payload := []byte(`{"cid":"c1"}`)
	if err := store.Upload(ctx, "scores/c1.json", payload, "application/json"); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	got, err := store.Download(ctx, "scores/c1.json")
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("expected %s, got %s", payload, got)
	}

	ok, err := store.Exists(ctx, "scores/c1.json")
	if err != nil || !ok {
		t.Errorf("expected document to exist, ok=%v err=%v", ok, err)
	}
}

func TestSQLiteStoreUpsert(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	if err := store.Upload(ctx, "doc", []byte("one"), ""); err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if err := store.Upload(ctx, "doc", []byte("two"), ""); err != nil {
		t.Fatalf("second upload failed: %v", err)
	}

	got, err := store.Download(ctx, "doc")
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if string(got) != "two" {
		t.Errorf("expected upserted content, got %s", got)
	}
}

func TestSQLiteStoreMissingDocument(t *testing.T) {
	store := newTestSQLiteStore(t)

	_, err := store.Download(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	ok, err := store.Exists(context.Background(), "missing")
	if err != nil || ok {
		t.Errorf("expected not to exist, ok=%v err=%v", ok, err)
	}
}
