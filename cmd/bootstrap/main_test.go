package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSeedEntityEmbeddingsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entities.json")
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	n, err := seedEntityEmbeddings(context.Background(), nil, path)
	if err != nil {
		t.Fatalf("seedEntityEmbeddings: %v", err)
	}
	if n != 0 {
		t.Errorf("seeded = %d, want 0 for an empty file", n)
	}
}

func TestSeedEntityEmbeddingsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entities.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := seedEntityEmbeddings(context.Background(), nil, path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestSeedEntityEmbeddingsMissingFile(t *testing.T) {
	if _, err := seedEntityEmbeddings(context.Background(), nil, filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
