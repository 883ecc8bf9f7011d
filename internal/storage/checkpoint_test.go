package storage

import (
	"path/filepath"
	"testing"
)

func TestCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	store := NewCheckpointStore(path, true)

	_, found, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if found {
		t.Fatal("fresh checkpoint must not be found")
	}

	if err := store.Save(12345); err != nil {
		t.Fatalf("Save: %v", err)
	}

	cp, found, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !found {
		t.Fatal("saved checkpoint must be found")
	}
	if cp.LastScannedBlock != 12345 {
		t.Fatalf("last scanned = %d, want 12345", cp.LastScannedBlock)
	}
	if cp.UpdatedAt == "" {
		t.Fatal("missing updated-at stamp")
	}
}

func TestCheckpointOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	store := NewCheckpointStore(path, true)

	if err := store.Save(100); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(200); err != nil {
		t.Fatalf("Save: %v", err)
	}

	cp, _, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cp.LastScannedBlock != 200 {
		t.Fatalf("last scanned = %d, want 200", cp.LastScannedBlock)
	}
}

func TestCheckpointDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	store := NewCheckpointStore(path, false)

	if err := store.Save(100); err != nil {
		t.Fatalf("Save: %v", err)
	}
	_, found, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if found {
		t.Fatal("disabled checkpoint must never be found")
	}
}
