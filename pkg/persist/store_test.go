package persist

import (
	"context"
	"path/filepath"
	"testing"
)

func TestFileStoreLoadMissing(t *testing.T) {
	store := FileStore{}
	_, ok, err := store.Load(context.Background(), filepath.Join(t.TempDir(), "missing.disk"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false for missing file")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := FileStore{}
	path := filepath.Join(t.TempDir(), "state.disk")
	want := []byte{0xde, 0xad, 0xbe, 0xef}

	if err := store.Save(context.Background(), path, want); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	got, ok, err := store.Load(context.Background(), path)
	if err != nil || !ok {
		t.Fatalf("unexpected load result: %v %v", ok, err)
	}
	if string(got) != string(want) {
		t.Fatalf("expected %x, got %x", want, got)
	}
}

func TestMemoryStoreCopiesSnapshots(t *testing.T) {
	store := NewMemoryStore()
	snapshot := []byte{1, 2, 3}
	if err := store.Save(context.Background(), "k", snapshot); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snapshot[0] = 9

	got, ok, err := store.Load(context.Background(), "k")
	if err != nil || !ok {
		t.Fatalf("unexpected load result: %v %v", ok, err)
	}
	if got[0] != 1 {
		t.Fatalf("expected stored copy unaffected, got %v", got)
	}
	got[1] = 9
	again, _, _ := store.Load(context.Background(), "k")
	if again[1] != 2 {
		t.Fatalf("expected loaded copy independent, got %v", again)
	}
}

func TestMemoryStoreLoadMissing(t *testing.T) {
	store := NewMemoryStore()
	_, ok, err := store.Load(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false")
	}
}
