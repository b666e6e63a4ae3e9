package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

const nllb = "multilingual/facebook/nllb-200-distilled-600M"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_New_InvalidPath(t *testing.T) {
	_, err := New("/nonexistent/path/test.db")
	if err == nil {
		t.Error("expected error for invalid path")
	}
}

func TestStore_Lookup_Miss(t *testing.T) {
	s := newTestStore(t)

	text, ok, err := s.Lookup(context.Background(), "Hello", "en", "es", nllb)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if ok || text != "" {
		t.Errorf("expected miss, got %q", text)
	}
}

func TestStore_Lookup_Hit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "  Hello world ", "en", "es", nllb, "Hola mundo"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	text, ok, err := s.Lookup(ctx, "Hello world", "en", "es", nllb)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if !ok || text != "Hola mundo" {
		t.Errorf("expected hit 'Hola mundo', got %q (ok=%v)", text, ok)
	}
}

func TestStore_Lookup_KeyedByModel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "Hello", "en", "es", nllb, "Hola"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	_, ok, err := s.Lookup(ctx, "Hello", "en", "es", "multilingual/facebook/m2m100_418M")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if ok {
		t.Error("expected miss for a different model")
	}
}

func TestStore_Lookup_NFC(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// "café" precomposed vs. decomposed
	if err := s.Save(ctx, "caf\u00e9", "fr", "en", nllb, "coffee"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	text, ok, err := s.Lookup(ctx, "cafe\u0301", "fr", "en", nllb)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if !ok || text != "coffee" {
		t.Errorf("expected normalized hit, got %q (ok=%v)", text, ok)
	}
}

func TestStore_SaveReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.Save(ctx, "Hello", "en", "es", nllb, "Hola")
	_ = s.Save(ctx, "Hello", "en", "es", nllb, "¡Hola!")

	entries, err := s.ListMemory(ctx)
	if err != nil {
		t.Fatalf("ListMemory failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].FinalText != "¡Hola!" {
		t.Errorf("expected replaced text, got %q", entries[0].FinalText)
	}
}

func TestStore_Invalidated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.Save(ctx, "Hello", "en", "es", nllb, "Hola")
	entries, _ := s.ListMemory(ctx)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	if err := s.InvalidateMemory(ctx, entries[0].ID); err != nil {
		t.Fatalf("InvalidateMemory failed: %v", err)
	}

	_, ok, err := s.Lookup(ctx, "Hello", "en", "es", nllb)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if ok {
		t.Error("expected invalidated entry to miss")
	}
}

func TestStore_Stats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.Save(ctx, "Hello", "en", "es", nllb, "Hola")
	_ = s.Save(ctx, "Goodbye", "en", "es", nllb, "Adiós")
	_, _, _ = s.Lookup(ctx, "Hello", "en", "es", nllb)

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalEntries != 2 || stats.ActiveEntries != 2 || stats.InvalidEntries != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.TotalUsage != 3 {
		t.Errorf("expected total usage 3, got %d", stats.TotalUsage)
	}
}

func TestStore_DeleteMemory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.Save(ctx, "Hello", "en", "es", nllb, "Hola")
	entries, _ := s.ListMemory(ctx)

	if err := s.DeleteMemory(ctx, entries[0].ID); err != nil {
		t.Fatalf("DeleteMemory failed: %v", err)
	}
	if err := s.DeleteMemory(ctx, entries[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestStore_ClearMemory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.Save(ctx, "Hello", "en", "es", nllb, "Hola")
	_ = s.Save(ctx, "Hello", "en", "fr", nllb, "Bonjour")

	n, err := s.ClearMemory(ctx)
	if err != nil {
		t.Fatalf("ClearMemory failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 cleared, got %d", n)
	}

	entries, _ := s.ListMemory(ctx)
	if len(entries) != 0 {
		t.Errorf("expected empty memory, got %d entries", len(entries))
	}
}
