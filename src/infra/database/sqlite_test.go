package database

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/contre95/lyricsync/src/music"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()
	store, err := NewSqliteStore(filepath.Join(t.TempDir(), "lyrics.db"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testBundle() *music.Bundle {
	return music.NewBundle(music.ProviderSpotify, []music.SyncedLine{
		{Time: 1.5, LrcTime: "00:01.50", Text: "Hello"},
		{Time: 3.0, LrcTime: "00:03.00", Text: ""},
	})
}

func TestPutAndGetBundle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.PutBundle(ctx, "track-1", testBundle()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, err := store.GetBundle(ctx, "track-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got == nil {
		t.Fatal("expected bundle to be returned")
	}
	if got.ActiveProvider != music.ProviderSpotify {
		t.Errorf("expected active provider spotify, got %s", got.ActiveProvider)
	}
	lines := got.Active()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Text != "Hello" || lines[0].Time != 1.5 {
		t.Errorf("unexpected first line: %+v", lines[0])
	}
	if lines[1].HasText() {
		t.Error("expected second line to be a no-text marker")
	}
}

func TestGetBundle_MissReturnsNil(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetBundle(context.Background(), "missing")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != nil {
		t.Errorf("expected nil bundle on miss, got %+v", got)
	}
}

func TestPutBundle_ReplacesExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.PutBundle(ctx, "track-1", testBundle()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	updated := testBundle()
	updated.Set(music.ProviderTranslated, []music.SyncedLine{{Time: 1.5, LrcTime: "00:01.50", Text: "Hola"}})
	if err := store.PutBundle(ctx, "track-1", updated); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, err := store.GetBundle(ctx, "track-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.ActiveProvider != music.ProviderTranslated {
		t.Errorf("expected active provider translated, got %s", got.ActiveProvider)
	}
	if !got.Has(music.ProviderSpotify) {
		t.Error("expected original spotify version to survive the update")
	}
}

func TestAllBundlesAndDeleteAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := store.PutBundle(ctx, id, testBundle()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	all, err := store.AllBundles(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 bundles, got %d", len(all))
	}

	if err := store.DeleteAll(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	all, err = store.AllBundles(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected empty cache after purge, got %d bundles", len(all))
	}
}

func TestMigrateLegacyCache(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	legacy := map[string]*music.Bundle{
		"old-track": testBundle(),
	}
	data, err := json.Marshal(legacy)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := store.MigrateLegacyCache(ctx, path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, err := store.GetBundle(ctx, "old-track")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got == nil {
		t.Fatal("expected migrated bundle to be present")
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected legacy cache file to be renamed after import")
	}
	if _, err := os.Stat(path + ".imported"); err != nil {
		t.Errorf("expected renamed legacy cache file, got %v", err)
	}
}

func TestMigrateLegacyCache_MissingFileIsNoop(t *testing.T) {
	store := newTestStore(t)
	if err := store.MigrateLegacyCache(context.Background(), "/does/not/exist.json"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
