package lyrics

import (
	"context"
	"errors"
	"testing"

	"github.com/contre95/lyricsync/src/features/config"
	"github.com/contre95/lyricsync/src/features/metrics"
	"github.com/contre95/lyricsync/src/music"
)

// MockStore is an in-memory implementation of Store
type MockStore struct {
	bundles map[string]*music.Bundle
}

func NewMockStore() *MockStore {
	return &MockStore{bundles: make(map[string]*music.Bundle)}
}

func (m *MockStore) GetBundle(ctx context.Context, trackID string) (*music.Bundle, error) {
	return m.bundles[trackID], nil
}

func (m *MockStore) PutBundle(ctx context.Context, trackID string, bundle *music.Bundle) error {
	m.bundles[trackID] = bundle
	return nil
}

func (m *MockStore) AllBundles(ctx context.Context) (map[string]*music.Bundle, error) {
	return m.bundles, nil
}

func (m *MockStore) DeleteAll(ctx context.Context) error {
	m.bundles = make(map[string]*music.Bundle)
	return nil
}

// MockProvider is a canned-response implementation of Provider
type MockProvider struct {
	tag     music.Provider
	enabled bool
	lines   []music.SyncedLine
	err     error
	calls   int
}

func (m *MockProvider) FetchLyrics(ctx context.Context, track *music.Track) ([]music.SyncedLine, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.lines, nil
}

func (m *MockProvider) Provider() music.Provider { return m.tag }
func (m *MockProvider) Name() string             { return string(m.tag) }
func (m *MockProvider) IsEnabled() bool          { return m.enabled }

// MockAdapter is a canned-response implementation of Adapter
type MockAdapter struct {
	lines []music.SyncedLine
	err   error
	calls int
}

func (m *MockAdapter) Adapt(ctx context.Context, track *music.Track, lines []music.SyncedLine, target music.Provider) ([]music.SyncedLine, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.lines, nil
}

func testConfig() *config.Manager {
	return config.NewManager(&config.Config{
		Lyrics: config.Lyrics{DefaultProvider: "lrclib"},
	})
}

func testLines() []music.SyncedLine {
	return []music.SyncedLine{
		{Time: 1.5, LrcTime: "00:01.50", Text: "Hello"},
		{Time: 3.0, LrcTime: "00:03.00", Text: ""},
	}
}

func testTrack() *music.Track {
	return &music.Track{ID: "track-1", Title: "Song", Artists: []music.Artist{{Name: "Artist"}}}
}

func TestLookup_CacheHitSkipsProviders(t *testing.T) {
	store := NewMockStore()
	store.bundles["track-1"] = music.NewBundle(music.ProviderSpotify, testLines())
	provider := &MockProvider{tag: music.ProviderLrclib, enabled: true, lines: testLines()}
	service := NewService(store, []Provider{provider}, &MockAdapter{}, testConfig(), metrics.NewService())

	bundle, err := service.Lookup(context.Background(), testTrack())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if bundle.ActiveProvider != music.ProviderSpotify {
		t.Errorf("expected cached bundle, got provider %s", bundle.ActiveProvider)
	}
	if provider.calls != 0 {
		t.Errorf("expected no provider calls on cache hit, got %d", provider.calls)
	}
}

func TestLookup_FetchesAndPersistsOnMiss(t *testing.T) {
	store := NewMockStore()
	provider := &MockProvider{tag: music.ProviderLrclib, enabled: true, lines: testLines()}
	service := NewService(store, []Provider{provider}, &MockAdapter{}, testConfig(), metrics.NewService())

	bundle, err := service.Lookup(context.Background(), testTrack())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if bundle.ActiveProvider != music.ProviderLrclib {
		t.Errorf("expected lrclib bundle, got %s", bundle.ActiveProvider)
	}
	if provider.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", provider.calls)
	}
	if store.bundles["track-1"] == nil {
		t.Error("expected bundle to be persisted")
	}
}

func TestLookup_FallsBackToNextProvider(t *testing.T) {
	store := NewMockStore()
	missing := &MockProvider{tag: music.ProviderLrclib, enabled: true, err: ErrNotFound}
	working := &MockProvider{tag: music.ProviderSpotify, enabled: true, lines: testLines()}
	service := NewService(store, []Provider{missing, working}, &MockAdapter{}, testConfig(), metrics.NewService())

	bundle, err := service.Lookup(context.Background(), testTrack())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if bundle.ActiveProvider != music.ProviderSpotify {
		t.Errorf("expected spotify fallback, got %s", bundle.ActiveProvider)
	}
	if missing.calls != 1 {
		t.Errorf("expected the default provider to be tried first, got %d calls", missing.calls)
	}
}

func TestLookup_NegativeCacheShortCircuits(t *testing.T) {
	store := NewMockStore()
	provider := &MockProvider{tag: music.ProviderLrclib, enabled: true, err: ErrNotFound}
	service := NewService(store, []Provider{provider}, &MockAdapter{}, testConfig(), metrics.NewService())
	ctx := context.Background()

	if _, err := service.Lookup(ctx, testTrack()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := service.Lookup(ctx, testTrack()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("expected the second lookup to skip the network, got %d calls", provider.calls)
	}
}

func TestPurgeCache_AllowsRefetch(t *testing.T) {
	store := NewMockStore()
	provider := &MockProvider{tag: music.ProviderLrclib, enabled: true, err: ErrNotFound}
	service := NewService(store, []Provider{provider}, &MockAdapter{}, testConfig(), metrics.NewService())
	ctx := context.Background()

	service.Lookup(ctx, testTrack())
	if err := service.PurgeCache(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	provider.err = nil
	provider.lines = testLines()
	bundle, err := service.Lookup(ctx, testTrack())
	if err != nil {
		t.Fatalf("expected refetch after purge, got %v", err)
	}
	if bundle == nil || provider.calls != 2 {
		t.Errorf("expected a fresh provider call after purge, got %d calls", provider.calls)
	}
}

func TestResolve_SwitchFromCacheDoesNotFetch(t *testing.T) {
	store := NewMockStore()
	bundle := music.NewBundle(music.ProviderSpotify, testLines())
	bundle.Versions[music.ProviderLrclib] = testLines()
	store.bundles["track-1"] = bundle
	provider := &MockProvider{tag: music.ProviderLrclib, enabled: true}
	service := NewService(store, []Provider{provider}, &MockAdapter{}, testConfig(), metrics.NewService())

	got, err := service.Resolve(context.Background(), testTrack(), music.ProviderLrclib)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.ActiveProvider != music.ProviderLrclib {
		t.Errorf("expected active provider lrclib, got %s", got.ActiveProvider)
	}
	if provider.calls != 0 {
		t.Errorf("expected no network call for a cached variant, got %d", provider.calls)
	}
	if store.bundles["track-1"].ActiveProvider != music.ProviderLrclib {
		t.Error("expected the switch to be persisted")
	}
}

func TestResolve_FetchesMissingVariant(t *testing.T) {
	store := NewMockStore()
	store.bundles["track-1"] = music.NewBundle(music.ProviderSpotify, testLines())
	provider := &MockProvider{tag: music.ProviderLrclib, enabled: true, lines: testLines()}
	service := NewService(store, []Provider{provider}, &MockAdapter{}, testConfig(), metrics.NewService())

	got, err := service.Resolve(context.Background(), testTrack(), music.ProviderLrclib)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", provider.calls)
	}
	if !got.Has(music.ProviderSpotify) || !got.Has(music.ProviderLrclib) {
		t.Error("expected both variants to be kept in the bundle")
	}
}

func TestResolve_FetchFailureKeepsActiveProvider(t *testing.T) {
	store := NewMockStore()
	store.bundles["track-1"] = music.NewBundle(music.ProviderSpotify, testLines())
	provider := &MockProvider{tag: music.ProviderLrclib, enabled: true, err: ErrNotFound}
	service := NewService(store, []Provider{provider}, &MockAdapter{}, testConfig(), metrics.NewService())

	_, err := service.Resolve(context.Background(), testTrack(), music.ProviderLrclib)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if store.bundles["track-1"].ActiveProvider != music.ProviderSpotify {
		t.Error("expected the active provider to stay unchanged on failure")
	}
}

func TestResolve_DeriveTranslated(t *testing.T) {
	store := NewMockStore()
	store.bundles["track-1"] = music.NewBundle(music.ProviderSpotify, testLines())
	adapter := &MockAdapter{lines: []music.SyncedLine{
		{Time: 1.5, LrcTime: "00:01.50", Text: "Hola"},
		{Time: 3.0, LrcTime: "00:03.00", Text: ""},
	}}
	service := NewService(store, nil, adapter, testConfig(), metrics.NewService())

	got, err := service.Resolve(context.Background(), testTrack(), music.ProviderTranslated)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.ActiveProvider != music.ProviderTranslated {
		t.Errorf("expected active provider translated, got %s", got.ActiveProvider)
	}
	if adapter.calls != 1 {
		t.Errorf("expected 1 adapter call, got %d", adapter.calls)
	}
	lines := got.Active()
	if len(lines) != 2 || lines[0].Text != "Hola" {
		t.Errorf("unexpected derived lines: %+v", lines)
	}
}

func TestResolve_DeriveWithoutBaseFails(t *testing.T) {
	store := NewMockStore()
	adapter := &MockAdapter{}
	service := NewService(store, nil, adapter, testConfig(), metrics.NewService())

	_, err := service.Resolve(context.Background(), testTrack(), music.ProviderTranslated)
	if !errors.Is(err, ErrNothingToTranslate) {
		t.Fatalf("expected ErrNothingToTranslate, got %v", err)
	}
	if adapter.calls != 0 {
		t.Errorf("expected no adapter call without a base sequence, got %d", adapter.calls)
	}
}

func TestRemoveTranslations(t *testing.T) {
	store := NewMockStore()
	bundle := music.NewBundle(music.ProviderSpotify, testLines())
	bundle.Set(music.ProviderTranslated, testLines())
	store.bundles["track-1"] = bundle
	untouched := music.NewBundle(music.ProviderLrclib, testLines())
	store.bundles["track-2"] = untouched
	service := NewService(store, nil, &MockAdapter{}, testConfig(), metrics.NewService())

	if err := service.RemoveTranslations(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got := store.bundles["track-1"]
	if got.Has(music.ProviderTranslated) {
		t.Error("expected the translated variant to be removed")
	}
	if got.ActiveProvider != music.ProviderSpotify {
		t.Errorf("expected fallback to spotify, got %s", got.ActiveProvider)
	}
	if store.bundles["track-2"].ActiveProvider != music.ProviderLrclib {
		t.Error("expected bundles without derived variants to be untouched")
	}
}
