package lyrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/contre95/lyricsync/src/features/config"
	"github.com/contre95/lyricsync/src/features/metrics"
	"github.com/contre95/lyricsync/src/music"
)

// Service is the resolution orchestrator: it decides cache hit vs. provider
// fetch vs. translation, and keeps the persistent bundle store and the
// session negative cache up to date.
type Service struct {
	store     Store
	providers map[music.Provider]Provider
	adapter   Adapter
	config    *config.Manager
	metrics   *metrics.Service
	negative  *negativeCache
	listener  Listener
}

// Listener observes bundle updates, e.g. the playback synchronizer picking
// up a provider switch for the current track.
type Listener interface {
	BundleUpdated(track *music.Track, bundle *music.Bundle)
}

// NewService creates a new lyrics service.
func NewService(store Store, providers []Provider, adapter Adapter, cfg *config.Manager, metricsService *metrics.Service) *Service {
	byTag := make(map[music.Provider]Provider, len(providers))
	for _, p := range providers {
		byTag[p.Provider()] = p
	}
	return &Service{
		store:     store,
		providers: byTag,
		adapter:   adapter,
		config:    cfg,
		metrics:   metricsService,
		negative:  newNegativeCache(),
	}
}

// SetListener registers the bundle-update observer. Not safe to call after
// the service is serving requests.
func (s *Service) SetListener(l Listener) {
	s.listener = l
}

func (s *Service) notifyListener(track *music.Track, bundle *music.Bundle) {
	if s.listener != nil {
		s.listener.BundleUpdated(track, bundle)
	}
}

// fetchOrder is the order Lookup tries direct providers: a local override
// always wins, then the configured default, then the remaining ones.
func (s *Service) fetchOrder() []music.Provider {
	defaultTag, err := music.ParseProvider(s.config.Get().Lyrics.DefaultProvider)
	if err != nil {
		defaultTag = music.ProviderLrclib
	}
	order := []music.Provider{music.ProviderLocal, defaultTag}
	for tag := range s.providers {
		if tag != music.ProviderLocal && tag != defaultTag {
			order = append(order, tag)
		}
	}
	return order
}

// enabledDirect returns the enabled direct (non-derived) provider tags.
func (s *Service) enabledDirect() []music.Provider {
	var tags []music.Provider
	for tag, p := range s.providers {
		if p.IsEnabled() {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Lookup returns the lyrics bundle for a track, fetching it on cache miss.
// It returns ErrNotFound without touching the network once every enabled
// provider is a known miss for the track.
func (s *Service) Lookup(ctx context.Context, track *music.Track) (*music.Bundle, error) {
	if track == nil || track.ID == "" && track.Title == "" {
		return nil, fmt.Errorf("no track to look up")
	}

	bundle, err := s.store.GetBundle(ctx, track.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read lyrics cache: %w", err)
	}
	if bundle != nil {
		s.metrics.RecordCacheLookup("hit")
		return bundle, nil
	}
	s.metrics.RecordCacheLookup("miss")

	if s.negative.AllNegative(track.ID, s.enabledDirect()) {
		s.metrics.RecordNegativeShortCircuit()
		return nil, ErrNotFound
	}

	for _, tag := range s.fetchOrder() {
		provider, ok := s.providers[tag]
		if !ok || !provider.IsEnabled() || s.negative.Known(track.ID, tag) {
			continue
		}
		lines, err := s.fetch(ctx, provider, track)
		if err != nil {
			continue
		}
		bundle = music.NewBundle(tag, lines)
		if err := s.store.PutBundle(ctx, track.ID, bundle); err != nil {
			slog.Warn("Failed to persist lyrics bundle", "trackID", track.ID, "error", err)
		}
		slog.Info("Lyrics resolved", "trackID", track.ID, "title", track.Title, "provider", tag, "lines", len(lines))
		return bundle, nil
	}

	return nil, ErrNotFound
}

// Resolve switches the track's lyrics to the desired provider, fetching or
// deriving the variant when the bundle doesn't hold it yet. On fetch failure
// the cached bundle and its active provider are left unchanged.
func (s *Service) Resolve(ctx context.Context, track *music.Track, desired music.Provider) (*music.Bundle, error) {
	if track == nil {
		return nil, fmt.Errorf("no track to resolve")
	}
	start := time.Now()
	defer func() { s.metrics.ObserveResolve(time.Since(start)) }()

	bundle, err := s.store.GetBundle(ctx, track.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read lyrics cache: %w", err)
	}

	// Already showing the desired provider.
	if bundle != nil && bundle.ActiveProvider == desired {
		return bundle, nil
	}

	// Variant already fetched; switching is a pure cache update.
	if bundle.Has(desired) {
		bundle.ActiveProvider = desired
		if err := s.store.PutBundle(ctx, track.ID, bundle); err != nil {
			return nil, fmt.Errorf("failed to persist provider switch: %w", err)
		}
		slog.Debug("Switched lyrics provider from cache", "trackID", track.ID, "provider", desired)
		s.notifyListener(track, bundle)
		return bundle, nil
	}

	if desired.IsDerived() {
		return s.derive(ctx, track, bundle, desired)
	}

	provider, ok := s.providers[desired]
	if !ok || !provider.IsEnabled() {
		return nil, fmt.Errorf("lyrics provider %q not found or not enabled", desired)
	}
	if s.negative.Known(track.ID, desired) {
		s.metrics.RecordNegativeShortCircuit()
		return nil, ErrNotFound
	}

	lines, err := s.fetch(ctx, provider, track)
	if err != nil {
		return nil, err
	}

	if bundle == nil {
		bundle = music.NewBundle(desired, lines)
	} else {
		bundle.Set(desired, lines)
	}
	if err := s.store.PutBundle(ctx, track.ID, bundle); err != nil {
		return nil, fmt.Errorf("failed to persist lyrics bundle: %w", err)
	}
	slog.Info("Lyrics provider switched", "trackID", track.ID, "provider", desired, "lines", len(lines))
	s.notifyListener(track, bundle)
	return bundle, nil
}

// derive produces a translated/romanized variant from the active base
// sequence and stores it under the derived key.
func (s *Service) derive(ctx context.Context, track *music.Track, bundle *music.Bundle, desired music.Provider) (*music.Bundle, error) {
	base := bundle.Active()
	if len(base) == 0 {
		return nil, ErrNothingToTranslate
	}

	mode := "translate"
	if desired == music.ProviderRomanized {
		mode = "romanize"
	}
	derived, err := s.adapter.Adapt(ctx, track, base, desired)
	if err != nil {
		s.metrics.RecordTranslation(mode, metrics.OutcomeError)
		return nil, err
	}
	s.metrics.RecordTranslation(mode, metrics.OutcomeOK)

	bundle.Set(desired, derived)
	if err := s.store.PutBundle(ctx, track.ID, bundle); err != nil {
		return nil, fmt.Errorf("failed to persist derived lyrics: %w", err)
	}
	slog.Info("Lyrics derived", "trackID", track.ID, "provider", desired, "lines", len(derived))
	s.notifyListener(track, bundle)
	return bundle, nil
}

// fetch runs one provider client and keeps the negative cache and metrics
// in sync with the outcome.
func (s *Service) fetch(ctx context.Context, provider Provider, track *music.Track) ([]music.SyncedLine, error) {
	lines, err := provider.FetchLyrics(ctx, track)
	switch {
	case err == nil:
		s.metrics.RecordFetch(string(provider.Provider()), metrics.OutcomeOK)
		return lines, nil
	case errors.Is(err, ErrNotFound):
		s.metrics.RecordFetch(string(provider.Provider()), metrics.OutcomeNotFound)
		s.negative.Record(track.ID, provider.Provider())
		slog.Debug("No lyrics from provider", "trackID", track.ID, "provider", provider.Name())
		return nil, err
	default:
		s.metrics.RecordFetch(string(provider.Provider()), metrics.OutcomeError)
		s.negative.Record(track.ID, provider.Provider())
		slog.Warn("Lyrics fetch failed", "trackID", track.ID, "provider", provider.Name(), "error", err)
		return nil, err
	}
}

// Cached returns the stored bundle without any fetching, (nil, nil) on miss.
func (s *Service) Cached(ctx context.Context, trackID string) (*music.Bundle, error) {
	return s.store.GetBundle(ctx, trackID)
}

// PurgeCache clears the persistent store and the negative cache.
func (s *Service) PurgeCache(ctx context.Context) error {
	if err := s.store.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to purge lyrics cache: %w", err)
	}
	s.negative.Clear()
	slog.Info("Lyrics cache purged")
	return nil
}

// RemoveTranslations strips translated/romanized variants from every cached
// bundle, falling the active provider back to a direct one.
func (s *Service) RemoveTranslations(ctx context.Context) error {
	bundles, err := s.store.AllBundles(ctx)
	if err != nil {
		return fmt.Errorf("failed to list cached bundles: %w", err)
	}
	removed := 0
	for trackID, bundle := range bundles {
		if !bundle.StripDerived() {
			continue
		}
		if err := s.store.PutBundle(ctx, trackID, bundle); err != nil {
			return fmt.Errorf("failed to persist stripped bundle for %s: %w", trackID, err)
		}
		removed++
	}
	slog.Info("Removed cached translations", "bundles", removed)
	return nil
}
