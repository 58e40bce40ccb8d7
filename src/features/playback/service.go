package playback

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/contre95/lyricsync/src/features/config"
	"github.com/contre95/lyricsync/src/features/metrics"
	"github.com/contre95/lyricsync/src/music"
	"github.com/google/uuid"
)

// Source provides authoritative player observations, typically by polling
// the streaming service's API.
type Source interface {
	CurrentState(ctx context.Context) (*music.PlayerState, error)
}

// Resolver resolves lyrics for a track. Implemented by the lyrics feature.
type Resolver interface {
	Lookup(ctx context.Context, track *music.Track) (*music.Bundle, error)
}

// Service polls the player, keeps the synchronizer fed with authoritative
// state, and kicks off lyric resolution on track change.
type Service struct {
	source   Source
	resolver Resolver
	sync     *Synchronizer
	config   *config.Manager

	mu        sync.Mutex
	fetching  map[string]struct{} // track IDs with an in-flight resolution
	lastState *music.PlayerState

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewService creates a new playback service.
func NewService(source Source, resolver Resolver, cfg *config.Manager, metricsService *metrics.Service) *Service {
	return &Service{
		source:   source,
		resolver: resolver,
		sync:     NewSynchronizer(cfg.Get().Player.WindowSeconds, metricsService),
		config:   cfg,
		fetching: make(map[string]struct{}),
		stopChan: make(chan struct{}),
	}
}

// Synchronizer exposes the owned synchronizer for handlers and the bundle
// listener.
func (s *Service) Synchronizer() *Synchronizer {
	return s.sync
}

// Start begins polling the player and advancing the local position.
func (s *Service) Start() {
	go s.run()
}

// Stop halts polling; pending fetches finish but their results are only
// applied if the track is still current.
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *Service) run() {
	cfg := s.config.Get().Player
	poll := time.NewTicker(time.Duration(cfg.PollInterval) * time.Millisecond)
	tick := time.NewTicker(time.Duration(cfg.TickInterval) * time.Millisecond)
	defer poll.Stop()
	defer tick.Stop()

	s.refresh()
	for {
		select {
		case <-poll.C:
			s.refresh()
		case <-tick.C:
			s.sync.Advance(cfg.TickInterval)
		case <-s.stopChan:
			return
		}
	}
}

// refresh reads the player once and applies the observation.
func (s *Service) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	state, err := s.source.CurrentState(ctx)
	if err != nil {
		slog.Debug("Player poll failed", "error", err)
		return
	}
	s.apply(state)
}

// apply feeds one observation into the synchronizer and resolves lyrics on
// track change.
func (s *Service) apply(state *music.PlayerState) {
	s.mu.Lock()
	s.lastState = state
	s.mu.Unlock()

	if state == nil || state.Track == nil {
		if s.sync.Track() != nil {
			slog.Debug("Playback stopped")
			s.sync.SetTrack(nil)
		}
		return
	}

	previous := s.sync.Track()
	if !state.Track.SameAs(previous) {
		slog.Info("Track changed", "trackID", state.Track.ID, "title", state.Track.Title, "artist", state.Track.MainArtist())
		s.sync.SetTrack(state.Track)
		s.resolveAsync(state.Track)
	}
	s.sync.Resync(state.Position, state.IsPlaying, state.Device)
}

// resolveAsync fetches lyrics off the poll loop. Concurrent fetches for the
// same track are collapsed; results are idempotent so a lost race is
// harmless.
func (s *Service) resolveAsync(track *music.Track) {
	s.mu.Lock()
	if _, inFlight := s.fetching[track.ID]; inFlight {
		s.mu.Unlock()
		return
	}
	s.fetching[track.ID] = struct{}{}
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.fetching, track.ID)
			s.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		bundle, err := s.resolver.Lookup(ctx, track)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				slog.Debug("No lyrics for track", "trackID", track.ID, "title", track.Title, "error", err)
			}
			return
		}
		// Only apply if the track is still the one playing.
		if current := s.sync.Track(); current.SameAs(track) {
			s.sync.SetLines(bundle.ActiveProvider, bundle.Active())
		}
	}()
}

// BundleUpdated implements the lyrics feature's listener: a provider switch
// or derived variant lands in the synchronizer when it concerns the current
// track. Identity follows Track.SameAs so tracks known only by title (no
// stable ID) still match.
func (s *Service) BundleUpdated(track *music.Track, bundle *music.Bundle) {
	current := s.sync.Track()
	if current == nil || !current.SameAs(track) {
		return
	}
	s.sync.SetLines(bundle.ActiveProvider, bundle.Active())
}

// CurrentTrack implements lyrics.TrackSource.
func (s *Service) CurrentTrack() *music.Track {
	return s.sync.Track()
}

// LastState returns the most recent raw player observation.
func (s *Service) LastState() *music.PlayerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastState
}

func newSubscriberID() string {
	return uuid.New().String()
}
