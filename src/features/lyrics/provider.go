package lyrics

import (
	"context"
	"errors"

	"github.com/contre95/lyricsync/src/music"
)

// ErrNotFound means the provider has no lyrics for the track. It is an
// expected outcome, recorded in the negative cache and never logged as an
// error.
var ErrNotFound = errors.New("no lyrics found")

// ErrFetchFailed means the provider could not be reached or answered with an
// unexpected payload. Cached like ErrNotFound, but surfaced to the user when
// the fetch was an explicit provider switch.
var ErrFetchFailed = errors.New("lyrics fetch failed")

// ErrNothingToTranslate is returned when a translation or romanization is
// requested before any direct provider produced a base sequence.
var ErrNothingToTranslate = errors.New("no lyrics to translate")

// Provider defines the interface for fetching synced lyrics from a source.
// Implementations map every upstream failure onto ErrNotFound/ErrFetchFailed;
// they never panic across this boundary.
type Provider interface {
	// FetchLyrics resolves the track into an ordered synced-line sequence.
	FetchLyrics(ctx context.Context, track *music.Track) ([]music.SyncedLine, error)

	// Provider returns the closed enum tag this client fetches for.
	Provider() music.Provider

	// Name returns the human-readable provider name.
	Name() string

	// IsEnabled returns whether the provider is enabled.
	IsEnabled() bool
}

// Adapter derives a translated or romanized sequence from a base sequence.
// Implemented by the translating feature.
type Adapter interface {
	Adapt(ctx context.Context, track *music.Track, lines []music.SyncedLine, target music.Provider) ([]music.SyncedLine, error)
}

// Store is the persistent track-id -> bundle mapping.
type Store interface {
	// GetBundle returns the cached bundle, or (nil, nil) when absent.
	GetBundle(ctx context.Context, trackID string) (*music.Bundle, error)
	PutBundle(ctx context.Context, trackID string, bundle *music.Bundle) error
	AllBundles(ctx context.Context) (map[string]*music.Bundle, error)
	DeleteAll(ctx context.Context) error
}

// Notifier pushes user-facing failure notices. The zero implementation
// drops them.
type Notifier interface {
	Notify(title, body string)
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(string, string) {}
