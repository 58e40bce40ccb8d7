package music

import "strings"

// Track represents the track currently known to the player. A new Track
// value replaces the old one wholesale on track change.
type Track struct {
	ID       string
	Title    string
	Artists  []Artist
	Album    Album
	Duration int // milliseconds
}

// Artist is a single credited artist on a track.
type Artist struct {
	Name string
}

// Album holds the album metadata the lyric providers search by.
type Album struct {
	Title      string
	ArtworkURL string
}

// MainArtist returns the first credited artist's name, or "" when unknown.
func (t *Track) MainArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0].Name
}

// DurationSeconds returns the track duration in whole seconds.
func (t *Track) DurationSeconds() int {
	return t.Duration / 1000
}

// SameAs reports whether two tracks are the same playback item. Identity is
// the track ID when both sides have one, falling back to title equality for
// sources that don't expose stable IDs.
func (t *Track) SameAs(other *Track) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.ID != "" && other.ID != "" {
		return t.ID == other.ID
	}
	return strings.EqualFold(t.Title, other.Title)
}

// Validate checks the fields the lyric providers depend on.
func (t *Track) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrMissingTitle
	}
	return nil
}
