package music

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMissingTitle is returned when a track carries no usable title.
var ErrMissingTitle = errors.New("track title cannot be empty")

// Provider identifies the source (or derivation) of a lyric sequence.
type Provider string

const (
	ProviderSpotify    Provider = "spotify"
	ProviderLrclib     Provider = "lrclib"
	ProviderMusixmatch Provider = "musixmatch"
	ProviderLocal      Provider = "local"
	ProviderTranslated Provider = "translated"
	ProviderRomanized  Provider = "romanized"
	ProviderNone       Provider = "none"
)

// ParseProvider maps a user-supplied name onto the closed provider set.
func ParseProvider(name string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(name))) {
	case ProviderSpotify:
		return ProviderSpotify, nil
	case ProviderLrclib:
		return ProviderLrclib, nil
	case ProviderMusixmatch:
		return ProviderMusixmatch, nil
	case ProviderLocal:
		return ProviderLocal, nil
	case ProviderTranslated:
		return ProviderTranslated, nil
	case ProviderRomanized:
		return ProviderRomanized, nil
	case ProviderNone:
		return ProviderNone, nil
	}
	return ProviderNone, fmt.Errorf("unknown lyrics provider: %q", name)
}

// IsDerived reports whether the provider is computed from another provider's
// sequence rather than fetched from an upstream service.
func (p Provider) IsDerived() bool {
	return p == ProviderTranslated || p == ProviderRomanized
}

// SyncedLine is one lyric line tagged with the playback time at which it
// should be shown. Text "" is the explicit no-text marker used for
// instrumental gaps; consumers render a placeholder instead of a blank.
type SyncedLine struct {
	Time    float64 `json:"time"` // seconds from track start
	LrcTime string  `json:"lrcTime"`
	Text    string  `json:"text"`
}

// HasText reports whether the line carries displayable text.
func (l SyncedLine) HasText() bool { return l.Text != "" }

// Bundle aggregates every fetched or derived lyric variant for one track,
// plus which variant is currently selected for display. Only providers that
// actually produced a sequence have an entry in Versions.
type Bundle struct {
	Versions       map[Provider][]SyncedLine `json:"versions"`
	ActiveProvider Provider                  `json:"activeProvider"`
}

// NewBundle creates a bundle holding a single fetched sequence.
func NewBundle(provider Provider, lines []SyncedLine) *Bundle {
	return &Bundle{
		Versions:       map[Provider][]SyncedLine{provider: lines},
		ActiveProvider: provider,
	}
}

// Active returns the currently selected sequence, or nil when the active
// provider has no entry yet (fetch still in flight or everything failed).
func (b *Bundle) Active() []SyncedLine {
	if b == nil {
		return nil
	}
	return b.Versions[b.ActiveProvider]
}

// Has reports whether the bundle holds a sequence for the given provider.
func (b *Bundle) Has(p Provider) bool {
	if b == nil {
		return false
	}
	_, ok := b.Versions[p]
	return ok
}

// Set stores a sequence under the given provider key and selects it.
func (b *Bundle) Set(p Provider, lines []SyncedLine) {
	if b.Versions == nil {
		b.Versions = make(map[Provider][]SyncedLine)
	}
	b.Versions[p] = lines
	b.ActiveProvider = p
}

// directPreference is the fallback order when derived variants are removed.
var directPreference = []Provider{ProviderSpotify, ProviderMusixmatch, ProviderLrclib, ProviderLocal}

// StripDerived removes translated/romanized variants and, when the active
// provider was one of them, falls back to the preferred direct provider
// still present. Returns true if the bundle changed.
func (b *Bundle) StripDerived() bool {
	changed := false
	for _, p := range []Provider{ProviderTranslated, ProviderRomanized} {
		if _, ok := b.Versions[p]; ok {
			delete(b.Versions, p)
			changed = true
		}
	}
	if !b.Has(b.ActiveProvider) {
		b.ActiveProvider = ProviderNone
		for _, p := range directPreference {
			if b.Has(p) {
				b.ActiveProvider = p
				break
			}
		}
		changed = true
	}
	return changed
}

// FormatLrcTime renders a position in seconds as the display time string
// "MM:SS.CC" used next to each lyric line.
func FormatLrcTime(seconds float64) string {
	minutes := int(seconds) / 60
	secs := int(seconds) % 60
	centis := int(math.Floor(math.Mod(seconds, 1) * 100))
	return fmt.Sprintf("%02d:%02d.%02d", minutes, secs, centis)
}

// ParseLrcTime parses a bracketed LRC timestamp like "[01:23.45]" (bracket
// stripping optional) into seconds. The fractional part is kept as written
// in the bracket format.
func ParseLrcTime(stamp string) (float64, error) {
	s := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(stamp), "["), "]")
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed lrc timestamp: %q", stamp)
	}
	minutes, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("malformed lrc minutes in %q: %w", stamp, err)
	}
	seconds, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, fmt.Errorf("malformed lrc seconds in %q: %w", stamp, err)
	}
	return float64(minutes)*60 + seconds, nil
}
