package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/contre95/lyricsync/src/features/lyrics"
	"github.com/contre95/lyricsync/src/music"
)

// LRCLIB API response structure
type lrclibResponse struct {
	ID           int     `json:"id"`
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

// LrclibProvider fetches synced lyrics from the open LRCLIB database.
// Lookups are keyed by track/artist/album name and duration; distinct tracks
// with identical metadata can collide, an accepted upstream limitation.
type LrclibProvider struct {
	baseURL string
	enabled bool
	client  *Client
}

var _ lyrics.Provider = (*LrclibProvider)(nil)

// NewLrclibProvider creates a new LRCLIB provider.
func NewLrclibProvider(baseURL string, enabled bool, client *Client) *LrclibProvider {
	return &LrclibProvider{baseURL: baseURL, enabled: enabled, client: client}
}

func (p *LrclibProvider) FetchLyrics(ctx context.Context, track *music.Track) ([]music.SyncedLine, error) {
	params := url.Values{}
	params.Set("track_name", track.Title)
	params.Set("artist_name", track.MainArtist())
	params.Set("album_name", track.Album.Title)
	params.Set("duration", strconv.Itoa(track.DurationSeconds()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", lyrics.ErrFetchFailed, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", lyrics.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, lyrics.ErrNotFound
	}

	var payload lrclibResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %s", lyrics.ErrFetchFailed, err)
	}
	if payload.SyncedLyrics == "" {
		return nil, lyrics.ErrNotFound
	}

	lines := ParseSyncedLyrics(payload.SyncedLyrics)
	if len(lines) == 0 {
		return nil, lyrics.ErrNotFound
	}
	return lines, nil
}

// ParseSyncedLyrics parses newline-delimited "[MM:SS.CC] text" lyrics into
// synced lines. Empty text after the separator becomes the no-text marker.
// Rows that are not timestamped, such as "[ar: ...]" metadata tags, are
// skipped.
func ParseSyncedLyrics(raw string) []music.SyncedLine {
	var lines []music.SyncedLine
	for _, row := range strings.Split(raw, "\n") {
		row = strings.TrimRight(row, "\r")
		if strings.TrimSpace(row) == "" {
			continue
		}
		stamp, text, found := strings.Cut(row, "]")
		if !found {
			continue
		}
		seconds, err := music.ParseLrcTime(stamp)
		if err != nil {
			continue
		}
		lines = append(lines, music.SyncedLine{
			Time:    seconds,
			LrcTime: strings.TrimPrefix(strings.TrimSpace(stamp), "["),
			Text:    strings.TrimSpace(text),
		})
	}
	return lines
}

func (p *LrclibProvider) Provider() music.Provider { return music.ProviderLrclib }
func (p *LrclibProvider) Name() string             { return "LRCLIB" }
func (p *LrclibProvider) IsEnabled() bool          { return p.enabled }
