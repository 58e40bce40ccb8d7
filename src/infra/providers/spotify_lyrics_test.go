package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/contre95/lyricsync/src/features/lyrics"
	"github.com/contre95/lyricsync/src/music"
)

func testClient() *Client {
	return NewClient(5*time.Second, 100)
}

func TestSpotifyFetchLyrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("trackid") != "abc123" {
			t.Errorf("unexpected trackid %q", r.URL.Query().Get("trackid"))
		}
		w.Write([]byte(`{
			"error": false,
			"syncType": "LINE_SYNCED",
			"lines": [
				{"startTimeMs": "1500", "words": "Hello", "endTimeMs": "0"},
				{"startTimeMs": "3000", "words": "♪", "endTimeMs": "0"},
				{"startTimeMs": "4500", "words": " World ", "endTimeMs": "0"}
			]
		}`))
	}))
	defer server.Close()

	provider := NewSpotifyLyricsProvider(server.URL, true, testClient())
	lines, err := provider.FetchLyrics(context.Background(), &music.Track{ID: "abc123", Title: "Song"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0].Time != 1.5 || lines[0].LrcTime != "00:01.50" || lines[0].Text != "Hello" {
		t.Errorf("unexpected first line: %+v", lines[0])
	}
	if lines[1].HasText() {
		t.Errorf("expected the note glyph to become a no-text marker, got %q", lines[1].Text)
	}
	if lines[2].Text != "World" {
		t.Errorf("expected trimmed text, got %q", lines[2].Text)
	}
}

func TestSpotifyFetchLyrics_ZeroSentinelIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"error": false,
			"lines": [
				{"startTimeMs": "0", "words": "Sorry, we don't have the lyrics"},
				{"startTimeMs": "0", "words": "for this song"}
			]
		}`))
	}))
	defer server.Close()

	provider := NewSpotifyLyricsProvider(server.URL, true, testClient())
	_, err := provider.FetchLyrics(context.Background(), &music.Track{ID: "abc123", Title: "Song"})
	if !errors.Is(err, lyrics.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for the zero sentinel, got %v", err)
	}
}

func TestSpotifyFetchLyrics_ErrorFlagIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": true, "lines": []}`))
	}))
	defer server.Close()

	provider := NewSpotifyLyricsProvider(server.URL, true, testClient())
	_, err := provider.FetchLyrics(context.Background(), &music.Track{ID: "abc123", Title: "Song"})
	if !errors.Is(err, lyrics.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSpotifyFetchLyrics_NoTrackID(t *testing.T) {
	provider := NewSpotifyLyricsProvider("http://unused", true, testClient())
	_, err := provider.FetchLyrics(context.Background(), &music.Track{Title: "Song"})
	if !errors.Is(err, lyrics.ErrNotFound) {
		t.Fatalf("expected ErrNotFound without a track id, got %v", err)
	}
}

func TestSpotifyFetchLyrics_UpstreamErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider := NewSpotifyLyricsProvider(server.URL, true, testClient())
	_, err := provider.FetchLyrics(context.Background(), &music.Track{ID: "abc123", Title: "Song"})
	if !errors.Is(err, lyrics.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
