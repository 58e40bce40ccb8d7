package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/contre95/lyricsync/src/features/lyrics"
	"github.com/contre95/lyricsync/src/music"
)

const mxmMacroBody = `{
	"message": {
		"body": {
			"macro_calls": {
				"matcher.track.get": {
					"message": {
						"header": {"status_code": 200},
						"body": {"track": {"track_id": 4242, "has_subtitles": 1, "instrumental": 0, "restricted": 0}}
					}
				},
				"track.lyrics.get": {
					"message": {"body": {"lyrics": {"restricted": 0}}}
				},
				"track.subtitles.get": {
					"message": {"body": {"subtitle_list": [
						{"subtitle": {"subtitle_body": "[{\"text\":\"Hello\",\"time\":{\"total\":1.5,\"minutes\":0,\"seconds\":1,\"hundredths\":50}},{\"text\":\"\",\"time\":{\"total\":3.0,\"minutes\":0,\"seconds\":3,\"hundredths\":0}}]"}}
					]}}
				}
			}
		}
	}
}`

func mxmTrack() *music.Track {
	return &music.Track{
		ID:       "abc123",
		Title:    "Song",
		Artists:  []music.Artist{{Name: "Artist"}},
		Album:    music.Album{Title: "Album"},
		Duration: 215000,
	}
}

func TestMusixmatchFetchLyrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("usertoken") == "" {
			t.Error("expected a usertoken on the request")
		}
		if q.Get("track_spotify_id") != "spotify:track:abc123" {
			t.Errorf("unexpected spotify id %q", q.Get("track_spotify_id"))
		}
		if r.Header.Get("Cookie") != "x-mxm-token-guid=" {
			t.Errorf("unexpected cookie %q", r.Header.Get("Cookie"))
		}
		w.Write([]byte(mxmMacroBody))
	}))
	defer server.Close()

	provider := NewMusixmatchProvider(server.URL+"/", "token", true, testClient())
	lines, err := provider.FetchLyrics(context.Background(), mxmTrack())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Time != 1.5 || lines[0].LrcTime != "00:01.50" || lines[0].Text != "Hello" {
		t.Errorf("unexpected first line: %+v", lines[0])
	}
	if lines[1].HasText() {
		t.Error("expected the empty subtitle line to stay a no-text marker")
	}
}

func TestMusixmatchFetchLyrics_InstrumentalIsNotFound(t *testing.T) {
	body := `{
		"message": {"body": {"macro_calls": {
			"matcher.track.get": {"message": {"header": {"status_code": 200}, "body": {"track": {"track_id": 1, "has_subtitles": 0, "instrumental": 1}}}},
			"track.lyrics.get": {"message": {"body": {"lyrics": {"restricted": 0}}}},
			"track.subtitles.get": {"message": {"body": {"subtitle_list": []}}}
		}}}
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	provider := NewMusixmatchProvider(server.URL+"/", "token", true, testClient())
	_, err := provider.FetchLyrics(context.Background(), mxmTrack())
	if !errors.Is(err, lyrics.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for instrumental tracks, got %v", err)
	}
}

func TestMusixmatchFetchLyrics_RestrictedIsNotFound(t *testing.T) {
	body := `{
		"message": {"body": {"macro_calls": {
			"matcher.track.get": {"message": {"header": {"status_code": 200}, "body": {"track": {"track_id": 1, "has_subtitles": 1}}}},
			"track.lyrics.get": {"message": {"body": {"lyrics": {"restricted": 1}}}},
			"track.subtitles.get": {"message": {"body": {"subtitle_list": []}}}
		}}}
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	provider := NewMusixmatchProvider(server.URL+"/", "token", true, testClient())
	_, err := provider.FetchLyrics(context.Background(), mxmTrack())
	if !errors.Is(err, lyrics.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for restricted lyrics, got %v", err)
	}
}

func TestMusixmatchFetchLyrics_MatcherFailureIsNotFound(t *testing.T) {
	body := `{
		"message": {"body": {"macro_calls": {
			"matcher.track.get": {"message": {"header": {"status_code": 404}, "body": {"track": {}}}},
			"track.lyrics.get": {"message": {"body": {"lyrics": {}}}},
			"track.subtitles.get": {"message": {"body": {"subtitle_list": []}}}
		}}}
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	provider := NewMusixmatchProvider(server.URL+"/", "token", true, testClient())
	_, err := provider.FetchLyrics(context.Background(), mxmTrack())
	if !errors.Is(err, lyrics.ErrNotFound) {
		t.Fatalf("expected ErrNotFound when the matcher finds nothing, got %v", err)
	}
}

func TestMusixmatchCrowdTranslations(t *testing.T) {
	translationBody := `{
		"message": {
			"header": {"status_code": 200},
			"body": {"translations_list": [
				{"translation": {"matched_line": "Hola", "description": "Hello"}},
				{"translation": {"matched_line": "", "description": "dropped"}}
			]}
		}
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("track_id") == "4242" {
			w.Write([]byte(translationBody))
			return
		}
		w.Write([]byte(mxmMacroBody))
	}))
	defer server.Close()

	provider := NewMusixmatchProvider(server.URL+"/", "token", true, testClient())
	pairs, err := provider.CrowdTranslations(context.Background(), mxmTrack())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(pairs) != 1 || pairs["Hola"] != "Hello" {
		t.Errorf("unexpected pairs: %v", pairs)
	}
}
