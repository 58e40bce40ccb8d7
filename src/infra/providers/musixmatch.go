package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/contre95/lyricsync/src/features/lyrics"
	"github.com/contre95/lyricsync/src/music"
)

// The desktop API blocks anonymous callers; requests carry a desktop user
// token and the empty token-guid cookie the desktop client sends.
const (
	mxmFindPath        = "macro.subtitles.get?format=json&namespace=lyrics_richsynched&subtitle_format=mxm&app_id=web-desktop-app-v1.0"
	mxmTranslationPath = "crowd.track.translations.get?translation_fields_set=minimal&selected_language=en&comment_format=text&format=json&app_id=web-desktop-app-v1.0"

	// DefaultMusixmatchUserToken is the shared desktop-client token used when
	// the provider has no secret configured.
	DefaultMusixmatchUserToken = "200501593b603a3fdc5c9b4a696389f6589dd988e5a1cf02dfdce1"
)

type mxmMacroResponse struct {
	Message struct {
		Body struct {
			MacroCalls mxmMacroCalls `json:"macro_calls"`
		} `json:"body"`
	} `json:"message"`
}

type mxmMacroCalls struct {
	MatcherTrackGet struct {
		Message struct {
			Header struct {
				StatusCode int `json:"status_code"`
			} `json:"header"`
			Body struct {
				Track struct {
					TrackID      int `json:"track_id"`
					HasSubtitles int `json:"has_subtitles"`
					Instrumental int `json:"instrumental"`
					Restricted   int `json:"restricted"`
				} `json:"track"`
			} `json:"body"`
		} `json:"message"`
	} `json:"matcher.track.get"`
	TrackLyricsGet struct {
		Message struct {
			Body struct {
				Lyrics struct {
					Restricted int `json:"restricted"`
				} `json:"lyrics"`
			} `json:"body"`
		} `json:"message"`
	} `json:"track.lyrics.get"`
	TrackSubtitlesGet struct {
		Message struct {
			Body struct {
				SubtitleList []struct {
					Subtitle struct {
						SubtitleBody string `json:"subtitle_body"`
					} `json:"subtitle"`
				} `json:"subtitle_list"`
			} `json:"body"`
		} `json:"message"`
	} `json:"track.subtitles.get"`
}

// mxmSubtitleLine is one entry of the JSON-in-JSON subtitle body.
type mxmSubtitleLine struct {
	Text string `json:"text"`
	Time struct {
		Total      float64 `json:"total"`
		Minutes    int     `json:"minutes"`
		Seconds    int     `json:"seconds"`
		Hundredths int     `json:"hundredths"`
	} `json:"time"`
}

type mxmTranslationResponse struct {
	Message struct {
		Header struct {
			StatusCode int `json:"status_code"`
		} `json:"header"`
		Body struct {
			TranslationsList []struct {
				Translation struct {
					Description string `json:"description"`
					MatchedLine string `json:"matched_line"`
				} `json:"translation"`
			} `json:"translations_list"`
		} `json:"body"`
	} `json:"message"`
}

// MusixmatchProvider fetches rich-synced lyrics from the Musixmatch desktop
// API and exposes its crowd-sourced translations to the translating feature.
type MusixmatchProvider struct {
	baseURL   string
	userToken string
	enabled   bool
	client    *Client
}

var _ lyrics.Provider = (*MusixmatchProvider)(nil)

// NewMusixmatchProvider creates a new Musixmatch provider.
func NewMusixmatchProvider(baseURL, userToken string, enabled bool, client *Client) *MusixmatchProvider {
	return &MusixmatchProvider{baseURL: baseURL, userToken: userToken, enabled: enabled, client: client}
}

func (p *MusixmatchProvider) get(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %s", lyrics.ErrFetchFailed, err)
	}
	req.Header.Set("Authority", "apic-desktop.musixmatch.com")
	req.Header.Set("Cookie", "x-mxm-token-guid=")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", lyrics.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return lyrics.ErrNotFound
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %s", lyrics.ErrFetchFailed, err)
	}
	return nil
}

// find runs the macro search call that resolves track metadata and lyric
// availability.
func (p *MusixmatchProvider) find(ctx context.Context, track *music.Track) (*mxmMacroCalls, error) {
	duration := track.DurationSeconds()

	params := url.Values{}
	params.Set("q_album", track.Album.Title)
	params.Set("q_artist", track.MainArtist())
	params.Set("q_track", track.Title)
	params.Set("track_spotify_id", "spotify:track:"+track.ID)
	params.Set("q_duration", strconv.Itoa(duration))
	params.Set("f_subtitle_length", strconv.Itoa(duration))
	params.Set("usertoken", p.userToken)

	var payload mxmMacroResponse
	if err := p.get(ctx, p.baseURL+mxmFindPath+"&"+params.Encode(), &payload); err != nil {
		return nil, err
	}

	calls := payload.Message.Body.MacroCalls
	if calls.MatcherTrackGet.Message.Header.StatusCode != http.StatusOK {
		return nil, lyrics.ErrNotFound
	}
	if calls.TrackLyricsGet.Message.Body.Lyrics.Restricted != 0 {
		return nil, lyrics.ErrNotFound
	}
	return &calls, nil
}

func (p *MusixmatchProvider) FetchLyrics(ctx context.Context, track *music.Track) ([]music.SyncedLine, error) {
	calls, err := p.find(ctx, track)
	if err != nil {
		return nil, err
	}

	meta := calls.MatcherTrackGet.Message.Body.Track
	if meta.Instrumental != 0 || meta.HasSubtitles == 0 {
		return nil, lyrics.ErrNotFound
	}
	if len(calls.TrackSubtitlesGet.Message.Body.SubtitleList) == 0 {
		return nil, lyrics.ErrNotFound
	}

	body := calls.TrackSubtitlesGet.Message.Body.SubtitleList[0].Subtitle.SubtitleBody
	var subtitleLines []mxmSubtitleLine
	if err := json.Unmarshal([]byte(body), &subtitleLines); err != nil {
		return nil, fmt.Errorf("%w: decoding subtitle body: %s", lyrics.ErrFetchFailed, err)
	}
	if len(subtitleLines) == 0 {
		return nil, lyrics.ErrNotFound
	}

	lines := make([]music.SyncedLine, 0, len(subtitleLines))
	for _, sub := range subtitleLines {
		lines = append(lines, music.SyncedLine{
			Time:    sub.Time.Total,
			LrcTime: fmt.Sprintf("%02d:%02d.%02d", sub.Time.Minutes, sub.Time.Seconds, sub.Time.Hundredths),
			Text:    sub.Text,
		})
	}
	return lines, nil
}

// CrowdTranslations returns the crowd-sourced (original line -> translated
// line) pairs for the track, keyed through the numeric track id from the
// search call. Implements translating.CrowdSource.
func (p *MusixmatchProvider) CrowdTranslations(ctx context.Context, track *music.Track) (map[string]string, error) {
	if !p.enabled {
		return nil, lyrics.ErrNotFound
	}
	calls, err := p.find(ctx, track)
	if err != nil {
		return nil, err
	}
	trackID := calls.MatcherTrackGet.Message.Body.Track.TrackID
	if trackID == 0 {
		return nil, lyrics.ErrNotFound
	}

	params := url.Values{}
	params.Set("track_id", strconv.Itoa(trackID))
	params.Set("usertoken", p.userToken)

	var payload mxmTranslationResponse
	if err := p.get(ctx, p.baseURL+mxmTranslationPath+"&"+params.Encode(), &payload); err != nil {
		return nil, err
	}
	if payload.Message.Header.StatusCode != http.StatusOK {
		return nil, lyrics.ErrNotFound
	}
	if len(payload.Message.Body.TranslationsList) == 0 {
		return nil, lyrics.ErrNotFound
	}

	pairs := make(map[string]string, len(payload.Message.Body.TranslationsList))
	for _, entry := range payload.Message.Body.TranslationsList {
		if entry.Translation.MatchedLine != "" {
			pairs[entry.Translation.MatchedLine] = entry.Translation.Description
		}
	}
	return pairs, nil
}

func (p *MusixmatchProvider) Provider() music.Provider { return music.ProviderMusixmatch }
func (p *MusixmatchProvider) Name() string             { return "Musixmatch" }
func (p *MusixmatchProvider) IsEnabled() bool          { return p.enabled }
