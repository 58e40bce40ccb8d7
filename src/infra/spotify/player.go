// Package spotify observes the user's Spotify playback through the Web API.
package spotify

import (
	"context"
	"errors"
	"time"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/contre95/lyricsync/src/features/playback"
	"github.com/contre95/lyricsync/src/music"
)

// ErrMissingCredentials is returned when the client ID, secret or user
// refresh token is absent from the configuration.
var ErrMissingCredentials = errors.New("spotify: client id, secret and refresh token are required")

// PlayerSource implements the playback Source interface against the Spotify
// Web API with a long-lived client.
type PlayerSource struct {
	client *spotify.Client
}

var _ playback.Source = (*PlayerSource)(nil)

// NewPlayerSource builds a source authenticated as the user whose playback is
// observed. Reading `/me/player` needs the user-read-playback-state scope, so
// an app-only (client credentials) token is not enough: the caller supplies a
// refresh token obtained once through the authorization-code flow, and the
// oauth2 transport mints access tokens from it as needed.
func NewPlayerSource(ctx context.Context, clientID, clientSecret, refreshToken string) (*PlayerSource, error) {
	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, ErrMissingCredentials
	}
	auth := spotifyauth.New(
		spotifyauth.WithClientID(clientID),
		spotifyauth.WithClientSecret(clientSecret),
		spotifyauth.WithScopes(spotifyauth.ScopeUserReadPlaybackState),
	)
	token := &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Minute), // force an immediate refresh
	}
	return &PlayerSource{client: spotify.New(auth.Client(ctx, token))}, nil
}

// NewPlayerSourceFromClient wraps an already-authenticated client, for flows
// where the caller completed the user authorization dance itself.
func NewPlayerSourceFromClient(client *spotify.Client) *PlayerSource {
	return &PlayerSource{client: client}
}

// CurrentState returns the player observation, or (nil, nil) when nothing is
// playing.
func (s *PlayerSource) CurrentState(ctx context.Context) (*music.PlayerState, error) {
	state, err := s.client.PlayerState(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil || state.Item == nil {
		return nil, nil
	}
	return &music.PlayerState{
		Track:     convertTrack(state.Item),
		IsPlaying: state.Playing,
		Position:  int(state.Progress),
		Device: music.Device{
			ID:       string(state.Device.ID),
			Name:     state.Device.Name,
			IsActive: state.Device.Active,
		},
	}, nil
}

func convertTrack(item *spotify.FullTrack) *music.Track {
	artists := make([]music.Artist, 0, len(item.Artists))
	for _, artist := range item.Artists {
		artists = append(artists, music.Artist{Name: artist.Name})
	}

	artworkURL := ""
	if len(item.Album.Images) > 0 {
		artworkURL = item.Album.Images[0].URL
	}

	return &music.Track{
		ID:       string(item.ID),
		Title:    item.Name,
		Artists:  artists,
		Album:    music.Album{Title: item.Album.Name, ArtworkURL: artworkURL},
		Duration: int(item.Duration),
	}
}
