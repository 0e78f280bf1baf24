// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

const (
	defaultCatalogBaseURL = "https://api.spotify.com/v1"
	catalogTokenURL       = "https://accounts.spotify.com/api/token"

	// playlist pages are capped by the API at 100 tracks
	playlistPageLimit = 100

	defaultHTTPTimeout = 30 * time.Second
)

// Track is one catalog entry from a playlist walk. SourceId is the
// catalog's own identifier and becomes the song's SourceId at ingest.
type Track struct {
	SourceId    string
	Title       string
	Artist      string
	Album       string
	ReleaseDate string
	Popularity  int
}

// ArtistInfo holds the genre and popularity metadata the catalog keeps
// per artist rather than per track.
type ArtistInfo struct {
	Genres     []string
	Popularity int
}

// CatalogClient walks a Spotify-compatible catalog API: playlists for
// track listings, artist search for genre metadata. Authentication uses
// the client-credentials flow.
type CatalogClient struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// CatalogOption configures a CatalogClient.
type CatalogOption func(*CatalogClient)

// WithCatalogBaseURL overrides the API base URL.
func WithCatalogBaseURL(baseURL string) CatalogOption {
	return func(c *CatalogClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithCatalogHTTPClient replaces the oauth-wrapped HTTP client. Used by
// tests to point at a local server without the token exchange.
func WithCatalogHTTPClient(client *http.Client) CatalogOption {
	return func(c *CatalogClient) {
		c.httpClient = client
	}
}

// WithCatalogLogger sets the logger.
func WithCatalogLogger(logger *slog.Logger) CatalogOption {
	return func(c *CatalogClient) {
		c.logger = logger
	}
}

// NewCatalogClient creates a catalog client authenticating with the
// client-credentials flow.
func NewCatalogClient(clientId, clientSecret string, opts ...CatalogOption) (*CatalogClient, error) {
	client := &CatalogClient{
		baseURL: defaultCatalogBaseURL,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		if clientId == "" || clientSecret == "" {
			return nil, ErrMissingCredentials
		}
		creds := &clientcredentials.Config{
			ClientID:     clientId,
			ClientSecret: clientSecret,
			TokenURL:     catalogTokenURL,
		}
		client.httpClient = creds.Client(context.Background())
		client.httpClient.Timeout = defaultHTTPTimeout
	}

	return client, nil
}

type playlistPage struct {
	Items []struct {
		Track struct {
			Id      string `json:"id"`
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			Album struct {
				Name        string `json:"name"`
				ReleaseDate string `json:"release_date"`
			} `json:"album"`
			Popularity int `json:"popularity"`
		} `json:"track"`
	} `json:"items"`
	Next string `json:"next"`
}

// PlaylistTracks returns every track in a playlist, following the
// API's pagination until exhausted.
func (c *CatalogClient) PlaylistTracks(ctx context.Context, playlistId string) ([]*Track, error) {
	pageURL := fmt.Sprintf("%s/playlists/%s/tracks?limit=%d", c.baseURL, url.PathEscape(playlistId), playlistPageLimit)

	var tracks []*Track
	for pageURL != "" {
		var page playlistPage
		if err := c.getJSON(ctx, pageURL, &page); err != nil {
			return nil, fmt.Errorf("failed to fetch playlist %s: %w", playlistId, err)
		}

		for _, item := range page.Items {
			track := item.Track
			if track.Id == "" || track.Name == "" || len(track.Artists) == 0 {
				continue
			}
			tracks = append(tracks, &Track{
				SourceId:    track.Id,
				Title:       track.Name,
				Artist:      track.Artists[0].Name,
				Album:       track.Album.Name,
				ReleaseDate: track.Album.ReleaseDate,
				Popularity:  track.Popularity,
			})
		}

		pageURL = page.Next
	}

	return tracks, nil
}

// CollectFromPlaylists walks playlists in order, deduplicating by
// SourceId, until targetCount unique tracks are collected or the
// playlists run out. A playlist that fails to load is logged and
// skipped.
func (c *CatalogClient) CollectFromPlaylists(ctx context.Context, playlistIds []string, targetCount int) ([]*Track, error) {
	seen := make(map[string]bool)
	var collected []*Track

	for _, playlistId := range playlistIds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tracks, err := c.PlaylistTracks(ctx, playlistId)
		if err != nil {
			c.logger.Warn("skipping playlist", "playlist", playlistId, "error", err)
			continue
		}

		for _, track := range tracks {
			if seen[track.SourceId] {
				continue
			}
			seen[track.SourceId] = true
			collected = append(collected, track)
		}

		c.logger.Info("collected playlist", "playlist", playlistId, "unique_tracks", len(collected))

		if targetCount > 0 && len(collected) >= targetCount {
			return collected[:targetCount], nil
		}
	}

	return collected, nil
}

type artistSearchResponse struct {
	Artists struct {
		Items []struct {
			Name       string   `json:"name"`
			Genres     []string `json:"genres"`
			Popularity int      `json:"popularity"`
		} `json:"items"`
	} `json:"artists"`
}

// ArtistInfo looks up an artist by name and returns their genres and
// popularity. An artist without a catalog entry yields empty info, not
// an error.
func (c *CatalogClient) ArtistInfo(ctx context.Context, artistName string) (*ArtistInfo, error) {
	query := url.Values{}
	query.Set("q", "artist:"+artistName)
	query.Set("type", "artist")
	query.Set("limit", "1")

	var response artistSearchResponse
	searchURL := fmt.Sprintf("%s/search?%s", c.baseURL, query.Encode())
	if err := c.getJSON(ctx, searchURL, &response); err != nil {
		return nil, fmt.Errorf("failed to search artist %q: %w", artistName, err)
	}

	if len(response.Artists.Items) == 0 {
		return &ArtistInfo{}, nil
	}

	item := response.Artists.Items[0]
	genres := make([]string, len(item.Genres))
	for i, genre := range item.Genres {
		genres[i] = strings.ToLower(genre)
	}
	return &ArtistInfo{Genres: genres, Popularity: item.Popularity}, nil
}

func (c *CatalogClient) getJSON(ctx context.Context, rawURL string, out any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", response.Status)
	}

	return json.NewDecoder(response.Body).Decode(out)
}
