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
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/poiesic/lyrica/lyrics"
)

const defaultLyricsBaseURL = "https://api.genius.com"

// SongLyrics is the result of a lyrics fetch: provider metadata plus
// the raw lyric text, headers included, ready for lyrics.ParseSections.
type SongLyrics struct {
	SourceId    string
	Title       string
	Artist      string
	URL         string
	ReleaseDate string
	RawLyrics   string
}

// LyricsClient fetches lyrics from a Genius-compatible provider: an
// authenticated search API locates the song, and the lyric text is
// extracted from the song's public page.
type LyricsClient struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	logger      *slog.Logger
}

// LyricsOption configures a LyricsClient.
type LyricsOption func(*LyricsClient)

// WithLyricsBaseURL overrides the API base URL.
func WithLyricsBaseURL(baseURL string) LyricsOption {
	return func(c *LyricsClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLyricsHTTPClient replaces the HTTP client.
func WithLyricsHTTPClient(client *http.Client) LyricsOption {
	return func(c *LyricsClient) {
		c.httpClient = client
	}
}

// WithLyricsLogger sets the logger.
func WithLyricsLogger(logger *slog.Logger) LyricsOption {
	return func(c *LyricsClient) {
		c.logger = logger
	}
}

// NewLyricsClient creates a lyrics client using accessToken for the
// search API.
func NewLyricsClient(accessToken string, opts ...LyricsOption) (*LyricsClient, error) {
	if accessToken == "" {
		return nil, ErrMissingCredentials
	}

	client := &LyricsClient{
		httpClient:  &http.Client{Timeout: defaultHTTPTimeout},
		baseURL:     defaultLyricsBaseURL,
		accessToken: accessToken,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type searchResponse struct {
	Response struct {
		Hits []struct {
			Result struct {
				Id                    int    `json:"id"`
				Title                 string `json:"title"`
				URL                   string `json:"url"`
				ReleaseDateForDisplay string `json:"release_date_for_display"`
				PrimaryArtist         struct {
					Name string `json:"name"`
				} `json:"primary_artist"`
			} `json:"result"`
		} `json:"hits"`
	} `json:"response"`
}

// FetchLyrics searches the provider for title by artist, verifies the
// best hit actually is that song, and scrapes its lyric text.
//
// Verification rejects covers and near-misses: the artist names must
// contain one another and the normalized titles must clear the fuzzy
// similarity threshold. A rejected hit returns ErrResultMismatch so
// callers can tolerate it per song.
func (c *LyricsClient) FetchLyrics(ctx context.Context, title, artist string) (*SongLyrics, error) {
	hit, err := c.search(ctx, title, artist)
	if err != nil {
		return nil, err
	}

	if !lyrics.ArtistsMatch(artist, hit.Artist) {
		return nil, fmt.Errorf("%w: got artist %q, wanted %q", ErrResultMismatch, hit.Artist, artist)
	}
	if !lyrics.TitlesMatch(title, hit.Title) {
		c.logger.Debug("title below similarity threshold",
			"requested", title, "returned", hit.Title,
			"similarity", lyrics.TitleSimilarity(lyrics.NormalizeTitle(title), lyrics.NormalizeTitle(hit.Title)))
		return nil, fmt.Errorf("%w: got title %q, wanted %q", ErrResultMismatch, hit.Title, title)
	}

	rawLyrics, err := c.scrapeLyrics(ctx, hit.URL)
	if err != nil {
		return nil, err
	}

	hit.RawLyrics = rawLyrics
	return hit, nil
}

func (c *LyricsClient) search(ctx context.Context, title, artist string) (*SongLyrics, error) {
	query := url.Values{}
	query.Set("q", title+" "+artist)

	searchURL := fmt.Sprintf("%s/search?%s", c.baseURL, query.Encode())
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Authorization", "Bearer "+c.accessToken)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("lyrics search failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lyrics search failed: unexpected status %s", response.Status)
	}

	var parsed searchResponse
	if err := json.NewDecoder(response.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("lyrics search failed: %w", err)
	}

	if len(parsed.Response.Hits) == 0 {
		return nil, fmt.Errorf("%w: %q by %q", ErrSongNotFound, title, artist)
	}

	result := parsed.Response.Hits[0].Result
	return &SongLyrics{
		SourceId:    strconv.Itoa(result.Id),
		Title:       result.Title,
		Artist:      result.PrimaryArtist.Name,
		URL:         result.URL,
		ReleaseDate: result.ReleaseDateForDisplay,
	}, nil
}

func (c *LyricsClient) scrapeLyrics(ctx context.Context, pageURL string) (string, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("failed to fetch song page: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch song page: unexpected status %s", response.Status)
	}

	document, err := html.Parse(response.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse song page: %w", err)
	}

	text := extractLyricContainers(document)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s", ErrNoLyrics, pageURL)
	}
	return text, nil
}

// extractLyricContainers collects the text of every div marked
// data-lyrics-container, with <br> elements rendered as newlines.
func extractLyricContainers(document *html.Node) string {
	var builder strings.Builder

	var walk func(node *html.Node, inContainer bool)
	walk = func(node *html.Node, inContainer bool) {
		entering := false
		if node.Type == html.ElementNode {
			if node.Data == "div" && hasAttribute(node, "data-lyrics-container", "true") {
				inContainer = true
				entering = true
			}
			if inContainer && node.Data == "br" {
				builder.WriteString("\n")
			}
		}
		if inContainer && node.Type == html.TextNode {
			builder.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child, inContainer)
		}
		if entering {
			builder.WriteString("\n")
		}
	}
	walk(document, false)

	return strings.TrimSpace(builder.String())
}

func hasAttribute(node *html.Node, key, value string) bool {
	for _, attr := range node.Attr {
		if attr.Key == key && attr.Val == value {
			return true
		}
	}
	return false
}
