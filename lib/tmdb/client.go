package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNoGenres is returned when a movie payload carries no genres list.
var ErrNoGenres = errors.New("tmdb response has no genres")

// Default endpoints.
const (
	DefaultBaseURL  = "https://api.themoviedb.org/3"
	DefaultImageURL = "https://image.tmdb.org/t/p/w500"
)

// Client is a minimal TMDB API client for movie detail lookups.
type Client struct {
	apiKey     string
	baseURL    string
	imageURL   string
	language   string
	httpClient *http.Client
	logger     *slog.Logger
}

// Genre is one entry of a movie's genre list.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Movie is the subset of the movie details payload the catalog consumes.
type Movie struct {
	ID         int     `json:"id"`
	Title      string  `json:"title"`
	Overview   string  `json:"overview"`
	PosterPath *string `json:"poster_path"`
	Genres     []Genre `json:"genres"`
}

// GenreNames projects the nested genre list to its names. The result is
// never nil so callers can tell "looked up, no genres" from "not looked up".
func (m *Movie) GenreNames() []string {
	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		names = append(names, g.Name)
	}
	return names
}

// Poster returns the poster path, or "" when TMDB has none.
func (m *Movie) Poster() string {
	if m.PosterPath == nil {
		return ""
	}
	return *m.PosterPath
}

// StatusError is returned when TMDB answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb returned HTTP %d", e.StatusCode)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithImageBaseURL sets the prefix used by PosterURL.
func WithImageBaseURL(imageURL string) Option {
	return func(c *Client) {
		if imageURL = strings.TrimSpace(imageURL); imageURL != "" {
			c.imageURL = strings.TrimRight(imageURL, "/")
		}
	}
}

// NewClient creates a client for baseURL (DefaultBaseURL when empty) that
// requests localized data in language. An API key is required.
func NewClient(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		imageURL:   DefaultImageURL,
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetMovie fetches the details of a single movie by its TMDB id. A payload
// without a genres list is rejected with ErrNoGenres.
func (c *Client) GetMovie(ctx context.Context, id string) (*Movie, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("movie id must not be empty")
	}

	endpoint, err := url.Parse(c.baseURL + "/movie/" + url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("failed to parse tmdb url: %w", err)
	}
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	c.logger.Debug("TMDB movie lookup",
		slog.String("id", id),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: c.baseURL + "/movie/" + id}
	}

	var movie Movie
	if err := json.NewDecoder(resp.Body).Decode(&movie); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	// An absent or null genres key decodes to nil, unlike [].
	if movie.Genres == nil {
		return nil, ErrNoGenres
	}

	return &movie, nil
}

// PosterURL returns the full image URL for a poster path, or "" when the
// path is empty.
func (c *Client) PosterURL(posterPath string) string {
	return PosterURL(c.imageURL, posterPath)
}

// PosterURL joins imageBaseURL (DefaultImageURL when empty) and posterPath.
func PosterURL(imageBaseURL, posterPath string) string {
	if posterPath == "" {
		return ""
	}
	if imageBaseURL == "" {
		imageBaseURL = DefaultImageURL
	}
	return fmt.Sprintf("%s%s", imageBaseURL, posterPath)
}
