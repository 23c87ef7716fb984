package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
)

const (
	// DefaultBaseURL is the production TMDB API root.
	DefaultBaseURL = "https://api.themoviedb.org/3"

	// DefaultImageBaseURL is the root for poster/backdrop assets.
	DefaultImageBaseURL = "https://image.tmdb.org/t/p"

	defaultTimeout  = 10 * time.Second
	defaultLanguage = "en-US"
	userAgent       = "Marquee/1.0"
)

// Client implements domain.MetadataRepository against the TMDB REST API.
type Client struct {
	baseURL    string
	apiKey     string
	language   string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API root (used by tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithLanguage overrides the language query parameter.
func WithLanguage(lang string) Option {
	return func(c *Client) {
		if lang != "" {
			c.language = lang
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a new TMDB API client.
func NewClient(apiKey string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:  DefaultBaseURL,
		apiKey:   apiKey,
		language: defaultLanguage,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// doRequest performs an authenticated GET and returns the body.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	query.Set("language", c.language)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("tmdb request", "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("tmdb request failed", "error", err, "path", path)
		return nil, domain.ErrServerOffline
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.StatusMessage != "" {
			c.logger.Error("tmdb error response", "status", resp.StatusCode, "message", apiErr.StatusMessage)
			return nil, fmt.Errorf("tmdb: %s (status %d)", apiErr.StatusMessage, resp.StatusCode)
		}
		c.logger.Error("tmdb error response", "status", resp.StatusCode)
		return nil, fmt.Errorf("tmdb: unexpected status code %d", resp.StatusCode)
	}

	return body, nil
}

// searchPage fetches one page from a list endpoint and normalizes it.
func (c *Client) searchPage(ctx context.Context, path string, query url.Values, kind resultKind) (*domain.SearchPage, error) {
	body, err := c.doRequest(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var resp pagedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("tmdb parse error", "error", err, "path", path)
		return nil, domain.ErrMalformedResponse
	}
	// A list endpoint without a results array is as unusable as a
	// transport failure; treat it the same way.
	if resp.Results == nil {
		c.logger.Error("tmdb response missing results", "path", path)
		return nil, domain.ErrMalformedResponse
	}

	return MapPage(&resp, kind), nil
}

func searchQuery(query string, page int) url.Values {
	q := url.Values{}
	q.Set("query", query)
	q.Set("page", strconv.Itoa(page))
	return q
}

func pageQuery(page int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	return q
}

// SearchMulti searches movies, TV shows and people in one feed.
func (c *Client) SearchMulti(ctx context.Context, query string, page int) (*domain.SearchPage, error) {
	return c.searchPage(ctx, "/search/multi", searchQuery(query, page), kindAuto)
}

// SearchMovies searches movies only.
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*domain.SearchPage, error) {
	return c.searchPage(ctx, "/search/movie", searchQuery(query, page), kindMovie)
}

// SearchTV searches TV shows only.
func (c *Client) SearchTV(ctx context.Context, query string, page int) (*domain.SearchPage, error) {
	return c.searchPage(ctx, "/search/tv", searchQuery(query, page), kindSeries)
}

// SearchPeople searches people only.
func (c *Client) SearchPeople(ctx context.Context, query string, page int) (*domain.SearchPage, error) {
	return c.searchPage(ctx, "/search/person", searchQuery(query, page), kindPerson)
}

// feedPaths maps browse feeds onto list endpoints and their fixed kind.
var feedPaths = map[domain.FeedID]struct {
	path string
	kind resultKind
}{
	domain.FeedNowPlaying:     {"/movie/now_playing", kindMovie},
	domain.FeedPopularMovies:  {"/movie/popular", kindMovie},
	domain.FeedTopRatedMovies: {"/movie/top_rated", kindMovie},
	domain.FeedUpcoming:       {"/movie/upcoming", kindMovie},
	domain.FeedAiringToday:    {"/tv/airing_today", kindSeries},
	domain.FeedPopularTV:      {"/tv/popular", kindSeries},
	domain.FeedTopRatedTV:     {"/tv/top_rated", kindSeries},
	domain.FeedOnTheAirTV:     {"/tv/on_the_air", kindSeries},
}

// Feed fetches one page of a zero-query browse feed.
func (c *Client) Feed(ctx context.Context, id domain.FeedID, page int) (*domain.SearchPage, error) {
	f, ok := feedPaths[id]
	if !ok {
		return nil, fmt.Errorf("unknown feed %q", id)
	}
	return c.searchPage(ctx, f.path, pageQuery(page), f.kind)
}

// MovieDetails fetches extended metadata for a single movie.
func (c *Client) MovieDetails(ctx context.Context, id int) (*domain.MovieDetails, error) {
	body, err := c.doRequest(ctx, fmt.Sprintf("/movie/%d", id), nil)
	if err != nil {
		return nil, err
	}
	var d movieDetails
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, domain.ErrMalformedResponse
	}
	return mapMovieDetails(&d), nil
}

// SeriesDetails fetches extended metadata for a single series.
func (c *Client) SeriesDetails(ctx context.Context, id int) (*domain.SeriesDetails, error) {
	body, err := c.doRequest(ctx, fmt.Sprintf("/tv/%d", id), nil)
	if err != nil {
		return nil, err
	}
	var d seriesDetails
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, domain.ErrMalformedResponse
	}
	return mapSeriesDetails(&d), nil
}

// ImageURL builds a full asset URL for a poster/backdrop path.
// Returns "" when the path is empty.
func ImageURL(imagePath, size string) string {
	if imagePath == "" {
		return ""
	}
	if size == "" {
		size = "w500"
	}
	return fmt.Sprintf("%s/%s%s", DefaultImageBaseURL, size, imagePath)
}
