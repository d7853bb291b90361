// Package tmdb implements the primary metadata provider against The Movie
// Database API. The crawl engine only needs two operations: a title/year
// search yielding at most one candidate, and a details lookup by id.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"mediadex/internal/crawl"
	"mediadex/internal/naming"
)

// Defaults used when the corresponding Config fields are empty.
const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/"

	posterSize = "w500"
)

// Config holds the TMDB client settings.
type Config struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	Timeout      time.Duration
}

// Client talks to the TMDB HTTP API under its own request timeout.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient constructs a TMDB client. The configured timeout bounds every
// request independently of the crawl-level timeout.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = DefaultImageBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type searchResponse struct {
	Results []Movie `json:"results"`
}

type Movie struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	PosterPath  string   `json:"poster_path"`
	Popularity  *float64 `json:"popularity"`
	VoteCount   *int     `json:"vote_count"`
	VoteAverage *float64 `json:"vote_average"`
}

// Search looks up a movie by title and optional year and returns the first
// candidate, or nil when the search came back empty.
func (c *Client) Search(ctx context.Context, title, yearRaw string) (*Movie, error) {
	params := url.Values{}
	params.Set("api_key", c.cfg.APIKey)
	params.Set("query", naming.CleanForSearch(title))
	if yearRaw != "" {
		params.Set("year", yearRaw)
	}

	var resp searchResponse
	if err := c.getJSON(ctx, "/search/movie", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	return &resp.Results[0], nil
}

// Details fetches the full movie record for a TMDB id.
func (c *Client) Details(ctx context.Context, id int) (*Movie, error) {
	params := url.Values{}
	params.Set("api_key", c.cfg.APIKey)

	var resp Movie
	if err := c.getJSON(ctx, "/movie/"+strconv.Itoa(id), params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Lookup collapses search-then-details into the single provider call the
// crawl engine sees. A nil result means TMDB had no match.
func (c *Client) Lookup(ctx context.Context, title, yearRaw string) (*crawl.Metadata, error) {
	candidate, err := c.Search(ctx, title, yearRaw)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, nil
	}

	details, err := c.Details(ctx, candidate.ID)
	if err != nil {
		return nil, err
	}
	if details.PosterPath == "" {
		details.PosterPath = candidate.PosterPath
	}

	id := candidate.ID
	meta := &crawl.Metadata{
		Popularity:  details.Popularity,
		VoteCount:   details.VoteCount,
		VoteAverage: details.VoteAverage,
		TMDBID:      &id,
	}
	if details.PosterPath != "" {
		poster := c.cfg.ImageBaseURL + posterSize + details.PosterPath
		meta.PosterURL = &poster
	}
	return meta, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build tmdb request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read tmdb response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb responded %d for %s", resp.StatusCode, endpoint)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode tmdb response: %w", err)
	}
	return nil
}
