// Package omdb implements the poster-only fallback provider against the
// OMDB API.
package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"mediadex/internal/naming"
)

// DefaultBaseURL is used when Config.BaseURL is empty.
const DefaultBaseURL = "https://www.omdbapi.com/"

// Config holds the OMDB client settings.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client queries OMDB for poster URLs.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient constructs an OMDB client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 6 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type titleResponse struct {
	Poster string `json:"Poster"`
}

// PosterURL looks up a title and returns its poster URL, or nil when OMDB
// has no usable poster ("N/A" counts as none).
func (c *Client) PosterURL(ctx context.Context, title, yearRaw string) (*string, error) {
	params := url.Values{}
	params.Set("apikey", c.cfg.APIKey)
	params.Set("t", naming.CleanForSearch(title))
	if yearRaw != "" {
		params.Set("y", yearRaw)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build omdb request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("omdb request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("omdb responded %d", resp.StatusCode)
	}
	var body titleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode omdb response: %w", err)
	}
	if body.Poster == "" || body.Poster == "N/A" {
		return nil, nil
	}
	return &body.Poster, nil
}
