// Package fetch retrieves directory-listing pages over HTTP via the Colly
// collector and classifies transport failures for the crawl ledger.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// Config controls the listing-page HTTP client.
type Config struct {
	UserAgent      string
	RequestTimeout time.Duration
}

// Client fetches single pages through a shared Colly collector. Each Fetch
// clones the base collector so per-request handlers never leak between
// calls.
type Client struct {
	base   *colly.Collector
	logger *zap.Logger
}

// NewClient constructs a Colly-backed page fetcher.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	base := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
	)
	base.AllowURLRevisit = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          32,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.RequestTimeout,
	})
	base.SetRequestTimeout(cfg.RequestTimeout)

	return &Client{base: base, logger: logger}
}

// Get fetches rawURL and returns the response body. Non-2xx responses are
// errors (colly reports them through its error handler).
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	collector := c.base.Clone()
	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() { resultCh <- res })
	}

	collector.OnResponse(func(r *colly.Response) {
		send(fetchResult{body: append([]byte(nil), r.Body...)})
	})
	collector.OnError(func(_ *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		send(fetchResult{err: err})
	})

	if err := collector.Visit(rawURL); err != nil {
		return nil, fmt.Errorf("visit %s: %w", rawURL, err)
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if res.err != nil {
			return nil, fmt.Errorf("fetch %s: %w", rawURL, res.err)
		}
		return res.body, nil
	default:
		return nil, fmt.Errorf("fetch %s: no result produced", rawURL)
	}
}

type fetchResult struct {
	body []byte
	err  error
}
