// Package metadata composes the external metadata providers into the
// single lookup the crawl engine consumes.
package metadata

import (
	"context"

	"go.uber.org/zap"

	"mediadex/internal/crawl"
)

// Primary resolves a title/year to full metadata fields.
type Primary interface {
	Lookup(ctx context.Context, title, yearRaw string) (*crawl.Metadata, error)
}

// PosterFallback resolves a title/year to a poster URL only.
type PosterFallback interface {
	PosterURL(ctx context.Context, title, yearRaw string) (*string, error)
}

// Chain consults the primary provider and, when it yields nothing, falls
// back to a poster-only secondary. A primary error is surfaced (the fetch
// policy puts the item on the failed backoff tier); a fallback error is
// swallowed, since the fallback is best effort on top of an already-empty
// answer.
type Chain struct {
	primary  Primary
	fallback PosterFallback
	logger   *zap.Logger
}

// NewChain builds the provider chain. fallback may be nil.
func NewChain(primary Primary, fallback PosterFallback, logger *zap.Logger) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{primary: primary, fallback: fallback, logger: logger}
}

// Lookup implements crawl.MetadataProvider.
func (c *Chain) Lookup(ctx context.Context, title, yearRaw string) (*crawl.Metadata, error) {
	meta, err := c.primary.Lookup(ctx, title, yearRaw)
	if err != nil {
		return nil, err
	}
	if meta != nil {
		return meta, nil
	}
	if c.fallback == nil {
		return nil, nil
	}

	poster, err := c.fallback.PosterURL(ctx, title, yearRaw)
	if err != nil {
		c.logger.Debug("poster fallback failed",
			zap.String("title", title), zap.Error(err))
		return nil, nil
	}
	if poster == nil {
		return nil, nil
	}
	return &crawl.Metadata{PosterURL: poster}, nil
}
