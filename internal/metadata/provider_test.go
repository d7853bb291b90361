package metadata

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"mediadex/internal/crawl"
)

type stubPrimary struct {
	meta  *crawl.Metadata
	err   error
	calls int
}

func (s *stubPrimary) Lookup(context.Context, string, string) (*crawl.Metadata, error) {
	s.calls++
	return s.meta, s.err
}

type stubFallback struct {
	poster *string
	err    error
	calls  int
}

func (s *stubFallback) PosterURL(context.Context, string, string) (*string, error) {
	s.calls++
	return s.poster, s.err
}

func TestChainPrimaryHitSkipsFallback(t *testing.T) {
	id := 27205
	primary := &stubPrimary{meta: &crawl.Metadata{TMDBID: &id}}
	fallback := &stubFallback{}
	chain := NewChain(primary, fallback, nil)

	meta, err := chain.Lookup(context.Background(), "Inception", "2010")
	require.NoError(t, err)
	require.Equal(t, 27205, *meta.TMDBID)
	require.Zero(t, fallback.calls)
}

func TestChainPrimaryErrorPropagates(t *testing.T) {
	primary := &stubPrimary{err: errors.New("tmdb 500")}
	fallback := &stubFallback{}
	chain := NewChain(primary, fallback, nil)

	_, err := chain.Lookup(context.Background(), "Inception", "2010")
	require.Error(t, err)
	require.Zero(t, fallback.calls)
}

func TestChainFallbackPosterOnMiss(t *testing.T) {
	poster := "http://posters/amelie.jpg"
	chain := NewChain(&stubPrimary{}, &stubFallback{poster: &poster}, nil)

	meta, err := chain.Lookup(context.Background(), "Amelie", "2001")
	require.NoError(t, err)
	require.NotNil(t, meta)
	require.Equal(t, poster, *meta.PosterURL)
	require.Nil(t, meta.TMDBID)
}

func TestChainFallbackErrorIsSwallowed(t *testing.T) {
	chain := NewChain(&stubPrimary{}, &stubFallback{err: errors.New("omdb down")}, nil)

	meta, err := chain.Lookup(context.Background(), "Amelie", "2001")
	require.NoError(t, err)
	require.Nil(t, meta)
}

func TestChainNoFallbackMeansMissing(t *testing.T) {
	chain := NewChain(&stubPrimary{}, nil, nil)

	meta, err := chain.Lookup(context.Background(), "Amelie", "2001")
	require.NoError(t, err)
	require.Nil(t, meta)
}

func TestChainFallbackNoPosterMeansMissing(t *testing.T) {
	chain := NewChain(&stubPrimary{}, &stubFallback{}, nil)

	meta, err := chain.Lookup(context.Background(), "Amelie", "2001")
	require.NoError(t, err)
	require.Nil(t, meta)
}
