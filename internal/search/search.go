// Package search finds web results through a chain of providers.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

var (
	ErrNoResults   = errors.New("no search results")
	ErrUnavailable = errors.New("web search unavailable")
)

type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url,omitempty"`
}

type Searcher interface {
	Search(ctx context.Context, query string, n int) ([]Result, error)
}

// Chain asks each provider in turn and returns the first non-empty answer.
type Chain struct {
	providers []Searcher
}

func NewChain(providers ...Searcher) *Chain {
	var ps []Searcher
	for _, p := range providers {
		if p != nil {
			ps = append(ps, p)
		}
	}
	return &Chain{providers: ps}
}

func (c *Chain) Len() int { return len(c.providers) }

func (c *Chain) Search(ctx context.Context, query string, n int) ([]Result, error) {
	if len(c.providers) == 0 {
		return nil, ErrUnavailable
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrNoResults
	}
	var errs []error
	for _, p := range c.providers {
		res, err := p.Search(ctx, query, n)
		if err == nil && len(res) > 0 {
			if len(res) > n {
				res = res[:n]
			}
			return res, nil
		}
		if err != nil && !errors.Is(err, ErrNoResults) {
			log.WithError(err).Warnf("⚠️ search provider %T failed", p)
			errs = append(errs, err)
		}
		if cerr := ctx.Err(); cerr != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, cerr)
		}
	}
	if len(errs) == len(c.providers) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(errs...))
	}
	return nil, ErrNoResults
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
