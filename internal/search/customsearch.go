package search

import (
	"context"
	"fmt"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// CustomSearch queries the Google Programmable Search JSON API.
type CustomSearch struct {
	svc *customsearch.Service
	cx  string
}

func NewCustomSearch(ctx context.Context, apiKey, engineID string, opts ...option.ClientOption) (*CustomSearch, error) {
	if apiKey == "" || engineID == "" {
		return nil, fmt.Errorf("custom search: %w: key or engine id missing", ErrUnavailable)
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("custom search: %w", err)
	}
	return &CustomSearch{svc: svc, cx: engineID}, nil
}

func (c *CustomSearch) Search(ctx context.Context, query string, n int) ([]Result, error) {
	if n <= 0 || n > 10 {
		n = 10
	}
	resp, err := c.svc.Cse.List().Cx(c.cx).Q(query).Num(int64(n)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("custom search: %w", err)
	}
	out := make([]Result, 0, len(resp.Items))
	for _, it := range resp.Items {
		out = append(out, Result{Title: clean(it.Title), Snippet: clean(it.Snippet), URL: it.Link})
	}
	if len(out) == 0 {
		return nil, ErrNoResults
	}
	return out, nil
}
