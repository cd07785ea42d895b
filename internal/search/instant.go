package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
)

// InstantAnswer uses the DuckDuckGo instant-answer JSON endpoint.
type InstantAnswer struct {
	baseURL string
	client  *http.Client
}

func NewInstantAnswer(baseURL string, client *http.Client) *InstantAnswer {
	if client == nil {
		client = http.DefaultClient
	}
	return &InstantAnswer{baseURL: baseURL, client: client}
}

func (ia *InstantAnswer) Search(ctx context.Context, query string, n int) ([]Result, error) {
	if ia.baseURL == "" {
		return nil, ErrUnavailable
	}
	u, err := url.Parse(ia.baseURL)
	if err != nil {
		return nil, fmt.Errorf("instant answer: bad base url: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("no_html", "1")
	q.Set("skip_disambig", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := ia.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("instant answer: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("instant answer: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("instant answer: read: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("instant answer: invalid json")
	}

	var out []Result
	doc := gjson.ParseBytes(body)
	if abs := doc.Get("AbstractText").String(); abs != "" {
		title := doc.Get("Heading").String()
		if title == "" {
			title = query
		}
		out = append(out, Result{Title: title, Snippet: clean(abs), URL: doc.Get("AbstractURL").String()})
	}
	if ans := doc.Get("Answer").String(); ans != "" && len(out) < n {
		out = append(out, Result{Title: query, Snippet: clean(ans)})
	}
	doc.Get("RelatedTopics").ForEach(func(_, topic gjson.Result) bool {
		if len(out) >= n {
			return false
		}
		if t := topic.Get("Text").String(); t != "" {
			out = append(out, Result{Title: truncate(clean(t), 80), Snippet: clean(t), URL: topic.Get("FirstURL").String()})
		}
		return true
	})
	if len(out) == 0 {
		return nil, ErrNoResults
	}
	return out, nil
}
