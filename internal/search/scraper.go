package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// extractor pulls results out of a parsed results page.
type extractor func(doc *html.Node, n int) []Result

// HTMLScraper fetches a search results page and tries several extraction
// strategies until one yields results.
type HTMLScraper struct {
	baseURL    string
	client     *http.Client
	userAgent  string
	strategies []extractor
}

func NewHTMLScraper(baseURL string, client *http.Client) *HTMLScraper {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTMLScraper{
		baseURL:    baseURL,
		client:     client,
		userAgent:  "Mozilla/5.0 (X11; Linux x86_64) AIDEN/1.0",
		strategies: []extractor{duckDuckGoResults, googleBasicResults, headingLinks},
	}
}

func (s *HTMLScraper) Search(ctx context.Context, query string, n int) ([]Result, error) {
	if s.baseURL == "" {
		return nil, ErrUnavailable
	}
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("scraper: bad base url: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scraper: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scraper: status %d", resp.StatusCode)
	}
	doc, err := html.Parse(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("scraper: parse: %w", err)
	}
	for _, extract := range s.strategies {
		if res := extract(doc, n); len(res) > 0 {
			return res, nil
		}
	}
	return nil, ErrNoResults
}

// duckDuckGoResults reads the html.duckduckgo.com layout: a.result__a with a
// sibling .result__snippet inside each .result block.
func duckDuckGoResults(doc *html.Node, n int) []Result {
	var out []Result
	for _, block := range findAll(doc, func(nd *html.Node) bool { return hasClass(nd, "result") }) {
		if len(out) >= n {
			break
		}
		link := findFirst(block, func(nd *html.Node) bool { return nd.Data == "a" && hasClass(nd, "result__a") })
		if link == nil {
			continue
		}
		r := Result{Title: clean(text(link)), URL: attr(link, "href")}
		if sn := findFirst(block, func(nd *html.Node) bool { return hasClass(nd, "result__snippet") }); sn != nil {
			r.Snippet = clean(text(sn))
		}
		if r.Title != "" {
			out = append(out, r)
		}
	}
	return out
}

// googleBasicResults reads the no-JavaScript Google layout where snippets
// live in div.BNeawe.s3v9rd.
func googleBasicResults(doc *html.Node, n int) []Result {
	var out []Result
	for _, nd := range findAll(doc, func(nd *html.Node) bool {
		return nd.Data == "div" && hasClass(nd, "BNeawe") && hasClass(nd, "s3v9rd")
	}) {
		if len(out) >= n {
			break
		}
		if t := clean(text(nd)); t != "" {
			out = append(out, Result{Title: truncate(t, 80), Snippet: t})
		}
	}
	return out
}

// headingLinks is the last resort: any anchor wrapping an h2/h3.
func headingLinks(doc *html.Node, n int) []Result {
	var out []Result
	for _, a := range findAll(doc, func(nd *html.Node) bool { return nd.Type == html.ElementNode && nd.Data == "a" }) {
		if len(out) >= n {
			break
		}
		h := findFirst(a, func(nd *html.Node) bool { return nd.Data == "h3" || nd.Data == "h2" })
		if h == nil {
			continue
		}
		if t := clean(text(h)); t != "" {
			out = append(out, Result{Title: t, URL: attr(a, "href")})
		}
	}
	return out
}

func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(nd *html.Node) {
		if nd.Type == html.ElementNode && match(nd) {
			out = append(out, nd)
		}
		for c := nd.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			return c
		}
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(nd *html.Node, class string) bool {
	for _, f := range strings.Fields(attr(nd, "class")) {
		if f == class {
			return true
		}
	}
	return false
}

func attr(nd *html.Node, key string) string {
	for _, a := range nd.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(nd *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(nd)
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
