package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"aiden/internal/intent"
	"aiden/internal/search"
	"aiden/internal/storage"
)

const offlineResearch = "Web research capabilities are currently offline. I recommend using a web browser to search for this information manually."

// WebSearch shows related stored records first, then fresh results, and
// stores fresh results for later lookups.
func (h *Handlers) WebSearch(ctx context.Context, input string) Output {
	query := intent.ExtractQuery(input)
	if query == "" {
		return Output{Title: "🌐 Web Research", Body: fmt.Sprintf("What would you like me to search for, %s? Try 'pesquisar <assunto>'.", h.name())}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Searching for: '%s'\n\n", query)

	if prev := h.related(ctx, query, 3); len(prev) > 0 {
		b.WriteString("📋 Found relevant information from previous searches:\n\n")
		for i, r := range prev {
			fmt.Fprintf(&b, "%d. Previous: %s\n", i+1, r.Query)
			fmt.Fprintf(&b, "   Result: %s\n\n", excerpt(r.Result, 300))
		}
		b.WriteString("🔍 Now searching for new information...\n\n")
	}

	if h.d.Searcher == nil {
		b.WriteString(offlineResearch)
		return Output{Title: "🌐 Web Research", Body: b.String()}
	}

	results, err := h.d.Searcher.Search(ctx, query, h.d.SearchResults)
	switch {
	case errors.Is(err, search.ErrNoResults):
		b.WriteString("🔍 Web search completed, but no clear results were found.")
		return Output{Title: "🌐 Web Research", Body: b.String()}
	case err != nil:
		log.WithError(err).Warn("⚠️ web search failed")
		b.WriteString(offlineResearch)
		return Output{Title: "🌐 Web Research", Body: b.String()}
	}

	b.WriteString("🌐 New web research results:\n\n")
	for i, r := range results {
		title := r.Title
		if title == "" {
			title = "Untitled"
		}
		snippet := r.Snippet
		if snippet == "" {
			snippet = "No description"
		}
		fmt.Fprintf(&b, "%d. %s\n   %s\n\n", i+1, title, snippet)
	}

	payload, err := json.Marshal(map[string]any{"query": query, "results": results})
	if err == nil && h.persist(ctx, storage.Record{Query: query, Result: string(payload), Source: storage.SourceWeb}) {
		b.WriteString("💾 Research results saved to database for future reference.\n")
	}
	return Output{Title: "🌐 Web Research", Body: b.String()}
}
