// Package enrich looks up previously stored records that share words with a query.
package enrich

import (
	"context"
	"sort"

	"aiden/internal/intent"
	"aiden/internal/storage"
)

// Result always carries usable records; Err keeps the store failure for logging.
type Result struct {
	Records []storage.Record
	Err     error
}

type Enricher struct {
	store  storage.Store
	window int
}

// New scans at most window recent records of the searches collection per lookup.
func New(store storage.Store, window int) *Enricher {
	if window <= 0 {
		window = 50
	}
	return &Enricher{store: store, window: window}
}

var stopwords = map[string]bool{
	"a": true, "o": true, "e": true, "de": true, "do": true, "da": true, "dos": true, "das": true,
	"em": true, "no": true, "na": true, "um": true, "uma": true, "os": true, "as": true, "que": true,
	"para": true, "por": true, "com": true, "se": true, "the": true, "an": true, "of": true,
	"to": true, "in": true, "on": true, "and": true, "or": true, "is": true, "for": true, "with": true,
}

// FindRelated ranks stored records by how many query words appear in their
// query or result. Ties keep store order (newest first).
func (e *Enricher) FindRelated(ctx context.Context, query string, limit int) Result {
	if e == nil || e.store == nil || limit <= 0 {
		return Result{}
	}
	qwords := wordSet(query)
	if len(qwords) == 0 {
		return Result{}
	}
	recs, err := e.store.QueryRecent(ctx, storage.CollectionSearches, e.window)
	if err != nil {
		return Result{Err: err}
	}

	type scored struct {
		rec     storage.Record
		overlap int
	}
	var hits []scored
	for _, r := range recs {
		rw := wordSet(r.Query + " " + r.Result)
		n := 0
		for w := range qwords {
			if rw[w] {
				n++
			}
		}
		if n > 0 {
			hits = append(hits, scored{rec: r, overlap: n})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].overlap > hits[j].overlap })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]storage.Record, len(hits))
	for i, h := range hits {
		out[i] = h.rec
	}
	return Result{Records: out}
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range intent.Words(text) {
		if !stopwords[w] {
			set[w] = true
		}
	}
	return set
}
