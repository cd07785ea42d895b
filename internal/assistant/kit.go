package assistant

import (
	"time"

	"aiden/internal/enrich"
	"aiden/internal/handler"
	"aiden/internal/history"
	"aiden/internal/llm"
	"aiden/internal/persona"
	"aiden/internal/search"
	"aiden/internal/session"
	"aiden/internal/storage"
	"aiden/internal/voice"
)

// Kit holds the collaborators shared by every session. Any of them may be
// nil, which takes the matching capability offline.
type Kit struct {
	Probe         handler.Prober
	Store         storage.Store
	RelatedWindow int
	Searcher      search.Searcher
	SearchResults int
	LLM           llm.Client
	HistoryLimit  int
	Voices        voice.Repository
	WorkDir       string
	SessionDir    string
	Capabilities  Capabilities
	Now           func() time.Time
}

// NewSession starts a fresh session for the given persona.
func (k *Kit) NewSession(p persona.Persona) *Assistant {
	now := k.Now
	if now == nil {
		now = time.Now
	}
	start := now()
	var enricher *enrich.Enricher
	if k.Store != nil {
		enricher = enrich.New(k.Store, k.RelatedWindow)
	}
	caps := k.Capabilities
	h := handler.New(handler.Deps{
		Persona:       p,
		Probe:         k.Probe,
		Store:         k.Store,
		Enricher:      enricher,
		Searcher:      k.Searcher,
		SearchResults: k.SearchResults,
		LLM:           k.LLM,
		History:       history.NewManager(k.HistoryLimit),
		Voices:        k.Voices,
		WorkDir:       k.WorkDir,
		Started:       start,
		Now:           now,
		Flags:         caps.Flags,
	})
	logger := session.NewLogger(k.SessionDir, p.UserName, k.Store, start)
	return New(p, h, logger, caps, now)
}
