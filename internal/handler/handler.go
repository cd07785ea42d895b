// Package handler implements one capability per intent category. Handlers
// turn every collaborator failure into prose and never return an error.
package handler

import (
	"context"
	"time"

	"aiden/internal/enrich"
	"aiden/internal/history"
	"aiden/internal/intent"
	"aiden/internal/llm"
	"aiden/internal/persona"
	"aiden/internal/search"
	"aiden/internal/storage"
	"aiden/internal/voice"
)

// Output is a handler's titled reply before persona composition.
type Output struct {
	Title string
	Body  string
}

// Prober is the host-metrics collaborator.
type Prober interface {
	Disk(ctx context.Context) (string, error)
	Memory(ctx context.Context) (string, error)
	ProcessCount(ctx context.Context) (int, error)
	TopProcesses(ctx context.Context, n int) ([]string, error)
	Uptime() (time.Duration, error)
	LoadAverage() ([3]float64, error)
}

// Flag is one capability line of the status report.
type Flag struct {
	Name   string
	Online bool
}

// Deps wires the collaborators. Nil collaborators mean the capability is offline.
type Deps struct {
	Persona       persona.Persona
	Probe         Prober
	Store         storage.Store
	Enricher      *enrich.Enricher
	Searcher      search.Searcher
	SearchResults int
	LLM           llm.Client
	History       *history.Manager
	Voices        voice.Repository
	WorkDir       string
	Started       time.Time
	Now           func() time.Time
	Flags         func() []Flag
}

type Handlers struct {
	d Deps
}

func New(d Deps) *Handlers {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Started.IsZero() {
		d.Started = d.Now()
	}
	if d.WorkDir == "" {
		d.WorkDir = "."
	}
	if d.SearchResults <= 0 {
		d.SearchResults = 3
	}
	if d.History == nil {
		d.History = history.NewManager(10)
	}
	return &Handlers{d: d}
}

// AIAvailable reports whether unmatched input can go to the AI model.
func (h *Handlers) AIAvailable() bool { return h.d.LLM != nil }

// Handle dispatches input to the handler for category. Shutdown is handled
// by the session owner and never reaches this point.
func (h *Handlers) Handle(ctx context.Context, category intent.Category, input string) Output {
	switch category {
	case intent.Diagnostics:
		return h.Diagnostics(ctx, input)
	case intent.FileManagement:
		return h.FileManagement(input)
	case intent.TimeInfo:
		return h.TimeInfo()
	case intent.SystemInfo:
		return h.SystemInfo()
	case intent.ProcessInfo:
		return h.ProcessInfo(ctx, input)
	case intent.Performance:
		return h.Performance(ctx)
	case intent.PowerManagement:
		return h.PowerManagement(input)
	case intent.Help:
		return h.Help()
	case intent.WebSearch:
		return h.WebSearch(ctx, input)
	case intent.VoiceAdaptation:
		return h.VoiceAdaptation(input)
	case intent.Conversational:
		return h.Conversational(ctx, input)
	default:
		return h.Fallback(ctx, input)
	}
}

func (h *Handlers) name() string { return h.d.Persona.UserName }

// related never fails; a store error only shows up in the log.
func (h *Handlers) related(ctx context.Context, query string, limit int) []storage.Record {
	if h.d.Enricher == nil {
		return nil
	}
	res := h.d.Enricher.FindRelated(ctx, query, limit)
	if res.Err != nil {
		logStoreError("related lookup", res.Err)
	}
	return res.Records
}

// persist is fire-and-forget.
func (h *Handlers) persist(ctx context.Context, rec storage.Record) bool {
	if h.d.Store == nil {
		return false
	}
	if err := h.d.Store.Save(ctx, storage.CollectionSearches, rec); err != nil {
		logStoreError("save "+rec.Source+" result", err)
		return false
	}
	return true
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
