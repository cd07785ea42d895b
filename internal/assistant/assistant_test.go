package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aiden/internal/intent"
	"aiden/internal/persona"
	"aiden/internal/search"
	"aiden/internal/storage"
)

type stubSearcher struct{}

func (stubSearcher) Search(_ context.Context, q string, n int) ([]search.Result, error) {
	return []search.Result{{Title: "Resultado sobre " + q, Snippet: "trecho"}}, nil
}

type downStore struct{}

func (downStore) Save(context.Context, string, storage.Record) error {
	return errors.New("down")
}

func (downStore) QueryRecent(context.Context, string, int) ([]storage.Record, error) {
	return nil, errors.New("down")
}

func newKit(t *testing.T) *Kit {
	t.Helper()
	st, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	clock := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	return &Kit{
		Store:         st,
		RelatedWindow: 50,
		Searcher:      stubSearcher{},
		SessionDir:    t.TempDir(),
		WorkDir:       t.TempDir(),
		Capabilities:  Capabilities{TextInterface: true, WebResearch: true, DocumentStore: true},
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	}
}

func TestEmptyInputShutsDownWithZeroInteractions(t *testing.T) {
	a := newKit(t).NewSession(persona.Default("Ana", "pt-BR"))
	reply, err := a.Process(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, reply.Terminal)
	assert.Contains(t, reply.Text, "Interactions: 0")
	assert.Contains(t, reply.Text, "Session log saved:")
	assert.Equal(t, Terminated, a.State())

	_, err = a.Process(context.Background(), "status")
	assert.ErrorIs(t, err, ErrTerminated)
}

func TestExitWordsTerminate(t *testing.T) {
	for _, w := range []string{"sair", "exit", "quit", "goodbye", "tchau", "ok tchau"} {
		a := newKit(t).NewSession(persona.Default("Ana", "pt-BR"))
		reply, err := a.Process(context.Background(), w)
		require.NoError(t, err)
		assert.True(t, reply.Terminal, w)
		assert.Equal(t, Terminated, a.State(), w)
	}
}

func TestShutdownPhraseTerminates(t *testing.T) {
	a := newKit(t).NewSession(persona.Default("Ana", "pt-BR"))
	reply, err := a.Process(context.Background(), "encerrar sessão por favor")
	require.NoError(t, err)
	assert.True(t, reply.Terminal)
}

func TestSecondIdenticalSearchFindsFirst(t *testing.T) {
	a := newKit(t).NewSession(persona.Default("Ana", "pt-BR"))
	first, err := a.Process(context.Background(), "pesquisar gatos")
	require.NoError(t, err)
	assert.Equal(t, intent.WebSearch, first.Category)
	assert.NotContains(t, first.Text, "Previous:")

	second, err := a.Process(context.Background(), "pesquisar gatos")
	require.NoError(t, err)
	assert.Contains(t, second.Text, "Previous: gatos")

	bye := a.Shutdown()
	assert.Contains(t, bye.Text, "Interactions: 2")
	assert.Contains(t, bye.Text, "- web_search: 2")
}

func TestReplyIsComposed(t *testing.T) {
	a := newKit(t).NewSession(persona.Default("Ana", "pt-BR"))
	reply, err := a.Process(context.Background(), "ajuda")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reply.Text, "Certo, Ana."))
	assert.Contains(t, reply.Text, "━━ ❓ Help ━━")
	assert.False(t, reply.Terminal)
}

func TestStoreDownDoesNotBreakSession(t *testing.T) {
	k := newKit(t)
	k.Store = downStore{}
	a := k.NewSession(persona.Default("Ana", "pt-BR"))
	reply, err := a.Process(context.Background(), "status do sistema")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Diagnostics complete.")
	assert.Contains(t, reply.Text, "unavailable")
	assert.Contains(t, a.Shutdown().Text, "Interactions: 1")
}

func TestSessionFileHasCapabilities(t *testing.T) {
	k := newKit(t)
	a := k.NewSession(persona.Default("Ana", "pt-BR"))
	_, _ = a.Process(context.Background(), "oi")
	a.Shutdown()

	entries, err := os.ReadDir(k.SessionDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(k.SessionDir + "/" + entries[0].Name())
	require.NoError(t, err)
	var doc struct {
		Capabilities map[string]bool `json:"capabilities"`
		Interactions []struct {
			Category string `json:"category"`
		} `json:"interactions"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.True(t, doc.Capabilities["web_research"])
	assert.False(t, doc.Capabilities["advanced_ai"])
	require.Len(t, doc.Interactions, 1)
	assert.Equal(t, "fallback", doc.Interactions[0].Category)
}

func TestSessionsEndingInTheSameSecondKeepSeparateFiles(t *testing.T) {
	k := newKit(t)
	fixed := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	k.Now = func() time.Time { return fixed }

	first := k.NewSession(persona.Default("Ana", "pt-BR"))
	second := k.NewSession(persona.Default("Bruno", "pt-BR"))
	_, _ = first.Process(context.Background(), "oi")
	_, _ = second.Process(context.Background(), "ajuda")
	first.Shutdown()
	second.Shutdown()

	entries, err := os.ReadDir(k.SessionDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	users := map[string]bool{}
	for _, e := range entries {
		assert.True(t, strings.HasPrefix(e.Name(), "aiden_session_20250501_100000_"), e.Name())
		data, err := os.ReadFile(k.SessionDir + "/" + e.Name())
		require.NoError(t, err)
		var doc struct {
			UserName string `json:"user_name"`
		}
		require.NoError(t, json.Unmarshal(data, &doc))
		users[doc.UserName] = true
	}
	assert.Equal(t, map[string]bool{"Ana": true, "Bruno": true}, users)
}

func TestEmergencyShutdown(t *testing.T) {
	a := newKit(t).NewSession(persona.Default("Ana", "en"))
	reply := a.EmergencyShutdown("boom")
	assert.Contains(t, reply.Text, "Emergency shutdown initiated: boom")
	assert.Equal(t, Terminated, a.State())
}

func TestGreetReportsCapabilities(t *testing.T) {
	a := newKit(t).NewSession(persona.Default("Ana", "pt-BR"))
	g := a.Greet()
	assert.Contains(t, g, "Capability Status Report:")
	assert.Contains(t, g, "🟢 Web Research: Online")
	assert.Contains(t, g, "🔴 Advanced AI: Offline")
	assert.Contains(t, g, "[Note]")
	assert.Contains(t, g, "ready to assist you, Ana")
}
