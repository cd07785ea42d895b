package main

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aiden/internal/assistant"
	"aiden/internal/persona"
	"aiden/internal/storage"
)

func newTestServer(t *testing.T) (*AidenMCPServer, storage.Store) {
	t.Helper()
	st, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	kit := &assistant.Kit{Store: st, SessionDir: t.TempDir(), WorkDir: t.TempDir()}
	return NewAidenMCPServer(kit, persona.Default("Agent", "en"), 50), st
}

func text(t *testing.T, res *mcp.CallToolResultFor[any]) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestCommand_RoutesAndKeepsSession(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	res, err := s.Command(ctx, nil, &mcp.CallToolParamsFor[CommandParams]{Arguments: CommandParams{Command: "help"}})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), "━━ ❓ Help ━━")
	first := s.session.SessionID()

	res, err = s.Command(ctx, nil, &mcp.CallToolParamsFor[CommandParams]{Arguments: CommandParams{Command: "quit"}})
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "Interactions: 1")
	assert.Nil(t, s.session)

	_, err = s.Command(ctx, nil, &mcp.CallToolParamsFor[CommandParams]{Arguments: CommandParams{Command: "help"}})
	require.NoError(t, err)
	assert.NotEqual(t, first, s.session.SessionID())
}

func TestRelated(t *testing.T) {
	s, st := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, st.Save(ctx, storage.CollectionSearches, storage.Record{Query: "golang generics", Result: "type parameters", Source: storage.SourceWeb}))
	require.NoError(t, st.Save(ctx, storage.CollectionSearches, storage.Record{Query: "weather lisbon", Result: "sunny", Source: storage.SourceWeb}))
	// Only searches are scanned; conversation turns stay out of the results.
	require.NoError(t, st.Save(ctx, storage.CollectionConversations, storage.Record{UserInput: "golang channels", AssistantResponse: "ok"}))

	res, err := s.Related(ctx, nil, &mcp.CallToolParamsFor[RelatedParams]{Arguments: RelatedParams{Query: "golang"}})
	require.NoError(t, err)
	out := text(t, res)
	assert.Contains(t, out, "Found 1 related records")
	assert.Contains(t, out, "golang generics")
	assert.NotContains(t, out, "golang channels")

	res, err = s.Related(ctx, nil, &mcp.CallToolParamsFor[RelatedParams]{Arguments: RelatedParams{Query: "nothing matches"}})
	require.NoError(t, err)
	assert.Equal(t, "No related records found.", text(t, res))
}

func TestRelated_NoStore(t *testing.T) {
	s := NewAidenMCPServer(&assistant.Kit{SessionDir: t.TempDir()}, persona.Default("Agent", "en"), 50)
	res, err := s.Related(context.Background(), nil, &mcp.CallToolParamsFor[RelatedParams]{Arguments: RelatedParams{Query: "x"}})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
