package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aiden/internal/storage"
)

type failingStore struct{ saves int }

func (f *failingStore) Save(context.Context, string, storage.Record) error {
	f.saves++
	return errors.New("unreachable")
}

func (f *failingStore) QueryRecent(context.Context, string, int) ([]storage.Record, error) {
	return nil, errors.New("unreachable")
}

func TestLogger_RecordsInOrderDespiteStoreFailure(t *testing.T) {
	st := &failingStore{}
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	l := NewLogger(t.TempDir(), "Ana", st, start)

	l.Record(context.Background(), Interaction{UserInput: "status", AssistantResponse: "ok", Category: "diagnostics"})
	l.Record(context.Background(), Interaction{UserInput: "ajuda", AssistantResponse: "comandos"})

	got := l.Interactions()
	require.Len(t, got, 2)
	assert.Equal(t, "status", got[0].UserInput)
	assert.Equal(t, "ajuda", got[1].UserInput)
	assert.Equal(t, 2, st.saves)
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestLogger_FinalizeWritesSessionFile(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	l := NewLogger(dir, "Ana", nil, start)
	l.Record(context.Background(), Interaction{UserInput: "oi", AssistantResponse: "olá"})

	end := start.Add(90 * time.Second)
	sum := l.Finalize(end, map[string]bool{"text_interface": true})
	require.NoError(t, sum.Err)
	assert.Equal(t, 1, sum.Interactions)
	assert.Equal(t, 90*time.Second, sum.Duration)
	assert.Equal(t, filepath.Join(dir, "aiden_session_20250301_090130_"+l.ID()[:8]+".json"), sum.Path)

	data, err := os.ReadFile(sum.Path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "Ana", doc["user_name"])
	assert.Equal(t, "1m30s", doc["session_duration"])
	assert.Len(t, doc["interactions"], 1)

	again := l.Finalize(end.Add(time.Hour), nil)
	assert.Equal(t, sum.Path, again.Path)
}

func TestLogger_FinalizeReportsWriteFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	l := NewLogger(filepath.Join(blocker, "sub"), "Ana", nil, time.Now())
	sum := l.Finalize(time.Now(), nil)
	require.Error(t, sum.Err)
	assert.Equal(t, 0, sum.Interactions)
}
