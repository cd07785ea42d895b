package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aiden/internal/config"
	"aiden/internal/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		UserName:          "Ana",
		Language:          "pt-BR",
		PersonaFilePath:   filepath.Join(dir, "missing.yaml"),
		SystemPromptPath:  filepath.Join(dir, "missing.txt"),
		LLMProvider:       config.ProviderGemini,
		StoreBackend:      config.BackendFile,
		LocalStoreDir:     filepath.Join(dir, "store"),
		SQLitePath:        filepath.Join(dir, "db", "aiden.db"),
		RelatedScanWindow: 50,
		RetentionDays:     30,
		RetentionSchedule: "0 3 * * *",
		ReportSchedule:    "5 0 * * *",
		SearchHTMLURL:     "http://127.0.0.1:1/html/",
		SearchResults:     3,
		SearchTimeout:     time.Second,
		VoiceProfileDir:   filepath.Join(dir, "voice"),
		SessionLogDir:     filepath.Join(dir, "logs"),
		ChatHistoryLimit:  10,
	}
}

func TestBuild_TextOnlyDefaults(t *testing.T) {
	cfg := testConfig(t)
	a, err := Build(context.Background(), cfg, Options{TextOnly: true, UserName: "Bruno"})
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "Bruno", a.Persona.UserName)
	assert.Nil(t, a.Listener)
	assert.Nil(t, a.Speaker)
	assert.NotNil(t, a.Voices)
	assert.NotNil(t, a.scheduler)

	caps := a.Kit.Capabilities
	assert.True(t, caps.TextInterface)
	assert.False(t, caps.AdvancedAI, "no key configured")
	assert.False(t, caps.DocumentStore, "file backend is local only")
	assert.True(t, caps.WebResearch)
	assert.False(t, caps.VoiceRecognition)
	assert.Nil(t, a.Kit.LLM)

	s := a.Kit.NewSession(a.Persona)
	reply, err := s.Process(context.Background(), "ajuda")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Certo, Bruno.")
}

func TestBuild_ConfiguredLLM(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLMProvider = config.ProviderOpenAI
	cfg.OpenAIAPIKey = "sk-test"
	cfg.OpenAIModel = "gpt-4o-mini"
	a, err := Build(context.Background(), cfg, Options{TextOnly: true, NoScheduler: true})
	require.NoError(t, err)
	defer a.Close()
	assert.True(t, a.Kit.Capabilities.AdvancedAI)
	assert.NotNil(t, a.Kit.LLM)
	assert.Nil(t, a.scheduler)
}

func TestBuild_SQLiteBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreBackend = config.BackendSQLite
	a, err := Build(context.Background(), cfg, Options{TextOnly: true, NoScheduler: true})
	require.NoError(t, err)
	defer a.Close()
	assert.True(t, a.Kit.Capabilities.DocumentStore)

	ctx := context.Background()
	require.NoError(t, a.Kit.Store.Save(ctx, storage.CollectionSearches, storage.Record{Query: "q", Result: "r", Source: storage.SourceWeb}))
	recs, err := a.Kit.Store.QueryRecent(ctx, storage.CollectionSearches, 5)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "q", recs[0].Query)
}

func TestBuild_UnreachableRemoteDegradesToLocal(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreBackend = config.BackendPostgres
	cfg.DatabaseURL = ""
	a, err := Build(context.Background(), cfg, Options{TextOnly: true, NoScheduler: true})
	require.NoError(t, err)
	defer a.Close()
	assert.False(t, a.Kit.Capabilities.DocumentStore)

	cfg = testConfig(t)
	cfg.StoreBackend = "mongo"
	b, err := Build(context.Background(), cfg, Options{TextOnly: true, NoScheduler: true})
	require.NoError(t, err)
	defer b.Close()
	assert.False(t, b.Kit.Capabilities.DocumentStore)
}

func TestBuild_VoiceDisabledByConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.VoiceInput = false
	cfg.VoiceOutput = false
	a, err := Build(context.Background(), cfg, Options{NoScheduler: true})
	require.NoError(t, err)
	defer a.Close()
	assert.Nil(t, a.Listener)
	assert.Nil(t, a.Speaker)
	assert.False(t, a.Kit.Capabilities.TextToSpeech)
}
