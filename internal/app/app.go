// Package app assembles the assistant's collaborators from configuration.
// Every optional collaborator degrades to "offline" instead of failing startup.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"aiden/internal/assistant"
	"aiden/internal/audio"
	"aiden/internal/config"
	"aiden/internal/llm"
	"aiden/internal/persona"
	"aiden/internal/scheduler"
	"aiden/internal/search"
	"aiden/internal/storage"
	"aiden/internal/stt"
	"aiden/internal/sysinfo"
	"aiden/internal/tts"
	"aiden/internal/voice"
)

type Options struct {
	// TextOnly disables microphone and speech output.
	TextOnly bool

	// UserName overrides AIDEN_USER_NAME when set.
	UserName string

	// NoScheduler skips the housekeeping jobs, used by short-lived tools.
	NoScheduler bool
}

type App struct {
	Config   *config.Config
	Persona  persona.Persona
	Kit      *assistant.Kit
	Listener stt.Listener
	Speaker  tts.Speaker
	Voices   voice.Repository

	scheduler *scheduler.Scheduler
	closers   []func()
}

// Build wires the collaborators. Only an unusable local store is fatal.
func Build(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	a := &App{Config: cfg}
	caps := assistant.Capabilities{
		TextInterface:    true,
		SystemMonitoring: true,
		FileManagement:   true,
		Diagnostics:      true,
	}

	userName := cfg.UserName
	if opts.UserName != "" {
		userName = opts.UserName
	}
	p, err := persona.Load(persona.Default(userName, cfg.Language), cfg.PersonaFilePath, cfg.SystemPromptPath)
	if err != nil {
		log.WithError(err).Warn("⚠️ persona overrides ignored")
		p = persona.Default(userName, cfg.Language)
	}
	a.Persona = p

	store, remote, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	caps.DocumentStore = remote

	searcher := a.newSearcher(ctx)
	caps.WebResearch = searcher.Len() > 0

	var client llm.Client
	if c, err := llm.NewFactory(cfg).CreateClient(cfg.LLMProvider); err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			log.Infof("ℹ️ Advanced AI offline: %v", err)
		} else {
			log.WithError(err).Warn("⚠️ failed to create LLM client")
		}
	} else {
		client = c
		caps.AdvancedAI = true
		log.Infof("🤖 LLM provider: %s", cfg.LLMProvider)
	}

	if repo, err := voice.NewFileRepository(cfg.VoiceProfileDir); err != nil {
		log.WithError(err).Warn("⚠️ voice profiles unavailable")
	} else {
		a.Voices = repo
	}

	if !opts.TextOnly {
		a.Listener = a.newListener(p.Language)
		a.Speaker = a.newSpeaker()
	}
	caps.VoiceRecognition = a.Listener != nil
	caps.TextToSpeech = a.Speaker != nil

	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	a.Kit = &assistant.Kit{
		Probe:         sysinfo.New(nil),
		Store:         store,
		RelatedWindow: cfg.RelatedScanWindow,
		Searcher:      searcher,
		SearchResults: cfg.SearchResults,
		LLM:           client,
		HistoryLimit:  cfg.ChatHistoryLimit,
		Voices:        a.Voices,
		WorkDir:       wd,
		SessionDir:    cfg.SessionLogDir,
		Capabilities:  caps,
	}

	if !opts.NoScheduler {
		a.startScheduler(store)
	}
	return a, nil
}

// Close stops background jobs and releases devices and connections.
func (a *App) Close() {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) openStore(ctx context.Context) (storage.Store, bool, error) {
	cfg := a.Config
	local, err := storage.NewFileStore(cfg.LocalStoreDir)
	if err != nil {
		return nil, false, fmt.Errorf("local store: %w", err)
	}

	var primary storage.Store
	switch cfg.StoreBackend {
	case config.BackendFile, "":
	case config.BackendFirestore:
		fs, err := storage.NewFirestore(ctx, cfg.FirestoreProjectID, cfg.GoogleCredentialsFile)
		if err == nil {
			err = fs.Ping(ctx)
		}
		if err != nil {
			log.WithError(err).Warn("⚠️ Firestore unavailable, using local store")
			break
		}
		primary = fs
	case config.BackendPostgres:
		primary = a.openSQL(ctx, storage.DialectPostgres, cfg.DatabaseURL)
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			log.WithError(err).Warn("⚠️ cannot create sqlite directory")
			break
		}
		primary = a.openSQL(ctx, storage.DialectSQLite, cfg.SQLitePath)
	default:
		log.Warnf("⚠️ unknown document store backend %q, using local store", cfg.StoreBackend)
	}

	if primary == nil {
		log.Infof("💾 Document store: local files in %s", cfg.LocalStoreDir)
		return storage.NewFallback(nil, local), false, nil
	}
	log.Infof("💾 Document store: %s (local fallback in %s)", cfg.StoreBackend, cfg.LocalStoreDir)
	return storage.NewFallback(primary, local), true, nil
}

func (a *App) openSQL(ctx context.Context, dialect storage.Dialect, dsn string) storage.Store {
	st, err := storage.OpenSQL(ctx, dialect, dsn)
	if err != nil {
		log.WithError(err).Warnf("⚠️ %s unavailable, using local store", dialect)
		return nil
	}
	a.closers = append(a.closers, func() { _ = st.Close() })
	return st
}

func (a *App) newSearcher(ctx context.Context) *search.Chain {
	cfg := a.Config
	client := &http.Client{Timeout: cfg.SearchTimeout}
	var providers []search.Searcher
	if cfg.SearchEngineID != "" {
		cs, err := search.NewCustomSearch(ctx, cfg.GeminiKey(), cfg.SearchEngineID)
		if err != nil {
			log.WithError(err).Warn("⚠️ custom search disabled")
		} else {
			providers = append(providers, cs)
		}
	}
	if cfg.SearchHTMLURL != "" {
		providers = append(providers, search.NewHTMLScraper(cfg.SearchHTMLURL, client))
	}
	if cfg.SearchInstantURL != "" {
		providers = append(providers, search.NewInstantAnswer(cfg.SearchInstantURL, client))
	}
	return search.NewChain(providers...)
}

func (a *App) newListener(language string) stt.Listener {
	cfg := a.Config
	if !cfg.VoiceInput {
		return nil
	}
	if cfg.OpenAIAPIKey == "" {
		log.Info("ℹ️ Voice recognition offline: OPENAI_API_KEY not set")
		return nil
	}
	mic := audio.NewRecorder()
	if err := mic.Init(); err != nil {
		log.WithError(err).Warn("⚠️ microphone unavailable, text input only")
		return nil
	}
	a.closers = append(a.closers, mic.Close)
	log.Info("🎤 Voice recognition ready")
	return stt.NewWhisper(mic, cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.STTModel, language, cfg.CalibrationDuration)
}

func (a *App) newSpeaker() tts.Speaker {
	cfg := a.Config
	if !cfg.VoiceOutput {
		return nil
	}
	online := tts.NewOnline(cfg.OnlineTTSURL, nil)
	espeak := tts.NewEspeak(cfg.EspeakPath)
	if espeak.Available() {
		log.Info("🔊 Speech output: espeak with online fallback")
		return tts.NewFallback(espeak, online)
	}
	log.Info("🔊 Speech output: online synthesis")
	return tts.NewFallback(online, nil)
}

func (a *App) startScheduler(store storage.Store) {
	cfg := a.Config
	s := scheduler.New()
	if p, ok := store.(storage.Pruner); ok && cfg.RetentionDays > 0 {
		s.Add(scheduler.Job{Name: "record retention", Spec: cfg.RetentionSchedule, Run: scheduler.PruneJob(p, cfg.RetentionCutoff, time.Now)})
	}
	s.Add(scheduler.Job{Name: "daily usage report", Spec: cfg.ReportSchedule, Run: scheduler.ReportJob(store, 1000, time.Now)})
	if err := s.Start(); err != nil {
		log.WithError(err).Warn("⚠️ scheduler not started")
		return
	}
	a.scheduler = s
}
