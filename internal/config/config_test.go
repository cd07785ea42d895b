package config

import (
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	cfg, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if cfg.UserName != "User" {
		t.Fatalf("unexpected default user: %q", cfg.UserName)
	}
	if cfg.LLMProvider != ProviderGemini {
		t.Fatalf("unexpected default provider: %q", cfg.LLMProvider)
	}
	if cfg.StoreBackend != BackendFile {
		t.Fatalf("unexpected default backend: %q", cfg.StoreBackend)
	}
	if cfg.ListenTimeout != 10*time.Second || cfg.PhraseTimeLimit != 15*time.Second {
		t.Fatalf("unexpected voice timeouts: %v %v", cfg.ListenTimeout, cfg.PhraseTimeLimit)
	}
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("AIDEN_USER_NAME", "Ana")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("DOCSTORE_BACKEND", "SQLite")
	t.Setenv("ALLOWED_USERS", "1:2:3")
	t.Setenv("SEARCH_TIMEOUT", "3s")

	cfg, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if cfg.UserName != "Ana" || cfg.LLMProvider != ProviderOpenAI || cfg.StoreBackend != BackendSQLite {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if len(cfg.AllowedUsers) != 3 || cfg.AllowedUsers[2] != 3 {
		t.Fatalf("allowed users not parsed: %v", cfg.AllowedUsers)
	}
	if cfg.SearchTimeout != 3*time.Second {
		t.Fatalf("duration not parsed: %v", cfg.SearchTimeout)
	}
}

func TestGeminiKey_Precedence(t *testing.T) {
	cfg := &Config{GeminiAPIKey: "gemini"}
	if cfg.GeminiKey() != "gemini" {
		t.Fatalf("fallback key not used")
	}
	cfg.GoogleAPIKey = "google"
	if cfg.GeminiKey() != "google" {
		t.Fatalf("GOOGLE_API_KEY must win")
	}
}

func TestRetentionCutoff(t *testing.T) {
	now := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)
	cfg := &Config{RetentionDays: 30}
	if got := cfg.RetentionCutoff(now); !got.Equal(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected cutoff: %v", got)
	}
	cfg.RetentionDays = 0
	if !cfg.RetentionCutoff(now).IsZero() {
		t.Fatalf("disabled retention must yield zero cutoff")
	}
}
