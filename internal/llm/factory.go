package llm

import (
	"errors"
	"fmt"
	"strings"

	"aiden/internal/config"
)

// ErrNotConfigured means the selected provider has no credentials; the
// assistant then runs without the conversational capability.
var ErrNotConfigured = errors.New("llm provider not configured")

// Factory creates LLM clients with consistent logic
type Factory struct {
	GeminiAPIKey     string
	GeminiBaseURL    string
	GeminiModel      string
	OpenaiAPIKey     string
	OpenaiBaseURL    string
	OpenaiModel      string
	YandexOAuthToken string
	YandexFolderID   string
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		GeminiAPIKey:     cfg.GeminiKey(),
		GeminiBaseURL:    cfg.GeminiBaseURL,
		GeminiModel:      cfg.GeminiModel,
		OpenaiAPIKey:     cfg.OpenAIAPIKey,
		OpenaiBaseURL:    cfg.OpenAIBaseURL,
		OpenaiModel:      cfg.OpenAIModel,
		YandexOAuthToken: cfg.YandexOAuthToken,
		YandexFolderID:   cfg.YandexFolderID,
	}
}

func (f *Factory) CreateClient(provider config.LLMProvider) (Client, error) {
	switch config.LLMProvider(strings.ToLower(string(provider))) {
	case config.ProviderGemini:
		if f.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini: %w (set GOOGLE_API_KEY or GEMINI_API_KEY)", ErrNotConfigured)
		}
		return NewOpenAI(f.GeminiAPIKey, f.GeminiBaseURL, f.GeminiModel, nil), nil
	case config.ProviderOpenAI:
		if f.OpenaiAPIKey == "" {
			return nil, fmt.Errorf("openai: %w (set OPENAI_API_KEY)", ErrNotConfigured)
		}
		return NewOpenAI(f.OpenaiAPIKey, f.OpenaiBaseURL, f.OpenaiModel, nil), nil
	case config.ProviderYandex:
		if f.YandexOAuthToken == "" || f.YandexFolderID == "" {
			return nil, fmt.Errorf("yandex: %w (set YANDEX_OAUTH_TOKEN and YANDEX_FOLDER_ID)", ErrNotConfigured)
		}
		return NewYandex(f.YandexOAuthToken, f.YandexFolderID)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
