package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderGemini LLMProvider = "gemini"
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type StoreBackend string

const (
	BackendFile      StoreBackend = "file"
	BackendFirestore StoreBackend = "firestore"
	BackendPostgres  StoreBackend = "postgres"
	BackendSQLite    StoreBackend = "sqlite"
)

type Config struct {
	// Persona
	UserName         string `env:"AIDEN_USER_NAME" envDefault:"User"`
	Language         string `env:"AIDEN_LANGUAGE" envDefault:"pt-BR"`
	PersonaFilePath  string `env:"AIDEN_PERSONA_FILE" envDefault:"data/persona.yaml"`
	SystemPromptPath string `env:"SYSTEM_PROMPT_PATH" envDefault:"prompts/system_prompt.txt"`

	// LLM settings
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"gemini"`
	GoogleAPIKey     string      `env:"GOOGLE_API_KEY"`
	GeminiAPIKey     string      `env:"GEMINI_API_KEY"`
	GeminiBaseURL    string      `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta/openai/"`
	GeminiModel      string      `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`
	ChatHistoryLimit int         `env:"CHAT_HISTORY_LIMIT" envDefault:"10"`

	// Document store
	StoreBackend          StoreBackend `env:"DOCSTORE_BACKEND" envDefault:"file"`
	FirestoreProjectID    string       `env:"FIRESTORE_PROJECT_ID"`
	GoogleCredentialsFile string       `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	DatabaseURL           string       `env:"DATABASE_URL"`
	SQLitePath            string       `env:"SQLITE_PATH" envDefault:"data/aiden.db"`
	LocalStoreDir         string       `env:"LOCAL_STORE_DIR" envDefault:"data/store"`
	RelatedScanWindow     int          `env:"RELATED_SCAN_WINDOW" envDefault:"50"`
	RetentionDays         int          `env:"RECORD_RETENTION_DAYS" envDefault:"30"`
	RetentionSchedule     string       `env:"RETENTION_SCHEDULE" envDefault:"0 3 * * *"`
	ReportSchedule        string       `env:"REPORT_SCHEDULE" envDefault:"5 0 * * *"`

	// Search
	SearchEngineID   string        `env:"GOOGLE_CSE_ID"`
	SearchHTMLURL    string        `env:"SEARCH_HTML_URL" envDefault:"https://html.duckduckgo.com/html/"`
	SearchInstantURL string        `env:"SEARCH_INSTANT_URL" envDefault:"https://api.duckduckgo.com/"`
	SearchResults    int           `env:"SEARCH_RESULTS" envDefault:"3"`
	SearchTimeout    time.Duration `env:"SEARCH_TIMEOUT" envDefault:"15s"`

	// Voice
	VoiceInput          bool          `env:"VOICE_INPUT" envDefault:"true"`
	VoiceOutput         bool          `env:"VOICE_OUTPUT" envDefault:"true"`
	EspeakPath          string        `env:"ESPEAK_PATH" envDefault:"espeak-ng"`
	STTModel            string        `env:"STT_MODEL" envDefault:"whisper-1"`
	ListenTimeout       time.Duration `env:"LISTEN_TIMEOUT" envDefault:"10s"`
	PhraseTimeLimit     time.Duration `env:"PHRASE_TIME_LIMIT" envDefault:"15s"`
	CalibrationDuration time.Duration `env:"CALIBRATION_DURATION" envDefault:"1s"`
	VoiceProfileDir     string        `env:"VOICE_PROFILE_DIR" envDefault:"data/voice"`
	OnlineTTSURL        string        `env:"ONLINE_TTS_URL" envDefault:"https://translate.google.com/translate_tts"`

	// Session & logging
	SessionLogDir string `env:"SESSION_LOG_DIR" envDefault:"logs"`
	LogFilePath   string `env:"LOG_FILE_PATH" envDefault:"logs/aiden.log"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	// Telegram frontend
	TelegramBotToken  string  `env:"TELEGRAM_BOT_TOKEN"`
	AllowedUsers      []int64 `env:"ALLOWED_USERS" envSeparator:":"`
	AllowlistFilePath string  `env:"ALLOWLIST_FILE" envDefault:"data/allowlist.json"`
	AdminUserID       int64   `env:"ADMIN_USER_ID"`
}

func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.LLMProvider = LLMProvider(strings.ToLower(string(cfg.LLMProvider)))
	cfg.StoreBackend = StoreBackend(strings.ToLower(string(cfg.StoreBackend)))
	return cfg, nil
}

// GeminiKey prefers GOOGLE_API_KEY and falls back to GEMINI_API_KEY.
func (c *Config) GeminiKey() string {
	if c.GoogleAPIKey != "" {
		return c.GoogleAPIKey
	}
	return c.GeminiAPIKey
}

// RetentionCutoff is the oldest timestamp kept by the retention job.
func (c *Config) RetentionCutoff(now time.Time) time.Time {
	if c.RetentionDays <= 0 {
		return time.Time{}
	}
	return now.AddDate(0, 0, -c.RetentionDays)
}
