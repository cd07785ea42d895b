package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"aiden/internal/app"
	"aiden/internal/auth"
	"aiden/internal/config"
	"aiden/internal/logging"
	"aiden/internal/shell"
	"aiden/internal/telegram"
)

func main() {
	os.Exit(run())
}

func run() int {
	envFile := pflag.StringP("env", "e", ".env", "path to the .env file")
	logLevel := pflag.StringP("log", "l", "", "log level (overrides LOG_LEVEL)")
	frontend := pflag.StringP("frontend", "f", "console", "frontend: console | telegram")
	textOnly := pflag.Bool("text-only", false, "disable voice input and output")
	user := pflag.String("user", "", "user name (overrides AIDEN_USER_NAME)")
	pflag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("⚠️ .env file not loaded: %v", err)
	}

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}
	level := cfg.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	if err := logging.Setup(level, cfg.LogFilePath); err != nil {
		log.Printf("⚠️ file logging disabled: %v", err)
	}
	defer logging.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, app.Options{TextOnly: *textOnly || *frontend == "telegram", UserName: *user})
	if err != nil {
		log.Errorf("❌ startup failed: %v", err)
		fmt.Fprintf(os.Stderr, "❌ startup failed: %v\n", err)
		return 1
	}
	defer a.Close()

	switch *frontend {
	case "telegram":
		return runTelegram(ctx, a)
	case "console":
		sh := shell.New(a.Kit.NewSession(a.Persona), shell.Options{
			In:            os.Stdin,
			Out:           os.Stdout,
			Listener:      a.Listener,
			Speaker:       a.Speaker,
			Voices:        a.Voices,
			ListenTimeout: cfg.ListenTimeout,
			PhraseLimit:   cfg.PhraseTimeLimit,
		})
		return sh.Run(ctx)
	default:
		fmt.Fprintf(os.Stderr, "unknown frontend %q\n", *frontend)
		return 1
	}
}

func runTelegram(ctx context.Context, a *app.App) int {
	cfg := a.Config
	if cfg.TelegramBotToken == "" {
		log.Error("❌ TELEGRAM_BOT_TOKEN is required for the telegram frontend")
		return 1
	}

	var repo auth.Repository
	if cfg.AllowlistFilePath != "" {
		r, err := auth.NewFileRepository(cfg.AllowlistFilePath)
		if err != nil {
			log.WithError(err).Warn("⚠️ allowlist file unavailable, using ALLOWED_USERS only")
		} else {
			repo = r
		}
	}

	bot, err := telegram.New(cfg.TelegramBotToken, auth.New(repo, cfg.AllowedUsers), a.Kit, a.Persona, cfg.AdminUserID)
	if err != nil {
		log.Errorf("❌ failed to create bot: %v", err)
		return 1
	}
	bot.Start(ctx)
	return 0
}
