package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"aiden/internal/app"
	"aiden/internal/config"
	"aiden/internal/logging"
)

func main() {
	envFile := pflag.StringP("env", "e", ".env", "path to the .env file")
	logLevel := pflag.StringP("log", "l", "", "log level (overrides LOG_LEVEL)")
	user := pflag.String("user", "", "user name (overrides AIDEN_USER_NAME)")
	pflag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("⚠️ .env file not loaded: %v", err)
	}
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	level := cfg.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	// stdout carries the protocol; logs go to the file or stderr only
	if err := logging.Setup(level, cfg.LogFilePath); err != nil {
		log.Printf("⚠️ file logging disabled: %v", err)
	}
	defer logging.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, app.Options{TextOnly: true, UserName: *user, NoScheduler: true})
	if err != nil {
		log.Fatalf("❌ startup failed: %v", err)
	}
	defer a.Close()

	log.Printf("🚀 Starting AIDEN MCP Server")
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "aiden-mcp",
		Version: "1.0.0",
	}, nil)

	aiden := NewAidenMCPServer(a.Kit, a.Persona, cfg.RelatedScanWindow)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "aiden_command",
		Description: "Routes a command to the AIDEN assistant (diagnostics, files, time, processes, search, voice settings, conversation) and returns its reply",
	}, aiden.Command)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "aiden_related",
		Description: "Finds previously stored search records related to a query",
	}, aiden.Related)

	log.Printf("📋 Registered %d tools: aiden_command, aiden_related", 2)
	log.Printf("🔗 Starting server on stdin/stdout...")

	transport := mcp.NewStdioTransport()
	if err := server.Run(ctx, transport); err != nil && ctx.Err() == nil {
		log.Errorf("❌ Server failed: %v", err)
	}
}
