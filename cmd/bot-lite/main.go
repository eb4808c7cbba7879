package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"bedrock-chatter/internal/chat"
	"bedrock-chatter/internal/config"
	"bedrock-chatter/internal/llm"
	"bedrock-chatter/internal/logger"
	"bedrock-chatter/internal/telegram"
)

// bot-lite forwards every message to the model with a fixed system prompt
// and keeps no history.
func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Warn(".env file not found", "error", err)
	}

	cfg, err := config.New()
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogOutputPath); err != nil {
		logger.Fatal("failed to configure logger", "error", err)
	}

	handler := chat.NewLite(llm.NewFactory(cfg), cfg.Greeting, cfg.LiteSystemPrompt, cfg.ModelTimeout)
	bot, err := telegram.New(cfg.TelegramBotToken, handler, cfg.UpdateWorkers, cfg.StreamEditInterval)
	if err != nil {
		logger.Fatal("failed to create bot", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("lite bot started", "provider", cfg.LLMProvider)
	bot.Start(ctx)
}
