package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bedrock-chatter/internal/analytics"
	"bedrock-chatter/internal/chat"
	"bedrock-chatter/internal/config"
	"bedrock-chatter/internal/history"
	"bedrock-chatter/internal/llm"
	"bedrock-chatter/internal/logger"
	"bedrock-chatter/internal/scheduler"
	"bedrock-chatter/internal/storage"
	"bedrock-chatter/internal/telegram"
)

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

	store := history.NewStore(history.NewSnapshot(cfg.SnapshotPath, cfg.SnapshotRecover))
	if err := store.Init(); err != nil {
		logger.Fatal("failed to load conversation snapshot", "path", cfg.SnapshotPath, "error", err)
	}
	logger.Info("conversation store ready", "path", cfg.SnapshotPath, "users", len(store.Users()))

	var rec storage.Recorder
	if cfg.InteractionLogPath != "" {
		fr, err := storage.NewFileRecorder(cfg.InteractionLogPath)
		if err != nil {
			logger.Warn("failed to init interaction log", "error", err)
		} else {
			rec = fr
		}
	}

	dispatcher := chat.NewDispatcher(
		store,
		history.NewLocker(cfg.LockPolicy),
		llm.NewFactory(cfg),
		rec,
		chat.Options{
			Greeting:          cfg.Greeting,
			PromptScope:       cfg.SystemPromptScope,
			DuplicateLastTurn: cfg.ContextDuplicateLastTurn,
			ModelTimeout:      cfg.ModelTimeout,
		},
	)

	bot, err := telegram.New(cfg.TelegramBotToken, dispatcher, cfg.UpdateWorkers, cfg.StreamEditInterval)
	if err != nil {
		logger.Fatal("failed to create bot", "error", err)
	}

	sched := scheduler.New(cfg.ReportCron)
	if rec != nil && cfg.AdminChatID != 0 {
		sched.SetReportFunction(func(ctx context.Context) error {
			return sendDailyReport(bot, rec, cfg.AdminChatID)
		})
	}
	if err := sched.Start(); err != nil {
		logger.Error("failed to start report scheduler", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("bot started", "provider", cfg.LLMProvider, "lock_policy", cfg.LockPolicy, "prompt_scope", cfg.SystemPromptScope)
	bot.Start(ctx)

	logger.Info("shutting down")
	sched.Stop()
	if err := store.Shutdown(); err != nil {
		logger.Error("failed to flush conversation snapshot", "error", err)
		os.Exit(1)
	}
}

func sendDailyReport(bot *telegram.Bot, rec storage.Recorder, chatID int64) error {
	events, err := rec.LoadInteractions()
	if err != nil {
		return fmt.Errorf("load interactions: %w", err)
	}
	stats := analytics.AnalyzeDailyLogs(events, time.Now().UTC())
	return bot.SendTo(chatID, stats.Summary())
}
