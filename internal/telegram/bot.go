package telegram

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sourcegraph/conc/pool"

	"bedrock-chatter/internal/chat"
	"bedrock-chatter/internal/logger"
	"bedrock-chatter/internal/session"
)

const startCmd = "start"

// Bot hosts a chat.Handler on Telegram. Every chat is one UI session;
// /start opens a fresh one.
type Bot struct {
	api          *tgbotapi.BotAPI
	s            sender
	handler      chat.Handler
	sessions     *session.Registry
	workers      int
	editInterval time.Duration
}

func New(botToken string, handler chat.Handler, workers int, editInterval time.Duration) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}
	logger.Info("authorized on telegram", "account", api.Self.UserName)
	return &Bot{
		api:          api,
		s:            botAPISender{api: api},
		handler:      handler,
		sessions:     session.NewRegistry(),
		workers:      workers,
		editInterval: editInterval,
	}, nil
}

// Start polls for updates until ctx is done, then waits for in-flight
// handlers before returning.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	p := pool.New().WithMaxGoroutines(b.workers)
	defer p.Wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			msg := update.Message
			p.Go(func() { b.handleIncomingMessage(ctx, msg) })
		}
	}
}

// SendTo delivers a plain message outside of any session.
func (b *Bot) SendTo(chatID int64, text string) error {
	return reply{b: b, chatID: chatID}.Send(context.Background(), text)
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil || msg.Text == "" {
		return
	}
	chatID := msg.Chat.ID
	r := reply{b: b, chatID: chatID}

	if msg.IsCommand() && msg.Command() == startCmd {
		logger.Info("starting chat session", "chat_id", chatID)
		b.handler.OnChatStart(ctx, b.sessions.Start(chatID), r)
		return
	}

	sess, ok := b.sessions.Get(chatID)
	if !ok {
		// Sessions live in memory only; after a restart the first message reopens one.
		logger.Info("no session for chat, starting one", "chat_id", chatID)
		b.handler.OnChatStart(ctx, b.sessions.Start(chatID), r)
		return
	}

	text := msg.Text
	if msg.IsCommand() {
		text = strings.TrimSpace(msg.Command() + " " + msg.CommandArguments())
	}
	logger.Debug("incoming message", "chat_id", chatID, "text", text)
	b.handler.OnMessage(ctx, sess, r, text)
}
