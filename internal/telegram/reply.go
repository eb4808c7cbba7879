package telegram

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"bedrock-chatter/internal/chat"
	"bedrock-chatter/internal/logger"
)

// maxMessageLen is Telegram's limit for one text message, in characters.
const maxMessageLen = 4096

type reply struct {
	b      *Bot
	chatID int64
}

func (r reply) Send(_ context.Context, text string) error {
	for _, part := range splitMessage(text, maxMessageLen) {
		if _, err := r.b.s.Send(tgbotapi.NewMessage(r.chatID, part)); err != nil {
			return err
		}
	}
	return nil
}

func (r reply) Stream(context.Context) (chat.StreamWriter, error) {
	return &streamWriter{r: r, interval: r.b.editInterval}, nil
}

// streamWriter renders tokens into a message that is edited in place.
// Text past maxMessageLen continues in a new message. Progress edits are
// best effort; only the final delivery in Finish reports an error.
type streamWriter struct {
	r        reply
	interval time.Duration

	buf      strings.Builder
	base     int // rune offset where the open message starts
	msgID    int
	shown    string
	lastEdit time.Time
}

func (w *streamWriter) Token(_ context.Context, tok string) error {
	w.buf.WriteString(tok)
	if err := w.flush(false); err != nil {
		logger.Warn("failed to update streamed message", "chat_id", w.r.chatID, "error", err)
	}
	return nil
}

func (w *streamWriter) Finish(context.Context) (string, error) {
	err := w.flush(true)
	return w.buf.String(), err
}

func (w *streamWriter) flush(final bool) error {
	runes := []rune(w.buf.String())[w.base:]
	for len(runes) > maxMessageLen {
		if err := w.put(string(runes[:maxMessageLen]), true); err != nil {
			return err
		}
		w.base += maxMessageLen
		runes = runes[maxMessageLen:]
		w.msgID, w.shown = 0, ""
	}

	current := string(runes)
	if strings.TrimSpace(current) == "" {
		return nil
	}
	if !final && w.msgID != 0 && time.Since(w.lastEdit) < w.interval {
		return nil
	}
	return w.put(current, final)
}

// put shows text in the open message, sending it first when needed. When
// mustDeliver is set a failed edit falls back to a new message.
func (w *streamWriter) put(text string, mustDeliver bool) error {
	// Telegram trims trailing whitespace and rejects edits that change nothing.
	if strings.TrimSpace(text) == strings.TrimSpace(w.shown) {
		return nil
	}
	if w.msgID != 0 {
		_, err := w.r.b.s.Send(tgbotapi.NewEditMessageText(w.r.chatID, w.msgID, text))
		if err == nil {
			w.shown = text
			w.lastEdit = time.Now()
			return nil
		}
		if !mustDeliver {
			return err
		}
		logger.Warn("failed to edit streamed message, sending a new one", "chat_id", w.r.chatID, "error", err)
	}
	m, err := w.r.b.s.Send(tgbotapi.NewMessage(w.r.chatID, text))
	if err != nil {
		return err
	}
	w.msgID = m.MessageID
	w.shown = text
	w.lastEdit = time.Now()
	return nil
}

// splitMessage cuts text into parts of at most limit runes, preferring to
// break after a newline.
func splitMessage(text string, limit int) []string {
	if text == "" {
		return nil
	}
	var parts []string
	runes := []rune(text)
	for len(runes) > limit {
		cut := limit
		for i := limit - 1; i > limit/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		parts = append(parts, string(runes[:cut]))
		runes = runes[cut:]
	}
	return append(parts, string(runes))
}
