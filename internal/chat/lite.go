package chat

import (
	"context"
	"time"

	"bedrock-chatter/internal/logger"
	"bedrock-chatter/internal/session"
)

// Lite forwards every message as-is to a gateway with a fixed system
// prompt. It keeps no history and knows no commands.
type Lite struct {
	factory      GatewayFactory
	greeting     string
	systemPrompt string
	timeout      time.Duration
}

func NewLite(factory GatewayFactory, greeting, systemPrompt string, timeout time.Duration) *Lite {
	return &Lite{factory: factory, greeting: greeting, systemPrompt: systemPrompt, timeout: timeout}
}

func (l *Lite) OnChatStart(ctx context.Context, sess *session.Session, reply Reply) {
	if l.greeting != "" {
		if err := reply.Send(ctx, l.greeting); err != nil {
			logger.Error("failed to send greeting", "error", err)
		}
	}
	if _, err := buildGateway(ctx, l.factory, sess, l.systemPrompt); err != nil {
		logger.Error("failed to build gateway", "error", err)
	}
}

func (l *Lite) OnMessage(ctx context.Context, sess *session.Session, reply Reply, text string) {
	gw, err := cachedGateway(ctx, l.factory, sess, l.systemPrompt)
	if err == nil {
		_, err = streamAnswer(ctx, gw, reply, text, l.timeout)
	}
	if err != nil {
		logger.Error("error handling user message", "error", err)
		if serr := reply.Send(ctx, MsgChatFailed); serr != nil {
			logger.Error("failed to send message", "error", serr)
		}
	}
}
