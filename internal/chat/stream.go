package chat

import (
	"context"
	"fmt"
	"time"

	"bedrock-chatter/internal/llm"
	"bedrock-chatter/internal/session"
)

// cachedGateway returns the session's gateway, building it with systemPrompt when absent.
func cachedGateway(ctx context.Context, f GatewayFactory, sess *session.Session, systemPrompt string) (*llm.Gateway, error) {
	if v, ok := sess.Get(session.KeyRunnable); ok {
		if gw, ok := v.(*llm.Gateway); ok && gw != nil {
			return gw, nil
		}
	}
	return buildGateway(ctx, f, sess, systemPrompt)
}

func buildGateway(ctx context.Context, f GatewayFactory, sess *session.Session, systemPrompt string) (*llm.Gateway, error) {
	gw, err := f.NewGateway(ctx, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("build gateway: %w", err)
	}
	sess.Set(session.KeyRunnable, gw)
	return gw, nil
}

// streamAnswer runs gw with question and forwards every chunk to reply.
// A zero timeout means no deadline.
func streamAnswer(ctx context.Context, gw *llm.Gateway, reply Reply, question string, timeout time.Duration) (string, error) {
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	chunks, err := gw.Stream(ctx, map[string]string{llm.QuestionVar: question})
	if err != nil {
		return "", err
	}

	w, err := reply.Stream(ctx)
	if err != nil {
		return "", fmt.Errorf("open reply stream: %w", err)
	}
	for c := range chunks {
		if c.Err != nil {
			// flush what the user already saw
			_, _ = w.Finish(context.WithoutCancel(ctx))
			return "", c.Err
		}
		if err := w.Token(ctx, c.Content); err != nil {
			return "", fmt.Errorf("stream token: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		_, _ = w.Finish(context.WithoutCancel(ctx))
		return "", fmt.Errorf("model stream: %w", err)
	}
	text, err := w.Finish(ctx)
	if err != nil {
		return "", fmt.Errorf("finish reply: %w", err)
	}
	return text, nil
}
