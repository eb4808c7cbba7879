package llm

import (
	"context"
	"fmt"

	"github.com/Morwran/yagpt"
)

// YandexModel has no streaming endpoint; the whole completion arrives as a
// single chunk.
type YandexModel struct {
	ya       yagpt.YaGPTFace
	iamToken string
}

func NewYandex(oauthToken, folderID string) (*YandexModel, error) {
	iam, err := yagpt.NewYaIam(oauthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init yandex iam: %w", err)
	}
	resp, err := iam.Create()
	if err != nil {
		return nil, fmt.Errorf("failed to create iam token: %w", err)
	}

	ya, err := yagpt.NewYagpt(folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to init yagpt: %w", err)
	}

	return &YandexModel{
		ya:       ya,
		iamToken: resp.IamToken,
	}, nil
}

func (c *YandexModel) Name() string { return yagpt.YaModelLite }

func (c *YandexModel) Stream(ctx context.Context, messages []Message) (<-chan Chunk, error) {
	yaMsgs := make([]yagpt.Message, 0, len(messages))
	for _, m := range messages {
		yaMsgs = append(yaMsgs, yagpt.Message{Role: m.Role, Content: m.Content})
	}

	out := make(chan Chunk, 1)
	go func() {
		defer close(out)
		resp, err := c.ya.CompletionWithCtx(ctx, c.iamToken, yaMsgs)
		if err != nil {
			out <- Chunk{Err: fmt.Errorf("yagpt completion failed: %w", err)}
			return
		}
		if resp == nil || len(resp.Alternatives) == 0 {
			out <- Chunk{Err: fmt.Errorf("yagpt returned empty response")}
			return
		}
		out <- Chunk{Content: resp.Alternatives[0].Message.Content}
	}()
	return out, nil
}
