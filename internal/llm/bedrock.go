package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/aws/aws-sdk-go-v2/config"
)

// BedrockModel talks to Anthropic models hosted on AWS Bedrock. Credentials
// come from a named profile of the shared AWS config.
type BedrockModel struct {
	client    anthropic.Client
	modelID   string
	maxTokens int64
}

func NewBedrock(ctx context.Context, profile, region, modelID string, maxTokens int64) (*BedrockModel, error) {
	var loadOpts []func(*config.LoadOptions) error
	if profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config for profile %q: %w", profile, err)
	}
	return &BedrockModel{
		client:    anthropic.NewClient(bedrock.WithConfig(awsCfg)),
		modelID:   modelID,
		maxTokens: maxTokens,
	}, nil
}

func (m *BedrockModel) Name() string { return m.modelID }

func (m *BedrockModel) Stream(ctx context.Context, messages []Message) (<-chan Chunk, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(m.modelID),
		MaxTokens: m.maxTokens,
	}
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			params.System = append(params.System, anthropic.TextBlockParam{Text: msg.Content})
		case RoleUser:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case RoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	if len(params.Messages) == 0 {
		return nil, fmt.Errorf("bedrock: no messages to send")
	}

	stream := m.client.Messages.NewStreaming(ctx, params)
	out := make(chan Chunk)
	go func() {
		defer close(out)
		defer stream.Close()
		for stream.Next() {
			ev, ok := stream.Current().AsAny().(anthropic.ContentBlockDeltaEvent)
			if !ok {
				continue
			}
			delta, ok := ev.Delta.AsAny().(anthropic.TextDelta)
			if !ok || delta.Text == "" {
				continue
			}
			if !send(ctx, out, Chunk{Content: delta.Text}) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			send(ctx, out, Chunk{Err: fmt.Errorf("bedrock stream: %w", err)})
		}
	}()
	return out, nil
}
