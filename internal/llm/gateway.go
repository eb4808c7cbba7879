package llm

import (
	"context"
	"fmt"
)

// Gateway is the request pipeline: prompt template, streaming model, and a
// plain-text output.
type Gateway struct {
	prompt Prompt
	model  Model
}

func NewGateway(prompt Prompt, model Model) *Gateway {
	return &Gateway{prompt: prompt, model: model}
}

func (g *Gateway) SystemPrompt() string { return g.prompt.System }

func (g *Gateway) ModelName() string { return g.model.Name() }

// Stream renders the template with vars and starts the model stream.
func (g *Gateway) Stream(ctx context.Context, vars map[string]string) (<-chan Chunk, error) {
	msgs, err := g.prompt.Render(vars)
	if err != nil {
		return nil, err
	}
	ch, err := g.model.Stream(ctx, msgs)
	if err != nil {
		return nil, fmt.Errorf("%s stream: %w", g.model.Name(), err)
	}
	return ch, nil
}

// Invoke runs the pipeline to completion and returns the whole text.
func (g *Gateway) Invoke(ctx context.Context, vars map[string]string) (string, error) {
	ch, err := g.Stream(ctx, vars)
	if err != nil {
		return "", err
	}
	return Collect(ch)
}
