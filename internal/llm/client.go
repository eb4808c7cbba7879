package llm

import (
	"context"
	"strings"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

// Chunk is one piece of a streamed completion. A chunk with Err set is the
// last one delivered before the channel closes.
type Chunk struct {
	Content string
	Err     error
}

// Model streams a chat completion. The returned channel is closed when the
// backend signals completion; it cannot be restarted.
type Model interface {
	Stream(ctx context.Context, messages []Message) (<-chan Chunk, error)
	Name() string
}

// Collect drains a stream into plain text. It returns whatever was received
// before the first error together with that error.
func Collect(chunks <-chan Chunk) (string, error) {
	var sb strings.Builder
	for c := range chunks {
		if c.Err != nil {
			return sb.String(), c.Err
		}
		sb.WriteString(c.Content)
	}
	return sb.String(), nil
}

// send delivers c unless ctx is done. It reports whether the consumer is still listening.
func send(ctx context.Context, out chan<- Chunk, c Chunk) bool {
	select {
	case out <- c:
		return true
	case <-ctx.Done():
		return false
	}
}
