package llm

import (
	"fmt"
	"regexp"
)

// QuestionVar is the template variable that carries the user's turn.
const QuestionVar = "question"

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Prompt is a two-part chat template: a fixed system instruction and a
// human turn with {name} placeholders.
type Prompt struct {
	System string
	Human  string
}

func NewPrompt(system string) Prompt {
	return Prompt{System: system, Human: "{" + QuestionVar + "}"}
}

// Render fills the human template and returns the messages to send.
func (p Prompt) Render(vars map[string]string) ([]Message, error) {
	var missing string
	human := placeholderRe.ReplaceAllStringFunc(p.Human, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := vars[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return m
		}
		return v
	})
	if missing != "" {
		return nil, fmt.Errorf("prompt variable %q not provided", missing)
	}

	msgs := make([]Message, 0, 2)
	if p.System != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: p.System})
	}
	msgs = append(msgs, Message{Role: RoleUser, Content: human})
	return msgs, nil
}
