package storage

import "time"

// Kind tells which dispatcher path produced an event.
type Kind string

const (
	KindSystemPrompt Kind = "system_prompt"
	KindChat         Kind = "chat"
	KindHistory      Kind = "history"
	KindReset        Kind = "reset"
)

// Event is one handled message. Chat events carry both sides of the exchange;
// command events carry only the user message.
type Event struct {
	Timestamp         time.Time `json:"timestamp"`
	UserID            string    `json:"user_id"`
	Kind              Kind      `json:"kind"`
	UserMessage       string    `json:"user_message"`
	AssistantResponse string    `json:"assistant_response,omitempty"`
	Failed            bool      `json:"failed,omitempty"`
}

// Recorder abstracts persistence of interaction events.
// LoadInteractions returns events in the order they were appended.
// Implementations must be safe for concurrent use.
type Recorder interface {
	AppendInteraction(event Event) error
	LoadInteractions() ([]Event, error)
}
