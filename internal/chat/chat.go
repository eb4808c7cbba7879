// Package chat implements the session lifecycle hooks and the command
// dispatcher that sit between the UI host and the model gateway.
package chat

import (
	"context"

	"bedrock-chatter/internal/llm"
	"bedrock-chatter/internal/session"
)

// User-facing texts.
const (
	MsgAskSystemPrompt   = "Please enter the system prompt:"
	MsgEmptySystemPrompt = "System prompt cannot be empty. Please enter the system prompt:"
	MsgSystemPromptSet   = "System prompt set to: "
	MsgEmptyInput        = "Your input is empty. Please enter a valid message."
	MsgHistoryHeader     = "Conversation history:\n"
	MsgResetDone         = "State reset successfully!"
	MsgChatFailed        = "An error occurred while processing your message. Please try again."
	MsgHistoryFailed     = "An error occurred while retrieving the conversation history."
	MsgResetFailed       = "An error occurred while resetting the state."
)

// Reply is what the UI host offers for answering within one session.
type Reply interface {
	// Send delivers a complete message.
	Send(ctx context.Context, text string) error
	// Stream starts an incremental message.
	Stream(ctx context.Context) (StreamWriter, error)
}

// StreamWriter appends tokens to an in-progress message.
type StreamWriter interface {
	Token(ctx context.Context, token string) error
	// Finish finalizes the message and returns its full text.
	Finish(ctx context.Context) (string, error)
}

// Handler receives the lifecycle events of a UI session.
type Handler interface {
	OnChatStart(ctx context.Context, sess *session.Session, reply Reply)
	OnMessage(ctx context.Context, sess *session.Session, reply Reply, text string)
}

// GatewayFactory builds the model pipeline for a system instruction.
type GatewayFactory interface {
	NewGateway(ctx context.Context, systemPrompt string) (*llm.Gateway, error)
}
