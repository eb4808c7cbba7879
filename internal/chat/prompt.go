package chat

import (
	"sync"

	"bedrock-chatter/internal/config"
	"bedrock-chatter/internal/session"
)

// promptStore holds the system prompt either per session or for the whole process.
type promptStore interface {
	Get(sess *session.Session) string
	Set(sess *session.Session, prompt string)
}

func newPromptStore(scope config.PromptScope) promptStore {
	if scope == config.PromptGlobal {
		return &globalPrompt{}
	}
	return sessionPrompt{}
}

type sessionPrompt struct{}

func (sessionPrompt) Get(sess *session.Session) string {
	return sess.String(session.KeySystemPrompt)
}

func (sessionPrompt) Set(sess *session.Session, prompt string) {
	sess.Set(session.KeySystemPrompt, prompt)
}

// globalPrompt is shared by every session; whoever sets it first defines
// the persona for all later sessions.
type globalPrompt struct {
	mu     sync.RWMutex
	prompt string
}

func (g *globalPrompt) Get(*session.Session) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.prompt
}

func (g *globalPrompt) Set(_ *session.Session, prompt string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompt = prompt
}
