package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bedrock-chatter/internal/config"
	"bedrock-chatter/internal/history"
	"bedrock-chatter/internal/logger"
	"bedrock-chatter/internal/session"
	"bedrock-chatter/internal/storage"
)

type Options struct {
	Greeting    string
	PromptScope config.PromptScope
	// DuplicateLastTurn appends the newest user line to the context a second time.
	DuplicateLastTurn bool
	ModelTimeout      time.Duration
}

// Dispatcher is the persistent chat handler: it asks for a system prompt,
// then routes every message to reset, history, or a chat turn.
type Dispatcher struct {
	store    *history.Store
	locks    history.Locker
	factory  GatewayFactory
	recorder storage.Recorder
	prompts  promptStore
	opts     Options
	now      func() time.Time
}

// NewDispatcher wires the handler. recorder may be nil.
func NewDispatcher(store *history.Store, locks history.Locker, factory GatewayFactory, recorder storage.Recorder, opts Options) *Dispatcher {
	return &Dispatcher{
		store:    store,
		locks:    locks,
		factory:  factory,
		recorder: recorder,
		prompts:  newPromptStore(opts.PromptScope),
		opts:     opts,
		now:      time.Now,
	}
}

func (d *Dispatcher) OnChatStart(ctx context.Context, sess *session.Session, reply Reply) {
	if d.opts.Greeting != "" {
		d.send(ctx, reply, d.opts.Greeting)
	}
	d.send(ctx, reply, MsgAskSystemPrompt)
}

func (d *Dispatcher) OnMessage(ctx context.Context, sess *session.Session, reply Reply, text string) {
	userID := sess.UserID()

	if d.prompts.Get(sess) == "" {
		d.setSystemPrompt(ctx, sess, reply, userID, text)
		return
	}

	input := strings.TrimSpace(text)
	if input == "" {
		d.send(ctx, reply, MsgEmptyInput)
		return
	}

	lower := strings.ToLower(input)
	switch {
	case strings.HasPrefix(lower, "reset"):
		d.reset(ctx, reply, userID, input)
	case strings.HasPrefix(lower, "history"):
		d.showHistory(ctx, reply, userID, input)
	default:
		d.chatTurn(ctx, sess, reply, userID, input)
	}
}

func (d *Dispatcher) setSystemPrompt(ctx context.Context, sess *session.Session, reply Reply, userID, text string) {
	prompt := strings.TrimSpace(text)
	if prompt == "" {
		d.send(ctx, reply, MsgEmptySystemPrompt)
		return
	}
	d.prompts.Set(sess, prompt)
	d.send(ctx, reply, MsgSystemPromptSet+prompt)

	_, err := buildGateway(ctx, d.factory, sess, prompt)
	if err != nil {
		logger.Error("failed to build gateway", "user_id", userID, "error", err)
		d.send(ctx, reply, MsgChatFailed)
	}
	d.record(storage.Event{UserID: userID, Kind: storage.KindSystemPrompt, UserMessage: prompt, Failed: err != nil})
}

// chatTurn appends the user turn, streams the model answer, appends the
// assistant turn, and snapshots the store. A failure leaves the user turn in place.
func (d *Dispatcher) chatTurn(ctx context.Context, sess *session.Session, reply Reply, userID, input string) {
	answer, err := d.runTurn(ctx, sess, reply, userID, input)
	if err == nil {
		if serr := d.store.Save(); serr != nil {
			err = fmt.Errorf("save snapshot: %w", serr)
		}
	}
	d.record(storage.Event{UserID: userID, Kind: storage.KindChat, UserMessage: input, AssistantResponse: answer, Failed: err != nil})
	if err != nil {
		logger.Error("error handling user message", "user_id", userID, "error", err)
		d.send(ctx, reply, MsgChatFailed)
	}
}

func (d *Dispatcher) runTurn(ctx context.Context, sess *session.Session, reply Reply, userID, input string) (string, error) {
	unlock := d.locks.Lock(userID)
	defer unlock()

	d.store.Append(userID, history.Turn{Role: history.RoleUser, Content: input})

	question := history.FormatTurns(d.store.Get(userID))
	if d.opts.DuplicateLastTurn {
		question += "\n" + string(history.RoleUser) + ": " + input
	}

	gw, err := cachedGateway(ctx, d.factory, sess, d.prompts.Get(sess))
	if err != nil {
		return "", err
	}

	answer, err := streamAnswer(ctx, gw, reply, question, d.opts.ModelTimeout)
	if err != nil {
		return "", err
	}

	d.store.Append(userID, history.Turn{Role: history.RoleAssistant, Content: answer})
	return answer, nil
}

func (d *Dispatcher) showHistory(ctx context.Context, reply Reply, userID, input string) {
	unlock := d.locks.Lock(userID)
	defer unlock()

	err := reply.Send(ctx, MsgHistoryHeader+history.FormatTurns(d.store.Get(userID)))
	d.record(storage.Event{UserID: userID, Kind: storage.KindHistory, UserMessage: input, Failed: err != nil})
	if err != nil {
		logger.Error("error retrieving conversation history", "user_id", userID, "error", err)
		d.send(ctx, reply, MsgHistoryFailed)
	}
}

// reset drops the user's history. Nothing is sent when there was none.
func (d *Dispatcher) reset(ctx context.Context, reply Reply, userID, input string) {
	unlock := d.locks.Lock(userID)
	defer unlock()

	var err error
	if d.store.Reset(userID) {
		err = reply.Send(ctx, MsgResetDone)
	}
	d.record(storage.Event{UserID: userID, Kind: storage.KindReset, UserMessage: input, Failed: err != nil})
	if err != nil {
		logger.Error("error resetting state", "user_id", userID, "error", err)
		d.send(ctx, reply, MsgResetFailed)
	}
}

func (d *Dispatcher) send(ctx context.Context, reply Reply, text string) {
	if err := reply.Send(ctx, text); err != nil {
		logger.Error("failed to send message", "error", err)
	}
}

func (d *Dispatcher) record(ev storage.Event) {
	if d.recorder == nil {
		return
	}
	ev.Timestamp = d.now().UTC()
	if err := d.recorder.AppendInteraction(ev); err != nil {
		logger.Warn("failed to record interaction", "error", err)
	}
}
