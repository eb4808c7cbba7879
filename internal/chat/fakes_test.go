package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"bedrock-chatter/internal/llm"
	"bedrock-chatter/internal/storage"
)

type fakeReply struct {
	mu       sync.Mutex
	sent     []string
	streamed []string
	sendErr  error
}

func (r *fakeReply) Send(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sendErr != nil {
		return r.sendErr
	}
	r.sent = append(r.sent, text)
	return nil
}

func (r *fakeReply) Stream(context.Context) (StreamWriter, error) {
	return &fakeStream{r: r}, nil
}

func (r *fakeReply) Sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sent...)
}

func (r *fakeReply) Streamed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.streamed...)
}

func (r *fakeReply) Last() string {
	s := r.Sent()
	if len(s) == 0 {
		return ""
	}
	return s[len(s)-1]
}

type fakeStream struct {
	r      *fakeReply
	sb     strings.Builder
	tokens int
}

func (s *fakeStream) Token(_ context.Context, tok string) error {
	s.sb.WriteString(tok)
	s.tokens++
	return nil
}

func (s *fakeStream) Finish(context.Context) (string, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	s.r.streamed = append(s.r.streamed, s.sb.String())
	return s.sb.String(), nil
}

// scriptedModel answers every question with answer(question), split into
// two chunks, and remembers what it was asked. With block set it stalls
// after the first chunk until the context ends.
type scriptedModel struct {
	mu        sync.Mutex
	systems   []string
	questions []string
	answer    func(q string) string
	err       error
	midErr    error
	block     bool
}

func (m *scriptedModel) Name() string { return "scripted" }

func (m *scriptedModel) Stream(ctx context.Context, msgs []llm.Message) (<-chan llm.Chunk, error) {
	m.mu.Lock()
	system := ""
	if msgs[0].Role == llm.RoleSystem {
		system = msgs[0].Content
	}
	m.systems = append(m.systems, system)
	q := msgs[len(msgs)-1].Content
	m.questions = append(m.questions, q)
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	out := make(chan llm.Chunk, 3)
	ans := "ok"
	if m.answer != nil {
		ans = m.answer(q)
	}
	half := len(ans) / 2
	out <- llm.Chunk{Content: ans[:half]}
	if m.block {
		go func() {
			<-ctx.Done()
			close(out)
		}()
		return out, nil
	}
	if m.midErr != nil {
		out <- llm.Chunk{Err: m.midErr}
	} else {
		out <- llm.Chunk{Content: ans[half:]}
	}
	close(out)
	return out, nil
}

func (m *scriptedModel) Questions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.questions...)
}

func (m *scriptedModel) Systems() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.systems...)
}

type failingFactory struct {
	fails int
	next  GatewayFactory
}

func (f *failingFactory) NewGateway(ctx context.Context, system string) (*llm.Gateway, error) {
	if f.fails > 0 {
		f.fails--
		return nil, errors.New("no credentials")
	}
	return f.next.NewGateway(ctx, system)
}

type memRecorder struct {
	mu     sync.Mutex
	events []storage.Event
}

func (m *memRecorder) AppendInteraction(ev storage.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *memRecorder) LoadInteractions() ([]storage.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]storage.Event(nil), m.events...), nil
}
