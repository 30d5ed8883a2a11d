package notification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu     sync.Mutex
	sent   []*Message
	failTo map[string]bool
	calls  int
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Send(_ context.Context, msg *Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.failTo[msg.To] {
		return errors.New("mailbox unavailable")
	}
	p.sent = append(p.sent, msg)
	return nil
}

func (p *fakeProvider) recipients() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.sent))
	for _, m := range p.sent {
		out = append(out, m.To)
	}
	return out
}

func testComposer() *Composer {
	return NewComposer(ComposerConfig{
		CompanyName:     "Northwind Uniforms",
		BaseURL:         "https://office.example.com/",
		SalesInbox:      "sales@example.com",
		AdminRecipients: []string{"ops@example.com"},
		ReplyTo:         "sales@example.com",
		Language:        "en",
	})
}

func mustEnvelope(t *testing.T, event string, payload any) Envelope {
	t.Helper()
	env, err := NewEnvelope(event, payload)
	require.NoError(t, err)
	return env
}
