package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/krew-solutions/quantum-go/quantum/session"
	"github.com/krew-solutions/quantum-go/quantum/signals"
)

type SessionPool struct {
	transport        http.RoundTripper
	timeout          time.Duration
	onSessionStarted signals.Signal[session.SessionScopeStartedEvent]
	onSessionEnded   signals.Signal[session.SessionScopeEndedEvent]
}

// NewSessionPool uses http.DefaultTransport when transport is nil. A zero
// timeout means no client timeout.
func NewSessionPool(transport http.RoundTripper, timeout time.Duration) *SessionPool {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &SessionPool{
		transport:        transport,
		timeout:          timeout,
		onSessionStarted: signals.NewSignal[session.SessionScopeStartedEvent](),
		onSessionEnded:   signals.NewSignal[session.SessionScopeEndedEvent](),
	}
}

func (p *SessionPool) OnSessionStarted() signals.Signal[session.SessionScopeStartedEvent] {
	return p.onSessionStarted
}

func (p *SessionPool) OnSessionEnded() signals.Signal[session.SessionScopeEndedEvent] {
	return p.onSessionEnded
}

func (p *SessionPool) Session(ctx context.Context, callback session.SessionPoolCallback) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sess := NewSession(ctx, p.transport, p.timeout)

	p.onSessionStarted.Notify(session.SessionScopeStartedEvent{Session: sess})
	err := callback(sess)
	p.onSessionEnded.Notify(session.SessionScopeEndedEvent{Session: sess})

	return err
}
