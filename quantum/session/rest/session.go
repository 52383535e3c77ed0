package rest

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/krew-solutions/quantum-go/quantum/session"
	"github.com/krew-solutions/quantum-go/quantum/signals"
)

var hostname string

func init() {
	hostname, _ = os.Hostname()
}

// ExtractHttpClient returns the observable client of a REST session, or
// http.DefaultClient when s is not one.
func ExtractHttpClient(s session.Session) *http.Client {
	if rs, ok := s.(session.RestSession); ok {
		return rs.HttpClient()
	}
	return http.DefaultClient
}

type observableTransport struct {
	base    http.RoundTripper
	session *Session
}

func (t *observableTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	label := fmt.Sprintf(
		"quantum.%s.%s.%s.%s",
		hostname, req.Method, req.URL.Host, req.URL.Path,
	)
	requestView := &session.RequestViewModel{
		TimeStart: time.Now(),
		Label:     label,
	}

	t.session.onRequestStarted.Notify(session.RequestStartedEvent{
		Session:     t.session,
		Sender:      t.session,
		RequestView: requestView,
	})

	resp, err := t.base.RoundTrip(req)

	responseTime := time.Since(requestView.TimeStart)
	requestView.ResponseTime = &responseTime
	if resp != nil {
		status := resp.StatusCode
		requestView.Status = &status
	}

	t.session.onRequestEnded.Notify(session.RequestEndedEvent{
		Session:     t.session,
		Sender:      t.session,
		RequestView: requestView,
		Err:         err,
	})

	return resp, err
}

type Session struct {
	ctx              context.Context
	httpClient       *http.Client
	transport        http.RoundTripper
	parent           session.Session
	onRequestStarted signals.Signal[session.RequestStartedEvent]
	onRequestEnded   signals.Signal[session.RequestEndedEvent]
}

func NewSession(ctx context.Context, transport http.RoundTripper, timeout time.Duration) *Session {
	return newSession(ctx, transport, timeout, nil,
		signals.NewSignal[session.RequestStartedEvent](),
		signals.NewSignal[session.RequestEndedEvent](),
	)
}

func newSession(
	ctx context.Context,
	transport http.RoundTripper,
	timeout time.Duration,
	parent session.Session,
	onRequestStarted signals.Signal[session.RequestStartedEvent],
	onRequestEnded signals.Signal[session.RequestEndedEvent],
) *Session {
	s := &Session{
		ctx:              ctx,
		transport:        transport,
		parent:           parent,
		onRequestStarted: onRequestStarted,
		onRequestEnded:   onRequestEnded,
	}
	s.httpClient = &http.Client{
		Transport: &observableTransport{base: transport, session: s},
		Timeout:   timeout,
	}
	return s
}

func (s *Session) Context() context.Context {
	return s.ctx
}

func (s *Session) HttpClient() *http.Client {
	return s.httpClient
}

func (s *Session) OnRequestStarted() signals.Signal[session.RequestStartedEvent] {
	return s.onRequestStarted
}

func (s *Session) OnRequestEnded() signals.Signal[session.RequestEndedEvent] {
	return s.onRequestEnded
}

// Atomic runs callback in a child session sharing the request signals. HTTP
// has no transactions, so the scope only groups requests.
func (s *Session) Atomic(callback session.SessionCallback) error {
	child := newSession(s.ctx, s.transport, s.httpClient.Timeout, s, s.onRequestStarted, s.onRequestEnded)
	return callback(child)
}
