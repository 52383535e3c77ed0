package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/quantum-go/quantum/session"
)

func TestSession_RequestEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	pool := NewSessionPool(nil, time.Second)
	var started, ended int
	var view *session.RequestViewModel

	err := pool.Session(context.Background(), func(s session.Session) error {
		rs := s.(*Session)
		rs.OnRequestStarted().Attach(func(e session.RequestStartedEvent) { started++ }, "test")
		rs.OnRequestEnded().Attach(func(e session.RequestEndedEvent) {
			ended++
			view = e.RequestView
		}, "test")

		resp, err := ExtractHttpClient(s).Get(srv.URL + "/ping")
		if err != nil {
			return err
		}
		return resp.Body.Close()
	})
	require.NoError(t, err)

	assert.Equal(t, 1, started)
	assert.Equal(t, 1, ended)
	require.NotNil(t, view)
	require.NotNil(t, view.Status)
	assert.Equal(t, http.StatusTeapot, *view.Status)
	assert.NotNil(t, view.ResponseTime)
	assert.Contains(t, view.Label, "/ping")
	assert.Contains(t, view.String(), ".418")
}

func TestSession_AtomicSharesRequestSignals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	s := NewSession(context.Background(), http.DefaultTransport, 0)
	var ended int
	s.OnRequestEnded().Attach(func(e session.RequestEndedEvent) { ended++ }, "test")

	err := s.Atomic(func(child session.Session) error {
		resp, err := ExtractHttpClient(child).Get(srv.URL)
		if err != nil {
			return err
		}
		return resp.Body.Close()
	})
	require.NoError(t, err)
	assert.Equal(t, 1, ended)
}

func TestSessionPool_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := NewSessionPool(nil, 0).Session(ctx, func(s session.Session) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

type plainSession struct{}

func (plainSession) Context() context.Context                { return context.Background() }
func (plainSession) Atomic(cb session.SessionCallback) error { return cb(plainSession{}) }

func TestExtractHttpClient_FallsBackToDefault(t *testing.T) {
	assert.Same(t, http.DefaultClient, ExtractHttpClient(plainSession{}))
}
