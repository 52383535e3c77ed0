package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/krew-solutions/quantum-go/quantum/session"
	"github.com/krew-solutions/quantum-go/quantum/signals"
)

type SessionPool struct {
	pool             *pgxpool.Pool
	onSessionStarted signals.Signal[session.SessionScopeStartedEvent]
	onSessionEnded   signals.Signal[session.SessionScopeEndedEvent]
}

// Connect creates a pgx pool for dsn and wraps it into a SessionPool.
func Connect(ctx context.Context, dsn string) (*SessionPool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create postgres pool")
	}
	return NewSessionPool(pool), nil
}

func NewSessionPool(pool *pgxpool.Pool) *SessionPool {
	return &SessionPool{
		pool:             pool,
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

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	sess := NewSession(ctx, conn)

	p.onSessionStarted.Notify(session.SessionScopeStartedEvent{Session: sess})
	err = callback(sess)
	p.onSessionEnded.Notify(session.SessionScopeEndedEvent{Session: sess})

	return err
}

func (p *SessionPool) Close() error {
	p.pool.Close()
	return nil
}
