package sql

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/krew-solutions/quantum-go/quantum/session"
	"github.com/krew-solutions/quantum-go/quantum/signals"

	// SQLite driver
	_ "modernc.org/sqlite"
)

// OpenSQLite opens a SQLite database through the pure Go modernc driver.
// An in-memory dsn (":memory:") is pinned to one connection so that every
// session sees the same database.
func OpenSQLite(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite database")
	}
	if dsn == ":memory:" || dsn == "" {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ping sqlite database")
	}
	return db, nil
}

type SessionPool struct {
	db               *sql.DB
	onSessionStarted signals.Signal[session.SessionScopeStartedEvent]
	onSessionEnded   signals.Signal[session.SessionScopeEndedEvent]
}

func NewSessionPool(db *sql.DB) *SessionPool {
	return &SessionPool{
		db:               db,
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

	sess := NewSession(ctx, p.db)

	p.onSessionStarted.Notify(session.SessionScopeStartedEvent{Session: sess})
	err := callback(sess)
	p.onSessionEnded.Notify(session.SessionScopeEndedEvent{Session: sess})

	return err
}

func (p *SessionPool) Close() error {
	return p.db.Close()
}
