package session

import (
	"context"
	"net/http"

	"github.com/krew-solutions/quantum-go/quantum/session/identitymap"
	"github.com/krew-solutions/quantum-go/quantum/signals"
)

type SessionCallback func(Session) error

// Session is the unit of work of one request. It is never shared between
// requests.
type Session interface {
	Context() context.Context
	Atomic(SessionCallback) error
}

type SessionPoolCallback func(Session) error

type SessionPool interface {
	Session(context.Context, SessionPoolCallback) error
}

// ObservablePool lets instrumentation attach to every session a pool opens.
type ObservablePool interface {
	SessionPool
	OnSessionStarted() signals.Signal[SessionScopeStartedEvent]
	OnSessionEnded() signals.Signal[SessionScopeEndedEvent]
}

// Db

type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}

type Rows interface {
	Close() error
	Err() error
	Next() bool
	Columns() ([]string, error)
	Scan(dest ...any) error
}

type Row interface {
	Err() error
	Scan(dest ...any) error
}

type DbExecutor interface {
	Exec(query string, args ...any) (Result, error)
}

type DbQuerier interface {
	Query(query string, args ...any) (Rows, error)
}

type DbSingleQuerier interface {
	QueryRow(query string, args ...any) Row
}

type DbConnection interface {
	DbExecutor
	DbQuerier
	DbSingleQuerier
}

type DbSession interface {
	Session
	Connection() DbConnection
}

// QueryObservable is implemented by db sessions that report every statement.
type QueryObservable interface {
	OnQueryStarted() signals.Signal[QueryStartedEvent]
	OnQueryEnded() signals.Signal[QueryEndedEvent]
}

// IdentityMapper is implemented by sessions that cache loaded rows.
type IdentityMapper interface {
	IdentityMap() *identitymap.IdentityMap
}

// Rest

type RestSession interface {
	Session
	HttpClient() *http.Client
}

type RequestObservable interface {
	OnRequestStarted() signals.Signal[RequestStartedEvent]
	OnRequestEnded() signals.Signal[RequestEndedEvent]
}
