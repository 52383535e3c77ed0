package session

import (
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
)

type SessionScopeStartedEvent struct {
	Session Session
}

type SessionScopeEndedEvent struct {
	Session Session
}

// QueryStartedEvent and QueryEndedEvent of one statement share QueryID.
type QueryStartedEvent struct {
	QueryID string
	Query   string
	Params  []any
	Sender  any
	Session DbSession
}

type QueryEndedEvent struct {
	QueryID      string
	Query        string
	Params       []any
	Sender       any
	Session      DbSession
	ResponseTime time.Duration
	Err          error
}

// NewQueryID returns a lexicographically sortable id for a statement.
func NewQueryID() string {
	return ulid.Make().String()
}

type RequestViewModel struct {
	TimeStart    time.Time
	Label        string
	Status       *int
	ResponseTime *time.Duration
}

func (r RequestViewModel) String() string {
	if r.Status != nil {
		return r.Label + "." + strconv.Itoa(*r.Status)
	}
	return r.Label
}

type RequestStartedEvent struct {
	Session     Session
	Sender      any
	RequestView *RequestViewModel
}

type RequestEndedEvent struct {
	Session     Session
	Sender      any
	RequestView *RequestViewModel
	Err         error
}
