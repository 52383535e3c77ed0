package session

import (
	"time"

	"github.com/krew-solutions/quantum-go/quantum/signals"
)

// QuerySignals is embedded by db sessions to implement QueryObservable.
type QuerySignals struct {
	onQueryStarted signals.Signal[QueryStartedEvent]
	onQueryEnded   signals.Signal[QueryEndedEvent]
}

func NewQuerySignals() QuerySignals {
	return QuerySignals{
		onQueryStarted: signals.NewSignal[QueryStartedEvent](),
		onQueryEnded:   signals.NewSignal[QueryEndedEvent](),
	}
}

func (q QuerySignals) OnQueryStarted() signals.Signal[QueryStartedEvent] {
	return q.onQueryStarted
}

func (q QuerySignals) OnQueryEnded() signals.Signal[QueryEndedEvent] {
	return q.onQueryEnded
}

// Observe runs statement between a QueryStartedEvent and a QueryEndedEvent.
func (q QuerySignals) Observe(s DbSession, sender any, query string, params []any, statement func() error) error {
	id := NewQueryID()
	q.onQueryStarted.Notify(QueryStartedEvent{
		QueryID: id,
		Query:   query,
		Params:  params,
		Sender:  sender,
		Session: s,
	})
	start := time.Now()
	err := statement()
	q.onQueryEnded.Notify(QueryEndedEvent{
		QueryID:      id,
		Query:        query,
		Params:       params,
		Sender:       sender,
		Session:      s,
		ResponseTime: time.Since(start),
		Err:          err,
	})
	return err
}
