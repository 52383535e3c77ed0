package telemetry

import (
	"github.com/krew-solutions/quantum-go/quantum/disposable"
	"github.com/krew-solutions/quantum-go/quantum/session"
)

// Instrument attaches the query logger, request logger and metrics to every
// session pool opens from now on. Nil observers are skipped. Disposing the
// result stops instrumenting new sessions.
func Instrument(pool session.ObservablePool, queries *QueryLogger, requests *RequestLogger, metrics *QueryMetrics) disposable.Disposable {
	return pool.OnSessionStarted().Attach(func(e session.SessionScopeStartedEvent) {
		if qo, ok := e.Session.(session.QueryObservable); ok {
			if queries != nil {
				qo.OnQueryStarted().Attach(queries.OnQueryStarted)
				qo.OnQueryEnded().Attach(queries.OnQueryEnded)
			}
			if metrics != nil {
				qo.OnQueryEnded().Attach(metrics.OnQueryEnded)
			}
		}
		if ro, ok := e.Session.(session.RequestObservable); ok && requests != nil {
			ro.OnRequestEnded().Attach(requests.OnRequestEnded)
		}
	})
}
