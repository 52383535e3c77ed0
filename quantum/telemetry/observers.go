package telemetry

import (
	"github.com/rs/zerolog"

	"github.com/krew-solutions/quantum-go/quantum/session"
)

// QueryLogger logs every statement of a db session at debug level, failed
// ones at error level.
type QueryLogger struct {
	logger zerolog.Logger
}

func NewQueryLogger(logger zerolog.Logger) *QueryLogger {
	return &QueryLogger{logger: logger.With().Str("component", "dbal").Logger()}
}

func (l *QueryLogger) OnQueryStarted(e session.QueryStartedEvent) {
	l.logger.Debug().
		Str("query_id", e.QueryID).
		Str("query", e.Query).
		Int("params", len(e.Params)).
		Msg("query started")
}

func (l *QueryLogger) OnQueryEnded(e session.QueryEndedEvent) {
	ev := l.logger.Debug()
	if e.Err != nil {
		ev = l.logger.Error().Err(e.Err)
	}
	ev.Str("query_id", e.QueryID).
		Str("query", e.Query).
		Dur("duration", e.ResponseTime).
		Msg("query ended")
}

// RequestLogger logs outgoing HTTP calls of REST sessions.
type RequestLogger struct {
	logger zerolog.Logger
}

func NewRequestLogger(logger zerolog.Logger) *RequestLogger {
	return &RequestLogger{logger: logger.With().Str("component", "rest").Logger()}
}

func (l *RequestLogger) OnRequestEnded(e session.RequestEndedEvent) {
	ev := l.logger.Info()
	if e.Err != nil {
		ev = l.logger.Warn().Err(e.Err)
	}
	view := e.RequestView
	if view.Status != nil {
		ev = ev.Int("status", *view.Status)
	}
	if view.ResponseTime != nil {
		ev = ev.Dur("duration", *view.ResponseTime)
	}
	ev.Str("label", view.Label).Msg("request ended")
}
