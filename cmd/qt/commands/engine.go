package commands

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/krew-solutions/quantum-go/quantum/config"
	"github.com/krew-solutions/quantum-go/quantum/dbal"
	"github.com/krew-solutions/quantum-go/quantum/dbal/docengine"
	"github.com/krew-solutions/quantum-go/quantum/dbal/sqlengine"
	"github.com/krew-solutions/quantum-go/quantum/session"
	pgsession "github.com/krew-solutions/quantum-go/quantum/session/pg"
	sqlsession "github.com/krew-solutions/quantum-go/quantum/session/sql"
	"github.com/krew-solutions/quantum-go/quantum/telemetry"
)

type engineCallback func(dbal.Engine) error

// withEngine opens the configured database and runs fn inside one session.
func withEngine(ctx context.Context, cfg *config.Config, fn engineCallback) error {
	switch cfg.Database.Driver {
	case config.DriverDocstore:
		db, err := docengine.Open(cfg.Database.Dir)
		if err != nil {
			return err
		}
		return fn(db)

	case config.DriverSQLite:
		db, err := sqlsession.OpenSQLite(cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		return inSession(ctx, cfg, sqlsession.NewSessionPool(db), sqlengine.SQLite, fn)

	case config.DriverPostgres:
		pool, err := pgsession.Connect(ctx, cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		return inSession(ctx, cfg, pool, sqlengine.Postgres, fn)
	}
	return errors.Errorf("unknown database driver %q", cfg.Database.Driver)
}

func inSession(ctx context.Context, cfg *config.Config, pool session.ObservablePool, dialect sqlengine.Dialect, fn engineCallback) error {
	registry := prometheus.NewRegistry()
	var metrics *telemetry.QueryMetrics
	if cfg.Metrics.Enabled {
		m, err := telemetry.NewQueryMetrics(cfg.Metrics.Namespace, registry)
		if err != nil {
			return err
		}
		metrics = m
	}
	defer telemetry.Instrument(pool, telemetry.NewQueryLogger(log.Logger), nil, metrics).Dispose()

	err := pool.Session(ctx, func(s session.Session) error {
		return fn(sqlengine.New(s.(session.DbSession), dialect))
	})
	if metrics != nil {
		logMetrics(registry)
	}
	return err
}

// logMetrics writes one line per collected series: its labels, and the value
// of a counter or the count and sum of a histogram.
func logMetrics(registry prometheus.Gatherer) {
	families, err := registry.Gather()
	if err != nil {
		log.Warn().Err(err).Msg("gather metrics")
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			event := log.Info().Str("metric", mf.GetName())
			for _, label := range m.GetLabel() {
				event = event.Str(label.GetName(), label.GetValue())
			}
			if c := m.GetCounter(); c != nil {
				event = event.Float64("value", c.GetValue())
			}
			if h := m.GetHistogram(); h != nil {
				event = event.Uint64("count", h.GetSampleCount()).Float64("sum", h.GetSampleSum())
			}
			event.Msg("metrics")
		}
	}
}
