package sqlengine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/quantum-go/quantum/dbal"
	"github.com/krew-solutions/quantum-go/quantum/dbal/operators"
	"github.com/krew-solutions/quantum-go/quantum/dbal/sqlengine"
	"github.com/krew-solutions/quantum-go/quantum/session"
	"github.com/krew-solutions/quantum-go/quantum/utils/testutils"
)

func TestPostgres_Roundtrip(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	pool, err := testutils.NewPgSessionPool()
	require.NoError(t, err)
	defer pool.Close()

	err = pool.Session(context.Background(), func(s session.Session) error {
		return s.Atomic(func(tx session.Session) error {
			conn := tx.(session.DbSession).Connection()
			if _, err := conn.Exec(`CREATE TEMPORARY TABLE qt_users (
				id BIGSERIAL PRIMARY KEY,
				firstname TEXT NOT NULL,
				age INTEGER NOT NULL
			) ON COMMIT DROP`); err != nil {
				return err
			}

			engine := sqlengine.New(tx.(session.DbSession), sqlengine.Postgres)
			for _, u := range []dbal.Row{{"firstname": "John", "age": 45}, {"firstname": "Jane", "age": 35}} {
				m := dbal.NewModel(engine, "qt_users").Create()
				for k, v := range u {
					m.SetProp(k, v)
				}
				if err := m.Save(); err != nil {
					return err
				}
			}

			m := dbal.NewModel(engine, "qt_users")
			if _, err := m.Criteria("age", operators.OperatorGt, 40); err != nil {
				return err
			}
			res, err := m.First()
			if err != nil {
				return err
			}
			assert.Equal(t, "John", res.Unwrap()["firstname"])

			count, err := dbal.NewModel(engine, "qt_users").Count()
			assert.Equal(t, 2, count)
			return err
		})
	})
	if err != nil {
		t.Skipf("postgres is not available: %v", err)
	}
}

func TestPostgres_SavepointRollbackDropsCachedRows(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	pool, err := testutils.NewPgSessionPool()
	require.NoError(t, err)
	defer pool.Close()

	err = pool.Session(context.Background(), func(s session.Session) error {
		return s.Atomic(func(tx session.Session) error {
			conn := tx.(session.DbSession).Connection()
			if _, err := conn.Exec(`CREATE TEMPORARY TABLE qt_members (
				id BIGSERIAL PRIMARY KEY,
				firstname TEXT NOT NULL
			) ON COMMIT DROP`); err != nil {
				return err
			}
			engine := sqlengine.New(tx.(session.DbSession), sqlengine.Postgres)
			if err := dbal.NewModel(engine, "qt_members").Create().SetProp("firstname", "John").Save(); err != nil {
				return err
			}

			_ = tx.Atomic(func(nested session.Session) error {
				nestedEngine := sqlengine.New(nested.(session.DbSession), sqlengine.Postgres)
				m := dbal.NewModel(nestedEngine, "qt_members")
				if _, err := m.FindOne(1); err != nil {
					return err
				}
				if err := m.SetProp("firstname", "Johnny").Save(); err != nil {
					return err
				}
				if _, err := dbal.NewModel(nestedEngine, "qt_members").FindOne(1); err != nil {
					return err
				}
				return errors.New("rollback")
			})

			res, err := dbal.NewModel(engine, "qt_members").FindOne(1)
			if err != nil {
				return err
			}
			assert.Equal(t, "John", res.Unwrap()["firstname"])
			return nil
		})
	})
	if err != nil {
		t.Skipf("postgres is not available: %v", err)
	}
}
