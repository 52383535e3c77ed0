package sql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/krew-solutions/quantum-go/quantum/session"
	"github.com/krew-solutions/quantum-go/quantum/session/identitymap"
	"github.com/krew-solutions/quantum-go/quantum/session/result"
	"github.com/krew-solutions/quantum-go/quantum/utils"
)

const defaultCacheSize = 100

// executor is satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Session represents a database/sql session. Outside of Atomic it runs
// statements directly on the pool; inside it runs them in a transaction and
// nested Atomic calls become savepoints.
type Session struct {
	session.QuerySignals
	ctx          context.Context
	db           *sql.DB
	tx           *sql.Tx
	exec         executor
	parent       session.Session
	identityMap  *identitymap.IdentityMap
	savepointSeq *int
}

func NewSession(ctx context.Context, db *sql.DB) *Session {
	return &Session{
		QuerySignals: session.NewQuerySignals(),
		ctx:          ctx,
		db:           db,
		exec:         db,
		identityMap:  identitymap.New(defaultCacheSize, identitymap.ReadUncommitted),
	}
}

func (s *Session) Context() context.Context {
	return s.ctx
}

func (s *Session) Connection() session.DbConnection {
	return &connection{session: s}
}

func (s *Session) IdentityMap() *identitymap.IdentityMap {
	return s.identityMap
}

func (s *Session) Atomic(callback session.SessionCallback) error {
	if s.tx != nil {
		return s.savepoint(callback)
	}

	tx, err := s.db.BeginTx(s.ctx, nil)
	if err != nil {
		return errors.Wrap(err, "unable to start transaction")
	}

	seq := 0
	atomicSession := &Session{
		QuerySignals: s.QuerySignals,
		ctx:          s.ctx,
		db:           s.db,
		tx:           tx,
		exec:         tx,
		parent:       s,
		identityMap:  identitymap.New(defaultCacheSize, identitymap.Serializable),
		savepointSeq: &seq,
	}

	err = callback(atomicSession)
	atomicSession.identityMap.Clear()

	if err != nil {
		if txErr := tx.Rollback(); txErr != nil {
			return multierror.Append(err, txErr)
		}
		return err
	}

	if txErr := tx.Commit(); txErr != nil {
		return errors.Wrap(txErr, "failed to commit transaction")
	}
	return nil
}

func (s *Session) savepoint(callback session.SessionCallback) error {
	*s.savepointSeq++
	name := fmt.Sprintf("sp_%d", *s.savepointSeq)

	conn := s.Connection()
	if _, err := conn.Exec("SAVEPOINT " + name); err != nil {
		return errors.Wrap(err, "unable to start savepoint")
	}

	nested := *s
	nested.parent = s

	err := callback(&nested)
	if err != nil {
		// Rows cached inside the savepoint may be rolled back.
		s.identityMap.Clear()
		if _, spErr := conn.Exec("ROLLBACK TO SAVEPOINT " + name); spErr != nil {
			return multierror.Append(err, spErr)
		}
		return err
	}

	if _, spErr := conn.Exec("RELEASE SAVEPOINT " + name); spErr != nil {
		return errors.Wrap(spErr, "failed to release savepoint")
	}
	return nil
}

// connection implements session.DbConnection
type connection struct {
	session *Session
}

func (c *connection) Exec(query string, args ...any) (session.Result, error) {
	if utils.IsAutoincrementInsertQuery(query) {
		return c.insert(query, args...)
	}

	var res sql.Result
	err := c.session.Observe(c.session, c, query, args, func() (err error) {
		res, err = c.session.exec.ExecContext(c.session.ctx, query, args...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (c *connection) insert(query string, args ...any) (session.Result, error) {
	var id int64
	err := c.session.Observe(c.session, c, query, args, func() error {
		return c.session.exec.QueryRowContext(c.session.ctx, query, args...).Scan(&id)
	})
	if err != nil {
		return nil, err
	}
	return result.NewResult(id, 0), nil
}

func (c *connection) Query(query string, args ...any) (session.Rows, error) {
	var rows *sql.Rows
	err := c.session.Observe(c.session, c, query, args, func() (err error) {
		rows, err = c.session.exec.QueryContext(c.session.ctx, query, args...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *connection) QueryRow(query string, args ...any) session.Row {
	var row *sql.Row
	_ = c.session.Observe(c.session, c, query, args, func() error {
		row = c.session.exec.QueryRowContext(c.session.ctx, query, args...)
		return row.Err()
	})
	return row
}
