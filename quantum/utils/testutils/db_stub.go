package testutils

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/krew-solutions/quantum-go/quantum/session"
	"github.com/krew-solutions/quantum-go/quantum/session/identitymap"
	"github.com/krew-solutions/quantum-go/quantum/session/result"
)

// NewDbSessionStub returns a session whose connection records the last
// statement and answers every query with rows.
func NewDbSessionStub(rows *RowsStub) *DbSessionStub {
	stub := &DbSessionStub{
		QuerySignals: session.NewQuerySignals(),
		Rows:         rows,
		identityMap:  identitymap.New(100, identitymap.ReadUncommitted),
	}
	stub.conn = &connectionStub{session: stub}
	return stub
}

type DbSessionStub struct {
	session.QuerySignals
	Rows         *RowsStub
	ExecResult   session.Result
	Err          error
	ActualQuery  string
	ActualParams []any
	Queries      []string
	conn         *connectionStub
	identityMap  *identitymap.IdentityMap
}

func (s *DbSessionStub) Context() context.Context {
	return context.Background()
}

func (s *DbSessionStub) Atomic(callback session.SessionCallback) error {
	return callback(s)
}

func (s *DbSessionStub) Connection() session.DbConnection {
	return s.conn
}

func (s *DbSessionStub) IdentityMap() *identitymap.IdentityMap {
	return s.identityMap
}

type connectionStub struct {
	session *DbSessionStub
}

func (c *connectionStub) record(query string, args []any) {
	c.session.ActualQuery = query
	c.session.ActualParams = args
	c.session.Queries = append(c.session.Queries, query)
}

func (c *connectionStub) Exec(query string, args ...any) (session.Result, error) {
	c.record(query, args)
	if c.session.Err != nil {
		return nil, c.session.Err
	}
	if c.session.ExecResult != nil {
		return c.session.ExecResult, nil
	}
	return result.NewResult(0, 0), nil
}

func (c *connectionStub) Query(query string, args ...any) (session.Rows, error) {
	c.record(query, args)
	if c.session.Err != nil {
		return nil, c.session.Err
	}
	c.session.Rows.Reset()
	return c.session.Rows, nil
}

func (c *connectionStub) QueryRow(query string, args ...any) session.Row {
	c.record(query, args)
	c.session.Rows.Reset()
	return &RowStub{rows: c.session.Rows, err: c.session.Err}
}

// NewRowsStub builds a result set with the given column names. Each row holds
// one value per column.
func NewRowsStub(columns []string, rows ...[]any) *RowsStub {
	return &RowsStub{
		columns: columns,
		rows:    rows,
		idx:     -1,
	}
}

type RowsStub struct {
	columns []string
	rows    [][]any
	idx     int
	Closed  bool
}

func (r *RowsStub) Reset() {
	r.idx = -1
	r.Closed = false
}

func (r *RowsStub) Close() error {
	r.Closed = true
	return nil
}

func (r *RowsStub) Err() error {
	return nil
}

func (r *RowsStub) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *RowsStub) Columns() ([]string, error) {
	return r.columns, nil
}

func (r *RowsStub) Scan(dest ...any) error {
	if r.idx < 0 || r.idx >= len(r.rows) {
		return errors.New("no current row")
	}

	row := r.rows[r.idx]
	for i, val := range row {
		if i >= len(dest) {
			break
		}

		switch d := dest[i].(type) {
		case *any:
			*d = val
		case *int:
			*d = toInt(val)
		case *int64:
			*d = toInt64(val)
		case *string:
			*d = val.(string)
		case *bool:
			*d = val.(bool)
		case *[]byte:
			*d = val.([]byte)
		case *float64:
			*d = toFloat64(val)
		case sql.Scanner:
			if err := d.Scan(val); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported scan type %T", dest[i])
		}
	}
	return nil
}

func toInt(val any) int {
	return int(toInt64(val))
}

func toInt64(val any) int64 {
	switch v := val.(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case int32:
		return int64(v)
	default:
		panic("cannot convert to int64")
	}
}

func toFloat64(val any) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		panic("cannot convert to float64")
	}
}

type RowStub struct {
	rows *RowsStub
	err  error
}

func (r *RowStub) Err() error {
	return r.err
}

func (r *RowStub) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if !r.rows.Next() {
		return sql.ErrNoRows
	}
	return r.rows.Scan(dest...)
}
