package sqlengine

import (
	"github.com/krew-solutions/quantum-go/quantum/dbal"
	"github.com/krew-solutions/quantum-go/quantum/session"
	"github.com/krew-solutions/quantum-go/quantum/session/identitymap"
)

// Engine maps the rows of a SQL database. It is bound to the session of one
// request.
type Engine struct {
	session session.DbSession
	dialect Dialect
}

func New(sess session.DbSession, dialect Dialect) *Engine {
	return &Engine{session: sess, dialect: dialect}
}

func (e *Engine) Dialect() Dialect {
	return e.dialect
}

func (e *Engine) Builder(table, idColumn string) dbal.QueryBuilder {
	return newBuilder(e, table, idColumn)
}

func (e *Engine) connection() session.DbConnection {
	return e.session.Connection()
}

func (e *Engine) identityMap() *identitymap.IdentityMap {
	if m, ok := e.session.(session.IdentityMapper); ok {
		return m.IdentityMap()
	}
	return nil
}
