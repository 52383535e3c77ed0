package dbal

import (
	"github.com/krew-solutions/quantum-go/quantum/dbal/operators"
	"github.com/krew-solutions/quantum-go/quantum/option"
)

type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// QueryBuilder accumulates the state of one query. It is owned by a single
// request and never shared.
type QueryBuilder interface {
	Where() operators.Filter
	Having() operators.Filter
	WhereRaw(clause Raw, params ...any)

	Select(columns ...string)
	OrderBy(column string, direction Direction)
	GroupBy(columns ...string)
	Limit(n int)
	Offset(n int)

	// Clone copies the accumulated state into an independent builder.
	Clone() QueryBuilder

	FetchAll() ([]Row, error)
	FetchFirst() (option.Option[Row], error)
	FindByID(id any) (option.Option[Row], error)
	FindOneBy(column string, value any) (option.Option[Row], error)

	// Insert returns the id of the new record.
	Insert(row Row) (any, error)
	Update(id any, row Row) error
	Delete(id any) error
}

type Engine interface {
	Builder(table, idColumn string) QueryBuilder
}

// Branch is one alternative of an OR group.
type Branch struct {
	Column  string
	Compare operators.Comparison
	Value   any
}

// AnyOfBuilder is implemented by builders that evaluate OR groups natively
// instead of through raw clause text.
type AnyOfBuilder interface {
	WhereAnyOf(branches []Branch)
}

// IdentifierQuoter is implemented by builders whose engine quotes column names.
type IdentifierQuoter interface {
	QuoteIdentifier(name string) string
}
