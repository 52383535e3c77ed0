package operators

type Operator string

const (
	// Comparison

	OperatorEq    Operator = "="
	OperatorNe    Operator = "!="
	OperatorNeAlt Operator = "<>"
	OperatorGt    Operator = ">"
	OperatorGte   Operator = ">="
	OperatorLt    Operator = "<"
	OperatorLte   Operator = "<="

	// Set membership

	OperatorIn    Operator = "IN"
	OperatorNotIn Operator = "NOT IN"

	// Pattern

	OperatorLike    Operator = "LIKE"
	OperatorNotLike Operator = "NOT LIKE"

	// Postfix

	OperatorNull    Operator = "NULL"
	OperatorNotNull Operator = "NOT NULL"

	// Raw equality: column = value, inlined without binding

	OperatorRawEq Operator = "#=#"
)

// Filter is one clause list of a query builder, either WHERE or HAVING.
// Values are always bound as parameters.
type Filter interface {
	Equal(column string, value any)
	NotEqual(column string, value any)
	Gt(column string, value any)
	Gte(column string, value any)
	Lt(column string, value any)
	Lte(column string, value any)
	In(column string, values any)
	NotIn(column string, values any)
	Like(column string, pattern any)
	NotLike(column string, pattern any)
	Null(column string)
	NotNull(column string)
}

// Comparison applies one operator to a filter.
type Comparison func(f Filter, column string, value any)

type Arity int

const (
	// Binary takes a single bound value.
	Binary Arity = iota
	// List takes a slice of bound values.
	List
	// Unary ignores the value.
	Unary
	// RawBinary inlines the value into the clause text.
	RawBinary
)

func (a Arity) String() string {
	switch a {
	case Binary:
		return "binary"
	case List:
		return "list"
	case Unary:
		return "unary"
	case RawBinary:
		return "raw"
	}
	return "unknown"
}
