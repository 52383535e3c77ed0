package operators

import (
	"sort"
)

// Entry describes how an operator is applied. Symbol is the SQL spelling used
// when the operator is rendered into clause text. Compare is nil for
// RawBinary entries.
type Entry struct {
	Symbol  string
	Compare Comparison
	Arity   Arity
}

// Table maps operators to entries. A Table is filled at start-up and read
// only afterwards, so it is safe to share between requests.
type Table struct {
	entries map[Operator]Entry
}

func NewTable() *Table {
	return &Table{entries: make(map[Operator]Entry)}
}

func (t *Table) Register(op Operator, entry Entry) {
	t.entries[op] = entry
}

func (t *Table) Lookup(op Operator) (Entry, bool) {
	e, ok := t.entries[op]
	return e, ok
}

func (t *Table) Has(op Operator) bool {
	_, ok := t.entries[op]
	return ok
}

// Operators returns the registered operators in lexical order.
func (t *Table) Operators() []Operator {
	ops := make([]Operator, 0, len(t.entries))
	for op := range t.entries {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

func unary(fn func(Filter, string)) Comparison {
	return func(f Filter, column string, _ any) {
		fn(f, column)
	}
}

// NewDefaultTable registers every operator understood by the query builders.
func NewDefaultTable() *Table {
	t := NewTable()

	t.Register(OperatorEq, Entry{Symbol: "=", Compare: Filter.Equal, Arity: Binary})
	t.Register(OperatorNe, Entry{Symbol: "!=", Compare: Filter.NotEqual, Arity: Binary})
	t.Register(OperatorNeAlt, Entry{Symbol: "!=", Compare: Filter.NotEqual, Arity: Binary})
	t.Register(OperatorGt, Entry{Symbol: ">", Compare: Filter.Gt, Arity: Binary})
	t.Register(OperatorGte, Entry{Symbol: ">=", Compare: Filter.Gte, Arity: Binary})
	t.Register(OperatorLt, Entry{Symbol: "<", Compare: Filter.Lt, Arity: Binary})
	t.Register(OperatorLte, Entry{Symbol: "<=", Compare: Filter.Lte, Arity: Binary})

	t.Register(OperatorIn, Entry{Symbol: "IN", Compare: Filter.In, Arity: List})
	t.Register(OperatorNotIn, Entry{Symbol: "NOT IN", Compare: Filter.NotIn, Arity: List})

	t.Register(OperatorLike, Entry{Symbol: "LIKE", Compare: Filter.Like, Arity: Binary})
	t.Register(OperatorNotLike, Entry{Symbol: "NOT LIKE", Compare: Filter.NotLike, Arity: Binary})

	t.Register(OperatorNull, Entry{Symbol: "IS NULL", Compare: unary(Filter.Null), Arity: Unary})
	t.Register(OperatorNotNull, Entry{Symbol: "IS NOT NULL", Compare: unary(Filter.NotNull), Arity: Unary})

	t.Register(OperatorRawEq, Entry{Symbol: "=", Arity: RawBinary})

	return t
}
