package dbal

import (
	"strings"

	"github.com/krew-solutions/quantum-go/quantum/dbal/operators"
)

func (m *Model) lookup(op operators.Operator, context string) (operators.Entry, error) {
	entry, ok := m.operators.Lookup(op)
	if !ok {
		return operators.Entry{}, &UnsupportedOperatorError{Operator: op, Context: context}
	}
	return entry, nil
}

// Criteria adds a WHERE condition. The builder is left untouched on error.
func (m *Model) Criteria(column string, op operators.Operator, value any) (*Model, error) {
	entry, err := m.lookup(op, "")
	if err != nil {
		return m, err
	}

	if entry.Arity == operators.RawBinary {
		literal, err := rawLiteral(column, value)
		if err != nil {
			return m, err
		}
		m.builder.WhereRaw(Raw(column) + " " + Raw(entry.Symbol) + " " + literal)
		return m, nil
	}

	if fn, ok := value.(Fn); ok {
		if entry.Arity != operators.Binary {
			return m, &UnsupportedOperatorError{Operator: op, Context: "where"}
		}
		m.builder.WhereRaw(Raw(column) + " " + Raw(entry.Symbol) + " " + fn.Expr)
		return m, nil
	}

	entry.Compare(m.builder.Where(), column, value)
	return m, nil
}

// Criterias applies every group in order and stops at the first error.
func (m *Model) Criterias(groups ...Criteria) (*Model, error) {
	for _, g := range groups {
		if err := g.applyTo(m); err != nil {
			return m, err
		}
	}
	return m, nil
}

// Having adds a condition on aggregated rows. Raw values are not accepted here.
func (m *Model) Having(column string, op operators.Operator, value any) (*Model, error) {
	entry, err := m.lookup(op, "")
	if err != nil {
		return m, err
	}
	if entry.Arity == operators.RawBinary {
		return m, &UnsupportedOperatorError{Operator: op, Context: "having"}
	}
	if _, ok := value.(Fn); ok {
		return m, &UnsupportedOperatorError{Operator: op, Context: "having"}
	}

	entry.Compare(m.builder.Having(), column, value)
	return m, nil
}

// OrCriteria adds one parenthesized OR group. Every branch binds exactly one
// value, in input order.
func (m *Model) OrCriteria(group ...Criterion) (*Model, error) {
	if len(group) == 0 {
		return m, nil
	}

	branches := make([]Branch, 0, len(group))
	entries := make([]operators.Entry, 0, len(group))
	for _, c := range group {
		entry, err := m.lookup(c.Operator, "")
		if err != nil {
			return m, err
		}
		if _, isFn := c.Value.(Fn); isFn || entry.Arity != operators.Binary {
			return m, &UnsupportedOperatorError{Operator: c.Operator, Context: "or-group"}
		}
		entries = append(entries, entry)
		branches = append(branches, Branch{Column: c.Column, Compare: entry.Compare, Value: c.Value})
	}

	if b, ok := m.builder.(AnyOfBuilder); ok {
		b.WhereAnyOf(branches)
		return m, nil
	}

	quote := func(name string) string { return name }
	if q, ok := m.builder.(IdentifierQuoter); ok {
		quote = q.QuoteIdentifier
	}

	var clause strings.Builder
	params := make([]any, 0, len(group))
	clause.WriteString("(")
	for i, c := range group {
		if i > 0 {
			clause.WriteString(" OR ")
		}
		clause.WriteString(quote(c.Column))
		clause.WriteString(" ")
		clause.WriteString(entries[i].Symbol)
		clause.WriteString(" ?")
		params = append(params, c.Value)
	}
	clause.WriteString(")")

	m.builder.WhereRaw(Raw(clause.String()), params...)
	return m, nil
}

func (m *Model) Select(columns ...string) *Model {
	m.builder.Select(columns...)
	return m
}

func (m *Model) OrderBy(column string, direction Direction) *Model {
	m.builder.OrderBy(column, direction)
	return m
}

func (m *Model) GroupBy(columns ...string) *Model {
	m.builder.GroupBy(columns...)
	return m
}

func (m *Model) Limit(n int) *Model {
	m.builder.Limit(n)
	return m
}

func (m *Model) Offset(n int) *Model {
	m.builder.Offset(n)
	return m
}
