package dbal

import (
	"github.com/krew-solutions/quantum-go/quantum/dbal/operators"
)

// Criteria is either a single Criterion or an OrGroup.
type Criteria interface {
	applyTo(m *Model) error
}

type Criterion struct {
	Column   string
	Operator operators.Operator
	Value    any
}

func C(column string, op operators.Operator, value any) Criterion {
	return Criterion{Column: column, Operator: op, Value: value}
}

func (c Criterion) applyTo(m *Model) error {
	_, err := m.Criteria(c.Column, c.Operator, c.Value)
	return err
}

// OrGroup is a parenthesized disjunction of criteria.
type OrGroup []Criterion

func Or(criteria ...Criterion) OrGroup {
	return OrGroup(criteria)
}

func (g OrGroup) applyTo(m *Model) error {
	_, err := m.OrCriteria(g...)
	return err
}
