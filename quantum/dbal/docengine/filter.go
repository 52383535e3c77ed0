package docengine

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/krew-solutions/quantum-go/quantum/dbal"
	"github.com/krew-solutions/quantum-go/quantum/dbal/operators"
)

type predicate func(doc dbal.Row) bool

// predicateList implements operators.Filter over documents. Predicates are
// combined with AND.
type predicateList struct {
	cmp   *comparisonRegistry
	preds []predicate
}

func (p *predicateList) clone() predicateList {
	return predicateList{cmp: p.cmp, preds: append([]predicate(nil), p.preds...)}
}

func (p *predicateList) match(doc dbal.Row) bool {
	for _, pred := range p.preds {
		if !pred(doc) {
			return false
		}
	}
	return true
}

func (p *predicateList) compare(column string, op operators.Operator, value any) {
	p.preds = append(p.preds, func(doc dbal.Row) bool {
		return p.cmp.Compare(doc[column], op, value)
	})
}

func (p *predicateList) Equal(column string, value any) {
	p.compare(column, operators.OperatorEq, value)
}

func (p *predicateList) NotEqual(column string, value any) {
	p.compare(column, operators.OperatorNe, value)
}

func (p *predicateList) Gt(column string, value any) {
	p.compare(column, operators.OperatorGt, value)
}

func (p *predicateList) Gte(column string, value any) {
	p.compare(column, operators.OperatorGte, value)
}

func (p *predicateList) Lt(column string, value any) {
	p.compare(column, operators.OperatorLt, value)
}

func (p *predicateList) Lte(column string, value any) {
	p.compare(column, operators.OperatorLte, value)
}

func (p *predicateList) In(column string, values any) {
	items := expand(values)
	p.preds = append(p.preds, func(doc dbal.Row) bool {
		return p.contains(doc[column], items)
	})
}

func (p *predicateList) NotIn(column string, values any) {
	items := expand(values)
	p.preds = append(p.preds, func(doc dbal.Row) bool {
		v, ok := doc[column]
		if !ok || v == nil {
			return false
		}
		return !p.contains(v, items)
	})
}

func (p *predicateList) contains(v any, items []any) bool {
	for _, item := range items {
		if p.cmp.Compare(v, operators.OperatorEq, item) {
			return true
		}
	}
	return false
}

func (p *predicateList) Like(column string, pattern any) {
	re := likePattern(pattern)
	p.preds = append(p.preds, func(doc dbal.Row) bool {
		s, ok := doc[column].(string)
		return ok && re.MatchString(s)
	})
}

func (p *predicateList) NotLike(column string, pattern any) {
	re := likePattern(pattern)
	p.preds = append(p.preds, func(doc dbal.Row) bool {
		s, ok := doc[column].(string)
		return ok && !re.MatchString(s)
	})
}

func (p *predicateList) Null(column string) {
	p.preds = append(p.preds, func(doc dbal.Row) bool {
		return doc[column] == nil
	})
}

func (p *predicateList) NotNull(column string) {
	p.preds = append(p.preds, func(doc dbal.Row) bool {
		return doc[column] != nil
	})
}

// anyOf adds one predicate that holds when any branch holds.
func (p *predicateList) anyOf(branches []dbal.Branch) {
	alternatives := make([]predicateList, len(branches))
	for i, b := range branches {
		alternatives[i] = predicateList{cmp: p.cmp}
		b.Compare(&alternatives[i], b.Column, b.Value)
	}
	p.preds = append(p.preds, func(doc dbal.Row) bool {
		for i := range alternatives {
			if alternatives[i].match(doc) {
				return true
			}
		}
		return false
	})
}

// likePattern translates a LIKE pattern into a case-insensitive regexp.
func likePattern(pattern any) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("(?is)^")
	for _, r := range fmt.Sprint(pattern) {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

func expand(values any) []any {
	if values == nil {
		return nil
	}
	v := reflect.ValueOf(values)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return []any{values}
	}
	items := make([]any, v.Len())
	for i := range items {
		items[i] = v.Index(i).Interface()
	}
	return items
}
