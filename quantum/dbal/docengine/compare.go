package docengine

import (
	"cmp"
	"reflect"
	"time"

	"github.com/krew-solutions/quantum-go/quantum/dbal/operators"
)

type binaryOp func(left, right any) bool

type binaryKey struct {
	left  reflect.Type
	op    operators.Operator
	right reflect.Type
}

// comparisonRegistry evaluates comparisons between document values by their
// dynamic types.
type comparisonRegistry struct {
	binary map[binaryKey]binaryOp
}

func newComparisonRegistry() *comparisonRegistry {
	return &comparisonRegistry{binary: make(map[binaryKey]binaryOp)}
}

func registerBinary[L, R any](reg *comparisonRegistry, op operators.Operator, fn func(L, R) bool) {
	var zeroL L
	var zeroR R
	key := binaryKey{
		left:  reflect.TypeOf(zeroL),
		op:    op,
		right: reflect.TypeOf(zeroR),
	}
	reg.binary[key] = func(left, right any) bool {
		return fn(left.(L), right.(R))
	}
}

func registerOrdered[T cmp.Ordered](reg *comparisonRegistry) {
	registerBinary[T, T](reg, operators.OperatorEq, func(a, b T) bool { return a == b })
	registerBinary[T, T](reg, operators.OperatorNe, func(a, b T) bool { return a != b })
	registerBinary[T, T](reg, operators.OperatorGt, func(a, b T) bool { return a > b })
	registerBinary[T, T](reg, operators.OperatorGte, func(a, b T) bool { return a >= b })
	registerBinary[T, T](reg, operators.OperatorLt, func(a, b T) bool { return a < b })
	registerBinary[T, T](reg, operators.OperatorLte, func(a, b T) bool { return a <= b })
}

func newDefaultComparisons() *comparisonRegistry {
	reg := newComparisonRegistry()

	// bool
	registerBinary[bool, bool](reg, operators.OperatorEq, func(a, b bool) bool { return a == b })
	registerBinary[bool, bool](reg, operators.OperatorNe, func(a, b bool) bool { return a != b })

	// numbers are normalised to float64
	registerOrdered[float64](reg)

	// string
	registerOrdered[string](reg)

	// time.Time
	registerBinary[time.Time, time.Time](reg, operators.OperatorEq, func(a, b time.Time) bool { return a.Equal(b) })
	registerBinary[time.Time, time.Time](reg, operators.OperatorNe, func(a, b time.Time) bool { return !a.Equal(b) })
	registerBinary[time.Time, time.Time](reg, operators.OperatorGt, func(a, b time.Time) bool { return a.After(b) })
	registerBinary[time.Time, time.Time](reg, operators.OperatorGte, func(a, b time.Time) bool { return !a.Before(b) })
	registerBinary[time.Time, time.Time](reg, operators.OperatorLt, func(a, b time.Time) bool { return a.Before(b) })
	registerBinary[time.Time, time.Time](reg, operators.OperatorLte, func(a, b time.Time) bool { return !a.After(b) })

	return reg
}

// Compare applies op with SQL NULL semantics: a comparison with a missing or
// nil value is false. Values of unrelated types are never equal and never
// ordered.
func (r *comparisonRegistry) Compare(left any, op operators.Operator, right any) bool {
	left, right = normalize(left), normalize(right)
	if left == nil || right == nil {
		return false
	}
	fn, ok := r.binary[binaryKey{left: reflect.TypeOf(left), op: op, right: reflect.TypeOf(right)}]
	if !ok {
		return op == operators.OperatorNe
	}
	return fn(left, right)
}

// Order sorts nil first and falls back to type names for unrelated types.
func (r *comparisonRegistry) Order(left, right any) int {
	left, right = normalize(left), normalize(right)
	switch {
	case left == nil && right == nil:
		return 0
	case left == nil:
		return -1
	case right == nil:
		return 1
	}
	if r.Compare(left, operators.OperatorLt, right) {
		return -1
	}
	if r.Compare(left, operators.OperatorGt, right) {
		return 1
	}
	if reflect.TypeOf(left) != reflect.TypeOf(right) {
		return cmp.Compare(reflect.TypeOf(left).String(), reflect.TypeOf(right).String())
	}
	return 0
}

func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case *time.Time:
		if n == nil {
			return nil
		}
		return *n
	}
	return v
}
