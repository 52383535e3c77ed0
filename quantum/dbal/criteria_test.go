package dbal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/quantum-go/quantum/dbal/operators"
)

func newUsers(rows ...Row) (*Model, *fakeBuilder) {
	m := NewModel(newFakeEngine(rows...), "users")
	return m, m.builder.(*fakeBuilder)
}

func TestCriteria_DispatchesEveryRegisteredOperator(t *testing.T) {
	cases := []struct {
		op       operators.Operator
		value    any
		expected string
	}{
		{operators.OperatorEq, 1, "where.Equal(age,1)"},
		{operators.OperatorNe, 1, "where.NotEqual(age,1)"},
		{operators.OperatorNeAlt, 1, "where.NotEqual(age,1)"},
		{operators.OperatorGt, 1, "where.Gt(age,1)"},
		{operators.OperatorGte, 1, "where.Gte(age,1)"},
		{operators.OperatorLt, 1, "where.Lt(age,1)"},
		{operators.OperatorLte, 1, "where.Lte(age,1)"},
		{operators.OperatorIn, []int{1, 2}, "where.In(age,[1 2])"},
		{operators.OperatorNotIn, []int{1, 2}, "where.NotIn(age,[1 2])"},
		{operators.OperatorLike, "4%", "where.Like(age,4%)"},
		{operators.OperatorNotLike, "4%", "where.NotLike(age,4%)"},
		{operators.OperatorNull, nil, "where.Null(age,<nil>)"},
		{operators.OperatorNotNull, nil, "where.NotNull(age,<nil>)"},
	}

	for _, c := range cases {
		t.Run(string(c.op), func(t *testing.T) {
			m, b := newUsers()
			res, err := m.Criteria("age", c.op, c.value)
			require.NoError(t, err)
			assert.Same(t, m, res)
			assert.Equal(t, []string{c.expected}, b.calls)
			assert.Empty(t, b.raws)
		})
	}
}

func TestCriteria_UnsupportedOperator(t *testing.T) {
	m, b := newUsers()

	_, err := m.Criteria("age", "~~", 1)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedOperator)
	var opErr *UnsupportedOperatorError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, operators.Operator("~~"), opErr.Operator)
	assert.Contains(t, err.Error(), "`~~`")
	assert.Empty(t, b.calls)
	assert.Empty(t, b.raws)
}

func TestCriteria_OperatorsAreCaseSensitive(t *testing.T) {
	m, _ := newUsers()
	_, err := m.Criteria("id", "in", []int{1})
	assert.ErrorIs(t, err, ErrUnsupportedOperator)
}

func TestCriteria_RawEquality(t *testing.T) {
	t.Run("integer", func(t *testing.T) {
		m, b := newUsers()
		_, err := m.Criteria("age", operators.OperatorRawEq, 30)
		require.NoError(t, err)
		require.Len(t, b.raws, 1)
		assert.Equal(t, Raw("age = 30"), b.raws[0].clause)
		assert.Empty(t, b.raws[0].params)
		assert.Empty(t, b.calls)
	})

	t.Run("trusted fragment", func(t *testing.T) {
		m, b := newUsers()
		_, err := m.Criteria("users.id", operators.OperatorRawEq, Raw("profiles.user_id"))
		require.NoError(t, err)
		assert.Equal(t, Raw("users.id = profiles.user_id"), b.raws[0].clause)
	})

	t.Run("float and bool", func(t *testing.T) {
		m, b := newUsers()
		_, err := m.Criteria("ratio", operators.OperatorRawEq, 0.5)
		require.NoError(t, err)
		_, err = m.Criteria("active", operators.OperatorRawEq, true)
		require.NoError(t, err)
		assert.Equal(t, Raw("ratio = 0.5"), b.raws[0].clause)
		assert.Equal(t, Raw("active = TRUE"), b.raws[1].clause)
	})

	t.Run("plain string is rejected", func(t *testing.T) {
		m, b := newUsers()
		input := "1 OR 1 = 1"
		_, err := m.Criteria("age", operators.OperatorRawEq, input)
		assert.ErrorIs(t, err, ErrUntrustedFragment)
		assert.Empty(t, b.raws)
	})
}

func TestCriteria_FunctionValue(t *testing.T) {
	m, b := newUsers()

	_, err := m.Criteria("created_at", operators.OperatorLt, Func("CURRENT_TIMESTAMP"))

	require.NoError(t, err)
	require.Len(t, b.raws, 1)
	assert.Equal(t, Raw("created_at < CURRENT_TIMESTAMP"), b.raws[0].clause)
	assert.Empty(t, b.raws[0].params)
}

func TestOrCriteria_RendersPlaceholdersInOrder(t *testing.T) {
	m, b := newUsers()

	_, err := m.OrCriteria(
		C("firstname", operators.OperatorEq, "John"),
		C("age", operators.OperatorGt, 40),
		C("lastname", operators.OperatorLike, "Do%"),
	)

	require.NoError(t, err)
	require.Len(t, b.raws, 1)
	assert.Equal(t, Raw("(firstname = ? OR age > ? OR lastname LIKE ?)"), b.raws[0].clause)
	assert.Equal(t, []any{"John", 40, "Do%"}, b.raws[0].params)
}

func TestOrCriteria_QuotesIdentifiers(t *testing.T) {
	m, b := newUsers()
	m.builder = quotingBuilder{fakeBuilder: b}

	_, err := m.OrCriteria(C("id", operators.OperatorEq, 1), C("id", operators.OperatorEq, 2))

	require.NoError(t, err)
	assert.Equal(t, Raw("(`id` = ? OR `id` = ?)"), b.raws[0].clause)
}

func TestOrCriteria_NativeBuilder(t *testing.T) {
	m, b := newUsers()
	native := &anyOfBuilder{fakeBuilder: b}
	m.builder = native

	_, err := m.OrCriteria(C("id", operators.OperatorEq, 1), C("age", operators.OperatorLt, 18))

	require.NoError(t, err)
	assert.Empty(t, b.raws)
	require.Len(t, native.branches, 1)
	require.Len(t, native.branches[0], 2)
	assert.Equal(t, "age", native.branches[0][1].Column)
	assert.Equal(t, 18, native.branches[0][1].Value)

	f := recordedFilter{calls: &b.calls, kind: "branch"}
	native.branches[0][1].Compare(f, "age", 18)
	assert.Equal(t, []string{"branch.Lt(age,18)"}, b.calls)
}

func TestOrCriteria_RejectsNonBinaryOperators(t *testing.T) {
	for _, op := range []operators.Operator{operators.OperatorIn, operators.OperatorNull, operators.OperatorRawEq} {
		m, b := newUsers()
		_, err := m.OrCriteria(C("id", operators.OperatorEq, 1), C("id", op, nil))

		var opErr *UnsupportedOperatorError
		require.ErrorAs(t, err, &opErr)
		assert.Equal(t, "or-group", opErr.Context)
		assert.Empty(t, b.raws)
	}
}

func TestOrCriteria_EmptyGroup(t *testing.T) {
	m, b := newUsers()
	_, err := m.OrCriteria()
	require.NoError(t, err)
	assert.Empty(t, b.raws)
}

func TestCriterias(t *testing.T) {
	m, b := newUsers()

	_, err := m.Criterias(
		C("age", operators.OperatorGte, 18),
		Or(C("firstname", operators.OperatorEq, "John"), C("firstname", operators.OperatorEq, "Jane")),
		C("deleted_at", operators.OperatorNull, nil),
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"where.Gte(age,18)", "where.Null(deleted_at,<nil>)"}, b.calls)
	require.Len(t, b.raws, 1)
	assert.Equal(t, Raw("(firstname = ? OR firstname = ?)"), b.raws[0].clause)
	assert.Equal(t, []any{"John", "Jane"}, b.raws[0].params)
}

func TestCriterias_StopsAtFirstError(t *testing.T) {
	m, b := newUsers()

	_, err := m.Criterias(
		C("age", "===", 18),
		C("firstname", operators.OperatorEq, "John"),
	)

	assert.ErrorIs(t, err, ErrUnsupportedOperator)
	assert.Empty(t, b.calls)
}

func TestHaving(t *testing.T) {
	m, b := newUsers()

	_, err := m.GroupBy("role").Having("count", operators.OperatorGt, 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"group([role])", "having.Gt(count,2)"}, b.calls)
}

func TestHaving_Errors(t *testing.T) {
	m, b := newUsers()

	_, err := m.Having("count", "~", 2)
	assert.ErrorIs(t, err, ErrUnsupportedOperator)

	_, err = m.Having("count", operators.OperatorRawEq, 2)
	var opErr *UnsupportedOperatorError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "having", opErr.Context)

	_, err = m.Having("count", operators.OperatorGt, Func("MAX(age)"))
	assert.ErrorIs(t, err, ErrUnsupportedOperator)
	assert.Empty(t, b.calls)
}

func TestChainableModifiers(t *testing.T) {
	m, b := newUsers()

	m.Select("id", "firstname").OrderBy("age", Desc).Limit(10).Offset(20)

	assert.Equal(t, []string{"select([id firstname])", "order(age,DESC)"}, b.calls)
	assert.Equal(t, 10, b.limit)
	assert.Equal(t, 20, b.offset)
}

func TestWithOperators_CustomTable(t *testing.T) {
	table := operators.NewTable()
	table.Register("eq", operators.Entry{Symbol: "=", Compare: operators.Filter.Equal, Arity: operators.Binary})
	m := NewModel(newFakeEngine(), "users", WithOperators(table))
	b := m.builder.(*fakeBuilder)

	_, err := m.Criteria("id", "eq", 1)
	require.NoError(t, err)
	_, err = m.Criteria("id", operators.OperatorEq, 1)
	assert.ErrorIs(t, err, ErrUnsupportedOperator)
	assert.Equal(t, []string{"where.Equal(id,1)"}, b.calls)
}

func TestCriteria_FunctionValueNeedsBinaryOperator(t *testing.T) {
	for _, op := range []operators.Operator{operators.OperatorNull, operators.OperatorNotNull, operators.OperatorIn, operators.OperatorNotIn} {
		t.Run(string(op), func(t *testing.T) {
			m, b := newUsers()
			_, err := m.Criteria("created_at", op, Func("NOW()"))

			var opErr *UnsupportedOperatorError
			require.ErrorAs(t, err, &opErr)
			assert.Equal(t, "where", opErr.Context)
			assert.Empty(t, b.raws)
			assert.Empty(t, b.calls)
		})
	}
}

func TestOrCriteria_RejectsFunctionValues(t *testing.T) {
	m, b := newUsers()

	_, err := m.OrCriteria(C("id", operators.OperatorEq, 1), C("created_at", operators.OperatorLt, Func("NOW()")))

	var opErr *UnsupportedOperatorError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "or-group", opErr.Context)
	assert.Empty(t, b.raws)
}
