package option

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSome(t *testing.T) {
	t.Run("zero value is valid", func(t *testing.T) {
		o := Some(0)
		assert.True(t, o.IsSome())
		assert.False(t, o.IsNothing())
		assert.Equal(t, 0, o.Unwrap())
	})

	t.Run("map value", func(t *testing.T) {
		o := Some(map[string]any{"id": 1})
		v, ok := o.Get()
		assert.True(t, ok)
		assert.Equal(t, map[string]any{"id": 1}, v)
	})
}

func TestNothing(t *testing.T) {
	o := Nothing[string]()
	assert.True(t, o.IsNothing())
	v, ok := o.Get()
	assert.False(t, ok)
	assert.Equal(t, "", v)
	assert.PanicsWithValue(t, "called Unwrap on a Nothing Option", func() {
		o.Unwrap()
	})
}

func TestFromOk(t *testing.T) {
	assert.Equal(t, Some("x"), FromOk("x", true))
	assert.Equal(t, Nothing[string](), FromOk("x", false))
}

func TestUnwrapOr(t *testing.T) {
	assert.Equal(t, 42, Some(42).UnwrapOr(0))
	assert.Equal(t, 99, Nothing[int]().UnwrapOr(99))
	assert.Equal(t, 0, Nothing[int]().UnwrapOrZero())
}

func TestMap(t *testing.T) {
	double := func(v int) int { return v * 2 }
	assert.Equal(t, Some(4), Map(Some(2), double))
	assert.True(t, Map(Nothing[int](), double).IsNothing())
}

func TestOr(t *testing.T) {
	assert.Equal(t, Some(1), Some(1).Or(Some(2)))
	assert.Equal(t, Some(2), Nothing[int]().Or(Some(2)))
}

func TestString(t *testing.T) {
	assert.Equal(t, "Some(7)", Some(7).String())
	assert.Equal(t, "Nothing", Nothing[int]().String())
}
