package disposable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisposable_RunsOnce(t *testing.T) {
	calls := 0
	d := NewDisposable(func() { calls++ })
	d.Dispose()
	d.Dispose()
	assert.Equal(t, 1, calls)
}

func TestCompositeDisposable_DisposesAll(t *testing.T) {
	var order []int
	d := NewCompositeDisposable(
		NewDisposable(func() { order = append(order, 1) }),
		NewDisposable(func() { order = append(order, 2) }),
	)
	d.Dispose()
	assert.Equal(t, []int{1, 2}, order)
}
