package result

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResult_Insert(t *testing.T) {
	r := NewResult(7, 0)
	id, err := r.LastInsertId()
	assert.NoError(t, err)
	assert.Equal(t, int64(7), id)

	_, err = r.RowsAffected()
	assert.Error(t, err)
}

func TestResult_Update(t *testing.T) {
	r := NewResult(0, 3)
	n, err := r.RowsAffected()
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)

	_, err = r.LastInsertId()
	assert.Error(t, err)
}
