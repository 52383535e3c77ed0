package result

import "github.com/pkg/errors"

// Result reports either the id generated by an INSERT or the number of rows an
// UPDATE / DELETE touched, never both.
type Result struct {
	lastInsertId int64
	rowsAffected int64
}

func NewResult(lastInsertId, rowsAffected int64) Result {
	return Result{lastInsertId, rowsAffected}
}

func (r Result) LastInsertId() (int64, error) {
	if r.rowsAffected == 0 {
		return r.lastInsertId, nil
	}
	return 0, errors.New("LastInsertId is not supported by this driver")
}

func (r Result) RowsAffected() (int64, error) {
	if r.lastInsertId == 0 {
		return r.rowsAffected, nil
	}
	return 0, errors.New("RowsAffected is not supported by INSERT command")
}
