package dbal

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/krew-solutions/quantum-go/quantum/dbal/operators"
)

var (
	ErrUnsupportedOperator = errors.New("operator is not supported")
	ErrDataAccess          = errors.New("data access failure")
	ErrUntrustedFragment   = errors.New("raw fragment must be a dbal.Raw or a number")
	ErrNotLoaded           = errors.New("model has no persisted record")
)

// UnsupportedOperatorError reports an operator missing from the operator
// table, or one that cannot be used in Context ("where", "having", "or-group").
type UnsupportedOperatorError struct {
	Operator operators.Operator
	Context  string
}

func (e *UnsupportedOperatorError) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("operator `%s` is not supported", e.Operator)
	}
	return fmt.Sprintf("operator `%s` is not supported in %s", e.Operator, e.Context)
}

func (e *UnsupportedOperatorError) Is(target error) bool {
	return target == ErrUnsupportedOperator
}

// DataAccessError wraps a failure of the underlying engine.
type DataAccessError struct {
	Op    string
	Table string
	Err   error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("%s on %s: %v", e.Op, e.Table, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

func (e *DataAccessError) Is(target error) bool {
	return target == ErrDataAccess
}
