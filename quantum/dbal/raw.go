package dbal

import (
	"strconv"

	"github.com/pkg/errors"
)

// Raw is a trusted SQL fragment that is inlined into clause text unescaped.
// Only constants convert implicitly; values built at run time need an
// explicit Raw(x), which keeps user input away from the raw path.
type Raw string

// Fn is a raw right-hand side expression, e.g. Func("NOW()").
type Fn struct {
	Expr Raw
}

func Func(expr Raw) Fn {
	return Fn{Expr: expr}
}

// rawLiteral renders the value of a raw equality. Numbers and booleans cannot
// carry SQL, strings must be wrapped into Raw by the caller.
func rawLiteral(column string, value any) (Raw, error) {
	switch v := value.(type) {
	case Raw:
		return v, nil
	case Fn:
		return v.Expr, nil
	case bool:
		if v {
			return "TRUE", nil
		}
		return "FALSE", nil
	case int:
		return Raw(strconv.FormatInt(int64(v), 10)), nil
	case int8:
		return Raw(strconv.FormatInt(int64(v), 10)), nil
	case int16:
		return Raw(strconv.FormatInt(int64(v), 10)), nil
	case int32:
		return Raw(strconv.FormatInt(int64(v), 10)), nil
	case int64:
		return Raw(strconv.FormatInt(v, 10)), nil
	case uint:
		return Raw(strconv.FormatUint(uint64(v), 10)), nil
	case uint8:
		return Raw(strconv.FormatUint(uint64(v), 10)), nil
	case uint16:
		return Raw(strconv.FormatUint(uint64(v), 10)), nil
	case uint32:
		return Raw(strconv.FormatUint(uint64(v), 10)), nil
	case uint64:
		return Raw(strconv.FormatUint(v, 10)), nil
	case float32:
		return Raw(strconv.FormatFloat(float64(v), 'g', -1, 32)), nil
	case float64:
		return Raw(strconv.FormatFloat(v, 'g', -1, 64)), nil
	}
	return "", errors.Wrapf(ErrUntrustedFragment, "column %s got %T", column, value)
}
