package convert

import (
	"math"
	"math/big"
	"strconv"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/mdxbridge/internal/fault"
)

// ExactDecimal converts a numeric literal value, in whatever width the engine
// stored it, to an exact decimal.
//
// Integral inputs never pass through a floating-point intermediate. Floating
// inputs use the shortest decimal text that round-trips at their own bit
// size. Decimal inputs are copied.
func ExactDecimal(v any) (*apd.Decimal, error) {
	switch n := v.(type) {
	case int8:
		return apd.New(int64(n), 0), nil
	case int16:
		return apd.New(int64(n), 0), nil
	case int32:
		return apd.New(int64(n), 0), nil
	case int64:
		return apd.New(n, 0), nil
	case int:
		return apd.New(int64(n), 0), nil
	case uint:
		return apd.NewWithBigInt(new(apd.BigInt).SetUint64(uint64(n)), 0), nil
	case uint8:
		return apd.New(int64(n), 0), nil
	case uint16:
		return apd.New(int64(n), 0), nil
	case uint32:
		return apd.New(int64(n), 0), nil
	case uint64:
		return apd.NewWithBigInt(new(apd.BigInt).SetUint64(n), 0), nil
	case *big.Int:
		if n == nil {
			break
		}
		return apd.NewWithBigInt(new(apd.BigInt).SetMathBigInt(n), 0), nil
	case float32:
		return fromFloat(float64(n), 32)
	case float64:
		return fromFloat(n, 64)
	case *apd.Decimal:
		if n == nil {
			break
		}
		return new(apd.Decimal).Set(n), nil
	}
	return nil, fault.Defect(fault.ErrCodeBadNumber, "unhandled numeric storage %T", v)
}

func fromFloat(f float64, bitSize int) (*apd.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fault.Defect(fault.ErrCodeBadNumber, "non-finite numeric literal %v", f)
	}
	d, _, err := apd.NewFromString(strconv.FormatFloat(f, 'g', -1, bitSize))
	if err != nil {
		return nil, fault.Defect(fault.ErrCodeBadNumber, "numeric literal %v: %v", f, err)
	}
	return d, nil
}
