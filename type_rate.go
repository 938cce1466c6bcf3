package carry

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Rate is a dimensionless ratio: 0.32 reads as 32%. Annual rates (TNA), returns and spreads
// all use it.
type Rate struct {
	value decimal.Decimal
}

func R[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Rate {
	return Rate{value: newDecimal(value)}
}

// Pct builds a rate from a percentage figure (32.5 gives 0.325).
func Pct[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Rate {
	return Rate{value: newDecimal(value).Shift(-2)}
}

func (r Rate) Add(s Rate) Rate             { return Rate{value: r.value.Add(s.value)} }
func (r Rate) Sub(s Rate) Rate             { return Rate{value: r.value.Sub(s.value)} }
func (r Rate) Mul(s Rate) Rate             { return Rate{value: r.value.Mul(s.value)} }
func (r Rate) Equal(s Rate) bool           { return r.value.Equal(s.value) }
func (r Rate) LessThan(s Rate) bool        { return r.value.LessThan(s.value) }
func (r Rate) GreaterThan(s Rate) bool     { return r.value.GreaterThan(s.value) }
func (r Rate) IsZero() bool                { return r.value.IsZero() }
func (r Rate) IsPositive() bool            { return r.value.IsPositive() }
func (r Rate) IsNegative() bool            { return r.value.IsNegative() }
func (r Rate) Decimal() decimal.Decimal    { return r.value }
func (r Rate) InexactFloat64() float64     { return r.value.InexactFloat64() }
func (r Rate) Percent() decimal.Decimal    { return r.value.Shift(2) }
func (r Rate) MarshalJSON() ([]byte, error) { return r.value.MarshalJSON() }
func (r *Rate) UnmarshalJSON(b []byte) error {
	return r.value.UnmarshalJSON(b)
}

// String formats the rate as a percentage with two decimals.
func (r Rate) String() string {
	return fmt.Sprintf("%s%%", r.Percent().StringFixed(2))
}

// SignedString is like String with an explicit sign, and "-" for zero.
func (r Rate) SignedString() string {
	p := r.Percent().Round(2)
	switch {
	case p.IsZero():
		return "-"
	case p.IsPositive():
		return "+" + r.String()
	default:
		return r.String()
	}
}

// meanRate returns the unweighted mean of rates, zero for none.
func meanRate(sum Rate, n int) Rate {
	return Rate{value: quo(sum.value, decimal.NewFromInt(int64(n)))}
}
