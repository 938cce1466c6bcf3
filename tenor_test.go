package carry

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tenorOp(days int, capital float64, tnaPct float64) FinancingOperation {
	return FinancingOperation{Tenor: days, Capital: M(capital, ARS), Interest: M(capital/100, ARS), TNA: Pct(tnaPct)}
}

func TestBuildTenorCurve(t *testing.T) {
	curve := BuildTenorCurve([]FinancingOperation{
		tenorOp(30, 1000000, 40),
		tenorOp(7, 1000000, 30),
		tenorOp(7, 3000000, 34),
	})

	require.Len(t, curve.Curve, 2)
	require.Len(t, curve.Spreads, 2)
	assert.Equal(t, 7, curve.Curve[0].Tenor)
	assert.Equal(t, 30, curve.Curve[1].Tenor)

	week := curve.Curve[0]
	assert.Equal(t, 2, week.Count)
	assert.True(t, week.TotalCapital.Equal(M(4000000, ARS)))
	assert.True(t, week.TotalInterest.Equal(M(40000, ARS)))
	assert.True(t, week.TotalRepayable.Equal(M(4040000, ARS)))
	assert.True(t, week.Rate.Equal(Pct(33)), "weighted rate %s", week.Rate)
	// the small operation got the lower rate.
	assert.True(t, curve.Spreads[0].AvgSpread.Equal(Pct(-1)), "avg spread %s", curve.Spreads[0].AvgSpread)
	assert.True(t, curve.Spreads[1].AvgSpread.IsZero())

	s := curve.Summary
	assert.Equal(t, 3, s.Count)
	assert.True(t, s.WeightedRate.Equal(Pct(34.4)), "weighted %s", s.WeightedRate)
	assert.Equal(t, "34.67%", s.SimpleRate.String())
	assert.True(t, s.TotalCapital.Equal(M(5000000, ARS)))
	assert.Equal(t, "14.67", s.AvgDays.StringFixed(2))
	assert.Zero(t, curve.Skipped)
}

func TestBuildTenorCurve_SingleOperation(t *testing.T) {
	op := tenorOp(14, 1234567.89, 37.25)
	curve := BuildTenorCurve([]FinancingOperation{op})
	require.Len(t, curve.Curve, 1)
	assert.True(t, curve.Curve[0].Rate.Equal(op.TNA))
	assert.True(t, curve.Spreads[0].AvgSpread.IsZero())
	assert.True(t, curve.Summary.SimpleRate.Equal(curve.Summary.WeightedRate))
}

func TestBuildTenorCurve_Skipped(t *testing.T) {
	usd := tenorOp(7, 100, 5)
	usd.Capital = M(100, "USD")
	curve := BuildTenorCurve([]FinancingOperation{
		tenorOp(7, 1000, 30),
		tenorOp(7, 0, 30),
		usd,
		{Capital: M(1000, ARS)}, // no tenor
	})
	assert.Equal(t, 3, curve.Skipped)
	assert.Equal(t, 1, curve.Summary.Count)
}

func TestBuildTenorCurve_Empty(t *testing.T) {
	curve := BuildTenorCurve(nil)
	assert.Empty(t, curve.Curve)
	assert.True(t, curve.Summary.WeightedRate.IsZero())
	assert.True(t, curve.Summary.AvgDays.Equal(decimal.Zero))
}
