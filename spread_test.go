package carry

import (
	"testing"

	"github.com/etnz/carry/date"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linearPrices returns daily prices from 2024-01-01 at 100, growing by 0.1 each day up to 2024-01-10.
func linearPrices() *PriceSeries {
	s := new(PriceSeries)
	for i := 0; i < 10; i++ {
		s.Append(PricePoint{Date: date.New(2024, 1, 1+i), Price: decimal.NewFromInt(int64(1000 + i)).Shift(-1)})
	}
	return s
}

func caucion(start, end string, capital, interest float64) FinancingOperation {
	return FinancingOperation{
		Start:    date.MustParse(start),
		End:      date.MustParse(end),
		Capital:  M(capital, ARS),
		Interest: M(interest, ARS),
	}
}

func TestComputeSpread_Matured(t *testing.T) {
	op := caucion("2024-01-02", "2024-01-09", 1000000, 15000)
	r, ok := ComputeSpread(op, linearPrices(), TNAEstimate{Rate: Pct(32)}, date.New(2024, 1, 10))
	require.True(t, ok)

	assert.Equal(t, Matured, r.Status)
	assert.Equal(t, date.New(2024, 1, 1), r.StartPrice.Date, "start uses the price published before the start day")
	assert.Equal(t, date.New(2024, 1, 9), r.EndPrice.Date)
	// 1,000,000 × (100.8/100 - 1)
	assert.Equal(t, "8000.00", r.RealizedGain.Decimal().StringFixed(2))
	assert.True(t, r.ProjectedGain.IsZero())
	assert.False(t, r.Projected)
	assert.Equal(t, "-7000.00", r.Spread.Decimal().StringFixed(2))
	assert.True(t, r.Spread.IsNegative())
	assert.True(t, r.SpreadRate.Equal(Pct(-0.7)), "spread rate %s", r.SpreadRate)
	assert.Equal(t, 7, r.TotalDays)
}

func TestComputeSpread_Active(t *testing.T) {
	op := caucion("2024-01-02", "2024-01-09", 1000000, 15000)
	r, ok := ComputeSpread(op, linearPrices(), TNAEstimate{Rate: Pct(32)}, date.New(2024, 1, 5))
	require.True(t, ok)

	assert.Equal(t, Active, r.Status)
	assert.Equal(t, date.New(2024, 1, 4), r.NowPrice.Date)
	assert.Equal(t, "3000.00", r.RealizedGain.Decimal().StringFixed(2))
	assert.Equal(t, 4, r.RemainingDays)
	assert.True(t, r.Projected)
	// 1,000,000 × (1.32^(4/365) - 1)
	assert.InDelta(t, 3047.17, r.ProjectedGain.InexactFloat64(), 0.5)
	assert.True(t, r.TotalGain.Equal(r.RealizedGain.Add(r.ProjectedGain)))
	assert.True(t, r.Spread.Equal(r.TotalGain.Sub(M(15000, ARS))))
}

func TestComputeSpread_ActiveWithoutElapsedPrice(t *testing.T) {
	op := caucion("2024-01-02", "2024-01-09", 1000000, 15000)
	r, ok := ComputeSpread(op, linearPrices(), TNAEstimate{Rate: Pct(32)}, date.New(2024, 1, 3))
	require.True(t, ok)
	assert.Equal(t, date.New(2024, 1, 2), r.NowPrice.Date)
	assert.True(t, r.RealizedGain.IsZero(), "nothing is earned before a price after the start is published")
}

func TestComputeSpread_NoProjectionWithoutYield(t *testing.T) {
	op := caucion("2024-01-02", "2024-01-09", 1000000, 15000)
	r, ok := ComputeSpread(op, linearPrices(), TNAEstimate{}, date.New(2024, 1, 5))
	require.True(t, ok)
	assert.False(t, r.Projected)
	assert.True(t, r.ProjectedGain.IsZero())

	// the end day itself: nothing remains.
	r, ok = ComputeSpread(op, linearPrices(), TNAEstimate{Rate: Pct(32)}, date.New(2024, 1, 9))
	require.True(t, ok)
	assert.Equal(t, Active, r.Status)
	assert.Equal(t, 0, r.RemainingDays)
	assert.False(t, r.Projected)
}

func TestComputeSpread_Excluded(t *testing.T) {
	prices := linearPrices()
	now := date.New(2024, 1, 10)
	tests := []struct {
		name   string
		op     FinancingOperation
		prices *PriceSeries
	}{
		{"no price before start", caucion("2024-01-01", "2024-01-05", 1000, 10), prices},
		{"no capital", caucion("2024-01-03", "2024-01-05", 0, 10), prices},
		{"empty series", caucion("2024-01-03", "2024-01-05", 1000, 10), new(PriceSeries)},
		{"zero start price", caucion("2024-01-03", "2024-01-05", 1000, 10), NewPriceSeries(pp("2024-01-02", 0), pp("2024-01-04", 1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ComputeSpread(tt.op, tt.prices, TNAEstimate{Rate: Pct(32)}, now)
			assert.False(t, ok)
		})
	}
}

func TestNewSpreadReport(t *testing.T) {
	ops := []FinancingOperation{
		caucion("2024-01-01", "2024-01-05", 500000, 1000), // no price before its start
		caucion("2024-01-02", "2024-01-09", 1000000, 15000),
		caucion("2024-01-03", "2024-01-08", 1000000, 1000),
	}
	report := NewSpreadReport(ops, linearPrices(), date.New(2024, 1, 10))

	require.Len(t, report.Results, 2)
	assert.Equal(t, date.New(2024, 1, 3), report.Results[0].Operation.Start, "most recent first")
	assert.False(t, report.TNA.IsFallback)

	totals := report.Totals
	assert.Equal(t, 2, totals.Count)
	assert.Equal(t, 2, totals.Matured)
	assert.Equal(t, 1, totals.Excluded)
	assert.True(t, totals.Capital.Equal(M(2000000, ARS)), "excluded capital is not summed: %s", totals.Capital)
	assert.True(t, totals.FinancingCost.Equal(M(16000, ARS)))
	assert.True(t, totals.Spread.Equal(totals.FundGain.Sub(totals.FinancingCost)))
	// equal capitals: the weighted rate is the plain mean.
	mean := report.Results[0].SpreadRate.Add(report.Results[1].SpreadRate).Decimal().Div(R(2).Decimal())
	assert.InDelta(t, mean.InexactFloat64(), totals.WeightedSpreadRate.InexactFloat64(), 1e-12)
}

func TestFinancingOperation(t *testing.T) {
	op := caucion("2024-01-02", "2024-01-09", 1000000, 0)
	op.Repayable = M(1006000, ARS)
	op.TNA = Pct(32)
	op = op.Normalize()

	assert.True(t, op.Interest.Equal(M(6000, ARS)))
	assert.Equal(t, 7, op.Days())
	assert.Equal(t, "2024-01-02 | $1.000.000 | 32.00%", op.Label())
	assert.Equal(t, Active, op.StatusOn(date.New(2024, 1, 9)))
	assert.Equal(t, Matured, op.StatusOn(date.New(2024, 1, 10)))

	op.TNA = Rate{}
	// 0.6% over 7 days
	assert.InDelta(t, 0.006*365/7, op.Rate().InexactFloat64(), 1e-12)
}

func TestNewSpreadReport_MixedCurrencies(t *testing.T) {
	usd := caucion("2024-01-03", "2024-01-08", 1000, 5)
	usd.Capital, usd.Interest = M(1000, "USD"), M(5, "USD")
	ops := []FinancingOperation{
		caucion("2024-01-02", "2024-01-09", 1000000, 15000),
		usd,
	}

	var report SpreadReport
	require.NotPanics(t, func() { report = NewSpreadReport(ops, linearPrices(), date.New(2024, 1, 10)) })
	require.Len(t, report.Results, 1)
	assert.Equal(t, ARS, report.Results[0].Operation.Capital.Currency())
	assert.Equal(t, 1, report.Totals.Count)
	assert.Equal(t, 1, report.Totals.Excluded, "the operation in another currency is left out")
	assert.True(t, report.Totals.Capital.Equal(M(1000000, ARS)))
}

func TestTotalSpreads_MixedCurrencies(t *testing.T) {
	prices := linearPrices()
	now := date.New(2024, 1, 10)
	ars, ok := ComputeSpread(caucion("2024-01-02", "2024-01-09", 1000000, 15000), prices, TNAEstimate{}, now)
	require.True(t, ok)
	usd := caucion("2024-01-03", "2024-01-08", 1000, 5)
	usd.Capital, usd.Interest = M(1000, "USD"), M(5, "USD")
	other, ok := ComputeSpread(usd, prices, TNAEstimate{}, now)
	require.True(t, ok)

	var totals SpreadTotals
	require.NotPanics(t, func() { totals = TotalSpreads([]SpreadResult{ars, other}) })
	assert.Equal(t, 1, totals.Count)
	assert.Equal(t, 1, totals.Excluded)
	assert.True(t, totals.Spread.Equal(ars.Spread))
}
