package carry

import (
	"slices"

	"github.com/etnz/carry/date"
	"github.com/shopspring/decimal"
)

// SpreadResult compares a caución's cost with what its capital earned, or is expected to earn,
// in the fund over the same window.
type SpreadResult struct {
	Operation FinancingOperation
	Status    Status

	StartPrice PricePoint // last price published before Start
	EndPrice   PricePoint // price of End, matured operations only
	NowPrice   PricePoint // last price published before now, active operations only

	RealizedGain  Money // fund gain over the elapsed part of the window
	ProjectedGain Money // fund gain expected over the remaining days, zero when matured
	TotalGain     Money
	FinancingCost Money // the operation's interest
	Spread        Money // TotalGain - FinancingCost
	SpreadRate    Rate  // TotalGain/Capital - FinancingCost/Capital

	// Projected is true when part of TotalGain is an estimate.
	Projected     bool
	RemainingDays int
	TotalDays     int
	TNA           Rate // estimate used for the projection
	TNAFallback   bool // TNA is the fallback constant
}

// realizedGain is capital × (end/start - 1).
func realizedGain(capital Money, start, end decimal.Decimal) Money {
	return M(capital.value.Mul(quo(end, start).Sub(decimal.NewFromInt(1))), capital.cur)
}

// ProjectedGain compounds capital over days at the daily equivalent of tna.
// It is zero when days or tna is not positive.
func ProjectedGain(capital Money, tna Rate, days int) Money {
	zero := M(0, capital.Currency())
	if days <= 0 || !tna.IsPositive() {
		return zero
	}
	growth, ok := pow(decimal.NewFromInt(1).Add(DailyRate(tna).value), decimal.NewFromInt(int64(days)))
	if !ok {
		return zero
	}
	return M(capital.value.Mul(growth.Sub(decimal.NewFromInt(1))), capital.cur)
}

// ComputeSpread evaluates op against the fund prices as seen on now.
//
// It returns false when the operation cannot be evaluated: no capital, or no usable price for a
// required day. Such operations carry no information and must be left out of aggregates,
// they are not a zero spread.
func ComputeSpread(op FinancingOperation, prices *PriceSeries, tna TNAEstimate, now date.Date) (SpreadResult, bool) {
	op = op.Normalize()
	if !op.Capital.IsPositive() || prices.Len() == 0 {
		return SpreadResult{}, false
	}
	start, ok := prices.Lookup(op.Start, Strict)
	if !ok || start.Price.IsZero() {
		return SpreadResult{}, false
	}

	r := SpreadResult{
		Operation:     op,
		Status:        op.StatusOn(now),
		StartPrice:    start,
		FinancingCost: op.Interest,
		TotalDays:     op.End.Sub(op.Start),
		TNA:           tna.Rate,
		TNAFallback:   tna.IsFallback,
		ProjectedGain: M(0, op.Capital.Currency()),
	}

	switch r.Status {
	case Matured:
		end, ok := prices.Lookup(op.End, Inclusive)
		if !ok || end.Price.IsZero() {
			return SpreadResult{}, false
		}
		r.EndPrice = end
		r.RealizedGain = realizedGain(op.Capital, start.Price, end.Price)

	case Active:
		current, ok := prices.Lookup(now, Strict)
		if !ok || current.Price.IsZero() {
			return SpreadResult{}, false
		}
		r.NowPrice = current
		// no price after the start is published yet: nothing has been earned.
		r.RealizedGain = M(0, op.Capital.Currency())
		if current.Date.After(op.Start) {
			r.RealizedGain = realizedGain(op.Capital, start.Price, current.Price)
		}
		r.RemainingDays = max(0, op.End.Sub(now))
		r.ProjectedGain = ProjectedGain(op.Capital, tna.Rate, r.RemainingDays)
		r.Projected = r.RemainingDays > 0 && tna.Rate.IsPositive()
	}

	r.TotalGain = r.RealizedGain.Add(r.ProjectedGain)
	r.Spread = r.TotalGain.Sub(op.Interest)
	r.SpreadRate = r.TotalGain.Ratio(op.Capital).Sub(op.Interest.Ratio(op.Capital))
	return r, true
}

// ComputeSpreads evaluates every operation, drops the ones that cannot be evaluated and sorts
// the rest by start date, most recent first.
//
// Results are in the currency of the first evaluated operation, operations in another currency
// are dropped too.
func ComputeSpreads(ops []FinancingOperation, prices *PriceSeries, tna TNAEstimate, now date.Date) []SpreadResult {
	results := make([]SpreadResult, 0, len(ops))
	currency := ""
	for _, op := range ops {
		r, ok := ComputeSpread(op, prices, tna, now)
		if !ok {
			continue
		}
		if currency == "" {
			currency = r.Operation.Capital.Currency()
		}
		if r.Operation.Capital.Currency() != currency {
			continue
		}
		results = append(results, r)
	}
	slices.SortStableFunc(results, func(a, b SpreadResult) int {
		return date.Compare(b.Operation.Start, a.Operation.Start)
	})
	return results
}

// SpreadTotals aggregates the evaluated operations.
type SpreadTotals struct {
	Count    int
	Matured  int
	Active   int
	Excluded int // operations left out: no usable price, no capital or another currency

	Capital       Money
	FundGain      Money
	FinancingCost Money
	Spread        Money
	// WeightedSpreadRate is Σ(capital × spread rate) / Σ capital.
	WeightedSpreadRate Rate
}

// TotalSpreads sums results. Only evaluated operations take part, so averages are over them.
// Results in a currency other than the first one are counted as Excluded.
func TotalSpreads(results []SpreadResult) SpreadTotals {
	var t SpreadTotals
	var weighted decimal.Decimal
	currency := ""
	for _, r := range results {
		if currency == "" {
			currency = r.Operation.Capital.Currency()
		}
		if r.Operation.Capital.Currency() != currency {
			t.Excluded++
			continue
		}
		t.Count++
		if r.Status == Matured {
			t.Matured++
		} else {
			t.Active++
		}
		t.Capital = t.Capital.Add(r.Operation.Capital)
		t.FundGain = t.FundGain.Add(r.TotalGain)
		t.FinancingCost = t.FinancingCost.Add(r.FinancingCost)
		t.Spread = t.Spread.Add(r.Spread)
		weighted = weighted.Add(r.Operation.Capital.value.Mul(r.SpreadRate.value))
	}
	if t.Capital.IsPositive() {
		t.WeightedSpreadRate = Rate{value: quo(weighted, t.Capital.value)}
	}
	return t
}

// SpreadReport is the evaluation of a set of operations against one fund.
type SpreadReport struct {
	On      date.Date
	TNA     TNAEstimate
	Results []SpreadResult
	Totals  SpreadTotals
}

// NewSpreadReport estimates the fund TNA from prices and evaluates ops on now.
func NewSpreadReport(ops []FinancingOperation, prices *PriceSeries, now date.Date) SpreadReport {
	tna := EstimateTNA(prices)
	results := ComputeSpreads(ops, prices, tna, now)
	totals := TotalSpreads(results)
	totals.Excluded += len(ops) - len(results)
	return SpreadReport{On: now, TNA: tna, Results: results, Totals: totals}
}
