package carry

import (
	"slices"

	"github.com/shopspring/decimal"
)

// TenorBucket aggregates the operations sharing the same exact tenor.
type TenorBucket struct {
	Tenor          int
	Count          int
	TotalCapital   Money
	TotalRepayable Money
	TotalInterest  Money
	// Rate is the capital-weighted TNA of the bucket: Σ(capital × rate) / Σ capital.
	Rate Rate
}

// TenorSpread is the mean deviation of the bucket's operations from the bucket rate.
// A bucket where big operations got better rates than small ones has a non zero AvgSpread.
type TenorSpread struct {
	Tenor     int
	AvgSpread Rate
}

// CurveSummary describes all the operations of a curve at once.
type CurveSummary struct {
	Count          int
	TotalCapital   Money
	TotalRepayable Money
	TotalInterest  Money
	SimpleRate     Rate            // unweighted mean of the operation rates
	WeightedRate   Rate            // capital-weighted mean of the operation rates
	AvgDays        decimal.Decimal // mean tenor
}

// TenorCurve is the financing rate as a function of the tenor.
type TenorCurve struct {
	Curve   []TenorBucket // sorted by tenor
	Spreads []TenorSpread // same order as Curve
	Summary CurveSummary
	// Skipped counts operations left out: no capital, no tenor, or a currency other than the
	// first operation's. A recorded tenor of zero is a tenor.
	Skipped int
}

// tenorAcc holds the sums needed by both the curve and the spread table.
type tenorAcc struct {
	count            int
	capital          decimal.Decimal
	repayable        decimal.Decimal
	interest         decimal.Decimal
	capitalTimesRate decimal.Decimal
	rates            decimal.Decimal // Σ rate, for the mean deviation
}

// BuildTenorCurve groups ops by exact tenor in a single pass.
//
// The mean deviation of a bucket, mean(rate_i - curveRate), equals mean(rate_i) - curveRate,
// so the spread table comes from the same sums as the curve.
func BuildTenorCurve(ops []FinancingOperation) TenorCurve {
	var curve TenorCurve
	buckets := make(map[int]*tenorAcc)
	var all tenorAcc
	var days int64
	currency := ""

	for _, op := range ops {
		op = op.Normalize()
		tenor := op.Days()
		if !op.Capital.IsPositive() || tenor < 0 || (tenor == 0 && !op.Recorded) {
			curve.Skipped++
			continue
		}
		if currency == "" {
			currency = op.Capital.Currency()
		}
		if op.Capital.Currency() != currency {
			curve.Skipped++
			continue
		}
		b, ok := buckets[tenor]
		if !ok {
			b = new(tenorAcc)
			buckets[tenor] = b
		}
		rate := op.Rate().value
		for _, acc := range []*tenorAcc{b, &all} {
			acc.count++
			acc.capital = acc.capital.Add(op.Capital.value)
			acc.repayable = acc.repayable.Add(op.Repayable.value)
			acc.interest = acc.interest.Add(op.Interest.value)
			acc.capitalTimesRate = acc.capitalTimesRate.Add(op.Capital.value.Mul(rate))
			acc.rates = acc.rates.Add(rate)
		}
		days += int64(tenor)
	}

	tenors := make([]int, 0, len(buckets))
	for t := range buckets {
		tenors = append(tenors, t)
	}
	slices.Sort(tenors)

	for _, t := range tenors {
		b := buckets[t]
		rate := quo(b.capitalTimesRate, b.capital)
		curve.Curve = append(curve.Curve, TenorBucket{
			Tenor:          t,
			Count:          b.count,
			TotalCapital:   M(b.capital, currency),
			TotalRepayable: M(b.repayable, currency),
			TotalInterest:  M(b.interest, currency),
			Rate:           Rate{value: rate},
		})
		mean := quo(b.rates, decimal.NewFromInt(int64(b.count)))
		curve.Spreads = append(curve.Spreads, TenorSpread{Tenor: t, AvgSpread: Rate{value: mean.Sub(rate)}})
	}

	curve.Summary = CurveSummary{
		Count:          all.count,
		TotalCapital:   M(all.capital, currency),
		TotalRepayable: M(all.repayable, currency),
		TotalInterest:  M(all.interest, currency),
		SimpleRate:     Rate{value: quo(all.rates, decimal.NewFromInt(int64(all.count)))},
		WeightedRate:   Rate{value: quo(all.capitalTimesRate, all.capital)},
		AvgDays:        quo(decimal.NewFromInt(days), decimal.NewFromInt(int64(all.count))),
	}
	return curve
}
