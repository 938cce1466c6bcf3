package carry

import (
	"math"
	"slices"

	"github.com/etnz/carry/date"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// RateDay compares, on one day, the fund yield with the cost of the cauciones running that day.
type RateDay struct {
	Date date.Date

	Fund    Rate // fund TNA, mean of the pair rates of the last TNAWindow days
	HasFund bool

	Financing    Rate // capital-weighted TNA of the operations running that day
	HasFinancing bool

	Spread    Rate // Fund - Financing, set when both are known
	HasSpread bool
}

// HistoricalRates returns one RateDay for each day of r that has a fund or a financing rate.
//
// The financing rate of a day with no running operation is the rate of the operation that ended
// most recently: the position would have been rolled at about that rate.
func HistoricalRates(prices *PriceSeries, ops []FinancingOperation, r date.Range) []RateDay {
	pairs := PairRates(prices)
	normalized := make([]FinancingOperation, 0, len(ops))
	for _, op := range ops {
		op = op.Normalize()
		if op.Capital.IsPositive() && !op.Start.IsZero() && !op.End.IsZero() {
			normalized = append(normalized, op)
		}
	}
	// most recent end first, for the fallback.
	slices.SortStableFunc(normalized, func(a, b FinancingOperation) int { return date.Compare(b.End, a.End) })

	var days []RateDay
	for day := range r.Days() {
		d := RateDay{Date: day}
		d.Fund, d.HasFund = fundRateOn(pairs, day)
		d.Financing, d.HasFinancing = financingRateOn(normalized, day)
		if d.HasFund && d.HasFinancing {
			d.Spread, d.HasSpread = d.Fund.Sub(d.Financing), true
		}
		if d.HasFund || d.HasFinancing {
			days = append(days, d)
		}
	}
	return days
}

// fundRateOn averages the pair rates dated in the TNAWindow days ending on day.
func fundRateOn(pairs []RatePoint, day date.Date) (Rate, bool) {
	window := date.Last(day, TNAWindow)
	var sum Rate
	n := 0
	for _, p := range pairs {
		if p.Date.After(day) {
			break
		}
		if window.Contains(p.Date) {
			sum = sum.Add(p.Rate)
			n++
		}
	}
	if n == 0 {
		return Rate{}, false
	}
	return meanRate(sum, n), true
}

// financingRateOn expects ops sorted by end date, most recent first.
func financingRateOn(ops []FinancingOperation, day date.Date) (Rate, bool) {
	var capital, weighted decimal.Decimal
	for _, op := range ops {
		if op.Start.After(day) || op.End.Before(day) {
			continue
		}
		capital = capital.Add(op.Capital.value)
		weighted = weighted.Add(op.Capital.value.Mul(op.Rate().value))
	}
	if capital.IsPositive() {
		return Rate{value: quo(weighted, capital)}, true
	}
	for _, op := range ops {
		if op.End.Before(day) {
			return op.Rate(), true
		}
	}
	return Rate{}, false
}

// RateStats summarizes the spread history.
type RateStats struct {
	Count   int
	Mean    Rate
	StdDev  Rate
	Min     RatePoint
	Max     RatePoint
	Current RatePoint // last day with a spread
	// Percentile is the share of days, in percent, whose spread is lower than or equal to
	// Current.
	Percentile int
}

// NewRateStats computes statistics over the days that have a spread. It returns false when
// there is none.
func NewRateStats(days []RateDay) (RateStats, bool) {
	var s RateStats
	var sum Rate
	var values []float64
	for _, d := range days {
		if !d.HasSpread {
			continue
		}
		p := RatePoint{Date: d.Date, Rate: d.Spread}
		if s.Count == 0 || p.Rate.GreaterThan(s.Max.Rate) {
			s.Max = p
		}
		if s.Count == 0 || p.Rate.LessThan(s.Min.Rate) {
			s.Min = p
		}
		s.Current = p
		s.Count++
		sum = sum.Add(p.Rate)
		values = append(values, p.Rate.InexactFloat64())
	}
	if s.Count == 0 {
		return s, false
	}
	s.Mean = meanRate(sum, s.Count)
	if len(values) > 1 {
		s.StdDev = R(stat.StdDev(values, nil))
	}
	slices.Sort(values)
	// the empirical CDF does not need Current to be one of the sorted values bit for bit.
	cdf := stat.CDF(s.Current.Rate.InexactFloat64(), stat.Empirical, values, nil)
	s.Percentile = int(math.Round(cdf * 100))
	return s, true
}
