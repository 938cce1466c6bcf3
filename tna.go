package carry

import (
	"github.com/etnz/carry/date"
	"github.com/shopspring/decimal"
)

const (
	// TNAWindow is the number of pair rates averaged by the TNA estimator.
	TNAWindow = 7
	// DaysPerYear is the annualization basis of every rate.
	DaysPerYear = 365
)

var (
	// FallbackTNA is used when the price history cannot support an estimate.
	FallbackTNA = Pct(32)

	minSaneTNA = Pct(-50)
	maxSaneTNA = Pct(200)
)

// RatePoint is an annual rate observed on a day.
type RatePoint struct {
	Date date.Date
	Rate Rate
}

// TNAEstimate is the smoothed annual yield of a fund.
type TNAEstimate struct {
	Rate       Rate
	IsFallback bool   // Rate is FallbackTNA, not derived from prices
	Reason     string // why the fallback was used
	Samples    int    // number of pair rates behind the estimate
	AsOf       date.Date
}

// PairRates returns, for each pair of consecutive prices, the compounded annual rate
// (curr/prev)^(365/days) - 1 dated on the later price. Pairs with a zero previous price are skipped.
func PairRates(s *PriceSeries) []RatePoint {
	points := s.Points()
	if len(points) < 2 {
		return nil
	}
	rates := make([]RatePoint, 0, len(points)-1)
	year := decimal.NewFromInt(DaysPerYear)
	for i := 1; i < len(points); i++ {
		prev, curr := points[i-1], points[i]
		days := curr.Date.Sub(prev.Date)
		if days <= 0 || prev.Price.IsZero() {
			continue
		}
		growth, ok := pow(quo(curr.Price, prev.Price), quo(year, decimal.NewFromInt(int64(days))))
		if !ok {
			continue
		}
		rates = append(rates, RatePoint{Date: curr.Date, Rate: Rate{value: growth.Sub(decimal.NewFromInt(1))}})
	}
	return rates
}

// MovingAverage smooths rates with a trailing window: each point becomes the mean of itself and
// up to window-1 preceding points.
func MovingAverage(rates []RatePoint, window int) []RatePoint {
	if window < 1 {
		window = 1
	}
	smoothed := make([]RatePoint, len(rates))
	var sum Rate
	for i, r := range rates {
		sum = sum.Add(r.Rate)
		if i >= window {
			sum = sum.Sub(rates[i-window].Rate)
		}
		n := min(i+1, window)
		smoothed[i] = RatePoint{Date: r.Date, Rate: meanRate(sum, n)}
	}
	return smoothed
}

// EstimateTNA returns the fund's annual yield: the 7-pair moving average of PairRates at the
// latest price. Short histories and estimates outside [-50%, 200%] fall back to FallbackTNA.
func EstimateTNA(s *PriceSeries) TNAEstimate {
	fallback := func(reason string, samples int) TNAEstimate {
		return TNAEstimate{Rate: FallbackTNA, IsFallback: true, Reason: reason, Samples: samples}
	}
	if s.Len() < 2 {
		return fallback("fewer than 2 prices", 0)
	}
	rates := PairRates(s)
	if len(rates) == 0 {
		return fallback("no usable price pair", 0)
	}
	smoothed := MovingAverage(rates, TNAWindow)
	last := smoothed[len(smoothed)-1]
	if last.Rate.LessThan(minSaneTNA) || last.Rate.GreaterThan(maxSaneTNA) {
		return fallback("estimate "+last.Rate.String()+" out of range", len(rates))
	}
	return TNAEstimate{Rate: last.Rate, Samples: min(len(rates), TNAWindow), AsOf: last.Date}
}

// DailyRate converts an annual rate into its compounded daily equivalent (1+tna)^(1/365) - 1.
func DailyRate(tna Rate) Rate {
	growth, ok := pow(decimal.NewFromInt(1).Add(tna.value), quo(decimal.NewFromInt(1), decimal.NewFromInt(DaysPerYear)))
	if !ok {
		return Rate{}
	}
	return Rate{value: growth.Sub(decimal.NewFromInt(1))}
}
