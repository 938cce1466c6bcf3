package carry

import (
	"github.com/etnz/carry/date"
	"github.com/shopspring/decimal"
)

// PricePoint is one published share price (VCP) of a fund.
type PricePoint struct {
	Date  date.Date       `json:"fecha"`
	Price decimal.Decimal `json:"vcp"`
}

// LookupMode selects which published prices are visible from a given day.
type LookupMode int

const (
	// Inclusive sees the price published for the target day itself. It is used to value the end
	// of an interval that is already over: the closing price of that day exists.
	Inclusive LookupMode = iota
	// Strict only sees prices dated before the target day. Fund prices are published overnight,
	// so on the morning of a day the latest known price is the previous day's.
	Strict
)

func (m LookupMode) String() string {
	if m == Strict {
		return "strict"
	}
	return "inclusive"
}

// PriceSeries is a fund's share price history, sorted, with at most one price per day.
type PriceSeries struct {
	h date.History[decimal.Decimal]
}

// NewPriceSeries builds a series from points in any order. When a day appears twice the
// last occurrence wins.
func NewPriceSeries(points ...PricePoint) *PriceSeries {
	s := new(PriceSeries)
	for _, p := range points {
		s.Append(p)
	}
	return s
}

// Append adds or replaces the price of a day.
func (s *PriceSeries) Append(p PricePoint) { s.h.Append(p.Date, p.Price) }

// Len returns the number of days with a price.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return s.h.Len()
}

// Points returns the series as a sorted slice.
func (s *PriceSeries) Points() []PricePoint {
	if s == nil {
		return nil
	}
	points := make([]PricePoint, 0, s.h.Len())
	for on, price := range s.h.Values() {
		points = append(points, PricePoint{Date: on, Price: price})
	}
	return points
}

// Latest returns the most recent point, false for an empty series.
func (s *PriceSeries) Latest() (PricePoint, bool) {
	if s.Len() == 0 {
		return PricePoint{}, false
	}
	on, price := s.h.Latest()
	return PricePoint{Date: on, Price: price}, true
}

// Lookup returns the latest point visible from target under mode.
func (s *PriceSeries) Lookup(target date.Date, mode LookupMode) (PricePoint, bool) {
	if s == nil {
		return PricePoint{}, false
	}
	lookup := s.h.ValueAsOf
	if mode == Strict {
		lookup = s.h.ValueBefore
	}
	on, price, ok := lookup(target)
	if !ok {
		return PricePoint{}, false
	}
	return PricePoint{Date: on, Price: price}, true
}

// LookupPoint scans points, sorted ascending by date, for the latest one visible from target
// under mode. Unlike PriceSeries.Lookup it works on the caller's slice as is.
func LookupPoint(points []PricePoint, target date.Date, mode LookupMode) (PricePoint, bool) {
	var found PricePoint
	ok := false
	for _, p := range points {
		visible := !p.Date.After(target)
		if mode == Strict {
			visible = p.Date.Before(target)
		}
		if !visible {
			break
		}
		found, ok = p, true
	}
	return found, ok
}
