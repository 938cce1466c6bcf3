package carry

import (
	"testing"

	"github.com/etnz/carry/date"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pp(day string, price float64) PricePoint {
	return PricePoint{Date: date.MustParse(day), Price: decimal.NewFromFloat(price)}
}

func TestLookup_StrictVersusInclusive(t *testing.T) {
	s := NewPriceSeries(pp("2024-01-01", 100), pp("2024-01-03", 101))

	got, ok := s.Lookup(date.MustParse("2024-01-03"), Inclusive)
	require.True(t, ok)
	assert.Equal(t, date.MustParse("2024-01-03"), got.Date)

	got, ok = s.Lookup(date.MustParse("2024-01-03"), Strict)
	require.True(t, ok)
	assert.Equal(t, date.MustParse("2024-01-01"), got.Date)

	got, ok = s.Lookup(date.MustParse("2024-01-02"), Inclusive)
	require.True(t, ok)
	assert.Equal(t, date.MustParse("2024-01-01"), got.Date, "gaps resolve to the previous price")
}

func TestLookup_NothingBefore(t *testing.T) {
	s := NewPriceSeries(pp("2024-01-01", 100))

	_, ok := s.Lookup(date.MustParse("2024-01-01"), Strict)
	assert.False(t, ok)
	_, ok = s.Lookup(date.MustParse("2023-12-31"), Inclusive)
	assert.False(t, ok)

	var empty *PriceSeries
	_, ok = empty.Lookup(date.MustParse("2024-01-01"), Inclusive)
	assert.False(t, ok)
	assert.Equal(t, 0, empty.Len())
}

func TestLookup_Monotonic(t *testing.T) {
	s := NewPriceSeries(pp("2024-01-05", 3), pp("2024-01-01", 1), pp("2024-01-03", 2), pp("2024-01-09", 4))
	for _, mode := range []LookupMode{Inclusive, Strict} {
		var last date.Date
		for day := range (date.Range{From: date.MustParse("2024-01-01"), To: date.MustParse("2024-01-12")}).Days() {
			p, ok := s.Lookup(day, mode)
			if !ok {
				continue
			}
			assert.False(t, p.Date.Before(last), "%s lookup of %s went back to %s", mode, day, p.Date)
			assert.False(t, p.Date.After(day))
			last = p.Date
		}
	}
}

func TestNewPriceSeries_LastWins(t *testing.T) {
	s := NewPriceSeries(pp("2024-01-02", 2), pp("2024-01-01", 1), pp("2024-01-02", 5))
	require.Equal(t, 2, s.Len())
	points := s.Points()
	assert.Equal(t, date.MustParse("2024-01-01"), points[0].Date)
	assert.True(t, decimal.NewFromInt(5).Equal(points[1].Price))

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, date.MustParse("2024-01-02"), latest.Date)
}

func TestLookupPoint(t *testing.T) {
	points := []PricePoint{pp("2024-01-01", 100), pp("2024-01-03", 101)}

	p, ok := LookupPoint(points, date.MustParse("2024-01-03"), Inclusive)
	require.True(t, ok)
	assert.Equal(t, date.MustParse("2024-01-03"), p.Date)

	p, ok = LookupPoint(points, date.MustParse("2024-01-03"), Strict)
	require.True(t, ok)
	assert.Equal(t, date.MustParse("2024-01-01"), p.Date)

	_, ok = LookupPoint(nil, date.MustParse("2024-01-03"), Inclusive)
	assert.False(t, ok)
}
