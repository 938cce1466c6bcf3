package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/etnz/carry"
	"github.com/etnz/carry/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePrices fails the first failures calls, then returns points.
type fakePrices struct {
	calls    int
	failures int
	err      error
	points   []carry.PricePoint
}

func (f *fakePrices) PriceSeries(ctx context.Context, instrument string, from date.Date) ([]carry.PricePoint, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return f.points, nil
}

func newTestCachedPrices(src PriceSource) (*CachedPrices, *clock) {
	cache, clk := newTestCache(0)
	c := NewCachedPrices(src, cache, time.Hour, zerolog.Nop())
	c.initial = time.Millisecond
	return c, clk
}

var somePrices = []carry.PricePoint{{Date: date.New(2024, 1, 1), Price: decimal.NewFromInt(100)}}

func TestCachedPrices_Hit(t *testing.T) {
	src := &fakePrices{points: somePrices}
	c, clk := newTestCachedPrices(src)

	for range 3 {
		points, err := c.PriceSeries(context.Background(), "FCI", date.Date{})
		require.NoError(t, err)
		assert.Len(t, points, 1)
	}
	assert.Equal(t, 1, src.calls)

	clk.t = clk.t.Add(2 * time.Hour)
	_, err := c.PriceSeries(context.Background(), "FCI", date.Date{})
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls, "a stale entry is refreshed")
}

func TestCachedPrices_Retry(t *testing.T) {
	src := &fakePrices{failures: 2, err: errors.New("timeout"), points: somePrices}
	c, _ := newTestCachedPrices(src)

	points, err := c.PriceSeries(context.Background(), "FCI", date.Date{})
	require.NoError(t, err)
	assert.Len(t, points, 1)
	assert.Equal(t, 3, src.calls)
}

func TestCachedPrices_NotFoundIsNotRetried(t *testing.T) {
	src := &fakePrices{failures: 10, err: ErrNotFound}
	c, _ := newTestCachedPrices(src)

	_, err := c.PriceSeries(context.Background(), "FCI", date.Date{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, src.calls)
}

func TestCachedPrices_StaleOnFailure(t *testing.T) {
	src := &fakePrices{points: somePrices}
	c, clk := newTestCachedPrices(src)
	_, err := c.PriceSeries(context.Background(), "FCI", date.Date{})
	require.NoError(t, err)

	clk.t = clk.t.Add(2 * time.Hour)
	src.failures, src.err = 100, errors.New("down")
	points, err := c.PriceSeries(context.Background(), "FCI", date.Date{})
	require.NoError(t, err, "stale prices beat no prices")
	assert.Equal(t, somePrices, points)
	assert.Equal(t, 1+1+3, src.calls)
}
