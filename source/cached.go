package source

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/etnz/carry"
	"github.com/etnz/carry/date"
	"github.com/rs/zerolog"
)

// CachedPrices serves a PriceSource through a Cache. Fetches are retried with an exponential
// backoff, and when they still fail a stale cached series is served instead of the error.
type CachedPrices struct {
	src     PriceSource
	cache   *Cache
	ttl     time.Duration
	retries uint64
	initial time.Duration
	logger  zerolog.Logger
}

// NewCachedPrices wraps src. Series stay fresh for ttl.
func NewCachedPrices(src PriceSource, cache *Cache, ttl time.Duration, logger zerolog.Logger) *CachedPrices {
	return &CachedPrices{src: src, cache: cache, ttl: ttl, retries: 3, initial: 500 * time.Millisecond, logger: logger}
}

func pricesKey(instrument string, from date.Date) string { return "prices|" + instrument + "|" + from.String() }

// PriceSeries implements PriceSource.
func (c *CachedPrices) PriceSeries(ctx context.Context, instrument string, from date.Date) ([]carry.PricePoint, error) {
	key := pricesKey(instrument, from)
	cached, hit := c.cache.Get(key)
	if hit && !c.cache.IsStale(key) {
		c.logger.Debug().Str("instrument", instrument).Msg("prices cache hit")
		return cached.([]carry.PricePoint), nil
	}

	var points []carry.PricePoint
	fetch := func() error {
		var err error
		points, err = c.src.PriceSeries(ctx, instrument, from)
		if errors.Is(err, ErrNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initial
	notify := func(err error, wait time.Duration) {
		c.logger.Warn().Err(err).Str("instrument", instrument).Dur("retry_in", wait).Msg("price fetch failed")
	}
	err := backoff.RetryNotify(fetch, backoff.WithContext(backoff.WithMaxRetries(b, c.retries), ctx), notify)
	if err != nil {
		if hit {
			c.logger.Warn().Err(err).Str("instrument", instrument).Msg("serving stale prices")
			return cached.([]carry.PricePoint), nil
		}
		return nil, err
	}
	c.cache.Set(key, points, c.ttl)
	return points, nil
}
