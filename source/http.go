package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/carry"
	"github.com/etnz/carry/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 2 // requests per second
)

// JSONPrices fetches fund prices from a JSON HTTP endpoint.
//
// The URL is a template: "{instrument}" and "{from}" (YYYY-MM-DD) are replaced. The response
// must contain, at Path, an array of objects with a date field and a price field.
type JSONPrices struct {
	url        string
	path       string
	dateField  string
	priceField string
	client     *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// Option configures a JSONPrices.
type Option func(*JSONPrices)

// WithPath sets the jsonpath of the array of prices, "$" by default.
func WithPath(path string) Option {
	return func(s *JSONPrices) { s.path = path }
}

// WithFields sets the names of the date and price fields, "fecha" and "vcp" by default.
func WithFields(dateField, priceField string) Option {
	return func(s *JSONPrices) { s.dateField, s.priceField = dateField, priceField }
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *JSONPrices) { s.client = client }
}

// WithRateLimit sets the maximum number of requests per second, no limit when it is not positive.
func WithRateLimit(requestsPerSecond int) Option {
	return func(s *JSONPrices) {
		limit := rate.Limit(requestsPerSecond)
		if requestsPerSecond <= 0 {
			limit = rate.Inf
		}
		s.limiter = rate.NewLimiter(limit, max(1, requestsPerSecond))
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *JSONPrices) { s.logger = logger }
}

// NewJSONPrices returns a price source reading the endpoint urlTemplate.
func NewJSONPrices(urlTemplate string, opts ...Option) *JSONPrices {
	s := &JSONPrices{
		url:        urlTemplate,
		path:       "$",
		dateField:  "fecha",
		priceField: "vcp",
		client:     &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PriceSeries implements PriceSource. Points dated before from are dropped.
func (s *JSONPrices) PriceSeries(ctx context.Context, instrument string, from date.Date) ([]carry.PricePoint, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	addr := strings.NewReplacer("{instrument}", url.PathEscape(instrument), "{from}", from.String()).Replace(s.url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		s.logger.Error().Err(err).Str("instrument", instrument).Dur("elapsed", elapsed).Msg("price request failed")
		return nil, fmt.Errorf("cannot http GET prices of %q: %w", instrument, err)
	}
	defer resp.Body.Close()
	s.logger.Debug().Str("instrument", instrument).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("price request")

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("prices of %q: %w", instrument, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}

	var jobj any
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&jobj); err != nil {
		return nil, fmt.Errorf("failed to decode prices of %q: %w", instrument, err)
	}
	points, err := s.extract(jobj)
	if err != nil {
		return nil, fmt.Errorf("prices of %q: %w", instrument, err)
	}

	kept := points[:0]
	for _, p := range points {
		if !p.Date.Before(from) {
			kept = append(kept, p)
		}
	}
	s.logger.Info().Str("instrument", instrument).Int("points", len(kept)).Msg("prices fetched")
	return kept, nil
}

// extract reads the points found at the configured path. Entries without a readable date or
// price are skipped.
func (s *JSONPrices) extract(jobj any) ([]carry.PricePoint, error) {
	jval, err := jsonpath.Get(s.path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %w", s.path, err)
	}
	list, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("error parsing %q: not an array", s.path)
	}

	points := make([]carry.PricePoint, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		day, ok := obj[s.dateField].(string)
		if !ok {
			continue
		}
		on, err := date.Parse(day)
		if err != nil {
			s.logger.Warn().Str("date", day).Msg("skipping price with invalid date")
			continue
		}
		price, ok := toDecimal(obj[s.priceField])
		if !ok {
			s.logger.Warn().Str("date", day).Msg("skipping invalid price")
			continue
		}
		points = append(points, carry.PricePoint{Date: on, Price: price})
	}
	return points, nil
}

// toDecimal reads a JSON number, or a number written as a string in either convention.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(x), true
	case string:
		d, err := carry.ParseNumber(x)
		return d, err == nil
	}
	return decimal.Zero, false
}
