// Package cmd implements the cts command line application: carry trade reports over a data
// folder of trades, cauciones and fund prices.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/carry"
	"github.com/etnz/carry/date"
	"github.com/etnz/carry/source"
	"github.com/rs/zerolog"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile = flag.String("config", "cts.toml", "Path to the TOML configuration file")
	dataDir    = flag.String("data", "", "Data folder, overrides data_dir")
	logLevel   = flag.String("log-level", "", "Log level (debug, info, warn, error), overrides logging.level")
	plain      = flag.Bool("plain", false, "Print raw markdown instead of rendering it for the terminal")
)

// app is what a command needs: the resolved configuration and the data sources.
type app struct {
	cfg    *Config
	logger zerolog.Logger
	files  *source.Files
	prices source.PriceSource
}

// newApp loads the configuration, applies the global flags and opens the sources.
func newApp() (*app, error) {
	cfg, err := LoadConfig(*configFile)
	if err != nil {
		return nil, err
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	return newAppWithConfig(cfg, NewLogger(cfg.Logging.Level, os.Stderr)), nil
}

// newAppWithConfig opens the sources described by cfg.
func newAppWithConfig(cfg *Config, logger zerolog.Logger) *app {
	a := &app{cfg: cfg, logger: logger, files: source.NewFiles(cfg.DataDir, logger)}
	if cfg.Prices.URL == "" {
		a.prices = a.files
		return a
	}
	var transport http.RoundTripper = http.DefaultTransport
	if cfg.Prices.CacheDir != "" {
		transport = source.NewDailyCache(cfg.Prices.CacheDir, nil, logger)
	}
	remote := source.NewJSONPrices(cfg.Prices.URL,
		source.WithPath(cfg.Prices.Path),
		source.WithFields(cfg.Prices.DateField, cfg.Prices.PriceField),
		source.WithRateLimit(cfg.Prices.RateLimit),
		source.WithHTTPClient(&http.Client{Timeout: cfg.Prices.GetTimeout(), Transport: transport}),
		source.WithLogger(logger),
	)
	a.prices = source.NewCachedPrices(remote, source.NewCache(24*time.Hour), cfg.Prices.GetCacheTTL(), logger)
	return a
}

// priceSeries returns the prices of instrument published from the day on. An unknown instrument
// has an empty series.
func (a *app) priceSeries(ctx context.Context, instrument string, from date.Date) (*carry.PriceSeries, error) {
	points, err := a.prices.PriceSeries(ctx, instrument, from)
	if errors.Is(err, source.ErrNotFound) {
		a.logger.Warn().Str("instrument", instrument).Msg("no price for instrument")
		return carry.NewPriceSeries(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading prices of %s: %w", instrument, err)
	}
	a.logger.Debug().Str("instrument", instrument).Int("points", len(points)).Msg("prices loaded")
	return carry.NewPriceSeries(points...), nil
}

// portfolio returns p, or the configured portfolio when p is empty.
func (a *app) portfolio(p string) string {
	if p == "" {
		return a.cfg.Portfolio
	}
	return p
}

// instrument returns i, or the configured instrument when i is empty.
func (a *app) instrument(i string) string {
	if i == "" {
		return a.cfg.Instrument
	}
	return i
}

// printMarkdown prints md to the terminal.
func printMarkdown(md string) {
	if *plain {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// parseDate parses a date flag, an empty value is today.
func parseDate(s string) (date.Date, error) {
	if s == "" {
		return date.Today(), nil
	}
	return date.Parse(s)
}

// operations returns the cauciones of portfolio. A portfolio without cauciones has none.
func (a *app) operations(ctx context.Context, portfolio string) ([]carry.FinancingOperation, error) {
	ops, err := a.files.FinancingOperations(ctx, portfolio)
	if errors.Is(err, source.ErrNotFound) {
		a.logger.Warn().Str("portfolio", portfolio).Msg("no caución recorded")
		return nil, nil
	}
	return ops, err
}

// until returns the points of s published on or before on.
func until(s *carry.PriceSeries, on date.Date) *carry.PriceSeries {
	points := s.Points()
	kept := points[:0]
	for _, p := range points {
		if !p.Date.After(on) {
			kept = append(kept, p)
		}
	}
	return carry.NewPriceSeries(kept...)
}
