package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/carry"
	"github.com/etnz/carry/date"
	"github.com/etnz/carry/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// positionsCmd holds the flags for the 'positions' subcommand.
type positionsCmd struct {
	portfolio string
	date      string
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "display the average cost positions of a portfolio" }
func (*positionsCmd) Usage() string {
	return `cts positions [-p <portfolio>] [-d <date>]

  Replays the portfolio trades up to the date and values each position with the last fund price
  published on that date.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio, defaults to the configured one")
	f.StringVar(&c.date, "d", "", "Date of the report, defaults to today. See 'cts topic dates' for supported formats.")
}

func (c *positionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	md, err := c.report(ctx, a)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating positions report: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}

func (c *positionsCmd) report(ctx context.Context, a *app) (string, error) {
	on, err := parseDate(c.date)
	if err != nil {
		return "", err
	}
	portfolio := a.portfolio(c.portfolio)
	all, err := a.files.Trades(ctx, portfolio)
	if err != nil {
		return "", err
	}
	var trades []carry.Trade
	for _, t := range all {
		if !t.Date.After(on) {
			trades = append(trades, t)
		}
	}

	quotes, err := a.quotes(ctx, trades, on)
	if err != nil {
		return "", err
	}
	report := carry.ComputePositions(trades, quotes)
	for _, t := range report.Oversold {
		a.logger.Warn().Str("instrument", t.Instrument).Str("date", t.Date.String()).Str("quantity", t.Quantity.String()).Msg("sell exceeds holding")
	}
	return renderer.RenderPositions(&renderer.Positions{Portfolio: portfolio, Date: on, Report: report}), nil
}

// quotes prices every instrument traded with its last price published on or before on, and the
// change since the previous publication.
func (a *app) quotes(ctx context.Context, trades []carry.Trade, on date.Date) (map[string]carry.Quote, error) {
	from := on.Add(-a.cfg.Prices.History)
	quotes := make(map[string]carry.Quote)
	for _, t := range trades {
		if _, ok := quotes[t.Instrument]; ok {
			continue
		}
		series, err := a.priceSeries(ctx, t.Instrument, from)
		if err != nil {
			return nil, err
		}
		last, ok := series.Lookup(on, carry.Inclusive)
		if !ok {
			quotes[t.Instrument] = carry.Quote{}
			continue
		}
		q := carry.Quote{Price: carry.M(last.Price, t.Price.Currency())}
		if prev, ok := series.Lookup(last.Date, carry.Strict); ok && prev.Price.IsPositive() {
			q.Change24h = carry.R(last.Price.Div(prev.Price).Sub(decimal.NewFromInt(1)))
			q.HasChange = true
		}
		quotes[t.Instrument] = q
	}
	return quotes, nil
}
