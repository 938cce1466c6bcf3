package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/carry"
	"github.com/etnz/carry/renderer"
	"github.com/google/subcommands"
)

// recentRates is the number of smoothed rates listed by the tna report.
const recentRates = 10

type tnaCmd struct {
	instrument string
	date       string
}

func (*tnaCmd) Name() string     { return "tna" }
func (*tnaCmd) Synopsis() string { return "estimate the annual yield of a fund" }
func (*tnaCmd) Usage() string {
	return `cts tna [-i <instrument>] [-d <date>]

  Estimates the fund's annual yield (TNA) from its published share prices: the mean of the
  compounded rates of the last 7 price pairs.
`
}

func (c *tnaCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.instrument, "i", "", "Fund, defaults to the configured one")
	f.StringVar(&c.date, "d", "", "Estimate as seen on this date, defaults to today")
}

func (c *tnaCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	md, err := c.report(ctx, a)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error estimating yield: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}

func (c *tnaCmd) report(ctx context.Context, a *app) (string, error) {
	on, err := parseDate(c.date)
	if err != nil {
		return "", err
	}
	instrument := a.instrument(c.instrument)
	series, err := a.priceSeries(ctx, instrument, on.Add(-a.cfg.Prices.History))
	if err != nil {
		return "", err
	}
	series = until(series, on)

	estimate := carry.EstimateTNA(series)
	if estimate.IsFallback {
		a.logger.Warn().Str("instrument", instrument).Str("reason", estimate.Reason).Msg("using the fallback yield")
	}
	rates := carry.MovingAverage(carry.PairRates(series), carry.TNAWindow)
	if len(rates) > recentRates {
		rates = rates[len(rates)-recentRates:]
	}
	return renderer.RenderTNA(&renderer.TNA{
		Instrument: instrument,
		Estimate:   estimate,
		Daily:      carry.DailyRate(estimate.Rate),
		Rates:      rates,
	}), nil
}
