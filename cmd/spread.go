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

// spreadCmd holds the flags for the 'spread' subcommand.
type spreadCmd struct {
	portfolio  string
	instrument string
	date       string
}

func (*spreadCmd) Name() string     { return "spread" }
func (*spreadCmd) Synopsis() string { return "compare cauciones with the fund yield over their window" }
func (*spreadCmd) Usage() string {
	return `cts spread [-p <portfolio>] [-i <instrument>] [-d <date>]

  For each caución of the portfolio, compares what its capital earned in the fund between its
  start and end with its interest. Active cauciones are completed with the gain projected at
  the estimated fund yield.
`
}

func (c *spreadCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio, defaults to the configured one")
	f.StringVar(&c.instrument, "i", "", "Fund the capital is invested in, defaults to the configured one")
	f.StringVar(&c.date, "d", "", "Evaluation date, defaults to today")
}

func (c *spreadCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	md, err := c.report(ctx, a)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating spread report: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}

func (c *spreadCmd) report(ctx context.Context, a *app) (string, error) {
	now, err := parseDate(c.date)
	if err != nil {
		return "", err
	}
	portfolio, instrument := a.portfolio(c.portfolio), a.instrument(c.instrument)
	ops, err := a.operations(ctx, portfolio)
	if err != nil {
		return "", err
	}

	// the price before the earliest start is needed.
	from := now.Add(-a.cfg.Prices.History)
	for _, op := range ops {
		if !op.Start.IsZero() && op.Start.Add(-a.cfg.Prices.History).Before(from) {
			from = op.Start.Add(-a.cfg.Prices.History)
		}
	}
	series, err := a.priceSeries(ctx, instrument, from)
	if err != nil {
		return "", err
	}

	report := carry.NewSpreadReport(ops, until(series, now), now)
	if report.Totals.Excluded > 0 {
		a.logger.Warn().Int("excluded", report.Totals.Excluded).Msg("operations without usable prices or in another currency left out")
	}
	return renderer.RenderSpreads(&renderer.Spreads{Portfolio: portfolio, Instrument: instrument, Report: report}), nil
}
