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
)

type ratesCmd struct {
	portfolio  string
	instrument string
	from, to   string
}

func (*ratesCmd) Name() string     { return "rates" }
func (*ratesCmd) Synopsis() string { return "display the daily fund and caución rates" }
func (*ratesCmd) Usage() string {
	return `cts rates [-p <portfolio>] [-i <instrument>] [-from <date>] [-to <date>]

  Lists, day by day, the fund yield, the rate of the cauciones running that day and their
  difference, followed by statistics of the difference.
`
}

func (c *ratesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio, defaults to the configured one")
	f.StringVar(&c.instrument, "i", "", "Fund, defaults to the configured one")
	f.StringVar(&c.from, "from", "", "First day, defaults to the prices history before -to")
	f.StringVar(&c.to, "to", "", "Last day, defaults to today")
}

func (c *ratesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	md, err := c.report(ctx, a)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating rates report: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}

func (c *ratesCmd) report(ctx context.Context, a *app) (string, error) {
	to, err := parseDate(c.to)
	if err != nil {
		return "", err
	}
	from := to.Add(-a.cfg.Prices.History)
	if c.from != "" {
		if from, err = date.Parse(c.from); err != nil {
			return "", err
		}
	}
	if to.Before(from) {
		return "", fmt.Errorf("empty range %s..%s", from, to)
	}
	r := date.Range{From: from, To: to}

	portfolio, instrument := a.portfolio(c.portfolio), a.instrument(c.instrument)
	ops, err := a.operations(ctx, portfolio)
	if err != nil {
		return "", err
	}
	// the fund rate of the first day averages the pairs of the week before.
	series, err := a.priceSeries(ctx, instrument, from.Add(-2*carry.TNAWindow))
	if err != nil {
		return "", err
	}

	days := carry.HistoricalRates(until(series, to), ops, r)
	stats, ok := carry.NewRateStats(days)
	return renderer.RenderRates(&renderer.Rates{
		Instrument: instrument,
		Range:      r,
		Days:       days,
		Stats:      stats,
		HasStats:   ok,
	}), nil
}
