package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/carry"
	"github.com/etnz/carry/renderer"
	"github.com/google/subcommands"
)

type curveCmd struct {
	portfolio string
	csv       string
}

func (*curveCmd) Name() string     { return "curve" }
func (*curveCmd) Synopsis() string { return "display the caución rate by tenor" }
func (*curveCmd) Usage() string {
	return `cts curve [-p <portfolio>] [-csv <file>]

  Groups cauciones by tenor and displays the capital weighted rate of each tenor. The cauciones
  come from the portfolio, or from a caución export when -csv is given.
`
}

func (c *curveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio, defaults to the configured one")
	f.StringVar(&c.csv, "csv", "", "Caución export to read instead of the portfolio")
}

func (c *curveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	md, err := c.report(ctx, a)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating curve: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}

func (c *curveCmd) report(ctx context.Context, a *app) (string, error) {
	if c.csv != "" {
		f, err := os.Open(c.csv)
		if err != nil {
			return "", err
		}
		defer f.Close()
		in, err := carry.IngestCSV(f)
		if err != nil {
			return "", fmt.Errorf("reading %q: %w", c.csv, err)
		}
		if in.Skipped > 0 {
			a.logger.Warn().Str("file", c.csv).Int("skipped", in.Skipped).Msg("invalid rows skipped")
		}
		return renderer.RenderCurve(&renderer.Curve{Title: filepath.Base(c.csv), Curve: in.Curve}), nil
	}

	portfolio := a.portfolio(c.portfolio)
	ops, err := a.operations(ctx, portfolio)
	if err != nil {
		return "", err
	}
	return renderer.RenderCurve(&renderer.Curve{Title: portfolio, Curve: carry.BuildTenorCurve(ops)}), nil
}
