package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/carry"
	"github.com/etnz/carry/renderer"
	"github.com/etnz/carry/source"
	"github.com/google/subcommands"
)

// settlementCmd holds the flags for the 'settlement' subcommand.
type settlementCmd struct {
	portfolio string
	save      bool
}

func (*settlementCmd) Name() string     { return "settlement" }
func (*settlementCmd) Synopsis() string { return "rebuild cauciones from broker settlement documents" }
func (*settlementCmd) Usage() string {
	return `cts settlement [-p <portfolio>] [-save] <file>...

  Reads the caución legs of settlement documents (PDF or text) and pairs each opening with its
  closing. With -save the rebuilt cauciones are appended to the portfolio.
`
}

func (c *settlementCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio, defaults to the configured one")
	f.BoolVar(&c.save, "save", false, "Append the matched cauciones to the portfolio")
}

func (c *settlementCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one settlement document is required")
		return subcommands.ExitUsageError
	}
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	match, err := c.match(a, f.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading settlements: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderSettlements(&renderer.Settlements{Files: f.Args(), Match: match}))

	if c.save && len(match.Operations) > 0 {
		portfolio := a.portfolio(c.portfolio)
		if err := a.files.AppendOperations(portfolio, match.Operations); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving cauciones: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Successfully appended %d cauciones to %s\n", len(match.Operations), portfolio)
	}
	return subcommands.ExitSuccess
}

// match parses every document and pairs the legs of all of them together: the opening and the
// closing of a caución are usually in different documents.
func (c *settlementCmd) match(a *app, files []string) (carry.SettlementMatch, error) {
	var legs []carry.SettlementLeg
	for _, name := range files {
		text, err := readDocument(name)
		if err != nil {
			return carry.SettlementMatch{}, err
		}
		found := carry.ParseSettlement(text)
		a.logger.Debug().Str("file", name).Int("legs", len(found)).Msg("settlement parsed")
		legs = append(legs, found...)
	}
	m := carry.MatchSettlements(legs)
	for i := range m.Operations {
		m.Operations[i].Source = "settlement"
	}
	return m, nil
}

// readDocument returns the text of a PDF, or the content of any other file.
func readDocument(name string) (string, error) {
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		return source.PDFText(name)
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
