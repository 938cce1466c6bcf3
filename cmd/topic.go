package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/carry/docs"
	"github.com/google/subcommands"
)

type topicCmd struct{}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "read the cts manual" }
func (*topicCmd) Usage() string {
	return `cts topic [<name>...]

Print the manual pages named, the index when none is given. '*' prints every page:
configuration, data files, yield estimate, spread, curve, rates and settlements.
`
}

func (*topicCmd) SetFlags(*flag.FlagSet) {}

// report returns the manual pages names, the index when names is empty.
func (*topicCmd) report(names []string) (string, error) {
	if len(names) == 0 {
		return docs.GetTopic("readme")
	}
	return docs.GetTopics(names...)
}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	md, err := c.report(f.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unknown manual page: %v\nRun 'cts topic' for the index.\n", err)
		return subcommands.ExitUsageError
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}
