// Command cts reports on a caución and fund carry trade. See 'cts topic' for the documentation.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/carry/cmd"
	"github.com/google/subcommands"
)

func main() {
	cmd.Completion().Complete("cts")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	cmd.Register(commander)

	flag.Parse()

	// an unknown subcommand may be an extension found in the PATH.
	if name := flag.Arg(0); name != "" && !isRegistered(commander, name) {
		if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

func isRegistered(c *subcommands.Commander, name string) bool {
	found := false
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		if cmd.Name() == name {
			found = true
		}
	})
	return found
}
