package cmd

import (
	"github.com/google/subcommands"
)

// Commands are the subcommands of cts.
var Commands = []subcommands.Command{
	&positionsCmd{},
	&spreadCmd{},
	&curveCmd{},
	&settlementCmd{},
	&tnaCmd{},
	&ratesCmd{},
	&topicCmd{},
}

// groups of the help listing, by command name.
var groups = map[string]string{
	"positions":  "portfolio",
	"spread":     "portfolio",
	"curve":      "portfolio",
	"settlement": "portfolio",
	"tna":        "fund",
	"rates":      "fund",
	"topic":      "help",
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "help")
	c.Register(c.FlagsCommand(), "help")
	for _, cmd := range Commands {
		c.Register(cmd, groups[cmd.Name()])
	}
}
