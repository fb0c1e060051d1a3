// Command irr computes investment returns: annual rates, future and present
// values, blended rates with follow-on investments and unit based portfolios.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/irr/cmd"
	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	// handles COMP_LINE when invoked by the shell, install with COMP_INSTALL=1 irr.
	cmd.Completion(commander).Complete("irr")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
