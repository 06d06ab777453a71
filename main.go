// Command oswald is the command-line interface to Oswald, a pedagogical von Neumann virtual
// machine.
package main

import (
	"context"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/oswald-vm/oswald/internal/cli"
	"github.com/oswald-vm/oswald/internal/cli/cmd"
	"github.com/oswald-vm/oswald/internal/log"
)

var commands = []cli.Command{
	cmd.Run(),
	cmd.Debug(),
}

// Entry point. Top-level flags are parsed with getopt (long and short forms); everything after the
// first non-flag argument is handed to the cli.Commander for subcommand dispatch.
func main() {
	optLogDir := getopt.StringLong("log-dir", 'l', ".", "directory for system.log")
	optQuiet := getopt.BoolLong("quiet", 'q', "suppress system.log (write to stderr only)")
	optHelp := getopt.BoolLong("help", 'h', "show usage")

	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var (
		logger *log.Logger
		closer func() error
		err    error
	)

	if *optQuiet {
		logger = log.NewFormattedLogger(os.Stderr)
	} else {
		logger, closer, err = log.New(*optLogDir)
		if err != nil {
			os.Stderr.WriteString(err.Error() + "\n")
			os.Exit(1)
		}

		defer closer()
	}

	log.SetDefault(logger)

	result :=
		cli.New(context.Background()).
			WithLogger(logger).
			WithCommands(commands).
			WithHelp(cmd.Help(commands)).
			Execute(getopt.Args())

	os.Exit(result)
}
