package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/oswald-vm/oswald/internal/cli"
	"github.com/oswald-vm/oswald/internal/console"
	"github.com/oswald-vm/oswald/internal/log"
	"github.com/oswald-vm/oswald/internal/vm"
)

// Debug is the "debug" subcommand: open the interactive console, optionally loading a program
// first, for stepping through execution by hand.
func Debug() cli.Command {
	return &debugger{}
}

type debugger struct{}

func (debugger) Description() string {
	return "open the interactive console"
}

func (debugger) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `debug [program.img]

Opens the interactive console (see "help" once inside). If a program is given, it is loaded but
not started -- use "continue" or "step" to begin executing it. With no program, the hard-coded
sample program is loaded instead.`)

	return err
}

func (debugger) FlagSet() *cli.FlagSet {
	return flag.NewFlagSet("debug", flag.ExitOnError)
}

func (debugger) Run(_ context.Context, args []string, out io.Writer, logger *log.Logger) int {
	machine := vm.New(logger)
	c := console.New(machine, out)

	switch len(args) {
	case 0:
		c.LoadProgram(vm.SampleProgram())
		_, _ = c.Dispatch("debug")
	case 1:
		if _, err := c.Dispatch("debug " + args[0]); err != nil {
			logger.Error("debug: loading program failed", "err", err)
			return 1
		}
	default:
		logger.Error("debug: expected at most one program argument")
		return 1
	}

	return c.Run(os.Stdin)
}
