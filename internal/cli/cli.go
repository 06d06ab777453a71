// Package cli wires top-level subcommands ("run", "debug", "help") into a single dispatcher.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/oswald-vm/oswald/internal/log"
)

// Command represents a sub-command in the CLI. Each sub-command can have their own flags, config
// and action to perform.
type Command interface {
	// FlagSet returns a set of command options the command accepts.
	FlagSet() *flag.FlagSet

	// Description returns a brief description of the command's function.
	Description() string

	// Usage prints detailed command documentation.
	Usage(out io.Writer) error

	// Run executes the command with arguments. Command output should be written to |out|. It
	// returns an exit code.
	Run(ctx context.Context, args []string, out io.Writer, logger *log.Logger) int
}

// Commander is a CLI command-runner that handles the life cycle of a CLI command execution.
type Commander struct {
	ctx context.Context
	log *log.Logger

	help     Command
	commands []Command
}

// New creates a new |Commander| that can start sub-commands.
func New(ctx context.Context) *Commander {
	return &Commander{
		ctx: ctx,
	}
}

// Execute resolves args[0] against the registered commands and the help command by unambiguous
// prefix -- "r" matches
// "run" as long as nothing else starts with "r" -- the same discipline internal/console uses for
// its own command table, so "oswald r program.img" and "oswald run program.img" behave alike.
// With no arguments, or an unknown/ambiguous name, it falls back to help and returns a non-zero
// exit code so scripts can detect the failure.
func (cli *Commander) Execute(args []string) int {
	if len(args) == 0 {
		cli.runHelp()
		return 1
	}

	cmd, err := cli.lookup(args[0])
	if err != nil {
		cli.log.Error("cli: " + err.Error())
		cli.runHelp()

		return 1
	}

	fs := cmd.FlagSet()

	if err := fs.Parse(args[1:]); err != nil {
		cli.log.Error("parse error", "err", err)
		return 1
	}

	return cmd.Run(cli.ctx, fs.Args(), os.Stdout, cli.log)
}

func (cli *Commander) runHelp() int {
	return cli.help.Run(cli.ctx, nil, os.Stdout, cli.log)
}

// lookup resolves name against the FlagSet names of the registered commands and the help command by
// unambiguous prefix.
func (cli *Commander) lookup(name string) (Command, error) {
	name = strings.ToLower(name)

	candidates := cli.commands
	if cli.help != nil {
		candidates = append(append([]Command(nil), cli.commands...), cli.help)
	}

	var matches []Command

	for _, cmd := range candidates {
		if strings.HasPrefix(cmd.FlagSet().Name(), name) {
			matches = append(matches, cmd)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, fmt.Errorf("unknown command %q", name)
	default:
		return nil, fmt.Errorf("ambiguous command %q", name)
	}
}

// WithCommands adds a list of commands as sub-commands.
func (cli *Commander) WithCommands(cmds []Command) *Commander {
	cli.commands = append([]Command(nil), cmds...)
	return cli
}

// WithHelp configures the help message a command.
func (cli *Commander) WithHelp(cmd Command) *Commander {
	cli.help = cmd
	return cli
}

// WithLogger configures the logger for the CLI. The caller owns the logger's lifecycle (e.g. the
// underlying system.log file); the Commander only borrows it for dispatch.
func (cli *Commander) WithLogger(logger *log.Logger) *Commander {
	cli.log = logger
	return cli
}

// Type aliases from std lib.
type (
	Flag    = flag.Flag
	FlagSet = flag.FlagSet
)
