package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/oswald-vm/oswald/internal/cli"
	"github.com/oswald-vm/oswald/internal/log"
)

// help is the default command: it prints top-level usage, or, given a command name, that
// command's own usage and flag defaults.
type help struct {
	cmd []cli.Command
}

var _ cli.Command = (*help)(nil)

func (help) Description() string {
	return "display help for commands"
}

func (h help) FlagSet() *cli.FlagSet {
	return flag.NewFlagSet("help", flag.ExitOnError)
}

func (h help) Run(_ context.Context, args []string, out io.Writer, _ *log.Logger) int {
	if len(args) != 1 {
		if err := h.Usage(out); err != nil {
			return 1
		}

		return 0
	}

	target := h.find(args[0])
	if target == nil {
		fmt.Fprintf(out, "oswald help: no such command %q\n\n", args[0])

		if err := h.Usage(out); err != nil {
			return 1
		}

		return 1
	}

	h.printCommandHelp(out, target)

	return 0
}

// find resolves name against the registered commands by unambiguous prefix, matching
// internal/cli.Commander's own dispatch rule so "oswald help d" and "oswald help debug" agree.
func (h help) find(name string) cli.Command {
	name = strings.ToLower(name)

	var found cli.Command

	matches := 0

	for _, cmd := range h.cmd {
		if strings.HasPrefix(cmd.FlagSet().Name(), name) {
			found = cmd
			matches++
		}
	}

	if matches != 1 {
		return nil
	}

	return found
}

func (h *help) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `
Oswald is a pedagogical von Neumann virtual machine: a word-at-a-time CPU, a base/limit-protected
memory unit, a disk, and a DMA controller, driven from program images or assembly source.

Usage:

        oswald <command> [option]... [arg]...

Commands:`)
	if err != nil {
		return err
	}

	for _, cmd := range h.cmd {
		fs := cmd.FlagSet()
		fmt.Fprintf(out, "  %-20s %s\n", fs.Name(), cmd.Description())
	}

	fmt.Fprintf(out, "  %-20s %s\n", h.FlagSet().Name(), h.Description())
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Command names may be abbreviated to any unambiguous prefix (e.g. \"oswald d\" for \"debug\").")
	fmt.Fprintln(out, "Use `oswald help <command>` to get help for a command.")

	return err
}

func (h *help) printCommandHelp(out io.Writer, cmd cli.Command) {
	_ = cmd.FlagSet().Parse(nil)

	fmt.Fprint(out, "Usage:\n\n        oswald ")

	if err := cmd.Usage(out); err != nil {
		return
	}

	fmt.Fprintln(out, "\nOptions:")
	cmd.FlagSet().PrintDefaults()
}

// Help builds the default "help" command for the given top-level commands.
func Help(cmd []cli.Command) *help {
	return &help{
		cmd: cmd,
	}
}
