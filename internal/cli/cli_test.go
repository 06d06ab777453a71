package cli

import (
	"bytes"
	"context"
	"flag"
	"io"
	"testing"

	"github.com/oswald-vm/oswald/internal/log"
)

// fakeCommand is a minimal Command used only to exercise Commander's dispatch logic.
type fakeCommand struct {
	name string
	ran  bool
	args []string
}

func (c *fakeCommand) FlagSet() *FlagSet { return flag.NewFlagSet(c.name, flag.ContinueOnError) }
func (c *fakeCommand) Description() string { return "fake command " + c.name }
func (c *fakeCommand) Usage(out io.Writer) error {
	_, err := io.WriteString(out, c.name)
	return err
}

func (c *fakeCommand) Run(_ context.Context, args []string, _ io.Writer, _ *log.Logger) int {
	c.ran = true
	c.args = args

	return 0
}

func newTestCommander(cmds ...Command) (*Commander, *fakeCommand) {
	help := &fakeCommand{name: "help"}

	c := New(context.Background()).
		WithLogger(log.NewFormattedLogger(&bytes.Buffer{})).
		WithCommands(cmds).
		WithHelp(help)

	return c, help
}

func TestExecuteDispatchesExactMatch(t *testing.T) {
	run := &fakeCommand{name: "run"}
	debug := &fakeCommand{name: "debug"}

	c, _ := newTestCommander(run, debug)

	if code := c.Execute([]string{"run", "a.img"}); code != 0 {
		t.Fatalf("Execute(run) = %d, want 0", code)
	}

	if !run.ran {
		t.Error("expected the run command to have been invoked")
	}

	if debug.ran {
		t.Error("expected the debug command not to have been invoked")
	}

	if len(run.args) != 1 || run.args[0] != "a.img" {
		t.Errorf("run.args = %v, want [a.img]", run.args)
	}
}

func TestExecuteDispatchesUnambiguousPrefix(t *testing.T) {
	run := &fakeCommand{name: "run"}
	debug := &fakeCommand{name: "debug"}

	c, _ := newTestCommander(run, debug)

	if code := c.Execute([]string{"d"}); code != 0 {
		t.Fatalf("Execute(d) = %d, want 0", code)
	}

	if !debug.ran {
		t.Error(`expected "d" to resolve to the debug command`)
	}
}

func TestExecuteFallsBackToHelpOnAmbiguousPrefix(t *testing.T) {
	run := &fakeCommand{name: "run"}
	rewind := &fakeCommand{name: "rewind"}

	c, help := newTestCommander(run, rewind)

	if code := c.Execute([]string{"r"}); code != 1 {
		t.Fatalf("Execute(r) = %d, want 1 (ambiguous)", code)
	}

	if !help.ran {
		t.Error("expected the help command to run on an ambiguous name")
	}

	if run.ran || rewind.ran {
		t.Error("expected neither candidate command to run on an ambiguous name")
	}
}

func TestExecuteFallsBackToHelpOnUnknownCommand(t *testing.T) {
	run := &fakeCommand{name: "run"}

	c, help := newTestCommander(run)

	if code := c.Execute([]string{"frobnicate"}); code != 1 {
		t.Fatalf("Execute(frobnicate) = %d, want 1", code)
	}

	if !help.ran {
		t.Error("expected the help command to run on an unknown name")
	}
}

func TestExecuteWithNoArgumentsRunsHelp(t *testing.T) {
	c, help := newTestCommander(&fakeCommand{name: "run"})

	if code := c.Execute(nil); code != 1 {
		t.Fatalf("Execute(nil) = %d, want 1", code)
	}

	if !help.ran {
		t.Error("expected the help command to run with no arguments")
	}
}
