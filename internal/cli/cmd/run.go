package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/oswald-vm/oswald/internal/asm"
	"github.com/oswald-vm/oswald/internal/cli"
	"github.com/oswald-vm/oswald/internal/image"
	"github.com/oswald-vm/oswald/internal/log"
	"github.com/oswald-vm/oswald/internal/vm"
)

// Run is the "run" subcommand: load a program and execute it continuously, with no interactive
// console.
func Run() cli.Command {
	return &runner{}
}

type runner struct {
	maxCycles int
}

func (runner) Description() string {
	return "load a program and run it to completion"
}

func (runner) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `run [--max-cycles n] [program.img]

Loads a program image (or assembly source, by file extension) and runs the CPU cycle loop
continuously. Some valid programs never halt; --max-cycles bounds the loop for those. With no
program argument, runs the hard-coded sample program -- which never halts, so --max-cycles is
required in that case.`)

	return err
}

func (r *runner) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	fs.IntVar(&r.maxCycles, "max-cycles", 0, "stop after this many CPU cycles (0 = unbounded)")

	return fs
}

func (r *runner) Run(_ context.Context, args []string, out io.Writer, logger *log.Logger) int {
	var (
		p   vm.Program
		err error
	)

	switch len(args) {
	case 0:
		if r.maxCycles == 0 {
			logger.Error("run: no program given and the sample program never halts; pass --max-cycles")
			return 1
		}

		p = vm.SampleProgram()
	case 1:
		p, err = loadProgram(args[0])
		if err != nil {
			logger.Error("run: loading program failed", "err", err)
			return 1
		}
	default:
		logger.Error("run: expected at most one program argument")
		return 1
	}

	machine := vm.New(logger)
	machine.Load(vm.NewDefaultLoader(), p)
	machine.Start()
	machine.Run(r.maxCycles)

	fmt.Fprintln(out, machine.Registers.String())

	machine.Shutdown()

	return 0
}

// loadProgram reads a file and assembles or unmarshals it into a vm.Program depending on its
// extension, the way the console's loadFile does.
func loadProgram(path string) (vm.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return vm.Program{}, err
	}

	if strings.HasSuffix(path, ".s") || strings.HasSuffix(path, ".asm") {
		return asm.Assemble(string(data))
	}

	return image.Unmarshal(data)
}
