// Package console implements the interactive command surface from spec.md section 6: run, debug,
// step/continue, register/memory/disk inspection, load, and help.
//
// Grounded in rcornwell-S370's command/parser + command/reader: a prefix-matched command table
// driving a peterh/liner-edited prompt loop, with golang.org/x/term used to decide whether the
// input stream is actually a terminal before enabling history and line editing.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/oswald-vm/oswald/internal/asm"
	"github.com/oswald-vm/oswald/internal/image"
	"github.com/oswald-vm/oswald/internal/vm"
)

// command is one entry in the console's command table.
type command struct {
	name    string
	min     int // minimum prefix length accepted for this command; ambiguity is resolved by lookup
	process func(c *Console, args []string) (quit bool, err error)
}

var commandTable = []command{
	{name: "run", min: 1, process: (*Console).cmdRun},
	{name: "debug", min: 1, process: (*Console).cmdDebug},
	{name: "step", min: 1, process: (*Console).cmdStep},
	{name: "continue", min: 1, process: (*Console).cmdContinue},
	{name: "registers", min: 1, process: (*Console).cmdRegisters},
	{name: "memory", min: 1, process: (*Console).cmdMemory},
	{name: "disk", min: 1, process: (*Console).cmdDisk},
	{name: "load", min: 1, process: (*Console).cmdLoad},
	{name: "help", min: 1, process: (*Console).cmdHelp},
	{name: "exit", min: 1, process: (*Console).cmdExit},
	{name: "quit", min: 1, process: (*Console).cmdExit},
}

// aliases maps the spec's short forms to their full command name.
var aliases = map[string]string{
	"s": "step",
	"c": "continue",
	"r": "registers",
	"reg": "registers",
	"m": "memory",
	"d": "disk",
	"?": "help",
	"h": "help",
	"q": "quit",
}

// ErrConsole is the sentinel wrapped by console-level errors.
var ErrConsole = errors.New("console error")

// Console drives a VM interactively.
type Console struct {
	vm     *vm.VM
	out    io.Writer
	debug  bool
	loaded bool
}

// New creates a console wired to a VM, writing program output to out.
func New(machine *vm.VM, out io.Writer) *Console {
	return &Console{vm: machine, out: out}
}

func resolve(name string) string {
	if full, ok := aliases[name]; ok {
		return full
	}

	return name
}

func lookup(name string) (*command, error) {
	name = strings.ToLower(name)

	var matches []*command

	for i := range commandTable {
		c := &commandTable[i]
		if strings.HasPrefix(c.name, name) && len(name) >= c.min {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: unknown command %q", ErrConsole, name)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: ambiguous command %q", ErrConsole, name)
	}
}

// Dispatch parses and runs one command line. It returns quit=true when the console should stop.
func (c *Console) Dispatch(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	cmd, err := lookup(resolve(strings.ToLower(fields[0])))
	if err != nil {
		return false, err
	}

	return cmd.process(c, fields[1:])
}

// Run drives the console from in, using liner for interactive editing when in is a terminal and a
// plain line scanner otherwise (scripts, pipes, tests).
func (c *Console) Run(in *os.File) int {
	if term.IsTerminal(int(in.Fd())) {
		return c.runInteractive()
	}

	return c.runScripted(in)
}

func (c *Console) runInteractive() int {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	for {
		text, err := line.Prompt("oswald> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return 0
			}

			fmt.Fprintln(c.out, "error reading line:", err)

			return 1
		}

		line.AppendHistory(text)

		quit, err := c.Dispatch(text)
		if err != nil {
			fmt.Fprintln(c.out, "error:", err)
		}

		if quit {
			return 0
		}
	}
}

func (c *Console) runScripted(in io.Reader) int {
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		quit, err := c.Dispatch(scanner.Text())
		if err != nil {
			fmt.Fprintln(c.out, "error:", err)
		}

		if quit {
			return 0
		}
	}

	return 0
}

func (c *Console) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConsole, err)
	}

	var p vm.Program

	if strings.HasSuffix(path, ".s") || strings.HasSuffix(path, ".asm") {
		p, err = asm.Assemble(string(data))
	} else {
		p, err = image.Unmarshal(data)
	}

	if err != nil {
		return err
	}

	c.LoadProgram(p)

	return nil
}

// LoadProgram loads an already-built Program directly, bypassing the file/extension sniffing
// loadFile does. Used by the "debug" subcommand's no-argument path to load the hard-coded sample
// program.
func (c *Console) LoadProgram(p vm.Program) {
	c.vm.Load(vm.NewDefaultLoader(), p)
	c.loaded = true
}

func (c *Console) cmdLoad(args []string) (bool, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("%w: load requires a file path", ErrConsole)
	}

	return false, c.loadFile(args[0])
}

func (c *Console) cmdRun(args []string) (bool, error) {
	if len(args) == 1 {
		if err := c.loadFile(args[0]); err != nil {
			return false, err
		}
	}

	c.debug = false
	c.vm.Start()
	c.vm.Run(0)

	return false, nil
}

func (c *Console) cmdDebug(args []string) (bool, error) {
	if len(args) == 1 {
		if err := c.loadFile(args[0]); err != nil {
			return false, err
		}
	}

	c.debug = true
	c.vm.Start()

	return false, nil
}

func (c *Console) cmdStep([]string) (bool, error) {
	if !c.loaded {
		return false, fmt.Errorf("%w: no program loaded", ErrConsole)
	}

	if !c.debug {
		return false, fmt.Errorf("%w: step requires debug mode (use \"debug <file>\" first)", ErrConsole)
	}

	c.vm.Step()
	fmt.Fprintln(c.out, c.vm.Registers.String())

	return false, nil
}

func (c *Console) cmdContinue([]string) (bool, error) {
	if !c.loaded {
		return false, fmt.Errorf("%w: no program loaded", ErrConsole)
	}

	if !c.debug {
		return false, fmt.Errorf("%w: continue requires debug mode (use \"debug <file>\" first)", ErrConsole)
	}

	c.vm.Run(0)

	return false, nil
}

func (c *Console) cmdRegisters([]string) (bool, error) {
	fmt.Fprintln(c.out, c.vm.Registers.String())
	return false, nil
}

func (c *Console) cmdMemory(args []string) (bool, error) {
	start, end := vm.OSRegionLimit, vm.OSRegionLimit+20

	if len(args) >= 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return false, fmt.Errorf("%w: invalid start address %q", ErrConsole, args[0])
		}

		start = n
		end = start + 20
	}

	if len(args) >= 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return false, fmt.Errorf("%w: invalid end address %q", ErrConsole, args[1])
		}

		end = n
	}

	for i, w := range c.vm.Memory.View(start, end) {
		fmt.Fprintf(c.out, "%04d: %s\n", start+i, w.String())
	}

	return false, nil
}

func (c *Console) cmdDisk([]string) (bool, error) {
	tracks, cyls, sectors := c.vm.Disk.Geometry()
	head := c.vm.Disk.HeadPosition()

	fmt.Fprintf(c.out, "geometry: %d tracks x %d cylinders x %d sectors\n", tracks, cyls, sectors)
	fmt.Fprintf(c.out, "head: track=%d cylinder=%d sector=%d\n", head.Track, head.Cylinder, head.Sector)

	return false, nil
}

func (c *Console) cmdHelp([]string) (bool, error) {
	fmt.Fprintln(c.out, `Commands:
  run <file>        load and run continuously
  debug <file>      load and enter step mode
  step | s          single-cycle advance
  continue | c      resume continuous execution
  registers | r     dump register file and PSW
  memory [s [e]] | m  dump memory range
  disk | d          show disk geometry and head position
  load <file>       load without executing
  help | ? | h       this message
  exit | quit | q    leave the console`)

	return false, nil
}

func (c *Console) cmdExit([]string) (bool, error) {
	c.vm.Shutdown()
	return true, nil
}
