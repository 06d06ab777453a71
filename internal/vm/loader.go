package vm

// loader.go loads a program's Words into memory starting at a base address. Grounded in the
// teacher's internal/vm/loader.go -- a small ProgramLoader abstraction over "an ordered list of
// words, placed starting at some address" -- generalized here to carry an explicit base/limit pair
// so a loaded program also configures the memory unit's protection registers.

// Program is an ordered list of instruction/data words destined for contiguous memory cells,
// together with the base/limit region the CPU should run it under.
type Program struct {
	Base  int
	Limit int
	Words []Word
}

// ProgramLoader places a Program's words into memory and configures the region's base and limit
// registers. It is the seam the console's "load"/"run"/"debug" commands and internal/image use to
// get a program into the machine.
type ProgramLoader interface {
	Load(mem *Memory, reg *Registers, p Program)
}

// DefaultLoader is the loader's reference implementation: it writes each word to its physical cell
// via Memory.WritePhysical (bypassing the CPU's own translation, since the program isn't running
// yet) and then sets RB/RL so the region becomes addressable to user-mode code.
type DefaultLoader struct{}

// NewDefaultLoader returns the reference ProgramLoader.
func NewDefaultLoader() *DefaultLoader { return &DefaultLoader{} }

// Load writes p.Words starting at p.Base and sets RB=p.Base, RL=p.Limit.
func (DefaultLoader) Load(mem *Memory, reg *Registers, p Program) {
	for i, w := range p.Words {
		if err := mem.WritePhysical(p.Base+i, w); err != nil {
			mem.log.Error("loader: write failed", "addr", p.Base+i, "err", err)
			return
		}
	}

	mem.SetMemoryRegion(p.Base, p.Limit)
	reg.SetPC(p.Base)
}

// SampleProgram is the hard-coded demonstration program from spec.md section 6: loaded at base 300
// with region length 100.
//
// Word 3 (address 303) is "45000000", decoding as opcode 45 (SWKERN) -- not HALT. spec.md section 9
// leaves this ambiguous ("SWKERN (code 45) or HALT (code 40)? see 9") and explicitly instructs
// implementers to preserve the sample as written rather than "fix" it. Run continuously, this
// program never halts; it is meant for stepping through by hand, not for unattended execution.
func SampleProgram() Program {
	return Program{
		Base:  300,
		Limit: 100,
		Words: []Word{
			wordFromLiteral("00050000"),
			wordFromLiteral("01030000"),
			wordFromLiteral("05001200"),
			wordFromLiteral("45000000"),
		},
	}
}
