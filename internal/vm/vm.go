package vm

// vm.go is the owning container: it builds exactly one register file, one memory unit, one disk,
// one interrupt controller, one DMA controller, and one CPU, and wires the borrowed references
// between them per spec.md section 3's ownership rule. Grounded in the teacher's top-level VM type
// (internal/vm/vm.go) that assembles its subsystems in one constructor and exposes Step/Run.

// VM is the complete machine.
type VM struct {
	Registers *Registers
	Memory    *Memory
	Disk      *Disk
	Interrupt *InterruptController
	DMA       *DMAController
	CPU       *CPU

	log Logger
}

// New builds a VM with all subsystems wired together and powered on (memory and disk initialized,
// registers at their power-on state, CPU HALTED pending InitCPU).
func New(log Logger) *VM {
	if log == nil {
		log = NopLogger()
	}

	reg := NewRegisters(log)
	ic := NewInterruptController(log)
	mem := NewMemory(reg, ic, log)
	dsk := NewDisk(log)
	dma := NewDMAController(mem, dsk, ic, reg, log)
	cpu := NewCPU(reg, mem, ic, dma, log)

	return &VM{
		Registers: reg,
		Memory:    mem,
		Disk:      dsk,
		Interrupt: ic,
		DMA:       dma,
		CPU:       cpu,
		log:       log,
	}
}

// Load places a program into memory via the given loader and configures the memory region.
func (vm *VM) Load(loader ProgramLoader, p Program) {
	loader.Load(vm.Memory, vm.Registers, p)
}

// Start transitions the CPU to RUNNING.
func (vm *VM) Start() {
	vm.CPU.InitCPU()
}

// Step runs exactly one CPU cycle.
func (vm *VM) Step() {
	vm.CPU.Cycle()
}

// Run drives CPU cycles until the CPU leaves the RUNNING state or maxCycles is reached (maxCycles<=0
// means unbounded -- callers wanting an interactive "run" command should prefer a bounded value or
// drive Step from their own loop, since some valid programs, including the sample program, never
// halt on their own).
func (vm *VM) Run(maxCycles int) {
	for i := 0; maxCycles <= 0 || i < maxCycles; i++ {
		if vm.CPU.State() != Running {
			return
		}

		vm.Step()
	}
}

// Shutdown halts the CPU and waits for any in-flight DMA transfer to finish, per spec.md section 9's
// recommendation to join the DMA worker rather than leave it detached.
func (vm *VM) Shutdown() {
	vm.CPU.Halt()
	vm.DMA.WaitCompletion()
}
