package vm

// interrupt.go is the interrupt controller: a static 9-slot vector, a pending-bit array, masking
// via the PSW's interrupt-enable flag, and context save/restore stubs around dispatch. Grounded in
// the teacher's internal/vm/intr.go (an Interrupt type holding a table of handlers plus a
// dispatcher called once per CPU cycle) -- the dispatch discipline (ascending order, idempotent
// pending bits, context save/restore as explicit callable hooks) carries over directly; the vector
// contents are this system's own (spec.md section 4.5).

import (
	"fmt"
	"sync"
)

// Interrupt codes. The vector has exactly 9 slots, 0..8.
const (
	IntInvalidSyscall = iota
	IntInvalidInterrupt
	IntSyscall
	IntTimer
	IntIOCompletion
	IntInvalidInstruction
	IntInvalidAddress
	IntUnderflow
	IntOverflow

	numInterrupts
)

func interruptName(code int) string {
	switch code {
	case IntInvalidSyscall:
		return "INVALID_SYSCALL"
	case IntInvalidInterrupt:
		return "INVALID_INTERRUPT"
	case IntSyscall:
		return "SYSCALL"
	case IntTimer:
		return "TIMER"
	case IntIOCompletion:
		return "IO_COMPLETION"
	case IntInvalidInstruction:
		return "INVALID_INSTRUCTION"
	case IntInvalidAddress:
		return "INVALID_ADDRESS"
	case IntUnderflow:
		return "UNDERFLOW"
	case IntOverflow:
		return "OVERFLOW"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", code)
	}
}

// Handler is the effect of dispatching one interrupt. It receives the register file so it can
// mutate PSW, MAR, etc.
type Handler func(reg *Registers, log Logger)

// InterruptController holds the fixed 9-entry vector and the pending-bit array. Pending bits are
// guarded by a mutex: spec.md section 5 requires the DMA worker (a background goroutine) to be
// able to set IO_COMPLETION concurrently with the CPU reading and clearing pending bits.
type InterruptController struct {
	mu      sync.Mutex
	pending [numInterrupts]bool
	vector  [numInterrupts]Handler

	log Logger
}

// NewInterruptController installs the static handler vector described in spec.md section 4.5.
func NewInterruptController(log Logger) *InterruptController {
	ic := &InterruptController{log: log}

	ic.vector[IntInvalidSyscall] = func(reg *Registers, log Logger) {
		log.Interrupt("invalid syscall")
	}
	ic.vector[IntInvalidInterrupt] = func(reg *Registers, log Logger) {
		log.Interrupt("invalid interrupt code")
	}
	ic.vector[IntSyscall] = func(reg *Registers, log Logger) {
		reg.PSW.OperationMode = ModeKernel
		log.Interrupt("syscall")
	}
	ic.vector[IntTimer] = func(reg *Registers, log Logger) {
		log.Interrupt("timer")
	}
	ic.vector[IntIOCompletion] = func(reg *Registers, log Logger) {
		log.Interrupt("io completion")
	}
	ic.vector[IntInvalidInstruction] = func(reg *Registers, log Logger) {
		log.Interrupt("invalid instruction")
	}
	ic.vector[IntInvalidAddress] = func(reg *Registers, log Logger) {
		log.Error("invalid address", "MAR", reg.Get(MAR))
		log.Interrupt("invalid address")
	}
	ic.vector[IntUnderflow] = func(reg *Registers, log Logger) {
		reg.PSW.ConditionCode = ConditionCode(7)
		log.Interrupt("underflow")
	}
	ic.vector[IntOverflow] = func(reg *Registers, log Logger) {
		reg.PSW.ConditionCode = CCOverflow
		log.Interrupt("overflow")
	}

	return ic
}

// Trigger raises an interrupt against the given register file. If the code is out of range, it
// latches IntInvalidInterrupt instead -- always in range, so this cannot recurse. If interrupts
// are disabled (PSW.ie == 0), the interrupt is dropped and logged rather than latched, per spec.md
// section 4.5: "If PSW.ie==1 set the pending bit; else drop and log." This applies uniformly,
// including to interrupts raised internally by the memory unit and DMA controller.
func (ic *InterruptController) Trigger(code int, reg *Registers) {
	if code < 0 || code >= numInterrupts {
		ic.log.Error("interrupt: code out of range", "code", code)
		code = IntInvalidInterrupt
	}

	if !reg.PSW.InterruptEnabled {
		ic.log.Warn("interrupt: dropped, interrupts disabled", "code", interruptName(code))
		return
	}

	ic.mu.Lock()
	ic.pending[code] = true
	ic.mu.Unlock()
}

// Pending reports whether a code is currently latched, without clearing it.
func (ic *InterruptController) Pending(code int) bool {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	if code < 0 || code >= numInterrupts {
		return false
	}

	return ic.pending[code]
}

// saveContext and restoreContext are no-ops in this core, per spec.md section 4.5: "Context
// save/restore are specified as no-ops... but must be callable around each handler so that a richer
// implementation can insert stack frames without changing the dispatcher."
func (ic *InterruptController) saveContext(reg *Registers) {}
func (ic *InterruptController) restoreContext(reg *Registers) {}

// HandlePending iterates codes 0..8 in ascending order and dispatches each pending interrupt
// exactly once: save context, set kernel mode, run the handler, clear the pending bit, restore
// context. It is called once by the CPU per cycle, after execute.
func (ic *InterruptController) HandlePending(reg *Registers) {
	for code := 0; code < numInterrupts; code++ {
		ic.mu.Lock()
		fire := ic.pending[code]
		ic.mu.Unlock()

		if !fire {
			continue
		}

		ic.saveContext(reg)

		reg.PSW.OperationMode = ModeKernel

		if h := ic.vector[code]; h != nil {
			h(reg, ic.log)
		}

		ic.mu.Lock()
		ic.pending[code] = false
		ic.mu.Unlock()

		ic.restoreContext(reg)
	}
}
