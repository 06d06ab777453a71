package vm

// memory.go contains the memory unit: a 2000-word array, address translation via base/limit
// registers, and privilege enforcement over the OS region. Grounded in the teacher's
// internal/vm/mem.go -- the MAR/MDR-mediated access pattern and the wrapped-sentinel-error style
// carry over directly; the translation and privilege rules themselves are this system's own.

import (
	"errors"
	"fmt"
)

// MemorySize is the number of addressable words.
const MemorySize = 2000

// OSRegionLimit is the first address of user space; addresses below it are the privileged OS
// region.
const OSRegionLimit = 300

// Memory errors.
var (
	ErrMemory    = errors.New("memory error")
	ErrAddress   = fmt.Errorf("%w: invalid address", ErrMemory)
	ErrPrivilege = fmt.Errorf("%w: privilege violation", ErrMemory)
)

// AddressError carries the offending logical address alongside a wrapped ErrMemory sentinel, the
// way the teacher's *MemoryError does.
type AddressError struct {
	Logical int
	err     error
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("%s: logical=%d", e.err, e.Logical)
}

func (e *AddressError) Unwrap() error { return e.err }

func (e *AddressError) Is(target error) bool {
	return errors.Is(e.err, target)
}

// Memory is the machine's memory unit. It owns the 2000-word cell array and mediates every access
// through logical-to-physical translation and OS-region privilege checks.
type Memory struct {
	cells [MemorySize]Word

	reg *Registers
	ic  *InterruptController
	log Logger
}

// NewMemory creates a memory unit. init() (spec.md 4.3) runs immediately: every cell is set to
// "00000000" and then cells 0..299 are overwritten with the OS_RESERVED sentinel.
func NewMemory(reg *Registers, ic *InterruptController, log Logger) *Memory {
	m := &Memory{reg: reg, ic: ic, log: log}
	m.Init()

	return m
}

// Init resets every cell to zero and marks the OS region reserved.
func (m *Memory) Init() {
	for i := range m.cells {
		m.cells[i] = ZeroWord
	}

	for i := 0; i < OSRegionLimit; i++ {
		m.cells[i] = SentinelOSReserved
	}
}

// SetMemoryRegion sets the base and limit registers that govern logical-to-physical translation.
func (m *Memory) SetMemoryRegion(base, limit int) {
	m.reg.Set(RB, base)
	m.reg.Set(RL, limit)
}

// translate converts a logical address to a physical one per spec.md section 3: if RB=0 and RL=0,
// identity (kernel trust); otherwise phys = logical + RB, and phys must fall in [RB, RB+RL).
func (m *Memory) translate(logical int) (phys int, ok bool) {
	rb, rl := m.reg.Get(RB), m.reg.Get(RL)

	if rb == 0 && rl == 0 {
		return logical, true
	}

	phys = logical + rb
	if phys < rb || phys >= rb+rl {
		return 0, false
	}

	return phys, true
}

// Read performs the full translate -> bounds-check -> privilege-check -> access sequence for a
// read. On any failure it raises INT_INVALID_ADDRESS and returns a sentinel word; it never panics
// and never aborts the caller's instruction. A base/limit translation failure returns MEM_ERR (the
// logical address falls outside the configured memory region); a raw physical out-of-range result
// returns ADDR_ERR; a privilege violation on the OS region returns PRIV_ERR.
func (m *Memory) Read(logical int) Word {
	phys, ok := m.translate(logical)
	if !ok {
		m.log.Error("memory: translation failed", "logical", logical)
		m.ic.Trigger(IntInvalidAddress, m.reg)

		return SentinelMemErr
	}

	if phys < 0 || phys >= MemorySize {
		m.log.Error("memory: out of bounds", "phys", phys)
		m.ic.Trigger(IntInvalidAddress, m.reg)

		return SentinelAddrErr
	}

	if phys < OSRegionLimit && m.reg.PSW.OperationMode == ModeUser {
		m.log.Error("memory: privilege violation on read", "phys", phys)
		m.ic.Trigger(IntInvalidAddress, m.reg)

		return SentinelPrivErr
	}

	w := m.cells[phys]
	m.log.Debug("memory: read", "phys", phys, "word", w.String())

	return w
}

// Write performs the same sequence as Read but stores a word instead. On failure the write is
// skipped entirely -- the targeted cell is left unmodified.
func (m *Memory) Write(logical int, w Word) {
	phys, ok := m.translate(logical)
	if !ok {
		m.log.Error("memory: translation failed", "logical", logical)
		m.ic.Trigger(IntInvalidAddress, m.reg)

		return
	}

	if phys < 0 || phys >= MemorySize {
		m.log.Error("memory: out of bounds", "phys", phys)
		m.ic.Trigger(IntInvalidAddress, m.reg)

		return
	}

	if phys < OSRegionLimit && m.reg.PSW.OperationMode == ModeUser {
		m.log.Error("memory: privilege violation on write", "phys", phys)
		m.ic.Trigger(IntInvalidAddress, m.reg)

		return
	}

	m.cells[phys] = w
	m.log.Debug("memory: write", "phys", phys, "word", w.String())
}

// ReadInt is a convenience for Read followed by the integer codec.
func (m *Memory) ReadInt(logical int) int {
	return ToInt(m.Read(logical), m.log)
}

// WriteInt is a convenience for the integer codec followed by Write.
func (m *Memory) WriteInt(logical int, v int) {
	m.Write(logical, ToWord(v, m.log))
}

// ReadPhysical and WritePhysical bypass translation and privilege checks entirely. They exist for
// the loader, the DMA worker, and console inspection commands -- none of which are bound by the
// CPU's addressing discipline. They still bounds-check against MemorySize.
func (m *Memory) ReadPhysical(phys int) (Word, error) {
	if phys < 0 || phys >= MemorySize {
		return SentinelMemErr, &AddressError{Logical: phys, err: ErrAddress}
	}

	return m.cells[phys], nil
}

func (m *Memory) WritePhysical(phys int, w Word) error {
	if phys < 0 || phys >= MemorySize {
		return &AddressError{Logical: phys, err: ErrAddress}
	}

	m.cells[phys] = w

	return nil
}

// View returns a copy of the memory cells in the half-open range [start, end). It is intended for
// debugging and the console's "memory" command.
func (m *Memory) View(start, end int) []Word {
	if start < 0 {
		start = 0
	}

	if end > MemorySize {
		end = MemorySize
	}

	if start >= end {
		return nil
	}

	view := make([]Word, end-start)
	copy(view, m.cells[start:end])

	return view
}
