package vm

import "testing"

// word is a small helper: failing the test on a malformed literal is acceptable in test code, since
// every literal here is authored by hand and checked by inspection.
func word(t *testing.T, s string) Word {
	t.Helper()

	w, err := WordFromDigits(s)
	if err != nil {
		t.Fatalf("WordFromDigits(%q): %v", s, err)
	}

	return w
}

// identityProgram builds a Program with Base=0, Limit=0 so that translate() runs in its identity
// mode (RB=0 and RL=0): logical addresses equal physical ones, letting a test's literal addresses
// be read directly off the instruction list.
func identityProgram(words ...Word) Program {
	return Program{Base: 0, Limit: 0, Words: words}
}

func TestCPUArithmeticAndStore(t *testing.T) {
	// LOAD #15; SUM #3; STR 400; HALT.
	p := identityProgram(
		word(t, "04100015"),
		word(t, "00100003"),
		word(t, "05000400"),
		word(t, "40000000"),
	)

	m := New(NopLogger())
	m.Load(NewDefaultLoader(), p)
	m.Start()
	m.Run(10)

	if m.CPU.State() != Halted {
		t.Fatalf("CPU state = %s, want HALTED", m.CPU.State())
	}

	if got := m.Registers.Get(AC); got != 18 {
		t.Errorf("AC = %d, want 18", got)
	}

	if got := m.Memory.ReadInt(400); got != 18 {
		t.Errorf("memory[400] = %d, want 18", got)
	}
}

func TestCPUJumpLoop(t *testing.T) {
	// LOAD #2; JMP 3; (never executed); HALT.
	p := identityProgram(
		word(t, "04100002"),
		word(t, "27000003"),
		word(t, "00009999"),
		word(t, "40000000"),
	)

	m := New(NopLogger())
	m.Load(NewDefaultLoader(), p)
	m.Start()
	m.Run(10)

	if m.CPU.State() != Halted {
		t.Fatalf("CPU state = %s, want HALTED", m.CPU.State())
	}

	if got := m.Registers.Get(AC); got != 2 {
		t.Errorf("AC = %d, want 2", got)
	}

	untouched, err := m.Memory.ReadPhysical(2)
	if err != nil {
		t.Fatalf("ReadPhysical(2): %v", err)
	}

	if untouched != word(t, "00009999") {
		t.Errorf("memory[2] = %s, want it to remain as loaded (never executed)", untouched)
	}
}

func TestCPUPrivilegeFaultOnStore(t *testing.T) {
	// The program sits at 300 (user space) and the region is reset to identity (RB=0, RL=0) after
	// loading, so both fetches succeed in USER mode and only the store targets the OS region.
	p := Program{Base: 300, Words: []Word{
		word(t, "44000000"), // SWUSER
		word(t, "05000000"), // STR 0 (inside the protected OS region)
	}}

	m := New(NopLogger())
	m.Registers.PSW.InterruptEnabled = true
	m.Load(NewDefaultLoader(), p)
	m.Memory.SetMemoryRegion(0, 0)
	m.Start()

	m.Step() // SWUSER
	if m.Registers.PSW.OperationMode != ModeUser {
		t.Fatalf("expected USER mode after SWUSER")
	}

	m.Step() // STR 0, then HandlePending, which re-enters KERNEL mode per the dispatcher
	if !m.Interrupt.Pending(IntInvalidAddress) && m.Registers.PSW.OperationMode != ModeKernel {
		t.Error("expected a privilege violation to have been dispatched")
	}
}

func TestCPUDMARoundTrip(t *testing.T) {
	// DMAZ #4; DMAC track=0,cyl=0,sector=0; DMAW mem_addr=500; DMAWAIT; DMAR mem_addr=600; DMAWAIT; HALT.
	p := identityProgram(
		word(t, "33000004"),
		word(t, "32000000"),
		word(t, "29000500"),
		word(t, "30000000"),
		word(t, "28000600"),
		word(t, "30000000"),
		word(t, "40000000"),
	)

	m := New(NopLogger())
	m.Registers.PSW.InterruptEnabled = true
	m.Load(NewDefaultLoader(), p)
	m.Start()
	m.Run(20)

	if m.CPU.State() != Halted {
		t.Fatalf("CPU state = %s, want HALTED", m.CPU.State())
	}

	if m.DMA.State() != DMAIdle {
		t.Errorf("DMA state = %s, want IDLE", m.DMA.State())
	}

	if m.DMA.Status() != int(DMAStatusOK) {
		t.Error("expected OK DMA status")
	}

	w, err := m.Memory.ReadPhysical(600)
	if err != nil {
		t.Fatalf("ReadPhysical(600): %v", err)
	}

	if w == ZeroWord {
		t.Error("expected the DMA read transfer to have written a synthetic payload at 600")
	}
}

func TestCPUArithmeticOverflowRaisesInterrupt(t *testing.T) {
	// spec.md section 8 scenario 6: AC := 9_999_000; SUM #2000 -> 10_001_000, which exceeds
	// MaxMagnitude. Expect the word codec to encode AC as the OVERFLOW sentinel, INT_OVERFLOW to
	// have been raised and dispatched within the same cycle (setting cc=3), and the handler to
	// have forced kernel mode.
	p := identityProgram(word(t, "00102000"))

	m := New(NopLogger())
	m.Registers.PSW.InterruptEnabled = true
	m.Registers.Set(AC, 9_999_000)
	m.Load(NewDefaultLoader(), p)
	m.Start()
	m.Step()

	if got := m.Registers.Get(AC); got != 0 {
		t.Errorf("AC decodes to %d after an overflowing SUM, want 0 (OVERFLOW sentinel)", got)
	}

	if m.Registers.Word(AC) != SentinelOverflow {
		t.Errorf("AC word = %s, want the OVERFLOW sentinel", m.Registers.Word(AC))
	}

	if m.Registers.PSW.ConditionCode != CCOverflow {
		t.Errorf("cc = %d, want Overflow (3)", m.Registers.PSW.ConditionCode)
	}

	if m.Registers.PSW.OperationMode != ModeKernel {
		t.Error("expected the overflow handler to have forced KERNEL mode")
	}

	if m.Interrupt.Pending(IntOverflow) {
		t.Error("INT_OVERFLOW should have been cleared by the same cycle's dispatch")
	}
}

func TestCPUConditionalJumpAndCompare(t *testing.T) {
	// LOAD #5; CMP #5; JEQ 4; NOP (skipped); HALT.
	p := identityProgram(
		word(t, "04100005"),
		word(t, "06100005"),
		word(t, "09000004"),
		word(t, "41000000"),
		word(t, "40000000"),
	)

	m := New(NopLogger())
	m.Load(NewDefaultLoader(), p)
	m.Start()
	m.Run(10)

	if m.CPU.State() != Halted {
		t.Fatalf("CPU state = %s, want HALTED", m.CPU.State())
	}

	if m.Registers.PSW.ConditionCode != CCEqual {
		t.Errorf("cc = %d, want Equal", m.Registers.PSW.ConditionCode)
	}
}

func TestCPUCallAndReturn(t *testing.T) {
	// CALL 3; HALT (return target); NOP (unreached if RET works); MOV #9, RET.
	p := identityProgram(
		word(t, "14000003"),
		word(t, "40000000"),
		word(t, "41000000"),
		word(t, "08100009"),
		word(t, "15000000"),
	)

	m := New(NopLogger())
	m.Load(NewDefaultLoader(), p)
	m.Start()
	m.Run(10)

	if m.CPU.State() != Halted {
		t.Fatalf("CPU state = %s, want HALTED", m.CPU.State())
	}

	if got := m.Registers.Get(AC); got != 9 {
		t.Errorf("AC = %d, want 9 (set by the called routine before RET)", got)
	}
}
