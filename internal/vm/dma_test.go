package vm

import "testing"

func newTestDMA() (*DMAController, *Memory, *Disk, *InterruptController, *Registers) {
	log := NopLogger()
	reg := NewRegisters(log)
	ic := NewInterruptController(log)
	mem := NewMemory(reg, ic, log)
	dsk := NewDisk(log)
	dma := NewDMAController(mem, dsk, ic, reg, log)

	return dma, mem, dsk, ic, reg
}

func TestDMAConfigRejectedWhileNotIdle(t *testing.T) {
	dma, _, _, _, reg := newTestDMA()
	reg.PSW.InterruptEnabled = true

	dma.SetIOOperation(DMARead)
	dma.SetTransferSize(1)
	dma.SetMemoryAddress(500)
	dma.StartTransfer()
	dma.WaitCompletion()

	// Reconfigure mid-flight by forcing a non-idle state directly (the worker already finished and
	// reset to idle above, so force it to exercise the reject path deterministically).
	dma.state = DMAReading

	dma.SetMemoryAddress(999)
	if dma.memAddr == 999 {
		t.Error("SetMemoryAddress should be ignored while not idle")
	}

	dma.SetTransferSize(7)
	if dma.nWords == 7 {
		t.Error("SetTransferSize should be ignored while not idle")
	}

	dma.SetDiskLocation(1, 1, 1)
	if dma.diskTrack == 1 {
		t.Error("SetDiskLocation should be ignored while not idle")
	}

	dma.SetIOOperation(DMAWrite)
	if dma.operation == DMAWrite {
		t.Error("SetIOOperation should be ignored while not idle")
	}
}

func TestDMAReadTransferRoundTrip(t *testing.T) {
	dma, mem, _, ic, reg := newTestDMA()
	reg.PSW.InterruptEnabled = true

	dma.SetDiskLocation(0, 0, 0)
	dma.SetIOOperation(DMARead)
	dma.SetTransferSize(3)
	dma.SetMemoryAddress(500)

	dma.StartTransfer()
	dma.WaitCompletion()

	if dma.State() != DMAIdle {
		t.Errorf("state = %s, want IDLE after a clean transfer", dma.State())
	}

	if dma.Status() != int(DMAStatusOK) {
		t.Error("expected OK status after a clean transfer")
	}

	if !ic.Pending(IntIOCompletion) {
		t.Error("expected INT_IO_COMPLETION pending after transfer")
	}

	w, err := mem.ReadPhysical(500)
	if err != nil {
		t.Fatalf("ReadPhysical(500): %v", err)
	}

	if w.String() == "00000000" {
		t.Error("expected the read transfer to have written a synthetic payload")
	}
}

func TestDMAWriteTransferRoundTrip(t *testing.T) {
	dma, mem, dsk, _, reg := newTestDMA()
	reg.PSW.InterruptEnabled = true

	if err := mem.WritePhysical(600, ToWord(42, NopLogger())); err != nil {
		t.Fatalf("WritePhysical: %v", err)
	}

	dma.SetDiskLocation(1, 0, 0)
	dma.SetIOOperation(DMAWrite)
	dma.SetTransferSize(1)
	dma.SetMemoryAddress(600)

	dma.StartTransfer()
	dma.WaitCompletion()

	if dma.State() != DMAIdle {
		t.Errorf("state = %s, want IDLE", dma.State())
	}

	got := dsk.ReadSector(1, 0, 0)
	if got != ToWord(42, NopLogger()).String() {
		t.Errorf("disk sector = %q, want the written word's text form", got)
	}
}

func TestDMAWaitCompletionNonBlockingWhenIdle(t *testing.T) {
	dma, _, _, _, _ := newTestDMA()

	// Should return immediately: no transfer was ever started.
	dma.WaitCompletion()

	if dma.State() != DMAIdle {
		t.Errorf("state = %s, want IDLE", dma.State())
	}
}

func TestDMAStartTransferIgnoredWithoutOperation(t *testing.T) {
	dma, _, _, _, reg := newTestDMA()
	reg.PSW.InterruptEnabled = true

	dma.SetTransferSize(1)
	dma.SetMemoryAddress(500)

	dma.StartTransfer()

	if dma.State() != DMAIdle {
		t.Errorf("state = %s, want IDLE: start_transfer with no operation configured must be a no-op", dma.State())
	}
}
