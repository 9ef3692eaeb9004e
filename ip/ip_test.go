package ip

import (
	"testing"

	"github.com/kduncan99/hcmp2200/msp"
	"github.com/kduncan99/hcmp2200/word"
)

type fakeMSPRegistry struct{ m *msp.MSP }

func (f fakeMSPRegistry) MSP(upi int) (*msp.MSP, bool) {
	if upi != 1 {
		return nil, false
	}
	return f.m, true
}

func newTestIP(t *testing.T) (*IP, *msp.MSP) {
	t.Helper()
	m := msp.New(4096)
	p := New(7, fakeMSPRegistry{m: m}, nil)
	return p, m
}

// S1 - BUY (stack allocate).
func TestBUYAllocatesStackSpace(t *testing.T) {
	p, _ := newTestIP(t)
	p.Regs.B[2] = BaseRegister{Valid: true, Lower: 0o1000, Upper: 0o10000}
	p.Regs.SetXI(3, 16)
	p.Regs.SetXM(3, 0o1200) // 128 + 0o1000 (octal 0o200 == decimal 128)

	p.BUY(3, 2)

	if got := p.Regs.XM(3); got != 0o1160 {
		t.Fatalf("Xa.XM = %#o, want 0o1160", got)
	}
	if got := p.Regs.XI(3); got != 16 {
		t.Fatalf("Xa.XI = %#o, want 16", got)
	}
	reason, detail := p.StopReason()
	if reason != StopDebug || detail != 0 {
		t.Fatalf("stop = (%v, %#o), want (Debug, 0)", reason, detail)
	}
}

// S2 - BUY overflow.
func TestBUYOverflow(t *testing.T) {
	p, _ := newTestIP(t)
	p.Regs.B[2] = BaseRegister{Valid: true, Lower: 0o1000, Upper: 0o10000}
	p.Regs.SetXI(3, 16)
	p.Regs.SetXM(3, 0o1000)

	p.BUY(3, 2)

	reason, detail := p.StopReason()
	if reason != StopHardwareCheck || detail != 0o1013 {
		t.Fatalf("stop = (%v, %#o), want (HardwareCheck, 0o1013)", reason, detail)
	}
	if p.Regs.IKR.ShortStatus != 0 {
		t.Fatalf("ShortStatus = %d, want 0", p.Regs.IKR.ShortStatus)
	}
	i, ok := p.Interrupts.Peek()
	if !ok || i.Class != ClassRCSGenericStackUnderflowOverflow || i.StackReason != StackOverflow {
		t.Fatalf("expected pending RCSGenericStackUnderflowOverflow/Overflow, got %+v ok=%v", i, ok)
	}
}

// S3 - SELL underflow.
func TestSELLUnderflow(t *testing.T) {
	p, _ := newTestIP(t)
	p.Regs.B[2] = BaseRegister{Valid: true, Lower: 0o1000, Upper: 0o1200}
	p.Regs.SetXI(3, 16)
	p.Regs.SetXM(3, 0o1200)

	p.SELL(3, 2)

	reason, detail := p.StopReason()
	if reason != StopHardwareCheck || detail != 0o1013 {
		t.Fatalf("stop = (%v, %#o), want (HardwareCheck, 0o1013)", reason, detail)
	}
	if p.Regs.IKR.ShortStatus != 1 {
		t.Fatalf("ShortStatus = %d, want 1", p.Regs.IKR.ShortStatus)
	}
	i, ok := p.Interrupts.Peek()
	if !ok || i.StackReason != StackUnderflow {
		t.Fatalf("expected pending Underflow, got %+v ok=%v", i, ok)
	}
}

// Testable property 8: interrupt priority.
func TestInterruptPriorityLowerClassRunsFirst(t *testing.T) {
	p, m := newTestIP(t)
	icsSeg := m.CreateSegment(64)
	p.Regs.B[26] = BaseRegister{Valid: true, MSPUpi: 1, Segment: uint32(icsSeg)}
	ivtSeg := m.CreateSegment(64)
	p.Regs.B[16] = BaseRegister{Valid: true, MSPUpi: 1, Segment: uint32(ivtSeg)}

	ivt, err := m.GetStorage(ivtSeg)
	if err != nil {
		t.Fatalf("GetStorage(ivt): %v", err)
	}
	if err := ivt.Set(int(ClassQuantumTimer), packBankAddress(1, 2, 0o1000)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := ivt.Set(int(ClassAddressingException), packBankAddress(3, 4, 0o2000)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	p.Interrupts.Post(Interrupt{Class: ClassQuantumTimer})        // 11
	p.Interrupts.Post(Interrupt{Class: ClassAddressingException}) // 2

	p.serviceInterrupts()

	if p.Regs.IKR.InterruptClass != int(ClassAddressingException) {
		t.Fatalf("IKR.InterruptClass = %d, want %d (AddressingException ran first)",
			p.Regs.IKR.InterruptClass, ClassAddressingException)
	}
	if p.Regs.PAR.L != 3 || p.Regs.PAR.BDI != 4 || p.Regs.PAR.PC != 0o2000 {
		t.Fatalf("PAR = %+v, want loaded from the class-2 vector entry", p.Regs.PAR)
	}
	if !p.Regs.DR.ExecRegisterSelected || p.Regs.DR.BasicMode || p.Regs.DR.ProcessorPrivilege != 0 {
		t.Fatalf("DR after interrupt entry = %+v, want extended mode / PP=0 / exec-register-set", p.Regs.DR)
	}
	if p.Interrupts.Len() != 1 {
		t.Fatalf("expected 1 interrupt remaining, got %d", p.Interrupts.Len())
	}

	p.serviceInterrupts()
	if p.Regs.IKR.InterruptClass != int(ClassQuantumTimer) {
		t.Fatalf("second service: IKR.InterruptClass = %d, want %d", p.Regs.IKR.InterruptClass, ClassQuantumTimer)
	}
	if p.Regs.PAR.L != 1 || p.Regs.PAR.BDI != 2 || p.Regs.PAR.PC != 0o1000 {
		t.Fatalf("PAR = %+v, want loaded from the class-11 vector entry", p.Regs.PAR)
	}
}

// Testable property 9: RCS discipline across a balanced CALL/RTN.
func TestRCSDisciplineBalancedCallReturn(t *testing.T) {
	p, m := newTestIP(t)
	seg := m.CreateSegment(64)
	p.Regs.B[25] = BaseRegister{Valid: true, MSPUpi: 1, Segment: uint32(seg)}

	p.Regs.SetA(4, 0o123456_123456)
	p.Regs.DR.ProcessorPrivilege = 2
	p.Regs.IKR.AccessKey = 0o42

	p.Regs.PAR.L = 3
	p.Regs.PAR.PC = 0o1000

	if err := p.Call(1); err != nil {
		t.Fatalf("Call: %v", err)
	}

	// simulate the callee mutating unrelated state then returning
	savedA4 := p.Regs.A(4)
	savedPP := p.Regs.DR.ProcessorPrivilege
	savedKey := p.Regs.IKR.AccessKey
	p.Regs.PAR.PC = 0o2000 // callee moved on

	if err := p.Return(); err != nil {
		t.Fatalf("Return: %v", err)
	}

	if p.Regs.A(4) != savedA4 {
		t.Fatalf("A4 = %#o, want unchanged %#o", p.Regs.A(4), savedA4)
	}
	if p.Regs.DR.ProcessorPrivilege != savedPP {
		t.Fatalf("DR.ProcessorPrivilege = %d, want unchanged %d", p.Regs.DR.ProcessorPrivilege, savedPP)
	}
	if p.Regs.IKR.AccessKey != savedKey {
		t.Fatalf("IKR.AccessKey = %#o, want unchanged %#o", p.Regs.IKR.AccessKey, savedKey)
	}
	if p.Regs.PAR.PC != 0o1000 {
		t.Fatalf("PAR.PC = %#o, want restored reentry 0o1000", p.Regs.PAR.PC)
	}
}

// Testable property 10: IP stop semantics.
func TestStopSemantics(t *testing.T) {
	p, _ := newTestIP(t)
	p.resume()
	if p.IsStopped() {
		t.Fatal("expected running after resume")
	}
	p.Stop(StopCleared, 0)
	if !p.IsStopped() {
		t.Fatal("expected stopped after Stop(Cleared, 0)")
	}
	reason, _ := p.StopReason()
	if reason != StopCleared {
		t.Fatalf("reason = %v, want Cleared", reason)
	}
}

func TestFieldRoundTripLoadStore(t *testing.T) {
	p, _ := newTestIP(t)
	p.Execute(Instruction{Op: OpLA, A: 1, J: word.H1, Operand: word.Word36(0o777777) << 18})
	if got := p.Regs.A(1); got != word.Word36(0o777777) {
		t.Fatalf("A1 = %#o, want 0o777777 (H1 field extracted from operand)", got)
	}
}
