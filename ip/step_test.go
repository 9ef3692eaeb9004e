package ip

import (
	"testing"

	"github.com/kduncan99/hcmp2200/word"
)

// step fetches the instruction word at PAR.PC from the code bank, decodes
// it, resolves U, executes it, and advances PC by 1 (spec section 4.6.2
// steps 2-7).
func TestStepFetchDecodeExecuteAdvancesPC(t *testing.T) {
	p, m := newTestIP(t)
	p.Regs.DR.BasicMode = true
	// Basic mode always resolves the operand address against the code
	// bank (B0), so instruction and operand share one segment here.
	codeSeg := m.CreateSegment(64)
	p.Regs.B[0] = BaseRegister{Valid: true, MSPUpi: 1, Segment: uint32(codeSeg)}
	codeView, _ := m.GetStorage(codeSeg)

	instrWord := buildBasicWord(0o01, 0o1, 0o1, 0, 0, 0, 21) // LA A1,H1, U=21
	if err := codeView.Set(0, instrWord); err != nil {
		t.Fatalf("Set instr: %v", err)
	}
	if err := codeView.Set(21, word.Word36(0o555555)<<18); err != nil {
		t.Fatalf("Set operand: %v", err)
	}

	p.Regs.PAR.PC = 0

	p.step()

	if got := p.Regs.A(1); got != word.Word36(0o555555) {
		t.Fatalf("A1 = %#o, want 0o555555 (loaded via resolved U)", got)
	}
	if p.Regs.PAR.PC != 1 {
		t.Fatalf("PAR.PC = %d, want 1", p.Regs.PAR.PC)
	}
	if p.Regs.QuantumTimer != DefaultQuantum {
		t.Fatalf("QuantumTimer = %d, want %d", p.Regs.QuantumTimer, DefaultQuantum)
	}
}

// A jump instruction must not receive the PC += 1 advance on top of the
// jump target.
func TestStepJumpDoesNotDoubleAdvancePC(t *testing.T) {
	p, m := newTestIP(t)
	p.Regs.DR.BasicMode = true
	codeSeg := m.CreateSegment(64)
	p.Regs.B[0] = BaseRegister{Valid: true, MSPUpi: 1, Segment: uint32(codeSeg)}
	view, _ := m.GetStorage(codeSeg)

	jmp := buildBasicWord(0o10, 0, 0, 0, 0, 0, 0o40)
	if err := view.Set(0, jmp); err != nil {
		t.Fatalf("Set: %v", err)
	}

	p.Regs.PAR.PC = 0
	p.step()

	if p.Regs.PAR.PC != 0o40 {
		t.Fatalf("PAR.PC = %#o, want 0o40 (jump target, not target+1)", p.Regs.PAR.PC)
	}
}

// An unmapped code bank is a hard stop, not a silent stall or panic: B0
// is required infrastructure for fetch itself, unlike an operand bank.
func TestStepFetchFromUnmappedBankHardStops(t *testing.T) {
	p, _ := newTestIP(t)
	p.Regs.PAR.PC = 0

	p.step()

	reason, _ := p.StopReason()
	if reason != StopHardwareCheck {
		t.Fatalf("StopReason = %v, want StopHardwareCheck", reason)
	}
}
