package ip

import (
	"testing"

	"github.com/kduncan99/hcmp2200/word"
)

// OpSA (Store-A) must write A's J-field back through the resolved
// operand address, not discard it.
func TestOpSAStoresBackToMemory(t *testing.T) {
	p, m := newTestIP(t)
	seg := m.CreateSegment(16)
	p.Regs.B[3] = BaseRegister{Valid: true, MSPUpi: 1, Segment: uint32(seg)}
	view, _ := m.GetStorage(seg)
	if err := view.Set(5, word.Word36(0o777777_000000)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	p.Regs.SetA(1, word.Word36(0o123456))

	p.Execute(Instruction{Op: OpSA, A: 1, J: word.H2, BaseReg: 3, U: 5})

	got, err := view.Get(5)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := word.Word36(0o777777_000000).SetField(word.H2, word.Word36(0o123456))
	if got != want {
		t.Fatalf("stored word = %#o, want %#o (H1 preserved, H2 replaced)", got, want)
	}
}

func TestOpSAAddressingFaultOnVoidBase(t *testing.T) {
	p, _ := newTestIP(t)
	p.Regs.SetA(1, word.Word36(0o1))

	p.Execute(Instruction{Op: OpSA, A: 1, J: word.H2, BaseReg: 9, U: 0})

	i, ok := p.Interrupts.Peek()
	if !ok || i.Class != ClassAddressingException {
		t.Fatalf("expected a pending AddressingException, got %+v ok=%v", i, ok)
	}
}
