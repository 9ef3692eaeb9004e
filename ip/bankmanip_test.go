package ip

import (
	"testing"

	"github.com/kduncan99/hcmp2200/word"
)

// writeBankDescriptor installs one 4-word BD entry at the conventional
// bdi*bdEntryWords offset (mirrors readBankDescriptor's layout).
func writeBankDescriptor(t *testing.T, view interface {
	Set(int, word.Word36) error
}, bdi int, upi int, segment, lower, upper uint32, ring, domain uint8, enter, read, write bool) {
	t.Helper()
	base := bdi * bdEntryWords
	w0 := word.Word36(0).SetField(word.H1, word.Word36(upi)).SetField(word.H2, word.Word36(segment))
	w1 := word.Word36(0).SetField(word.H1, word.Word36(lower)).SetField(word.H2, word.Word36(upper))
	var perm word.Word36
	if enter {
		perm |= 4
	}
	if read {
		perm |= 2
	}
	if write {
		perm |= 1
	}
	w2 := word.Word36(0).SetField(word.S1, word.Word36(ring)).SetField(word.S2, word.Word36(domain)).
		SetField(word.S3, perm).SetField(word.S4, perm)
	if err := view.Set(base, w0); err != nil {
		t.Fatalf("Set BD word0: %v", err)
	}
	if err := view.Set(base+1, w1); err != nil {
		t.Fatalf("Set BD word1: %v", err)
	}
	if err := view.Set(base+2, w2); err != nil {
		t.Fatalf("Set BD word2: %v", err)
	}
	if err := view.Set(base+3, word.Word36(0)); err != nil {
		t.Fatalf("Set BD word3: %v", err)
	}
}

func TestExecLBULoadsExplicitSlotWithoutJumping(t *testing.T) {
	p, m := newTestIP(t)
	bdtSeg := m.CreateSegment(64)
	p.Regs.B[16] = BaseRegister{Valid: true, MSPUpi: 1, Segment: uint32(bdtSeg)}
	codeSeg := m.CreateSegment(4096)
	bdtView, _ := m.GetStorage(bdtSeg)
	writeBankDescriptor(t, bdtView, 9, 1, uint32(codeSeg), 0, 0o7777, 0, 0, true, true, true)

	p.Regs.SetX(2, packBankAddress(0, 9, 0o1234))
	p.Regs.PAR.PC = 0o500

	p.execLBU(Instruction{X: 2, B: 5})

	if !p.Regs.B[5].Valid {
		t.Fatal("B5 not loaded")
	}
	if p.Regs.B[5].Segment != uint32(codeSeg) {
		t.Fatalf("B5.Segment = %d, want %d", p.Regs.B[5].Segment, codeSeg)
	}
	if p.jumped {
		t.Fatal("LBU must not branch")
	}
	if p.Regs.PAR.PC != 0o500 {
		t.Fatalf("PAR.PC = %#o, want unchanged 0o500", p.Regs.PAR.PC)
	}
	if p.Regs.ABT[5].BDI != 9 {
		t.Fatalf("ABT[5].BDI = %#o, want 9", p.Regs.ABT[5].BDI)
	}
}

func TestExecLBJLoadsB0AndJumps(t *testing.T) {
	p, m := newTestIP(t)
	bdtSeg := m.CreateSegment(64)
	p.Regs.B[16] = BaseRegister{Valid: true, MSPUpi: 1, Segment: uint32(bdtSeg)}
	codeSeg := m.CreateSegment(4096)
	bdtView, _ := m.GetStorage(bdtSeg)
	writeBankDescriptor(t, bdtView, 3, 1, uint32(codeSeg), 0, 0o7777, 0, 0, true, true, true)

	p.Regs.SetX(1, packBankAddress(0, 3, 0o2000))

	p.execLBJ(Instruction{X: 1})

	if !p.jumped {
		t.Fatal("LBJ must branch")
	}
	if p.Regs.PAR.BDI != 3 || p.Regs.PAR.PC != 0o2000 {
		t.Fatalf("PAR = %+v, want BDI=3 PC=0o2000", p.Regs.PAR)
	}
	if !p.Regs.B[0].Valid || p.Regs.B[0].Segment != uint32(codeSeg) {
		t.Fatalf("B0 = %+v, not loaded from the BD", p.Regs.B[0])
	}
}

func TestExecLDJSelectsSlotByXaLowBit(t *testing.T) {
	p, m := newTestIP(t)
	bdtSeg := m.CreateSegment(64)
	p.Regs.B[16] = BaseRegister{Valid: true, MSPUpi: 1, Segment: uint32(bdtSeg)}
	codeSeg := m.CreateSegment(4096)
	bdtView, _ := m.GetStorage(bdtSeg)
	writeBankDescriptor(t, bdtView, 1, 1, uint32(codeSeg), 0, 0o7777, 0, 0, true, true, true)

	// bdi=1 is odd, so its low bit (carried in Xa.XI, which packs L/BDI)
	// selects B15 rather than B14 (execLDJ's DB31 stand-in, see bankmanip.go).
	p.Regs.SetX(3, packBankAddress(0, 1, 0o100))

	p.execLDJ(Instruction{X: 3})

	if !p.jumped {
		t.Fatal("LDJ must branch")
	}
	if !p.Regs.B[15].Valid {
		t.Fatal("expected B15 loaded (XI odd)")
	}
	if p.Regs.B[14].Valid {
		t.Fatal("B14 must stay untouched when XI selects B15")
	}
}

func TestLoadBankDeniedWithoutEnterPermission(t *testing.T) {
	p, m := newTestIP(t)
	bdtSeg := m.CreateSegment(64)
	p.Regs.B[16] = BaseRegister{Valid: true, MSPUpi: 1, Segment: uint32(bdtSeg)}
	codeSeg := m.CreateSegment(4096)
	bdtView, _ := m.GetStorage(bdtSeg)
	// General perms deny enter; requester's ring/domain match the BD's,
	// so General (not Special) governs and the load must be refused.
	writeBankDescriptor(t, bdtView, 2, 1, uint32(codeSeg), 0, 0o7777, 0, 0, false, true, true)

	p.Regs.SetX(4, packBankAddress(0, 2, 0o300))

	p.execLBJ(Instruction{X: 4})

	if p.jumped {
		t.Fatal("expected the enter-permission check to refuse the branch")
	}
	i, ok := p.Interrupts.Peek()
	if !ok || i.Class != ClassReferenceViolation {
		t.Fatalf("expected a pending ReferenceViolation, got %+v ok=%v", i, ok)
	}
}

func TestExecCallPushesRCSFrameThenLoadsB0(t *testing.T) {
	p, m := newTestIP(t)
	rcsSeg := m.CreateSegment(64)
	p.Regs.B[25] = BaseRegister{Valid: true, MSPUpi: 1, Segment: uint32(rcsSeg)}
	bdtSeg := m.CreateSegment(64)
	p.Regs.B[16] = BaseRegister{Valid: true, MSPUpi: 1, Segment: uint32(bdtSeg)}
	codeSeg := m.CreateSegment(4096)
	bdtView, _ := m.GetStorage(bdtSeg)
	writeBankDescriptor(t, bdtView, 7, 1, uint32(codeSeg), 0, 0o7777, 0, 0, true, true, true)

	p.Regs.PAR.L = 2
	p.Regs.PAR.BDI = 44
	p.Regs.PAR.PC = 0o6000
	p.Regs.SetX(5, packBankAddress(0, 7, 0o777))

	p.execCall(Instruction{X: 5, B: 1})

	if !p.jumped {
		t.Fatal("CALL must branch")
	}
	if p.Regs.PAR.BDI != 7 || p.Regs.PAR.PC != 0o777 {
		t.Fatalf("PAR = %+v, want BDI=7 PC=0o777", p.Regs.PAR)
	}
	if !p.Regs.B[0].Valid {
		t.Fatal("B0 not loaded by CALL")
	}

	f, err := p.rcsPop()
	if err != nil {
		t.Fatalf("rcsPop: %v", err)
	}
	if f.ReentryL != 2 || f.ReentryBDI != 44 || f.ReentryPC != 0o6000 {
		t.Fatalf("popped frame = %+v, want reentry L=2 BDI=44 PC=0o6000", f)
	}
}
