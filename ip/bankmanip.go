/*
 * hcmp2200 - Bank Manipulator
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package ip

import (
	"errors"

	"github.com/kduncan99/hcmp2200/msp"
	"github.com/kduncan99/hcmp2200/word"
)

var errBankFault = errors.New("ip: bank manipulator fault")

// bdEntryWords is the number of words one Bank Descriptor Table entry
// occupies. spec section 4.6.5 describes the Bank Manipulator's
// algorithm but not the BD's bit layout, so this repo's own 4-word
// format (upi/segment, lower/upper, ring/domain/permissions, subset
// offset) stands in for it.
const bdEntryWords = 4

type bankDescriptor struct {
	UPI     int
	Segment uint32
	Lower   uint32
	Upper   uint32
	Ring    uint8
	Domain  uint8
	General AccessPermissions
	Special AccessPermissions
	Subset  uint32
}

func permsFromBits(v word.Word36) AccessPermissions {
	return AccessPermissions{
		Enter: v&4 != 0,
		Read:  v&2 != 0,
		Write: v&1 != 0,
	}
}

func readBankDescriptor(view msp.ArraySlice, bdi int) (bankDescriptor, error) {
	base := bdi * bdEntryWords
	w0, err := view.Get(base)
	if err != nil {
		return bankDescriptor{}, err
	}
	w1, err := view.Get(base + 1)
	if err != nil {
		return bankDescriptor{}, err
	}
	w2, err := view.Get(base + 2)
	if err != nil {
		return bankDescriptor{}, err
	}
	w3, err := view.Get(base + 3)
	if err != nil {
		return bankDescriptor{}, err
	}
	return bankDescriptor{
		UPI:     int(w0.GetField(word.H1)),
		Segment: uint32(w0.GetField(word.H2)),
		Lower:   uint32(w1.GetField(word.H1)),
		Upper:   uint32(w1.GetField(word.H2)),
		Ring:    uint8(w2.GetField(word.S1)),
		Domain:  uint8(w2.GetField(word.S2)),
		General: permsFromBits(w2.GetField(word.S3)),
		Special: permsFromBits(w2.GetField(word.S4)),
		Subset:  uint32(w3),
	}, nil
}

func accessKeyRing(key uint32) uint8   { return uint8((key >> 6) & 0o77) }
func accessKeyDomain(key uint32) uint8 { return uint8(key & 0o77) }

// selectPermissions implements spec section 4.6.5 step 3's "choose
// general vs special permissions": a requester whose ring is at least as
// privileged as the BD's and whose domain matches gets General;
// everyone else gets Special.
func (p *IP) selectPermissions(bd bankDescriptor) AccessPermissions {
	ring := accessKeyRing(p.Regs.IKR.AccessKey)
	domain := accessKeyDomain(p.Regs.IKR.AccessKey)
	if ring <= bd.Ring && domain == bd.Domain {
		return bd.General
	}
	return bd.Special
}

// bankTarget names one Bank Manipulator load: the destination base
// register slot and the (L,BDI) to load into it.
type bankTarget struct {
	Slot int
	L    uint8
	BDI  uint16
}

// loadBank implements spec section 4.6.5 steps 2, 3, 4 and 6: read the BD
// from the level-L BDT via B(16+L), check access, and install the
// expansion plus a storage view into B(target.Slot). forExecution gates
// the enter-permission check (code banks only; spec step 3, "check
// enter/read for code banks").
func (p *IP) loadBank(target bankTarget, forExecution bool) error {
	bdtReg := 16 + int(target.L)
	if bdtReg < 16 || bdtReg >= BaseRegisterCount {
		p.Interrupts.Post(Interrupt{Class: ClassAddressingException})
		return errBankFault
	}
	bdtView, err := p.resolveBase(bdtReg)
	if err != nil {
		p.Interrupts.Post(Interrupt{Class: ClassAddressingException})
		return errBankFault
	}
	bd, err := readBankDescriptor(bdtView, int(target.BDI))
	if err != nil || bd.UPI == 0 {
		p.Interrupts.Post(Interrupt{Class: ClassReferenceViolation})
		return errBankFault
	}
	if bd.Lower > bd.Upper {
		p.Interrupts.Post(Interrupt{Class: ClassAddressingException})
		return errBankFault
	}
	perms := p.selectPermissions(bd)
	if forExecution && !perms.Enter {
		p.Interrupts.Post(Interrupt{Class: ClassReferenceViolation})
		return errBankFault
	}

	m, ok := p.msps.MSP(bd.UPI)
	if !ok {
		p.Interrupts.Post(Interrupt{Class: ClassReferenceViolation})
		return errBankFault
	}
	if _, err := m.GetStorage(int(bd.Segment)); err != nil {
		p.Interrupts.Post(Interrupt{Class: ClassReferenceViolation})
		return errBankFault
	}

	p.Regs.B[target.Slot] = BaseRegister{
		Valid:   true,
		Lower:   bd.Lower,
		Upper:   bd.Upper,
		MSPUpi:  bd.UPI,
		Segment: bd.Segment,
		General: bd.General,
		Special: bd.Special,
	}
	if target.Slot < len(p.Regs.ABT) {
		p.Regs.ABT[target.Slot] = ActiveBaseTableEntry{
			Level:        target.L,
			BDI:          target.BDI,
			SubsetOffset: bd.Subset,
		}
	}
	return nil
}

// bankOperand reads the (L,BDI,offset) triple an LxJ/CALL instruction
// names through its Xa register, packed the same way as an RCS/ICS
// reentry word (spec section 4.6.5 step 1, "derive the target L,BDI from
// the instruction's operand").
func (p *IP) bankOperand(xa int) (uint8, uint16, uint32) {
	return unpackBankAddress(p.Regs.X(xa))
}

// execLBU loads the BD named by Xa into the explicit base register
// instr.B without branching (spec section 4.6.3, "LBU").
func (p *IP) execLBU(instr Instruction) {
	l, bdi, _ := p.bankOperand(instr.X)
	_ = p.loadBank(bankTarget{Slot: instr.B, L: l, BDI: bdi}, false)
}

// execLBJ loads the BD named by Xa into B0 and jumps to its offset
// (spec section 4.6.3, "LBJ ... delegate to the Bank Manipulator").
func (p *IP) execLBJ(instr Instruction) {
	l, bdi, offset := p.bankOperand(instr.X)
	if p.loadBank(bankTarget{Slot: 0, L: l, BDI: bdi}, true) != nil {
		return
	}
	p.Regs.PAR.L = l
	p.Regs.PAR.BDI = bdi
	p.Regs.PAR.PC = offset
	p.jumped = true
}

// execLDJ unpacks Xa exactly as execLBJ does (no bits of Xa are masked)
// and targets B14 or B15 instead of B0
// (spec section 4.6.3: "base-register selected is B14 (DB31=0) or B15
// (DB31=1)"). This repo has no raw-bit model of the Designator Register
// to read DB31 from directly, so the low bit of Xa.XI stands in for it
// (see DESIGN.md).
func (p *IP) execLDJ(instr Instruction) {
	l, bdi, offset := p.bankOperand(instr.X)
	slot := 14
	if p.Regs.XI(instr.X)&1 != 0 {
		slot = 15
	}
	if p.loadBank(bankTarget{Slot: slot, L: l, BDI: bdi}, true) != nil {
		return
	}
	p.Regs.PAR.L = l
	p.Regs.PAR.BDI = bdi
	p.Regs.PAR.PC = offset
	p.jumped = true
}

// execCall is the Bank Manipulator's CALL path: push an RCS frame with
// the current reentry state, load the target BD into B0, then branch
// (spec section 4.6.5 step 5, "For CALL/GOTO: push an RCS frame before
// branching").
func (p *IP) execCall(instr Instruction) {
	l, bdi, offset := p.bankOperand(instr.X)
	if err := p.rcsPush(rcsFrame{
		ReentryL:   p.Regs.PAR.L,
		ReentryBDI: p.Regs.PAR.BDI,
		ReentryPC:  p.Regs.PAR.PC,
		BField:     uint8(instr.B),
		DRBits:     p.Regs.DR.ToWord(),
		AccessKey:  p.Regs.IKR.AccessKey,
	}); err != nil {
		return
	}
	if p.loadBank(bankTarget{Slot: 0, L: l, BDI: bdi}, true) != nil {
		return
	}
	p.Regs.PAR.L = l
	p.Regs.PAR.BDI = bdi
	p.Regs.PAR.PC = offset
	p.jumped = true
}
