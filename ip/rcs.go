/*
 * hcmp2200 - Return Control Stack (RCS) frame push/pop
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

	"github.com/kduncan99/hcmp2200/word"
)

// rcsBaseRegister is B25, the Return Control Stack base (spec GLOSSARY
// "RCS: Return Control Stack, addressed via B25").
const rcsBaseRegister = 25

// rcsXReg is the index register this repo dedicates to the RCS frame
// pointer, an implementation choice spec.md leaves to the IP ("addressed
// via B25 + X-register pair (index = X-register for ICS)" for the ICS;
// the analogous RCS index register is not pinned by name in spec.md, so
// the RCS uses X15, next to the ICS's X14 (see icsXReg)).
const rcsXReg = 15

var errRCSUnderflow = errors.New("ip: rcs underflow")
var errRCSOverflow = errors.New("ip: rcs overflow")

// rcsFrame is the 2-word return-control-stack frame (spec section 4.6.3
// "Return stack").
type rcsFrame struct {
	ReentryL   uint8
	ReentryBDI uint16
	ReentryPC  uint32
	BField     uint8
	DRBits     word.Word36
	AccessKey  uint32
}

func (p *IP) rcsPush(f rcsFrame) error {
	view, err := p.resolveBase(rcsBaseRegister)
	if err != nil {
		return err
	}
	idx := int(p.Regs.X(rcsXReg))
	w0 := packBankAddress(f.ReentryL, f.ReentryBDI, f.ReentryPC+1)
	w1 := word.Word36(uint64(f.BField&3)<<24) | (f.DRBits & 0o000077_000000) | word.Word36(f.AccessKey)
	if err := view.Set(idx, w0); err != nil {
		return errRCSOverflow
	}
	if err := view.Set(idx+1, w1); err != nil {
		return errRCSOverflow
	}
	p.Regs.SetX(rcsXReg, word.Word36(idx+2))
	return nil
}

func (p *IP) rcsPop() (rcsFrame, error) {
	view, err := p.resolveBase(rcsBaseRegister)
	if err != nil {
		return rcsFrame{}, err
	}
	idx := int(p.Regs.X(rcsXReg)) - 2
	if idx < 0 {
		return rcsFrame{}, errRCSUnderflow
	}
	w0, err := view.Get(idx)
	if err != nil {
		return rcsFrame{}, errRCSUnderflow
	}
	w1, err := view.Get(idx + 1)
	if err != nil {
		return rcsFrame{}, errRCSUnderflow
	}
	p.Regs.SetX(rcsXReg, word.Word36(idx))
	l, bdi, pc := unpackBankAddress(w0)
	return rcsFrame{
		ReentryL:   l,
		ReentryBDI: bdi,
		ReentryPC:  pc - 1,
		BField:     uint8((w1 >> 24) & 3),
		DRBits:     w1 & 0o000077_000000,
		AccessKey:  uint32(w1 & 0o777777),
	}, nil
}

// Call pushes the current PAR/DR/access-key as an RCS frame, so a later
// Return can restore them (spec section 4.6.5 step 5, testable property
// 9: a balanced CALL/RTN pair restores GRS, DR (except transient bits)
// and IKR.AccessKey identically).
func (p *IP) Call(bField uint8) error {
	return p.rcsPush(rcsFrame{
		ReentryL:   p.Regs.PAR.L,
		ReentryBDI: p.Regs.PAR.BDI,
		ReentryPC:  p.Regs.PAR.PC,
		BField:     bField,
		DRBits:     p.Regs.DR.ToWord(),
		AccessKey:  p.Regs.IKR.AccessKey,
	})
}

// Return pops an RCS frame and restores PAR, DR's partial bits and
// IKR.AccessKey from it.
func (p *IP) Return() error {
	f, err := p.rcsPop()
	if err != nil {
		return err
	}
	p.Regs.PAR.L = f.ReentryL
	p.Regs.PAR.BDI = f.ReentryBDI
	p.Regs.PAR.PC = f.ReentryPC
	p.Regs.DR.applyPartialBits(f.DRBits)
	p.Regs.IKR.AccessKey = f.AccessKey
	return nil
}
