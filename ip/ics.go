/*
 * hcmp2200 - Interrupt Control Stack (ICS) frame push
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

import "github.com/kduncan99/hcmp2200/word"

// icsBaseRegister is B26, the Interrupt Control Stack base (spec section
// 4.6.4 step 1: "Interrupt Control Stack (ICS) via B26+X-register pair").
const icsBaseRegister = 26

// icsXReg is the index register this repo dedicates to the ICS frame
// pointer. spec.md names B26 but leaves the paired X-register to the IP
// (as it does for the RCS, see rcsXReg); this repo picks the adjacent
// X14 so the two frame pointers don't collide.
const icsXReg = 14

// ivtBaseRegister is B16, the level-0 Bank Descriptor Table whose own
// bank also holds the 64-word Interrupt Vector at word 0 (spec section
// 4.6.4 step 2).
const ivtBaseRegister = 16

// icsFrame is the state an interrupt entry saves (spec section 4.6.4
// step 1: "PAR, DR, IKR, partial-instruction mid-execution marker").
type icsFrame struct {
	ReentryL   uint8
	ReentryBDI uint16
	ReentryPC  uint32
	DRBits     word.Word36
	IKRBits    word.Word36
}

// icsPush saves an interrupt entry's reentry state to the ICS, 3 words
// per frame (PAR, DR, IKR).
func (p *IP) icsPush(f icsFrame) error {
	view, err := p.resolveBase(icsBaseRegister)
	if err != nil {
		return err
	}
	idx := int(p.Regs.X(icsXReg))
	if err := view.Set(idx, packBankAddress(f.ReentryL, f.ReentryBDI, f.ReentryPC)); err != nil {
		return err
	}
	if err := view.Set(idx+1, f.DRBits); err != nil {
		return err
	}
	if err := view.Set(idx+2, f.IKRBits); err != nil {
		return err
	}
	p.Regs.SetX(icsXReg, word.Word36(idx+3))
	return nil
}
