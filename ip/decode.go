/*
 * hcmp2200 - instruction word decode and operand-address resolution
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
	"fmt"

	"github.com/kduncan99/hcmp2200/word"
)

// codeBaseRegister is B0, this repo's reading of "the code bank" spec
// section 4.6.2 fetches instructions from; it is also the Bank
// Manipulator's implicit CALL/LBJ target (spec section 4.6.5 step 4,
// "B0 for CALL").
const codeBaseRegister = 0

// maxIndirectChase bounds the indirect-address chase of spec section
// 4.6.2 step 4 ("chasing indirect addresses until i=0 or interrupt");
// spec.md does not name a limit, so a long chain raises an addressing
// exception rather than looping the fetch-decode-execute loop forever.
const maxIndirectChase = 16

// rawInstructionWord is this repo's bit layout for the 36-bit instruction
// word (spec section 4.6.2: "{f,j,a,x,h,i,u|b,d}"). spec.md names the
// fields but not their widths; f/j/a/x/h/i are fixed regardless of mode,
// and the remaining 16 bits are either one 16-bit operand field (Basic
// mode, u) or a base-register selector plus displacement (Extended
// mode, b+d).
type rawInstructionWord struct {
	F, J, A, X, H, I uint32
	U                uint32
	B                uint32
	D                uint32
}

func decodeInstructionWord(w word.Word36, basicMode bool) rawInstructionWord {
	v := uint64(w)
	r := rawInstructionWord{
		F: uint32((v >> 30) & 0o77),
		J: uint32((v >> 26) & 0o17),
		A: uint32((v >> 22) & 0o17),
		X: uint32((v >> 18) & 0o17),
		H: uint32((v >> 17) & 1),
		I: uint32((v >> 16) & 1),
	}
	if basicMode {
		r.U = uint32(v & 0o177777)
	} else {
		r.B = uint32((v >> 12) & 0o17)
		r.D = uint32(v & 0o7777)
	}
	return r
}

// opcodeTable maps the f-field to this repo's Opcode taxonomy. Any value
// not listed decodes to OpInvalid and raises ClassInvalidInstruction
// (spec section 9, "do not invent behavior" for undocumented families).
var opcodeTable = map[uint32]Opcode{
	0o01: OpLA,
	0o02: OpSA,
	0o03: OpAA,
	0o04: OpANA,
	0o05: OpSSA,
	0o06: OpTE,
	0o07: OpTNE,
	0o10: OpJ,
	0o11: OpJZ,
	0o12: OpJNZ,
	0o13: OpJGD,
	0o14: OpBUY,
	0o15: OpSELL,
	0o16: OpCALL,
	0o17: OpRTN,
	0o20: OpLBU,
	0o21: OpLBJ,
	0o22: OpLDJ,
}

func opcodeFromF(f uint32) Opcode {
	if op, ok := opcodeTable[f]; ok {
		return op
	}
	return OpInvalid
}

// resolveOperandAddress implements spec section 4.6.2 step 4: add
// X(x).XM to U when x != 0, then chase indirect addresses while i=1,
// re-decoding the fetched word as the same {u|b,d} layout each hop.
// Returns the final operand offset and the base register it is relative
// to (Basic mode always resolves against the code bank; Extended mode's
// b-field names the base register directly).
func (p *IP) resolveOperandAddress(raw rawInstructionWord) (uint32, int, error) {
	var u uint32
	baseReg := codeBaseRegister
	if p.Regs.DR.BasicMode {
		u = raw.U
	} else {
		baseReg = int(raw.B)
		u = raw.D
	}
	if raw.X != 0 {
		u += uint32(p.Regs.XM(int(raw.X)))
	}

	for i, hops := raw.I, 0; i != 0; hops++ {
		if hops >= maxIndirectChase {
			return 0, 0, fmt.Errorf("ip: indirect address chain exceeds %d hops", maxIndirectChase)
		}
		view, err := p.resolveBase(baseReg)
		if err != nil {
			return 0, 0, err
		}
		w, err := view.Get(int(u))
		if err != nil {
			return 0, 0, err
		}
		next := decodeInstructionWord(w, p.Regs.DR.BasicMode)
		if p.Regs.DR.BasicMode {
			u = next.U
		} else {
			baseReg = int(next.B)
			u = next.D
		}
		i = next.I
	}
	return u, baseReg, nil
}
