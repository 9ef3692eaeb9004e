/*
 * hcmp2200 - instruction dispatch
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

// Opcode names the subset of the ~200-opcode taxonomy (spec section
// 4.6.3) this repo gives a concrete handler; everything else decodes to
// OpInvalid and raises ClassInvalidInstruction, per spec's "do not invent
// behavior" guidance for the families it does not document in enough
// detail to implement (spec section 9, Open Questions).
type Opcode int

const (
	OpInvalid Opcode = iota
	OpLA
	OpSA
	OpAA
	OpANA
	OpSSA
	OpTE
	OpTNE
	OpJ
	OpJZ
	OpJNZ
	OpJGD
	OpBUY
	OpSELL
	OpCALL
	OpRTN
	OpLBU
	OpLBJ
	OpLDJ
)

// Instruction is a decoded instruction: opcode plus the fields spec
// section 4.6.2 names ({f,j,a,x,h,i,u}). Run's fetch-decode step builds
// one of these per cycle (ip/decode.go) and resolves U/BaseReg before
// calling Execute; tests may also build one by hand and call Execute
// directly, bypassing fetch.
type Instruction struct {
	Op      Opcode
	J       word.PartialWord
	A       int // destination/source GRS-relative register index
	X       int // index register
	B       int // base register (bank manipulation / stack ops)
	BaseReg int // base register behind the resolved operand address U
	U       uint32
	Operand word.Word36
	Skip    bool
}

// Execute dispatches and runs one decoded instruction (spec section
// 4.6.2 step 5). Returns whether the next-instruction skip flag was set
// by the handler (step 6: "Advance PAR.PC by 1, or by 2 on skip").
func (p *IP) Execute(instr Instruction) bool {
	switch instr.Op {
	case OpLA:
		p.Regs.SetA(instr.A, instr.Operand.GetField(instr.J))
	case OpSA:
		p.storeOperand(instr, p.Regs.A(instr.A))
	case OpAA:
		res := word.Add36(p.Regs.A(instr.A), instr.Operand)
		p.Regs.DR.Overflow = res.Overflow
		p.Regs.DR.Carry = res.Carry
		p.Regs.SetA(instr.A, res.Value)
		if res.Overflow && p.Regs.DR.OperationTrapEnabled {
			p.Interrupts.Post(Interrupt{Class: ClassOperationTrap})
		}
	case OpANA:
		res := word.Sub36(p.Regs.A(instr.A), instr.Operand)
		p.Regs.DR.Overflow = res.Overflow
		p.Regs.SetA(instr.A, res.Value)
	case OpSSA:
		n := uint(instr.Operand & 0o77)
		p.Regs.SetA(instr.A, word.RightShiftAlgebraic(p.Regs.A(instr.A), n))
	case OpTE:
		return word.Compare(p.Regs.A(instr.A), instr.Operand) == 0
	case OpTNE:
		return word.Compare(p.Regs.A(instr.A), instr.Operand) != 0
	case OpJ:
		p.jump(instr)
		return false
	case OpJZ:
		if p.Regs.A(instr.A).IsZero() {
			p.jump(instr)
		}
		return false
	case OpJNZ:
		if !p.Regs.A(instr.A).IsZero() {
			p.jump(instr)
		}
		return false
	case OpJGD:
		reg := instr.A
		v := p.Regs.X(reg)
		if !v.IsNegative() && !v.IsZero() {
			p.jump(instr)
		}
		p.Regs.SetX(reg, word.Add36(v, word.Negate(1)).Value)
		return false
	case OpBUY:
		p.BUY(instr.X, instr.B)
	case OpSELL:
		p.SELL(instr.X, instr.B)
	case OpCALL:
		p.execCall(instr)
	case OpRTN:
		_ = p.Return()
	case OpLBU:
		p.execLBU(instr)
	case OpLBJ:
		p.execLBJ(instr)
	case OpLDJ:
		p.execLDJ(instr)
	default:
		p.Interrupts.Post(Interrupt{Class: ClassInvalidInstruction})
	}
	return false
}

func (p *IP) jump(instr Instruction) {
	p.Regs.PAR.PC = uint32(instr.Operand)
	p.jumped = true
}

// storeOperand writes v into the J-field of the word at the resolved
// operand address, preserving the rest of that word (spec section 4.6.3,
// Store family).
func (p *IP) storeOperand(instr Instruction, v word.Word36) {
	view, err := p.resolveBase(instr.BaseReg)
	if err != nil {
		p.Interrupts.Post(Interrupt{Class: ClassAddressingException})
		return
	}
	cur, err := view.Get(int(instr.U))
	if err != nil {
		p.Interrupts.Post(Interrupt{Class: ClassAddressingException})
		return
	}
	if err := view.Set(int(instr.U), cur.SetField(instr.J, v)); err != nil {
		p.Interrupts.Post(Interrupt{Class: ClassAddressingException})
	}
}
