/*
 * hcmp2200 - BUY/SELL stack instructions
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

// stackFaultDetail is the StopReason detail code raised by BUY/SELL
// under/overflow (spec S2/S3 scenarios).
const stackFaultDetail = 0o1013

// BUY decrements Xa.XM by Xa.XI; no word is written to breg's bank. It
// raises RCSGenericStackUnderflowOverflow/Overflow when the
// decremented XM would fall below breg's lower limit (spec section
// 4.6.3 "Stack").
func (p *IP) BUY(xa, breg int) {
	xi := p.Regs.XI(xa)
	xm := p.Regs.XM(xa)
	res := word.Sub36(xm, xi)
	lower := word.Word36(p.Regs.B[breg].Lower)
	if word.Compare(res.Value, lower) < 0 {
		p.raiseStackFault(StackOverflow, 0)
		return
	}
	p.Regs.SetXM(xa, res.Value)
	p.stop(StopDebug, 0)
}

// SELL increments Xa.XM by Xa.XI; no word is written to breg's bank. It
// raises
// RCSGenericStackUnderflowOverflow/Underflow when the incremented XM would
// exceed breg's upper limit.
func (p *IP) SELL(xa, breg int) {
	xi := p.Regs.XI(xa)
	xm := p.Regs.XM(xa)
	res := word.Add36(xm, xi)
	upper := word.Word36(p.Regs.B[breg].Upper)
	if word.Compare(res.Value, upper) > 0 {
		p.raiseStackFault(StackUnderflow, 1)
		return
	}
	p.Regs.SetXM(xa, res.Value)
	p.stop(StopDebug, 0)
}

func (p *IP) raiseStackFault(reason StackReason, shortStatus uint8) {
	p.Interrupts.Post(Interrupt{
		Class:       ClassRCSGenericStackUnderflowOverflow,
		StackReason: reason,
	})
	p.Regs.IKR.ShortStatus = shortStatus
	p.stop(StopHardwareCheck, stackFaultDetail)
}
