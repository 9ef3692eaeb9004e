/*
 * hcmp2200 - bank-address wire format shared by RCS, ICS and the Bank
 * Manipulator
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

// packBankAddress composes the 36-bit wire word every (L,BDI,offset)
// triple in this repo uses once it crosses into storage: the RCS/ICS
// reentry word (spec section 4.6.3, "word 0 = (PAR.H1 << 18) |
// (PAR.H2...)") and the LxJ/CALL operand format read from an X register
// (spec section 4.6.5). H1 packs L into its top 4 bits and BDI into the
// low 14; H2 carries the offset/PC. spec.md names PAR.H1/H2 but not
// their internal split, so this layout is this repo's own resolution.
func packBankAddress(l uint8, bdi uint16, offset uint32) word.Word36 {
	h1 := (uint64(l&0xF) << 14) | uint64(bdi&0x3FFF)
	h2 := uint64(offset) & 0o777777
	return word.Word36((h1<<18)|h2) & word.Mask
}

// unpackBankAddress reverses packBankAddress.
func unpackBankAddress(w word.Word36) (l uint8, bdi uint16, offset uint32) {
	h1 := uint64(w.GetField(word.H1))
	h2 := uint64(w.GetField(word.H2))
	l = uint8((h1 >> 14) & 0xF)
	bdi = uint16(h1 & 0x3FFF)
	offset = uint32(h2)
	return
}
