/*
 * hcmp2200 - 36-bit ones'-complement word arithmetic
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

// Package word implements 36-bit ones'-complement word arithmetic, the
// leaf-level data type shared by every other core package.
package word

import "math/bits"

// Word36 holds an unsigned 36-bit value in the low bits of a 64-bit cell.
// Bits 36..63 are always zero.
type Word36 uint64

const (
	// Mask is the set of bits a Word36 ever occupies.
	Mask     Word36 = 0o777777_777777
	signBit  Word36 = 0o400000_000000
	NegZero  Word36 = 0o777777_777777
	PosZero  Word36 = 0
	bitWidth        = 36
)

// Normalize masks a value down to 36 bits.
func Normalize(v uint64) Word36 {
	return Word36(v) & Mask
}

// IsNegative reports whether the sign bit is set.
func (w Word36) IsNegative() bool {
	return w&signBit != 0
}

// IsZero reports whether w is +0 or -0.
func (w Word36) IsZero() bool {
	return w == PosZero || w == NegZero
}

// Negate returns the ones'-complement negation (bitwise NOT within 36 bits).
func Negate(w Word36) Word36 {
	return (^w) & Mask
}

// Compare performs a sign-aware comparison where +0 and -0 compare equal.
// Returns -1, 0, or 1.
func Compare(a, b Word36) int {
	if a.IsZero() && b.IsZero() {
		return 0
	}
	an, bn := a.IsNegative(), b.IsNegative()
	switch {
	case an && !bn:
		return -1
	case !an && bn:
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// AddResult is the outcome of a 36-bit ones'-complement add.
type AddResult struct {
	Value    Word36
	Carry    bool
	Overflow bool
}

// Add36 adds two 36-bit ones'-complement operands with end-around carry.
func Add36(a, b Word36) AddResult {
	// +0 / -0 end-around special case: adding opposite-signed zeros
	// always yields +0.
	if a.IsZero() && b.IsZero() {
		return AddResult{Value: PosZero}
	}

	sum := uint64(a) + uint64(b)
	carry := sum > uint64(Mask)
	if carry {
		sum = (sum & uint64(Mask)) + 1 // end-around carry
	}
	result := Word36(sum) & Mask

	aNeg, bNeg := a.IsNegative(), b.IsNegative()
	rNeg := result.IsNegative()
	overflow := aNeg == bNeg && rNeg != aNeg

	return AddResult{Value: result, Carry: carry, Overflow: overflow}
}

// Sub36 computes a-b as a+Negate(b).
func Sub36(a, b Word36) AddResult {
	return Add36(a, b.negated())
}

func (w Word36) negated() Word36 {
	return Negate(w)
}

// LeftShiftCircular rotates the 36-bit value left by n bits (0..35).
func LeftShiftCircular(a Word36, n uint) Word36 {
	n %= bitWidth
	if n == 0 {
		return a & Mask
	}
	v := uint64(a) & uint64(Mask)
	return Word36(((v << n) | (v >> (bitWidth - n))) & uint64(Mask))
}

// RightShiftCircular rotates the 36-bit value right by n bits (0..35).
func RightShiftCircular(a Word36, n uint) Word36 {
	n %= bitWidth
	if n == 0 {
		return a & Mask
	}
	return LeftShiftCircular(a, bitWidth-n)
}

// RightShiftAlgebraic shifts right, sign-extending the vacated bits.
func RightShiftAlgebraic(a Word36, n uint) Word36 {
	if n == 0 {
		return a & Mask
	}
	if n >= bitWidth {
		n = bitWidth - 1
	}
	if a.IsNegative() {
		fill := (uint64(1)<<n - 1) << (bitWidth - n)
		return Word36((uint64(a)>>n)|fill) & Mask
	}
	return Word36(uint64(a) >> n)
}

// RightShiftLogical shifts right with zero fill.
func RightShiftLogical(a Word36, n uint) Word36 {
	if n >= bitWidth {
		return 0
	}
	return Word36(uint64(a) >> n)
}

// LeftShiftLogical shifts left with zero fill, truncating to 36 bits.
func LeftShiftLogical(a Word36, n uint) Word36 {
	if n >= bitWidth {
		return 0
	}
	return Word36(uint64(a)<<n) & Mask
}

// Mul36 returns the 72-bit ones'-complement product as a DoubleWord36,
// sign following the usual rule (negative iff exactly one operand negative).
func Mul36(a, b Word36) DoubleWord36 {
	aMag, aNeg := magnitude(a)
	bMag, bNeg := magnitude(b)
	hi, lo := bits.Mul64(aMag, bMag)
	product := DoubleWord36{
		High: Word36(hi<<(64-bitWidth)|lo>>bitWidth) & Mask,
		Low:  Word36(lo) & Mask,
	}
	if aNeg != bNeg {
		return DoubleWord36{High: Negate(product.High), Low: Negate(product.Low)}
	}
	return product
}

// DivResult is the outcome of a 72-bit/36-bit ones'-complement divide.
type DivResult struct {
	Quotient  Word36
	Remainder Word36
	DivByZero bool
}

// Div72 divides a 72-bit dividend by a 36-bit divisor.
func Div72(dividend DoubleWord36, divisor Word36) DivResult {
	if divisor.IsZero() {
		return DivResult{DivByZero: true}
	}
	dividMag, dividNeg := dividend.magnitude()
	divMag, divNeg := magnitude(divisor)
	q := dividMag / divMag
	r := dividMag % divMag
	qNeg := dividNeg != divNeg
	rNeg := dividNeg
	return DivResult{
		Quotient:  fromMagnitude(q, qNeg),
		Remainder: fromMagnitude(r, rNeg),
	}
}

func magnitude(w Word36) (mag uint64, neg bool) {
	if w.IsNegative() {
		return uint64(Negate(w)), true
	}
	return uint64(w), false
}

func fromMagnitude(mag uint64, neg bool) Word36 {
	v := Word36(mag) & Mask
	if neg {
		return Negate(v)
	}
	return v
}
