/*
 * hcmp2200 - Absolute addressing and access control types
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

// Package addr defines the machine-wide absolute addressing and access
// control vocabulary shared by the MSP, IP, UPI fabric and Inventory.
package addr

// HiddenUPI is the sentinel UPI value identifying the hidden configuration
// MSP that holds the UPI mail-slot table (spec section 3, sentinel address).
const HiddenUPI = -1

// AbsoluteAddress uniquely identifies one 36-bit word in the machine.
type AbsoluteAddress struct {
	UPI     int // -1 (hidden) or 0..15
	Segment uint32
	Offset  uint64
}

// Equal reports componentwise equality.
func (a AbsoluteAddress) Equal(b AbsoluteAddress) bool {
	return a.UPI == b.UPI && a.Segment == b.Segment && a.Offset == b.Offset
}

// AccessInfo is the ring/domain pair compared against bank-descriptor
// permissions on every storage access.
type AccessInfo struct {
	Ring   uint8  // 0..3, 0 most privileged
	Domain uint16 // 0..65535
}

// AccessPermissions is the {enter, read, write} triple stored (twice) on
// every bank descriptor.
type AccessPermissions struct {
	Enter bool
	Read  bool
	Write bool
}

// IsMoreOrEquallyPrivileged reports whether a has at-least-as-high
// privilege as b (lower ring number is more privileged).
func (a AccessInfo) IsMoreOrEquallyPrivileged(b AccessInfo) bool {
	return a.Ring <= b.Ring
}
