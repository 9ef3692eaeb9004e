/*
 * hcmp2200 - Inventory node topology
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

// Package inventory implements the process-wide InventoryManager (spec
// section 4.8): the single registry that creates, connects, and tears
// down every processor, channel module, and device under strict identity
// and topology invariants.
package inventory

// NodeKind tags the three node families (spec section 9: "tagged variant
// Node = {Processor(p), ChannelModule(cm), Device(d)}").
type NodeKind int

const (
	KindProcessor NodeKind = iota
	KindChannelModule
	KindDevice
)

// ProcessorClass distinguishes the four processor types (spec section 3,
// "Processor topology").
type ProcessorClass int

const (
	ClassSP ProcessorClass = iota
	ClassMSP
	ClassIOP
	ClassIP
)

// ChannelModuleKind distinguishes Byte vs. Word channel modules (spec
// section 4.4).
type ChannelModuleKind int

const (
	ChannelModuleByte ChannelModuleKind = iota
	ChannelModuleWord
)

// node is the shared record behind every inventory entry (spec section 9:
// "a shared NodeCommon record (name, address, descendants, ancestors)").
// Ancestor/descendant sets store handles (pointers into the inventory's
// own node table) rather than forming a reference cycle through exported
// state, per spec's "arena ownership" guidance.
type node struct {
	Name  string // uppercased, unique
	Kind  NodeKind

	// Processor-only.
	UPI   int
	Class ProcessorClass

	// ChannelModule/Device-only: the small integer index under the
	// immediate ancestor (cmIndex 0..6, or device index 0..15).
	Address int
	CMKind  ChannelModuleKind

	ancestors   []*node
	descendants []*node

	payload any
}

func (n *node) hasDescendant(d *node) bool {
	for _, x := range n.descendants {
		if x == d {
			return true
		}
	}
	return false
}

func (n *node) removeDescendant(d *node) {
	out := n.descendants[:0]
	for _, x := range n.descendants {
		if x != d {
			out = append(out, x)
		}
	}
	n.descendants = out
}

func (n *node) removeAncestor(a *node) {
	out := n.ancestors[:0]
	for _, x := range n.ancestors {
		if x != a {
			out = append(out, x)
		}
	}
	n.ancestors = out
}
