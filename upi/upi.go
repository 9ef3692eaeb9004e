/*
 * hcmp2200 - Inter-Processor Interrupt (UPI) fabric
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

// Package upi implements the mail-slot based send/ack signalling fabric
// that coordinates I/O and system-level events between processors (spec
// section 4.7). Generalized from the teacher's single shared
// master.Packet channel (emu/core/core.go) to a per-processor pending-set
// pair guarded by its own monitor.
package upi

import (
	"sync"
	"time"
)

// Fabric holds the per-processor pending sets for every UPI index in the
// machine (0..15). One Fabric instance is owned by the InventoryManager
// and shared by reference with every processor's worker.
type Fabric struct {
	mu                sync.Mutex
	pendingInterrupts map[int]map[int]bool // dest upi -> set of source upi
	pendingAcks       map[int]map[int]bool
	wake              map[int]chan struct{} // dest upi -> notify channel
}

// NewFabric creates an empty fabric.
func NewFabric() *Fabric {
	return &Fabric{
		pendingInterrupts: make(map[int]map[int]bool),
		pendingAcks:       make(map[int]map[int]bool),
		wake:              make(map[int]chan struct{}),
	}
}

func (f *Fabric) wakeChan(dest int) chan struct{} {
	ch, ok := f.wake[dest]
	if !ok {
		ch = make(chan struct{}, 1)
		f.wake[dest] = ch
	}
	return ch
}

func (f *Fabric) notify(dest int) {
	ch := f.wakeChan(dest)
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Send enqueues source into dest's pendingInterrupts set and wakes any
// worker waiting on the fabric. Never blocks beyond the enqueue itself;
// drops are impossible since membership in a set saturates rather than
// queues (spec section 4.7).
func (f *Fabric) Send(source, dest int) {
	f.mu.Lock()
	set, ok := f.pendingInterrupts[dest]
	if !ok {
		set = make(map[int]bool)
		f.pendingInterrupts[dest] = set
	}
	set[source] = true
	f.notify(dest)
	f.mu.Unlock()
}

// Ack enqueues source into dest's pendingAcknowledgements set.
func (f *Fabric) Ack(source, dest int) {
	f.mu.Lock()
	set, ok := f.pendingAcks[dest]
	if !ok {
		set = make(map[int]bool)
		f.pendingAcks[dest] = set
	}
	set[source] = true
	f.notify(dest)
	f.mu.Unlock()
}

// DrainInterrupts returns and clears the set of sources with a pending
// interrupt signal for dest.
func (f *Fabric) DrainInterrupts(dest int) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := f.pendingInterrupts[dest]
	out := make([]int, 0, len(set))
	for src := range set {
		out = append(out, src)
	}
	delete(f.pendingInterrupts, dest)
	return out
}

// DrainAcks returns and clears the set of sources with a pending
// acknowledgement for dest.
func (f *Fabric) DrainAcks(dest int) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := f.pendingAcks[dest]
	out := make([]int, 0, len(set))
	for src := range set {
		out = append(out, src)
	}
	delete(f.pendingAcks, dest)
	return out
}

// HasPending reports whether dest has any pending interrupt or ack,
// without draining, so a worker can decide whether to wake.
func (f *Fabric) HasPending(dest int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pendingInterrupts[dest]) > 0 || len(f.pendingAcks[dest]) > 0
}

// WaitTimeout blocks until dest has pending work, a signal arrives, or the
// timeout elapses (whichever first); returns whether there is pending work
// to drain. Workers (IOP, SP) use this for their bounded
// wakeups (spec section 5, "timed wait (<=100 ms)").
func (f *Fabric) WaitTimeout(dest int, d time.Duration) bool {
	if f.HasPending(dest) {
		return true
	}
	f.mu.Lock()
	ch := f.wakeChan(dest)
	f.mu.Unlock()
	select {
	case <-ch:
	case <-time.After(d):
	}
	return f.HasPending(dest)
}
