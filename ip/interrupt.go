/*
 * hcmp2200 - Instruction Processor interrupt model
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

// InterruptClass enumerates the 30 architectural interrupt classes (spec
// section 3); numeric value doubles as priority (lower runs first).
type InterruptClass int

const (
	ClassHardwareCheck InterruptClass = iota
	ClassReferenceViolation
	ClassAddressingException
	ClassRCSGenericStackUnderflowOverflow
	ClassSignal
	ClassTestAndSet
	ClassInvalidInstruction
	ClassPageException
	ClassArithmeticException
	ClassOperationTrap
	ClassBreakpoint
	ClassQuantumTimer
	ClassSoftwareBreak
	ClassJumpHistoryFull
	ClassDayclock
	ClassInitialProgramLoad
	ClassUPIInitial
	ClassUPINormal
	// Classes 18..37 are reserved/architecturally unassigned in spec.md.
)

// StackReason distinguishes BUY/SELL faults (spec S2/S3 scenarios).
type StackReason int

const (
	StackOverflow StackReason = iota
	StackUnderflow
)

// Interrupt is one queued architectural event (spec section 3).
type Interrupt struct {
	Class        InterruptClass
	Deferrable   bool
	StatusWord0  uint64
	StatusWord1  uint64
	StackReason  StackReason // meaningful only for ClassRCSGenericStackUnderflowOverflow
}

// interruptQueue holds pending interrupts; Pop returns the
// highest-priority (lowest class number) entry (testable property 8).
type interruptQueue struct {
	pending []Interrupt
}

func (q *interruptQueue) Post(i Interrupt) {
	q.pending = append(q.pending, i)
}

// Peek returns the highest-priority pending interrupt without removing it.
func (q *interruptQueue) Peek() (Interrupt, bool) {
	if len(q.pending) == 0 {
		return Interrupt{}, false
	}
	best := 0
	for i, e := range q.pending {
		if e.Class < q.pending[best].Class {
			best = i
		}
	}
	return q.pending[best], true
}

// Pop removes and returns the highest-priority pending interrupt.
func (q *interruptQueue) Pop() (Interrupt, bool) {
	if len(q.pending) == 0 {
		return Interrupt{}, false
	}
	best := 0
	for i, e := range q.pending {
		if e.Class < q.pending[best].Class {
			best = i
		}
	}
	out := q.pending[best]
	q.pending = append(q.pending[:best], q.pending[best+1:]...)
	return out, true
}

func (q *interruptQueue) Len() int { return len(q.pending) }

// StopReason records why the IP halted (spec section 7).
type StopReason int

const (
	StopNone StopReason = iota
	StopCleared
	StopDebug
	StopHardwareCheck
	StopInvalidInstruction
)

func (s StopReason) String() string {
	switch s {
	case StopNone:
		return "None"
	case StopCleared:
		return "Cleared"
	case StopDebug:
		return "Debug"
	case StopHardwareCheck:
		return "HardwareCheck"
	case StopInvalidInstruction:
		return "InvalidInstruction"
	default:
		return "Unknown"
	}
}
