/*
 * hcmp2200 - Instruction Processor
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

// Package ip implements the Instruction Processor (spec section 4.6): the
// register file, fetch-decode-execute loop, interrupt handling, and the
// instruction taxonomy's representative opcode handlers.
package ip

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/kduncan99/hcmp2200/msp"
	"github.com/kduncan99/hcmp2200/word"
)

// MSPRegistry resolves a processor's UPI to its MSP (shared shape with
// channel.MSPRegistry).
type MSPRegistry interface {
	MSP(upi int) (*msp.MSP, bool)
}

// DefaultQuantum is the default quantum-timer charge per instruction
// (spec section 4.6.2, "20 units per instruction").
const DefaultQuantum = 20

// IP is one Instruction Processor.
type IP struct {
	UPI  int
	Regs Registers

	Interrupts interruptQueue

	msps MSPRegistry
	log  *slog.Logger

	mu         sync.Mutex
	stopped    bool
	stopReason StopReason
	stopDetail uint16
	terminate  bool
	dumpQueue  []io.Writer
	cond       *sync.Cond

	// jumped records whether the instruction just executed branched, so
	// step does not also advance PAR.PC by 1/2 (spec section 4.6.2 step
	// 6: "unless the handler jumped").
	jumped bool
}

// New creates an IP bound to the given UPI index and MSP registry. The IP
// starts stopped (spec section 5: "while no interrupt pending and
// stopped=true, park").
func New(upiIndex int, msps MSPRegistry, log *slog.Logger) *IP {
	if log == nil {
		log = slog.Default()
	}
	p := &IP{
		UPI:     upiIndex,
		msps:    msps,
		log:     log.With("ip", upiIndex),
		stopped: true,
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

func (p *IP) resolveBase(breg int) (msp.ArraySlice, error) {
	b := p.Regs.B[breg]
	if !b.Valid || b.Void {
		return msp.ArraySlice{}, fmt.Errorf("ip: base register B%d void or unset", breg)
	}
	m, ok := p.msps.MSP(b.MSPUpi)
	if !ok {
		return msp.ArraySlice{}, fmt.Errorf("ip: unknown msp upi %d", b.MSPUpi)
	}
	return m.GetStorage(int(b.Segment))
}

// stop records a halt reason/detail and wakes any waiter (spec section 7:
// "IP stops with a StopReason and a 12-bit detail code").
func (p *IP) stop(reason StopReason, detail uint16) {
	p.mu.Lock()
	p.stopped = true
	p.stopReason = reason
	p.stopDetail = detail
	p.mu.Unlock()
	p.cond.Broadcast()
}

// Stop requests a halt (spec section 5 "IP.stop(reason, detail) sets a
// latch; the IP leaves its run loop at the next interrupt boundary").
func (p *IP) Stop(reason StopReason, detail uint16) {
	p.stop(reason, detail)
}

// IsStopped reports whether the IP is currently halted (testable
// property 10).
func (p *IP) IsStopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

// StopReason returns the last recorded halt reason and detail code.
func (p *IP) StopReason() (StopReason, uint16) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopReason, p.stopDetail
}

// resume clears the stopped latch, e.g. after an operator IPL/start
// request (not exercised by the spec's concrete scenarios, but required
// for the IP to ever leave its parked state).
func (p *IP) resume() {
	p.mu.Lock()
	p.stopped = false
	p.mu.Unlock()
	p.cond.Broadcast()
}

// Start clears the stopped latch and launches the fetch-decode-execute
// loop; call on its own goroutine (spec section 5, "one worker thread per
// processor").
func (p *IP) Start() {
	p.resume()
	p.Run()
}

// Run is the fetch-decode-execute loop (spec section 4.6.2). Each
// iteration parks while the IP is stopped, then services the
// highest-priority non-deferred pending interrupt, then runs one
// fetch-decode-execute cycle unless the IP is stopped by then. Run
// returns only after Terminate.
func (p *IP) Run() {
	for {
		p.mu.Lock()
		for p.stopped && !p.terminate {
			p.cond.Wait()
		}
		terminating := p.terminate
		p.mu.Unlock()
		if terminating {
			return
		}
		p.serviceInterrupts()
		if p.IsStopped() {
			continue
		}
		p.step()
	}
}

// step runs one fetch-decode-execute cycle (spec section 4.6.2 steps
// 2..7).
func (p *IP) step() {
	codeView, err := p.resolveBase(codeBaseRegister)
	if err != nil {
		p.log.Error("fetch: code bank unavailable", "error", err)
		p.stop(StopHardwareCheck, 0)
		return
	}
	iw, err := codeView.Get(int(p.Regs.PAR.PC))
	if err != nil {
		p.Interrupts.Post(Interrupt{Class: ClassAddressingException})
		return
	}

	raw := decodeInstructionWord(iw, p.Regs.DR.BasicMode)
	u, baseReg, err := p.resolveOperandAddress(raw)
	if err != nil {
		p.Interrupts.Post(Interrupt{Class: ClassAddressingException})
		return
	}

	instr := Instruction{
		Op:      opcodeFromF(raw.F),
		J:       word.PartialWord(raw.J),
		A:       int(raw.A),
		X:       int(raw.X),
		B:       int(raw.B),
		BaseReg: baseReg,
		U:       u,
	}
	switch instr.Op {
	case OpLA, OpAA, OpANA, OpSSA, OpTE, OpTNE:
		if view, err := p.resolveBase(baseReg); err == nil {
			if v, err := view.Get(int(u)); err == nil {
				instr.Operand = v
			}
		}
	case OpJ, OpJZ, OpJNZ, OpJGD:
		instr.Operand = word.Word36(u)
	}

	p.jumped = false
	skip := p.Execute(instr)

	if !p.jumped {
		if skip {
			p.Regs.PAR.PC += 2
		} else {
			p.Regs.PAR.PC++
		}
	}

	p.Regs.QuantumTimer += DefaultQuantum
}

// serviceInterrupts dispatches the single highest-priority pending,
// non-deferred interrupt, if any, running the full interrupt-entry
// sequence of spec section 4.6.4 (testable property 8).
func (p *IP) serviceInterrupts() {
	i, ok := p.Interrupts.Peek()
	if !ok {
		return
	}
	if !p.Regs.DR.DeferrableInterruptEnabled && i.Deferrable {
		return
	}
	i, _ = p.Interrupts.Pop()

	if err := p.icsPush(icsFrame{
		ReentryL:   p.Regs.PAR.L,
		ReentryBDI: p.Regs.PAR.BDI,
		ReentryPC:  p.Regs.PAR.PC,
		DRBits:     p.Regs.DR.ToWord(),
		IKRBits:    p.Regs.IKR.ToWord(),
	}); err != nil {
		p.log.Error("interrupt entry: ICS save failed", "class", i.Class, "error", err)
		p.stop(StopHardwareCheck, 0)
		return
	}

	vector, err := p.resolveBase(ivtBaseRegister)
	if err != nil {
		p.log.Error("interrupt entry: level-0 BDT unavailable", "error", err)
		p.stop(StopHardwareCheck, 0)
		return
	}
	entry, err := vector.Get(int(i.Class))
	if err != nil {
		p.log.Error("interrupt entry: vector fetch failed", "class", i.Class, "error", err)
		p.stop(StopHardwareCheck, 0)
		return
	}

	l, bdi, pc := unpackBankAddress(entry)
	p.Regs.PAR.L = l
	p.Regs.PAR.BDI = bdi
	p.Regs.PAR.PC = pc
	p.Regs.DR.BasicMode = false
	p.Regs.DR.ProcessorPrivilege = 0
	p.Regs.DR.ExecRegisterSelected = true

	p.Regs.IKR.InterruptClass = int(i.Class)
	p.log.Debug("servicing interrupt", "class", i.Class)
}

// Terminate stops the worker permanently.
func (p *IP) Terminate() {
	p.mu.Lock()
	p.terminate = true
	p.mu.Unlock()
	p.cond.Broadcast()
}

// Dump writes a human-readable state snapshot. Only the IP's own worker
// goroutine may call this in a running system (spec section 9: external
// observers reach state only via a dump protocol the IP serves itself);
// tests call it directly against a parked IP.
func (p *IP) Dump(w io.Writer) error {
	_, err := fmt.Fprintf(w, "IP upi=%d stopped=%v reason=%v detail=%#o PAR={L:%d BDI:%#o PC:%#o}\n",
		p.UPI, p.IsStopped(), p.stopReason, p.stopDetail, p.Regs.PAR.L, p.Regs.PAR.BDI, p.Regs.PAR.PC)
	return err
}
