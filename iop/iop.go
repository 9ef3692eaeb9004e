/*
 * hcmp2200 - Input/Output Processor
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

// Package iop implements the Input/Output Processor (spec section 4.5):
// receives startIO requests, routes them to the correct channel module,
// and raises a UPI interrupt back to the source processor once the
// channel module finalizes the program.
package iop

import (
	"log/slog"
	"sync"
	"time"

	"github.com/kduncan99/hcmp2200/channel"
	"github.com/kduncan99/hcmp2200/upi"
)

// MinCycle is the minimum worker wakeup period (spec section 4.5, "cycles
// every >=1ms").
const MinCycle = time.Millisecond

// ChannelModules resolves a channel-module index (0..6) attached to this
// IOP to its Module.
type ChannelModules interface {
	ChannelModule(cmIndex int) (*channel.Module, bool)
}

// IOP is one Input/Output Processor. It owns no storage of its own; its
// job is routing and UPI signalling.
type IOP struct {
	UPI     int
	log     *slog.Logger
	fabric  *upi.Fabric
	modules ChannelModules

	mu        sync.Mutex
	terminate bool
	done      chan struct{}
}

// New creates an IOP bound to the given UPI index, signal fabric, and
// channel-module registry.
func New(upiIndex int, fabric *upi.Fabric, modules ChannelModules, log *slog.Logger) *IOP {
	if log == nil {
		log = slog.Default()
	}
	return &IOP{
		UPI:     upiIndex,
		log:     log.With("iop", upiIndex),
		fabric:  fabric,
		modules: modules,
		done:    make(chan struct{}),
	}
}

// StartIO validates cmIndex, marks the program InProgress, and hands it to
// the channel module. Returns scheduled=false (with StatusUnconfiguredChannelModule
// recorded on the program) when cmIndex is unknown. Never blocks on
// completion (spec section 4.5).
func (p *IOP) StartIO(source int, prog *channel.Program) bool {
	cm, ok := p.modules.ChannelModule(prog.CMIndex)
	if !ok {
		prog.Status = channel.StatusUnconfiguredChannelModule
		p.log.Warn("startIO: unconfigured channel module", "cmIndex", prog.CMIndex, "source", source)
		return false
	}
	prog.IOPUpi = p.UPI
	cm.Submit(source, prog)
	return true
}

// ChannelComplete implements channel.CompletionSink: called by a channel
// module's worker when a program finishes. Posts the UPI interrupt back to
// the originating processor (spec section 4.4: "the IOP then notifies the
// original source processor via UPI").
func (p *IOP) ChannelComplete(t *channel.Tracker) {
	p.log.Debug("channel program complete", "source", t.Source, "status", t.Program.Status)
	p.fabric.Send(p.UPI, t.Source)
}

// Run services incoming UPI signals until Terminate is called. Cycles no
// faster than MinCycle, draining pending acks/interrupts each wakeup (spec
// section 4.5 / section 5 "timed wait (<=100ms)").
func (p *IOP) Run() {
	defer close(p.done)
	for {
		if p.isTerminating() {
			return
		}
		p.fabric.WaitTimeout(p.UPI, 100*time.Millisecond)
		for _, src := range p.fabric.DrainInterrupts(p.UPI) {
			p.log.Debug("received upi interrupt", "from", src)
		}
		for _, src := range p.fabric.DrainAcks(p.UPI) {
			p.log.Debug("received upi ack", "from", src)
		}
		if p.isTerminating() {
			return
		}
		time.Sleep(MinCycle)
	}
}

func (p *IOP) isTerminating() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.terminate
}

// Terminate stops the worker after its current cycle (spec section 5).
func (p *IOP) Terminate() {
	p.mu.Lock()
	p.terminate = true
	p.mu.Unlock()
	<-p.done
}
