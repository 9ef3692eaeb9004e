/*
 * hcmp2200 - System Processor
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

// Package sp implements the System Processor (spec section 2, SP row):
// the singleton that owns the dayclock, jump keys, a bounded log ring for
// the out-of-scope console to poll, and the UPI worker that drains pending
// signals for partition-wide coordination.
package sp

import (
	"log/slog"
	"sync"
	"time"

	"github.com/kduncan99/hcmp2200/upi"
)

// UPIIndex is the fixed UPI index of the singleton SP (spec section 3,
// "Processor topology": SP range is 0..0).
const UPIIndex = 0

// DefaultLogPeriodicityMsecs is LOG_PERIODICITY_MSECS (spec, DOMAIN STACK
// supplemented feature 2).
const DefaultLogPeriodicityMsecs = 1000

// wakeInterval is the SP worker's own poll period (spec section 5, "wakes
// every 25ms or on UPI signal").
const wakeInterval = 25 * time.Millisecond

// SP is the System Processor singleton.
type SP struct {
	log    *slog.Logger
	fabric *upi.Fabric
	ring   *LogRing

	mu                sync.Mutex
	dayclockBase      time.Time
	dayclockComparator uint64
	jumpKeys          uint64

	logPeriodicity time.Duration
	lastLogPoll    time.Time

	terminate bool
	done      chan struct{}
}

// New creates the System Processor. fabric is the shared UPI signal
// fabric; ring is the bounded log buffer the logging handler writes into.
func New(fabric *upi.Fabric, ring *LogRing, log *slog.Logger) *SP {
	if log == nil {
		log = slog.Default()
	}
	return &SP{
		log:            log.With("sp", UPIIndex),
		fabric:         fabric,
		ring:           ring,
		dayclockBase:   time.Unix(0, 0),
		logPeriodicity: DefaultLogPeriodicityMsecs * time.Millisecond,
		done:           make(chan struct{}),
	}
}

// ReadDayclock returns the current dayclock value: elapsed time since the
// dayclock's epoch (the Unix epoch), in microseconds. The value is not
// masked to 36 bits.
func (s *SP) ReadDayclock() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint64(time.Since(s.dayclockBase).Microseconds())
}

// SetDayclockComparator records the comparator value the IP's Dayclock
// interrupt class compares against (spec section 4.6.1 "dayclock
// comparator snapshot").
func (s *SP) SetDayclockComparator(v uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dayclockComparator = v
}

// DayclockComparator returns the last comparator value set.
func (s *SP) DayclockComparator() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dayclockComparator
}

// JumpKeys returns the 36-bit jump-keys register read by SYSC handlers.
func (s *SP) JumpKeys() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jumpKeys
}

// SetJumpKeys sets the jump-keys register (operator-panel style switches).
func (s *SP) SetJumpKeys(v uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jumpKeys = v & 0o777777777777
}

// SetLogPeriodicity overrides LOG_PERIODICITY_MSECS for tests.
func (s *SP) SetLogPeriodicity(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logPeriodicity = d
}

// Run drains pending UPI signals and polls the log ring every
// LOG_PERIODICITY_MSECS, until Terminate is called (spec section 5).
func (s *SP) Run() {
	defer close(s.done)
	for {
		if s.isTerminating() {
			return
		}
		s.fabric.WaitTimeout(UPIIndex, wakeInterval)
		for range s.fabric.DrainInterrupts(UPIIndex) {
			// spec section 4.7: membership only, no per-signal payload beyond
			// "something is pending"; the mail slot carries the payload.
		}
		for range s.fabric.DrainAcks(UPIIndex) {
		}
		s.pollLog()
		if s.isTerminating() {
			return
		}
	}
}

func (s *SP) pollLog() {
	s.mu.Lock()
	due := time.Since(s.lastLogPoll) >= s.logPeriodicity
	if due {
		s.lastLogPoll = time.Now()
	}
	s.mu.Unlock()
	if !due || s.ring == nil {
		return
	}
	// Forwarding to the out-of-scope console is left to that layer; here
	// the SP only observes that new records exist.
	_ = s.ring.Len()
}

func (s *SP) isTerminating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminate
}

// Terminate stops the worker after its current cycle.
func (s *SP) Terminate() {
	s.mu.Lock()
	s.terminate = true
	s.mu.Unlock()
	<-s.done
}
