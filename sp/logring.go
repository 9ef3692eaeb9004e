/*
 * hcmp2200 - bounded log ring buffer
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

package sp

import (
	"log/slog"
	"sync"
)

// LogEntry pairs a monotonic ID with the slog.Record it wraps, so a poller
// (the SP's worker, ultimately an out-of-scope console) can resume from
// the last ID it saw.
type LogEntry struct {
	ID     uint64
	Record slog.Record
}

// LogRing is a fixed-capacity circular buffer of the most recent log
// records, written by the logging handler (internal/logging) and read by
// SP.Run's periodic poll.
type LogRing struct {
	mu       sync.Mutex
	entries  []LogEntry
	capacity int
	nextID   uint64
}

// NewLogRing creates a ring holding at most capacity entries.
func NewLogRing(capacity int) *LogRing {
	if capacity <= 0 {
		capacity = 1
	}
	return &LogRing{capacity: capacity}
}

// Append adds a record, evicting the oldest entry if the ring is full.
func (r *LogRing) Append(rec slog.Record) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.entries = append(r.entries, LogEntry{ID: id, Record: rec})
	if len(r.entries) > r.capacity {
		r.entries = r.entries[len(r.entries)-r.capacity:]
	}
	return id
}

// Len reports the number of entries currently buffered.
func (r *LogRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Since returns every entry with ID strictly greater than afterID, oldest
// first, so a poller can resume without re-delivering records.
func (r *LogRing) Since(afterID uint64) []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LogEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if e.ID > afterID {
			out = append(out, e)
		}
	}
	return out
}
