/*
 * hcmp2200 - Main Storage Processor
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

// Package msp implements the Main Storage Processor: a heap of named,
// independently sized segments of 36-bit words, plus a region tracker that
// hands out non-overlapping sub-regions of segment 0 for loadable banks.
package msp

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kduncan99/hcmp2200/word"
)

var (
	ErrSegmentNotFound = errors.New("msp: segment not found")
	ErrSegmentInUse    = errors.New("msp: segment still referenced by a base register")
	ErrOutOfSpace      = errors.New("msp: no contiguous region large enough")
)

type segment struct {
	words    []word.Word36
	refCount int
}

// MSP owns the segment table and the region tracker for segment 0. All
// mutation of the segment table is guarded by one monitor, matching the
// teacher's single-mutex storage design (spec section 5); word-level access
// through an ArraySlice is lock-free once the slice is obtained.
type MSP struct {
	mu       sync.Mutex
	segments map[int]*segment
	nextIdx  int
	regions  *RegionTracker
}

// New creates an MSP with segment 0 pre-allocated (working segment), sized
// workingWords words, and its region tracker primed over that size.
func New(workingWords int) *MSP {
	m := &MSP{segments: make(map[int]*segment)}
	m.segments[0] = &segment{words: make([]word.Word36, workingWords)}
	m.nextIdx = 1
	m.regions = newRegionTracker(workingWords)
	return m
}

// CreateSegment allocates a new segment of the given size and returns its
// monotonically increasing index (never reused within one MSP lifetime).
func (m *MSP) CreateSegment(size int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.nextIdx
	m.nextIdx++
	m.segments[idx] = &segment{words: make([]word.Word36, size)}
	return idx
}

// DeleteSegment frees a segment. Fails if the segment is still referenced
// by a live base register (its ref count is nonzero).
func (m *MSP) DeleteSegment(segmentIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	seg, ok := m.segments[segmentIndex]
	if !ok {
		return fmt.Errorf("%w: segment %d", ErrSegmentNotFound, segmentIndex)
	}
	if seg.refCount > 0 {
		return fmt.Errorf("%w: segment %d", ErrSegmentInUse, segmentIndex)
	}
	delete(m.segments, segmentIndex)
	return nil
}

// ResizeSegment reallocates a segment, preserving the prefix and zero-
// filling any growth.
func (m *MSP) ResizeSegment(segmentIndex, newSize int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	seg, ok := m.segments[segmentIndex]
	if !ok {
		return fmt.Errorf("%w: segment %d", ErrSegmentNotFound, segmentIndex)
	}
	fresh := make([]word.Word36, newSize)
	copy(fresh, seg.words)
	seg.words = fresh
	return nil
}

// AddReference/RemoveReference track how many base registers currently
// reference a segment, enforcing the "in use" delete invariant.
func (m *MSP) AddReference(segmentIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	seg, ok := m.segments[segmentIndex]
	if !ok {
		return fmt.Errorf("%w: segment %d", ErrSegmentNotFound, segmentIndex)
	}
	seg.refCount++
	return nil
}

func (m *MSP) RemoveReference(segmentIndex int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seg, ok := m.segments[segmentIndex]; ok && seg.refCount > 0 {
		seg.refCount--
	}
}

// ArraySlice is a bounds-checked view {base, offset, length} onto a
// segment's word storage. All word access goes through the view.
type ArraySlice struct {
	seg    *segment
	base   int
	length int
}

// GetStorage returns a bounds-checked view of the whole segment.
func (m *MSP) GetStorage(segmentIndex int) (ArraySlice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seg, ok := m.segments[segmentIndex]
	if !ok {
		return ArraySlice{}, fmt.Errorf("%w: segment %d", ErrSegmentNotFound, segmentIndex)
	}
	return ArraySlice{seg: seg, base: 0, length: len(seg.words)}, nil
}

// Len reports the view's length in words.
func (s ArraySlice) Len() int {
	return s.length
}

// Get reads the word at the given view-relative offset.
func (s ArraySlice) Get(offset int) (word.Word36, error) {
	if offset < 0 || offset >= s.length {
		return 0, fmt.Errorf("msp: offset %d out of bounds [0,%d)", offset, s.length)
	}
	return s.seg.words[s.base+offset], nil
}

// Set writes the word at the given view-relative offset.
func (s ArraySlice) Set(offset int, v word.Word36) error {
	if offset < 0 || offset >= s.length {
		return fmt.Errorf("msp: offset %d out of bounds [0,%d)", offset, s.length)
	}
	s.seg.words[s.base+offset] = v & word.Mask
	return nil
}

// Sub returns a narrower view within the current one.
func (s ArraySlice) Sub(offset, length int) (ArraySlice, error) {
	if offset < 0 || length < 0 || offset+length > s.length {
		return ArraySlice{}, fmt.Errorf("msp: sub-view [%d,%d) out of bounds of length %d", offset, offset+length, s.length)
	}
	return ArraySlice{seg: s.seg, base: s.base + offset, length: length}, nil
}
