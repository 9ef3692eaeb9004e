/*
 * hcmp2200 - Block-oriented peripheral device model
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

// Package device implements the block-oriented peripheral state machine
// (spec section 4.3): mount/ready/write-protect plus the IO function
// dispatch used by channel modules.
package device

import "errors"

// IOFunction selects the operation a channel program asks a device to run.
type IOFunction int

const (
	None IOFunction = iota
	GetInfo
	Read
	Write
	Reset
	Unload
)

var (
	ErrNotReady          = errors.New("device: not ready")
	ErrNotMounted        = errors.New("device: not mounted")
	ErrAlreadyMounted    = errors.New("device: already mounted")
	ErrUnitAttention     = errors.New("device: unit attention")
	ErrInvalidBlockID    = errors.New("device: invalid block id")
	ErrInvalidBlockSize  = errors.New("device: invalid block size")
	ErrInvalidBlockCount = errors.New("device: invalid block count")
	ErrWriteProtected    = errors.New("device: write protected")
	ErrBadHeader         = errors.New("device: bad scratch-pad header")
)

// Kind distinguishes the physical medium.
type Kind int

const (
	KindDisk Kind = iota
	KindTape
)

// ValidDiskBlockSizes enumerates the disk block sizes spec section 4.3
// restricts devices to.
var ValidDiskBlockSizes = map[int]bool{
	128: true, 256: true, 512: true, 1024: true,
	2048: true, 4096: true, 8192: true,
}

// IOInfo describes a single request handed to a Device.
type IOInfo struct {
	Function IOFunction
	BlockID  uint64
	Count    int // word/byte count requested
	Buffer   []byte
	Status   IOStatus
}

// IOStatus is the outcome of one IOInfo request.
type IOStatus int

const (
	InProgress IOStatus = iota
	Successful
	Failed
)

// Device is the shared state machine every disk/tape model implements.
// State: notReady -> ready | notMounted, plus mounted/writeProtected/
// unitAttention/blockSize/blockCount attributes.
type Device interface {
	// Name reports the node name assigned by the Inventory.
	Name() string
	Kind() Kind
	Mount(path string) error
	SetReady(ready bool) error
	IsReady() bool
	IsMounted() bool
	WriteProtected() bool
	SetWriteProtected(bool)
	BlockSize() int
	BlockCount() uint64
	// Submit processes one IOInfo request to completion, FIFO, single-
	// threaded per device (the caller's own goroutine is blocked for the
	// duration -- the channel module serializes submission per device).
	Submit(info *IOInfo) error
	Shutdown()
}
