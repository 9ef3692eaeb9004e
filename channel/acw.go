/*
 * hcmp2200 - Channel program / Access Control Word types
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

// Package channel implements the channel-module layer: channel programs
// described by Access Control Words (ACWs), translated into device I/O and
// scattered/gathered through MSP-backed buffers (spec section 4.4).
package channel

import (
	"github.com/kduncan99/hcmp2200/addr"
	"github.com/kduncan99/hcmp2200/device"
)

// ACWModifier selects how an ACW's address advances between words.
type ACWModifier int

const (
	Increment ACWModifier = iota
	Decrement
	SkipData
	NoChange
)

// ACW describes one scatter/gather region in MSP for a channel program.
type ACW struct {
	Address  addr.AbsoluteAddress
	Count    int
	Modifier ACWModifier
}

// Status is the result recorded on a channel program.
type Status int

const (
	StatusInProgress Status = iota
	StatusSuccessful
	StatusUnconfiguredChannelModule
	StatusUnconfiguredDevice
	StatusDeviceError
	StatusInsufficientBuffers
	StatusBufferTooSmall
	StatusInvalidACW
)

func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "InProgress"
	case StatusSuccessful:
		return "Successful"
	case StatusUnconfiguredChannelModule:
		return "UnconfiguredChannelModule"
	case StatusUnconfiguredDevice:
		return "UnconfiguredDevice"
	case StatusDeviceError:
		return "DeviceError"
	case StatusInsufficientBuffers:
		return "InsufficientBuffers"
	case StatusBufferTooSmall:
		return "BufferTooSmall"
	case StatusInvalidACW:
		return "InvalidACW"
	default:
		return "Unknown"
	}
}

// Program is a channel program submitted to an IOP (spec section 3
// "Channel Program").
type Program struct {
	IOPUpi      int
	CMIndex     int
	DeviceIndex int
	Function    device.IOFunction
	BlockID     uint64
	ACWs        []ACW
	Status      Status
}
