/*
 * hcmp2200 - Instruction Processor register file
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

import "github.com/kduncan99/hcmp2200/word"

// GRSSize is the architected General Register Set size (spec section 3,
// "128 registers").
const GRSSize = 128

// Index-register layout within the GRS (spec section 3: X-registers split
// into XI/XM halves). User set occupies 0..47 (X0-15, A0-15, R0-15);
// executive-mirror set occupies 64..111 (EX0-15, EA0-15, ER0-15); 48..63
// and 112..127 are reserved, unassigned by spec.md (an Open Question this
// repo resolves by leaving them addressable but architecturally unnamed).
const (
	grsXBase  = 0
	grsABase  = 16
	grsRBase  = 32
	grsEXBase = 64
	grsEABase = 80
	grsERBase = 96
)

// BaseRegisterCount is the number of base registers, B0..B31 (spec
// section 3).
const BaseRegisterCount = 32

// DesignatorRegister is the 36-bit status/control word (spec section 3).
type DesignatorRegister struct {
	BasicMode                  bool
	ExecRegisterSelected       bool
	QuarterWordMode            bool
	Carry                      bool
	Overflow                   bool
	ProcessorPrivilege         uint8 // 0..3, 0 most privileged ("PP")
	OperationTrapEnabled       bool
	QuantumTimerEnabled        bool
	DeferrableInterruptEnabled bool
	ArithmeticExceptionEnabled bool
}

// ToWord packs the subset of DR that survives a CALL/RTN or interrupt
// round trip into the S3 partial-word field (spec section 4.6.3's return
// stack word 1: "(DR & 0_000077_000000)"; spec section 4.6.5 step 5,
// "restore DR partial bits").
func (dr DesignatorRegister) ToWord() word.Word36 {
	var bits uint64
	bits |= uint64(dr.ProcessorPrivilege & 3)
	if dr.OperationTrapEnabled {
		bits |= 1 << 2
	}
	if dr.QuantumTimerEnabled {
		bits |= 1 << 3
	}
	if dr.DeferrableInterruptEnabled {
		bits |= 1 << 4
	}
	if dr.ArithmeticExceptionEnabled {
		bits |= 1 << 5
	}
	return word.Word36(0).SetField(word.S3, word.Word36(bits))
}

// applyPartialBits restores the fields ToWord packs, leaving the rest of
// DR (basic/extended mode, carry, overflow, ...) untouched.
func (dr *DesignatorRegister) applyPartialBits(w word.Word36) {
	bits := uint64(w.GetField(word.S3))
	dr.ProcessorPrivilege = uint8(bits & 3)
	dr.OperationTrapEnabled = bits&(1<<2) != 0
	dr.QuantumTimerEnabled = bits&(1<<3) != 0
	dr.DeferrableInterruptEnabled = bits&(1<<4) != 0
	dr.ArithmeticExceptionEnabled = bits&(1<<5) != 0
}

// IndicatorKeyRegister carries mid-instruction resume state and the
// currently serviced interrupt class (spec section 3).
type IndicatorKeyRegister struct {
	ShortStatus     uint8
	InstructionInF0 bool
	ExecuteRepeat   bool
	BreakpointMatch bool
	SoftwareBreak   bool
	InterruptClass  int
	AccessKey       uint32
}

// ToWord packs the fields an interrupt entry saves to the ICS into one
// word (spec section 4.6.4 step 1: "PAR, DR, IKR, partial-instruction
// mid-execution marker"). The bit positions are this repo's own wire
// format; spec.md names the fields but not their layout.
func (ikr IndicatorKeyRegister) ToWord() word.Word36 {
	var v uint64
	v |= uint64(ikr.ShortStatus & 0xF)
	if ikr.InstructionInF0 {
		v |= 1 << 4
	}
	if ikr.ExecuteRepeat {
		v |= 1 << 5
	}
	if ikr.BreakpointMatch {
		v |= 1 << 6
	}
	if ikr.SoftwareBreak {
		v |= 1 << 7
	}
	v |= uint64(ikr.InterruptClass&0x3F) << 8
	v |= uint64(ikr.AccessKey&0xFFFF) << 14
	return word.Word36(v) & word.Mask
}

// ProgramAddressRegister is the current code bank and program counter
// (spec section 3).
type ProgramAddressRegister struct {
	L   uint8
	BDI uint16
	PC  uint32
}

// ActiveBaseTableEntry describes one active base register's backing bank
// (spec section 3).
type ActiveBaseTableEntry struct {
	Level        uint8
	BDI          uint16
	SubsetOffset uint32
}

// BaseRegister is the IP's cached expansion of a bank descriptor plus a
// storage view onto it (spec section 3 "BaseRegister (B0..B31)").
type BaseRegister struct {
	Valid   bool
	Void    bool
	Lower   uint32
	Upper   uint32
	Base    uint64 // absolute word offset into the owning MSP segment
	MSPUpi  int
	Segment uint32
	General AccessPermissions
	Special AccessPermissions
}

// AccessPermissions is the {enter, read, write} triple (spec section 3).
type AccessPermissions struct {
	Enter bool
	Read  bool
	Write bool
}

// Registers holds all architecturally visible IP state (spec section
// 4.6.1).
type Registers struct {
	GRS [GRSSize]word.Word36
	B   [BaseRegisterCount]BaseRegister
	ABT [8]ActiveBaseTableEntry

	DR  DesignatorRegister
	IKR IndicatorKeyRegister
	PAR ProgramAddressRegister

	QuantumTimer int64
}

func (r *Registers) xIndex(n int) int { return grsXBase + n }
func (r *Registers) aIndex(n int) int { return grsABase + n }
func (r *Registers) rIndex(n int) int { return grsRBase + n }

// X returns register Xn (or EXn when DR.ExecRegisterSelected).
func (r *Registers) X(n int) word.Word36 {
	if r.DR.ExecRegisterSelected {
		return r.GRS[grsEXBase+n]
	}
	return r.GRS[r.xIndex(n)]
}

// SetX stores register Xn (or EXn when DR.ExecRegisterSelected).
func (r *Registers) SetX(n int, v word.Word36) {
	if r.DR.ExecRegisterSelected {
		r.GRS[grsEXBase+n] = v
		return
	}
	r.GRS[r.xIndex(n)] = v
}

// A returns register An (or EAn when DR.ExecRegisterSelected).
func (r *Registers) A(n int) word.Word36 {
	if r.DR.ExecRegisterSelected {
		return r.GRS[grsEABase+n]
	}
	return r.GRS[r.aIndex(n)]
}

// SetA stores register An (or EAn when DR.ExecRegisterSelected).
func (r *Registers) SetA(n int, v word.Word36) {
	if r.DR.ExecRegisterSelected {
		r.GRS[grsEABase+n] = v
		return
	}
	r.GRS[r.aIndex(n)] = v
}

// R returns register Rn (or ERn when DR.ExecRegisterSelected).
func (r *Registers) R(n int) word.Word36 {
	if r.DR.ExecRegisterSelected {
		return r.GRS[grsERBase+n]
	}
	return r.GRS[r.rIndex(n)]
}

// SetR stores register Rn (or ERn when DR.ExecRegisterSelected).
func (r *Registers) SetR(n int, v word.Word36) {
	if r.DR.ExecRegisterSelected {
		r.GRS[grsERBase+n] = v
		return
	}
	r.GRS[r.rIndex(n)] = v
}

// XI returns the increment half of Xn (upper 18 bits).
func (r *Registers) XI(n int) word.Word36 {
	return r.X(n).GetField(word.H1)
}

// XM returns the modifier half of Xn (lower 18 bits).
func (r *Registers) XM(n int) word.Word36 {
	return r.X(n).GetField(word.H2)
}

// SetXI replaces the increment half of Xn, preserving XM.
func (r *Registers) SetXI(n int, v word.Word36) {
	r.SetX(n, r.X(n).SetField(word.H1, v))
}

// SetXM replaces the modifier half of Xn, preserving XI.
func (r *Registers) SetXM(n int, v word.Word36) {
	r.SetX(n, r.X(n).SetField(word.H2, v))
}
