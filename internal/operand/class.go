// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package operand

import (
	"fmt"
)

// Class is the kind of an operand, as given
// by the class code in an operand-code string.
type Class uint8

const (
	_ Class = iota
	FixedRegister    // A-P: rax to r15, at the operand's width.
	FixedSegment     // Q-V: es, cs, ss, ds, fs, gs.
	FixedCR8         // W
	FixedST0         // X
	Immediate        // i
	Offset           // o: instruction-relative offset.
	Memory           // m
	VSIB32           // k: vector-indexed memory, 32-bit indices.
	VSIB64           // l: vector-indexed memory, 64-bit indices.
	LegacyRegister   // r
	X87Register      // f
	MMXRegister      // x
	SSERegister      // y: xmm or ymm, by width.
	SegmentRegister  // s
	ControlRegister  // c
	DebugRegister    // d
	BoundRegister    // b
	RegisterOrMemory // v
	MMXOrMemory      // u
	SSEOrMemory      // w

	numClasses
)

// Classes lists every operand class, in order.
var Classes = []Class{
	FixedRegister, FixedSegment, FixedCR8, FixedST0,
	Immediate, Offset, Memory, VSIB32, VSIB64,
	LegacyRegister, X87Register, MMXRegister, SSERegister,
	SegmentRegister, ControlRegister, DebugRegister, BoundRegister,
	RegisterOrMemory, MMXOrMemory, SSEOrMemory,
}

// Registers returns the number of distinct
// registers the class addresses directly in
// its class code.
func (c Class) Registers() int {
	switch c {
	case FixedRegister:
		return len(generalRegisters[0])
	case FixedSegment:
		return len(segmentRegisters)
	}

	return 1
}

var classCodes = [256]Class{
	'W': FixedCR8,
	'X': FixedST0,
	'i': Immediate,
	'o': Offset,
	'm': Memory,
	'k': VSIB32,
	'l': VSIB64,
	'r': LegacyRegister,
	'f': X87Register,
	'x': MMXRegister,
	'y': SSERegister,
	's': SegmentRegister,
	'c': ControlRegister,
	'd': DebugRegister,
	'b': BoundRegister,
	'v': RegisterOrMemory,
	'u': MMXOrMemory,
	'w': SSEOrMemory,
}

// ClassFromCode returns the class denoted by
// the given class code. For the fixed register
// classes, index identifies the register.
func ClassFromCode(code byte) (class Class, index uint8, ok bool) {
	switch {
	case 'A' <= code && code <= 'P':
		return FixedRegister, code - 'A', true
	case 'Q' <= code && code <= 'V':
		return FixedSegment, code - 'Q', true
	}

	class = classCodes[code]

	return class, 0, class != 0
}

func (c Class) String() string {
	switch c {
	case FixedRegister:
		return "fixed general register"
	case FixedSegment:
		return "fixed segment register"
	case FixedCR8:
		return "cr8"
	case FixedST0:
		return "st0"
	case Immediate:
		return "immediate"
	case Offset:
		return "relative offset"
	case Memory:
		return "memory"
	case VSIB32:
		return "vsib32"
	case VSIB64:
		return "vsib64"
	case LegacyRegister:
		return "general register"
	case X87Register:
		return "x87 register"
	case MMXRegister:
		return "mmx register"
	case SSERegister:
		return "vector register"
	case SegmentRegister:
		return "segment register"
	case ControlRegister:
		return "control register"
	case DebugRegister:
		return "debug register"
	case BoundRegister:
		return "bound register"
	case RegisterOrMemory:
		return "general register or memory"
	case MMXOrMemory:
		return "mmx register or memory"
	case SSEOrMemory:
		return "vector register or memory"
	}

	return fmt.Sprintf("Class(%d)", c)
}
