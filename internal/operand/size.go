// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package operand

import (
	"fmt"
)

// Size is the width of an operand, as given
// by the size code in an operand-code string.
type Size uint8

const (
	_ Size = iota
	Byte
	Word
	Dword
	Qword
	Oword // 128 bits.
	Hword // 256 bits.
	Auto  // Inferred from context.
	Any

	numSizes
)

// Sizes lists every operand size, in order.
var Sizes = []Size{Byte, Word, Dword, Qword, Oword, Hword, Auto, Any}

// sizeCodes maps each size code to its size.
//
// Pword (p), fword (f), and the unsized
// marker (!) have no keyword in the target
// dialect, so they render as auto. The
// any-size marker (?) is rendered at quad
// width.
var sizeCodes = [256]Size{
	'b': Byte,
	'w': Word,
	'd': Dword,
	'q': Qword,
	'o': Oword,
	'h': Hword,
	'p': Auto,
	'f': Auto,
	'!': Auto,
	'?': Qword,
}

// SizeFromCode returns the size denoted by
// the given size code.
func SizeFromCode(code byte) (Size, bool) {
	size := sizeCodes[code]
	return size, size != 0
}

func (s Size) String() string {
	switch s {
	case Byte:
		return "byte"
	case Word:
		return "word"
	case Dword:
		return "dword"
	case Qword:
		return "qword"
	case Oword:
		return "oword"
	case Hword:
		return "hword"
	case Auto:
		return "auto"
	case Any:
		return "any"
	}

	return fmt.Sprintf("Size(%d)", s)
}

// Keyword returns the size keyword used to
// qualify ambiguous operands, or the empty
// string if the size is not spelled out.
func (s Size) Keyword() string {
	switch s {
	case Byte:
		return "BYTE"
	case Word:
		return "WORD"
	case Dword:
		return "DWORD"
	case Qword:
		return "QWORD"
	case Oword:
		return "OWORD"
	case Hword:
		return "HWORD"
	}

	return ""
}
