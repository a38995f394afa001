// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package operand synthesises concrete assembly
// operands from the compact operand-code strings
// used in the opcode map.
//
// An operand-code string is a sequence of pairs,
// each a class code followed by a size code. For
// example, "r*ib" is a general register of some
// width, followed by an 8-bit immediate.
//
// Each operand is rendered using a fixed token,
// chosen from lookup tables indexed by class and
// size, so the same operand code always produces
// the same text.
package operand

import (
	"fmt"
	"strings"
)

// Literal is the value used for immediates,
// displacements, and relative offsets.
const Literal = "0x10"

// Operand is a single decoded operand position.
type Operand struct {
	Class Class
	Index uint8 // Register number, for FixedRegister and FixedSegment.
	Size  Size
}

func (op Operand) String() string {
	return op.Token()
}

// CodeError describes a malformed operand-code
// string.
type CodeError struct {
	Code   string
	Offset int
	Reason string
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("invalid operand code %q at offset %d: %s", e.Code, e.Offset, e.Reason)
}

// Parse decodes an operand-code string. The
// string must contain no wildcard sizes.
func Parse(code string) ([]Operand, error) {
	if len(code)%2 != 0 {
		return nil, &CodeError{Code: code, Offset: len(code) - 1, Reason: "missing size code"}
	}

	ops := make([]Operand, 0, len(code)/2)
	for i := 0; i < len(code); i += 2 {
		class, index, ok := ClassFromCode(code[i])
		if !ok {
			return nil, &CodeError{Code: code, Offset: i, Reason: fmt.Sprintf("unrecognised class code %q", code[i])}
		}

		size, ok := SizeFromCode(code[i+1])
		if !ok {
			return nil, &CodeError{Code: code, Offset: i + 1, Reason: fmt.Sprintf("unrecognised size code %q", code[i+1])}
		}

		ops = append(ops, Operand{Class: class, Index: index, Size: size})
	}

	return ops, nil
}

// Synthesize returns the operand tokens for
// the given operand-code string, in order.
func Synthesize(code string) ([]string, error) {
	ops, err := Parse(code)
	if err != nil {
		return nil, err
	}

	tokens := make([]string, len(ops))
	for i, op := range ops {
		tokens[i] = op.Token()
	}

	return tokens, nil
}

// Render produces the assembly text for an
// instruction, in the encoder's dialect.
func Render(mnemonic string, operands []string) string {
	if len(operands) == 0 {
		return mnemonic
	}

	return mnemonic + " " + strings.Join(operands, ",")
}
