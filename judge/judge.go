// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package judge decides whether an encoder's
// rendering of an instruction and a trusted
// disassembler's rendering of the bytes it
// produced denote the same instruction.
//
// The two renderings use slightly different
// dialects, so the judge tries a fixed chain of
// normalisations, stopping at the first that
// makes them equal:
//
//  1. Lower-case the encoder's rendering, then
//     apply cosmetic substitutions to both.
//  2. Remove operand size keywords.
//  3. Correct relative offsets for the length
//     of the encoded instruction.
//  4. Apply the x87 rules, which account for
//     implicit stack registers.
//
// Judging is a pure function of its inputs.
package judge

import (
	"fmt"
	"regexp"
	"strings"

	"firefly-os.dev/x64test/internal/operand"
)

// Rule identifies the step of the chain that
// found two renderings equivalent.
type Rule uint8

const (
	NoMatch            Rule = iota
	Exact                   // Equal after cosmetic normalisation.
	SizeKeywords            // Equal without size keywords.
	RelativeOffset          // Equal after correcting relative offsets.
	X87LeadingST0           // Encoder's leading st0 operand is implicit.
	X87TrailingST0          // Encoder's trailing st0 operand is implicit.
	X87Direction            // Disassembler marks the destination with "to".
	X87ImplicitST1          // Disassembler prints an implicit st1.
	X87DisassemblerST0      // Disassembler prints an implicit st0.
	OperandSizeOverride     // Disassembler prints the o16 prefix in place of a size.
)

func (r Rule) String() string {
	switch r {
	case NoMatch:
		return "no match"
	case Exact:
		return "exact"
	case SizeKeywords:
		return "size keywords"
	case RelativeOffset:
		return "relative offset"
	case X87LeadingST0:
		return "x87 leading st0"
	case X87TrailingST0:
		return "x87 trailing st0"
	case X87Direction:
		return "x87 direction"
	case X87ImplicitST1:
		return "x87 implicit st1"
	case X87DisassemblerST0:
		return "x87 disassembler st0"
	case OperandSizeOverride:
		return "operand size override"
	}

	return fmt.Sprintf("Rule(%d)", r)
}

// Verdict is the outcome of judging a pair of
// renderings.
type Verdict struct {
	Rule Rule

	// The renderings as last compared.
	Encoder string
	Oracle  string
}

// Equal returns whether the renderings were
// found to be equivalent.
func (v Verdict) Equal() bool {
	return v.Rule != NoMatch
}

// Judge compares the encoder's rendering of an
// instruction with the disassembler's rendering
// of the code the encoder produced.
func Judge(encoder, oracle string, code []byte) Verdict {
	enc := normaliseEncoder(encoder)
	dis := normaliseOracle(oracle)
	if enc == dis {
		return Verdict{Rule: Exact, Encoder: enc, Oracle: dis}
	}

	es := stripSizes(enc)
	ds := stripSizes(dis)
	if es == ds {
		return Verdict{Rule: SizeKeywords, Encoder: es, Oracle: ds}
	}

	es = strings.TrimSpace(stripSizes(adjustOffsets(enc, len(code))))
	if es == ds {
		return Verdict{Rule: RelativeOffset, Encoder: es, Oracle: ds}
	}

	if hasX87(es) || hasX87(ds) {
		if rule := judgeX87(es, ds); rule != NoMatch {
			return Verdict{Rule: rule, Encoder: es, Oracle: ds}
		}
	}

	return Verdict{Rule: NoMatch, Encoder: es, Oracle: ds}
}

// Check returns a *MismatchError if the
// renderings are not equivalent.
func Check(encoder, oracle string, code []byte) error {
	v := Judge(encoder, oracle, code)
	if v.Equal() {
		return nil
	}

	return &MismatchError{
		Encoder:  encoder,
		Oracle:   oracle,
		Compared: [2]string{v.Encoder, v.Oracle},
		Code:     code,
	}
}

// normaliseSpacing collapses runs of spaces and
// removes spaces after operand separators.
func normaliseSpacing(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ReplaceAll(s, ", ", ",")
	s = strings.ReplaceAll(s, " ,", ",")

	return s
}

func normaliseEncoder(s string) string {
	s = strings.ReplaceAll(s, "mmx", "mm")
	s = strings.ToLower(s)
	s = normaliseSpacing(s)

	// The accumulator exchanged with itself
	// is encoded as nop.
	if s == "xchg eax,eax" {
		s = "nop"
	}

	return s
}

func normaliseOracle(s string) string {
	s = strings.ReplaceAll(s, "yword", "hword")
	s = strings.ReplaceAll(s, " +"+operand.Literal, " "+operand.Literal)

	return normaliseSpacing(s)
}

var sizeKeyword = regexp.MustCompile(`\b(?:byte|word|dword|qword|tword|oword|hword) `)

// stripSizes removes operand size keywords.
func stripSizes(s string) string {
	return sizeKeyword.ReplaceAllLiteralString(s, "")
}

// adjustOffsets replaces each bare literal
// operand with the absolute target a relative
// offset of the same value would reach from
// the start of an instruction of n bytes.
func adjustOffsets(s string, n int) string {
	mnemonic, args, ok := strings.Cut(s, " ")
	if !ok {
		return s
	}

	operands := strings.Split(args, ",")
	for i, op := range operands {
		if op == operand.Literal {
			operands[i] = fmt.Sprintf("0x%02x", 0x10+n)
		}
	}

	return mnemonic + " " + strings.Join(operands, ",")
}
