// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package opmap

import (
	"fmt"
	"strings"
)

// Flags describes how an opcode map entry is
// encoded, including how its operand sizes
// are resolved.
type Flags uint32

const Default Flags = 0

const (
	VexOp     Flags = 1 << iota // Requires a VEX prefix.
	XopOp                       // Requires an XOP prefix.
	ImmOp                       // Final opcode byte in the immediate position.
	AutoSize                    // Operand size from OPSIZE or REX.W.
	AutoNo32                    // As AutoSize, with no 32-bit form in long mode.
	AutoRexW                    // As AutoSize, with no 16-bit form.
	AutoVexL                    // Vector length from VEX.L.
	WordSize                    // Implies an operand-size prefix.
	WithRexW                    // Implies REX.W.
	WithVexL                    // Implies VEX.L.
	ExactSize                   // Unsized operands cannot be assumed to match.
	Pref66                      // Mandatory operand-size prefix.
	Pref67                      // Mandatory address-size prefix.
	PrefF0                      // Mandatory lock prefix.
	PrefF2                      // Mandatory repne prefix.
	PrefF3                      // Mandatory rep prefix.
	Lock                        // Lock prefix permitted.
	Rep                         // Rep prefix permitted.
	Repe                        // Repe prefix permitted.
	ShortArg                    // Register encoded in the final opcode byte.
	EncMR                       // Alternate argument encoding.
	EncVM                       // Alternate argument encoding.
	EncMIB                      // Immediate and registers in the SIB byte.
	X86Only                     // Not available in long mode.

	numFlags = iota
)

// AutoFlags is the set of flags that resolve
// a wildcard operand size.
const AutoFlags = AutoSize | AutoNo32 | AutoRexW | AutoVexL

var flagNames = [numFlags]string{
	"VEX_OP",
	"XOP_OP",
	"IMM_OP",
	"AUTO_SIZE",
	"AUTO_NO32",
	"AUTO_REXW",
	"AUTO_VEXL",
	"WORD_SIZE",
	"WITH_REXW",
	"WITH_VEXL",
	"EXACT_SIZE",
	"PREF_66",
	"PREF_67",
	"PREF_F0",
	"PREF_F2",
	"PREF_F3",
	"LOCK",
	"REP",
	"REPE",
	"SHORT_ARG",
	"ENC_MR",
	"ENC_VM",
	"ENC_MIB",
	"X86_ONLY",
}

var flagsByName map[string]Flags

func init() {
	flagsByName = make(map[string]Flags, numFlags+1)
	flagsByName["DEFAULT"] = Default
	for i, name := range flagNames {
		flagsByName[name] = 1 << i
	}
}

// Has returns whether all of the given flags
// are set.
func (f Flags) Has(flags Flags) bool {
	return f&flags == flags
}

// Any returns whether any of the given flags
// are set.
func (f Flags) Any(flags Flags) bool {
	return f&flags != 0
}

// String returns the flags as they appear in
// the opcode map, separated by '|'.
func (f Flags) String() string {
	if f == Default {
		return "DEFAULT"
	}

	names := make([]string, 0, 4)
	for i, name := range flagNames {
		if f&(1<<i) != 0 {
			names = append(names, name)
		}
	}

	if unknown := f &^ (1<<numFlags - 1); unknown != 0 {
		names = append(names, fmt.Sprintf("%#x", uint32(unknown)))
	}

	return strings.Join(names, "|")
}

// ParseFlags parses a '|'-separated list of
// flag names, such as "AUTO_SIZE|LOCK".
func ParseFlags(s string) (Flags, error) {
	var flags Flags
	s = strings.TrimSpace(s)
	if s == "" {
		return flags, nil
	}

	for _, name := range strings.Split(s, "|") {
		name = strings.TrimSpace(name)
		flag, ok := flagsByName[name]
		if !ok {
			return 0, fmt.Errorf("unrecognised flag %q", name)
		}

		flags |= flag
	}

	return flags, nil
}
