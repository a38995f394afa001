// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package opmap

import (
	"fmt"

	"firefly-os.dev/x64test/internal/operand"
)

// Wildcard is the size code resolved by an
// entry's flags.
const Wildcard = '*'

// EntryError describes a malformed opcode map
// entry. It indicates that the opcode map is
// not trustworthy, so it is not recoverable.
type EntryError struct {
	Line     int // Zero if the entry was not read from a file.
	Mnemonic string
	Args     string
	Reason   string
}

func (e *EntryError) Error() string {
	if e.Line != 0 {
		return fmt.Sprintf("line %d: invalid opcode map entry %s %q: %s", e.Line, e.Mnemonic, e.Args, e.Reason)
	}

	return fmt.Sprintf("invalid opcode map entry %s %q: %s", e.Mnemonic, e.Args, e.Reason)
}

// Validate checks that the mnemonic is a
// lower-case identifier and that the entry's
// operand-code string uses only recognised
// class and size codes.
func Validate(mnemonic string, entry Entry) error {
	if mnemonic == "" {
		return &EntryError{Mnemonic: mnemonic, Args: entry.Args, Reason: "empty mnemonic"}
	}

	for i := 0; i < len(mnemonic); i++ {
		c := mnemonic[i]
		if ('a' <= c && c <= 'z') || ('0' <= c && c <= '9' && i > 0) {
			continue
		}

		return &EntryError{Mnemonic: mnemonic, Args: entry.Args, Reason: fmt.Sprintf("invalid character %q in mnemonic", c)}
	}

	args := entry.Args
	if len(args)%2 != 0 {
		return &EntryError{Mnemonic: mnemonic, Args: args, Reason: "operand code has no size"}
	}

	for i := 0; i < len(args); i += 2 {
		if _, _, ok := operand.ClassFromCode(args[i]); !ok {
			return &EntryError{Mnemonic: mnemonic, Args: args, Reason: fmt.Sprintf("unrecognised operand class %q", args[i])}
		}

		if args[i+1] == Wildcard {
			continue
		}

		if _, ok := operand.SizeFromCode(args[i+1]); !ok {
			return &EntryError{Mnemonic: mnemonic, Args: args, Reason: fmt.Sprintf("unrecognised operand size %q", args[i+1])}
		}
	}

	return nil
}
