// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package opmap reads the opcode map, which
// describes every encodable form of every
// mnemonic, and expands it into concrete
// instruction specifications.
//
// Each entry in the opcode map pairs an
// operand-code string with a set of flags.
// Operand-code strings may use the wildcard
// size '*', which the flags resolve into one
// or more concrete sizes.
package opmap

import (
	"fmt"
	"sort"
)

// Entry is one encodable form of a mnemonic.
type Entry struct {
	Args  string // Operand-code string.
	Flags Flags
}

// Table is an opcode map, indexed by mnemonic.
type Table struct {
	entries map[string][]Entry
}

// NewTable returns an empty opcode map.
func NewTable() *Table {
	return &Table{entries: make(map[string][]Entry)}
}

// Add appends an entry to the given mnemonic,
// after checking that it is well-formed.
func (t *Table) Add(mnemonic string, entry Entry) error {
	err := Validate(mnemonic, entry)
	if err != nil {
		return err
	}

	t.entries[mnemonic] = append(t.entries[mnemonic], entry)

	return nil
}

// Len returns the number of mnemonics.
func (t *Table) Len() int {
	return len(t.entries)
}

// Mnemonics returns the mnemonics in the map,
// in sorted order.
func (t *Table) Mnemonics() []string {
	mnemonics := make([]string, 0, len(t.entries))
	for mnemonic := range t.entries {
		mnemonics = append(mnemonics, mnemonic)
	}

	sort.Strings(mnemonics)

	return mnemonics
}

// Entries returns the entries for the given
// mnemonic, in the order they were added.
func (t *Table) Entries(mnemonic string) []Entry {
	return t.entries[mnemonic]
}

// Spec is an instruction specification: a
// mnemonic with every concrete operand-code
// string it can be encoded with.
type Spec struct {
	Mnemonic string
	Args     []string // Operand-code strings, with no wildcard sizes.
}

func (s Spec) String() string {
	return fmt.Sprintf("%s %q", s.Mnemonic, s.Args)
}
