// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package mnemonic canonicalises instruction
// mnemonics, so that each instruction family
// is tested exactly once, however many of its
// synonyms appear in the opcode map.
package mnemonic

import (
	"fmt"
	"sort"
)

// aliasGroups are sets of mnemonics that share
// both encoding and meaning, such as jae and
// jnc. The first entry in each group is the
// canonical mnemonic.
var aliasGroups = [][]string{
	{"cmovc", "cmovb", "cmovnae"},
	{"cmovnc", "cmovae", "cmovnb"},
	{"cmovz", "cmove"},
	{"cmovnz", "cmovne"},
	{"cmovna", "cmovbe"},
	{"cmova", "cmovnbe"},
	{"cmovpe", "cmovp"},
	{"cmovpo", "cmovnp"},
	{"cmovl", "cmovnge"},
	{"cmovnl", "cmovge"},
	{"cmovng", "cmovle"},
	{"cmovg", "cmovnle"},
	{"shl", "sal"},
	{"setc", "setnae"},
	{"setnc", "setae", "setnb"},
	{"setz", "sete"},
	{"setnz", "setne"},
	{"setna", "setbe"},
	{"setpe", "setp"},
	{"setpo", "setnp"},
	{"setl", "setnge"},
	{"setnl", "setge"},
	{"setng", "setle"},
	{"jc", "jb", "jnae"},
	{"jnc", "jae", "jnb"},
	{"jz", "je"},
	{"jnz", "jne"},
	{"jna", "jbe"},
	{"ja", "jnbe"},
	{"jpe", "jp"},
	{"jpo", "jnp"},
	{"jl", "jnge"},
	{"jnl", "jge"},
	{"jng", "jle"},
	{"jg", "jnle"},
	{"loope", "loopz"},
	{"loopne", "loopnz"},
	{"wait", "fwait"},
}

// excluded lists the mnemonics that are never
// tested. In, loop, and mov have no form that
// is safe to test in isolation, and monitorx
// and mwaitx cannot be instantiated generically.
var excluded = []string{
	"in",
	"loop",
	"mov",
	"monitorx",
	"mwaitx",
}

// Table resolves mnemonics to their canonical
// spelling and reports exclusions. A Table is
// not modified after it is created, so it is
// safe for concurrent use.
type Table struct {
	canonical map[string]string
	excluded  map[string]bool
}

// NewTable returns the default table, extended
// with the given aliases (mapping each alias to
// its canonical mnemonic) and exclusions.
func NewTable(aliases map[string]string, exclude []string) (*Table, error) {
	t := &Table{
		canonical: make(map[string]string),
		excluded:  make(map[string]bool),
	}

	for _, group := range aliasGroups {
		for _, mnemonic := range group[1:] {
			t.canonical[mnemonic] = group[0]
		}
	}

	// Add the extra aliases in a stable order
	// so that any error is reproducible.
	extra := make([]string, 0, len(aliases))
	for alias := range aliases {
		extra = append(extra, alias)
	}

	sort.Strings(extra)
	for _, alias := range extra {
		canonical := aliases[alias]
		if alias == "" || canonical == "" {
			return nil, fmt.Errorf("invalid alias %q for %q", alias, canonical)
		}

		if alias == canonical {
			continue
		}

		t.canonical[alias] = canonical
	}

	// Aliases must not form chains,
	// so resolution is a single step.
	for _, alias := range extra {
		canonical := t.canonical[alias]
		if next, ok := t.canonical[canonical]; ok {
			return nil, fmt.Errorf("invalid alias %q: %q is itself an alias for %q", alias, canonical, next)
		}
	}

	for _, group := range aliasGroups {
		if next, ok := t.canonical[group[0]]; ok {
			return nil, fmt.Errorf("invalid alias %q: %q is an alias for %q", group[0], group[0], next)
		}
	}

	for _, mnemonic := range excluded {
		t.excluded[mnemonic] = true
	}

	for _, mnemonic := range exclude {
		t.excluded[mnemonic] = true
	}

	return t, nil
}

// Default returns the table with no extra
// aliases or exclusions.
func Default() *Table {
	t, err := NewTable(nil, nil)
	if err != nil {
		panic("invalid default mnemonic table: " + err.Error())
	}

	return t
}

// Canonical returns the canonical spelling of
// the given mnemonic.
func (t *Table) Canonical(mnemonic string) string {
	if canonical, ok := t.canonical[mnemonic]; ok {
		return canonical
	}

	return mnemonic
}

// IsAlias returns whether the mnemonic is a
// synonym for a different canonical mnemonic.
func (t *Table) IsAlias(mnemonic string) bool {
	_, ok := t.canonical[mnemonic]
	return ok
}

// Excluded returns whether the mnemonic, or
// its canonical spelling, should not be tested.
func (t *Table) Excluded(mnemonic string) bool {
	return t.excluded[mnemonic] || t.excluded[t.Canonical(mnemonic)]
}

// Aliases returns the synonyms of the given
// canonical mnemonic, in sorted order.
func (t *Table) Aliases(canonical string) []string {
	var aliases []string
	for alias, c := range t.canonical {
		if c == canonical {
			aliases = append(aliases, alias)
		}
	}

	sort.Strings(aliases)

	return aliases
}

// Deduplicator tracks the canonical mnemonics
// that have already been covered in a run.
//
// A Deduplicator is owned by a single pipeline
// and is not safe for concurrent use.
type Deduplicator struct {
	seen map[string]bool
}

// NewDeduplicator returns an empty deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[string]bool)}
}

// Mark records the canonical mnemonic as
// covered, returning false if it had already
// been covered.
func (d *Deduplicator) Mark(canonical string) bool {
	if d.seen[canonical] {
		return false
	}

	d.seen[canonical] = true

	return true
}

// Seen returns whether the canonical mnemonic
// has been covered.
func (d *Deduplicator) Seen(canonical string) bool {
	return d.seen[canonical]
}

// Len returns the number of mnemonics covered.
func (d *Deduplicator) Len() int {
	return len(d.seen)
}
