// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package gentests turns the expanded opcode map
// into test cases for an x86-64 encoder, and
// writes them out as a Go test file.
//
// Each test case encodes one instruction form,
// disassembles the result with a trusted
// disassembler, and checks that the two
// renderings are equivalent.
package gentests

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"firefly-os.dev/x64test/internal/mnemonic"
	"firefly-os.dev/x64test/internal/opmap"
	"firefly-os.dev/x64test/internal/operand"
)

// Case is a single generated test.
type Case struct {
	Name     string   // Unique test name.
	Mnemonic string   // Canonical mnemonic.
	Args     string   // Operand-code string.
	Operands []string // Synthesised operands.
}

// OperandList returns the operands as passed
// to the encoder.
func (c *Case) OperandList() string {
	return strings.Join(c.Operands, ",")
}

// Rendering returns the instruction as the
// encoder is expected to understand it.
func (c *Case) Rendering() string {
	return operand.Render(c.Mnemonic, c.Operands)
}

// Summary counts the outcome of planning.
type Summary struct {
	Specs      int // Instruction specifications considered.
	Excluded   int // Specifications skipped by exclusion.
	Empty      int // Specifications with no forms to test.
	Duplicates int // Specifications skipped as already covered.
	Cases      int // Test cases generated.
}

func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("specs", s.Specs),
		slog.Int("excluded", s.Excluded),
		slog.Int("empty", s.Empty),
		slog.Int("duplicates", s.Duplicates),
		slog.Int("cases", s.Cases),
	)
}

// Plan produces the test cases for the given
// instruction specifications, which must be
// sorted by mnemonic.
//
// Each specification is canonicalised, and is
// skipped if it is excluded, if it has no forms,
// or if its canonical mnemonic has already been
// covered. A specification with no forms does
// not cover its canonical mnemonic. Otherwise,
// each of its operand-code strings produces a
// test case, named after the canonical mnemonic
// and the form's position, starting at 1.
func Plan(specs []opmap.Spec, table *mnemonic.Table, logger *slog.Logger) ([]*Case, Summary, error) {
	var summary Summary
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cases := make([]*Case, 0, len(specs))
	names := make(map[string]bool)
	dedup := mnemonic.NewDeduplicator()
	for _, spec := range specs {
		summary.Specs++
		canonical := table.Canonical(spec.Mnemonic)
		if table.Excluded(spec.Mnemonic) {
			logger.Debug("skipping excluded mnemonic", "mnemonic", spec.Mnemonic)
			summary.Excluded++
			continue
		}

		if len(spec.Args) == 0 {
			logger.Debug("skipping mnemonic with no forms", "mnemonic", spec.Mnemonic)
			summary.Empty++
			continue
		}

		if dedup.Seen(canonical) {
			logger.Debug("skipping covered mnemonic", "mnemonic", spec.Mnemonic, "canonical", canonical)
			summary.Duplicates++
			continue
		}

		dedup.Mark(canonical)
		if table.IsAlias(spec.Mnemonic) {
			logger.Debug("covering mnemonic", "mnemonic", spec.Mnemonic, "canonical", canonical)
		} else if aliases := table.Aliases(canonical); len(aliases) > 0 {
			logger.Debug("covering mnemonic", "mnemonic", canonical, "aliases", aliases)
		}

		for i, args := range spec.Args {
			operands, err := operand.Synthesize(args)
			if err != nil {
				return nil, summary, fmt.Errorf("failed to synthesise operands for %s: %w", spec.Mnemonic, err)
			}

			name := fmt.Sprintf("%s_%d", canonical, i+1)
			if names[name] {
				return nil, summary, fmt.Errorf("internal error: duplicate test name %q", name)
			}

			names[name] = true
			cases = append(cases, &Case{
				Name:     name,
				Mnemonic: canonical,
				Args:     args,
				Operands: operands,
			})
		}
	}

	summary.Cases = len(cases)
	logger.Debug("covered mnemonics", "count", dedup.Len())

	return cases, summary, nil
}
