// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"firefly-os.dev/x64test/encoder"
	"firefly-os.dev/x64test/internal/gentests"
	"firefly-os.dev/x64test/judge"
	"firefly-os.dev/x64test/oracle"
)

func newRunCommand(opts *options) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Check an external assembler against the disassembler",
		Long: `Run encodes every planned instruction with the configured
assembler, disassembles the result, and reports each instruction
whose renderings are not equivalent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if workers < 1 {
				return fmt.Errorf("invalid --workers %d: must be at least 1", workers)
			}

			cfg, err := opts.load()
			if err != nil {
				return err
			}

			enc, err := cfg.Command()
			if err != nil {
				return err
			}

			d, err := cfg.Disassembler()
			if err != nil {
				return err
			}

			start := time.Now()
			logger := opts.logger(cmd)
			cases, err := plan(cfg, logger)
			if err != nil {
				return err
			}

			mismatches, err := runCases(cmd.Context(), enc, d, cases, workers)
			if err != nil {
				return err
			}

			logger.Info("checked tests", "tests", humaniseNumber(len(cases)), "mismatches", humaniseNumber(len(mismatches)), "elapsed", time.Since(start).Round(time.Millisecond))
			if len(mismatches) == 0 {
				return nil
			}

			var b strings.Builder
			for _, err := range mismatches {
				b.WriteString(err.Error())
				b.WriteString("\n\n")
			}

			fmt.Fprint(cmd.OutOrStdout(), b.String())

			return fmt.Errorf("%s of %s instructions did not match", humaniseNumber(len(mismatches)), humaniseNumber(len(cases)))
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 1, "How many instructions to check concurrently.")

	return cmd
}

// runCases checks each case, returning the
// mismatches in test name order. A failure to
// encode or disassemble stops the run.
func runCases(ctx context.Context, enc encoder.Encoder, d oracle.Disassembler, cases []*gentests.Case, workers int) ([]*judge.MismatchError, error) {
	var mu sync.Mutex
	var mismatches []*judge.MismatchError
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, c := range cases {
		if gctx.Err() != nil {
			break
		}

		c := c // Per-iteration copy; go.mod targets go 1.21 (pre-1.22 loop semantics).
		g.Go(func() error {
			code, err := enc.Encode(gctx, c.Mnemonic, c.OperandList())
			if err != nil {
				return fmt.Errorf("%s: %w", c.Name, err)
			}

			disasm, err := d.Disassemble(gctx, code)
			if err != nil {
				return fmt.Errorf("%s: failed to disassemble %s: %w", c.Name, judge.EscapeBytes(code), err)
			}

			err = judge.Check(c.Rendering(), disasm, code)
			var mismatch *judge.MismatchError
			if errors.As(err, &mismatch) {
				mismatch.Name = c.Name
				mu.Lock()
				mismatches = append(mismatches, mismatch)
				mu.Unlock()
			} else if err != nil {
				return err
			}

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, err
	}

	err = ctx.Err()
	if err != nil {
		return nil, err
	}

	sort.Slice(mismatches, func(i, j int) bool {
		return mismatches[i].Name < mismatches[j].Name
	})

	return mismatches, nil
}
