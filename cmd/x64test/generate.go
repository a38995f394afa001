// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"firefly-os.dev/x64test/internal/gentests"
)

func newGenerateCommand(opts *options) *cobra.Command {
	var output, pkg, encoderImport, encoderFunc, oracleKind string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a Go test file for the encoder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			g := &cfg.Generate
			flags := cmd.Flags()
			if flags.Changed("output") {
				g.Output = output
			}
			if flags.Changed("package") {
				g.Package = pkg
			}
			if flags.Changed("encoder-import") {
				g.EncoderImport = encoderImport
			}
			if flags.Changed("encoder-func") {
				g.EncoderFunc = encoderFunc
			}
			if flags.Changed("oracle") {
				cfg.Oracle.Kind = oracleKind
			}

			err = cfg.CheckGenerate()
			if err != nil {
				return err
			}

			// Check the oracle configuration
			// before doing any work.
			_, err = cfg.Disassembler()
			if err != nil {
				return err
			}

			start := time.Now()
			logger := opts.logger(cmd)
			cases, err := plan(cfg, logger)
			if err != nil {
				return err
			}

			a := &gentests.Artifact{
				Program:       program,
				Package:       g.Package,
				EncoderImport: g.EncoderImport,
				EncoderFunc:   g.EncoderFunc,
				OracleKind:    cfg.Oracle.Kind,
				OraclePath:    cfg.Oracle.Path,
				OracleBits:    cfg.Oracle.Bits,
				Cases:         cases,
			}

			f, err := os.Create(g.Output)
			if err != nil {
				return fmt.Errorf("failed to create %q: %v", g.Output, err)
			}

			err = gentests.Write(f, a)
			if err != nil {
				f.Close()
				return err
			}

			err = f.Close()
			if err != nil {
				return fmt.Errorf("failed to close %q: %v", g.Output, err)
			}

			logger.Info("generated tests", "tests", humaniseNumber(len(cases)), "output", g.Output, "elapsed", time.Since(start).Round(time.Millisecond))

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", "", "Path of the generated test file.")
	flags.StringVar(&pkg, "package", "", "Package clause of the generated test file.")
	flags.StringVar(&encoderImport, "encoder-import", "", "Import path of the encoder under test.")
	flags.StringVar(&encoderFunc, "encoder-func", "", "Encoding function in the encoder package.")
	flags.StringVar(&oracleKind, "oracle", "", "Disassembler used by the tests (ndisasm or x86asm).")

	return cmd
}
