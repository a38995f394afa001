// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"firefly-os.dev/x64test/internal/operand"
)

func newExpandCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "expand",
		Short: "Print each instruction form and its synthesised operands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			specs, err := expand(cfg, opts.logger(cmd))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			for _, spec := range specs {
				for _, args := range spec.Args {
					operands, err := operand.Synthesize(args)
					if err != nil {
						return fmt.Errorf("failed to synthesise operands for %s: %w", spec.Mnemonic, err)
					}

					fmt.Fprintf(w, "%s\t%s\t%s\n", spec.Mnemonic, args, operand.Render(spec.Mnemonic, operands))
				}
			}

			return w.Flush()
		},
	}
}
