// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"firefly-os.dev/x64test/judge"
)

func newJudgeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "judge RENDERING HEX",
		Short: "Judge an encoder's rendering against machine code",
		Example: `  x64test judge "adc rax,BYTE 0x10" 4883d010
  x64test judge "jmp 0x10" eb0e`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			code, err := hex.DecodeString(strings.ReplaceAll(args[1], " ", ""))
			if err != nil {
				return fmt.Errorf("invalid machine code %q: %v", args[1], err)
			}

			d, err := cfg.Disassembler()
			if err != nil {
				return err
			}

			disasm, err := d.Disassemble(cmd.Context(), code)
			if err != nil {
				return err
			}

			v := judge.Judge(args[0], disasm, code)
			if !v.Equal() {
				return &judge.MismatchError{
					Encoder:  args[0],
					Oracle:   disasm,
					Compared: [2]string{v.Encoder, v.Oracle},
					Code:     code,
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: equivalent (%s)\n", disasm, v.Rule)

			return nil
		},
	}
}
