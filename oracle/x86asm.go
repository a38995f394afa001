// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package oracle

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/arch/x86/x86asm"
)

// X86asm decodes instructions in-process,
// rewriting the Intel syntax into the NASM
// dialect ndisasm uses.
//
// The rewriting covers the differences seen
// in ordinary instructions, but ndisasm is
// the reference.
type X86asm struct {
	Bits int // Defaults to 64.
}

var _ Disassembler = (*X86asm)(nil)

func (x *X86asm) Disassemble(ctx context.Context, code []byte) (string, error) {
	err := ctx.Err()
	if err != nil {
		return "", err
	}

	if len(code) == 0 {
		return "", fmt.Errorf("failed to disassemble: %w", ErrNoOutput)
	}

	bits := x.Bits
	if bits == 0 {
		bits = 64
	}

	inst, err := x86asm.Decode(code, bits)
	if err != nil {
		return "", fmt.Errorf("failed to decode % x: %w", code, err)
	}

	return nasmSyntax(inst, x86asm.IntelSyntax(inst, 0, nil)), nil
}

var (
	mmxRegister    = regexp.MustCompile(`\bmmx([0-7])\b`)
	relativeTarget = regexp.MustCompile(`\.[+-]0x[0-9a-f]+`)
)

var intelToNasm = strings.NewReplacer(
	", ", ",",
	" ptr ", " ",
	"xmmword ", "oword ",
	"ymmword ", "yword ",
	"zmmword ", "zword ",
)

func nasmSyntax(inst x86asm.Inst, text string) string {
	text = intelToNasm.Replace(text)
	text = mmxRegister.ReplaceAllString(text, "mm$1")

	// Relative targets are printed as an
	// offset from the end of the instruction.
	// NASM prints the absolute address.
	for _, arg := range inst.Args {
		rel, ok := arg.(x86asm.Rel)
		if !ok {
			continue
		}

		target := uint64(int64(inst.Len) + int64(rel))
		text = relativeTarget.ReplaceAllLiteralString(text, fmt.Sprintf("%#x", target))
	}

	return text
}
