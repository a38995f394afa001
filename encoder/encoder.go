// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package encoder provides access to the x86-64
// encoder under test.
//
// The encoder is usually a Go function, called
// directly from the generated tests. For running
// the checks without generating tests, Command
// drives an external assembler instead.
package encoder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Encoder assembles a single instruction.
type Encoder interface {
	Encode(ctx context.Context, mnemonic, operands string) ([]byte, error)
}

// Func adapts an ordinary function to the
// Encoder interface.
type Func func(mnemonic, operands string) ([]byte, error)

func (f Func) Encode(ctx context.Context, mnemonic, operands string) ([]byte, error) {
	return f(mnemonic, operands)
}

// Error describes a failure to encode an
// instruction, including anything the
// assembler printed to stderr.
type Error struct {
	Instruction string
	Err         error
	Stderr      string
}

func (e *Error) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("failed to encode %q: %v", e.Instruction, e.Err)
	}

	return fmt.Sprintf("failed to encode %q: %v\n%s", e.Instruction, e.Err, stderr)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Placeholders in a Command's arguments.
const (
	InputFile  = "{in}"
	OutputFile = "{out}"
)

// DefaultArgs assembles a flat binary with NASM.
var DefaultArgs = []string{"nasm", "-f", "bin", "-o", OutputFile, InputFile}

// DefaultPrelude selects 64-bit mode.
const DefaultPrelude = "bits 64"

// Command encodes instructions by writing them
// to a temporary source file and running an
// external assembler that produces a flat
// binary.
type Command struct {
	Args    []string // Command line, with InputFile and OutputFile placeholders.
	Prelude string   // Source text before the instruction.
}

var _ Encoder = (*Command)(nil)

// Encode assembles the instruction, returning
// the machine code. The temporary files are
// removed before it returns.
func (c *Command) Encode(ctx context.Context, mnemonic, operands string) ([]byte, error) {
	args := c.Args
	if len(args) == 0 {
		args = DefaultArgs
	}

	prelude := c.Prelude
	if prelude == "" {
		prelude = DefaultPrelude
	}

	inst := mnemonic
	if operands != "" {
		inst = mnemonic + " " + operands
	}

	dir, err := os.MkdirTemp("", "x64test.*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary directory: %v", err)
	}

	defer os.RemoveAll(dir)

	var b bytes.Buffer
	b.WriteString(prelude)
	b.WriteByte('\n')
	b.WriteString(inst)
	b.WriteByte('\n')

	in := filepath.Join(dir, "inst.asm")
	out := filepath.Join(dir, "inst.bin")
	err = os.WriteFile(in, b.Bytes(), 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to write temporary assembly file: %v", err)
	}

	argv := make([]string, len(args))
	for i, arg := range args {
		arg = strings.ReplaceAll(arg, InputFile, in)
		arg = strings.ReplaceAll(arg, OutputFile, out)
		argv[i] = arg
	}

	b.Reset()
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &b
	cmd.Stderr = &b
	err = cmd.Run()
	if err != nil {
		return nil, &Error{Instruction: inst, Err: err, Stderr: b.String()}
	}

	code, err := os.ReadFile(out)
	if err != nil {
		return nil, &Error{Instruction: inst, Err: err}
	}

	if len(code) == 0 {
		return nil, &Error{Instruction: inst, Err: fmt.Errorf("assembler produced no code")}
	}

	return code, nil
}
