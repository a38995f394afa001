// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package oracle

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"golang.org/x/time/rate"
)

// ndisasmPreamble is the width of the offset
// and machine code columns that precede the
// instruction text in ndisasm's output:
//
//	00000000  4883D010          adc rax,byte +0x10
const ndisasmPreamble = 28

// Ndisasm runs ndisasm once per instruction.
type Ndisasm struct {
	Path    string        // Defaults to "ndisasm".
	Bits    int           // Defaults to 64.
	Limiter *rate.Limiter // Optional.
}

var _ Disassembler = (*Ndisasm)(nil)

// Disassemble runs ndisasm on the given code,
// returning the first instruction.
//
// The process reads the code from stdin and
// writes to stdout, and is waited for on every
// path, so no process outlives the call.
func (n *Ndisasm) Disassemble(ctx context.Context, code []byte) (string, error) {
	if len(code) == 0 {
		return "", fmt.Errorf("failed to disassemble: %w", ErrNoOutput)
	}

	if n.Limiter != nil {
		err := n.Limiter.Wait(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to wait for ndisasm: %w", err)
		}
	}

	path := n.Path
	if path == "" {
		path = "ndisasm"
	}

	bits := n.Bits
	if bits == 0 {
		bits = 64
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "-b", strconv.Itoa(bits), "-")
	cmd.Stdin = bytes.NewReader(code)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		return "", &Error{Tool: path, Err: err, Stderr: stderr.String()}
	}

	return ParseNdisasm(stdout.String())
}

// ParseNdisasm extracts the first instruction
// from ndisasm's output.
func ParseNdisasm(out string) (string, error) {
	if len(out) <= ndisasmPreamble {
		return "", fmt.Errorf("failed to parse ndisasm output %q: %w", out, ErrNoOutput)
	}

	line, _, _ := strings.Cut(out[ndisasmPreamble:], "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("failed to parse ndisasm output %q: %w", out, ErrNoOutput)
	}

	return line, nil
}
