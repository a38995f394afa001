// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package oracle provides trusted disassemblers,
// used as the ground truth when checking the
// output of an x86-64 encoder.
//
// The default oracle is ndisasm, run as a
// short-lived process for each instruction. An
// in-process decoder is also available, for
// environments where ndisasm is not installed.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/time/rate"
)

// Disassembler decodes a single instruction,
// returning its assembly in the NASM dialect.
type Disassembler interface {
	Disassemble(ctx context.Context, code []byte) (string, error)
}

// ErrNoOutput indicates that the disassembler
// produced no instruction text.
var ErrNoOutput = errors.New("no disassembly produced")

// Error describes a failure to run an external
// disassembler, including anything it printed
// to stderr.
type Error struct {
	Tool   string
	Err    error
	Stderr string
}

func (e *Error) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("failed to run %s: %v", e.Tool, e.Err)
	}

	return fmt.Sprintf("failed to run %s: %v\n%s", e.Tool, e.Err, stderr)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Kind identifies a disassembler implementation.
type Kind string

const (
	KindNdisasm Kind = "ndisasm"
	KindX86asm  Kind = "x86asm"
)

// Config describes a disassembler.
type Config struct {
	Kind Kind
	Path string  // Path to the ndisasm binary.
	Bits int     // CPU mode: 16, 32, or 64.
	Rate float64 // Maximum process spawns per second; zero for no limit.
}

// New returns the disassembler described by
// the configuration.
func New(cfg Config) (Disassembler, error) {
	bits := cfg.Bits
	if bits == 0 {
		bits = 64
	}

	switch bits {
	case 16, 32, 64:
	default:
		return nil, fmt.Errorf("invalid CPU mode %d: must be 16, 32, or 64", bits)
	}

	switch cfg.Kind {
	case KindNdisasm, "":
		n := &Ndisasm{Path: cfg.Path, Bits: bits}
		if cfg.Rate > 0 {
			burst := int(cfg.Rate)
			if burst < 1 {
				burst = 1
			}

			n.Limiter = rate.NewLimiter(rate.Limit(cfg.Rate), burst)
		}

		return n, nil
	case KindX86asm:
		return &X86asm{Bits: bits}, nil
	}

	return nil, fmt.Errorf("unrecognised disassembler %q", cfg.Kind)
}
