// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package judge

import (
	"context"
	"testing"

	"firefly-os.dev/x64test/oracle"
)

// Run encodes an instruction, disassembles the
// result, and reports a test failure if the two
// renderings are not equivalent. A failure to
// encode or disassemble is fatal to the test.
func Run(t testing.TB, d oracle.Disassembler, rendering string, encode func() ([]byte, error)) {
	t.Helper()
	code, err := encode()
	if err != nil {
		t.Fatalf("failed to encode %q: %v", rendering, err)
	}

	got, err := d.Disassemble(context.Background(), code)
	if err != nil {
		t.Fatalf("failed to disassemble %q (%s): %v", rendering, EscapeBytes(code), err)
	}

	err = Check(rendering, got, code)
	if err != nil {
		t.Error(err)
	}
}
