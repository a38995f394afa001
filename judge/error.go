// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package judge

import (
	"fmt"
	"strings"
)

// MismatchError describes a pair of renderings
// that denote different instructions.
type MismatchError struct {
	Name     string    // Optional test case name.
	Encoder  string    // Encoder's rendering.
	Oracle   string    // Disassembler's rendering.
	Compared [2]string // The renderings as last compared.
	Code     []byte
}

func (e *MismatchError) Error() string {
	parts := make([]string, 0, 6)
	if e.Name != "" {
		parts = append(parts, fmt.Sprintf("Test:      %s", e.Name))
	}
	parts = append(parts, fmt.Sprintf("Encoder:   %s", e.Encoder))
	parts = append(parts, fmt.Sprintf("Oracle:    %s", e.Oracle))
	parts = append(parts, fmt.Sprintf("Compared:  %q", e.Compared[0]))
	parts = append(parts, fmt.Sprintf("Against:   %q", e.Compared[1]))
	parts = append(parts, fmt.Sprintf("Code:      %s", EscapeBytes(e.Code)))

	return fmt.Sprintf("instruction mismatch:\n\t%s", strings.Join(parts, "\n\t"))
}

// EscapeBytes renders machine code as escaped
// hexadecimal, such as `\x48\x83\xD0\x10`.
func EscapeBytes(code []byte) string {
	var b strings.Builder
	b.Grow(4 * len(code))
	for _, c := range code {
		fmt.Fprintf(&b, "\\x%02X", c)
	}

	return b.String()
}
