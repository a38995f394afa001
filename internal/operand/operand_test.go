// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package operand

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSynthesize(t *testing.T) {
	tests := []struct {
		Name string
		Code string
		Want []string
	}{
		{
			Name: "no operands",
			Code: "",
			Want: []string{},
		},
		{
			Name: "byte register",
			Code: "Ab",
			Want: []string{"al"},
		},
		{
			Name: "extended registers",
			Code: "IbJwKdLq",
			Want: []string{"r8b", "r9w", "r10d", "r11"},
		},
		{
			Name: "register and immediate",
			Code: "rbib",
			Want: []string{"al", "BYTE 0x10"},
		},
		{
			Name: "unsized immediate",
			Code: "vdi!",
			Want: []string{"eax", "0x10"},
		},
		{
			Name: "memory",
			Code: "mqrq",
			Want: []string{"QWORD [rax+0x10]", "rax"},
		},
		{
			Name: "unsized memory",
			Code: "m!",
			Want: []string{"[rax+0x10]"},
		},
		{
			Name: "fword memory",
			Code: "mf",
			Want: []string{"[rax+0x10]"},
		},
		{
			Name: "segment registers",
			Code: "QwRwSwTwUwVw",
			Want: []string{"es", "cs", "ss", "ds", "fs", "gs"},
		},
		{
			Name: "x87",
			Code: "Xpfp",
			Want: []string{"st0", "st1"},
		},
		{
			Name: "vector widths",
			Code: "ydyqyoyh",
			Want: []string{"xmm0", "xmm1", "xmm2", "ymm3"},
		},
		{
			Name: "gather",
			Code: "yhlhyh",
			Want: []string{"ymm3", "[ymm2*2]", "ymm3"},
		},
		{
			Name: "mmx",
			Code: "xquq",
			Want: []string{"mmx0", "mmx5"},
		},
		{
			Name: "system registers",
			Code: "cqdqWq",
			Want: []string{"cr8", "dr2", "cr8"},
		},
		{
			Name: "relative offset",
			Code: "od",
			Want: []string{"0x10"},
		},
		{
			Name: "bound register",
			Code: "bom!",
			Want: []string{"bnd1", "[rax+0x10]"},
		},
		{
			Name: "any size",
			Code: "r?",
			Want: []string{"rax"},
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			got, err := Synthesize(test.Code)
			if err != nil {
				t.Fatalf("Synthesize(%q): %v", test.Code, err)
			}

			if diff := cmp.Diff(test.Want, got); diff != "" {
				t.Fatalf("Synthesize(%q): (-want, +got)\n%s", test.Code, diff)
			}
		})
	}
}

func TestSynthesizeErrors(t *testing.T) {
	tests := []struct {
		Name   string
		Code   string
		Offset int
	}{
		{
			Name:   "odd length",
			Code:   "rbi",
			Offset: 2,
		},
		{
			Name:   "unknown class",
			Code:   "rbzb",
			Offset: 2,
		},
		{
			Name:   "wildcard size",
			Code:   "r*",
			Offset: 1,
		},
		{
			Name:   "unknown size",
			Code:   "rz",
			Offset: 1,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			_, err := Synthesize(test.Code)
			var codeErr *CodeError
			if !errors.As(err, &codeErr) {
				t.Fatalf("Synthesize(%q): got error %v, want *CodeError", test.Code, err)
			}

			if codeErr.Offset != test.Offset {
				t.Fatalf("Synthesize(%q): got offset %d, want %d", test.Code, codeErr.Offset, test.Offset)
			}
		})
	}
}

// Every class and size combination must
// produce a token.
func TestTokenTotality(t *testing.T) {
	for _, class := range Classes {
		for index := 0; index < class.Registers(); index++ {
			for _, size := range Sizes {
				op := Operand{Class: class, Index: uint8(index), Size: size}
				if op.Token() == "" {
					t.Errorf("%s %d at %s: no token", class, index, size)
				}
			}
		}
	}
}

// Every class code and size code accepted by
// the parser must produce a token.
func TestCodeTotality(t *testing.T) {
	for class := 0; class < 256; class++ {
		if _, _, ok := ClassFromCode(byte(class)); !ok {
			continue
		}

		for size := 0; size < 256; size++ {
			if _, ok := SizeFromCode(byte(size)); !ok {
				continue
			}

			code := string([]byte{byte(class), byte(size)})
			tokens, err := Synthesize(code)
			if err != nil {
				t.Errorf("Synthesize(%q): %v", code, err)
				continue
			}

			if len(tokens) != 1 || tokens[0] == "" {
				t.Errorf("Synthesize(%q): got %q", code, tokens)
			}
		}
	}
}

func TestSizedTokens(t *testing.T) {
	wantImmediates := [numSizes]string{
		Byte:  "BYTE 0x10",
		Word:  "WORD 0x10",
		Dword: "DWORD 0x10",
		Qword: "QWORD 0x10",
		Oword: "0x10",
		Hword: "0x10",
		Auto:  "0x10",
		Any:   "0x10",
	}

	wantMemory := [numSizes]string{
		Byte:  "BYTE [rax+0x10]",
		Word:  "WORD [rax+0x10]",
		Dword: "DWORD [rax+0x10]",
		Qword: "QWORD [rax+0x10]",
		Oword: "OWORD [rax+0x10]",
		Hword: "HWORD [rax+0x10]",
		Auto:  "[rax+0x10]",
		Any:   "[rax+0x10]",
	}

	if diff := cmp.Diff(wantImmediates, immediates); diff != "" {
		t.Errorf("immediates: (-want, +got)\n%s", diff)
	}

	if diff := cmp.Diff(wantMemory, memory); diff != "" {
		t.Errorf("memory: (-want, +got)\n%s", diff)
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		Name     string
		Mnemonic string
		Operands []string
		Want     string
	}{
		{
			Name:     "no operands",
			Mnemonic: "nop",
			Want:     "nop",
		},
		{
			Name:     "one operand",
			Mnemonic: "push",
			Operands: []string{"rax"},
			Want:     "push rax",
		},
		{
			Name:     "two operands",
			Mnemonic: "adc",
			Operands: []string{"al", "BYTE 0x10"},
			Want:     "adc al,BYTE 0x10",
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			got := Render(test.Mnemonic, test.Operands)
			if got != test.Want {
				t.Fatalf("Render(%q, %q): got %q, want %q", test.Mnemonic, test.Operands, got, test.Want)
			}
		})
	}
}
