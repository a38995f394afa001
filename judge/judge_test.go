// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package judge

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"testing"
)

func TestJudge(t *testing.T) {
	tests := []struct {
		Name    string
		Encoder string
		Oracle  string
		Code    []byte
		Want    Rule
	}{
		{
			Name:    "identical",
			Encoder: "add al,cl",
			Oracle:  "add al,cl",
			Code:    []byte{0x00, 0xc8},
			Want:    Exact,
		},
		{
			Name:    "case and sign",
			Encoder: "adc rax,BYTE 0x10",
			Oracle:  "adc rax,byte +0x10",
			Code:    []byte{0x48, 0x83, 0xd0, 0x10},
			Want:    Exact,
		},
		{
			Name:    "yword",
			Encoder: "vmovaps ymm3,HWORD [rax+0x10]",
			Oracle:  "vmovaps ymm3,yword [rax+0x10]",
			Code:    []byte{0xc5, 0xfc, 0x28, 0x58, 0x10},
			Want:    Exact,
		},
		{
			Name:    "nop",
			Encoder: "xchg eax,eax",
			Oracle:  "nop",
			Code:    []byte{0x90},
			Want:    Exact,
		},
		{
			Name:    "mmx",
			Encoder: "movq mmx0,mmx5",
			Oracle:  "movq mm0,mm5",
			Code:    []byte{0x0f, 0x6f, 0xc5},
			Want:    Exact,
		},
		{
			Name:    "size keyword",
			Encoder: "adc rax, byte 0x10",
			Oracle:  "adc rax,0x10",
			Code:    []byte{0x48, 0x83, 0xd0, 0x10},
			Want:    SizeKeywords,
		},
		{
			Name:    "size keywords on both sides",
			Encoder: "adc QWORD [rax+0x10],BYTE 0x10",
			Oracle:  "adc qword [rax+0x10],byte +0x10",
			Code:    []byte{0x48, 0x83, 0x50, 0x10, 0x10},
			Want:    Exact,
		},
		{
			Name:    "size keyword on memory",
			Encoder: "fadd DWORD [rax+0x10]",
			Oracle:  "fadd dword [rax+0x10]",
			Code:    []byte{0xd8, 0x40, 0x10},
			Want:    Exact,
		},
		{
			Name:    "implicit memory size",
			Encoder: "lgdt [rax+0x10]",
			Oracle:  "lgdt tword [rax+0x10]",
			Code:    []byte{0x0f, 0x01, 0x50, 0x10},
			Want:    SizeKeywords,
		},
		{
			Name:    "short jump",
			Encoder: "jnc 0x10",
			Oracle:  "jnc 0x12",
			Code:    []byte{0x73, 0x10},
			Want:    RelativeOffset,
		},
		{
			Name:    "near jump",
			Encoder: "jmp 0x10",
			Oracle:  "jmp 0x15",
			Code:    []byte{0xe9, 0x10, 0x00, 0x00, 0x00},
			Want:    RelativeOffset,
		},
		{
			Name:    "long relative offset",
			Encoder: "jnc 0x10",
			Oracle:  "jnc 0x1a",
			Code:    make([]byte, 10),
			Want:    RelativeOffset,
		},
		{
			Name:    "displacement unchanged",
			Encoder: "jmp [rax+0x10]",
			Oracle:  "jmp [rax+0x13]",
			Code:    []byte{0xff, 0x60, 0x10},
			Want:    NoMatch,
		},
		{
			Name:    "x87 leading st0",
			Encoder: "fadd st0,st1",
			Oracle:  "fadd st1",
			Code:    []byte{0xd8, 0xc1},
			Want:    X87LeadingST0,
		},
		{
			Name:    "x87 trailing st0",
			Encoder: "fadd st1,st0",
			Oracle:  "fadd st1",
			Code:    []byte{0xdc, 0xc1},
			Want:    X87TrailingST0,
		},
		{
			Name:    "x87 direction",
			Encoder: "fadd st1,st0",
			Oracle:  "fadd to st1",
			Code:    []byte{0xdc, 0xc1},
			Want:    X87Direction,
		},
		{
			Name:    "x87 implicit st1",
			Encoder: "fxch",
			Oracle:  "fxch st1",
			Code:    []byte{0xd9, 0xc9},
			Want:    X87ImplicitST1,
		},
		{
			Name:    "x87 disassembler st0",
			Encoder: "fcomi st1",
			Oracle:  "fcomi st1,st0",
			Code:    []byte{0xdb, 0xf1},
			Want:    X87DisassemblerST0,
		},
		{
			Name:    "x87 mismatch",
			Encoder: "fadd st0,st1",
			Oracle:  "fmul st1",
			Code:    []byte{0xd8, 0xc9},
			Want:    NoMatch,
		},
		{
			Name:    "different operands",
			Encoder: "add al,cl",
			Oracle:  "add cl,al",
			Code:    []byte{0x00, 0xc1},
			Want:    NoMatch,
		},
		{
			Name:    "operand size override without x87 registers",
			Encoder: "fsavew [rax+0x10]",
			Oracle:  "o16 fsave [rax+0x10]",
			Code:    []byte{0x66, 0x9b, 0xdd, 0x70, 0x10},
			Want:    NoMatch,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			got := Judge(test.Encoder, test.Oracle, test.Code)
			if got.Rule != test.Want {
				t.Fatalf("Judge(%q, %q): got %s, want %s\n  Encoder: %q\n  Oracle:  %q", test.Encoder, test.Oracle, got.Rule, test.Want, got.Encoder, got.Oracle)
			}

			// Judging is a pure function.
			if again := Judge(test.Encoder, test.Oracle, test.Code); again != got {
				t.Fatalf("Judge(%q, %q): got %+v, then %+v", test.Encoder, test.Oracle, got, again)
			}

			err := Check(test.Encoder, test.Oracle, test.Code)
			if (err == nil) != got.Equal() {
				t.Fatalf("Check(%q, %q): got %v, want equal=%v", test.Encoder, test.Oracle, err, got.Equal())
			}
		})
	}
}

func TestJudgeOperandSizeOverride(t *testing.T) {
	got := judgeX87("fsavew [rax+0x10]", "o16 fsave [rax+0x10]")
	if got != OperandSizeOverride {
		t.Fatalf("judgeX87(): got %s, want %s", got, OperandSizeOverride)
	}
}

func TestMismatchError(t *testing.T) {
	err := Check("add al,cl", "add cl,al", []byte{0x00, 0xc1})
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Check(): got %v, want *MismatchError", err)
	}

	mismatch.Name = "add_1"
	want := "instruction mismatch:\n" +
		"\tTest:      add_1\n" +
		"\tEncoder:   add al,cl\n" +
		"\tOracle:    add cl,al\n" +
		"\tCompared:  \"add al,cl\"\n" +
		"\tAgainst:   \"add cl,al\"\n" +
		"\tCode:      \\x00\\xC1"
	if got := mismatch.Error(); got != want {
		t.Fatalf("Error():\nGot:\n%s\nWant:\n%s", got, want)
	}
}

func TestEscapeBytes(t *testing.T) {
	got := EscapeBytes([]byte{0x48, 0x83, 0xd0, 0x10})
	if want := `\x48\x83\xD0\x10`; got != want {
		t.Fatalf("EscapeBytes(): got %q, want %q", got, want)
	}

	if got := EscapeBytes(nil); got != "" {
		t.Fatalf("EscapeBytes(nil): got %q, want empty", got)
	}
}

type fakeDisassembler struct {
	text string
	err  error
}

func (d *fakeDisassembler) Disassemble(ctx context.Context, code []byte) (string, error) {
	return d.text, d.err
}

// recorder captures test failures reported
// by Run.
type recorder struct {
	testing.TB
	errors []string
	fatal  bool
}

func (r *recorder) Helper() {}

func (r *recorder) Error(args ...any) {
	r.errors = append(r.errors, fmt.Sprint(args...))
}

func (r *recorder) Fatalf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
	r.fatal = true
	runtime.Goexit()
}

func TestRun(t *testing.T) {
	code := []byte{0x48, 0x83, 0xd0, 0x10}
	encode := func() ([]byte, error) { return code, nil }
	tests := []struct {
		Name   string
		Oracle *fakeDisassembler
		Encode func() ([]byte, error)
		Errors int
		Fatal  bool
	}{
		{
			Name:   "pass",
			Oracle: &fakeDisassembler{text: "adc rax,byte +0x10"},
			Encode: encode,
		},
		{
			Name:   "mismatch",
			Oracle: &fakeDisassembler{text: "sbb rax,byte +0x10"},
			Encode: encode,
			Errors: 1,
		},
		{
			Name:   "encode failure",
			Oracle: &fakeDisassembler{text: "adc rax,byte +0x10"},
			Encode: func() ([]byte, error) { return nil, errors.New("unsupported") },
			Errors: 1,
			Fatal:  true,
		},
		{
			Name:   "oracle failure",
			Oracle: &fakeDisassembler{err: errors.New("no ndisasm")},
			Encode: encode,
			Errors: 1,
			Fatal:  true,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			r := &recorder{TB: t}
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				Run(r, test.Oracle, "adc rax,BYTE 0x10", test.Encode)
			}()

			wg.Wait()
			if len(r.errors) != test.Errors || r.fatal != test.Fatal {
				t.Fatalf("Run(): got errors %q (fatal=%v), want %d (fatal=%v)", r.errors, r.fatal, test.Errors, test.Fatal)
			}
		})
	}
}
