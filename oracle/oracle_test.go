// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package oracle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"golang.org/x/time/rate"
)

func TestParseNdisasm(t *testing.T) {
	tests := []struct {
		Name string
		Out  string
		Want string
	}{
		{
			Name: "simple",
			Out:  "00000000  4883D010          adc rax,byte +0x10\n",
			Want: "adc rax,byte +0x10",
		},
		{
			Name: "no newline",
			Out:  "00000000  90                nop",
			Want: "nop",
		},
		{
			Name: "continuation",
			Out: "00000000  48B8100000000000  mov rax,0x10\n" +
				"         -0000\n",
			Want: "mov rax,0x10",
		},
		{
			Name: "multiple instructions",
			Out:  "00000000  90                nop\n00000001  C3                ret\n",
			Want: "nop",
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			got, err := ParseNdisasm(test.Out)
			if err != nil {
				t.Fatalf("ParseNdisasm(): %v", err)
			}

			if got != test.Want {
				t.Fatalf("ParseNdisasm(): got %q, want %q", got, test.Want)
			}
		})
	}

	for _, out := range []string{"", "00000000  90", "00000000  90                \n"} {
		if _, err := ParseNdisasm(out); !errors.Is(err, ErrNoOutput) {
			t.Errorf("ParseNdisasm(%q): got %v, want ErrNoOutput", out, err)
		}
	}
}

// fakeNdisasm writes a shell script that
// behaves like ndisasm, returning its path.
func fakeNdisasm(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on Windows")
	}

	name := filepath.Join(t.TempDir(), "ndisasm")
	err := os.WriteFile(name, []byte("#!/bin/sh\n"+script), 0755)
	if err != nil {
		t.Fatal(err)
	}

	return name
}

func TestNdisasm(t *testing.T) {
	path := fakeNdisasm(t, `cat > /dev/null
printf '%-10s%-18s%s\n' 00000000 90 "$1 $2 $3"
`)

	n := &Ndisasm{Path: path, Bits: 32, Limiter: rate.NewLimiter(rate.Inf, 1)}
	got, err := n.Disassemble(context.Background(), []byte{0x90})
	if err != nil {
		t.Fatalf("Disassemble(): %v", err)
	}

	if want := "-b 32 -"; got != want {
		t.Fatalf("Disassemble(): got %q, want %q", got, want)
	}
}

func TestNdisasmFailure(t *testing.T) {
	path := fakeNdisasm(t, `cat > /dev/null
echo "unable to open input" >&2
exit 1
`)

	n := &Ndisasm{Path: path}
	_, err := n.Disassemble(context.Background(), []byte{0x90})
	var oracleErr *Error
	if !errors.As(err, &oracleErr) {
		t.Fatalf("Disassemble(): got %v, want *Error", err)
	}

	if !strings.Contains(oracleErr.Error(), "unable to open input") {
		t.Fatalf("Disassemble(): error %q does not include stderr", oracleErr)
	}
}

func TestNdisasmMissing(t *testing.T) {
	n := &Ndisasm{Path: filepath.Join(t.TempDir(), "does-not-exist")}
	_, err := n.Disassemble(context.Background(), []byte{0x90})
	var oracleErr *Error
	if !errors.As(err, &oracleErr) {
		t.Fatalf("Disassemble(): got %v, want *Error", err)
	}
}

func TestX86asm(t *testing.T) {
	tests := []struct {
		Name string
		Code []byte
		Want string
	}{
		{
			Name: "nop",
			Code: []byte{0x90},
			Want: "nop",
		},
		{
			Name: "immediate",
			Code: []byte{0x48, 0x83, 0xd0, 0x10},
			Want: "adc rax,0x10",
		},
		{
			Name: "memory",
			Code: []byte{0x48, 0x8b, 0x40, 0x10},
			Want: "mov rax,qword [rax+0x10]",
		},
		{
			Name: "short jump",
			Code: []byte{0xeb, 0x10},
			Want: "jmp 0x12",
		},
		{
			Name: "near jump",
			Code: []byte{0xe9, 0x10, 0x00, 0x00, 0x00},
			Want: "jmp 0x15",
		},
	}

	var x X86asm
	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			got, err := x.Disassemble(context.Background(), test.Code)
			if err != nil {
				t.Fatalf("Disassemble(% x): %v", test.Code, err)
			}

			if got != test.Want {
				t.Fatalf("Disassemble(% x): got %q, want %q", test.Code, got, test.Want)
			}
		})
	}

	if _, err := x.Disassemble(context.Background(), nil); !errors.Is(err, ErrNoOutput) {
		t.Fatalf("Disassemble(nil): got %v, want ErrNoOutput", err)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		Name   string
		Config Config
		OK     bool
	}{
		{Name: "default", Config: Config{}, OK: true},
		{Name: "ndisasm limited", Config: Config{Kind: KindNdisasm, Rate: 0.5}, OK: true},
		{Name: "x86asm", Config: Config{Kind: KindX86asm, Bits: 32}, OK: true},
		{Name: "bad kind", Config: Config{Kind: "objdump"}},
		{Name: "bad mode", Config: Config{Bits: 8}},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			d, err := New(test.Config)
			if test.OK != (err == nil) {
				t.Fatalf("New(%+v): got error %v, want ok=%v", test.Config, err, test.OK)
			}

			if err != nil {
				return
			}

			if n, ok := d.(*Ndisasm); ok && test.Config.Rate > 0 && n.Limiter == nil {
				t.Fatalf("New(%+v): no rate limiter", test.Config)
			}
		})
	}
}
