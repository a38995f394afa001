// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package opmap

import (
	"strings"
)

// Policy controls details of expansion where
// more than one behaviour is reasonable.
type Policy struct {
	// AutoSizeQuad adds a quad-size form for
	// AUTO_SIZE entries, which otherwise only
	// produce word and dword forms.
	AutoSizeQuad bool

	// SkipX86Only drops entries that are not
	// available in long mode.
	SkipX86Only bool
}

// Expand resolves every wildcard size in the
// opcode map, returning one specification per
// mnemonic, sorted by mnemonic.
//
// Entries without a wildcard size are used
// unchanged. Otherwise, the flags select the
// sizes, in order of precedence:
//
//   - AUTO_NO32: word and qword.
//   - AUTO_REXW: dword and qword.
//   - AUTO_VEXL: oword and hword.
//   - AUTO_SIZE: word and dword (and qword, if
//     the policy allows).
//   - PREF_66 with no auto flag: oword.
//
// Wildcard entries with none of these flags
// produce no forms.
func Expand(table *Table, policy Policy) ([]Spec, error) {
	mnemonics := table.Mnemonics()
	specs := make([]Spec, 0, len(mnemonics))
	for _, mnemonic := range mnemonics {
		spec := Spec{Mnemonic: mnemonic, Args: make([]string, 0, len(table.entries[mnemonic]))}
		for _, entry := range table.entries[mnemonic] {
			err := Validate(mnemonic, entry)
			if err != nil {
				return nil, err
			}

			if policy.SkipX86Only && entry.Flags.Has(X86Only) {
				continue
			}

			spec.Args = append(spec.Args, expandEntry(entry, policy)...)
		}

		specs = append(specs, spec)
	}

	return specs, nil
}

// Sizes returns the size codes that resolve
// the wildcard in an entry with the given
// flags.
func (p Policy) Sizes(flags Flags) []byte {
	if flags.Any(AutoFlags) {
		switch {
		case flags.Any(AutoNo32):
			return []byte{'w', 'q'}
		case flags.Any(AutoRexW):
			return []byte{'d', 'q'}
		case flags.Any(AutoVexL):
			return []byte{'o', 'h'}
		case p.AutoSizeQuad:
			return []byte{'w', 'd', 'q'}
		default:
			return []byte{'w', 'd'}
		}
	}

	if flags.Any(Pref66) {
		return []byte{'o'}
	}

	return nil
}

func expandEntry(entry Entry, policy Policy) []string {
	if strings.IndexByte(entry.Args, Wildcard) < 0 {
		return []string{entry.Args}
	}

	sizes := policy.Sizes(entry.Flags)
	args := make([]string, len(sizes))
	for i, size := range sizes {
		args[i] = resolve(entry.Args, size)
	}

	return args
}

// resolve replaces each wildcard size code
// with the given size code.
func resolve(args string, size byte) string {
	b := []byte(args)
	for i := 1; i < len(b); i += 2 {
		if b[i] == Wildcard {
			b[i] = size
		}
	}

	return string(b)
}
