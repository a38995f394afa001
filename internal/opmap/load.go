// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package opmap

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Open reads the opcode map from the named
// CSV file. Files ending in ".gz" are
// decompressed first.
func Open(name string) (*Table, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open opcode map: %v", err)
	}

	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(name, ".gz") {
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress %q: %v", name, err)
		}

		defer gr.Close()
		r = gr
	}

	table, err := Load(r)
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", name, err)
	}

	return table, nil
}

// Load reads an opcode map in CSV form. Each
// record has three fields: the mnemonic, the
// operand-code string, and the flags, such as:
//
//	adc,r*ib,AUTO_SIZE|EXACT_SIZE
//
// Lines starting with '#' are ignored, as is
// an optional header record.
func Load(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = 3
	cr.ReuseRecord = true

	table := NewTable()
	for first := true; ; first = false {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to read opcode map: %w", err)
		}

		if first && record[0] == "mnemonic" {
			continue
		}

		line, _ := cr.FieldPos(0)
		flags, err := ParseFlags(record[2])
		if err != nil {
			return nil, &EntryError{Line: line, Mnemonic: record[0], Args: record[1], Reason: err.Error()}
		}

		entry := Entry{Args: strings.TrimSpace(record[1]), Flags: flags}
		err = table.Add(strings.TrimSpace(record[0]), entry)
		if err != nil {
			var entryErr *EntryError
			if errors.As(err, &entryErr) {
				entryErr.Line = line
			}

			return nil, err
		}
	}

	return table, nil
}
