// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package gentests

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"text/template"

	"golang.org/x/tools/imports"
)

//go:embed templates/*_go.txt
var templatesFS embed.FS

var templates = template.Must(template.New("").ParseFS(templatesFS, "templates/*_go.txt"))

const artifactTemplate = "artifact_go.txt"

// Artifact describes a generated test file.
type Artifact struct {
	Program       string // Name of the generator, for the header.
	Package       string // Package clause.
	EncoderImport string // Import path of the encoder under test.
	EncoderFunc   string // Function with the signature func(mnemonic, operands string) ([]byte, error).
	OracleKind    string // "ndisasm" or "x86asm".
	OraclePath    string
	OracleBits    int
	Cases         []*Case
}

// Write renders the artifact as formatted Go
// source.
func Write(w io.Writer, a *Artifact) error {
	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, artifactTemplate, a)
	if err != nil {
		return fmt.Errorf("failed to execute %s: %v", artifactTemplate, err)
	}

	opts := &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	}

	src, err := imports.Process("x64_encoding_test.go", buf.Bytes(), opts)
	if err != nil {
		return fmt.Errorf("failed to format generated code: %v\n%s", err, buf.Bytes())
	}

	_, err = w.Write(src)
	if err != nil {
		return fmt.Errorf("failed to write generated code: %v", err)
	}

	return nil
}
