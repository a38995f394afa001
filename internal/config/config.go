// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package config contains the configuration for
// x64test, which is read from a TOML file.
//
// An example configuration:
//
//	[opmap]
//	path = "testdata/opmap.csv"
//
//	[generate]
//	output = "x64_encoding_test.go"
//	package = "x64_test"
//	encoder_import = "example.com/asm/x64"
//	encoder_func = "Encode"
//
//	[oracle]
//	kind = "ndisasm"
//	rate = 50.0
package config

import (
	"errors"
	"fmt"
	"go/token"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/module"

	"firefly-os.dev/x64test/encoder"
	"firefly-os.dev/x64test/internal/mnemonic"
	"firefly-os.dev/x64test/internal/opmap"
	"firefly-os.dev/x64test/oracle"
)

// Config is the full configuration.
type Config struct {
	OpcodeMap OpcodeMap `toml:"opmap"`
	Mnemonics Mnemonics `toml:"mnemonics"`
	Generate  Generate  `toml:"generate"`
	Oracle    Oracle    `toml:"oracle"`
	Encoder   Encoder   `toml:"encoder"`
}

// OpcodeMap describes the opcode map and how
// it is expanded.
type OpcodeMap struct {
	Path           string `toml:"path"`
	AutoSizeQuad   bool   `toml:"auto_size_quad"`
	IncludeX86Only bool   `toml:"include_x86_only"`
}

// Mnemonics extends the default alias table
// and exclusion list.
type Mnemonics struct {
	Exclude []string          `toml:"exclude"`
	Aliases map[string]string `toml:"aliases"` // Alias to canonical mnemonic.
}

// Generate describes the generated tests.
type Generate struct {
	Output        string `toml:"output"`
	Package       string `toml:"package"`
	EncoderImport string `toml:"encoder_import"`
	EncoderFunc   string `toml:"encoder_func"`
}

// Oracle describes the trusted disassembler.
type Oracle struct {
	Kind string  `toml:"kind"`
	Path string  `toml:"path"`
	Bits int     `toml:"bits"`
	Rate float64 `toml:"rate"` // Process spawns per second; zero for no limit.
}

// Encoder describes an external assembler, used
// by the run command.
type Encoder struct {
	Args    []string `toml:"args"`
	Prelude string   `toml:"prelude"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Generate: Generate{
			Output:      "x64_encoding_test.go",
			Package:     "x64_test",
			EncoderFunc: "Encode",
		},
		Oracle: Oracle{
			Kind: string(oracle.KindNdisasm),
			Path: "ndisasm",
			Bits: 64,
		},
		Encoder: Encoder{
			Args:    append([]string(nil), encoder.DefaultArgs...),
			Prelude: encoder.DefaultPrelude,
		},
	}
}

// Load reads the named TOML file, applying it
// over the default configuration. Unrecognised
// keys are an error.
func Load(name string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(name, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %v", name, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}

		return nil, fmt.Errorf("failed to parse config %q: unrecognised keys: %s", name, strings.Join(keys, ", "))
	}

	return cfg, nil
}

// Decode parses a TOML configuration over the
// default configuration.
func Decode(data string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("failed to parse config: unrecognised key %s", undecoded[0])
	}

	return cfg, nil
}

// Policy returns the opcode map expansion policy.
func (c *Config) Policy() opmap.Policy {
	return opmap.Policy{
		AutoSizeQuad: c.OpcodeMap.AutoSizeQuad,
		SkipX86Only:  !c.OpcodeMap.IncludeX86Only,
	}
}

// MnemonicTable returns the mnemonic table,
// including any extra aliases and exclusions.
func (c *Config) MnemonicTable() (*mnemonic.Table, error) {
	table, err := mnemonic.NewTable(c.Mnemonics.Aliases, c.Mnemonics.Exclude)
	if err != nil {
		return nil, fmt.Errorf("invalid mnemonics config: %v", err)
	}

	return table, nil
}

// Disassembler returns the configured oracle.
func (c *Config) Disassembler() (oracle.Disassembler, error) {
	return oracle.New(oracle.Config{
		Kind: oracle.Kind(c.Oracle.Kind),
		Path: c.Oracle.Path,
		Bits: c.Oracle.Bits,
		Rate: c.Oracle.Rate,
	})
}

// Command returns the configured external
// assembler.
func (c *Config) Command() (*encoder.Command, error) {
	if len(c.Encoder.Args) == 0 {
		return nil, errors.New("invalid encoder config: no command")
	}

	in := false
	for _, arg := range c.Encoder.Args {
		if strings.Contains(arg, encoder.InputFile) {
			in = true
		}
	}

	if !in {
		return nil, fmt.Errorf("invalid encoder config: command does not include %s", encoder.InputFile)
	}

	return &encoder.Command{Args: c.Encoder.Args, Prelude: c.Encoder.Prelude}, nil
}

// CheckGenerate checks that the configuration
// describes valid generated tests.
func (c *Config) CheckGenerate() error {
	g := c.Generate
	if g.Output == "" {
		return errors.New("invalid generate config: no output path")
	}

	if !token.IsIdentifier(g.Package) {
		return fmt.Errorf("invalid generate config: package name %q is not an identifier", g.Package)
	}

	if g.EncoderImport == "" {
		return errors.New("invalid generate config: no encoder import path")
	}

	err := module.CheckImportPath(g.EncoderImport)
	if err != nil {
		return fmt.Errorf("invalid generate config: %v", err)
	}

	if !token.IsIdentifier(g.EncoderFunc) || !token.IsExported(g.EncoderFunc) {
		return fmt.Errorf("invalid generate config: encoder function %q is not an exported identifier", g.EncoderFunc)
	}

	return nil
}
