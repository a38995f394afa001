// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Command x64test generates differential tests
// for an x86-64 instruction encoder.
//
// The opcode map is expanded into one form per
// operand size, each form is given concrete
// operands, and the resulting instructions are
// either written out as a Go test file, which
// checks the encoder against a trusted
// disassembler, or checked directly against an
// external assembler.
//
// This is performed using the following
// process:
//
// 1. The opcode map is loaded and each wildcard size is resolved using the entry's flags.
// 2. Each mnemonic is canonicalised. Excluded mnemonics, and mnemonics whose canonical form has already been seen, are skipped.
// 3. Each operand-code string is turned into concrete operands.
// 4. Each test encodes its instruction, disassembles the machine code, and judges the two renderings.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"firefly-os.dev/x64test/internal/config"
	"firefly-os.dev/x64test/internal/gentests"
	"firefly-os.dev/x64test/internal/opmap"
)

var program = filepath.Base(os.Args[0])

func init() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)
	log.SetPrefix(program + ": ")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Fatal(err)
	}
}

// options holds the flags shared by all
// commands.
type options struct {
	config  string
	opmap   string
	verbose bool
}

func newRootCommand() *cobra.Command {
	opts := new(options)
	root := &cobra.Command{
		Use:           "x64test",
		Short:         "Differential tests for an x86-64 encoder",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.config, "config", "", "Path to a TOML configuration file.")
	flags.StringVar(&opts.opmap, "opmap", "", "Path to the opcode map, overriding the configuration.")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Print debug output.")

	root.AddCommand(
		newGenerateCommand(opts),
		newExpandCommand(opts),
		newJudgeCommand(opts),
		newRunCommand(opts),
	)

	return root
}

// load reads the configuration and applies
// the shared flags.
func (o *options) load() (*config.Config, error) {
	cfg := config.Default()
	if o.config != "" {
		var err error
		cfg, err = config.Load(o.config)
		if err != nil {
			return nil, err
		}
	}

	if o.opmap != "" {
		cfg.OpcodeMap.Path = o.opmap
	}

	return cfg, nil
}

func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// expand loads and expands the opcode map.
func expand(cfg *config.Config, logger *slog.Logger) ([]opmap.Spec, error) {
	if cfg.OpcodeMap.Path == "" {
		return nil, errors.New("no opcode map: use --opmap or set opmap.path")
	}

	table, err := opmap.Open(cfg.OpcodeMap.Path)
	if err != nil {
		return nil, err
	}

	logger.Debug("loaded opcode map", "path", cfg.OpcodeMap.Path, "mnemonics", table.Len())

	specs, err := opmap.Expand(table, cfg.Policy())
	if err != nil {
		return nil, fmt.Errorf("failed to expand %s: %w", cfg.OpcodeMap.Path, err)
	}

	return specs, nil
}

// plan produces the test cases described by
// the configuration.
func plan(cfg *config.Config, logger *slog.Logger) ([]*gentests.Case, error) {
	specs, err := expand(cfg, logger)
	if err != nil {
		return nil, err
	}

	mnemonics, err := cfg.MnemonicTable()
	if err != nil {
		return nil, err
	}

	cases, summary, err := gentests.Plan(specs, mnemonics, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("planned tests", "summary", summary)

	return cases, nil
}

func humaniseNumber(v int) string {
	prefix, suffix := strconv.Itoa(v), ""
	for len(prefix) > 3 {
		suffix = "," + prefix[len(prefix)-3:] + suffix
		prefix = prefix[:len(prefix)-3]
	}

	return prefix + suffix
}
