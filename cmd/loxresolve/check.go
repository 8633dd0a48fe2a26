// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nixlox/lox/internal/report"
	"github.com/nixlox/lox/syntax"
)

func newCheckCmd(e *env, fl *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "check [file ...]",
		Short: "Report static errors in program tree files",
		Long: `check resolves each named file as a separate compilation unit and prints
its static errors. The file name "-" denotes standard input, which is
also read if no file is named.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"-"}
			}
			return runCheck(e, fl, args)
		},
	}
}

func newBindingsCmd(e *env, fl *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "bindings file",
		Short: "Print the binding depth of every reference in a program tree file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readUnit(e, args[0])
			if err != nil {
				return err
			}
			return printReport(e, fl, report.Resolve(f, fl.resolveOptions()))
		},
	}
}

// readUnit decodes the named file, or standard input for "-".
func readUnit(e *env, filename string) (*syntax.File, error) {
	if filename == "-" {
		return syntax.ReadFile("<stdin>", e.stdin)
	}
	return syntax.ReadFile(filename, nil)
}

// runCheck resolves each file and prints its diagnostics.
// Files that cannot be read are reported and skipped.
func runCheck(e *env, fl *flags, filenames []string) error {
	color := fl.colorFor(e, e.stderr)
	var nerrs, nbad int
	for _, filename := range filenames {
		f, err := readUnit(e, filename)
		if err != nil {
			e.log.Print(err)
			nbad++
			continue
		}
		r := report.Resolve(f, fl.resolveOptions())
		if err := r.WriteDiagnostics(e.stderr, color); err != nil {
			return err
		}
		nerrs += len(r.Diagnostics)
	}
	if nbad > 0 {
		return exitCodeError{1, fmt.Errorf("%d of %d files could not be read", nbad, len(filenames))}
	}
	if nerrs > 0 {
		return staticErrors(nerrs)
	}
	return nil
}

// printReport writes r to standard output in the configured format.
func printReport(e *env, fl *flags, r *report.Report) error {
	format := fl.outputFormat()
	if format == report.Text {
		if err := r.WriteText(e.stdout, fl.colorFor(e, e.stdout)); err != nil {
			return err
		}
	} else {
		data, err := r.Marshal(format)
		if err != nil {
			return err
		}
		if _, err := e.stdout.Write(data); err != nil {
			return err
		}
		if format != report.Wire {
			fmt.Fprintln(e.stdout)
		}
	}
	if !r.OK() {
		return staticErrors(len(r.Diagnostics))
	}
	return nil
}
