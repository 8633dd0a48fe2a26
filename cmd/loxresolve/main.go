// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The loxresolve command resolves the names of lox program trees
// produced by the parser and reports binding depths and static errors.
//
// With no arguments, it starts a read-resolve-print loop (REPL) if
// standard input is a terminal, and checks standard input otherwise.
//
// Exit status is 0 on success, 2 if static errors were found, and 1
// for any other failure.
package main // import "github.com/nixlox/lox/cmd/loxresolve"

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nixlox/lox/internal/config"
	"github.com/nixlox/lox/internal/report"
	"github.com/nixlox/lox/repl"
	"github.com/nixlox/lox/resolve"
	"github.com/nixlox/lox/syntax"
)

func main() {
	os.Exit(doMain())
}

func doMain() int {
	log.SetPrefix("loxresolve: ")
	log.SetFlags(0)

	cmd := newRootCmd(newEnv())
	cmd.SetArgs(os.Args[1:])
	if err := cmd.Execute(); err != nil {
		log.Print(err)
		if withCode, ok := err.(interface{ ExitCode() int }); ok {
			return withCode.ExitCode()
		}
		return 1
	}
	return 0
}

// exitCodeError carries the exit status a command failed with.
type exitCodeError struct {
	code int
	err  error
}

func (e exitCodeError) Error() string {
	if e.err == nil {
		return "command failed"
	}
	return e.err.Error()
}

func (e exitCodeError) ExitCode() int {
	if e.code <= 0 {
		return 1
	}
	return e.code
}

func (e exitCodeError) Unwrap() error { return e.err }

// staticErrors is the failure of a run that found n static errors.
func staticErrors(n int) error {
	noun := "errors"
	if n == 1 {
		noun = "error"
	}
	return exitCodeError{2, fmt.Errorf("%d static %s", n, noun)}
}

// env is the outside world of one invocation.
type env struct {
	stdin          io.Reader
	stdout, stderr io.Writer
	log            *log.Logger
	isTerminal     func(w interface{}) bool
	repl           func(repl.Options)
}

func newEnv() *env {
	return &env{
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		log:        log.Default(),
		isTerminal: isTerminal,
		repl:       repl.REPL,
	}
}

func isTerminal(f interface{}) bool {
	if f, ok := f.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// flags holds the persistent flags and the configuration they refine.
type flags struct {
	configPath  string
	constructor string
	format      string
	color       string
	execprog    string

	cfg *config.Config
}

// load reads the configuration file and applies flag overrides.
func (fl *flags) load(cmd *cobra.Command) error {
	var err error
	if fl.configPath != "" {
		fl.cfg, err = config.Load(fl.configPath)
	} else {
		fl.cfg, err = config.LoadDir(".")
	}
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("constructor") {
		fl.cfg.Constructor = fl.constructor
	}
	if cmd.Flags().Changed("format") {
		fl.cfg.Format = fl.format
	}
	if cmd.Flags().Changed("color") {
		fl.cfg.Color = fl.color
	}
	return fl.cfg.Validate()
}

func (fl *flags) resolveOptions() *resolve.Options { return fl.cfg.ResolveOptions() }

func (fl *flags) outputFormat() report.Format {
	f, _ := report.ParseFormat(fl.cfg.Format) // validated by load
	return f
}

// colorFor reports whether output to w should be highlighted.
func (fl *flags) colorFor(e *env, w io.Writer) bool {
	switch fl.cfg.Color {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	return e.isTerminal(w)
}

func newRootCmd(e *env) *cobra.Command {
	fl := new(flags)
	cmd := &cobra.Command{
		Use:   "loxresolve",
		Short: "Resolve variable bindings of lox program trees",
		Long: `loxresolve reads lox program trees in the parser's JSON interchange form,
one top-level statement per line, resolves every reference to its binding
depth, and reports static scoping errors.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return fl.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case fl.execprog != "":
				return runExec(e, fl, fl.execprog)
			case e.isTerminal(e.stdin):
				fmt.Fprintln(e.stdout, "Welcome to loxresolve. Enter one statement per line.")
				return runREPL(e, fl)
			default:
				return runCheck(e, fl, []string{"-"})
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&fl.configPath, "config", "", "read settings from `file` instead of ./loxresolve.yaml")
	pf.StringVar(&fl.constructor, "constructor", resolve.DefaultConstructorName, "name of the class initializer method")
	pf.StringVar(&fl.format, "format", string(report.Text), "report format (text, json, textproto, wire)")
	pf.StringVar(&fl.color, "color", config.ColorAuto, "highlight diagnostics (auto, always, never)")
	cmd.Flags().StringVarP(&fl.execprog, "command", "c", "", "resolve the single statement `stmt`")

	cmd.AddCommand(
		newCheckCmd(e, fl),
		newBindingsCmd(e, fl),
		newWatchCmd(e, fl),
		newREPLCmd(e, fl),
	)
	return cmd
}

func newREPLCmd(e *env, fl *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Resolve statements typed at an interactive prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(e, fl)
		},
	}
}

func runREPL(e *env, fl *flags) error {
	e.repl(repl.Options{
		Resolve: fl.resolveOptions(),
		Format:  fl.outputFormat(),
		Color:   fl.colorFor(e, e.stdout),
	})
	return nil
}

// runExec resolves a statement given on the command line
// and prints its report.
func runExec(e *env, fl *flags, prog string) error {
	arena := new(syntax.Arena)
	stmt, err := syntax.DecodeStmt(arena, "cmdline", 1, []byte(prog))
	if err != nil {
		return err
	}
	f := &syntax.File{Path: "cmdline", Stmts: []syntax.Stmt{stmt}, Arena: arena}
	return printReport(e, fl, report.Resolve(f, fl.resolveOptions()))
}
