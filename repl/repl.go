// Package repl provides an interactive shell for the lox resolver.
//
// It supports readline-style command editing,
// and interrupts through Control-C.
//
// Each statement entered, in the parser's JSON tree form, is resolved
// as a compilation unit of its own and its report is printed.
// If a line does not yet hold a complete JSON value, the shell reads
// continuation lines until it does, or until a blank line.
package repl // import "github.com/nixlox/lox/repl"

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/nixlox/lox/internal/report"
	"github.com/nixlox/lox/resolve"
	"github.com/nixlox/lox/syntax"
)

// Options configures the shell.
type Options struct {
	Resolve *resolve.Options
	Format  report.Format // zero means report.Text
	Color   bool          // highlight diagnostics in text output
}

// lineReader is the part of a readline instance the loop uses.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// REPL executes a read, resolve, print loop on the terminal.
func REPL(opts Options) {
	rl, err := readline.New(">>> ")
	if err != nil {
		PrintError(err)
		return
	}
	defer rl.Close()
	run(rl, os.Stdout, os.Stderr, opts)
	fmt.Println()
}

func run(rl lineReader, stdout, stderr io.Writer, opts Options) {
	s := &session{opts: opts, stdout: stdout, stderr: stderr}
	for {
		if err := s.rep(rl); err != nil {
			if err == readline.ErrInterrupt {
				fmt.Fprintln(stdout, err)
				continue
			}
			break
		}
	}
}

type session struct {
	opts           Options
	stdout, stderr io.Writer
	line           int // lines read so far
}

// rep reads, resolves, and prints one statement.
//
// It returns an error (possibly readline.ErrInterrupt)
// only if readline failed. Malformed input and static errors are printed.
func (s *session) rep(rl lineReader) error {
	rl.SetPrompt(">>> ")
	var buf bytes.Buffer
	start := 0
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == io.EOF && buf.Len() > 0 {
				s.printError(fmt.Errorf("<stdin>:%d: unexpected end of input", start))
			}
			return err
		}
		s.line++
		blank := strings.TrimSpace(line) == ""
		if buf.Len() == 0 {
			if blank || strings.HasPrefix(strings.TrimSpace(line), "#") {
				return nil
			}
			start = s.line
		} else if blank {
			break // give up on an incomplete statement
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
		if !incomplete(buf.Bytes()) {
			break
		}
		rl.SetPrompt("... ")
	}

	arena := new(syntax.Arena)
	stmt, err := syntax.DecodeStmt(arena, "<stdin>", start, buf.Bytes())
	if err != nil {
		s.printError(err)
		return nil
	}
	f := &syntax.File{Path: "<stdin>", Stmts: []syntax.Stmt{stmt}, Arena: arena}

	var bindings *resolve.Bindings
	if expr := soleExpr(f); expr != nil {
		bindings, err = resolve.Expr(expr, s.opts.Resolve)
	} else {
		bindings, err = resolve.File(f, s.opts.Resolve)
	}
	var errs resolve.ErrorList
	if err != nil {
		errs = err.(resolve.ErrorList)
	}
	s.print(report.Build(f, bindings, errs))
	return nil
}

// incomplete reports whether data is a truncated JSON value.
func incomplete(data []byte) bool {
	var v interface{}
	err := json.NewDecoder(bytes.NewReader(data)).Decode(&v)
	return errors.Is(err, io.ErrUnexpectedEOF)
}

func soleExpr(f *syntax.File) syntax.Expr {
	if len(f.Stmts) == 1 {
		if stmt, ok := f.Stmts[0].(*syntax.ExprStmt); ok {
			return stmt.X
		}
	}
	return nil
}

func (s *session) print(r *report.Report) {
	switch s.opts.Format {
	case "", report.Text:
		if err := r.WriteText(s.stdout, s.opts.Color); err != nil {
			s.printError(err)
		}
	default:
		data, err := r.Marshal(s.opts.Format)
		if err != nil {
			s.printError(err)
			return
		}
		s.stdout.Write(data)
		if !bytes.HasSuffix(data, []byte("\n")) {
			fmt.Fprintln(s.stdout)
		}
	}
}

func (s *session) printError(err error) { fmt.Fprintln(s.stderr, err) }

// PrintError prints the error to stderr.
func PrintError(err error) {
	fmt.Fprintln(os.Stderr, err)
}
