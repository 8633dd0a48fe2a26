// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nixlox/lox/internal/config"
	"github.com/nixlox/lox/internal/report"
	"github.com/nixlox/lox/repl"
)

// syncBuffer is a bytes.Buffer safe for use by a watch goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testEnv(t *testing.T, stdin string) (*env, *syncBuffer, *syncBuffer) {
	stdout, stderr := new(syncBuffer), new(syncBuffer)
	return &env{
		stdin:      strings.NewReader(stdin),
		stdout:     stdout,
		stderr:     stderr,
		log:        log.New(stderr, "loxresolve: ", 0),
		isTerminal: func(interface{}) bool { return false },
		repl:       func(repl.Options) { t.Error("unexpected REPL") },
	}, stdout, stderr
}

func run(t *testing.T, e *env, args ...string) error {
	t.Helper()
	cmd := newRootCmd(e)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var withCode interface{ ExitCode() int }
	if errors.As(err, &withCode) {
		return withCode.ExitCode()
	}
	return 1
}

func TestCheck(t *testing.T) {
	e, stdout, stderr := testEnv(t, "")
	require.NoError(t, run(t, e, "check", "testdata/ok.ndjson"))
	require.Empty(t, stdout.String())
	require.Empty(t, stderr.String())

	e, _, stderr = testEnv(t, "")
	err := run(t, e, "check", "testdata/ok.ndjson", "testdata/bad.ndjson")
	require.EqualError(t, err, "3 static errors")
	require.Equal(t, 2, exitCode(err))
	want := `testdata/bad.ndjson:1: R0003 can't return from top-level code
testdata/bad.ndjson:2: R0001 a already declared at testdata/bad.ndjson:2
testdata/bad.ndjson:3: R0006 class A can't inherit from itself
`
	require.Equal(t, want, stderr.String())
}

func TestCheckUnreadable(t *testing.T) {
	e, _, stderr := testEnv(t, "")
	err := run(t, e, "check", "testdata/missing.ndjson", "testdata/bad.ndjson")
	require.Error(t, err)
	require.Equal(t, 1, exitCode(err))
	require.Contains(t, stderr.String(), "loxresolve: open testdata/missing.ndjson")
	require.Contains(t, stderr.String(), "R0006")
}

func TestCheckStdin(t *testing.T) {
	e, _, stderr := testEnv(t, `{"type":"Expression","expr":{"type":"This"}}`+"\n")
	err := run(t, e)
	require.Equal(t, 2, exitCode(err))
	require.Equal(t, "<stdin>:1: R0004 can't use 'this' outside of a class\n", stderr.String())

	e, _, _ = testEnv(t, `{"type":"Var","name":"x"}`)
	require.NoError(t, run(t, e, "check", "-"))
}

func TestBindings(t *testing.T) {
	e, stdout, _ := testEnv(t, "")
	require.NoError(t, run(t, e, "bindings", "testdata/ok.ndjson"))
	lines := strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n")
	require.Len(t, lines, 8)
	var got []string
	for _, line := range lines {
		fields := strings.Fields(line)
		got = append(got, strings.Join(fields[2:], " "))
	}
	want := []string{
		"this this depth 1",
		"variable start depth 0",
		"this this depth 1",
		"assign n depth 1",
		"variable n depth 1",
		"variable bump depth 0",
		"variable n depth 0",
		"new Counter global",
	}
	require.Equal(t, want, got)

	e, _, _ = testEnv(t, "")
	require.Error(t, run(t, e, "bindings"))
}

func TestBindingsJSON(t *testing.T) {
	e, stdout, _ := testEnv(t, "")
	err := run(t, e, "--format=json", "bindings", "testdata/bad.ndjson")
	require.Equal(t, 2, exitCode(err))
	require.Contains(t, stdout.String(), `"SelfInheritance"`)
}

func TestConfigFile(t *testing.T) {
	const prog = `{"type":"Class","name":"A","methods":[{"name":"init","params":[],"body":[{"type":"Return","value":{"type":"Literal","value":1}}]}]}`

	e, _, _ := testEnv(t, "")
	require.NoError(t, run(t, e, "-c", prog))

	e, stdout, _ := testEnv(t, "")
	err := run(t, e, "--config", "testdata/init.yaml", "-c", prog)
	require.Equal(t, 2, exitCode(err))
	require.Contains(t, stdout.String(), `"InvalidReturn"`)

	// Flags override the file.
	e, stdout, _ = testEnv(t, "")
	err = run(t, e, "--config", "testdata/init.yaml", "--constructor", "constructor", "--format", "text", "-c", prog)
	require.NoError(t, err)
	require.Empty(t, stdout.String())
}

func TestInvalidFlags(t *testing.T) {
	e, _, _ := testEnv(t, "")
	err := run(t, e, "--format", "xml", "check", "testdata/ok.ndjson")
	require.Error(t, err)
	require.Equal(t, 1, exitCode(err))
	var verr *config.ValidationError
	require.True(t, errors.As(err, &verr), "got %T", err)

	e, _, _ = testEnv(t, "")
	err = run(t, e, "-c", `{"type":`)
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), "cmdline:1: invalid JSON"), err.Error())
}

func TestREPLOnTerminal(t *testing.T) {
	e, stdout, _ := testEnv(t, "")
	e.isTerminal = func(interface{}) bool { return true }
	var got *repl.Options
	e.repl = func(opts repl.Options) { got = &opts }
	require.NoError(t, run(t, e, "--constructor", "init", "--format", "textproto"))
	require.NotNil(t, got)
	require.Equal(t, "init", got.Resolve.ConstructorName)
	require.Equal(t, report.TextProto, got.Format)
	require.True(t, got.Color)
	require.Contains(t, stdout.String(), "Welcome")

	got = nil
	e.isTerminal = func(interface{}) bool { return false }
	require.NoError(t, run(t, e, "--color", "always", "repl"))
	require.NotNil(t, got)
	require.True(t, got.Color)
}

func TestTreeFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.ndjson", "a.json", "notes.txt", ".hidden/c.ndjson", "sub/d.ndjson"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}
	files, err := treeFiles(dir)
	require.NoError(t, err)
	want := []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.ndjson"),
		filepath.Join(dir, "sub", "d.ndjson"),
	}
	require.Equal(t, want, files)

	files, err = treeFiles(filepath.Join(dir, "notes.txt"))
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "notes.txt")}, files)

	_, err = treeFiles(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.ndjson")
	require.NoError(t, os.WriteFile(good, []byte(`{"type":"Var","name":"x"}`+"\n"), 0o644))

	e, stdout, stderr := testEnv(t, "")
	fl := &flags{cfg: config.Default()}
	fl.cfg.Color = config.ColorNever

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, e, fl, dir, 20*time.Millisecond) }()

	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), "ok")
	}, 5*time.Second, 10*time.Millisecond)

	bad := filepath.Join(dir, "bad.ndjson")
	require.Eventually(t, func() bool {
		// Rewrite until the watcher, which starts asynchronously, sees it.
		_ = os.WriteFile(bad, []byte(`{"type":"Return"}`+"\n"), 0o644)
		return strings.Contains(stderr.String(), "R0003")
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestExitCodeError(t *testing.T) {
	require.Equal(t, 1, exitCodeError{}.ExitCode())
	require.Equal(t, "command failed", exitCodeError{}.Error())
	err := staticErrors(1)
	require.Equal(t, "1 static error", err.Error())
	require.Equal(t, 2, exitCode(err))
}
