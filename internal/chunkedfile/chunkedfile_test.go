// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package chunkedfile

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

type testReporter struct {
	reported []string
}

func (r *testReporter) Errorf(format string, args ...interface{}) {
	formatted := fmt.Sprintf(format, args...)
	r.reported = append(r.reported, formatted)
}

func (r *testReporter) assertNone(t *testing.T) {
	t.Helper()
	if len(r.reported) > 0 {
		t.Errorf("reporter expected no errors, got %d: %q", len(r.reported), r.reported)
	}
}

func (r *testReporter) assertOne(t *testing.T, exp string) {
	t.Helper()
	if len(r.reported) != 1 {
		t.Fatalf("reporter expected 1 error, got %d", len(r.reported))
	}
	if r.reported[0] != exp {
		t.Fatalf("reporter expected %q, got %q", exp, r.reported[0])
	}
}

func (r *testReporter) reset() {
	r.reported = nil
}

func TestChunkedFile(t *testing.T) {
	const data = `{"type":"Return"} ### "top-level"
---
{"type":"Var","name":"x"}
{"type":"Expression","expr":{"type":"Variable","name":"x"}}
`

	reporter := &testReporter{}
	chunks := Parse("test_file", data, reporter)

	reporter.assertNone(t) // should not have reported any errors

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}

	// Check the first chunk
	exp := `{"type":"Return"} ### "top-level"`
	chunk := chunks[0]
	if chunk.Source != exp {
		t.Fatalf("expected %q, got %q", exp, chunk.Source)
	}
	if chunk.Line != 1 {
		t.Fatalf("expected first chunk on line 1, got %d", chunk.Line)
	}

	// First chunk has an expected error
	if chunk.Want() != 1 {
		t.Fatalf("expected 1 error, got %d", chunk.Want())
	}
	for _, re := range chunk.wantErrs {
		if re.String() != "top-level" {
			t.Fatalf("expected %q, got %q", "top-level", re.String())
		}
	}

	reporter.assertNone(t) // still should not have reported any errors

	// Send an error that is expected.
	chunk.GotError(1, "can't return from top-level code")
	reporter.assertNone(t)
	if chunk.Want() != 0 {
		t.Fatalf("expected 0 errors, got %d", chunk.Want())
	}

	// The same error again is unexpected.
	chunk.GotError(1, "can't return from top-level code")
	reporter.assertOne(t, "\ntest_file:1: unexpected error: can't return from top-level code")

	// Check the second chunk: padded so that its lines keep their numbers.
	exp = "\n\n" + `{"type":"Var","name":"x"}
{"type":"Expression","expr":{"type":"Variable","name":"x"}}
`
	chunk = chunks[1]
	if chunk.Source != exp {
		t.Fatalf("expected %q, got %q", exp, chunk.Source)
	}
	if chunk.Line != 3 {
		t.Fatalf("expected second chunk on line 3, got %d", chunk.Line)
	}
	if chunk.Want() != 0 {
		t.Fatalf("expected 0 errors, got %d", chunk.Want())
	}

	reporter.reset()
	chunk.GotError(123, "foobar")
	reporter.assertOne(t, "\ntest_file:123: unexpected error: foobar")
}

func TestMismatchAndMissing(t *testing.T) {
	const data = `{"type":"Return"} ### "top-level"
{"type":"Return"} ### "initializer"
{"type":"Return"} ### "never"
`
	reporter := &testReporter{}
	chunks := Parse("f", data, reporter)
	reporter.assertNone(t)

	chunk := chunks[0]
	chunk.GotError(2, "can't return from top-level code")
	reporter.assertOne(t, "\nf:2: error \"can't return from top-level code\" does not match pattern \"initializer\"")

	reporter.reset()
	chunk.Done()
	if len(reporter.reported) != 2 {
		t.Fatalf("expected 2 missing errors, got %q", reporter.reported)
	}
	if want := "\nf:1: expected error matching \"top-level\""; reporter.reported[0] != want {
		t.Errorf("got %q, want %q", reporter.reported[0], want)
	}
	if want := "\nf:3: expected error matching \"never\""; reporter.reported[1] != want {
		t.Errorf("got %q, want %q", reporter.reported[1], want)
	}
}

func TestBadAnnotations(t *testing.T) {
	reporter := &testReporter{}
	Parse("f", "{} ### top-level\n{} ### \"(\"\n", reporter)
	if len(reporter.reported) != 2 {
		t.Fatalf("expected 2 reports, got %q", reporter.reported)
	}
	if want := "\nf:1: not a quoted regexp: top-level"; reporter.reported[0] != want {
		t.Errorf("got %q, want %q", reporter.reported[0], want)
	}
}

func TestRead(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "crlf.ndjson")
	if err := os.WriteFile(filename, []byte("{}\r\n---\r\n{} ### \"x\"\r\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	reporter := &testReporter{}
	chunks := Read(filename, reporter)
	reporter.assertNone(t)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if _, ok := chunks[1].wantErrs[3]; !ok {
		t.Errorf("expected an error on line 3, got %v", chunks[1].wantErrs)
	}

	reporter.reset()
	if chunks := Read(filepath.Join(t.TempDir(), "missing"), reporter); chunks != nil {
		t.Errorf("expected no chunks for a missing file, got %d", len(chunks))
	}
	if len(reporter.reported) != 1 {
		t.Errorf("expected the missing file to be reported, got %q", reporter.reported)
	}
}
