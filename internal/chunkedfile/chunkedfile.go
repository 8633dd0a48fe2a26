// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chunkedfile provides utilities for testing that static
// errors are reported in the appropriate places.
//
// A chunked file consists of several chunks of input separated by
// "---" lines. Each chunk is one compilation unit for the program under
// test, typically a program tree in NDJSON form, one statement per line.
// Lines containing "###" are interpreted as expectations of failure:
// the following text is a Go string literal denoting a regular
// expression that should match the error reported on that line.
//
// Example:
//
//	{"type":"Return"} ### "top-level"
//	---
//	{"type":"Block","stmts":[{"type":"Var","name":"x","init":{"type":"Variable","name":"x"}}]} ### "own initializer"
//
// A client test feeds each chunk into the program under test, then
// calls chunk.GotError for each error that actually occurred. Any
// discrepancy between the actual and expected errors is reported using
// the client's reporter, which is typically a testing.T.
//
// Since the NDJSON reader ignores text after a '#' that follows a
// statement, annotated chunks can be decoded as they are.
package chunkedfile // import "github.com/nixlox/lox/internal/chunkedfile"

import (
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// A Chunk is a portion of a chunked file.
// It contains a set of expected errors.
type Chunk struct {
	// Source is the text of the chunk, preceded by enough newlines that
	// line numbers within it match those of the whole file.
	Source string
	// Line is the line of the file on which the chunk starts.
	Line int

	filename string
	report   Reporter
	wantErrs map[int]*regexp.Regexp
}

// Reporter is implemented by *testing.T.
type Reporter interface {
	Errorf(format string, args ...interface{})
}

// Read parses a chunked file and returns its chunks.
// It reports failures using the reporter.
//
// Error messages of the form "file.ndjson:line: ..." are prefixed
// by a newline so that the Go source position added by (*testing.T).Errorf
// appears on a separate line so as not to confuse editors.
func Read(filename string, report Reporter) []Chunk {
	data, err := os.ReadFile(filename)
	if err != nil {
		report.Errorf("%s", err)
		return nil
	}
	return Parse(filename, string(data), report)
}

// Parse is like Read but takes the file contents from text.
func Parse(filename, text string, report Reporter) (chunks []Chunk) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	linenum := 1
	for _, chunk := range strings.Split(text, "\n---\n") {
		c := Chunk{
			Source:   strings.Repeat("\n", linenum-1) + chunk,
			Line:     linenum,
			filename: filename,
			report:   report,
			wantErrs: make(map[int]*regexp.Regexp),
		}

		// Parse comments of the form:
		// ### "expected error".
		for _, line := range strings.Split(chunk, "\n") {
			if hashes := strings.Index(line, "###"); hashes >= 0 {
				c.expect(linenum, strings.TrimSpace(line[hashes+len("###"):]))
			}
			linenum++
		}
		linenum++ // the "---" separator

		chunks = append(chunks, c)
	}
	return chunks
}

func (chunk *Chunk) expect(linenum int, quoted string) {
	pattern, err := strconv.Unquote(quoted)
	if err != nil {
		chunk.report.Errorf("\n%s:%d: not a quoted regexp: %s", chunk.filename, linenum, quoted)
		return
	}
	rx, err := regexp.Compile(pattern)
	if err != nil {
		chunk.report.Errorf("\n%s:%d: %v", chunk.filename, linenum, err)
		return
	}
	chunk.wantErrs[linenum] = rx
}

// Want returns the number of expected errors not yet matched.
func (chunk *Chunk) Want() int { return len(chunk.wantErrs) }

// GotError should be called by the client to report an error at a particular line.
// GotError reports unexpected errors to the chunk's reporter.
func (chunk *Chunk) GotError(linenum int, msg string) {
	if rx, ok := chunk.wantErrs[linenum]; ok {
		delete(chunk.wantErrs, linenum)
		if !rx.MatchString(msg) {
			chunk.report.Errorf("\n%s:%d: error %q does not match pattern %q", chunk.filename, linenum, msg, rx)
		}
	} else {
		chunk.report.Errorf("\n%s:%d: unexpected error: %v", chunk.filename, linenum, msg)
	}
}

// Done should be called by the client to indicate that the chunk has no more errors.
// Done reports expected errors that did not occur to the chunk's reporter,
// in line order.
func (chunk *Chunk) Done() {
	lines := make([]int, 0, len(chunk.wantErrs))
	for linenum := range chunk.wantErrs {
		lines = append(lines, linenum)
	}
	sort.Ints(lines)
	for _, linenum := range lines {
		chunk.report.Errorf("\n%s:%d: expected error matching %q", chunk.filename, linenum, chunk.wantErrs[linenum])
	}
}
