// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

import "github.com/nixlox/lox/syntax"

// A bindState records how far a local's declaration has progressed.
type bindState uint8

const (
	declared bindState = iota // declared, initializer not yet resolved
	defined                   // ready for use
)

type local struct {
	state bindState
	decl  syntax.Token // zero for synthetic bindings
}

// A scope maps the names declared in one lexical block to their state.
type scope map[string]*local

// A scopeStack holds the scopes enclosing the current position of the
// walk, innermost last. The global scope is never on the stack: names
// declared at top level are resolved dynamically.
type scopeStack []scope

func (s *scopeStack) push() { *s = append(*s, make(scope)) }

func (s *scopeStack) pop() {
	(*s)[len(*s)-1] = nil
	*s = (*s)[:len(*s)-1]
}

// top returns the innermost scope, or nil at top level.
func (s scopeStack) top() scope {
	if len(s) == 0 {
		return nil
	}
	return s[len(s)-1]
}

// bind adds a synthetic, already defined name to the innermost scope.
func (s scopeStack) bind(name string) {
	s.top()[name] = &local{state: defined}
}

// lookup returns the distance from the innermost scope to the
// innermost scope declaring name.
func (s scopeStack) lookup(name string) (depth int, ok bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if _, ok := s[i][name]; ok {
			return len(s) - 1 - i, true
		}
	}
	return 0, false
}

// uninitialized reports whether name is declared in the innermost
// scope but its initializer is still being resolved.
func (s scopeStack) uninitialized(name string) bool {
	l, ok := s.top()[name]
	return ok && l.state == declared
}
