// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

import (
	"fmt"
	"sort"

	"github.com/nixlox/lox/syntax"
)

// An ErrorKind classifies a static error found by the resolver.
type ErrorKind uint8

const (
	_                          ErrorKind = iota
	DuplicateDeclaration                 // name declared twice in one scope
	SelfReferencingInitializer           // variable read in its own initializer
	InvalidReturn                        // return outside a function, or with a value in an initializer
	InvalidThis                          // this outside a class
	InvalidSuper                         // super outside a class, or in a class without a superclass
	SelfInheritance                      // class names itself as its superclass
)

var errorKindNames = [...]string{
	DuplicateDeclaration:       "DuplicateDeclaration",
	SelfReferencingInitializer: "SelfReferencingInitializer",
	InvalidReturn:              "InvalidReturn",
	InvalidThis:                "InvalidThis",
	InvalidSuper:               "InvalidSuper",
	SelfInheritance:            "SelfInheritance",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) && errorKindNames[k] != "" {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// Code returns the stable diagnostic code of k, such as "R0003".
func (k ErrorKind) Code() string { return fmt.Sprintf("R%04d", uint8(k)) }

// An Error describes the nature and position of a resolver error.
type Error struct {
	Pos  syntax.Position
	Kind ErrorKind
	Msg  string
}

func (e Error) Error() string { return e.Pos.String() + ": " + e.Msg }

// An ErrorList is a non-empty list of resolver error messages.
type ErrorList []Error // len > 0

func (e ErrorList) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", e[0], len(e)-1)
}

// Len, Less and Swap order errors by position.
func (e ErrorList) Len() int           { return len(e) }
func (e ErrorList) Less(i, j int) bool { return e[i].Pos.Before(e[j].Pos) }
func (e ErrorList) Swap(i, j int)      { e[i], e[j] = e[j], e[i] }

// Sort sorts the list by position, keeping errors at the same
// position in the order they were reported.
func (e ErrorList) Sort() { sort.Stable(e) }

// Kinds returns the kind of each error, in list order.
func (e ErrorList) Kinds() []ErrorKind {
	kinds := make([]ErrorKind, len(e))
	for i, err := range e {
		kinds[i] = err.Kind
	}
	return kinds
}

// err returns the list as an error, or nil if it is empty.
func (e ErrorList) err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
