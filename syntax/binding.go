// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import "fmt"

// This file defines the node handles referenced by the resolver's
// binding table. Handles, not pointers, identify reference nodes so that
// the table handed to the evaluator stays valid however the tree is
// copied or re-decoded between phases.

// A NodeID identifies one reference node within its Arena.
// The zero NodeID is never allocated.
type NodeID int32

// NoNode is the zero NodeID.
const NoNode NodeID = 0

func (id NodeID) String() string { return fmt.Sprintf("#%d", int32(id)) }

// An Arena allocates the reference nodes of one compilation unit
// and maps their handles back to them.
// The zero value is an empty arena ready to use.
type Arena struct {
	refs []Ref // refs[id-1] has handle id
}

func (a *Arena) alloc(r Ref) NodeID {
	a.refs = append(a.refs, r)
	return NodeID(len(a.refs))
}

// Len returns the number of reference nodes allocated so far.
func (a *Arena) Len() int { return len(a.refs) }

// Ref returns the node with handle id, or nil if there is none.
func (a *Arena) Ref(id NodeID) Ref {
	if id <= NoNode || int(id) > len(a.refs) {
		return nil
	}
	return a.refs[id-1]
}

// Variable returns a new reference to the variable name.
func (a *Arena) Variable(name Token) *VariableExpr {
	x := &VariableExpr{Name: name}
	x.id = a.alloc(x)
	return x
}

// Assign returns a new assignment of value to the variable name.
func (a *Arena) Assign(name Token, value Expr) *AssignExpr {
	x := &AssignExpr{Name: name, Value: value}
	x.id = a.alloc(x)
	return x
}

// This returns a new reference to the current receiver.
func (a *Arena) This(keyword Token) *ThisExpr {
	x := &ThisExpr{This: keyword}
	x.id = a.alloc(x)
	return x
}

// Super returns a new superclass method selection.
func (a *Arena) Super(keyword, method Token) *SuperExpr {
	x := &SuperExpr{Super: keyword, Method: method}
	x.id = a.alloc(x)
	return x
}

// New returns a new object construction of class with the given arguments.
func (a *Arena) New(newPos Position, class Token, args []Expr, rparen Position) *NewExpr {
	x := &NewExpr{New: newPos, Class: class, Args: args, Rparen: rparen}
	x.id = a.alloc(x)
	return x
}
