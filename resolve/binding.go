// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

import (
	"fmt"
	"sort"

	"github.com/nixlox/lox/syntax"
)

// Bindings is the binding table produced by a resolution run:
// for each reference node it resolved, the number of scopes between
// the reference and the scope that declares its name.
//
// The evaluator, on reaching a reference with a recorded depth, walks
// exactly that many parent links of its environment chain before looking
// the name up. A reference with no entry is looked up in the global
// environment, which the resolver never models.
type Bindings struct {
	depths map[syntax.NodeID]int
}

// NewBindings returns an empty binding table.
func NewBindings() *Bindings {
	return &Bindings{depths: make(map[syntax.NodeID]int)}
}

// Record records that the reference id is bound depth scopes out
// from the innermost scope enclosing it.
func (b *Bindings) Record(id syntax.NodeID, depth int) {
	if id == syntax.NoNode {
		panic("resolve: recording a binding for a node without a handle")
	}
	if depth < 0 {
		panic(fmt.Sprintf("resolve: negative binding depth %d for %s", depth, id))
	}
	b.depths[id] = depth
}

// Depth returns the recorded depth of the reference id.
// The boolean is false if the reference is global.
func (b *Bindings) Depth(id syntax.NodeID) (int, bool) {
	if b == nil {
		return 0, false
	}
	depth, ok := b.depths[id]
	return depth, ok
}

// Len returns the number of recorded references.
func (b *Bindings) Len() int {
	if b == nil {
		return 0
	}
	return len(b.depths)
}

// IDs returns the handles of all recorded references in increasing order.
func (b *Bindings) IDs() []syntax.NodeID {
	if b == nil {
		return nil
	}
	ids := make([]syntax.NodeID, 0, len(b.depths))
	for id := range b.depths {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Map returns a copy of the table.
func (b *Bindings) Map() map[syntax.NodeID]int {
	m := make(map[syntax.NodeID]int, b.Len())
	if b != nil {
		for id, depth := range b.depths {
			m[id] = depth
		}
	}
	return m
}
