// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// Walk traverses a syntax tree in depth-first order.
// It starts by calling f(n); n must not be nil.
// If f returns true, Walk calls itself
// recursively for each non-nil child of n.
// Walk then calls f(nil).
//
// Function parameters, member names and other bare Tokens are not
// Nodes and are not visited.
func Walk(n Node, f func(Node) bool) {
	if n == nil {
		panic("nil")
	}
	if !f(n) {
		return
	}

	switch n := n.(type) {
	case *File:
		walkStmts(n.Stmts, f)

	case *BlockStmt:
		walkStmts(n.Stmts, f)

	case *VarStmt:
		if n.Init != nil {
			Walk(n.Init, f)
		}

	case *FunctionStmt:
		if n.Body != nil {
			walkStmts(n.Body.Stmts, f)
		}

	case *ClassStmt:
		if n.Superclass != nil {
			Walk(n.Superclass, f)
		}
		for _, m := range n.Methods {
			Walk(m, f)
		}

	case *InterfaceStmt, *EnumStmt, *BranchStmt, *ModuleStmt, *ImportStmt:
		// no child nodes

	case *IfStmt:
		Walk(n.Cond, f)
		Walk(n.Then, f)
		if n.Else != nil {
			Walk(n.Else, f)
		}

	case *WhileStmt:
		Walk(n.Cond, f)
		Walk(n.Body, f)

	case *SwitchStmt:
		Walk(n.Value, f)
		for _, c := range n.Cases {
			Walk(c, f)
		}

	case *CaseStmt:
		if n.Value != nil {
			Walk(n.Value, f)
		}
		Walk(n.Body, f)

	case *WhenStmt:
		Walk(n.Cond, f)
		Walk(n.Then, f)
		if n.Finally != nil {
			Walk(n.Finally, f)
		}

	case *ReturnStmt:
		if n.Result != nil {
			Walk(n.Result, f)
		}

	case *ExprStmt:
		Walk(n.X, f)

	case *ExpectStmt:
		if n.X != nil {
			Walk(n.X, f)
		}

	case *TestStmt:
		Walk(n.Name, f)
		walkStmts(n.Body, f)

	case *VariableExpr, *ThisExpr, *SuperExpr, *Literal:
		// no child nodes

	case *AssignExpr:
		Walk(n.Value, f)

	case *NewExpr:
		for _, arg := range n.Args {
			Walk(arg, f)
		}

	case *UnaryExpr:
		Walk(n.X, f)

	case *BinaryExpr:
		Walk(n.X, f)
		Walk(n.Y, f)

	case *LogicalExpr:
		Walk(n.X, f)
		Walk(n.Y, f)

	case *CallExpr:
		Walk(n.Fn, f)
		for _, arg := range n.Args {
			Walk(arg, f)
		}

	case *ParenExpr:
		Walk(n.X, f)

	case *DotExpr:
		Walk(n.X, f)

	case *SetExpr:
		Walk(n.X, f)
		Walk(n.Value, f)

	default:
		panic(n)
	}

	f(nil)
}

func walkStmts(stmts []Stmt, f func(Node) bool) {
	for _, stmt := range stmts {
		Walk(stmt, f)
	}
}
