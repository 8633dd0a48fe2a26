// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package resolve defines a name-resolution pass for lox programs.
//
// The resolver walks the syntax tree of one compilation unit once,
// before evaluation. For every reference to a name (variables,
// assignments, this, super and object construction) it records in a
// Bindings table how many lexical scopes lie between the reference and
// the scope declaring the name, so that the evaluator can walk straight
// to the right environment instead of searching by name.
//
// Scopes are introduced by blocks, function bodies (which share the
// scope of their parameters), class bodies (a scope binding "this",
// preceded by one binding "super" if the class has a superclass),
// interface method signatures and test blocks. Names declared at top
// level are not tracked: references that find no declaring scope are
// left unrecorded and resolved dynamically in the global environment,
// where natively registered modules also live.
//
// Along the way the resolver reports the static errors that only
// scoping can reveal: a name declared twice in one scope, a variable
// read in its own initializer, return outside a function or with a
// value inside an initializer, this or super outside a class, super in
// a class without a superclass, and a class inheriting from itself.
// Errors never stop the walk, so that one run reports them all.
package resolve // import "github.com/nixlox/lox/resolve"

import (
	"fmt"
	"log"

	"github.com/nixlox/lox/syntax"
)

const debug = false

// DefaultConstructorName is the name of the method that initializes
// new instances of a class, unless Options say otherwise.
const DefaultConstructorName = "constructor"

// Names of the synthetic bindings of class bodies.
const (
	thisName  = "this"
	superName = "super"
)

// Options configures a resolution run. A nil *Options is valid and
// selects the defaults.
type Options struct {
	// ConstructorName is the method name treated as the class
	// initializer. If empty, DefaultConstructorName is used.
	ConstructorName string
}

func (opts *Options) constructor() string {
	if opts == nil || opts.ConstructorName == "" {
		return DefaultConstructorName
	}
	return opts.ConstructorName
}

// File resolves the statements of file and returns the resulting
// binding table.
//
// If the walk found any static errors, File also returns them as a
// non-nil ErrorList sorted by position; the file must then not be
// evaluated. The table is complete in either case.
func File(file *syntax.File, opts *Options) (*Bindings, error) {
	r := newResolver(opts)
	r.stmts(file.Stmts, enclosing{})
	return r.finish()
}

// Expr resolves a lone expression as if it appeared at top level,
// as a REPL does when asked to evaluate one.
func Expr(expr syntax.Expr, opts *Options) (*Bindings, error) {
	r := newResolver(opts)
	r.expr(expr, enclosing{})
	return r.finish()
}

// A functionKind says what kind of function body the walk is in.
type functionKind uint8

const (
	noFunction functionKind = iota
	function
	method
	initializer
)

// A classKind says what kind of class body the walk is in.
type classKind uint8

const (
	noClass classKind = iota
	class
	subclass
)

// enclosing is the traversal context of a node: the kind of function
// and class declarations surrounding it. It is passed by value down the
// recursive descent, so leaving a declaration, by whatever path, always
// restores the context of its parent.
type enclosing struct {
	fn    functionKind
	class classKind
}

func (e enclosing) String() string {
	return fmt.Sprintf("{fn:%d class:%d}", e.fn, e.class)
}

type resolver struct {
	scopes      scopeStack
	bindings    *Bindings
	errors      ErrorList
	constructor string
}

func newResolver(opts *Options) *resolver {
	return &resolver{
		bindings:    NewBindings(),
		constructor: opts.constructor(),
	}
}

func (r *resolver) finish() (*Bindings, error) {
	if len(r.scopes) != 0 {
		log.Panicf("resolve: %d scopes left open", len(r.scopes))
	}
	r.errors.Sort()
	return r.bindings, r.errors.err()
}

func (r *resolver) errorf(pos syntax.Position, kind ErrorKind, format string, args ...interface{}) {
	r.errors = append(r.errors, Error{pos, kind, fmt.Sprintf(format, args...)})
}

// declare adds name to the innermost scope in the declared state.
func (r *resolver) declare(name syntax.Token) {
	top := r.scopes.top()
	if top == nil {
		return // global
	}
	if prev, ok := top[name.Lexeme]; ok {
		if prev.decl.Pos.IsValid() {
			r.errorf(name.Pos, DuplicateDeclaration, "%s already declared at %s", name.Lexeme, prev.decl.Pos)
		} else {
			r.errorf(name.Pos, DuplicateDeclaration, "%s already declared in this scope", name.Lexeme)
		}
		prev.state, prev.decl = declared, name
		return
	}
	top[name.Lexeme] = &local{state: declared, decl: name}
}

// define marks name, already declared in the innermost scope, ready for use.
func (r *resolver) define(name syntax.Token) {
	top := r.scopes.top()
	if top == nil {
		return // global
	}
	if l, ok := top[name.Lexeme]; ok {
		l.state = defined
	} else {
		top[name.Lexeme] = &local{state: defined, decl: name}
	}
}

// resolveLocal records the depth of the innermost scope declaring name,
// if any, as the binding of ref.
func (r *resolver) resolveLocal(ref syntax.Ref, name string) {
	depth, ok := r.scopes.lookup(name)
	if debug {
		fmt.Printf("resolve %s %s: depth=%d local=%t\n", ref.ID(), name, depth, ok)
	}
	if ok {
		r.bindings.Record(ref.ID(), depth)
	}
}

func (r *resolver) stmts(stmts []syntax.Stmt, enc enclosing) {
	for _, stmt := range stmts {
		r.stmt(stmt, enc)
	}
}

func (r *resolver) stmt(stmt syntax.Stmt, enc enclosing) {
	switch stmt := stmt.(type) {
	case *syntax.BlockStmt:
		r.scopes.push()
		r.stmts(stmt.Stmts, enc)
		r.scopes.pop()

	case *syntax.VarStmt:
		// The name is declared before and defined after its
		// initializer so that reading it there can be detected.
		r.declare(stmt.Name)
		if stmt.Init != nil {
			r.expr(stmt.Init, enc)
		}
		r.define(stmt.Name)

	case *syntax.FunctionStmt:
		// Defined before the body so that the function may call itself.
		r.declare(stmt.Name)
		r.define(stmt.Name)
		r.function(&stmt.Function, enclosing{fn: function, class: enc.class})

	case *syntax.ClassStmt:
		r.class(stmt, enc)

	case *syntax.InterfaceStmt:
		r.declare(stmt.Name)
		r.define(stmt.Name)
		for _, sig := range stmt.Methods {
			r.scopes.push()
			r.params(sig.Params)
			r.scopes.pop()
		}

	case *syntax.EnumStmt:
		r.declare(stmt.Name)
		r.define(stmt.Name)

	case *syntax.IfStmt:
		r.expr(stmt.Cond, enc)
		r.stmt(stmt.Then, enc)
		if stmt.Else != nil {
			r.stmt(stmt.Else, enc)
		}

	case *syntax.WhileStmt:
		r.expr(stmt.Cond, enc)
		r.stmt(stmt.Body, enc)

	case *syntax.SwitchStmt:
		r.expr(stmt.Value, enc)
		for _, c := range stmt.Cases {
			r.stmt(c, enc)
		}

	case *syntax.CaseStmt:
		if stmt.Value != nil {
			r.expr(stmt.Value, enc)
		}
		r.stmt(stmt.Body, enc)

	case *syntax.WhenStmt:
		r.expr(stmt.Cond, enc)
		r.stmt(stmt.Then, enc)
		if stmt.Finally != nil {
			r.stmt(stmt.Finally, enc)
		}

	case *syntax.ReturnStmt:
		if enc.fn == noFunction {
			r.errorf(stmt.Return.Pos, InvalidReturn, "can't return from top-level code")
		}
		if stmt.Result != nil {
			if enc.fn == initializer {
				r.errorf(stmt.Return.Pos, InvalidReturn, "can't return a value from an initializer")
			}
			r.expr(stmt.Result, enc)
		}

	case *syntax.BranchStmt:
		// nop

	case *syntax.ExprStmt:
		r.expr(stmt.X, enc)

	case *syntax.ExpectStmt:
		if stmt.X != nil {
			r.expr(stmt.X, enc)
		}

	case *syntax.TestStmt:
		r.expr(stmt.Name, enc)
		r.scopes.push()
		r.stmts(stmt.Body, enc)
		r.scopes.pop()

	case *syntax.ModuleStmt, *syntax.ImportStmt:
		// Resolved by the module loader.

	default:
		log.Panicf("unexpected stmt %T", stmt)
	}
}

// function resolves the parameters and body of fn in a new scope.
// enc is the context of the body.
func (r *resolver) function(fn *syntax.Function, enc enclosing) {
	r.scopes.push()
	r.params(fn.Params)
	if fn.Body != nil {
		r.stmts(fn.Body.Stmts, enc)
	}
	r.scopes.pop()
}

func (r *resolver) params(params []syntax.Token) {
	for _, param := range params {
		r.declare(param)
		r.define(param)
	}
}

func (r *resolver) class(stmt *syntax.ClassStmt, enc enclosing) {
	r.declare(stmt.Name)
	r.define(stmt.Name)

	enc.class = class
	inherits := false
	if super := stmt.Superclass; super != nil {
		if super.Name.Lexeme == stmt.Name.Lexeme {
			r.errorf(super.Name.Pos, SelfInheritance, "class %s can't inherit from itself", stmt.Name.Lexeme)
		} else {
			r.expr(super, enc)
			enc.class = subclass
			inherits = true
			r.scopes.push()
			r.scopes.bind(superName)
		}
	}

	r.scopes.push()
	r.scopes.bind(thisName)
	for _, m := range stmt.Methods {
		kind := method
		if m.Name.Lexeme == r.constructor {
			kind = initializer
		}
		r.function(&m.Function, enclosing{fn: kind, class: enc.class})
	}
	r.scopes.pop()

	if inherits {
		r.scopes.pop()
	}
}

func (r *resolver) expr(e syntax.Expr, enc enclosing) {
	switch e := e.(type) {
	case *syntax.VariableExpr:
		if r.scopes.uninitialized(e.Name.Lexeme) {
			r.errorf(e.Name.Pos, SelfReferencingInitializer, "can't read local variable %s in its own initializer", e.Name.Lexeme)
			return
		}
		r.resolveLocal(e, e.Name.Lexeme)

	case *syntax.AssignExpr:
		r.expr(e.Value, enc)
		r.resolveLocal(e, e.Name.Lexeme)

	case *syntax.BinaryExpr:
		r.expr(e.X, enc)
		r.expr(e.Y, enc)

	case *syntax.LogicalExpr:
		r.expr(e.X, enc)
		r.expr(e.Y, enc)

	case *syntax.UnaryExpr:
		r.expr(e.X, enc)

	case *syntax.CallExpr:
		r.expr(e.Fn, enc)
		for _, arg := range e.Args {
			r.expr(arg, enc)
		}

	case *syntax.ParenExpr:
		r.expr(e.X, enc)

	case *syntax.Literal:
		// nop

	case *syntax.DotExpr:
		// The member name is looked up at run time.
		r.expr(e.X, enc)

	case *syntax.SetExpr:
		r.expr(e.Value, enc)
		r.expr(e.X, enc)

	case *syntax.ThisExpr:
		if enc.class == noClass {
			r.errorf(e.This.Pos, InvalidThis, "can't use 'this' outside of a class")
			return
		}
		r.resolveLocal(e, thisName)

	case *syntax.SuperExpr:
		switch enc.class {
		case noClass:
			r.errorf(e.Super.Pos, InvalidSuper, "can't use 'super' outside of a class")
		case class:
			r.errorf(e.Super.Pos, InvalidSuper, "can't use 'super' in a class with no superclass")
		default:
			r.resolveLocal(e, superName)
		}

	case *syntax.NewExpr:
		// The constructor is looked up at run time.
		r.resolveLocal(e, e.Class.Lexeme)
		for _, arg := range e.Args {
			r.expr(arg, enc)
		}

	default:
		log.Panicf("unexpected expr %T", e)
	}
}
