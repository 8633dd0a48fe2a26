// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package syntax defines the lox program tree consumed by the resolver.
//
// Trees are produced by an external scanner and parser; this package
// only describes them and decodes the interchange form the parser
// emits (see ReadFile). Nodes that the resolver binds to a declaring
// scope (variables, assignments, this, super and object construction)
// are allocated in an Arena and carry a stable NodeID.
package syntax

// A Node is a node in a lox syntax tree.
type Node interface {
	// Span returns the start and end position of the node.
	Span() (start, end Position)
}

// Start returns the start position of the node.
func Start(n Node) Position {
	start, _ := n.Span()
	return start
}

// End returns the end position of the node.
func End(n Node) Position {
	_, end := n.Span()
	return end
}

// A File represents one compilation unit.
type File struct {
	Path  string
	Stmts []Stmt
	Arena *Arena // allocator of the unit's reference nodes
}

func (x *File) Span() (start, end Position) {
	if len(x.Stmts) == 0 {
		return
	}
	start, _ = x.Stmts[0].Span()
	_, end = x.Stmts[len(x.Stmts)-1].Span()
	return start, end
}

// A Stmt is a lox statement.
type Stmt interface {
	Node
	stmt()
}

func (*BlockStmt) stmt()     {}
func (*BranchStmt) stmt()    {}
func (*CaseStmt) stmt()      {}
func (*ClassStmt) stmt()     {}
func (*EnumStmt) stmt()      {}
func (*ExpectStmt) stmt()    {}
func (*ExprStmt) stmt()      {}
func (*FunctionStmt) stmt()  {}
func (*IfStmt) stmt()        {}
func (*ImportStmt) stmt()    {}
func (*InterfaceStmt) stmt() {}
func (*ModuleStmt) stmt()    {}
func (*ReturnStmt) stmt()    {}
func (*SwitchStmt) stmt()    {}
func (*TestStmt) stmt()      {}
func (*VarStmt) stmt()       {}
func (*WhenStmt) stmt()      {}
func (*WhileStmt) stmt()     {}

// A BlockStmt is a braced statement list: { Stmts }.
type BlockStmt struct {
	Lbrace Position
	Stmts  []Stmt
	Rbrace Position
}

func (x *BlockStmt) Span() (start, end Position) {
	return x.Lbrace, x.Rbrace.add("}")
}

// A VarStmt declares a variable: var Name = Init.
type VarStmt struct {
	Var  Position
	Name Token
	Init Expr // may be nil
}

func (x *VarStmt) Span() (start, end Position) {
	if x.Init == nil {
		_, end = x.Name.Span()
		return x.Var, end
	}
	return x.Var, End(x.Init)
}

// A Function is a function template: the parts shared by function
// declarations, class methods and interface method signatures.
type Function struct {
	Name     Token
	Params   []Token
	Static   bool
	Constant bool

	// Body is nil for a signature without a body (interface methods).
	// A declared but empty body is a non-nil Body with no statements.
	Body *Body
}

// HasBody reports whether the template carries a body, possibly empty.
func (fn *Function) HasBody() bool { return fn.Body != nil }

// A Body is the braced statement list of a function.
// It does not introduce a scope of its own: its statements share
// the scope of the function's parameters.
type Body struct {
	Lbrace Position
	Stmts  []Stmt
	Rbrace Position
}

// A FunctionStmt represents a function or method declaration.
type FunctionStmt struct {
	Fun Position // position of the FUN keyword, or of the name for methods
	Function
}

func (x *FunctionStmt) Span() (start, end Position) {
	if x.Body == nil {
		_, end = x.Name.Span()
		return x.Fun, end
	}
	return x.Fun, x.Body.Rbrace.add("}")
}

// A ClassStmt declares a class: class Name < Superclass { Methods }.
type ClassStmt struct {
	Class      Position
	Name       Token
	Superclass *VariableExpr // may be nil
	Methods    []*FunctionStmt
	Rbrace     Position
}

func (x *ClassStmt) Span() (start, end Position) {
	return x.Class, x.Rbrace.add("}")
}

// An InterfaceStmt declares an interface: a named set of method signatures.
type InterfaceStmt struct {
	Interface Position
	Name      Token
	Methods   []*Function // signatures; Body is always nil
	Rbrace    Position
}

func (x *InterfaceStmt) Span() (start, end Position) {
	return x.Interface, x.Rbrace.add("}")
}

// An EnumStmt declares an enumeration.
type EnumStmt struct {
	Enum    Position
	Name    Token
	Members []Token
	Rbrace  Position
}

func (x *EnumStmt) Span() (start, end Position) {
	return x.Enum, x.Rbrace.add("}")
}

// An IfStmt is a conditional: if (Cond) Then else Else.
type IfStmt struct {
	If   Position
	Cond Expr
	Then Stmt
	Else Stmt // may be nil
}

func (x *IfStmt) Span() (start, end Position) {
	body := x.Else
	if body == nil {
		body = x.Then
	}
	return x.If, End(body)
}

// A WhileStmt is a loop: while (Cond) Body.
type WhileStmt struct {
	While Position
	Cond  Expr
	Body  Stmt
}

func (x *WhileStmt) Span() (start, end Position) {
	return x.While, End(x.Body)
}

// A SwitchStmt dispatches on a value: switch (Value) { Cases }.
type SwitchStmt struct {
	Switch Position
	Value  Expr
	Cases  []*CaseStmt
	Rbrace Position
}

func (x *SwitchStmt) Span() (start, end Position) {
	return x.Switch, x.Rbrace.add("}")
}

// A CaseStmt is one arm of a switch. Value is nil for the default arm.
// Body is required.
type CaseStmt struct {
	Case  Position
	Value Expr
	Body  Stmt
}

func (x *CaseStmt) Span() (start, end Position) {
	return x.Case, End(x.Body)
}

// A WhenStmt runs Then when Cond holds, and Finally in either case.
type WhenStmt struct {
	When    Position
	Cond    Expr
	Then    Stmt
	Finally Stmt // may be nil
}

func (x *WhenStmt) Span() (start, end Position) {
	body := x.Finally
	if body == nil {
		body = x.Then
	}
	return x.When, End(body)
}

// A ReturnStmt returns from a function.
type ReturnStmt struct {
	Return Token // the RETURN keyword
	Result Expr  // may be nil
}

func (x *ReturnStmt) Span() (start, end Position) {
	if x.Result == nil {
		return x.Return.Span()
	}
	return x.Return.Pos, End(x.Result)
}

// A BranchStmt changes the flow of control: break or continue.
type BranchStmt struct {
	Token Token
}

func (x *BranchStmt) Span() (start, end Position) {
	return x.Token.Span()
}

// An ExprStmt is an expression evaluated for side effects.
type ExprStmt struct {
	X Expr
}

func (x *ExprStmt) Span() (start, end Position) {
	return x.X.Span()
}

// An ExpectStmt is an assertion inside a test block: expect X.
type ExpectStmt struct {
	Expect Position
	X      Expr // may be nil
}

func (x *ExpectStmt) Span() (start, end Position) {
	if x.X == nil {
		return x.Expect, x.Expect.add("expect")
	}
	return x.Expect, End(x.X)
}

// A TestStmt is a named test block: test Name { Body }.
type TestStmt struct {
	Test   Position
	Name   Expr
	Body   []Stmt
	Rbrace Position
}

func (x *TestStmt) Span() (start, end Position) {
	return x.Test, x.Rbrace.add("}")
}

// A ModuleStmt names the module a file belongs to.
type ModuleStmt struct {
	Module Position
	Name   Token
}

func (x *ModuleStmt) Span() (start, end Position) {
	_, end = x.Name.Span()
	return x.Module, end
}

// An ImportStmt pulls in another file: get "Path".
type ImportStmt struct {
	Import Position
	Path   Token
}

func (x *ImportStmt) Span() (start, end Position) {
	_, end = x.Path.Span()
	return x.Import, end
}

// An Expr is a lox expression.
type Expr interface {
	Node
	expr()
}

func (*AssignExpr) expr()   {}
func (*BinaryExpr) expr()   {}
func (*CallExpr) expr()     {}
func (*DotExpr) expr()      {}
func (*Literal) expr()      {}
func (*LogicalExpr) expr()  {}
func (*NewExpr) expr()      {}
func (*ParenExpr) expr()    {}
func (*SetExpr) expr()      {}
func (*SuperExpr) expr()    {}
func (*ThisExpr) expr()     {}
func (*UnaryExpr) expr()    {}
func (*VariableExpr) expr() {}

// A Ref is an expression whose binding the resolver records.
// Every Ref is allocated by an Arena and identified by its NodeID.
type Ref interface {
	Expr
	ID() NodeID
	// RefToken returns the token whose text names the binding.
	RefToken() Token
}

// A VariableExpr is a reference to a variable by name.
type VariableExpr struct {
	Name Token
	id   NodeID
}

func (x *VariableExpr) Span() (start, end Position) { return x.Name.Span() }
func (x *VariableExpr) ID() NodeID                  { return x.id }
func (x *VariableExpr) RefToken() Token             { return x.Name }

// An AssignExpr assigns to a variable: Name = Value.
type AssignExpr struct {
	Name  Token
	Value Expr
	id    NodeID
}

func (x *AssignExpr) Span() (start, end Position) { return x.Name.Pos, End(x.Value) }
func (x *AssignExpr) ID() NodeID                  { return x.id }
func (x *AssignExpr) RefToken() Token             { return x.Name }

// A ThisExpr is the receiver of the current method.
type ThisExpr struct {
	This Token
	id   NodeID
}

func (x *ThisExpr) Span() (start, end Position) { return x.This.Span() }
func (x *ThisExpr) ID() NodeID                  { return x.id }
func (x *ThisExpr) RefToken() Token             { return x.This }

// A SuperExpr selects a superclass method: super.Method.
type SuperExpr struct {
	Super  Token
	Method Token
	id     NodeID
}

func (x *SuperExpr) Span() (start, end Position) {
	_, end = x.Method.Span()
	return x.Super.Pos, end
}
func (x *SuperExpr) ID() NodeID      { return x.id }
func (x *SuperExpr) RefToken() Token { return x.Super }

// A NewExpr constructs an object: new Class(Args).
// The class name is bound like a variable; the constructor
// itself is looked up at run time.
type NewExpr struct {
	New    Position
	Class  Token
	Args   []Expr
	Rparen Position
	id     NodeID
}

func (x *NewExpr) Span() (start, end Position) { return x.New, x.Rparen.add(")") }
func (x *NewExpr) ID() NodeID                  { return x.id }
func (x *NewExpr) RefToken() Token             { return x.Class }

// A Literal represents a literal string, number, boolean or nil.
type Literal struct {
	ValuePos Position
	Raw      string      // uninterpreted text
	Value    interface{} // = nil | bool | float64 | string
}

func (x *Literal) Span() (start, end Position) {
	return x.ValuePos, x.ValuePos.add(x.Raw)
}

// A UnaryExpr represents a unary expression: Op X.
type UnaryExpr struct {
	Op Token
	X  Expr
}

func (x *UnaryExpr) Span() (start, end Position) {
	return x.Op.Pos, End(x.X)
}

// A BinaryExpr represents a binary expression: X Op Y.
type BinaryExpr struct {
	X  Expr
	Op Token
	Y  Expr
}

func (x *BinaryExpr) Span() (start, end Position) {
	return Start(x.X), End(x.Y)
}

// A LogicalExpr represents a short-circuit expression: X and Y, X or Y.
type LogicalExpr struct {
	X  Expr
	Op Token
	Y  Expr
}

func (x *LogicalExpr) Span() (start, end Position) {
	return Start(x.X), End(x.Y)
}

// A CallExpr represents a function call expression: Fn(Args).
type CallExpr struct {
	Fn     Expr
	Lparen Position
	Args   []Expr
	Rparen Position
}

func (x *CallExpr) Span() (start, end Position) {
	return Start(x.Fn), x.Rparen.add(")")
}

// A ParenExpr represents a parenthesized expression: (X).
type ParenExpr struct {
	Lparen Position
	X      Expr
	Rparen Position
}

func (x *ParenExpr) Span() (start, end Position) {
	return x.Lparen, x.Rparen.add(")")
}

// Property access operators of a DotExpr.
const (
	Dot      = "."  // plain property access
	Static   = "::" // static member access
	Coalesce = "?." // null-coalescing access
)

// A DotExpr represents a property access: X.Name, X::Name or X?.Name.
// Only X is resolved statically; Name is looked up at run time.
type DotExpr struct {
	X    Expr
	Op   Token // Dot, Static or Coalesce
	Name Token
}

func (x *DotExpr) Span() (start, end Position) {
	_, end = x.Name.Span()
	return Start(x.X), end
}

// A SetExpr assigns to a property: X.Name = Value.
type SetExpr struct {
	X     Expr
	Name  Token
	Value Expr
}

func (x *SetExpr) Span() (start, end Position) {
	return Start(x.X), End(x.Value)
}
