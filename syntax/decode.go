// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// This file decodes the interchange form in which the external parser
// hands program trees to the resolver.
//
// Every node is a JSON object discriminated by its "type" member:
//
//	{"type": "Var", "name": "x", "init": {"type": "Literal", "value": 1}}
//
// A token is either a bare string, positioned at the line of the
// statement that contains it, or an object {"lexeme", "line", "col"}.
// Node objects may also carry "line" and "col" members giving the
// position of their leading keyword.

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nixlox/lox/internal/spell"
)

// ReadFile reads a compilation unit in the parser's interchange form.
// If src != nil, ReadFile decodes src, which must be a string, []byte
// or io.Reader, and filename is used only for positions; otherwise
// ReadFile reads the named file.
//
// Two layouts are accepted. A document whose first non-blank character
// is '[' is a single JSON array of statements. Anything else is NDJSON:
// one top-level statement per line, with blank lines and lines starting
// with '#' ignored, as is any text after a '#' that follows a statement.
func ReadFile(filename string, src interface{}) (f *File, err error) {
	data, err := readSource(filename, src)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	f = &File{Path: filename, Arena: new(Arena)}
	d := &decoder{arena: f.Arena, file: &f.Path}
	defer func() {
		if err != nil {
			f = nil
		}
	}()
	defer d.recover(&err)

	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		var v interface{}
		if err := json.Unmarshal(trimmed, &v); err != nil {
			d.errorf("invalid JSON: %v", err)
		}
		f.Stmts = d.stmts(v)
		return f, nil
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	for sc.Scan() {
		d.line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		f.Stmts = append(f.Stmts, d.stmtLine(text))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return f, nil
}

// DecodeStmt decodes one JSON-encoded statement, allocating its
// reference nodes in a. Tokens without an explicit position are
// placed at the given line of filename.
func DecodeStmt(a *Arena, filename string, line int, data []byte) (stmt Stmt, err error) {
	d := &decoder{arena: a, file: &filename, line: int32(line)}
	defer d.recover(&err)
	return d.stmtLine(strings.TrimSpace(string(data))), nil
}

func readSource(filename string, src interface{}) ([]byte, error) {
	switch src := src.(type) {
	case string:
		return []byte(src), nil
	case []byte:
		return src, nil
	case io.Reader:
		data, err := io.ReadAll(src)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", filename, err)
		}
		return data, nil
	case nil:
		return os.ReadFile(filename)
	default:
		return nil, fmt.Errorf("invalid source: %T", src)
	}
}

type object = map[string]interface{}

// Node type names, for suggestions.
var (
	stmtTypes = []string{
		"Block", "Var", "Function", "Class", "Interface", "Enum", "If", "While",
		"Switch", "Case", "When", "Return", "Break", "Continue", "Expression",
		"Expect", "Test", "Module", "Import",
	}
	exprTypes = []string{
		"Variable", "Assign", "Binary", "Logical", "Unary", "Call", "Grouping",
		"Literal", "Get", "GetStatic", "Coalesce", "Set", "This", "Super", "New",
	}
)

type decoder struct {
	arena *Arena
	file  *string
	line  int32 // current NDJSON line; 0 in array layout
}

// errorf aborts decoding with an Error at the current line.
func (d *decoder) errorf(format string, args ...interface{}) {
	panic(Error{d.pos(), fmt.Sprintf(format, args...)})
}

func (d *decoder) recover(err *error) {
	if e := recover(); e != nil {
		if e, ok := e.(Error); ok {
			*err = e
			return
		}
		panic(e)
	}
}

func (d *decoder) pos() Position { return MakePosition(d.file, d.line, 0) }

// stmtLine decodes one NDJSON line holding a single statement.
func (d *decoder) stmtLine(text string) Stmt {
	dec := json.NewDecoder(strings.NewReader(text))
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		d.errorf("invalid JSON: %v", err)
	}
	if rest := strings.TrimSpace(text[dec.InputOffset():]); rest != "" && !strings.HasPrefix(rest, "#") {
		d.errorf("unexpected text after statement: %.20q", rest)
	}
	return d.stmt(v)
}

func (d *decoder) object(v interface{}, what string) object {
	o, ok := v.(object)
	if !ok {
		d.errorf("%s: got %s, want object", what, jsonKind(v))
	}
	return o
}

func (d *decoder) typeOf(o object) string {
	typ, ok := o["type"].(string)
	if !ok {
		d.errorf("node without \"type\"")
	}
	return typ
}

// at returns the position recorded on node o, if any.
func (d *decoder) at(o object) Position {
	p := d.pos()
	if line, ok := o["line"].(float64); ok {
		p.Line = int32(line)
	}
	if col, ok := o["col"].(float64); ok {
		p.Col = int32(col)
	}
	return p
}

func (d *decoder) stmts(v interface{}) []Stmt {
	list, ok := v.([]interface{})
	if !ok {
		d.errorf("statement list: got %s, want array", jsonKind(v))
	}
	stmts := make([]Stmt, 0, len(list))
	for _, elem := range list {
		stmts = append(stmts, d.stmt(elem))
	}
	return stmts
}

func (d *decoder) optStmt(o object, key string) Stmt {
	if v, ok := o[key]; ok && v != nil {
		return d.stmt(v)
	}
	return nil
}

func (d *decoder) stmt(v interface{}) Stmt {
	o := d.object(v, "statement")
	switch typ := d.typeOf(o); typ {
	case "Block":
		return &BlockStmt{Lbrace: d.at(o), Stmts: d.stmts(o["stmts"]), Rbrace: d.at(o)}

	case "Var":
		return &VarStmt{Var: d.at(o), Name: d.token(o, "name", ""), Init: d.optExpr(o, "init")}

	case "Function":
		return &FunctionStmt{Fun: d.at(o), Function: d.function(o)}

	case "Class":
		x := &ClassStmt{Class: d.at(o), Name: d.token(o, "name", ""), Rbrace: d.at(o)}
		if o["superclass"] != nil {
			x.Superclass = d.arena.Variable(d.token(o, "superclass", ""))
		}
		for _, m := range d.list(o, "methods") {
			mo := d.object(m, "method")
			if typ, ok := mo["type"]; ok && typ != "Function" {
				d.errorf("class %s: method of type %v", x.Name.Lexeme, typ)
			}
			x.Methods = append(x.Methods, &FunctionStmt{Fun: d.at(mo), Function: d.function(mo)})
		}
		return x

	case "Interface":
		x := &InterfaceStmt{Interface: d.at(o), Name: d.token(o, "name", ""), Rbrace: d.at(o)}
		for _, m := range d.list(o, "methods") {
			fn := d.function(d.object(m, "method"))
			if fn.Body != nil {
				d.errorf("interface %s: method %s has a body", x.Name.Lexeme, fn.Name.Lexeme)
			}
			x.Methods = append(x.Methods, &fn)
		}
		return x

	case "Enum":
		return &EnumStmt{Enum: d.at(o), Name: d.token(o, "name", ""), Members: d.tokens(o, "members"), Rbrace: d.at(o)}

	case "If":
		return &IfStmt{If: d.at(o), Cond: d.expr(o["cond"]), Then: d.stmt(o["then"]), Else: d.optStmt(o, "else")}

	case "While":
		return &WhileStmt{While: d.at(o), Cond: d.expr(o["cond"]), Body: d.stmt(o["body"])}

	case "Switch":
		x := &SwitchStmt{Switch: d.at(o), Value: d.expr(o["value"]), Rbrace: d.at(o)}
		for _, c := range d.list(o, "cases") {
			x.Cases = append(x.Cases, d.caseStmt(d.object(c, "case")))
		}
		return x

	case "Case":
		return d.caseStmt(o)

	case "When":
		return &WhenStmt{When: d.at(o), Cond: d.expr(o["cond"]), Then: d.stmt(o["then"]), Finally: d.optStmt(o, "finally")}

	case "Return":
		return &ReturnStmt{Return: d.token(o, "keyword", "return"), Result: d.optExpr(o, "value")}

	case "Break":
		return &BranchStmt{Token: d.token(o, "keyword", "break")}

	case "Continue":
		return &BranchStmt{Token: d.token(o, "keyword", "continue")}

	case "Expression":
		return &ExprStmt{X: d.expr(o["expr"])}

	case "Expect":
		return &ExpectStmt{Expect: d.at(o), X: d.optExpr(o, "value")}

	case "Test":
		return &TestStmt{Test: d.at(o), Name: d.expr(o["name"]), Body: d.stmts(o["body"]), Rbrace: d.at(o)}

	case "Module":
		return &ModuleStmt{Module: d.at(o), Name: d.token(o, "name", "")}

	case "Import":
		return &ImportStmt{Import: d.at(o), Path: d.token(o, "path", "")}
	}
	d.errorf("unknown statement type %q%s", o["type"], spell.Suggest(d.typeOf(o), stmtTypes))
	return nil
}

func (d *decoder) caseStmt(o object) *CaseStmt {
	if typ, ok := o["type"]; ok && typ != "Case" {
		d.errorf("switch arm of type %v", typ)
	}
	if o["body"] == nil {
		d.errorf("switch arm without \"body\"")
	}
	return &CaseStmt{Case: d.at(o), Value: d.optExpr(o, "value"), Body: d.stmt(o["body"])}
}

func (d *decoder) function(o object) Function {
	fn := Function{
		Name:     d.token(o, "name", ""),
		Params:   d.tokens(o, "params"),
		Static:   d.flag(o, "static"),
		Constant: d.flag(o, "const"),
	}
	// "body": [] declares an empty body; an absent or null body declares none.
	if v, ok := o["body"]; ok && v != nil {
		fn.Body = &Body{Lbrace: d.at(o), Stmts: d.stmts(v), Rbrace: d.at(o)}
	}
	return fn
}

func (d *decoder) optExpr(o object, key string) Expr {
	if v, ok := o[key]; ok && v != nil {
		return d.expr(v)
	}
	return nil
}

func (d *decoder) exprs(o object, key string) []Expr {
	var exprs []Expr
	for _, v := range d.list(o, key) {
		exprs = append(exprs, d.expr(v))
	}
	return exprs
}

func (d *decoder) expr(v interface{}) Expr {
	o := d.object(v, "expression")
	switch typ := d.typeOf(o); typ {
	case "Variable":
		return d.arena.Variable(d.token(o, "name", ""))

	case "Assign":
		name := d.token(o, "name", "")
		return d.arena.Assign(name, d.expr(o["value"]))

	case "Binary":
		return &BinaryExpr{X: d.expr(o["left"]), Op: d.token(o, "op", ""), Y: d.expr(o["right"])}

	case "Logical":
		return &LogicalExpr{X: d.expr(o["left"]), Op: d.token(o, "op", ""), Y: d.expr(o["right"])}

	case "Unary":
		return &UnaryExpr{Op: d.token(o, "op", ""), X: d.expr(o["right"])}

	case "Call":
		p := d.at(o)
		return &CallExpr{Fn: d.expr(o["callee"]), Lparen: p, Args: d.exprs(o, "args"), Rparen: p}

	case "Grouping":
		p := d.at(o)
		return &ParenExpr{Lparen: p, X: d.expr(o["expr"]), Rparen: p}

	case "Literal":
		value := o["value"]
		raw := "nil"
		if value != nil {
			b, _ := json.Marshal(value)
			raw = string(b)
		}
		return &Literal{ValuePos: d.at(o), Raw: raw, Value: value}

	case "Get", "GetStatic", "Coalesce":
		op := map[string]string{"Get": Dot, "GetStatic": Static, "Coalesce": Coalesce}[typ]
		return &DotExpr{X: d.expr(o["object"]), Op: Token{d.at(o), op}, Name: d.token(o, "name", "")}

	case "Set":
		return &SetExpr{X: d.expr(o["object"]), Name: d.token(o, "name", ""), Value: d.expr(o["value"])}

	case "This":
		return d.arena.This(d.token(o, "keyword", "this"))

	case "Super":
		return d.arena.Super(d.token(o, "keyword", "super"), d.token(o, "method", ""))

	case "New":
		p := d.at(o)
		class := d.token(o, "class", "")
		return d.arena.New(p, class, d.exprs(o, "args"), p)
	}
	d.errorf("unknown expression type %q%s", o["type"], spell.Suggest(d.typeOf(o), exprTypes))
	return nil
}

// token decodes the token o[key]. If the member is absent and keyword
// is non-empty, it returns the keyword positioned at node o.
func (d *decoder) token(o object, key, keyword string) Token {
	v, ok := o[key]
	if !ok || v == nil {
		if keyword != "" {
			return Token{d.at(o), keyword}
		}
		d.errorf("%s: missing %q", o["type"], key)
	}
	return d.tokenValue(v, key)
}

func (d *decoder) tokenValue(v interface{}, what string) Token {
	switch v := v.(type) {
	case string:
		return Token{d.pos(), v}
	case object:
		lexeme, ok := v["lexeme"].(string)
		if !ok {
			d.errorf("%s: token without \"lexeme\"", what)
		}
		return Token{d.at(v), lexeme}
	}
	d.errorf("%s: got %s, want token", what, jsonKind(v))
	return Token{}
}

func (d *decoder) tokens(o object, key string) []Token {
	var toks []Token
	for _, v := range d.list(o, key) {
		toks = append(toks, d.tokenValue(v, key))
	}
	return toks
}

// list returns the optional array o[key].
func (d *decoder) list(o object, key string) []interface{} {
	v, ok := o[key]
	if !ok || v == nil {
		return nil
	}
	list, ok := v.([]interface{})
	if !ok {
		d.errorf("%s.%s: got %s, want array", o["type"], key, jsonKind(v))
	}
	return list
}

func (d *decoder) flag(o object, key string) bool {
	v, ok := o[key]
	if !ok || v == nil {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		d.errorf("%s.%s: got %s, want boolean", o["type"], key, jsonKind(v))
	}
	return b
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []interface{}:
		return "array"
	case object:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
