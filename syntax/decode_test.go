// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nixlox/lox/syntax"
)

func TestReadFileNDJSON(t *testing.T) {
	const src = "\ufeff# a comment\n" +
		"\n" +
		`{"type":"Var","name":"x","init":{"type":"Literal","value":1.5}} # trailing` + "\n" +
		`{"type":"Expression","expr":{"type":"Variable","name":{"lexeme":"x","line":9,"col":4}}}` + "\n"
	f, err := syntax.ReadFile("a.ndjson", src)
	require.NoError(t, err)
	require.Equal(t, "a.ndjson", f.Path)
	require.Len(t, f.Stmts, 2)

	v := f.Stmts[0].(*syntax.VarStmt)
	require.Equal(t, "x", v.Name.Lexeme)
	require.Equal(t, "a.ndjson:3", v.Name.Pos.String())
	lit := v.Init.(*syntax.Literal)
	require.Equal(t, 1.5, lit.Value)
	require.Equal(t, "1.5", lit.Raw)

	ref := f.Stmts[1].(*syntax.ExprStmt).X.(*syntax.VariableExpr)
	require.Equal(t, "a.ndjson:9:4", ref.Name.Pos.String())
	require.Equal(t, syntax.NodeID(1), ref.ID())
	require.Equal(t, 1, f.Arena.Len())
	require.Same(t, ref, f.Arena.Ref(ref.ID()))
	require.Nil(t, f.Arena.Ref(syntax.NoNode))
	require.Nil(t, f.Arena.Ref(2))
}

func TestReadFileArray(t *testing.T) {
	const src = `
[
  {"type":"Function","name":"f","params":["a","b"],"static":true,"body":[]},
  {"type":"Function","name":"g","params":[]},
  {"type":"Return","line":3,"col":2}
]`
	f, err := syntax.ReadFile("a.json", strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, f.Stmts, 3)

	fn := f.Stmts[0].(*syntax.FunctionStmt)
	require.True(t, fn.HasBody())
	require.Empty(t, fn.Body.Stmts)
	require.True(t, fn.Static)
	require.False(t, fn.Constant)
	require.Equal(t, []string{"a", "b"}, lexemes(fn.Params))

	require.False(t, f.Stmts[1].(*syntax.FunctionStmt).HasBody())

	ret := f.Stmts[2].(*syntax.ReturnStmt)
	require.Equal(t, "return", ret.Return.Lexeme)
	require.Equal(t, "a.json:3:2", ret.Return.Pos.String())
	require.Nil(t, ret.Result)
}

func TestReadFileExprs(t *testing.T) {
	const src = `{"type":"Expression","expr":{"type":"Call","callee":{"type":"Get","object":{"type":"GetStatic","object":{"type":"Coalesce","object":{"type":"New","class":"A","args":[]},"name":"a"},"name":"b"},"name":"c"},"args":[{"type":"Literal","value":null},{"type":"Literal","value":"s"}]}}`
	f, err := syntax.ReadFile("e.ndjson", src)
	require.NoError(t, err)

	call := f.Stmts[0].(*syntax.ExprStmt).X.(*syntax.CallExpr)
	get := call.Fn.(*syntax.DotExpr)
	static := get.X.(*syntax.DotExpr)
	coalesce := static.X.(*syntax.DotExpr)
	require.Equal(t, syntax.Dot, get.Op.Lexeme)
	require.Equal(t, syntax.Static, static.Op.Lexeme)
	require.Equal(t, syntax.Coalesce, coalesce.Op.Lexeme)
	require.Equal(t, "A", coalesce.X.(*syntax.NewExpr).Class.Lexeme)

	require.Len(t, call.Args, 2)
	require.Equal(t, "nil", call.Args[0].(*syntax.Literal).Raw)
	require.Nil(t, call.Args[0].(*syntax.Literal).Value)
	require.Equal(t, `"s"`, call.Args[1].(*syntax.Literal).Raw)
}

func TestReadFileErrors(t *testing.T) {
	for _, test := range []struct {
		src, want string
	}{
		{"{}\n", `bad.ndjson:1: node without "type"`},
		{"\n{\"type\":\"Var\"", `bad.ndjson:2: invalid JSON`},
		{`{"type":"Loop"}`, `bad.ndjson:1: unknown statement type "Loop"`},
		{`{"type":"Expression","expr":{"type":"Lambda"}}`, `unknown expression type "Lambda"`},
		{`{"type":"Fucntion","name":"f"}`, `unknown statement type "Fucntion" (did you mean Function?)`},
		{`{"type":"Expression","expr":{"type":"Varaible","name":"x"}}`, `(did you mean Variable?)`},
		{`{"type":"Var","name":"x"} garbage`, `unexpected text after statement`},
		{`{"type":"Var"}`, `Var: missing "name"`},
		{`{"type":"Var","name":3}`, `name: got number, want token`},
		{`{"type":"Var","name":{"line":1}}`, `name: token without "lexeme"`},
		{`{"type":"Block","stmts":{}}`, `statement list: got object, want array`},
		{`{"type":"Function","name":"f","params":"x"}`, `Function.params: got string, want array`},
		{`{"type":"Function","name":"f","static":"yes"}`, `Function.static: got string, want boolean`},
		{`[1]`, `bad.ndjson: statement: got number, want object`},
		{`{"type":"Interface","name":"I","methods":[{"name":"m","body":[]}]}`, `interface I: method m has a body`},
		{`{"type":"Class","name":"C","methods":[{"type":"Var","name":"m"}]}`, `class C: method of type Var`},
		{`{"type":"Switch","value":{"type":"Literal","value":1},"cases":[{"type":"Block","stmts":[]}]}`, `switch arm of type Block`},
		{`{"type":"Switch","value":{"type":"Literal","value":1},"cases":[{"value":{"type":"Literal","value":1}}]}`, `switch arm without "body"`},
	} {
		f, err := syntax.ReadFile("bad.ndjson", test.src)
		if err == nil {
			t.Errorf("%s: got no error, want %q", test.src, test.want)
			continue
		}
		require.Nil(t, f)
		if !strings.Contains(err.Error(), test.want) {
			t.Errorf("%s: got error %q, want %q", test.src, err, test.want)
		}
		if _, ok := err.(syntax.Error); !ok {
			t.Errorf("%s: got %T, want syntax.Error", test.src, err)
		}
	}
}

func TestReadFileSource(t *testing.T) {
	_, err := syntax.ReadFile("x", 42)
	require.EqualError(t, err, "invalid source: int")

	_, err = syntax.ReadFile(filepath.Join(t.TempDir(), "missing.ndjson"), nil)
	require.Error(t, err)

	f, err := syntax.ReadFile("empty", []byte("  \n# nothing\n"))
	require.NoError(t, err)
	require.Empty(t, f.Stmts)
}

func TestDecodeStmt(t *testing.T) {
	var a syntax.Arena
	a.Variable(syntax.Token{Lexeme: "earlier"})

	stmt, err := syntax.DecodeStmt(&a, "<stdin>", 7, []byte(`{"type":"Class","name":"B","superclass":"A","methods":[{"name":"m","params":[],"body":[{"type":"Return","value":{"type":"Super","method":"m"}}]}]}`))
	require.NoError(t, err)
	class := stmt.(*syntax.ClassStmt)
	require.Equal(t, "<stdin>:7", class.Name.Pos.String())
	require.Equal(t, syntax.NodeID(2), class.Superclass.ID())
	super := class.Methods[0].Body.Stmts[0].(*syntax.ReturnStmt).Result.(*syntax.SuperExpr)
	require.Equal(t, syntax.NodeID(3), super.ID())
	require.Equal(t, "m", super.Method.Lexeme)
	require.Equal(t, 3, a.Len())

	_, err = syntax.DecodeStmt(&a, "<stdin>", 8, []byte(`{"type":`))
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), "<stdin>:8: invalid JSON"), err.Error())
}

func lexemes(toks []syntax.Token) []string {
	var s []string
	for _, tok := range toks {
		s = append(s, tok.Lexeme)
	}
	return s
}
