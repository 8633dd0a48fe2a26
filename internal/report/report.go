// Package report summarizes the outcome of resolving one compilation
// unit: every reference with its binding depth, and every diagnostic.
//
// A Report renders as aligned text for people, or as a
// google.protobuf.Struct message in JSON, text or wire form for tools.
package report // import "github.com/nixlox/lox/internal/report"

import (
	"bytes"
	"fmt"
	"io"
	"text/tabwriter"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/nixlox/lox/resolve"
	"github.com/nixlox/lox/syntax"
)

// A Format names an output encoding of a Report.
type Format string

const (
	Text      Format = "text"      // aligned columns
	JSON      Format = "json"      // protojson encoding of Struct
	TextProto Format = "textproto" // prototext encoding of Struct
	Wire      Format = "wire"      // binary protobuf encoding of Struct
)

// Formats lists the names of all formats.
var Formats = []string{string(Text), string(JSON), string(TextProto), string(Wire)}

// ParseFormat returns the Format named s.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case Text, JSON, TextProto, Wire:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format %q (want text, json, textproto or wire)", s)
}

// A Reference is one reference node and its binding.
type Reference struct {
	ID     syntax.NodeID
	Kind   string // "variable", "assign", "this", "super" or "new"
	Name   string
	Pos    syntax.Position
	Depth  int
	Global bool // no depth recorded: looked up in the global environment
}

// A Diagnostic is one static error.
type Diagnostic struct {
	Pos  syntax.Position
	Kind resolve.ErrorKind
	Msg  string
}

// Code returns the stable code of the diagnostic's kind.
func (d Diagnostic) Code() string { return d.Kind.Code() }

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s %s", d.Pos, d.Code(), d.Msg)
}

// A Report describes the resolution of one compilation unit.
type Report struct {
	File        string
	References  []Reference // in tree order
	Diagnostics []Diagnostic
}

// Resolve resolves f and reports the outcome.
func Resolve(f *syntax.File, opts *resolve.Options) *Report {
	bindings, err := resolve.File(f, opts)
	var errs resolve.ErrorList
	if err != nil {
		errs = err.(resolve.ErrorList)
	}
	return Build(f, bindings, errs)
}

// Build assembles the report of a completed resolution of f.
func Build(f *syntax.File, bindings *resolve.Bindings, errs resolve.ErrorList) *Report {
	r := &Report{File: f.Path}
	syntax.Walk(f, func(n syntax.Node) bool {
		ref, ok := n.(syntax.Ref)
		if !ok {
			return true
		}
		tok := ref.RefToken()
		x := Reference{ID: ref.ID(), Kind: kindOf(ref), Name: tok.Lexeme, Pos: tok.Pos}
		x.Depth, ok = bindings.Depth(ref.ID())
		x.Global = !ok
		r.References = append(r.References, x)
		return true
	})
	for _, err := range errs {
		r.Diagnostics = append(r.Diagnostics, Diagnostic{err.Pos, err.Kind, err.Msg})
	}
	return r
}

func kindOf(ref syntax.Ref) string {
	switch ref.(type) {
	case *syntax.VariableExpr:
		return "variable"
	case *syntax.AssignExpr:
		return "assign"
	case *syntax.ThisExpr:
		return "this"
	case *syntax.SuperExpr:
		return "super"
	case *syntax.NewExpr:
		return "new"
	}
	panic(fmt.Sprintf("unexpected reference %T", ref))
}

// OK reports whether the unit resolved without static errors.
func (r *Report) OK() bool { return len(r.Diagnostics) == 0 }

const (
	ansiRed   = "\x1b[1;31m"
	ansiReset = "\x1b[0m"
)

// WriteDiagnostics writes one line per diagnostic to w.
// If color is set, codes are highlighted for a terminal.
func (r *Report) WriteDiagnostics(w io.Writer, color bool) error {
	for _, d := range r.Diagnostics {
		code := d.Code()
		if color {
			code = ansiRed + code + ansiReset
		}
		if _, err := fmt.Fprintf(w, "%s: %s %s\n", d.Pos, code, d.Msg); err != nil {
			return err
		}
	}
	return nil
}

// WriteText writes the reference table followed by the diagnostics.
func (r *Report) WriteText(w io.Writer, color bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, ref := range r.References {
		depth := "global"
		if !ref.Global {
			depth = fmt.Sprintf("depth %d", ref.Depth)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", ref.Pos, ref.ID, ref.Kind, ref.Name, depth)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return r.WriteDiagnostics(w, color)
}

// Struct returns the report as a google.protobuf.Struct.
func (r *Report) Struct() (*structpb.Struct, error) {
	refs := make([]interface{}, 0, len(r.References))
	for _, ref := range r.References {
		m := map[string]interface{}{
			"id":   int64(ref.ID),
			"kind": ref.Kind,
			"name": ref.Name,
			"line": int64(ref.Pos.Line),
			"col":  int64(ref.Pos.Col),
		}
		if ref.Global {
			m["global"] = true
		} else {
			m["depth"] = int64(ref.Depth)
		}
		refs = append(refs, m)
	}
	diags := make([]interface{}, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		diags = append(diags, map[string]interface{}{
			"code":    d.Code(),
			"kind":    d.Kind.String(),
			"line":    int64(d.Pos.Line),
			"col":     int64(d.Pos.Col),
			"message": d.Msg,
		})
	}
	return structpb.NewStruct(map[string]interface{}{
		"file":        r.File,
		"ok":          r.OK(),
		"references":  refs,
		"diagnostics": diags,
	})
}

// Marshal encodes the report in the given format.
func (r *Report) Marshal(format Format) ([]byte, error) {
	if format == Text {
		var buf bytes.Buffer
		if err := r.WriteText(&buf, false); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	var marshal func(protoreflect.ProtoMessage) ([]byte, error)
	switch format {
	case JSON:
		marshal = protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal
	case TextProto:
		marshal = prototext.MarshalOptions{Multiline: true, Indent: "  "}.Marshal
	case Wire:
		marshal = proto.MarshalOptions{Deterministic: true}.Marshal
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	s, err := r.Struct()
	if err != nil {
		return nil, err
	}
	return marshal(s)
}
