package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// ToMap converts e into nested ordered maps suitable for structured encoders.
func ToMap(e Expr) yaml.MapSlice {
	node := func(typ string, items ...yaml.MapItem) yaml.MapSlice {
		return append(yaml.MapSlice{{Key: "node", Value: typ}}, items...)
	}

	switch n := e.(type) {
	case *Literal:
		return node("literal",
			yaml.MapItem{Key: "type", Value: n.Value.Type().String()},
			yaml.MapItem{Key: "value", Value: n.Value.encoded().Value},
		)

	case *Variable:
		return node("variable", yaml.MapItem{Key: "name", Value: n.Name})

	case *Unary:
		name := "negate"
		if n.Op == OpAbs {
			name = "abs"
		}

		return node(name, yaml.MapItem{Key: "operand", Value: ToMap(n.Operand)})

	case *Binary:
		return node("binary",
			yaml.MapItem{Key: "op", Value: n.Op.String()},
			yaml.MapItem{Key: "left", Value: ToMap(n.Left)},
			yaml.MapItem{Key: "right", Value: ToMap(n.Right)},
		)

	case *Postfix:
		return node("factorial", yaml.MapItem{Key: "operand", Value: ToMap(n.Operand)})

	case *Call:
		args := make([]yaml.MapSlice, len(n.Args))
		for i, a := range n.Args {
			args[i] = ToMap(a)
		}

		return node("call",
			yaml.MapItem{Key: "func", Value: n.Func},
			yaml.MapItem{Key: "args", Value: args},
		)

	case *Assignment:
		return node("assign",
			yaml.MapItem{Key: "name", Value: n.Name},
			yaml.MapItem{Key: "value", Value: ToMap(n.Value)},
		)

	default:
		return node(fmt.Sprintf("%T", e))
	}
}

// mapJSON adapts an ordered map to encoding/json, keeping key order.
type mapJSON yaml.MapSlice

func (m mapJSON) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer

	b.WriteByte('{')

	for i, item := range m {
		if i > 0 {
			b.WriteByte(',')
		}

		if err := encodeJSON(&b, fmt.Sprint(item.Key)); err != nil {
			return nil, err
		}

		b.WriteByte(':')

		if err := encodeJSON(&b, jsonValue(item.Value)); err != nil {
			return nil, err
		}
	}

	b.WriteByte('}')

	return b.Bytes(), nil
}

// encodeJSON writes v to b without escaping HTML characters such as '&'.
func encodeJSON(b *bytes.Buffer, v any) error {
	enc := json.NewEncoder(b)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return err
	}

	// Drop the newline Encode appends.
	b.Truncate(b.Len() - 1)

	return nil
}

func jsonValue(v any) any {
	switch x := v.(type) {
	case yaml.MapSlice:
		return mapJSON(x)
	case []yaml.MapSlice:
		out := make([]mapJSON, len(x))
		for i, m := range x {
			out[i] = mapJSON(m)
		}

		return out
	default:
		return v
	}
}

// FormatJSON writes the tree of e as JSON followed by a newline. A positive
// indent enables multi-line output.
func FormatJSON(_ context.Context, w io.Writer, e Expr, indent int) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}

	return enc.Encode(mapJSON(ToMap(e)))
}

// FormatYAML writes the tree of e as YAML. A non-positive indent selects flow
// style.
func FormatYAML(ctx context.Context, w io.Writer, e Expr, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, ToMap(e), opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

// FormatTree writes an indented outline of e, one node per line.
func FormatTree(_ context.Context, w io.Writer, e Expr, indent int) error {
	var b strings.Builder

	writeTree(&b, e, strings.Repeat(" ", max(indent, 1)), 0)

	_, err := io.WriteString(w, b.String())

	return err
}

func writeTree(b *strings.Builder, e Expr, pad string, depth int) {
	b.WriteString(strings.Repeat(pad, depth))

	switch n := e.(type) {
	case *Literal:
		fmt.Fprintf(b, "%s %s\n", n.Value.Type(), n.Value)
	case *Variable:
		fmt.Fprintf(b, "var %s\n", n.Name)
	case *Unary:
		if n.Op == OpAbs {
			b.WriteString("abs\n")
		} else {
			b.WriteString("neg\n")
		}

		writeTree(b, n.Operand, pad, depth+1)
	case *Binary:
		fmt.Fprintf(b, "%s\n", n.Op)
		writeTree(b, n.Left, pad, depth+1)
		writeTree(b, n.Right, pad, depth+1)
	case *Postfix:
		b.WriteString("fact\n")
		writeTree(b, n.Operand, pad, depth+1)
	case *Call:
		fmt.Fprintf(b, "%s()\n", n.Func)

		for _, a := range n.Args {
			writeTree(b, a, pad, depth+1)
		}
	case *Assignment:
		fmt.Fprintf(b, "%s =\n", n.Name)
		writeTree(b, n.Value, pad, depth+1)
	default:
		fmt.Fprintf(b, "%T\n", e)
	}
}
