package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BradenEverson/chalk/lang"
	"github.com/BradenEverson/chalk/log"
)

// Parse prints the syntax tree of an expression without evaluating it.
type Parse struct {
	Expr   []string `arg:"" help:"Expression to parse; words are joined with spaces" name:"expr" passthrough:""`
	Output string   `       help:"Tree format (${enum})"                               short:"o" default:"tree" enum:"tree,json,yaml,native"`
	Indent int      `       help:"Indentation width for tree, json, and yaml output"   short:"i" default:"2"`
}

// Run executes the parse command.
func (p *Parse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	text := strings.TrimSpace(strings.Join(p.Expr, " "))
	if text == "" {
		return ErrNoInput
	}

	e, err := lang.ParseString(ctx, text, lang.WithLogger(log.Default()))
	if err != nil {
		return ErrParse.With(slog.String("expr", text)).Wrap(err)
	}

	w := stdout(ctx)

	switch p.Output {
	case "json":
		err = lang.FormatJSON(ctx, w, e, p.Indent)
	case "yaml":
		err = lang.FormatYAML(ctx, w, e, p.Indent)
	case "native":
		_, err = fmt.Fprintln(w, e)
	default:
		err = lang.FormatTree(ctx, w, e, p.Indent)
	}

	if err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
