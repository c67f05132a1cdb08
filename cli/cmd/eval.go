package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"

	"github.com/BradenEverson/chalk/cli/cmd/repl"
	"github.com/BradenEverson/chalk/lang"
	"github.com/BradenEverson/chalk/log"
)

// Eval evaluates an expression given as arguments, or each line of its
// input when there are none.
type Eval struct {
	Expr   []string `arg:"" help:"Expression to evaluate; words are joined with spaces" name:"expr" optional:"" passthrough:""`
	Files  []string `       help:"Evaluate each line of script file(s), or '-' for stdin"  name:"file" short:"f" type:"existingfile"`
	Echo   bool     `       help:"Print each expression alongside its value"                            short:"e"`
	Output string   `       help:"Result format (${enum})"                                              short:"o" default:"text" enum:"text,json,yaml"`

	stdin io.Reader `kong:"-"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default()
	env := lang.NewEnvironment(lang.WithLogger(logger))

	if len(e.Expr) > 0 {
		text := strings.Join(e.Expr, " ")

		expr, err := lang.ParseCached(ctx, text, lang.WithLogger(logger))
		if err != nil {
			return ErrEvaluate.With(slog.String("expr", text)).Wrap(err)
		}

		v, err := lang.Evaluate(ctx, expr, env)
		if err != nil {
			return ErrEvaluate.With(slog.String("expr", text)).Wrap(err)
		}

		return e.print(stdout(ctx), expr, v)
	}

	stdin := e.stdin
	if stdin == nil {
		stdin = os.Stdin
	}

	files := e.Files
	if len(files) == 0 {
		if f, ok := stdin.(*os.File); ok && isTerminal(f) {
			return repl.Run(ctx, env, cacheDir(ctx), logger)
		}

		files = []string{stdinSource}
	}

	src, err := openSources(files, stdin)
	if err != nil {
		return err
	}
	defer src.Close()

	return e.stream(ctx, src, env)
}

// stream evaluates every line of r in one session. Failed lines are reported
// on stderr without stopping the session.
func (e *Eval) stream(ctx context.Context, r io.Reader, env *lang.Environment) error {
	out, diag := stdout(ctx), stderr(ctx)
	failed := 0

	for res := range lang.EvaluateStream(ctx, r, env) {
		if res.Err != nil {
			failed++

			fmt.Fprintf(diag, "line %d: %v\n", res.Line, res.Err)
			log.DebugContext(ctx, "line failed",
				slog.Int("line", res.Line),
				slog.Any("error", res.Err),
			)

			continue
		}

		if err := e.print(out, res.Expr, res.Value); err != nil {
			return err
		}
	}

	if failed > 0 {
		return ErrLinesFailed.With(slog.Int("failed", failed))
	}

	return nil
}

// print writes one result in the selected output format. With echo enabled,
// the expression is written in its canonical form.
func (e *Eval) print(w io.Writer, expr lang.Expr, v lang.Value) error {
	var (
		text string
		err  error
	)

	if e.Echo {
		text = expr.String()
	}

	switch e.Output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)

		if e.Echo {
			err = enc.Encode(struct {
				Expr  string     `json:"expr"`
				Value lang.Value `json:"result"`
			}{text, v})
		} else {
			err = enc.Encode(v)
		}

	case "yaml":
		var doc any = v
		if e.Echo {
			doc = yaml.MapSlice{
				{Key: "expr", Value: text},
				{Key: "result", Value: v},
			}
		}

		var b []byte

		b, err = yaml.Marshal(doc)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = fmt.Fprintf(w, "---\n%s", b)

	default:
		if e.Echo {
			_, err = fmt.Fprintf(w, "%s = %s\n", text, v)
		} else {
			_, err = fmt.Fprintln(w, v)
		}
	}

	if err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// cacheDir returns the cache directory published through the kong variables,
// or "" when there is none.
func cacheDir(ctx context.Context) string {
	ktx := kongContextFrom(ctx)
	if ktx == nil || ktx.Model == nil {
		return ""
	}

	return ktx.Model.Vars()[CacheIdentifier]
}
