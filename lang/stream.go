package lang

import (
	"bufio"
	"context"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/klauspost/readahead"
)

// maxLineBytes bounds the length of a single line read by [EvaluateStream].
const maxLineBytes = 1 << 20

// Result is the outcome of evaluating one line of a stream.
type Result struct {
	Err   error  // Lex, parse, or evaluation failure, if any
	Expr  Expr   // Parsed line; nil if it failed to lex or parse
	Text  string // Source line without its terminator
	Value Value
	Line  int // 1-based line number in the stream
}

// EvaluateStream evaluates each non-blank line read from r against env, in
// order, and yields one [Result] per line.
//
// A failed line does not stop the stream; later lines see the environment as
// the earlier successful lines left it. Input is read ahead asynchronously in
// large blocks, so it suits files and pipes rather than interactive use.
// Lines are parsed with [ParseString] and never enter the [ParseCached]
// cache. The sequence ends after yielding a read error or the cancellation
// cause of ctx.
func EvaluateStream(ctx context.Context, r io.Reader, env *Environment) iter.Seq[Result] {
	if env == nil {
		env = NewEnvironment()
	}

	return func(yield func(Result) bool) {
		ra := readahead.NewReader(r)
		defer ra.Close()

		sc := bufio.NewScanner(ra)
		sc.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineBytes)

		line := 0

		for sc.Scan() {
			line++

			if err := context.Cause(ctx); err != nil {
				yield(Result{Line: line, Err: err})

				return
			}

			text := strings.TrimRight(sc.Text(), "\r")
			if strings.TrimSpace(text) == "" {
				continue
			}

			e, v, err := evaluateWith(ctx, ParseString, text, env)
			if err != nil {
				env.logger.TraceContext(ctx, "line failed",
					slog.Int("line", line),
					slog.Any("error", err),
				)
			}

			if !yield(Result{Line: line, Expr: e, Text: text, Value: v, Err: err}) {
				return
			}
		}

		if err := sc.Err(); err != nil {
			yield(Result{
				Line: line + 1,
				Err:  WrapError(err).With(slog.String("source", "reader")),
			})
		}
	}
}
