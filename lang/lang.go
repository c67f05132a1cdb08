package lang

import (
	"context"
	"log/slog"

	"github.com/BradenEverson/chalk/log"
)

type options struct {
	logger log.Logger
}

// Option configures parsing and environments.
type Option func(*options)

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func makeOptions(opts ...Option) options {
	var o options

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// ParseString lexes and parses a single line of input.
func ParseString(ctx context.Context, text string, opts ...Option) (Expr, error) {
	o := makeOptions(opts...)

	toks, err := Tokenize(text)
	if err != nil {
		o.logger.TraceContext(ctx, "lex failed", slog.Any("error", err))

		return nil, err
	}

	o.logger.TraceContext(ctx, "lex complete", slog.Int("tokens", len(toks)))

	e, err := Parse(toks)
	if err != nil {
		o.logger.TraceContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	o.logger.TraceContext(ctx, "parse complete", slog.String("expr", e.String()))

	return e, nil
}

// EvaluateLine parses text and evaluates it against env. Parse results are
// shared through [ParseCached].
//
// Assignments update env only when the whole line succeeds.
func EvaluateLine(ctx context.Context, text string, env *Environment) (Value, error) {
	if env == nil {
		env = NewEnvironment()
	}

	_, v, err := evaluateWith(ctx, ParseCached, text, env)

	return v, err
}

// parseFunc is the signature shared by [ParseString] and [ParseCached].
type parseFunc func(context.Context, string, ...Option) (Expr, error)

// evaluateWith returns the parsed tree alongside its value. The tree is nil
// when text does not parse.
func evaluateWith(ctx context.Context, parse parseFunc, text string, env *Environment) (Expr, Value, error) {
	e, err := parse(ctx, text, WithLogger(env.logger))
	if err != nil {
		return nil, Value{}, err
	}

	v, err := Evaluate(ctx, e, env)

	return e, v, err
}
