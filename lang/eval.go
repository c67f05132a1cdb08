package lang

import (
	"context"
	"log/slog"
	"slices"
	"strings"
)

// Evaluate computes the value of e against env.
//
// Variables are resolved by re-evaluating their stored expressions.
// An assignment stores its unevaluated right-hand side only after that side
// evaluates successfully; a failed line leaves env unchanged.
func Evaluate(ctx context.Context, e Expr, env *Environment) (Value, error) {
	if env == nil {
		env = NewEnvironment()
	}

	ev := evaluator{env: env}

	v, err := ev.eval(ctx, e)
	if err != nil {
		env.logger.TraceContext(ctx, "evaluate failed", slog.Any("error", err))

		return Value{}, err
	}

	env.logger.TraceContext(ctx, "evaluate complete",
		slog.String("type", v.Type().String()),
		slog.String("value", v.String()),
	)

	return v, nil
}

type evaluator struct {
	env       *Environment
	resolving []string // variables under evaluation, outermost first
}

func (ev *evaluator) eval(ctx context.Context, e Expr) (Value, error) {
	switch n := e.(type) {
	case *Literal:
		return n.Value, nil

	case *Variable:
		return ev.variable(ctx, n.Name)

	case *Unary:
		v, err := ev.eval(ctx, n.Operand)
		if err != nil {
			return Value{}, err
		}

		if n.Op == OpAbs {
			return Abs(v)
		}

		return Negate(v)

	case *Postfix:
		v, err := ev.eval(ctx, n.Operand)
		if err != nil {
			return Value{}, err
		}

		return Factorial(v)

	case *Binary:
		return ev.binary(ctx, n)

	case *Call:
		return ev.call(ctx, n)

	case *Assignment:
		return ev.assign(ctx, n)
	}

	return Value{}, ErrUnexpectedToken.Describe("unknown node %T", e)
}

func (ev *evaluator) variable(ctx context.Context, name string) (Value, error) {
	if slices.Contains(ev.resolving, name) {
		return Value{}, ErrCyclicDefinition.
			Describe("%s", strings.Join(append(slices.Clone(ev.resolving), name), " -> ")).
			With(slog.String("name", name))
	}

	e, ok := ev.env.Lookup(name)
	if !ok {
		return Value{}, ErrUndefinedVariable.
			Describe("%s", name).
			With(slog.String("name", name))
	}

	ev.env.logger.TraceContext(ctx, "lookup",
		slog.String("name", name),
		slog.String("expr", e.String()),
	)

	ev.resolving = append(ev.resolving, name)
	v, err := ev.eval(ctx, e)
	ev.resolving = ev.resolving[:len(ev.resolving)-1]

	if err != nil {
		return Value{}, err
	}

	ev.env.remember(name, v)

	return v, nil
}

func (ev *evaluator) binary(ctx context.Context, n *Binary) (Value, error) {
	left, err := ev.eval(ctx, n.Left)
	if err != nil {
		return Value{}, err
	}

	if n.Op.IsLogical() {
		l, err := requireBool(n.Op, left)
		if err != nil {
			return Value{}, err
		}

		// Short-circuit: the right side is skipped once the result is known.
		if l == (n.Op == OpOr) {
			return BoolValue(l), nil
		}

		right, err := ev.eval(ctx, n.Right)
		if err != nil {
			return Value{}, err
		}

		r, err := requireBool(n.Op, right)
		if err != nil {
			return Value{}, err
		}

		return BoolValue(r), nil
	}

	right, err := ev.eval(ctx, n.Right)
	if err != nil {
		return Value{}, err
	}

	if n.Op.IsComparison() {
		return Compare(n.Op, left, right)
	}

	return Arithmetic(n.Op, left, right)
}

func (ev *evaluator) call(ctx context.Context, n *Call) (Value, error) {
	fn, ok := LookupBuiltin(n.Func)
	if !ok {
		return Value{}, ErrUndefinedVariable.
			Describe("no function named %s", n.Func).
			With(slog.String("function", n.Func))
	}

	if len(n.Args) != fn.Arity() {
		return Value{}, arityMismatch(fn, len(n.Args))
	}

	args := make([]Value, len(n.Args))

	for i, a := range n.Args {
		v, err := ev.eval(ctx, a)
		if err != nil {
			return Value{}, err
		}

		args[i] = v
	}

	return fn.Call(args...)
}

// assign binds every name of a chain such as "x = y = e" to e.
func (ev *evaluator) assign(ctx context.Context, n *Assignment) (Value, error) {
	names := []string{n.Name}
	rhs := n.Value

	for {
		next, ok := rhs.(*Assignment)
		if !ok {
			break
		}

		names = append(names, next.Name)
		rhs = next.Value
	}

	for _, name := range names {
		if ev.env.reaches(rhs, name, map[string]bool{}) {
			return Value{}, ErrCyclicDefinition.
				Describe("%s = %s refers to %s", name, rhs, name).
				With(slog.String("name", name))
		}
	}

	v, err := ev.eval(ctx, rhs)
	if err != nil {
		return Value{}, err
	}

	for _, name := range names {
		ev.env.define(name, Clone(rhs), v)

		ev.env.logger.TraceContext(ctx, "assign",
			slog.String("name", name),
			slog.String("expr", rhs.String()),
			slog.String("value", v.String()),
		)
	}

	return v, nil
}
