package lang

import (
	"iter"
	"maps"
	"slices"

	"github.com/BradenEverson/chalk/log"
)

type binding struct {
	expr Expr
	last Value
	seen bool // last holds a value
}

// Environment maps variable names to unevaluated expressions.
//
// Every reference to a variable re-evaluates its stored expression against
// the current environment, so redefining a variable changes the value of
// every variable defined in terms of it.
//
// An Environment belongs to a single session and is not safe for concurrent
// use.
type Environment struct {
	vars   map[string]*binding
	logger log.Logger
}

// NewEnvironment returns an empty environment.
func NewEnvironment(opts ...Option) *Environment {
	o := makeOptions(opts...)

	return &Environment{
		vars:   make(map[string]*binding),
		logger: o.logger,
	}
}

// Lookup returns the expression bound to name.
// The returned tree must not be modified.
func (env *Environment) Lookup(name string) (Expr, bool) {
	b, ok := env.vars[name]
	if !ok {
		return nil, false
	}

	return b.expr, true
}

// Last returns the value name produced the last time it was evaluated.
func (env *Environment) Last(name string) (Value, bool) {
	b, ok := env.vars[name]
	if !ok || !b.seen {
		return Value{}, false
	}

	return b.last, true
}

// Names returns an iterator over the defined variable names in sorted order.
func (env *Environment) Names() iter.Seq[string] {
	return slices.Values(slices.Sorted(maps.Keys(env.vars)))
}

// Len returns the number of defined variables.
func (env *Environment) Len() int { return len(env.vars) }

// Reset removes every variable.
func (env *Environment) Reset() { clear(env.vars) }

// Dependencies returns the sorted names that the expression bound to name
// refers to directly.
func (env *Environment) Dependencies(name string) []string {
	b, ok := env.vars[name]
	if !ok {
		return nil
	}

	return Variables(b.expr)
}

// DependsOn reports whether the variable name refers to dep, directly or
// through the expressions of other variables.
func (env *Environment) DependsOn(name, dep string) bool {
	b, ok := env.vars[name]
	if !ok {
		return false
	}

	return env.reaches(b.expr, dep, map[string]bool{name: true})
}

// reaches reports whether e refers to name, following stored expressions of
// the variables it references. Names in visited are not expanded again.
func (env *Environment) reaches(e Expr, name string, visited map[string]bool) bool {
	for _, ref := range Variables(e) {
		if ref == name {
			return true
		}

		if visited[ref] {
			continue
		}

		visited[ref] = true

		if b, ok := env.vars[ref]; ok && env.reaches(b.expr, name, visited) {
			return true
		}
	}

	return false
}

func (env *Environment) define(name string, e Expr, v Value) {
	env.vars[name] = &binding{expr: e, last: v, seen: true}
}

func (env *Environment) remember(name string, v Value) {
	if b, ok := env.vars[name]; ok {
		b.last, b.seen = v, true
	}
}
