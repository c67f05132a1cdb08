package lang

import (
	"slices"
	"strings"
)

// Expr is a node of an expression tree.
//
// Trees are immutable once built and every node exclusively owns its
// children. String renders a node back to source text that parses to an
// equal tree.
type Expr interface {
	String() string

	expr()
}

// Literal is a constant value.
type Literal struct {
	Value Value
}

// Variable is a reference to a named entry of the [Environment].
type Variable struct {
	Name string
}

// Unary applies a prefix operator: [OpNeg] or [OpAbs].
type Unary struct {
	Operand Expr
	Op      Op
}

// Binary applies an arithmetic, comparison, or logical operator.
type Binary struct {
	Left  Expr
	Right Expr
	Op    Op
}

// Postfix applies a postfix operator: [OpFact].
type Postfix struct {
	Operand Expr
	Op      Op
}

// Call invokes a reserved function.
type Call struct {
	Func string
	Args []Expr
}

// Assignment binds Name to the unevaluated expression Value.
type Assignment struct {
	Value Expr
	Name  string
}

func (*Literal) expr()    {}
func (*Variable) expr()   {}
func (*Unary) expr()      {}
func (*Binary) expr()     {}
func (*Postfix) expr()    {}
func (*Call) expr()       {}
func (*Assignment) expr() {}

// Binding strength of each grammar level, loosest first.
const (
	precAssign = iota + 1
	precOr
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precPower
	precUnary
	precPostfix
	precPrimary
)

func (op Op) precedence() int {
	switch op {
	case OpOr:
		return precOr
	case OpAnd:
		return precAnd
	case OpEq, OpNeq:
		return precEquality
	case OpLt, OpGt, OpLte, OpGte:
		return precRelational
	case OpAdd, OpSub:
		return precAdditive
	case OpMul, OpDiv:
		return precMultiplicative
	case OpPow:
		return precPower
	case OpNeg:
		return precUnary
	case OpFact:
		return precPostfix
	default:
		return precPrimary
	}
}

func precedence(e Expr) int {
	switch n := e.(type) {
	case *Assignment:
		return precAssign
	case *Binary:
		return n.Op.precedence()
	case *Unary:
		return n.Op.precedence()
	case *Postfix:
		return n.Op.precedence()
	default:
		return precPrimary
	}
}

// group renders e, parenthesized when it binds looser than min.
func group(e Expr, min int) string {
	if precedence(e) < min {
		return "(" + e.String() + ")"
	}

	return e.String()
}

func (n *Literal) String() string { return n.Value.literal() }

func (n *Variable) String() string { return n.Name }

func (n *Unary) String() string {
	if n.Op == OpAbs {
		inner := n.Operand.String()
		// Adjacent bars would lex as the logical-or operator.
		if strings.HasPrefix(inner, "|") || strings.HasSuffix(inner, "|") {
			inner = " " + inner + " "
		}

		return "|" + inner + "|"
	}

	return n.Op.String() + group(n.Operand, precUnary)
}

func (n *Binary) String() string {
	p := n.Op.precedence()
	left, right := p, p+1

	if n.Op == OpPow {
		// Right-associative; the base must be a unary expression.
		left, right = precUnary, precPower
	}

	return group(n.Left, left) + " " + n.Op.String() + " " + group(n.Right, right)
}

func (n *Postfix) String() string {
	return group(n.Operand, precPostfix) + n.Op.String()
}

func (n *Call) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}

	return n.Func + "(" + strings.Join(args, ", ") + ")"
}

func (n *Assignment) String() string {
	return n.Name + " = " + group(n.Value, precAssign)
}

// Clone returns a deep copy of e.
func Clone(e Expr) Expr {
	switch n := e.(type) {
	case *Literal:
		c := *n

		return &c
	case *Variable:
		c := *n

		return &c
	case *Unary:
		return &Unary{Op: n.Op, Operand: Clone(n.Operand)}
	case *Binary:
		return &Binary{Op: n.Op, Left: Clone(n.Left), Right: Clone(n.Right)}
	case *Postfix:
		return &Postfix{Op: n.Op, Operand: Clone(n.Operand)}
	case *Call:
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = Clone(a)
		}

		return &Call{Func: n.Func, Args: args}
	case *Assignment:
		return &Assignment{Name: n.Name, Value: Clone(n.Value)}
	default:
		return e
	}
}

// Equal reports whether a and b are structurally identical trees.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case *Literal:
		y, ok := b.(*Literal)

		return ok && x.Value.Equal(y.Value)
	case *Variable:
		y, ok := b.(*Variable)

		return ok && x.Name == y.Name
	case *Unary:
		y, ok := b.(*Unary)

		return ok && x.Op == y.Op && Equal(x.Operand, y.Operand)
	case *Binary:
		y, ok := b.(*Binary)

		return ok && x.Op == y.Op &&
			Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Postfix:
		y, ok := b.(*Postfix)

		return ok && x.Op == y.Op && Equal(x.Operand, y.Operand)
	case *Call:
		y, ok := b.(*Call)

		return ok && x.Func == y.Func &&
			slices.EqualFunc(x.Args, y.Args, Equal)
	case *Assignment:
		y, ok := b.(*Assignment)

		return ok && x.Name == y.Name && Equal(x.Value, y.Value)
	default:
		return a == b
	}
}

// Walk traverses e in depth-first order, calling fn for each node.
// Children of a node are skipped when fn returns false for it.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}

	switch n := e.(type) {
	case *Unary:
		Walk(n.Operand, fn)
	case *Binary:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Postfix:
		Walk(n.Operand, fn)
	case *Call:
		for _, a := range n.Args {
			Walk(a, fn)
		}
	case *Assignment:
		Walk(n.Value, fn)
	}
}

// DependsOn reports whether e refers to the variable name.
func DependsOn(e Expr, name string) bool {
	found := false

	Walk(e, func(n Expr) bool {
		if v, ok := n.(*Variable); ok && v.Name == name {
			found = true
		}

		return !found
	})

	return found
}

// Variables returns the sorted, distinct names of variables referenced by e.
func Variables(e Expr) []string {
	var names []string

	Walk(e, func(n Expr) bool {
		if v, ok := n.(*Variable); ok {
			names = append(names, v.Name)
		}

		return true
	})

	slices.Sort(names)

	return slices.Compact(names)
}
