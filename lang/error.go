package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Kind identifies the specific failure carried by an [Error].
type Kind int

const (
	KindUnknown Kind = iota

	// Lexical.
	KindUnrecognizedCharacter
	KindMalformedNumber

	// Syntactic.
	KindUnexpectedToken
	KindArityMismatch
	KindUnbalancedDelimiter
	KindNestingTooDeep

	// Type.
	KindIncompatibleOperands
	KindRequiresInteger
	KindRequiresNonNegative
	KindRequiresBoolean
	KindDivisionByZero

	// Evaluation.
	KindUndefinedVariable
	KindOverflow
	KindCyclicDefinition
)

var kindName = [...]string{
	KindUnknown:               "unknown",
	KindUnrecognizedCharacter: "unrecognized character",
	KindMalformedNumber:       "malformed number",
	KindUnexpectedToken:       "unexpected token",
	KindArityMismatch:         "arity mismatch",
	KindUnbalancedDelimiter:   "unbalanced delimiter",
	KindNestingTooDeep:        "expression nested too deeply",
	KindIncompatibleOperands:  "incompatible operands",
	KindRequiresInteger:       "integer required",
	KindRequiresNonNegative:   "non-negative value required",
	KindRequiresBoolean:       "boolean required",
	KindDivisionByZero:        "division by zero",
	KindUndefinedVariable:     "undefined variable",
	KindOverflow:              "overflow",
	KindCyclicDefinition:      "cyclic definition",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindName) {
		return kindName[KindUnknown]
	}

	return kindName[k]
}

// Category groups error kinds by the stage that reports them.
type Category int

const (
	CategoryNone Category = iota
	CategoryLex
	CategoryParse
	CategoryType
	CategoryEval
)

func (c Category) String() string {
	switch c {
	case CategoryLex:
		return "lex error"
	case CategoryParse:
		return "parse error"
	case CategoryType:
		return "type error"
	case CategoryEval:
		return "eval error"
	default:
		return "error"
	}
}

// Category returns the stage that reports errors of kind k.
func (k Kind) Category() Category {
	switch {
	case k >= KindUnrecognizedCharacter && k <= KindMalformedNumber:
		return CategoryLex
	case k >= KindUnexpectedToken && k <= KindNestingTooDeep:
		return CategoryParse
	case k >= KindIncompatibleOperands && k <= KindDivisionByZero:
		return CategoryType
	case k >= KindUndefinedVariable && k <= KindCyclicDefinition:
		return CategoryEval
	default:
		return CategoryNone
	}
}

// in reports whether kind k belongs to category c.
// Type errors surface during evaluation, so they also belong to CategoryEval.
func (k Kind) in(c Category) bool {
	got := k.Category()

	return got == c || (c == CategoryEval && got == CategoryType)
}

// Category sentinels match every error of their stage with [errors.Is].
var (
	ErrLex   = &Error{category: CategoryLex, pos: -1}
	ErrParse = &Error{category: CategoryParse, pos: -1}
	ErrType  = &Error{category: CategoryType, pos: -1}
	ErrEval  = &Error{category: CategoryEval, pos: -1}
)

// Predefined errors (sentinel values).
var (
	ErrUnrecognizedCharacter = NewError(KindUnrecognizedCharacter)
	ErrMalformedNumber       = NewError(KindMalformedNumber)
	ErrUnexpectedToken       = NewError(KindUnexpectedToken)
	ErrArityMismatch         = NewError(KindArityMismatch)
	ErrUnbalancedDelimiter   = NewError(KindUnbalancedDelimiter)
	ErrNestingTooDeep        = NewError(KindNestingTooDeep)
	ErrIncompatibleOperands  = NewError(KindIncompatibleOperands)
	ErrRequiresInteger       = NewError(KindRequiresInteger)
	ErrRequiresNonNegative   = NewError(KindRequiresNonNegative)
	ErrRequiresBoolean       = NewError(KindRequiresBoolean)
	ErrDivisionByZero        = NewError(KindDivisionByZero)
	ErrUndefinedVariable     = NewError(KindUndefinedVariable)
	ErrOverflow              = NewError(KindOverflow)
	ErrCyclicDefinition      = NewError(KindCyclicDefinition)
)

// Error represents a failure from any stage of the pipeline with optional
// structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	err      error       // Wrapped error (for errors.Unwrap)
	msg      string      // Kind description, or custom message
	detail   string      // Instance-specific detail (offending text, name)
	attrs    []slog.Attr // Attributes for structured logging
	kind     Kind
	category Category // Set only on category sentinels
	pos      int      // Byte offset in the source, or -1
}

// NewError creates a new Error of the given kind.
func NewError(kind Kind) *Error {
	return &Error{kind: kind, msg: kind.String(), pos: -1}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err, pos: -1}
}

// Kind returns the specific failure kind.
func (e *Error) Kind() Kind { return e.kind }

// Category returns the stage that reported the error.
func (e *Error) Category() Category {
	if e.kind == KindUnknown {
		return e.category
	}

	return e.kind.Category()
}

// Pos returns the byte offset in the source where the error was detected, or
// -1 if it is not tied to a source position.
func (e *Error) Pos() int { return e.pos }

// Detail returns the instance-specific part of the message.
func (e *Error) Detail() string { return e.detail }

// Error implements the error interface.
//
// The message has the form "<category>: <kind>[: <detail>][ at offset N]",
// followed by ": <cause>" when a wrapped error is present.
func (e *Error) Error() string {
	part := make([]string, 0, 4)

	if cat := e.Category(); cat != CategoryNone {
		part = append(part, cat.String())
	}

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.detail != "" {
		part = append(part, e.detail)
	}

	msg := strings.Join(part, ": ")
	if e.pos >= 0 {
		msg += fmt.Sprintf(" at offset %d", e.pos)
	}

	if e.err != nil {
		if msg == "" {
			return e.err.Error()
		}

		msg += ": " + e.err.Error()
	}

	return msg
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether e matches target. A target with a kind matches errors of
// the same kind; a category sentinel matches every error of its category.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	switch {
	case t.kind != KindUnknown:
		return e.kind == t.kind
	case t.category != CategoryNone:
		return e.kind.in(t.category)
	default:
		return e == t
	}
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+5)

	if cat := e.Category(); cat != CategoryNone {
		attrs = append(attrs, slog.String("category", cat.String()))
	}

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.detail != "" {
		attrs = append(attrs, slog.String("detail", e.detail))
	}

	if e.pos >= 0 {
		attrs = append(attrs, slog.Int("pos", e.pos))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// clone returns a shallow copy of e.
func (e *Error) clone() *Error {
	c := *e

	return &c
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := e.clone()
	c.err = err

	return c
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := e.clone()
	c.attrs = make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(c.attrs, e.attrs)
	copy(c.attrs[len(e.attrs):], attrs)

	return c
}

// At returns a copy of e positioned at byte offset pos of the source.
func (e *Error) At(pos int) *Error {
	c := e.clone()
	c.pos = pos

	return c
}

// Describe returns a copy of e with a formatted instance detail.
func (e *Error) Describe(format string, args ...any) *Error {
	c := e.clone()
	c.detail = fmt.Sprintf(format, args...)

	return c
}
