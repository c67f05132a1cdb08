// Package lang implements the chalk expression language: a lexer, a
// recursive descent parser, typed runtime values, and a lazy variable
// environment.
//
// # Values
//
// Every expression evaluates to a [Value] of one of four types, ordered by
// generality:
//
//	bool < uint < int < float
//
// Binary operators promote both operands to the more general of their types.
// Integer arithmetic is checked: results that do not fit in 64 bits fail with
// [ErrOverflow] instead of wrapping. Integer division yields an integer when
// exact and a float otherwise.
//
// # Grammar
//
// Informal EBNF, loosest binding first:
//
//	Statement   → Identifier '=' Statement | Or
//	Or          → And ('||' And)*
//	And         → Equality ('&&' Equality)*
//	Equality    → Relational (('==' | '!=') Relational)*
//	Relational  → Additive (('<' | '>' | '<=' | '>=') Additive)*
//	Additive    → Term (('+' | '-') Term)*
//	Term        → Power (('*' | '/') Power | '(' Or ')')*
//	Power       → Unary ('^' Power)?
//	Unary       → '-' Unary | Postfix
//	Postfix     → Primary '!'*
//	Primary     → Number | Bool | Identifier | Function '(' Args ')'
//	            | '(' Or ')' | '|' Or '|'
//
// A parenthesized group directly after an operand multiplies it, so 2(3+4)
// is 14. Because '||' is a single token, nested absolute values need a space:
// | |x| | rather than ||x||.
//
// # Variables
//
// Assignment binds a name to its unevaluated right-hand side:
//
//	> x = 2
//	2
//	> y = x + 1
//	3
//	> x = 10
//	10
//	> y
//	11
//
// Each reference re-evaluates the stored expression against the current
// [Environment]. A definition that would make a variable depend on itself is
// rejected with [ErrCyclicDefinition] and leaves the environment unchanged.
//
// # Errors
//
// All failures are [*Error] values. Use [errors.Is] with a kind sentinel such
// as [ErrDivisionByZero], or with a stage sentinel ([ErrLex], [ErrParse],
// [ErrType], [ErrEval]) to classify them.
package lang
