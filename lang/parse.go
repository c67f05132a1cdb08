package lang

import (
	"log/slog"
)

// Parse builds an expression tree from a token sequence as produced by
// [Tokenize]. A missing trailing [TokenEOF] is implied.
//
// The grammar, from loosest to tightest binding:
//
//	statement      = ident "=" statement | or
//	or             = and { "||" and }
//	and            = equality { "&&" equality }
//	equality       = relational { ( "==" | "!=" ) relational }
//	relational     = additive { ( "<" | ">" | "<=" | ">=" ) additive }
//	additive       = multiplicative { ( "+" | "-" ) multiplicative }
//	multiplicative = power { ( "*" | "/" ) power | power-starting-with-"(" }
//	power          = unary [ "^" power ]
//	unary          = "-" unary | postfix
//	postfix        = primary { "!" }
//	primary        = number | bool | ident | func "(" args ")"
//	               | "(" or ")" | "|" or "|"
//
// All tokens must be consumed; trailing input is an error. Expressions nested
// deeper than [MaxDepth] fail with [ErrNestingTooDeep].
func Parse(tokens []Token) (Expr, error) {
	p := parser{toks: tokens}

	if n := len(tokens); n == 0 || tokens[n-1].Type != TokenEOF {
		end := 0
		if n > 0 {
			end = tokens[n-1].Pos + len(tokens[n-1].Text)
		}

		p.toks = append(tokens[:n:n], Token{Type: TokenEOF, Pos: end})
	}

	e, err := p.statement()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.Type != TokenEOF {
		if tok.Type == TokenRParen {
			return nil, unbalanced(tok, "no matching '('")
		}

		return nil, p.unexpected("end of input")
	}

	return e, nil
}

// MaxDepth bounds the nesting of a parsed expression, counting groups,
// calls, prefix and postfix operators, and operator chains.
const MaxDepth = 10000

type parser struct {
	toks   []Token
	pos    int
	parens int // open '(' awaiting ')'
	depth  int // upper bound on the height of the node being parsed
}

// deepen adds n levels to the current nesting depth.
func (p *parser) deepen(n int) error {
	p.depth += n
	if p.depth <= MaxDepth {
		return nil
	}

	tok := p.peek()

	return ErrNestingTooDeep.
		Describe("more than %d levels", MaxDepth).
		At(tok.Pos).
		With(slog.Int("max_depth", MaxDepth))
}

func (p *parser) peek() Token { return p.toks[p.pos] }

func (p *parser) peekAt(offset int) Token {
	if i := p.pos + offset; i < len(p.toks) {
		return p.toks[i]
	}

	return p.toks[len(p.toks)-1]
}

func (p *parser) advance() Token {
	tok := p.toks[p.pos]
	if tok.Type != TokenEOF {
		p.pos++
	}

	return tok
}

func (p *parser) unexpected(expected string) *Error {
	tok := p.peek()

	return ErrUnexpectedToken.
		Describe("found %s, expected %s", tok, expected).
		At(tok.Pos).
		With(
			slog.String("found", tok.Type.String()),
			slog.String("expected", expected),
		)
}

func unbalanced(tok Token, detail string) *Error {
	return ErrUnbalancedDelimiter.
		Describe("found %s, %s", tok, detail).
		At(tok.Pos).
		With(slog.String("found", tok.Type.String()))
}

// closer consumes the token closing a group opened by open.
func (p *parser) closer(open Token, want TokenType) error {
	tok := p.peek()

	switch tok.Type {
	case want:
		p.advance()

		return nil
	case TokenEOF:
		return unbalanced(tok, "missing "+want.String()).
			With(slog.Int("open", open.Pos))
	default:
		return p.unexpected(want.String())
	}
}

func (p *parser) statement() (Expr, error) {
	if p.peek().Type == TokenIdent && p.peekAt(1).Type == TokenAssign {
		name := p.advance().Text
		p.advance()

		if err := p.deepen(1); err != nil {
			return nil, err
		}

		value, err := p.statement()
		if err != nil {
			return nil, err
		}

		p.depth--

		return &Assignment{Name: name, Value: value}, nil
	}

	return p.or()
}

// binaryLevel parses a left-associative chain of the given operators.
func (p *parser) binaryLevel(
	next func() (Expr, error),
	ops ...TokenType,
) (Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}

	chain := 0
	defer func() { p.depth -= chain }()

	for {
		tt := p.peek().Type

		matched := false
		for _, op := range ops {
			if tt == op {
				matched = true

				break
			}
		}

		if !matched {
			return left, nil
		}

		p.advance()

		chain++
		if err := p.deepen(1); err != nil {
			return nil, err
		}

		right, err := next()
		if err != nil {
			return nil, err
		}

		left = &Binary{Op: binaryOp[tt], Left: left, Right: right}
	}
}

func (p *parser) or() (Expr, error) {
	return p.binaryLevel(p.and, TokenOr)
}

func (p *parser) and() (Expr, error) {
	return p.binaryLevel(p.equality, TokenAnd)
}

func (p *parser) equality() (Expr, error) {
	return p.binaryLevel(p.relational, TokenEq, TokenNeq)
}

func (p *parser) relational() (Expr, error) {
	return p.binaryLevel(p.additive, TokenLt, TokenGt, TokenLte, TokenGte)
}

func (p *parser) additive() (Expr, error) {
	return p.binaryLevel(p.multiplicative, TokenPlus, TokenMinus)
}

func (p *parser) multiplicative() (Expr, error) {
	left, err := p.power()
	if err != nil {
		return nil, err
	}

	chain := 0
	defer func() { p.depth -= chain }()

	for {
		op := OpMul

		switch p.peek().Type {
		case TokenStar:
			p.advance()
		case TokenSlash:
			op = OpDiv

			p.advance()
		case TokenLParen:
			// Implicit multiplication: 2(3 + 1)
		default:
			return left, nil
		}

		chain++
		if err := p.deepen(1); err != nil {
			return nil, err
		}

		right, err := p.power()
		if err != nil {
			return nil, err
		}

		left = &Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parser) power() (Expr, error) {
	base, err := p.unary()
	if err != nil {
		return nil, err
	}

	if p.peek().Type != TokenCaret {
		return base, nil
	}

	p.advance()

	if err := p.deepen(1); err != nil {
		return nil, err
	}

	exp, err := p.power()
	if err != nil {
		return nil, err
	}

	p.depth--

	return &Binary{Op: OpPow, Left: base, Right: exp}, nil
}

func (p *parser) unary() (Expr, error) {
	if p.peek().Type != TokenMinus {
		return p.postfix()
	}

	p.advance()

	if err := p.deepen(1); err != nil {
		return nil, err
	}

	operand, err := p.unary()
	if err != nil {
		return nil, err
	}

	p.depth--

	return &Unary{Op: OpNeg, Operand: operand}, nil
}

func (p *parser) postfix() (Expr, error) {
	e, err := p.primary()
	if err != nil {
		return nil, err
	}

	bangs := 0

	for p.peek().Type == TokenBang {
		p.advance()

		bangs++
		if err := p.deepen(1); err != nil {
			return nil, err
		}

		e = &Postfix{Op: OpFact, Operand: e}
	}

	p.depth -= bangs

	return e, nil
}

func (p *parser) primary() (Expr, error) {
	tok := p.peek()

	switch tok.Type {
	case TokenNumber, TokenBool:
		p.advance()

		return &Literal{Value: tok.Value}, nil

	case TokenIdent:
		p.advance()

		return &Variable{Name: tok.Text}, nil

	case TokenFunc:
		return p.call()

	case TokenLParen:
		p.advance()
		p.parens++

		if err := p.deepen(1); err != nil {
			return nil, err
		}

		inner, err := p.or()
		if err != nil {
			return nil, err
		}

		if err := p.closer(tok, TokenRParen); err != nil {
			return nil, err
		}

		p.parens--
		p.depth--

		return inner, nil

	case TokenPipe:
		p.advance()

		if err := p.deepen(1); err != nil {
			return nil, err
		}

		inner, err := p.or()
		if err != nil {
			return nil, err
		}

		if err := p.closer(tok, TokenPipe); err != nil {
			return nil, err
		}

		p.depth--

		return &Unary{Op: OpAbs, Operand: inner}, nil

	case TokenRParen:
		if p.parens == 0 {
			return nil, unbalanced(tok, "no matching '('")
		}
	}

	return nil, p.unexpected("expression")
}

func (p *parser) call() (Expr, error) {
	fn, ok := builtins[p.peek().Text]
	if !ok {
		return nil, p.unexpected("function name")
	}

	name := p.advance()

	if p.peek().Type != TokenLParen {
		return nil, p.unexpected("'(' after " + name.Text)
	}

	open := p.advance()
	p.parens++

	if err := p.deepen(1); err != nil {
		return nil, err
	}

	var args []Expr

	if p.peek().Type != TokenRParen {
		for {
			arg, err := p.or()
			if err != nil {
				return nil, err
			}

			args = append(args, arg)

			if p.peek().Type != TokenComma {
				break
			}

			p.advance()
		}
	}

	if tt := p.peek().Type; tt != TokenRParen && tt != TokenEOF {
		return nil, p.unexpected("',' or ')'")
	}

	if err := p.closer(open, TokenRParen); err != nil {
		return nil, err
	}

	p.parens--
	p.depth--

	if len(args) != fn.Arity() {
		return nil, arityMismatch(fn, len(args)).At(name.Pos)
	}

	return &Call{Func: name.Text, Args: args}, nil
}
