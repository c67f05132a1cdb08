package lang

import (
	"errors"
	"iter"
	"log/slog"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Tokens returns a sequence over the tokens of text, ending with a
// [TokenEOF] token. Scanning is lazy; each range over the sequence lexes text
// from the beginning.
//
// The sequence stops after yielding the first error.
func Tokens(text string) iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		lx := lexer{src: text}

		for {
			tok, err := lx.next()
			if err != nil {
				yield(Token{}, err)

				return
			}

			if !yield(tok, nil) || tok.Type == TokenEOF {
				return
			}
		}
	}
}

// Tokenize returns all tokens of text, including the trailing [TokenEOF].
func Tokenize(text string) ([]Token, error) {
	var toks []Token

	for tok, err := range Tokens(text) {
		if err != nil {
			return nil, err
		}

		toks = append(toks, tok)
	}

	return toks, nil
}

type lexer struct {
	src string
	pos int
}

func (lx *lexer) next() (Token, error) {
	lx.skipSpace()

	start := lx.pos
	if start >= len(lx.src) {
		return Token{Type: TokenEOF, Pos: start}, nil
	}

	c := lx.src[start]

	switch {
	case isDigit(c):
		return lx.number()
	case isLetter(c):
		return lx.word(), nil
	}

	if start+2 <= len(lx.src) {
		if tt, ok := operators2[lx.src[start:start+2]]; ok {
			lx.pos += 2

			return Token{Type: tt, Text: lx.src[start:lx.pos], Pos: start}, nil
		}
	}

	if tt, ok := operators1[c]; ok {
		lx.pos++

		return Token{Type: tt, Text: lx.src[start:lx.pos], Pos: start}, nil
	}

	r, _ := utf8.DecodeRuneInString(lx.src[start:])

	return Token{}, ErrUnrecognizedCharacter.
		Describe("%s", strconv.QuoteRune(r)).
		At(start).
		With(slog.String("char", string(r)))
}

func (lx *lexer) skipSpace() {
	for lx.pos < len(lx.src) {
		r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
		if !unicode.IsSpace(r) {
			return
		}

		lx.pos += size
	}
}

// number scans digits with at most one decimal point.
func (lx *lexer) number() (Token, error) {
	start := lx.pos
	dot := false

	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		if c == '.' && !dot {
			dot = true
		} else if !isDigit(c) {
			break
		}

		lx.pos++
	}

	text := lx.src[start:lx.pos]
	tok := Token{Type: TokenNumber, Text: text, Pos: start}

	malformed := func(err error) (Token, error) {
		return Token{}, ErrMalformedNumber.
			Describe("%q", text).
			At(start).
			Wrap(err)
	}

	if dot {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return malformed(err)
		}

		tok.Value = FloatValue(f)

		return tok, nil
	}

	i, err := strconv.ParseInt(text, 10, 64)
	if err == nil {
		tok.Value = IntValue(i)

		return tok, nil
	}

	if !errors.Is(err, strconv.ErrRange) {
		return malformed(err)
	}

	u, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return malformed(err)
	}

	tok.Value = UintValue(u)

	return tok, nil
}

// word scans an identifier and classifies it as a boolean literal, a
// reserved function name, or a variable name.
func (lx *lexer) word() Token {
	start := lx.pos

	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		if !isLetter(c) && !isDigit(c) && c != '_' {
			break
		}

		lx.pos++
	}

	text := lx.src[start:lx.pos]
	tok := Token{Type: TokenIdent, Text: text, Pos: start}

	switch text {
	case "true", "false":
		tok.Type = TokenBool
		tok.Value = BoolValue(text == "true")
	default:
		if _, ok := builtins[text]; ok {
			tok.Type = TokenFunc
		}
	}

	return tok
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
