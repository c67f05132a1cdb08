package lang

import (
	"errors"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenType
	}{
		{
			name:  "empty",
			input: "",
			want:  []TokenType{TokenEOF},
		},
		{
			name:  "whitespace only",
			input: " \t ",
			want:  []TokenType{TokenEOF},
		},
		{
			name:  "arithmetic",
			input: "3 + 4.5 * x",
			want: []TokenType{
				TokenNumber, TokenPlus, TokenNumber, TokenStar, TokenIdent, TokenEOF,
			},
		},
		{
			name:  "two-character operators",
			input: "<= >= == != && ||",
			want: []TokenType{
				TokenLte, TokenGte, TokenEq, TokenNeq, TokenAnd, TokenOr, TokenEOF,
			},
		},
		{
			name:  "single-character operators",
			input: "+-*/^!()|,=<>",
			want: []TokenType{
				TokenPlus, TokenMinus, TokenStar, TokenSlash, TokenCaret, TokenBang,
				TokenLParen, TokenRParen, TokenPipe, TokenComma, TokenAssign,
				TokenLt, TokenGt, TokenEOF,
			},
		},
		{
			name:  "not-equal wins over factorial",
			input: "3!=3",
			want:  []TokenType{TokenNumber, TokenNeq, TokenNumber, TokenEOF},
		},
		{
			name:  "factorial then equality",
			input: "3! == 6",
			want:  []TokenType{TokenNumber, TokenBang, TokenEq, TokenNumber, TokenEOF},
		},
		{
			name:  "function call",
			input: "gcd(12, 18)",
			want: []TokenType{
				TokenFunc, TokenLParen, TokenNumber, TokenComma, TokenNumber,
				TokenRParen, TokenEOF,
			},
		},
		{
			name:  "booleans",
			input: "true && false",
			want:  []TokenType{TokenBool, TokenAnd, TokenBool, TokenEOF},
		},
		{
			name:  "identifier with digits and underscores",
			input: "rate_2 = sinh",
			want:  []TokenType{TokenIdent, TokenAssign, TokenIdent, TokenEOF},
		},
		{
			name:  "number adjacent to identifier",
			input: "2x",
			want:  []TokenType{TokenNumber, TokenIdent, TokenEOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(toks) != len(tt.want) {
				t.Fatalf("got %d tokens %v, want %d", len(toks), toks, len(tt.want))
			}

			for i, tok := range toks {
				if tok.Type != tt.want[i] {
					t.Errorf("token %d: got %s, want %s", i, tok.Type, tt.want[i])
				}
			}
		})
	}
}

func TestTokenize_Positions(t *testing.T) {
	toks, err := Tokenize("  ab +\t12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []struct {
		text string
		pos  int
	}{
		{"ab", 2},
		{"+", 5},
		{"12", 7},
		{"", 9},
	}

	for i, w := range want {
		if toks[i].Text != w.text || toks[i].Pos != w.pos {
			t.Errorf("token %d: got %q at %d, want %q at %d",
				i, toks[i].Text, toks[i].Pos, w.text, w.pos)
		}
	}
}

func TestTokenize_Numbers(t *testing.T) {
	tests := []struct {
		input string
		want  Value
	}{
		{"0", IntValue(0)},
		{"42", IntValue(42)},
		{"007", IntValue(7)},
		{"9223372036854775807", IntValue(9223372036854775807)},
		{"9223372036854775808", UintValue(9223372036854775808)},
		{"18446744073709551615", UintValue(18446744073709551615)},
		{"4.5", FloatValue(4.5)},
		{"5.", FloatValue(5)},
		{"0.125", FloatValue(0.125)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := toks[0].Value; !got.Equal(tt.want) {
				t.Errorf("got %s %v, want %s %v",
					got.Type(), got, tt.want.Type(), tt.want)
			}
		})
	}
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
		pos   int
	}{
		{"unknown symbol", "3 $ 4", ErrUnrecognizedCharacter, 2},
		{"hash", "# comment", ErrUnrecognizedCharacter, 0},
		{"second decimal point", "1.2.3", ErrUnrecognizedCharacter, 3},
		{"leading underscore", "_x", ErrUnrecognizedCharacter, 0},
		{"non-ascii letter", "x + é", ErrUnrecognizedCharacter, 4},
		{"too large", "18446744073709551616", ErrMalformedNumber, 0},
		{"too large after operator", "1 + 99999999999999999999", ErrMalformedNumber, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got error %v, want %v", err, tt.want)
			}

			if !errors.Is(err, ErrLex) {
				t.Errorf("error %v is not a lex error", err)
			}

			var le *Error
			if !errors.As(err, &le) {
				t.Fatalf("error %T is not *Error", err)
			}

			if le.Pos() != tt.pos {
				t.Errorf("got position %d, want %d", le.Pos(), tt.pos)
			}
		})
	}
}

func TestTokens_StopsEarly(t *testing.T) {
	n := 0

	for range Tokens("1 + 2 + 3") {
		n++
		if n == 2 {
			break
		}
	}

	if n != 2 {
		t.Errorf("got %d iterations, want 2", n)
	}
}

func TestToken_String(t *testing.T) {
	tests := []struct {
		tok  Token
		want string
	}{
		{Token{Type: TokenPlus, Text: "+"}, `"+"`},
		{Token{Type: TokenIdent, Text: "abc"}, `"abc"`},
		{Token{Type: TokenEOF}, "end of input"},
	}

	for _, tt := range tests {
		if got := tt.tok.String(); got != tt.want {
			t.Errorf("got %s, want %s", got, tt.want)
		}
	}
}
