package lang

import "strconv"

// TokenType classifies a lexical token.
type TokenType int

const (
	TokenEOF    TokenType = iota // end of input
	TokenNumber                  // number
	TokenIdent                   // identifier
	TokenFunc                    // function name
	TokenBool                    // boolean
	TokenPlus                    // '+'
	TokenMinus                   // '-'
	TokenStar                    // '*'
	TokenSlash                   // '/'
	TokenCaret                   // '^'
	TokenBang                    // '!'
	TokenLParen                  // '('
	TokenRParen                  // ')'
	TokenPipe                    // '|'
	TokenComma                   // ','
	TokenAssign                  // '='
	TokenEq                      // '=='
	TokenNeq                     // '!='
	TokenLt                      // '<'
	TokenGt                      // '>'
	TokenLte                     // '<='
	TokenGte                     // '>='
	TokenAnd                     // '&&'
	TokenOr                      // '||'
)

var tokenName = [...]string{
	TokenEOF:    "end of input",
	TokenNumber: "number",
	TokenIdent:  "identifier",
	TokenFunc:   "function name",
	TokenBool:   "boolean",
	TokenPlus:   "'+'",
	TokenMinus:  "'-'",
	TokenStar:   "'*'",
	TokenSlash:  "'/'",
	TokenCaret:  "'^'",
	TokenBang:   "'!'",
	TokenLParen: "'('",
	TokenRParen: "')'",
	TokenPipe:   "'|'",
	TokenComma:  "','",
	TokenAssign: "'='",
	TokenEq:     "'=='",
	TokenNeq:    "'!='",
	TokenLt:     "'<'",
	TokenGt:     "'>'",
	TokenLte:    "'<='",
	TokenGte:    "'>='",
	TokenAnd:    "'&&'",
	TokenOr:     "'||'",
}

func (t TokenType) String() string {
	if t < 0 || int(t) >= len(tokenName) {
		return "TokenType(" + strconv.Itoa(int(t)) + ")"
	}

	return tokenName[t]
}

// operators maps operator text to its token type.
// Two-character operators must be matched before single characters.
var (
	operators2 = map[string]TokenType{
		"==": TokenEq,
		"!=": TokenNeq,
		"<=": TokenLte,
		">=": TokenGte,
		"&&": TokenAnd,
		"||": TokenOr,
	}
	operators1 = map[byte]TokenType{
		'+': TokenPlus,
		'-': TokenMinus,
		'*': TokenStar,
		'/': TokenSlash,
		'^': TokenCaret,
		'!': TokenBang,
		'(': TokenLParen,
		')': TokenRParen,
		'|': TokenPipe,
		',': TokenComma,
		'=': TokenAssign,
		'<': TokenLt,
		'>': TokenGt,
	}
)

// binaryOp maps binary operator tokens to expression operators.
var binaryOp = map[TokenType]Op{
	TokenPlus:  OpAdd,
	TokenMinus: OpSub,
	TokenStar:  OpMul,
	TokenSlash: OpDiv,
	TokenCaret: OpPow,
	TokenEq:    OpEq,
	TokenNeq:   OpNeq,
	TokenLt:    OpLt,
	TokenGt:    OpGt,
	TokenLte:   OpLte,
	TokenGte:   OpGte,
	TokenAnd:   OpAnd,
	TokenOr:    OpOr,
}

// Token is a lexical unit of the source text.
type Token struct {
	Text  string // Source text of the token
	Value Value  // Literal payload of number and boolean tokens
	Type  TokenType
	Pos   int // Byte offset of the first character
}

// String returns the source text of the token, or a description of it when
// it has none.
func (t Token) String() string {
	if t.Text == "" {
		return t.Type.String()
	}

	return strconv.Quote(t.Text)
}
