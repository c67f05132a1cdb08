package repl

import (
	"strings"

	"github.com/BradenEverson/chalk/lang"
)

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string // function name before the open parenthesis
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside parameter list
}

// detectFunctionCall reports whether the cursor is inside the argument list
// of a call and, if so, which function and argument it is on.
//
// Only parentheses preceded directly by an identifier count as calls, so the
// cursor inside "(1 + 2)" within "gcd((1 + 2), 4)" is still on argument 0 of
// gcd.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(cursor, len(input))

	argIndex, depth := 0, 0

	// All delimiters are ASCII, so a byte scan is safe on UTF-8 input.
	for i := cursor - 1; i >= 0; i-- {
		switch input[i] {
		case ')':
			depth++

		case ',':
			if depth == 0 {
				argIndex++
			}

		case '(':
			if depth > 0 {
				depth--

				continue
			}

			name := callee(input[:i])
			if name == "" {
				// A grouping parenthesis; keep looking outward.
				argIndex = 0

				continue
			}

			return functionCall{name: name, argIndex: argIndex, inCall: true}
		}
	}

	return functionCall{}
}

// callee returns the identifier that ends prefix, ignoring spaces between it
// and the parenthesis that follows.
func callee(prefix string) string {
	prefix = strings.TrimRight(prefix, " \t")

	start := len(prefix)
	for start > 0 && !isWordBoundary(rune(prefix[start-1])) {
		start--
	}

	name := prefix[start:]
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		return ""
	}

	return name
}

// signatureOf returns the display signature and parameter names of the
// reserved function name, or "" if there is none.
func signatureOf(name string) (signature string, params []string) {
	b, ok := lang.LookupBuiltin(name)
	if !ok {
		return "", nil
	}

	return b.Signature(), b.Params
}

// renderSignatureHint renders the function signature with the current
// parameter highlighted. Arguments past the last parameter highlight nothing.
func renderSignatureHint(
	signature string,
	params []string,
	currentArgIdx int,
) string {
	if signature == "" {
		return ""
	}

	name, _, ok := strings.Cut(signature, "(")
	if !ok {
		return signatureStyle.Render(signature)
	}

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		if i == currentArgIdx {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
