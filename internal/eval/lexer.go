package eval

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	num  float64
}

// lex tokenizes an expression string. It returns an error for an
// unterminated string literal, a malformed number, or any character that
// does not start a literal, identifier, parenthesis, comma or known
// operator; grammar errors are left to the parser.
func lex(expr string) ([]token, error) {
	var toks []token
	r := []rune(expr)
	i := 0
	n := len(r)

	for i < n {
		c := r[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "("})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")"})
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma, text: ","})
			i++
		case c == '\'' || c == '"':
			quote := c
			j := i + 1
			var sb strings.Builder
			closed := false
			for j < n {
				if r[j] == quote {
					closed = true
					j++
					break
				}
				sb.WriteRune(r[j])
				j++
			}
			if !closed {
				return nil, fmt.Errorf("eval: unterminated string literal at offset %d", i)
			}
			toks = append(toks, token{kind: tokString, text: sb.String()})
			i = j
		case isDigit(c) || (c == '.' && i+1 < n && isDigit(r[i+1])):
			j := i
			for j < n && (isDigit(r[j]) || r[j] == '.') {
				j++
			}
			numStr := string(r[i:j])
			var f float64
			if _, err := fmt.Sscanf(numStr, "%g", &f); err != nil {
				return nil, fmt.Errorf("eval: invalid numeric literal %q", numStr)
			}
			toks = append(toks, token{kind: tokNumber, text: numStr, num: f})
			i = j
		case isIdentStart(c):
			j := i
			for j < n && isIdentPart(r[j]) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: string(r[i:j])})
			i = j
		default:
			op, width := lexOperator(r, i)
			if width == 0 {
				return nil, fmt.Errorf("eval: unexpected character %q at offset %d", c, i)
			}
			toks = append(toks, token{kind: tokOp, text: op})
			i += width
		}
	}
	toks = append(toks, token{kind: tokEOF})
	return toks, nil
}

func isDigit(c rune) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c rune) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentPart(c rune) bool  { return isIdentStart(c) || isDigit(c) }

// lexOperator matches the longest operator starting at position i.
// Returns ("", 0) when no operator matches.
func lexOperator(r []rune, i int) (string, int) {
	two := ""
	if i+1 < len(r) {
		two = string(r[i : i+2])
	}
	switch two {
	case "**", "//", "<=", ">=", "==", "!=":
		return two, 2
	}
	one := string(r[i])
	switch one {
	case "+", "-", "*", "/", "%", "<", ">":
		return one, 1
	}
	return "", 0
}
