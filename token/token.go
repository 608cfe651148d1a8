// Package token defines the vocabulary shared by the lexer, the parser and the
// evaluator: token types, the keyword table and the Token value itself.
package token

import (
	"strconv"

	"fortio.org/log"
)

type Type uint8

// Token is produced once by the lexer and never modified afterwards.
// Value holds the decoded literal: float64 for NUMBER, string for STRING,
// bool for BOOLEAN and nil for NULL (and everything else).
type Token struct {
	Type    Type
	Literal string
	Value   any
	Line    int
}

const (
	ILLEGAL Type = iota
	EOF

	// Literals.
	IDENT
	NUMBER
	STRING
	BOOLEAN
	NULL

	// Operators.
	ASSIGN
	PLUS
	MINUS
	ASTERISK
	SLASH
	EQ
	NOTEQ
	GT
	LT
	GTEQ
	LTEQ
	AND
	OR

	// Delimiters.
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	COMMA
	DOT

	// Keywords.
	FUNCTION
	END
	IF
	THEN
	ELSE
	RETURN
	WHILE
	FOR
	TO
	STEP

	LAST
)

var names = [...]string{
	ILLEGAL:  "ILLEGAL",
	EOF:      "EOF",
	IDENT:    "IDENT",
	NUMBER:   "NUMBER",
	STRING:   "STRING",
	BOOLEAN:  "BOOLEAN",
	NULL:     "NULL",
	ASSIGN:   "ASSIGN",
	PLUS:     "PLUS",
	MINUS:    "MINUS",
	ASTERISK: "ASTERISK",
	SLASH:    "SLASH",
	EQ:       "EQ",
	NOTEQ:    "NOTEQ",
	GT:       "GT",
	LT:       "LT",
	GTEQ:     "GTEQ",
	LTEQ:     "LTEQ",
	AND:      "AND",
	OR:       "OR",
	LPAREN:   "LPAREN",
	RPAREN:   "RPAREN",
	LBRACKET: "LBRACKET",
	RBRACKET: "RBRACKET",
	COMMA:    "COMMA",
	DOT:      "DOT",
	FUNCTION: "FUNCTION",
	END:      "END",
	IF:       "IF",
	THEN:     "THEN",
	ELSE:     "ELSE",
	RETURN:   "RETURN",
	WHILE:    "WHILE",
	FOR:      "FOR",
	TO:       "TO",
	STEP:     "STEP",
	LAST:     "LAST",
}

func (t Type) String() string {
	if int(t) < len(names) {
		return names[t]
	}
	return "Type(" + strconv.Itoa(int(t)) + ")"
}

var keywords = map[string]Type{
	"function": FUNCTION,
	"end":      END,
	"if":       IF,
	"then":     THEN,
	"else":     ELSE,
	"return":   RETURN,
	"while":    WHILE,
	"for":      FOR,
	"to":       TO,
	"step":     STEP,
	"true":     BOOLEAN,
	"false":    BOOLEAN,
	"null":     NULL,
	"and":      AND,
	"or":       OR,
}

// LookupIdent returns the keyword token for ident, or an IDENT token.
func LookupIdent(ident string, line int) Token {
	t, ok := keywords[ident]
	if !ok {
		return Token{Type: IDENT, Literal: ident, Value: ident, Line: line}
	}
	log.Debugf("LookupIdent(%s) found %s", ident, t)
	tok := Token{Type: t, Literal: ident, Line: line}
	if t == BOOLEAN {
		tok.Value = ident == "true"
	}
	return tok
}

// New creates a token with no decoded value (operators, delimiters, EOF).
func New(t Type, literal string, line int) Token {
	return Token{Type: t, Literal: literal, Line: line}
}

// IsOperand is true for tokens after which a binary operator is expected rather
// than the start of a new operand. Used by the lexer to decide whether '-'
// followed by a digit starts a negative number literal.
func (t Token) IsOperand() bool {
	switch t.Type { //nolint:exhaustive // only operand-ending tokens matter.
	case IDENT, NUMBER, STRING, BOOLEAN, NULL, RPAREN, RBRACKET:
		return true
	default:
		return false
	}
}

func (t Token) String() string {
	if t.Type == EOF {
		return "end of input"
	}
	return strconv.Quote(t.Literal)
}

// DebugString is used in logs and test failures.
func (t Token) DebugString() string {
	return t.Type.String() + ":" + strconv.Quote(t.Literal) + "@" + strconv.Itoa(t.Line)
}
