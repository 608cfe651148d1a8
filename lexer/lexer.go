// Package lexer turns zds source text into a stream of tokens.
package lexer

import (
	"fmt"
	"strings"
	"unicode"

	"fortio.org/log"
	"zds.io/zds/token"
)

// Error is a tokenizer failure: an unexpected character at Line.
type Error struct {
	Msg  string
	Line int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (line %d)", e.Msg, e.Line)
}

type Lexer struct {
	input      []rune
	pos        int
	lineNumber int
	prev       token.Token // last emitted token, decides if '-' starts a number.
	started    bool
}

func New(input string) *Lexer {
	return &Lexer{input: []rune(input), lineNumber: 1}
}

// Tokenize scans the whole input. The result always ends with an EOF token
// unless an error is returned.
func Tokenize(input string) ([]token.Token, error) {
	return New(input).Tokenize()
}

func (l *Lexer) Tokenize() ([]token.Token, error) {
	tokens := make([]token.Token, 0, len(l.input)/3+1)
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			log.Debugf("Tokenized %d tokens, %d lines", len(tokens), l.lineNumber)
			return tokens, nil
		}
	}
}

// Line is the current line number (1 based).
func (l *Lexer) Line() int {
	return l.lineNumber
}

func (l *Lexer) NextToken() (token.Token, error) {
	tok, err := l.nextToken()
	if err == nil {
		l.prev = tok
		l.started = true
	}
	return tok, err
}

func (l *Lexer) nextToken() (token.Token, error) {
	l.skipWhitespaceAndComments()
	line := l.lineNumber
	ch := l.readChar()
	nextChar := l.peekChar()
	switch ch {
	case 0:
		l.pos-- // stay at EOF.
		return token.New(token.EOF, "", line), nil
	case '=', '<', '>':
		if nextChar == '=' {
			l.pos++
			return token.New(twoChars[ch], string([]rune{ch, nextChar}), line), nil
		}
		return token.New(oneChar[ch], string(ch), line), nil
	case '!':
		if nextChar == '=' {
			l.pos++
			return token.New(token.NOTEQ, "!=", line), nil
		}
		return token.Token{}, &Error{Msg: "expected '=' after '!'", Line: line}
	case '&', '|':
		if nextChar == ch { // && and || are aliases of & and |.
			l.pos++
			return token.New(oneChar[ch], string([]rune{ch, ch}), line), nil
		}
		return token.New(oneChar[ch], string(ch), line), nil
	case '-':
		if isDigit(nextChar) && l.operandExpected() {
			return l.readNumber(ch, line), nil
		}
		return token.New(token.MINUS, "-", line), nil
	case '+', '*', '/', '(', ')', '[', ']', ',', '.':
		return token.New(oneChar[ch], string(ch), line), nil
	case '"', '\'':
		return l.readString(ch, line), nil
	default:
		switch {
		case isLetter(ch):
			return token.LookupIdent(l.readIdentifier(), line), nil
		case isDigit(ch):
			return l.readNumber(ch, line), nil
		default:
			return token.Token{}, &Error{Msg: fmt.Sprintf("unexpected character: %q", ch), Line: line}
		}
	}
}

var oneChar = map[rune]token.Type{
	'=': token.ASSIGN,
	'<': token.LT,
	'>': token.GT,
	'+': token.PLUS,
	'-': token.MINUS,
	'*': token.ASTERISK,
	'/': token.SLASH,
	'(': token.LPAREN,
	')': token.RPAREN,
	'[': token.LBRACKET,
	']': token.RBRACKET,
	',': token.COMMA,
	'.': token.DOT,
	'&': token.AND,
	'|': token.OR,
}

var twoChars = map[rune]token.Type{
	'=': token.EQ,
	'<': token.LTEQ,
	'>': token.GTEQ,
}

// A '-' directly followed by a digit is a negative literal only where an
// operand is expected, so "1-2" is a subtraction and "f(-2)" a literal.
func (l *Lexer) operandExpected() bool {
	return !l.started || !l.prev.IsOperand()
}

func isWhiteSpace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || unicode.IsSpace(ch)
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		ch := l.peekChar()
		switch {
		case ch == '\n':
			l.lineNumber++
			l.pos++
		case ch != 0 && isWhiteSpace(ch):
			l.pos++
		case ch == '/' && l.peekAt(1) == '/':
			for ch != '\n' && ch != 0 {
				l.pos++
				ch = l.peekChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readChar() rune {
	ch := l.peekChar()
	l.pos++
	return ch
}

func (l *Lexer) peekChar() rune {
	return l.peekAt(0)
}

func (l *Lexer) peekAt(offset int) rune {
	p := l.pos + offset
	if p < 0 {
		panic("Lexer position is negative")
	}
	if p >= len(l.input) {
		return 0
	}
	return l.input[p]
}

// readString reads up to the matching quote. An unterminated string is not an
// error: it silently extends to the end of the input (we warn about it).
func (l *Lexer) readString(sep rune, line int) token.Token {
	buf := strings.Builder{}
	for {
		ch := l.readChar()
		switch ch {
		case sep:
			s := buf.String()
			return token.Token{Type: token.STRING, Literal: s, Value: s, Line: line}
		case 0:
			l.pos--
			log.Warnf("unterminated string starting at line %d", line)
			s := buf.String()
			return token.Token{Type: token.STRING, Literal: s, Value: s, Line: line}
		case '\n':
			l.lineNumber++
		case '\\':
			next := l.peekChar()
			switch next {
			case 'n':
				ch = '\n'
			case 't':
				ch = '\t'
			case 'r':
				ch = '\r'
			case '\\', '"', '\'':
				ch = next
			default:
				// unknown (or trailing) escape: keep the backslash as is.
				buf.WriteRune(ch)
				continue
			}
			l.pos++
		}
		buf.WriteRune(ch)
	}
}

func (l *Lexer) readIdentifier() string {
	pos := l.pos - 1
	for IsAlphaNum(l.peekChar()) {
		l.pos++
	}
	return string(l.input[pos:l.pos])
}

// readNumber reads digits with at most one interior '.', which must be
// followed by a digit (so "1.x" is 1 then DOT).
func (l *Lexer) readNumber(ch rune, line int) token.Token {
	pos := l.pos - 1
	if ch == '-' {
		l.pos++ // first digit, known to be there.
	}
	for isDigit(l.peekChar()) {
		l.pos++
	}
	if l.peekChar() == '.' && isDigit(l.peekAt(1)) {
		l.pos++
		for isDigit(l.peekChar()) {
			l.pos++
		}
	}
	lit := string(l.input[pos:l.pos])
	return token.Token{Type: token.NUMBER, Literal: lit, Value: parseNumber(lit), Line: line}
}

func isLetter(ch rune) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_' || (ch > 127 && unicode.IsLetter(ch))
}

func IsAlphaNum(ch rune) bool {
	return isLetter(ch) || isDigit(ch) || (ch > 127 && unicode.IsDigit(ch))
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
