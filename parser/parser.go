// Package parser builds the AST from a token stream: recursive descent for
// statements and precedence climbing for expressions. The first error aborts
// the parse, there is no recovery.
package parser

import (
	"fmt"

	"fortio.org/log"
	"zds.io/zds/ast"
	"zds.io/zds/lexer"
	"zds.io/zds/token"
)

// Error is a ParseError: fatal to the whole parse.
type Error struct {
	Msg  string
	Line int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (line %d)", e.Msg, e.Line)
}

type Priority int8

const (
	_ Priority = iota
	LOWEST
	ASSIGN      // =
	OR          // or
	AND         // and
	EQUALS      // ==
	LESSGREATER // > or <
	SUM         // +
	PRODUCT     // *
)

var precedences = map[token.Type]Priority{
	token.ASSIGN:   ASSIGN,
	token.OR:       OR,
	token.AND:      AND,
	token.EQ:       EQUALS,
	token.NOTEQ:    EQUALS,
	token.LT:       LESSGREATER,
	token.GT:       LESSGREATER,
	token.LTEQ:     LESSGREATER,
	token.GTEQ:     LESSGREATER,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
}

type Parser struct {
	tokens []token.Token
	pos    int

	curToken  token.Token
	peekToken token.Token

	err *Error
}

// New creates a parser over tokens, which should end with an EOF token
// (one is added if missing).
func New(tokens []token.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens, token.New(token.EOF, "", line))
	}
	p := &Parser{tokens: tokens}
	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()
	return p
}

// ParseString tokenizes and parses src. The error is either a *lexer.Error
// or a *parser.Error.
func ParseString(src string) (*ast.Program, error) {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return New(tokens).Parse()
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if p.pos < len(p.tokens) {
		p.peekToken = p.tokens[p.pos]
		p.pos++
	} // else stays on EOF.
}

func (p *Parser) Parse() (*ast.Program, error) {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	for !p.curTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if p.err != nil {
			return nil, p.err
		}
		program.Statements = append(program.Statements, stmt)
		p.nextToken()
	}
	log.LogVf("Parsed %d top level statements", len(program.Statements))
	return program, nil
}

// errorf records the first error only; everything after it is noise.
func (p *Parser) errorf(line int, format string, args ...any) {
	if p.err != nil {
		return
	}
	p.err = &Error{Msg: fmt.Sprintf(format, args...), Line: line}
	log.LogVf("parse error: %v", p.err)
}

func (p *Parser) curTokenIs(t token.Type) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.Type) bool {
	return p.peekToken.Type == t
}

// expectPeek advances if the next token is t, otherwise records
// "expected <what>, got <token>" at the offending token's line.
func (p *Parser) expectPeek(t token.Type, context string) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorf(p.peekToken.Line, "expected %s %s, got %s", describe(t), context, p.peekToken)
	return false
}

func describe(t token.Type) string {
	switch t { //nolint:exhaustive // the others aren't expected explicitly.
	case token.IDENT:
		return "identifier"
	case token.END:
		return `"end"`
	case token.THEN:
		return `"then"`
	case token.TO:
		return `"to"`
	case token.ASSIGN:
		return `"="`
	case token.LPAREN:
		return `"("`
	case token.RPAREN:
		return `")"`
	case token.RBRACKET:
		return `"]"`
	default:
		return t.String()
	}
}
