package parser

import (
	"strconv"

	"fortio.org/log"
	"zds.io/zds/ast"
	"zds.io/zds/token"
)

func (p *Parser) peekPrecedence() Priority {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() Priority {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) parseExpression(precedence Priority) ast.Expression {
	log.Debugf("parseExpression: %s precedence %d", p.curToken.DebugString(), precedence)
	left := p.parsePrimary()
	for left != nil && precedence < p.peekPrecedence() {
		p.nextToken()
		if p.curTokenIs(token.ASSIGN) {
			left = p.parseAssignment(left)
		} else {
			left = p.parseBinary(left)
		}
	}
	return left
}

func (p *Parser) parseBinary(left ast.Expression) ast.Expression {
	lead := p.curToken
	lead.Line = left.Line()
	expression := &ast.Binary{
		Base:     ast.At(lead),
		Operator: p.curToken,
		Left:     left,
	}
	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

// parseAssignment is right associative: a = b = 3 is a = (b = 3).
func (p *Parser) parseAssignment(target ast.Expression) ast.Expression {
	assign := p.curToken
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	switch t := target.(type) {
	case *ast.Variable:
		return &ast.Assignment{Base: t.Base, Name: t.Name, Value: value}
	case *ast.Index:
		return &ast.IndexAssignment{Base: t.Base, Target: t.Target, Index: t.Index, Value: value}
	default:
		p.errorf(assign.Line, "invalid assignment target %s", target.String())
		return nil
	}
}

func (p *Parser) parsePrimary() ast.Expression {
	lead := p.curToken
	var left ast.Expression
	switch lead.Type { //nolint:exhaustive // all others are unexpected here.
	case token.NUMBER, token.STRING, token.BOOLEAN, token.NULL:
		left = &ast.Literal{Base: ast.At(lead), Val: lead.Value}
	case token.IDENT:
		if p.peekTokenIs(token.LPAREN) {
			p.nextToken()
			args := p.parseArguments(token.RPAREN, "after arguments of "+lead.Literal)
			if args == nil {
				return nil
			}
			left = &ast.Call{Base: ast.At(lead), Name: lead.Literal, Arguments: args}
		} else {
			left = &ast.Variable{Base: ast.At(lead), Name: lead.Literal}
		}
	case token.LBRACKET:
		elements := p.parseArguments(token.RBRACKET, "after array elements")
		if elements == nil {
			return nil
		}
		left = &ast.Array{Base: ast.At(lead), Elements: elements}
	case token.LPAREN:
		p.nextToken()
		left = p.parseExpression(LOWEST)
		if left == nil || !p.expectPeek(token.RPAREN, "to close \"(\" from line "+strconv.Itoa(lead.Line)) {
			return nil
		}
	case token.EOF:
		p.errorf(lead.Line, "expected an expression, got end of input")
		return nil
	default:
		p.errorf(lead.Line, "unexpected token %s", lead)
		return nil
	}
	return p.parsePostfix(lead, left)
}

// parsePostfix handles the [index] and .member chains binding tighter than
// any operator. lead is the token starting the whole chain.
func (p *Parser) parsePostfix(lead token.Token, left ast.Expression) ast.Expression {
	for {
		switch {
		case p.peekTokenIs(token.LBRACKET):
			p.nextToken()
			p.nextToken()
			index := p.parseExpression(LOWEST)
			if index == nil || !p.expectPeek(token.RBRACKET, "after index") {
				return nil
			}
			if p.peekTokenIs(token.ASSIGN) {
				p.nextToken()
				p.nextToken()
				value := p.parseExpression(LOWEST)
				if value == nil {
					return nil
				}
				return &ast.IndexAssignment{Base: ast.At(lead), Target: left, Index: index, Value: value}
			}
			left = &ast.Index{Base: ast.At(lead), Target: left, Index: index}
		case p.peekTokenIs(token.DOT):
			p.nextToken()
			if !p.expectPeek(token.IDENT, "after \".\"") {
				return nil
			}
			name := p.curToken.Literal
			switch {
			case p.peekTokenIs(token.LPAREN):
				p.nextToken()
				args := p.parseArguments(token.RPAREN, "after arguments of "+name)
				if args == nil {
					return nil
				}
				left = &ast.MethodCall{Base: ast.At(lead), Target: left, Method: name, Arguments: args}
			case p.peekTokenIs(token.ASSIGN):
				p.nextToken()
				p.nextToken()
				value := p.parseExpression(LOWEST)
				if value == nil {
					return nil
				}
				return &ast.PropertySet{Base: ast.At(lead), Target: left, Property: name, Value: value}
			default:
				left = &ast.PropertyAccess{Base: ast.At(lead), Target: left, Property: name}
			}
		default:
			return left
		}
	}
}

// parseArguments starts on the opening delimiter and ends on the closing one.
// Returns a non nil (possibly empty) slice on success.
func (p *Parser) parseArguments(end token.Type, context string) []ast.Expression {
	list := []ast.Expression{}
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	for {
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil
		}
		list = append(list, arg)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		p.nextToken()
	}
	if !p.expectPeek(end, context) {
		return nil
	}
	return list
}
