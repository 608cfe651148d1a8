package parser

import (
	"zds.io/zds/ast"
	"zds.io/zds/token"
)

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type { //nolint:exhaustive // everything else is an expression.
	case token.FUNCTION:
		return p.parseFunctionDeclaration()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.RETURN:
		return p.parseReturn()
	default:
		expr := p.parseExpression(LOWEST)
		if expr == nil {
			return nil
		}
		return ast.NewExpressionStatement(expr)
	}
}

// parseBlock starts on the token before the block and returns with curToken
// on the terminating "end" (or "else" when allowElse is set).
func (p *Parser) parseBlock(opener token.Token, allowElse bool) []ast.Statement {
	stmts := []ast.Statement{}
	p.nextToken()
	for !p.curTokenIs(token.END) && (!allowElse || !p.curTokenIs(token.ELSE)) {
		if p.curTokenIs(token.EOF) {
			p.errorf(p.curToken.Line, "expected \"end\" to close %q block from line %d, got %s",
				opener.Literal, opener.Line, p.curToken)
			return nil
		}
		stmt := p.parseStatement()
		if p.err != nil {
			return nil
		}
		stmts = append(stmts, stmt)
		p.nextToken()
	}
	return stmts
}

func (p *Parser) parseFunctionDeclaration() ast.Statement {
	fn := &ast.FunctionDeclaration{StmtBase: ast.StmtAt(p.curToken)}
	if !p.expectPeek(token.IDENT, "for the function name") {
		return nil
	}
	fn.Name = p.curToken.Literal
	if !p.expectPeek(token.LPAREN, "after function name") {
		return nil
	}
	fn.Parameters = []string{}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
	} else {
		for {
			if !p.expectPeek(token.IDENT, "for parameter name") {
				return nil
			}
			fn.Parameters = append(fn.Parameters, p.curToken.Literal)
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
		}
		if !p.expectPeek(token.RPAREN, "after parameters") {
			return nil
		}
	}
	fn.Body = p.parseBlock(fn.Token, false)
	if p.err != nil {
		return nil
	}
	return fn
}

func (p *Parser) parseIf() ast.Statement {
	is := &ast.If{StmtBase: ast.StmtAt(p.curToken)}
	p.nextToken()
	is.Condition = p.parseExpression(LOWEST)
	if is.Condition == nil || !p.expectPeek(token.THEN, "after if condition") {
		return nil
	}
	is.Then = p.parseBlock(is.Token, true)
	if p.err != nil {
		return nil
	}
	if p.curTokenIs(token.ELSE) {
		is.Else = p.parseBlock(p.curToken, false)
		if p.err != nil {
			return nil
		}
	}
	return is
}

func (p *Parser) parseWhile() ast.Statement {
	ws := &ast.While{StmtBase: ast.StmtAt(p.curToken)}
	p.nextToken()
	ws.Condition = p.parseExpression(LOWEST)
	if ws.Condition == nil || !p.expectPeek(token.THEN, "after while condition") {
		return nil
	}
	ws.Body = p.parseBlock(ws.Token, false)
	if p.err != nil {
		return nil
	}
	return ws
}

// for <var> = <start> to <end> [step <step>] then ... end.
func (p *Parser) parseFor() ast.Statement {
	fs := &ast.For{StmtBase: ast.StmtAt(p.curToken)}
	if !p.expectPeek(token.IDENT, "for the loop variable") {
		return nil
	}
	fs.Variable = p.curToken.Literal
	if !p.expectPeek(token.ASSIGN, "after loop variable") {
		return nil
	}
	p.nextToken()
	// Bounds and step are not assignments.
	if fs.Start = p.parseExpression(ASSIGN); fs.Start == nil {
		return nil
	}
	if !p.expectPeek(token.TO, "after the start value") {
		return nil
	}
	p.nextToken()
	if fs.End = p.parseExpression(ASSIGN); fs.End == nil {
		return nil
	}
	if p.peekTokenIs(token.STEP) {
		p.nextToken()
		p.nextToken()
		if fs.Step = p.parseExpression(ASSIGN); fs.Step == nil {
			return nil
		}
	}
	if !p.expectPeek(token.THEN, "after for loop declaration") {
		return nil
	}
	fs.Body = p.parseBlock(fs.Token, false)
	if p.err != nil {
		return nil
	}
	return fs
}

func (p *Parser) parseReturn() ast.Statement {
	rs := &ast.Return{StmtBase: ast.StmtAt(p.curToken)}
	if p.peekTokenIs(token.END) || p.peekTokenIs(token.ELSE) || p.peekTokenIs(token.EOF) {
		return rs
	}
	p.nextToken()
	rs.Value = p.parseExpression(LOWEST)
	if rs.Value == nil {
		return nil
	}
	return rs
}
