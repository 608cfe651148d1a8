package ast

import (
	"strings"

	"zds.io/zds/token"
)

// PrintState carries the indentation while pretty printing statements.
type PrintState struct {
	Out         *strings.Builder
	IndentLevel int
}

func (ps *PrintState) line(s string) {
	for range ps.IndentLevel {
		ps.Out.WriteString("  ")
	}
	ps.Out.WriteString(s)
	ps.Out.WriteString("\n")
}

func (ps *PrintState) block(stmts []Statement) {
	ps.IndentLevel++
	for _, s := range stmts {
		s.PrettyPrint(ps)
	}
	ps.IndentLevel--
}

func statementString(s Statement) string {
	ps := &PrintState{Out: &strings.Builder{}}
	s.PrettyPrint(ps)
	return strings.TrimSuffix(ps.Out.String(), "\n")
}

// StmtBase is embedded by all statements.
type StmtBase struct {
	Base
}

func (s *StmtBase) statementNode() {}

// StmtAt creates the StmtBase for a statement led by tok.
func StmtAt(tok token.Token) StmtBase {
	return StmtBase{Base: At(tok)}
}

type ExpressionStatement struct {
	StmtBase
	Val Expression
}

// NewExpressionStatement wraps e, keeping its line.
func NewExpressionStatement(e Expression) *ExpressionStatement {
	es := &ExpressionStatement{Val: e}
	es.Token.Line = e.Line()
	es.Token.Literal = e.TokenLiteral()
	return es
}

func (es *ExpressionStatement) String() string         { return es.Val.String() }
func (es *ExpressionStatement) PrettyPrint(ps *PrintState) { ps.line(es.Val.String()) }

type FunctionDeclaration struct {
	StmtBase   // The 'function' token
	Name       string
	Parameters []string
	Body       []Statement
}

func (fd *FunctionDeclaration) Signature() string {
	return fd.Name + "(" + strings.Join(fd.Parameters, ", ") + ")"
}

func (fd *FunctionDeclaration) String() string { return statementString(fd) }

func (fd *FunctionDeclaration) PrettyPrint(ps *PrintState) {
	ps.line("function " + fd.Signature())
	ps.block(fd.Body)
	ps.line("end")
}

type If struct {
	StmtBase
	Condition Expression
	Then      []Statement
	Else      []Statement // nil when there is no else branch.
}

func (is *If) String() string { return statementString(is) }

func (is *If) PrettyPrint(ps *PrintState) {
	ps.line("if " + is.Condition.String() + " then")
	ps.block(is.Then)
	if is.Else != nil {
		ps.line("else")
		ps.block(is.Else)
	}
	ps.line("end")
}

type While struct {
	StmtBase
	Condition Expression
	Body      []Statement
}

func (ws *While) String() string { return statementString(ws) }

func (ws *While) PrettyPrint(ps *PrintState) {
	ps.line("while " + ws.Condition.String() + " then")
	ps.block(ws.Body)
	ps.line("end")
}

type For struct {
	StmtBase
	Variable string
	Start    Expression
	End      Expression
	Step     Expression // nil means 1.
	Body     []Statement
}

func (fs *For) String() string { return statementString(fs) }

func (fs *For) PrettyPrint(ps *PrintState) {
	head := "for " + fs.Variable + " = " + fs.Start.String() + " to " + fs.End.String()
	if fs.Step != nil {
		head += " step " + fs.Step.String()
	}
	ps.line(head + " then")
	ps.block(fs.Body)
	ps.line("end")
}

type Return struct {
	StmtBase
	Value Expression // nil for a bare return.
}

func (rs *Return) String() string { return statementString(rs) }

func (rs *Return) PrettyPrint(ps *PrintState) {
	if rs.Value == nil {
		ps.line("return")
		return
	}
	ps.line("return " + rs.Value.String())
}
