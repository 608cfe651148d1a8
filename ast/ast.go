// Package ast holds the abstract syntax tree produced by the parser.
// Every node remembers the line of its leading token, which is the only
// source of line information for runtime errors.
package ast

import (
	"fmt"
	"strconv"
	"strings"

	"zds.io/zds/token"
)

type Node interface {
	Line() int
	TokenLiteral() string
	String() string // normalized string representation of the expression/statement.
}

type Expression interface {
	Node
	expressionNode()
}

type Statement interface {
	Node
	statementNode()
	PrettyPrint(ps *PrintState)
}

// Common to all nodes: the leading token. Avoids repeating Line() and TokenLiteral().
type Base struct {
	token.Token
}

func (b *Base) Line() int {
	return b.Token.Line
}

func (b *Base) TokenLiteral() string {
	return b.Literal
}

// At creates the Base for a node led by tok.
func At(tok token.Token) Base {
	return Base{Token: tok}
}

type Program struct {
	Statements []Statement
}

func (p *Program) String() string {
	if len(p.Statements) == 0 {
		return "<empty>"
	}
	ps := &PrintState{Out: &strings.Builder{}}
	for _, s := range p.Statements {
		s.PrettyPrint(ps)
	}
	return strings.TrimSuffix(ps.Out.String(), "\n")
}

// Literal is a number, string, boolean or null constant.
// Val is float64, string, bool or nil (for null).
type Literal struct {
	Base
	Val any
}

func (l *Literal) String() string {
	switch v := l.Val.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

type Variable struct {
	Base
	Name string
}

func (v *Variable) String() string {
	return v.Name
}

type Assignment struct {
	Base
	Name  string
	Value Expression
}

func (a *Assignment) String() string {
	return a.Name + " = " + a.Value.String()
}

type IndexAssignment struct {
	Base
	Target Expression
	Index  Expression
	Value  Expression
}

func (ia *IndexAssignment) String() string {
	return ia.Target.String() + "[" + ia.Index.String() + "] = " + ia.Value.String()
}

type Binary struct {
	Base
	Left     Expression
	Operator token.Token
	Right    Expression
}

func (b *Binary) String() string {
	out := strings.Builder{}
	out.WriteString("(")
	out.WriteString(b.Left.String())
	out.WriteString(" ")
	out.WriteString(b.Operator.Literal)
	out.WriteString(" ")
	out.WriteString(b.Right.String())
	out.WriteString(")")
	return out.String()
}

type Call struct {
	Base
	Name      string
	Arguments []Expression
}

func (c *Call) String() string {
	out := strings.Builder{}
	out.WriteString(c.Name)
	out.WriteString("(")
	WriteStrings(&out, c.Arguments, ", ")
	out.WriteString(")")
	return out.String()
}

type Array struct {
	Base // The [ token
	Elements []Expression
}

func (a *Array) String() string {
	out := strings.Builder{}
	out.WriteString("[")
	WriteStrings(&out, a.Elements, ", ")
	out.WriteString("]")
	return out.String()
}

type Index struct {
	Base
	Target Expression
	Index  Expression
}

func (ie *Index) String() string {
	return ie.Target.String() + "[" + ie.Index.String() + "]"
}

type PropertyAccess struct {
	Base
	Target   Expression
	Property string
}

func (pa *PropertyAccess) String() string {
	return pa.Target.String() + "." + pa.Property
}

type PropertySet struct {
	Base
	Target   Expression
	Property string
	Value    Expression
}

func (ps *PropertySet) String() string {
	return ps.Target.String() + "." + ps.Property + " = " + ps.Value.String()
}

type MethodCall struct {
	Base
	Target    Expression
	Method    string
	Arguments []Expression
}

func (mc *MethodCall) String() string {
	out := strings.Builder{}
	out.WriteString(mc.Target.String())
	out.WriteString(".")
	out.WriteString(mc.Method)
	out.WriteString("(")
	WriteStrings(&out, mc.Arguments, ", ")
	out.WriteString(")")
	return out.String()
}

func WriteStrings[T fmt.Stringer](out *strings.Builder, list []T, sep string) {
	for i, p := range list {
		if i > 0 {
			out.WriteString(sep)
		}
		out.WriteString(p.String())
	}
}

func (*Literal) expressionNode() {}
func (*Variable) expressionNode() {}
func (*Assignment) expressionNode() {}
func (*IndexAssignment) expressionNode() {}
func (*Binary) expressionNode() {}
func (*Call) expressionNode() {}
func (*Array) expressionNode() {}
func (*Index) expressionNode() {}
func (*PropertyAccess) expressionNode() {}
func (*PropertySet) expressionNode() {}
func (*MethodCall) expressionNode() {}
