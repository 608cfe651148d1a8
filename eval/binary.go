package eval

import (
	"zds.io/zds/ast"
	"zds.io/zds/object"
	"zds.io/zds/token"
)

// Both operands are always evaluated, left first, including for and/or.
func (s *State) evalBinary(node *ast.Binary) object.Object {
	left := s.evalExpression(node.Left)
	if isError(left) {
		return left
	}
	right := s.evalExpression(node.Right)
	if isError(right) {
		return right
	}
	op := node.Operator
	switch op.Type { //nolint:exhaustive // default covers the non operators.
	case token.PLUS:
		return s.evalPlus(op, left, right)
	case token.MINUS, token.ASTERISK, token.SLASH:
		l, r, oerr := s.numbers(op, left, right)
		if oerr != nil {
			return oerr
		}
		return object.Number{Value: arithmetic(op.Type, l, r)}
	case token.EQ:
		return object.NativeBoolToBooleanObject(object.Equals(left, right))
	case token.NOTEQ:
		return object.NativeBoolToBooleanObject(!object.Equals(left, right))
	case token.AND, token.OR:
		l, lok := left.(object.Boolean)
		r, rok := right.(object.Boolean)
		if !lok || !rok {
			return s.Errorf("operands of %s must be booleans, got %s and %s",
				op.Literal, object.TypeName(left), object.TypeName(right))
		}
		if op.Type == token.AND {
			return object.NativeBoolToBooleanObject(l.Value && r.Value)
		}
		return object.NativeBoolToBooleanObject(l.Value || r.Value)
	case token.LT, token.GT, token.LTEQ, token.GTEQ:
		l, r, oerr := s.numbers(op, left, right)
		if oerr != nil {
			return oerr
		}
		return object.NativeBoolToBooleanObject(compare(op.Type, l, r))
	default:
		return s.Errorf("unknown operator %s", op.Literal)
	}
}

// evalPlus adds numbers or concatenates when either side is a string.
func (s *State) evalPlus(op token.Token, left, right object.Object) object.Object {
	l, lok := left.(object.Number)
	r, rok := right.(object.Number)
	if lok && rok {
		return object.Number{Value: l.Value + r.Value}
	}
	if left.Type() == object.STRING || right.Type() == object.STRING {
		return object.String{Value: left.Inspect() + right.Inspect()}
	}
	return s.Errorf("invalid operands for %s: %s and %s", op.Literal, object.TypeName(left), object.TypeName(right))
}

func (s *State) numbers(op token.Token, left, right object.Object) (float64, float64, object.Object) {
	l, lok := left.(object.Number)
	r, rok := right.(object.Number)
	if !lok || !rok {
		return 0, 0, s.Errorf("operands of %s must be numbers, got %s and %s",
			op.Literal, object.TypeName(left), object.TypeName(right))
	}
	return l.Value, r.Value, nil
}

func arithmetic(t token.Type, l, r float64) float64 {
	switch t { //nolint:exhaustive // only called for - * /.
	case token.MINUS:
		return l - r
	case token.ASTERISK:
		return l * r
	default:
		if r == 0 {
			return 0 // x/0 is 0 in this language, not Inf.
		}
		return l / r
	}
}

func compare(t token.Type, l, r float64) bool {
	switch t { //nolint:exhaustive // only called for comparisons.
	case token.LT:
		return l < r
	case token.GT:
		return l > r
	case token.LTEQ:
		return l <= r
	default:
		return l >= r
	}
}
