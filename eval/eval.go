// Package eval is the tree walking interpreter.
package eval

import (
	"fortio.org/log"
	"zds.io/zds/ast"
	"zds.io/zds/object"
)

// evalStatements stops at the first return or error and hands it up.
func (s *State) evalStatements(stmts []ast.Statement) object.Object {
	var result object.Object = object.NULL // no crash when empty program.
	for _, statement := range stmts {
		result = s.evalStatement(statement)
		switch result.(type) {
		case object.ReturnValue, object.Error:
			return result
		}
	}
	return result
}

func (s *State) evalStatement(node ast.Statement) object.Object {
	res := s.evalStatementInternal(node)
	return s.stamp(res, node.Line())
}

// stamp gives a line to errors that don't have one yet: the innermost node
// seeing the error wins, errors with a line go up unchanged.
func (s *State) stamp(res object.Object, line int) object.Object {
	if err, ok := res.(object.Error); ok && err.Line == 0 {
		err.Line = line
		if err.Stack == nil {
			err.Stack = s.Stack()
		}
		return err
	}
	return res
}

func (s *State) evalStatementInternal(node ast.Statement) object.Object {
	log.Debugf("evalStatement line %d: %s", node.Line(), node)
	switch node := node.(type) {
	case *ast.ExpressionStatement:
		return s.evalExpression(node.Val)
	case *ast.FunctionDeclaration:
		fn := &object.Function{
			Name:       node.Name,
			Parameters: node.Parameters,
			Body:       node.Body,
			Env:        s.env,
		}
		s.env.Define(node.Name, fn)
		return fn
	case *ast.If:
		cond := s.evalExpression(node.Condition)
		if isError(cond) {
			return cond
		}
		if object.Truthy(cond) {
			return s.evalStatements(node.Then)
		}
		if node.Else != nil {
			return s.evalStatements(node.Else)
		}
		return object.NULL
	case *ast.While:
		return s.evalWhile(node)
	case *ast.For:
		return s.evalFor(node)
	case *ast.Return:
		if node.Value == nil {
			return object.ReturnValue{Value: object.NULL}
		}
		val := s.evalExpression(node.Value)
		if isError(val) {
			return val
		}
		return object.ReturnValue{Value: val}
	default:
		return s.Errorf("unknown statement type: %T", node)
	}
}

func (s *State) evalWhile(node *ast.While) object.Object {
	var result object.Object = object.NULL
	for {
		cond := s.evalExpression(node.Condition)
		if isError(cond) {
			return cond
		}
		if !object.Truthy(cond) {
			return result
		}
		result = s.evalStatements(node.Body)
		switch result.(type) {
		case object.ReturnValue, object.Error:
			return result
		}
	}
}

func (s *State) loopBound(what string, expr ast.Expression) (int, object.Object) {
	v := s.evalExpression(expr)
	if isError(v) {
		return 0, v
	}
	n, ok := v.(object.Number)
	if !ok {
		return 0, s.stamp(s.Errorf("for: %s must be a number, got %s", what, object.TypeName(v)), expr.Line())
	}
	i, err := object.ToInt(n.Value)
	if err != nil {
		return 0, s.stamp(s.Errorf("for: invalid %s %s: %v", what, n.Inspect(), err), expr.Line())
	}
	return i, nil
}

// evalFor: bounds and step are evaluated once, the loop variable lives in
// the current scope and its previous binding there is restored afterwards.
func (s *State) evalFor(node *ast.For) object.Object {
	start, oerr := s.loopBound("start value", node.Start)
	if oerr != nil {
		return oerr
	}
	end, oerr := s.loopBound("end value", node.End)
	if oerr != nil {
		return oerr
	}
	step := 1
	if node.Step != nil {
		step, oerr = s.loopBound("step", node.Step)
		if oerr != nil {
			return oerr
		}
	}
	if step == 0 {
		return s.Errorf("for: step cannot be 0")
	}
	env := s.env
	prev, hadPrev := env.GetLocal(node.Variable)
	defer func() {
		if hadPrev {
			env.Define(node.Variable, prev)
		} else {
			env.Delete(node.Variable)
		}
	}()
	var result object.Object = object.NULL
	for i := start; (step > 0 && i <= end) || (step < 0 && i >= end); i += step {
		env.Define(node.Variable, object.Number{Value: float64(i)})
		result = s.evalStatements(node.Body)
		switch result.(type) {
		case object.ReturnValue, object.Error:
			return result
		}
	}
	return result
}

func isError(o object.Object) bool {
	_, ok := o.(object.Error)
	return ok
}

func (s *State) evalExpression(node ast.Expression) object.Object {
	res := s.evalExpressionInternal(node)
	return s.stamp(res, node.Line())
}

func (s *State) evalExpressionInternal(node ast.Expression) object.Object { //nolint:funlen,gocyclo // one case per node type.
	switch node := node.(type) {
	case *ast.Literal:
		return literal(node.Val)
	case *ast.Variable:
		val, ok := s.env.Get(node.Name)
		if !ok {
			return s.Errorf("undefined variable '%s'%s", node.Name, suggest(node.Name, s.env.Names()))
		}
		return val
	case *ast.Assignment:
		val := s.evalExpression(node.Value)
		if isError(val) {
			return val
		}
		log.Debugf("assign %s = %s", node.Name, val.Inspect())
		return s.env.Assign(node.Name, val)
	case *ast.Binary:
		return s.evalBinary(node)
	case *ast.Call:
		return s.evalCall(node)
	case *ast.Array:
		elements, oerr := s.evalExpressions(node.Elements)
		if oerr != nil {
			return oerr
		}
		return object.NewArray(elements)
	case *ast.Index:
		return s.evalIndex(node)
	case *ast.IndexAssignment:
		return s.evalIndexAssignment(node)
	case *ast.PropertyAccess:
		return s.evalPropertyAccess(node)
	case *ast.PropertySet:
		return s.evalPropertySet(node)
	case *ast.MethodCall:
		return s.evalMethodCall(node)
	default:
		return s.Errorf("unknown expression type: %T", node)
	}
}

func literal(v any) object.Object {
	switch v := v.(type) {
	case float64:
		return object.Number{Value: v}
	case string:
		return object.String{Value: v}
	case bool:
		return object.NativeBoolToBooleanObject(v)
	default:
		return object.NULL
	}
}

// evalExpressions evaluates left to right, stopping at the first error.
func (s *State) evalExpressions(exps []ast.Expression) ([]object.Object, object.Object) {
	result, err := object.MakeObjectSlice(len(exps))
	if err != nil {
		return nil, s.Error(err.Error())
	}
	for _, e := range exps {
		evaluated := s.evalExpression(e)
		if isError(evaluated) {
			return nil, evaluated
		}
		result = append(result, evaluated)
	}
	return result, nil
}

func (s *State) evalCall(node *ast.Call) object.Object {
	fn, ok := s.env.Get(node.Name)
	if !ok {
		return s.Errorf("undefined function '%s'%s", node.Name, suggest(node.Name, s.env.Names()))
	}
	switch fn.(type) {
	case *object.Function, *object.Extension:
	default:
		return s.Errorf("'%s' is not a function, it is a %s", node.Name, object.TypeName(fn))
	}
	args, oerr := s.evalExpressions(node.Arguments)
	if oerr != nil {
		return oerr
	}
	return s.CallFunction(fn, args)
}

func (s *State) arrayIndex(node ast.Expression, target ast.Expression, index ast.Expression) (*object.Array, int, object.Object) {
	t := s.evalExpression(target)
	if isError(t) {
		return nil, 0, t
	}
	arr, ok := t.(*object.Array)
	if !ok {
		return nil, 0, s.Errorf("cannot index %s %s", object.TypeName(t), target)
	}
	idx := s.evalExpression(index)
	if isError(idx) {
		return nil, 0, idx
	}
	n, ok := idx.(object.Number)
	if !ok {
		return nil, 0, s.stamp(s.Errorf("array index must be a number, got %s", object.TypeName(idx)), index.Line())
	}
	i, err := object.ToInt(n.Value)
	if err != nil || i < 0 || i >= len(arr.Elements) {
		log.Debugf("index %s out of bounds at %s", n.Inspect(), node)
		return nil, 0, s.stamp(s.Errorf("index %s out of bounds for array of length %d", n.Inspect(), len(arr.Elements)),
			index.Line())
	}
	return arr, i, nil
}

func (s *State) evalIndex(node *ast.Index) object.Object {
	arr, i, oerr := s.arrayIndex(node, node.Target, node.Index)
	if oerr != nil {
		return oerr
	}
	return arr.Elements[i]
}

func (s *State) evalIndexAssignment(node *ast.IndexAssignment) object.Object {
	arr, i, oerr := s.arrayIndex(node, node.Target, node.Index)
	if oerr != nil {
		return oerr
	}
	val := s.evalExpression(node.Value)
	if isError(val) {
		return val
	}
	arr.Elements[i] = val
	return val
}
