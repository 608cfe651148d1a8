package eval

import (
	"fortio.org/log"
	"zds.io/zds/ast"
	"zds.io/zds/object"
)

// Property and method dispatch on host objects (window, panel, timer...).

func (s *State) hostTarget(target ast.Expression) (object.Host, object.Object) {
	t := s.evalExpression(target)
	if isError(t) {
		return nil, t
	}
	h, ok := t.(object.Host)
	if !ok {
		return nil, s.Errorf("%s %s has no properties or methods", object.TypeName(t), target)
	}
	return h, nil
}

// recoverMember turns a panic in host code into an error for that member,
// the evaluator then stamps the line of the node.
func (s *State) recoverMember(h object.Host, name string, res *object.Object) {
	if r := recover(); r != nil {
		log.LogVf("panic in %s.%s: %v", h.Kind(), name, r)
		*res = s.Errorf("%s.%s: %v", h.Kind(), name, r)
	}
}

func (s *State) unknownMember(h object.Host, what, name string) object.Error {
	return s.Errorf("%s has no %s '%s'%s", h.Kind(), what, name, suggest(name, h.Members()))
}

func (s *State) evalPropertyAccess(node *ast.PropertyAccess) (res object.Object) {
	h, oerr := s.hostTarget(node.Target)
	if oerr != nil {
		return oerr
	}
	defer s.recoverMember(h, node.Property, &res)
	if g, ok := h.(object.PropertyGetter); ok {
		if v := g.GetProperty(node.Property); v != nil {
			return v
		}
	}
	return s.unknownMember(h, "property", node.Property)
}

func (s *State) evalPropertySet(node *ast.PropertySet) (res object.Object) {
	h, oerr := s.hostTarget(node.Target)
	if oerr != nil {
		return oerr
	}
	setter, ok := h.(object.PropertySetter)
	if !ok {
		return s.unknownMember(h, "property", node.Property)
	}
	val := s.evalExpression(node.Value)
	if isError(val) {
		return val
	}
	defer s.recoverMember(h, node.Property, &res)
	res = setter.SetProperty(node.Property, val)
	if res == nil {
		return s.unknownMember(h, "property", node.Property)
	}
	return res
}

func (s *State) evalMethodCall(node *ast.MethodCall) (res object.Object) {
	h, oerr := s.hostTarget(node.Target)
	if oerr != nil {
		return oerr
	}
	caller, ok := h.(object.MethodCaller)
	if !ok {
		return s.unknownMember(h, "method", node.Method)
	}
	args, oerr := s.evalExpressions(node.Arguments)
	if oerr != nil {
		return oerr
	}
	defer s.recoverMember(h, node.Method, &res)
	res = caller.CallMethod(s, node.Method, args)
	if res == nil {
		return s.unknownMember(h, "method", node.Method)
	}
	return res
}
