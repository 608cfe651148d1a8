// Package object is the runtime value model: the closed set of values a
// script manipulates, the scope chain and the native function registry.
package object

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"zds.io/zds/ast"
)

type Type uint8

type Object interface {
	Type() Type
	Inspect() string
}

const (
	UNKNOWN Type = iota
	NUMBER
	STRING
	BOOLEAN
	NIL
	ARRAY
	FUNC
	NATIVE
	HOST
	ERROR
	RETURN
	ANY // only for Extension.ArgTypes: no check.
	LAST
)

var typeNames = [...]string{
	UNKNOWN: "unknown",
	NUMBER:  "number",
	STRING:  "string",
	BOOLEAN: "boolean",
	NIL:     "null",
	ARRAY:   "array",
	FUNC:    "function",
	NATIVE:  "nativefunction",
	HOST:    "host",
	ERROR:   "error",
	RETURN:  "return",
	ANY:     "any",
	LAST:    "last",
}

// String is the lowercase name also returned by typeOf().
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Type(" + strconv.Itoa(int(t)) + ")"
}

// Article prefixes the type name with "a" or "an", for error messages.
func Article(t Type) string {
	name := t.String()
	if strings.ContainsRune("aeiou", rune(name[0])) {
		return "an " + name
	}
	return "a " + name
}

var (
	NULL  = Null{}
	TRUE  = Boolean{Value: true}
	FALSE = Boolean{Value: false}
)

func NativeBoolToBooleanObject(input bool) Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

// Truthy: only false and null are false.
func Truthy(o Object) bool {
	switch o := o.(type) {
	case Null:
		return false
	case Boolean:
		return o.Value
	default:
		return true
	}
}

// TypeName is what typeOf() returns: host values report their kind.
func TypeName(o Object) string {
	if h, ok := o.(Host); ok {
		return h.Kind()
	}
	return o.Type().String()
}

// Equals compares scalars by value, everything else (arrays, functions,
// host objects) by identity.
func Equals(left, right Object) bool {
	if left.Type() != right.Type() {
		return false
	}
	switch left := left.(type) {
	case Number:
		return left.Value == right.(Number).Value
	case String:
		return left.Value == right.(String).Value
	case Boolean:
		return left.Value == right.(Boolean).Value
	case Null:
		return true
	case *Array:
		return left == right.(*Array)
	case *Function:
		return left == right.(*Function)
	case *Extension:
		return left == right.(*Extension)
	case Host:
		return left == right
	default: // ERROR RETURN
		return false
	}
}

// FormatNumber is the number to text rule used by print and concatenation:
// integral values have no decimal point, others use the shortest
// representation that round trips, exponent form from 1e21 on.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0" // no "-0".
	case math.Abs(v) >= 1e21:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}

type Number struct {
	Value float64
}

func (n Number) Type() Type      { return NUMBER }
func (n Number) Inspect() string { return FormatNumber(n.Value) }

type Boolean struct {
	Value bool
}

func (b Boolean) Type() Type      { return BOOLEAN }
func (b Boolean) Inspect() string { return strconv.FormatBool(b.Value) }

// String values display without quotes.
type String struct {
	Value string
}

func (s String) Type() Type      { return STRING }
func (s String) Inspect() string { return s.Value }

type Null struct{}

func (n Null) Type() Type      { return NIL }
func (n Null) Inspect() string { return "null" }

// Error is a RuntimeError. Line 0 means not yet attributed to a source line;
// the evaluator stamps it with the innermost node that sees it.
type Error struct {
	Value string // message
	Line  int
	Stack []string // function names, innermost first.
}

func (e Error) Type() Type      { return ERROR }
func (e Error) Inspect() string { return "<err: " + e.Value + ">" }

func (e Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d)", e.Value, e.Line)
	}
	return e.Value
}

// Errorf creates an Error with no line, to be stamped by the evaluator.
func Errorf(format string, args ...any) Error {
	return Error{Value: fmt.Sprintf(format, args...)}
}

// ReturnValue is the control result of a return statement, it unwinds to the
// nearest function call (or ends the program at the top level).
type ReturnValue struct {
	Value Object
}

func (rv ReturnValue) Type() Type      { return RETURN }
func (rv ReturnValue) Inspect() string { return rv.Value.Inspect() }

// Function is a closure: it keeps the environment it was declared in.
type Function struct {
	Name       string
	Parameters []string
	Body       []ast.Statement
	Env        *Environment
}

func (f *Function) Type() Type { return FUNC }

func (f *Function) Inspect() string {
	return f.Name + "(" + strings.Join(f.Parameters, ", ") + ")"
}

// Array is shared by reference: all bindings see mutations.
type Array struct {
	Elements []Object
}

func NewArray(elements []Object) *Array {
	return &Array{Elements: elements}
}

func (ao *Array) Type() Type { return ARRAY }

func (ao *Array) Inspect() string {
	out := strings.Builder{}
	WriteStrings(&out, ao.Elements, "[", ", ", "]")
	return out.String()
}

func WriteStrings(out *strings.Builder, list []Object, before, sep, after string) {
	out.WriteString(before)
	for i, p := range list {
		if i > 0 {
			out.WriteString(sep)
		}
		out.WriteString(p.Inspect())
	}
	out.WriteString(after)
}

// Concat joins the display form of all the values, as print does.
func Concat(list []Object) string {
	out := strings.Builder{}
	WriteStrings(&out, list, "", "", "")
	return out.String()
}
