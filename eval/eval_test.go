package eval_test

import (
	"context"
	"os"
	"slices"
	"strings"
	"testing"
	"time"

	"zds.io/zds/eval"
	"zds.io/zds/extensions"
	"zds.io/zds/object"
	"zds.io/zds/parser"
)

func TestMain(m *testing.M) {
	err := object.CreateFunction(object.Extension{
		Name:     "boom",
		MinArgs:  0,
		MaxArgs:  0,
		Callback: func(_ any, _ string, _ []object.Object) object.Object { panic("kaboom") },
	})
	if err != nil {
		panic(err)
	}
	err = object.CreateFunction(object.Extension{
		Name:     "flaky",
		MinArgs:  0,
		MaxArgs:  0,
		Callback: func(_ any, _ string, _ []object.Object) object.Object { return flakyHost{} },
	})
	if err != nil {
		panic(err)
	}
	if err = extensions.Init(nil); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// flakyHost panics in its members, except Bad which returns a broken value.
type flakyHost struct{}

func (flakyHost) Type() object.Type { return object.HOST }
func (flakyHost) Inspect() string   { return "[Flaky Object]" }
func (flakyHost) Kind() string      { return "flaky" }
func (flakyHost) Members() []string { return []string{"Bad", "Value", "Do"} }

func (flakyHost) GetProperty(name string) object.Object {
	if name == "Bad" {
		return brokenObject{}
	}
	panic("get " + name)
}

func (flakyHost) SetProperty(name string, _ object.Object) object.Object {
	panic("set " + name)
}

func (flakyHost) CallMethod(_ any, name string, _ []object.Object) object.Object {
	panic("call " + name)
}

// brokenObject makes the evaluator itself panic when used as an operand.
type brokenObject struct{}

func (brokenObject) Type() object.Type { panic("broken object") }
func (brokenObject) Inspect() string   { return "broken" }

func testEvalState(t *testing.T, input string) (*eval.State, object.Object, string) {
	t.Helper()
	program, err := parser.ParseString(input)
	if err != nil {
		t.Fatalf("parse error for %q: %v", input, err)
	}
	s := eval.NewState()
	out := &strings.Builder{}
	s.Out = out
	res := s.Eval(program)
	return s, res, out.String()
}

func testEval(t *testing.T, input string) object.Object {
	t.Helper()
	_, res, _ := testEvalState(t, input)
	return res
}

func testOutput(t *testing.T, input string) string {
	t.Helper()
	_, res, out := testEvalState(t, input)
	if err, ok := res.(object.Error); ok {
		t.Errorf("unexpected error for %q: %v", input, err)
	}
	return out
}

func testNumberObject(t *testing.T, obj object.Object, expected float64) bool {
	t.Helper()
	result, ok := obj.(object.Number)
	if !ok {
		t.Errorf("object is not Number. got=%T (%+v)", obj, obj)
		return false
	}
	if result.Value != expected {
		t.Errorf("object has wrong value. got=%v, want=%v", result.Value, expected)
		return false
	}
	return true
}

func TestEvalNumberExpression(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"5 // is 5", 5},
		{"-5", -5},
		{"5 + 5 + 5 + 5 - 10", 10},
		{"5 -3", 2},
		{"2 * 2 * 2 * 2 * 2", 32},
		{"-50 + 100 + -50", 0},
		{"5 + 2 * 10", 25},
		{"20 + 2 * -10", 0},
		{"50 / 2 * 2 + 10", 60},
		{"2 * (5 + 10)", 30},
		{"(5 + 10 * 2 + 15 / 3) * 2 + -10", 50},
		{"10 / 4", 2.5},
		{"7 / 0", 0},
		{"x = 3\nx = x * x\nx", 9},
		{"function fact(n)\nif n <= 1 then\nreturn 1\nend\nreturn n * fact(n - 1)\nend\nfact(5)", 120},
	}
	for i, tt := range tests {
		evaluated := testEval(t, tt.input)
		if !testNumberObject(t, evaluated, tt.expected) {
			t.Logf("test %d input: %q", i, tt.input)
		}
	}
}

func TestEvalBooleanExpression(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"true", true},
		{"1 < 2", true},
		{"1 >= 2", false},
		{"2 <= 2", true},
		{"1 == 1", true},
		{"1 != 1", false},
		{`"a" == "a"`, true},
		{`"1" == 1`, false},
		{"null == null", true},
		{"null == false", false},
		{"[1] == [1]", false},
		{"a = [1]\na == a", true},
		{"print == print", true},
		{"true and false", false},
		{"true or false", true},
		{"1 < 2 and 2 < 3", true},
		{"1 + 1 == 2 or false", true},
	}
	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		b, ok := evaluated.(object.Boolean)
		if !ok || b.Value != tt.expected {
			t.Errorf("%q: got %s, want %v", tt.input, evaluated.Inspect(), tt.expected)
		}
	}
}

func TestPrintFormatting(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"print(3)", "3\n"},
		{"print(2.5)", "2.5\n"},
		{"print(0.1)", "0.1\n"},
		{"print(1/0)", "0\n"},
		{"print(1e21)", "1e+21\n"},
		{"print(sqrt(-1 * -4))", "2\n"},
		{`print("a" + 1 + 2)`, "a12\n"},
		{`print(1 + 2 + "a")`, "3a\n"},
		{`print("v: " + true + " " + null)`, "v: true null\n"},
		{`print("a" + [1, "b"])`, "a[1, b]\n"},
		{"print(true, false, null)", "truefalsenull\n"},
		{"function add(a, b)\nreturn a + b\nend\nprint(add)", "add(a, b)\n"},
		{"print(print)", "<native print>\n"},
		{`print("tab\there \"q\"")`, "tab\there \"q\"\n"},
		{"print(1) // comment", "1\n"},
	}
	for _, tt := range tests {
		if got := testOutput(t, tt.input); got != tt.expected {
			t.Errorf("%q: got %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestControlFlow(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"for i = 1 to 5 step 2 then\nprint(i)\nend", "1\n3\n5\n"},
		{"for i = 3 to 1 step -1 then\nprint(i)\nend", "3\n2\n1\n"},
		{"for i = 1 to 0 then\nprint(i)\nend\nprint(\"none\")", "none\n"},
		{"for i = 1.9 to 3.2 then\nprint(i)\nend", "1\n2\n3\n"},
		{"i = 10\nfor i = 1 to 2 then\nend\nprint(i)", "10\n"},
		{"n = 3\nfor i = 1 to n then\nn = 1\nend\nprint(i == null)", ""},
		{"i = 0\nwhile i < 3 then\ni = i + 1\nend\nprint(i)", "3\n"},
		{"if 1 > 2 then\nprint(\"a\")\nelse\nprint(\"b\")\nend", "b\n"},
		{"if 0 then\nprint(\"zero is true\")\nend", "zero is true\n"},
		{"if null then\nprint(\"x\")\nend\nprint(\"y\")", "y\n"},
		{"if true then\nz = 1\nend\nprint(z)", "1\n"},
		{"function f()\nend\nprint(f())", "null\n"},
		{"function f()\nreturn\nend\nprint(f())", "null\n"},
		{"function f(x)\nwhile true then\nif x > 2 then\nreturn x\nend\nx = x + 1\nend\nend\nprint(f(0))", "3\n"},
		{"function f()\nfor i = 1 to 10 then\nif i == 4 then\nreturn i\nend\nend\nend\nprint(f())", "4\n"},
	}
	for _, tt := range tests {
		_, res, out := testEvalState(t, tt.input)
		if tt.expected == "" {
			// loop variable is gone after the loop.
			err, ok := res.(object.Error)
			if !ok || !strings.HasPrefix(err.Value, "undefined variable 'i'") {
				t.Errorf("%q: expected undefined i, got %s", tt.input, res.Inspect())
			}
			continue
		}
		if err, ok := res.(object.Error); ok {
			t.Errorf("%q: unexpected error %v", tt.input, err)
		}
		if out != tt.expected {
			t.Errorf("%q: got %q, want %q", tt.input, out, tt.expected)
		}
	}
}

func TestForLeavesVariableUnbound(t *testing.T) {
	s, res, out := testEvalState(t, "for i = 1 to 5 step 2 then\nprint(i)\nend")
	if isErr(res) || out != "1\n3\n5\n" {
		t.Fatalf("got %q, %s", out, res.Inspect())
	}
	if _, ok := s.Env().Get("i"); ok {
		t.Errorf("i should not be bound after the loop")
	}
}

func isErr(o object.Object) bool {
	_, ok := o.(object.Error)
	return ok
}

func TestUnterminatedString(t *testing.T) {
	res := testEval(t, `x = "abc`)
	if s, ok := res.(object.String); !ok || s.Value != "abc" {
		t.Errorf("unterminated string should keep its content, got %#v", res)
	}
}

func TestTopLevelReturn(t *testing.T) {
	_, res, out := testEvalState(t, "return 5\nprint(\"no\")")
	testNumberObject(t, res, 5)
	if out != "" {
		t.Errorf("nothing should run after a top level return, got %q", out)
	}
}

func TestAssignmentScoping(t *testing.T) {
	// Assignment updates the nearest scope that binds the name and only
	// creates a new variable in the current scope otherwise.
	input := `
x = 1
function setX()
  x = 2
end
setX()
print(x)
function local()
  y = 5
  return y
end
print(local())
function param(x)
  x = 7
  return x
end
print(param(0), " ", x)
y`
	_, res, out := testEvalState(t, input)
	if out != "2\n5\n7 2\n" {
		t.Errorf("output got %q", out)
	}
	err, ok := res.(object.Error)
	if !ok || !strings.HasPrefix(err.Value, "undefined variable 'y'") || err.Line != 18 {
		t.Errorf("y should not leak out of local(), got %s line %d", res.Inspect(), err.Line)
	}
}

func TestClosures(t *testing.T) {
	input := `
function makeCounter()
  count = 0
  function inc()
    count = count + 1
    return count
  end
  return inc
end
c = makeCounter()
d = makeCounter()
c()
c()
d()
print(c(), " ", d())`
	if got := testOutput(t, input); got != "3 2\n" {
		t.Errorf("closures got %q", got)
	}
}

func TestArrays(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a = [1, 2, 3]\na[1] = 9\nprint(a)", "[1, 9, 3]\n"},
		{"a = [1, 2, 3]\nprint(a[1.7])", "2\n"},
		{"a = [[1, 2], [3]]\na[0][1] = 5\nprint(a, a[1][0])", "[[1, 5], [3]]3\n"},
		{"a = [1]\nb = a\nb[0] = 2\nprint(a)", "[2]\n"},
		{"a = [1]\nb = a\ninsert(b, 2)\nprint(a, length(a))", "[1, 2]2\n"},
		{"function add(arr)\ninsert(arr, 3)\nend\na = []\nadd(a)\nprint(a)", "[3]\n"},
		{"print([])", "[]\n"},
	}
	for _, tt := range tests {
		if got := testOutput(t, tt.input); got != tt.expected {
			t.Errorf("%q: got %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestErrorHandling(t *testing.T) {
	tests := []struct {
		input   string
		message string
		line    int
	}{
		{"1 < \"a\"", "operands of < must be numbers, got number and string", 1},
		{"x = 1\n\"a\" - x", "operands of - must be numbers, got string and number", 2},
		{"true and 1", "operands of and must be booleans, got boolean and number", 1},
		{"[1] + 1", "invalid operands for +: array and number", 1},
		{"x = 5\nx()", "'x' is not a function, it is a number", 2},
		{"print(lengt(\"abc\"))", "undefined function 'lengt', did you mean \"length\"?", 1},
		{"zzzqqq", "undefined variable 'zzzqqq'", 1},
		{"a = [1, 2, 3]\nprint(a[3])", "index 3 out of bounds for array of length 3", 2},
		{"a = [1]\na[-1] = 2", "index -1 out of bounds for array of length 1", 2},
		{"a = [1]\na[\"x\"]", "array index must be a number, got string", 2},
		{"x = 1\nx[0]", "cannot index number x", 2},
		{"for i = 1 to 3 step 0 then\nend", "for: step cannot be 0", 1},
		{"for i = \"a\" to 3 then\nend", "for: start value must be a number, got string", 1},
		{"for i = 1 to nan then\nend", "for: invalid end value NaN", 1},
		{"function f(a)\nend\nf()", "f: wrong number of arguments. got=0, want=1", 3},
		{"boom()", "boom: kaboom", 1},
		{"sqrt()", "sqrt: wrong number of arguments. got=0, want=1", 1},
		{"x = 1 +\n  undefinedVar", "undefined variable 'undefinedVar'", 2},
		{"print(1,\n2,\n[1][5])", "index 5 out of bounds for array of length 1", 3},
		{"function f()\n  return 1 - \"a\"\nend\nprint(\"start\")\nf()", "operands of - must be numbers, got number and string", 2},
	}
	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		errObj, ok := evaluated.(object.Error)
		if !ok {
			t.Errorf("%q: no error object returned. got=%T(%+v)", tt.input, evaluated, evaluated)
			continue
		}
		if !strings.HasPrefix(errObj.Value, tt.message) {
			t.Errorf("%q: wrong error message. expected=%q, got=%q", tt.input, tt.message, errObj.Value)
		}
		if errObj.Line != tt.line {
			t.Errorf("%q: wrong error line. expected=%d, got=%d", tt.input, tt.line, errObj.Line)
		}
	}
}

func TestHostPanics(t *testing.T) {
	tests := []struct {
		input   string
		message string
		line    int
	}{
		{"h = flaky()\n\nh.Do(1, 2)", "flaky.Do: call Do", 3},
		{"h = flaky()\nx = h.Value", "flaky.Value: get Value", 2},
		{"h = flaky()\nh.Value = 3", "flaky.Value: set Value", 2},
		{"function f()\n  h = flaky()\n  h.Do()\nend\nf()", "flaky.Do: call Do", 3},
	}
	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		errObj, ok := evaluated.(object.Error)
		if !ok {
			t.Errorf("%q: no error object returned. got=%T(%+v)", tt.input, evaluated, evaluated)
			continue
		}
		if errObj.Value != tt.message || errObj.Line != tt.line {
			t.Errorf("%q: got %q line %d, want %q line %d", tt.input, errObj.Value, errObj.Line, tt.message, tt.line)
		}
	}
}

func TestScopeRestoredAfterRecoveredPanic(t *testing.T) {
	input := `h = flaky()
function f(x)
  secret = 42
  return h.Bad - x
end
map([1], f)`
	s, res, _ := testEvalState(t, input)
	errObj, ok := res.(object.Error)
	if !ok || !strings.HasPrefix(errObj.Value, "map: broken object") || errObj.Line != 6 {
		t.Fatalf("expected map error on line 6, got %s", res.Inspect())
	}
	if !s.Env().IsRoot() {
		t.Errorf("state left in the function scope")
	}
	if stack := s.Stack(); len(stack) != 0 {
		t.Errorf("stack should be empty, got %v", stack)
	}
	program, err := parser.ParseString("secret")
	if err != nil {
		t.Fatal(err)
	}
	res = s.Eval(program)
	if !isErrorWithPrefix(res, "undefined variable 'secret'") {
		t.Errorf("function local leaked: %s", res.Inspect())
	}
	program, _ = parser.ParseString("f(1)")
	// Not under a native this time, the top level recovers.
	if res = s.Eval(program); !isErrorWithPrefix(res, "internal error: broken object") || !s.Env().IsRoot() {
		t.Errorf("second call got %s", res.Inspect())
	}
}

func isErrorWithPrefix(o object.Object, prefix string) bool {
	errObj, ok := o.(object.Error)
	return ok && strings.HasPrefix(errObj.Value, prefix)
}

func TestErrorStack(t *testing.T) {
	input := `
function inner()
  return [1][2]
end
function outer()
  return inner()
end
outer()`
	evaluated := testEval(t, input)
	errObj, ok := evaluated.(object.Error)
	if !ok {
		t.Fatalf("expected error, got %s", evaluated.Inspect())
	}
	if errObj.Line != 3 || !slices.Equal(errObj.Stack, []string{"inner", "outer"}) {
		t.Errorf("error %q line %d stack %v", errObj.Value, errObj.Line, errObj.Stack)
	}
	if errObj.Error() != "index 2 out of bounds for array of length 1 (line 3)" {
		t.Errorf("Error() = %q", errObj.Error())
	}
}

func TestMaxDepth(t *testing.T) {
	program, err := parser.ParseString("function f(n)\nreturn f(n + 1)\nend\nf(0)")
	if err != nil {
		t.Fatal(err)
	}
	s := eval.NewState()
	s.MaxDepth = 50
	res := s.Eval(program)
	errObj, ok := res.(object.Error)
	if !ok || errObj.Value != "max depth 50 exceeded calling f" {
		t.Fatalf("expected max depth error, got %s", res.Inspect())
	}
	if len(errObj.Stack) != 50 {
		t.Errorf("stack depth %d", len(errObj.Stack))
	}
	// state is usable after the error.
	program, _ = parser.ParseString("function g(n)\nif n == 0 then\nreturn 0\nend\nreturn g(n - 1)\nend\ng(40)")
	testNumberObject(t, s.Eval(program), 0)
}

func TestDefaultDepthRecursion(t *testing.T) {
	input := "function count(n)\nif n == 0 then\nreturn 0\nend\nreturn 1 + count(n - 1)\nend\ncount(5000)"
	testNumberObject(t, testEval(t, input), 5000)
}

func TestRun(t *testing.T) {
	program, err := parser.ParseString("x = 1\ny = x +\n[]")
	if err != nil {
		t.Fatal(err)
	}
	s := eval.NewState()
	err = s.Run(program)
	if err == nil || err.Error() != "invalid operands for +: number and array (line 2)" {
		t.Errorf("Run() error %v", err)
	}
	program, _ = parser.ParseString("x")
	if err = s.Run(program); err != nil {
		t.Errorf("Run() should keep the globals, got %v", err)
	}
}

func TestCallFunction(t *testing.T) {
	s, res, _ := testEvalState(t, "function twice(x)\nreturn x * 2\nend\ntwice")
	fn, ok := res.(*object.Function)
	if !ok {
		t.Fatalf("expected function, got %s", res.Inspect())
	}
	testNumberObject(t, s.CallFunction(fn, []object.Object{object.Number{Value: 21}}), 42)
	sqrt, _ := s.Env().Get("sqrt")
	testNumberObject(t, s.CallFunction(sqrt, []object.Object{object.Number{Value: 9}}), 3)
	res = s.CallFunction(object.Number{Value: 1}, nil)
	if errObj, ok := res.(object.Error); !ok || errObj.Value != "number is not a function" {
		t.Errorf("calling a number got %s", res.Inspect())
	}
}

func TestEvents(t *testing.T) {
	s, _, _ := testEvalState(t, "count = 0\nfunction inc(n)\ncount = count + n\nend\nfunction bad()\nreturn 1 - \"x\"\nend")
	inc, _ := s.Env().Get("inc")
	bad, _ := s.Env().Get("bad")
	s.PostCall("test", inc, object.Number{Value: 2})
	s.PostCall("test", bad)
	s.PostCall("test", inc, object.Number{Value: 3})
	ran := false
	s.Post(func() { ran = true })
	s.Post(func() { panic("in event") })
	if n := s.PendingEvents(); n != 5 {
		t.Errorf("pending events %d", n)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.RunEvents(ctx); err != nil {
		t.Fatalf("RunEvents: %v", err)
	}
	count, _ := s.Env().Get("count")
	testNumberObject(t, count, 5)
	if !ran || s.PendingEvents() != 0 {
		t.Errorf("events not all run")
	}
}

func TestEventsWaitForTimers(t *testing.T) {
	s := eval.NewState()
	s.TimerStarted()
	done := false
	go func() {
		time.Sleep(10 * time.Millisecond)
		s.Post(func() {
			done = true
			s.TimerDone()
		})
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.RunEvents(ctx); err != nil {
		t.Fatalf("RunEvents: %v", err)
	}
	if !done || s.PendingTimers() != 0 {
		t.Errorf("RunEvents returned before the timer event")
	}
}
