package object_test

import (
	"math"
	"slices"
	"testing"

	"zds.io/zds/object"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{3, "3"},
		{-3, "-3"},
		{2.5, "2.5"},
		{0.1, "0.1"},
		{0.1 + 0.2, "0.30000000000000004"},
		{1.0 / 3, "0.3333333333333333"},
		{1e20, "100000000000000000000"},
		{1e21, "1e+21"},
		{-2.5e22, "-2.5e+22"},
		{math.Copysign(0, -1), "0"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}
	for _, tt := range tests {
		if got := object.FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInspect(t *testing.T) {
	fn := &object.Function{Name: "add", Parameters: []string{"a", "b"}}
	arr := object.NewArray([]object.Object{
		object.Number{Value: 1}, object.String{Value: "x"}, object.NULL, object.TRUE,
		object.NewArray([]object.Object{}),
	})
	tests := []struct {
		in   object.Object
		want string
	}{
		{object.String{Value: "hi"}, "hi"},
		{object.FALSE, "false"},
		{object.NULL, "null"},
		{fn, "add(a, b)"},
		{arr, "[1, x, null, true, []]"},
		{object.ReturnValue{Value: object.Number{Value: 7}}, "7"},
		{object.Errorf("boom %d", 1), "<err: boom 1>"},
	}
	for _, tt := range tests {
		if got := tt.in.Inspect(); got != tt.want {
			t.Errorf("Inspect() = %q, want %q", got, tt.want)
		}
	}
	if got := object.Concat([]object.Object{object.String{Value: "a"}, object.Number{Value: 2}, arr}); got != "a2[1, x, null, true, []]" {
		t.Errorf("Concat() = %q", got)
	}
}

func TestEquals(t *testing.T) {
	a := object.NewArray([]object.Object{object.Number{Value: 1}})
	b := object.NewArray([]object.Object{object.Number{Value: 1}})
	fn := &object.Function{Name: "f"}
	tests := []struct {
		l, r object.Object
		want bool
	}{
		{object.Number{Value: 1}, object.Number{Value: 1}, true},
		{object.Number{Value: 1}, object.Number{Value: 2}, false},
		{object.Number{Value: math.NaN()}, object.Number{Value: math.NaN()}, false},
		{object.String{Value: "a"}, object.String{Value: "a"}, true},
		{object.String{Value: "1"}, object.Number{Value: 1}, false},
		{object.TRUE, object.NativeBoolToBooleanObject(true), true},
		{object.NULL, object.NULL, true},
		{object.NULL, object.FALSE, false},
		{a, a, true},
		{a, b, false},
		{fn, fn, true},
		{fn, &object.Function{Name: "f"}, false},
	}
	for _, tt := range tests {
		if got := object.Equals(tt.l, tt.r); got != tt.want {
			t.Errorf("Equals(%s, %s) = %v, want %v", tt.l.Inspect(), tt.r.Inspect(), got, tt.want)
		}
	}
}

func TestTruthyAndTypeName(t *testing.T) {
	for _, o := range []object.Object{object.NULL, object.FALSE} {
		if object.Truthy(o) {
			t.Errorf("%s should be falsy", o.Inspect())
		}
	}
	for _, o := range []object.Object{object.TRUE, object.Number{}, object.String{}, object.NewArray(nil)} {
		if !object.Truthy(o) {
			t.Errorf("%s should be truthy", o.Inspect())
		}
	}
	if got := object.TypeName(object.NULL); got != "null" {
		t.Errorf("TypeName(null) = %q", got)
	}
	if got := object.TypeName(&object.Function{}); got != "function" {
		t.Errorf("TypeName(function) = %q", got)
	}
	if got := object.Article(object.ARRAY); got != "an array" {
		t.Errorf("Article(ARRAY) = %q", got)
	}
	if got := object.Article(object.NUMBER); got != "a number" {
		t.Errorf("Article(NUMBER) = %q", got)
	}
}

func TestErrorLine(t *testing.T) {
	err := object.Errorf("oops")
	if err.Error() != "oops" {
		t.Errorf("unstamped error %q", err.Error())
	}
	err.Line = 3
	if err.Error() != "oops (line 3)" {
		t.Errorf("stamped error %q", err.Error())
	}
}

func TestConversions(t *testing.T) {
	tests := []struct {
		in   object.Object
		want float64
		ok   bool
	}{
		{object.Number{Value: 2.5}, 2.5, true},
		{object.TRUE, 1, true},
		{object.FALSE, 0, true},
		{object.NULL, 0, true},
		{object.String{Value: " 3.7 "}, 3.7, true},
		{object.String{Value: "abc"}, 0, false},
		{object.NewArray(nil), 0, false},
	}
	for _, tt := range tests {
		got, ok := object.ToNumber(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ToNumber(%s) = %v, %v want %v, %v", tt.in.Inspect(), got, ok, tt.want, tt.ok)
		}
	}
	if i, err := object.ToInt(-2.9); err != nil || i != -2 {
		t.Errorf("ToInt(-2.9) = %d, %v", i, err)
	}
	for _, bad := range []float64{math.NaN(), math.Inf(1), 1e300} {
		if _, err := object.ToInt(bad); err == nil {
			t.Errorf("ToInt(%v) should fail", bad)
		}
	}
}

func TestEnvironmentAssign(t *testing.T) {
	root := object.NewRootEnvironment()
	root.Define("x", object.Number{Value: 1})
	inner := object.NewEnclosedEnvironment(root)
	if !inner.Parent().IsRoot() || inner.IsRoot() {
		t.Fatalf("unexpected scope chain")
	}
	// Updates the nearest scope binding the name.
	inner.Assign("x", object.Number{Value: 2})
	if v, _ := root.Get("x"); v.Inspect() != "2" {
		t.Errorf("outer x should be updated, got %s", v.Inspect())
	}
	if _, ok := inner.GetLocal("x"); ok {
		t.Errorf("x should not be defined locally")
	}
	// Otherwise defines in the current scope.
	inner.Assign("y", object.Number{Value: 3})
	if _, ok := root.Get("y"); ok {
		t.Errorf("y should not leak to the outer scope")
	}
	if v, ok := inner.Get("y"); !ok || v.Inspect() != "3" {
		t.Errorf("y should be local, got %v %v", v, ok)
	}
	// Define shadows.
	inner.Define("x", object.Number{Value: 9})
	if v, _ := root.Get("x"); v.Inspect() != "2" {
		t.Errorf("Define should shadow, outer x got %s", v.Inspect())
	}
	inner.Delete("x")
	if v, _ := inner.Get("x"); v.Inspect() != "2" {
		t.Errorf("after Delete, x should resolve to outer, got %s", v.Inspect())
	}
	names := inner.Names()
	if !slices.Contains(names, "x") || !slices.Contains(names, "y") || !slices.IsSorted(names) {
		t.Errorf("Names() = %v", names)
	}
}

func noop(_ any, _ string, _ []object.Object) object.Object {
	return object.NULL
}

func TestCreateFunction(t *testing.T) {
	good := object.Extension{
		Name:     "testOnlyFn",
		MinArgs:  1,
		MaxArgs:  2,
		ArgTypes: []object.Type{object.NUMBER, object.STRING},
		Callback: noop,
	}
	if err := object.CreateFunction(good); err != nil {
		t.Fatalf("CreateFunction: %v", err)
	}
	ext := object.ExtraFunctions()["testOnlyFn"]
	if ext == nil || !ext.Variadic {
		t.Fatalf("registered extension %+v", ext)
	}
	if got := ext.Usage(); got != "testOnlyFn(number, [string])" {
		t.Errorf("Usage() = %q", got)
	}
	if got := ext.Inspect(); got != "<native testOnlyFn>" {
		t.Errorf("Inspect() = %q", got)
	}
	if !object.IsBuiltin("testOnlyFn") || !slices.Contains(object.BuiltinNames(), "testOnlyFn") {
		t.Errorf("testOnlyFn should be a builtin")
	}
	env := object.NewRootEnvironment()
	if v, ok := env.Get("testOnlyFn"); !ok || v != ext {
		t.Errorf("root environment should see the native")
	}
	bad := []object.Extension{
		{Name: "", Callback: noop},
		{Name: "testNoCallback"},
		{Name: "testMinMax", MinArgs: 2, MaxArgs: 1, ArgTypes: []object.Type{object.ANY, object.ANY}, Callback: noop},
		{Name: "testTypes", MinArgs: 2, MaxArgs: 2, ArgTypes: []object.Type{object.ANY}, Callback: noop},
		good,
	}
	for _, b := range bad {
		if err := object.CreateFunction(b); err == nil {
			t.Errorf("CreateFunction(%q) should fail", b.Name)
		}
	}
}

func TestShortCallback(t *testing.T) {
	called := false
	cb := object.ShortCallback(func(args []object.Object) object.Object {
		called = true
		return args[0]
	}).Full()
	res := cb(nil, "x", []object.Object{object.TRUE})
	if !called || res != object.TRUE {
		t.Errorf("ShortCallback.Full() did not forward, got %v", res)
	}
}

func TestMakeObjectSlice(t *testing.T) {
	s, err := object.MakeObjectSlice(10)
	if err != nil || len(s) != 0 || cap(s) != 10 {
		t.Errorf("MakeObjectSlice(10) = len %d cap %d, %v", len(s), cap(s), err)
	}
}
