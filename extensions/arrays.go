package extensions

import (
	"cmp"
	"slices"

	"zds.io/zds/eval"
	"zds.io/zds/object"
)

func callable(o object.Object) bool {
	t := o.Type()
	return t == object.FUNC || t == object.NATIVE
}

// compareValues orders null first, numbers numerically, strings lexically
// and mixed values by their printed form.
func compareValues(a, b object.Object) int {
	_, aNull := a.(object.Null)
	_, bNull := b.(object.Null)
	switch {
	case aNull && bNull:
		return 0
	case aNull:
		return -1
	case bNull:
		return 1
	}
	if an, ok := a.(object.Number); ok {
		if bn, ok := b.(object.Number); ok {
			return cmp.Compare(an.Value, bn.Value)
		}
	}
	return cmp.Compare(a.Inspect(), b.Inspect())
}

func createArrayFunctions() {
	MustCreate(object.Extension{
		Name:     "insert",
		MinArgs:  2,
		MaxArgs:  2,
		ArgTypes: []object.Type{object.ARRAY, object.ANY},
		Help:     "appends the element to the array (in place) and returns the array",
		Category: object.CategoryArray,
		Callback: func(_ any, _ string, args []object.Object) object.Object {
			arr := args[0].(*object.Array)
			arr.Elements = append(arr.Elements, args[1])
			return arr
		},
	})
	MustCreate(object.Extension{
		Name:     "sort",
		MinArgs:  1,
		MaxArgs:  1,
		ArgTypes: []object.Type{object.ARRAY},
		Help:     "returns a new sorted array: null first, then numbers, strings by text",
		Category: object.CategoryArray,
		Callback: func(_ any, _ string, args []object.Object) object.Object {
			sorted := slices.Clone(args[0].(*object.Array).Elements)
			slices.SortStableFunc(sorted, compareValues)
			return object.NewArray(sorted)
		},
	})
	hof := object.Extension{
		MinArgs:  2,
		MaxArgs:  2,
		ArgTypes: []object.Type{object.ARRAY, object.ANY},
		Category: object.CategoryArray,
	}
	hof.Name = "map"
	hof.Help = "map(array, fn) new array of fn(element)"
	hof.Callback = func(env any, _ string, args []object.Object) object.Object {
		return eachElement(env.(*eval.State), args, func(_, res object.Object, out []object.Object) ([]object.Object, bool) {
			return append(out, res), false
		})
	}
	MustCreate(hof)
	hof.Name = "filter"
	hof.Help = "filter(array, fn) new array of the elements for which fn returns true"
	hof.Callback = func(env any, _ string, args []object.Object) object.Object {
		return eachElement(env.(*eval.State), args, func(elem, res object.Object, out []object.Object) ([]object.Object, bool) {
			if res == object.TRUE {
				out = append(out, elem)
			}
			return out, false
		})
	}
	MustCreate(hof)
	hof.Name = "find"
	hof.Help = "find(array, fn) first element for which fn returns true, or null"
	hof.Callback = func(env any, _ string, args []object.Object) object.Object {
		var found object.Object = object.NULL
		res := eachElement(env.(*eval.State), args, func(elem, res object.Object, out []object.Object) ([]object.Object, bool) {
			if res == object.TRUE {
				found = elem
				return out, true
			}
			return out, false
		})
		if _, isErr := res.(object.Error); isErr {
			return res
		}
		return found
	}
	MustCreate(hof)
}

// eachElement calls args[1] on each element of the args[0] array, collect
// decides what to keep and whether to stop.
func eachElement(s *eval.State, args []object.Object,
	collect func(elem, res object.Object, out []object.Object) ([]object.Object, bool),
) object.Object {
	fn := args[1]
	if !callable(fn) {
		return object.Errorf("argument #2 must be a function, got %s", object.TypeName(fn))
	}
	// Copy so callbacks inserting into the array don't loop forever.
	elements := slices.Clone(args[0].(*object.Array).Elements)
	out, err := object.MakeObjectSlice(len(elements))
	if err != nil {
		return object.Errorf("%v", err)
	}
	for _, elem := range elements {
		res := s.CallFunction(fn, []object.Object{elem})
		if _, isErr := res.(object.Error); isErr {
			return res
		}
		var stop bool
		out, stop = collect(elem, res, out)
		if stop {
			break
		}
	}
	return object.NewArray(out)
}
