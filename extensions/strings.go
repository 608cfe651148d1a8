package extensions

import (
	"strings"

	"github.com/rivo/uniseg"
	"zds.io/zds/object"
)

// text is the string form of a non string argument: "" for null.
func text(o object.Object) string {
	if o.Type() == object.NIL {
		return ""
	}
	return o.Inspect()
}

func graphemes(s string) []string {
	res := make([]string, 0, len(s))
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		res = append(res, g.Str())
	}
	return res
}

func createStringFunctions() {
	introspection := object.Extension{
		Name:     "length",
		MinArgs:  0,
		MaxArgs:  1,
		ArgTypes: []object.Type{object.ANY},
		Help:     "number of elements of an array, characters of a string (or of the printed value), 0 for null or no argument",
		Category: object.CategoryIntrospection,
		Callback: func(_ any, _ string, args []object.Object) object.Object {
			if len(args) == 0 {
				return object.Number{Value: 0}
			}
			switch v := args[0].(type) {
			case *object.Array:
				return object.Number{Value: float64(len(v.Elements))}
			case object.Null:
				return object.Number{Value: 0}
			default:
				return object.Number{Value: float64(uniseg.GraphemeClusterCount(v.Inspect()))}
			}
		},
	}
	MustCreate(introspection)
	introspection.Name = "len"
	introspection.Help = "alias for length"
	MustCreate(introspection)
	introspection.Name = "typeOf"
	introspection.MinArgs = 1
	introspection.Help = "type name: array, number, string, boolean, function, nativefunction, null, window, panel, timer"
	introspection.Callback = func(_ any, _ string, args []object.Object) object.Object {
		return object.String{Value: object.TypeName(args[0])}
	}
	MustCreate(introspection)

	strFn := object.Extension{
		Name:     "substring",
		MinArgs:  2,
		MaxArgs:  3,
		ArgTypes: []object.Type{object.ANY, object.NUMBER, object.NUMBER},
		Help:     "substring(str, start, length) characters from start, to the end without length",
		Category: object.CategoryString,
		Callback: substring,
	}
	MustCreate(strFn)
	strFn.Name = "replace"
	strFn.MinArgs = 3
	strFn.MaxArgs = 3
	strFn.ArgTypes = []object.Type{object.ANY, object.ANY, object.ANY}
	strFn.Help = "replace(str, old, new) replaces all occurrences of old by new"
	strFn.Callback = func(_ any, _ string, args []object.Object) object.Object {
		str, oerr := stringArg(args[0])
		if oerr != nil || str == nil {
			return orEmpty(oerr, object.String{})
		}
		old := text(args[1])
		if old == "" {
			return object.Errorf("old value cannot be empty")
		}
		return object.String{Value: strings.ReplaceAll(str.Value, old, text(args[2]))}
	}
	MustCreate(strFn)
	strFn.Name = "split"
	strFn.MinArgs = 2
	strFn.MaxArgs = 2
	strFn.ArgTypes = []object.Type{object.ANY, object.ANY}
	strFn.Help = "split(str, delimiter) array of the parts of str"
	strFn.Callback = func(_ any, _ string, args []object.Object) object.Object {
		str, oerr := stringArg(args[0])
		if oerr != nil || str == nil {
			return orEmpty(oerr, object.NewArray([]object.Object{}))
		}
		delim := text(args[1])
		if delim == "" {
			return object.Errorf("delimiter cannot be empty")
		}
		parts := strings.Split(str.Value, delim)
		elements, err := object.MakeObjectSlice(len(parts))
		if err != nil {
			return object.Errorf("%v", err)
		}
		for _, p := range parts {
			elements = append(elements, object.String{Value: p})
		}
		return object.NewArray(elements)
	}
	MustCreate(strFn)
	strFn.Name = "join"
	strFn.Help = "join(array, delimiter) string of the elements separated by delimiter"
	strFn.Callback = func(_ any, _ string, args []object.Object) object.Object {
		if args[0].Type() == object.NIL {
			return object.String{}
		}
		arr, ok := args[0].(*object.Array)
		if !ok {
			return object.Errorf("argument #1 must be an array, got %s", object.TypeName(args[0]))
		}
		out := strings.Builder{}
		object.WriteStrings(&out, arr.Elements, "", text(args[1]), "")
		return object.String{Value: out.String()}
	}
	MustCreate(strFn)
}

// stringArg returns nil, nil for null (natives then return their empty value).
func stringArg(o object.Object) (*object.String, *object.Error) {
	switch v := o.(type) {
	case object.String:
		return &v, nil
	case object.Null:
		return nil, nil
	default:
		err := object.Errorf("argument #1 must be a string, got %s", object.TypeName(o))
		return nil, &err
	}
}

func orEmpty(oerr *object.Error, empty object.Object) object.Object {
	if oerr != nil {
		return *oerr
	}
	return empty
}

func substring(_ any, _ string, args []object.Object) object.Object {
	str, oerr := stringArg(args[0])
	if oerr != nil || str == nil {
		return orEmpty(oerr, object.String{})
	}
	chars := graphemes(str.Value)
	start, err := object.ToInt(args[1].(object.Number).Value)
	if err != nil || start < 0 || start >= len(chars) {
		return object.Errorf("start index %s out of bounds for string of length %d", args[1].Inspect(), len(chars))
	}
	end := len(chars)
	if len(args) == 3 {
		length, err := object.ToInt(args[2].(object.Number).Value)
		if err != nil || length < 0 {
			return object.Errorf("length cannot be negative, got %s", args[2].Inspect())
		}
		end = min(start+length, len(chars))
	}
	return object.String{Value: strings.Join(chars[start:end], "")}
}
