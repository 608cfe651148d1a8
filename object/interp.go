package object

import (
	"errors"

	"fortio.org/sets"
)

// Callback is the native implementation. env is the evaluator state
// (*eval.State) and name the function name, so one callback can serve
// several names. Arity and ArgTypes are checked before the call.
type Callback func(env any, name string, args []Object) Object

// ShortCallback is for natives that only need their arguments.
type ShortCallback func(args []Object) Object

type Category uint8

const (
	CategoryOther Category = iota
	CategoryMath
	CategoryIO
	CategoryTime
	CategoryString
	CategoryArray
	CategoryIntrospection
	CategoryGUI
)

var categoryNames = [...]string{
	CategoryOther:         "other",
	CategoryMath:          "math",
	CategoryIO:            "io",
	CategoryTime:          "time",
	CategoryString:        "string",
	CategoryArray:         "array",
	CategoryIntrospection: "introspection",
	CategoryGUI:           "gui",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// Extension is a native function declaration.
type Extension struct {
	Name     string
	MinArgs  int
	MaxArgs  int    // -1 for unlimited.
	ArgTypes []Type // per position, ANY to skip the check; last one repeats for variadic.
	Help     string
	Category Category
	Callback Callback
	Variadic bool // computed by CreateFunction.
}

func (e *Extension) Type() Type      { return NATIVE }
func (e *Extension) Inspect() string { return "<native " + e.Name + ">" }

func (e *Extension) Usage() string {
	out := e.Name + "("
	for i, t := range e.ArgTypes {
		if i > 0 {
			out += ", "
		}
		if i >= e.MinArgs {
			out += "[" + t.String() + "]"
		} else {
			out += t.String()
		}
	}
	if e.MaxArgs == -1 {
		out += ", .."
	}
	return out + ")"
}

// Adapts a ShortCallback to the full Callback signature.
func (sc ShortCallback) Full() Callback {
	return func(_ any, _ string, args []Object) Object {
		return sc(args)
	}
}

var (
	extraFunctions   map[string]*Extension
	extraIdentifiers map[string]Object
	initDone         bool
)

// Init resets the tables of natives and identifiers to empty.
// Optional, called on demand by CreateFunction and AddIdentifier.
func Init() {
	extraFunctions = make(map[string]*Extension)
	extraIdentifiers = make(map[string]Object)
	initDone = true
}

// CreateFunction adds a new function to the table of natives. The table must
// be complete before the first root environment is created.
func CreateFunction(cmd Extension) error {
	if !initDone {
		Init()
	}
	if cmd.Name == "" {
		return errors.New("empty command name")
	}
	if cmd.Callback == nil {
		return errors.New(cmd.Name + ": nil callback")
	}
	if cmd.MaxArgs != -1 && cmd.MinArgs > cmd.MaxArgs {
		return errors.New(cmd.Name + ": min args > max args")
	}
	if len(cmd.ArgTypes) < cmd.MinArgs {
		return errors.New(cmd.Name + ": arg types < min args")
	}
	if _, ok := extraFunctions[cmd.Name]; ok {
		return errors.New(cmd.Name + ": already defined")
	}
	cmd.Variadic = (cmd.MaxArgs == -1) || (cmd.MaxArgs > cmd.MinArgs)
	extraFunctions[cmd.Name] = &cmd
	return nil
}

// ExtraFunctions returns the table of natives, read only.
func ExtraFunctions() map[string]*Extension {
	if !initDone {
		Init()
	}
	return extraFunctions
}

// AddIdentifier adds a value to the global environment, e.g "pi" -> 3.14159...
func AddIdentifier(name string, value Object) {
	if !initDone {
		Init()
	}
	extraIdentifiers[name] = value
}

// IsBuiltin reports whether name is a registered native or identifier.
func IsBuiltin(name string) bool {
	if _, ok := extraFunctions[name]; ok {
		return true
	}
	_, ok := extraIdentifiers[name]
	return ok
}

// BuiltinNames is the sorted list of natives and identifiers.
func BuiltinNames() []string {
	s := sets.New[string]()
	for k := range extraFunctions {
		s.Add(k)
	}
	for k := range extraIdentifiers {
		s.Add(k)
	}
	return sets.Sort(s)
}

// Makes a fresh map with the natives and identifiers to serve as the
// store of a root environment without mutating the tables.
func initialIdentifiersCopy() map[string]Object {
	if !initDone {
		Init()
	}
	copied := make(map[string]Object, len(extraIdentifiers)+len(extraFunctions))
	for k, v := range extraIdentifiers {
		copied[k] = v
	}
	for k, v := range extraFunctions {
		copied[k] = v
	}
	return copied
}
