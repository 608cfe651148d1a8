package eval

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"fortio.org/log"
	"github.com/jonboulle/clockwork"
	"zds.io/zds/ast"
	"zds.io/zds/object"
)

// Exported part of the eval package.

// DefaultMaxDepth is the default maximum nesting of function calls.
// Each script level call uses a dozen or so Go frames, this stays far
// from the Go stack limit.
const DefaultMaxDepth = 10_000

type State struct {
	Out io.Writer
	In  *bufio.Reader // for input(), defaults to stdin.
	// Clock drives timers, wait() and epoch(). Fake it in tests.
	Clock clockwork.Clock
	// Max depth / recursion level - default DefaultMaxDepth.
	MaxDepth int

	env     *object.Environment
	rootEnv *object.Environment // same as ancestor of env, used for reset in panic recovery.
	depth   int                 // current number of nested function calls.
	frames  []string            // names of the functions being called, outermost first.
	events  *eventQueue
}

func NewState() *State {
	st := &State{
		env:      object.NewRootEnvironment(),
		Out:      os.Stdout,
		In:       bufio.NewReader(os.Stdin),
		Clock:    clockwork.NewRealClock(),
		MaxDepth: DefaultMaxDepth,
		events:   newEventQueue(),
	}
	st.rootEnv = st.env
	return st
}

// Reset post panic recovery.
func (s *State) Reset() {
	s.env = s.rootEnv
	s.depth = 0
	s.frames = s.frames[:0]
}

// Env is the current scope (the global one outside of function calls).
func (s *State) Env() *object.Environment {
	return s.env
}

// Eval runs the program and returns the value of the last statement, the
// value of a top level return or an object.Error.
func (s *State) Eval(program *ast.Program) (res object.Object) {
	defer func() {
		if r := recover(); r != nil {
			log.Critf("Caught panic: %v", r)
			err := s.Errorf("internal error: %v", r)
			s.Reset()
			res = err
		}
	}()
	res = s.evalStatements(program.Statements)
	// unwrap return values only at the top.
	if returnValue, ok := res.(object.ReturnValue); ok {
		log.LogVf("top level return %s", returnValue.Value.Inspect())
		return returnValue.Value
	}
	return res
}

// Run executes the program, a runtime error is returned as an object.Error.
func (s *State) Run(program *ast.Program) error {
	res := s.Eval(program)
	if err, ok := res.(object.Error); ok {
		return err
	}
	return nil
}

// CallFunction invokes a script function or a native with already
// evaluated arguments. This is the only way natives and timer/key
// callbacks re-enter the interpreter.
func (s *State) CallFunction(fn object.Object, args []object.Object) object.Object {
	switch fn := fn.(type) {
	case *object.Function:
		return s.applyFunction(fn, args)
	case *object.Extension:
		return s.applyExtension(fn, args)
	default:
		return s.Errorf("%s is not a function", object.TypeName(fn))
	}
}

func (s *State) applyFunction(fn *object.Function, args []object.Object) object.Object {
	if len(args) != len(fn.Parameters) {
		return s.Errorf("%s: wrong number of arguments. got=%d, want=%d", fn.Name, len(args), len(fn.Parameters))
	}
	if s.depth >= s.MaxDepth {
		log.LogVf("max depth %d reached", s.MaxDepth)
		return s.Errorf("max depth %d exceeded calling %s", s.MaxDepth, fn.Name)
	}
	env := object.NewEnclosedEnvironment(fn.Env)
	for i, p := range fn.Parameters {
		env.Define(p, args[i])
	}
	log.Debugf("calling %s with %d args, depth %d", fn.Name, len(args), s.depth)
	prev := s.env
	s.env = env
	s.depth++
	s.frames = append(s.frames, fn.Name)
	// Also restores on panic, a native up the stack may recover and go on.
	defer func() {
		s.frames = s.frames[:len(s.frames)-1]
		s.depth--
		s.env = prev
	}()
	res := s.evalStatements(fn.Body)
	switch r := res.(type) {
	case object.ReturnValue:
		return r.Value
	case object.Error:
		return r
	default:
		return object.NULL // falling off the end.
	}
}

func arityString(ext *object.Extension) string {
	switch {
	case ext.MaxArgs == -1:
		return fmt.Sprintf("at least %d", ext.MinArgs)
	case ext.MinArgs == ext.MaxArgs:
		return fmt.Sprintf("%d", ext.MinArgs)
	default:
		return fmt.Sprintf("%d to %d", ext.MinArgs, ext.MaxArgs)
	}
}

func (s *State) applyExtension(ext *object.Extension, args []object.Object) (res object.Object) {
	l := len(args)
	if l < ext.MinArgs || (ext.MaxArgs != -1 && l > ext.MaxArgs) {
		return s.Errorf("%s: wrong number of arguments. got=%d, want=%s", ext.Name, l, arityString(ext))
	}
	for i, arg := range args {
		if len(ext.ArgTypes) == 0 {
			break
		}
		want := ext.ArgTypes[min(i, len(ext.ArgTypes)-1)]
		if want != object.ANY && arg.Type() != want {
			return s.Errorf("%s: argument #%d must be %s, got %s", ext.Name, i+1, object.Article(want), object.TypeName(arg))
		}
	}
	defer func() {
		if r := recover(); r != nil {
			log.LogVf("panic in native %s: %v", ext.Name, r)
			res = s.Errorf("%s: %v", ext.Name, r)
		}
	}()
	res = ext.Callback(s, ext.Name, args)
	if res == nil {
		return object.NULL
	}
	// Natives errors name the function, unless they come from a nested call
	// (already attributed to a line).
	if err, ok := res.(object.Error); ok && err.Line == 0 {
		if !strings.HasPrefix(err.Value, ext.Name+":") {
			err.Value = ext.Name + ": " + err.Value
		}
		return err
	}
	return res
}
