package object

import (
	"fortio.org/log"
	"fortio.org/sets"
)

// Environment is one scope: the bindings it owns and its enclosing scope
// (nil for the global one).
type Environment struct {
	store map[string]Object
	outer *Environment
}

// NewRootEnvironment creates a global scope seeded with the registered
// natives and identifiers.
func NewRootEnvironment() *Environment {
	return &Environment{store: initialIdentifiersCopy()}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	return &Environment{store: make(map[string]Object), outer: outer}
}

// Parent returns the enclosing scope, nil at the root.
func (e *Environment) Parent() *Environment {
	return e.outer
}

func (e *Environment) IsRoot() bool {
	return e.outer == nil
}

// Len is the number of bindings visible from this scope (shadowed ones included).
func (e *Environment) Len() int {
	log.Debugf("Environment.Len() called for %p with %d entries", e, len(e.store))
	if e.outer != nil {
		return len(e.store) + e.outer.Len()
	}
	return len(e.store)
}

// Define creates or overwrites name in this scope.
func (e *Environment) Define(name string, val Object) Object {
	e.store[name] = val
	return val
}

func (e *Environment) Get(name string) (Object, bool) {
	obj, ok := e.store[name]
	if ok || e.outer == nil {
		return obj, ok
	}
	return e.outer.Get(name) // recurse.
}

// GetLocal only looks in this scope.
func (e *Environment) GetLocal(name string) (Object, bool) {
	obj, ok := e.store[name]
	return obj, ok
}

// Assign updates the nearest scope that already binds name, or defines it
// in this scope when none does. Closures see the update.
func (e *Environment) Assign(name string, val Object) Object {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.store[name]; ok {
			log.Debugf("Assign %s in scope %p", name, env)
			env.store[name] = val
			return val
		}
	}
	return e.Define(name, val)
}

// Delete removes name from this scope only.
func (e *Environment) Delete(name string) {
	delete(e.store, name)
}

// Names returns all the names visible from this scope, sorted.
func (e *Environment) Names() []string {
	names := sets.New[string]()
	for env := e; env != nil; env = env.outer {
		for k := range env.store {
			names.Add(k)
		}
	}
	return sets.Sort(names)
}
