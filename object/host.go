package object

// Host is an opaque capability handle provided by an extension (window,
// panel, timer...). Scripts only reach it through properties and methods.
type Host interface {
	Object
	Kind() string      // "window", "panel", ...
	Members() []string // property and method names, for suggestions.
}

// PropertyGetter returns nil when the host has no such property.
type PropertyGetter interface {
	GetProperty(name string) Object
}

// PropertySetter returns nil when the host has no such property, an Error
// for a bad value and otherwise the stored value.
type PropertySetter interface {
	SetProperty(name string, value Object) Object
}

// MethodCaller returns nil when the host has no such method. env is the
// evaluator state, as for Extension callbacks.
type MethodCaller interface {
	CallMethod(env any, name string, args []Object) Object
}
