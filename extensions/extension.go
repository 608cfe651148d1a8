// Package extensions registers the native functions and host objects
// (window, panel, timer) available to scripts.
// Same mechanism can be used to map other go functions and further extend the language.
package extensions

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"fortio.org/log"
	"zds.io/zds/lexer"
	"zds.io/zds/object"
)

var (
	initDone  = false
	errInInit error
	// These are a bit ugly as globals, maybe lambda capture and/or receivers on config instead.
	unrestrictedIOs = false
)

const PanelFileExtension = ".png"

// Config for restrictions and features.
type Config struct {
	// Dangerous when true: Panel.Save() can write anywhere. Otherwise only
	// alphanumeric .png names in the current directory.
	UnrestrictedIOs bool
}

// Init initializes the extensions, can be called multiple time safely but should really be called only once
// before creating any eval.State. If the passed [Config] pointer is nil, default (safe) values are used.
func Init(c *Config) error {
	if initDone {
		return errInInit
	}
	if c == nil {
		c = &Config{}
	}
	errInInit = initInternal(c)
	initDone = true
	return errInInit
}

// MustCreate registers cmd, panics on error (duplicate name, bad arity...).
func MustCreate(cmd object.Extension) {
	err := object.CreateFunction(cmd)
	if err != nil {
		panic(err)
	}
}

type OneFloatInOutFunc func(float64) float64

func initInternal(c *Config) (err error) {
	unrestrictedIOs = c.UnrestrictedIOs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extensions init: %v", r)
		}
	}()
	createConstants()
	createMathFunctions()
	createIOFunctions()
	createStringFunctions()
	createArrayFunctions()
	createWindowFunctions()
	createTimerFunctions()
	log.LogVf("Registered %d natives", len(object.ExtraFunctions()))
	return nil
}

func createConstants() {
	object.AddIdentifier("pi", object.Number{Value: math.Pi})
	object.AddIdentifier("tau", object.Number{Value: 2 * math.Pi})
	object.AddIdentifier("e", object.Number{Value: math.E})
	object.AddIdentifier("phi", object.Number{Value: math.Phi})
	object.AddIdentifier("sqrt2", object.Number{Value: math.Sqrt2})
	object.AddIdentifier("sqrt3", object.Number{Value: math.Sqrt(3)})
	object.AddIdentifier("MaxValue", object.Number{Value: math.MaxFloat64})
	object.AddIdentifier("MinValue", object.Number{Value: -math.MaxFloat64})
	object.AddIdentifier("nan", object.Number{Value: math.NaN()})
	object.AddIdentifier("True", object.TRUE)
	object.AddIdentifier("False", object.FALSE)
	object.AddIdentifier("null", object.NULL) // shadowed by the keyword, kept for completeness.
	object.AddIdentifier("nil", object.NULL)
}

func createMathFunctions() {
	oneFloat := object.Extension{
		MinArgs:  1,
		MaxArgs:  1,
		ArgTypes: []object.Type{object.NUMBER},
		Category: object.CategoryMath,
	}
	for _, function := range []struct {
		fn   OneFloatInOutFunc
		name string
	}{
		{math.Sin, "sin"},
		{math.Cos, "cos"},
		{math.Tan, "tan"},
	} {
		oneFloat.Callback = func(_ any, _ string, args []object.Object) object.Object {
			// Arg len check already done through MinArgs=MaxArgs=1 and
			// type through ArgTypes: []object.Type{object.NUMBER}.
			return object.Number{Value: function.fn(args[0].(object.Number).Value)}
		}
		oneFloat.Name = function.name
		oneFloat.Help = function.name + " of the angle in radians"
		MustCreate(oneFloat)
	}
	oneFloat.Name = "sqrt"
	oneFloat.Help = "square root, error for negative numbers"
	oneFloat.Callback = func(_ any, _ string, args []object.Object) object.Object {
		v := args[0].(object.Number).Value
		if v < 0 {
			return object.Errorf("cannot calculate square root of a negative number")
		}
		return object.Number{Value: math.Sqrt(v)}
	}
	MustCreate(oneFloat)
	// round, floor and abs coerce booleans, numeric strings and null.
	coerced := object.Extension{
		MinArgs:  1,
		MaxArgs:  1,
		ArgTypes: []object.Type{object.ANY},
		Category: object.CategoryMath,
	}
	for _, function := range []struct {
		fn   OneFloatInOutFunc
		name string
		help string
	}{
		{math.RoundToEven, "round", "rounds to the nearest integer, half to even"},
		{math.Floor, "floor", "largest integer less than or equal"},
		{math.Abs, "abs", "absolute value"},
	} {
		coerced.Name = function.name
		coerced.Help = function.help
		coerced.Callback = func(_ any, _ string, args []object.Object) object.Object {
			v, ok := object.ToNumber(args[0])
			if !ok {
				return object.Errorf("cannot convert %s %q to a number", object.TypeName(args[0]), args[0].Inspect())
			}
			return object.Number{Value: function.fn(v)}
		}
		MustCreate(coerced)
	}
	MustCreate(object.Extension{
		Name:     "pow",
		MinArgs:  2,
		MaxArgs:  2,
		ArgTypes: []object.Type{object.NUMBER, object.NUMBER},
		Help:     "base to the power exponent",
		Category: object.CategoryMath,
		Callback: object.ShortCallback(pow).Full(),
	})
	twoFloats := object.Extension{
		MinArgs:  2,
		MaxArgs:  2,
		ArgTypes: []object.Type{object.NUMBER, object.NUMBER},
		Category: object.CategoryMath,
	}
	twoFloats.Name = "max"
	twoFloats.Help = "larger of the two numbers"
	twoFloats.Callback = func(_ any, _ string, args []object.Object) object.Object {
		return object.Number{Value: math.Max(args[0].(object.Number).Value, args[1].(object.Number).Value)}
	}
	MustCreate(twoFloats)
	twoFloats.Name = "min"
	twoFloats.Help = "smaller of the two numbers"
	twoFloats.Callback = func(_ any, _ string, args []object.Object) object.Object {
		return object.Number{Value: math.Min(args[0].(object.Number).Value, args[1].(object.Number).Value)}
	}
	MustCreate(twoFloats)
	MustCreate(object.Extension{
		Name:     "clamp",
		MinArgs:  3,
		MaxArgs:  3,
		ArgTypes: []object.Type{object.NUMBER, object.NUMBER, object.NUMBER},
		Help:     "clamp(min, n, max) n limited to [min, max]",
		Category: object.CategoryMath,
		Callback: object.ShortCallback(clamp).Full(),
	})
	MustCreate(object.Extension{
		Name:     "random",
		MinArgs:  2,
		MaxArgs:  3,
		ArgTypes: []object.Type{object.NUMBER, object.NUMBER, object.NUMBER},
		Help:     "random(min, max) integer in [min, max], random(min, max, decimals) rounded to decimals",
		Category: object.CategoryMath,
		Callback: object.ShortCallback(random).Full(),
	})
}

func pow(args []object.Object) object.Object {
	// Arg len check already done through MinArgs and MaxArgs
	// and so is type check through ArgTypes.
	base := args[0].(object.Number).Value
	exp := args[1].(object.Number).Value
	return object.Number{Value: math.Pow(base, exp)}
}

func clamp(args []object.Object) object.Object {
	lo := args[0].(object.Number).Value
	n := args[1].(object.Number).Value
	hi := args[2].(object.Number).Value
	if n < lo {
		return args[0]
	}
	if n > hi {
		return args[2]
	}
	return args[1]
}

func random(args []object.Object) object.Object {
	lo := args[0].(object.Number).Value
	hi := args[1].(object.Number).Value
	if lo > hi {
		return object.Errorf("min value cannot be greater than max value")
	}
	if len(args) == 3 {
		decimals, err := object.ToInt(args[2].(object.Number).Value)
		if err != nil || decimals < 0 {
			return object.Errorf("decimal places must be a non negative integer, got %s", args[2].Inspect())
		}
		p := math.Pow(10, float64(decimals))
		v := lo + rand.Float64()*(hi-lo) //nolint:gosec // not for crypto.
		return object.Number{Value: math.RoundToEven(v*p) / p}
	}
	ilo, err := object.ToInt(lo)
	if err != nil {
		return object.Errorf("invalid min %s: %v", args[0].Inspect(), err)
	}
	ihi, err := object.ToInt(hi)
	if err != nil {
		return object.Errorf("invalid max %s: %v", args[1].Inspect(), err)
	}
	span := ihi - ilo
	if span < 0 || span == math.MaxInt {
		return object.Errorf("range too large: %s to %s", args[0].Inspect(), args[1].Inspect())
	}
	return object.Number{Value: float64(ilo + rand.IntN(span+1))} //nolint:gosec // not for crypto.
}

// Normalizes to alphanum.png unless unrestricted.
func sanitizeFileName(file string) (string, error) {
	if unrestrictedIOs {
		log.Infof("Unrestricted IOs, not sanitizing filename: %s", file)
		return file, nil
	}
	// only alphanumeric and _ allowed. no dots, slashes, etc.
	f := strings.TrimSuffix(file, PanelFileExtension)
	if f == "" {
		return "", fmt.Errorf("invalid empty filename %q", file)
	}
	for _, r := range f {
		if !lexer.IsAlphaNum(r) {
			return "", fmt.Errorf("invalid character in filename %q: %c", file, r)
		}
	}
	return f + PanelFileExtension, nil
}
