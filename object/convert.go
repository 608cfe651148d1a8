package object

import (
	"math"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// ToNumber coerces numbers, booleans (1/0), numeric strings and null (0).
func ToNumber(o Object) (float64, bool) {
	switch o := o.(type) {
	case Number:
		return o.Value, true
	case Boolean:
		if o.Value {
			return 1, true
		}
		return 0, true
	case Null:
		return 0, true
	case String:
		f, err := strconv.ParseFloat(strings.TrimSpace(o.Value), 64)
		if err != nil {
			return math.NaN(), false
		}
		return f, true
	default:
		return math.NaN(), false
	}
}

// ToInt truncates toward zero, failing for NaN, infinities and values out
// of the int range.
func ToInt(f float64) (int, error) {
	return safecast.Truncate[int](f)
}
