package lexer

import (
	"errors"
	"strconv"
)

// parseNumber can't fail for literals produced by readNumber (an optional '-',
// digits and an optional '.' followed by digits) except for overflow, where
// ParseFloat already returns ±Inf which is what we want.
func parseNumber(lit string) float64 {
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		panic("bug: lexer produced an invalid number literal " + strconv.Quote(lit))
	}
	return f
}
