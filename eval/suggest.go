package eval

import (
	"fmt"

	"github.com/sahilm/fuzzy"
)

// suggest returns ", did you mean "x"?" for the best fuzzy match of name
// among candidates, or "" when nothing (else) matches.
func suggest(name string, candidates []string) string {
	for _, m := range fuzzy.Find(name, candidates) {
		if m.Str != name {
			return fmt.Sprintf(", did you mean %q?", m.Str)
		}
	}
	return ""
}
