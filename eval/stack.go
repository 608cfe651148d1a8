package eval

import (
	"fmt"
	"slices"

	"fortio.org/log"
	"zds.io/zds/object"
)

// Stack returns the names of the functions being called, innermost first.
func (s *State) Stack() []string {
	stack := slices.Clone(s.frames)
	slices.Reverse(stack)
	log.Debugf("Stack() len %d, depth %d returning %v", len(stack), s.depth, stack)
	return stack
}

// Error creates a new error object with the given message and the current
// stack. The line is added by the evaluator.
func (s *State) Error(msg string) object.Error {
	return object.Error{Value: msg, Stack: s.Stack()}
}

func (s *State) Errorf(format string, args ...any) object.Error {
	return s.Error(fmt.Sprintf(format, args...))
}
