package repl

import (
	"errors"
	"fmt"
	"strings"
)

// Commands understood by the interactive prompt, anything else is a file
// to run or a line of code.
var promptCommands = []string{"exit", "quit", "help"}

// SplitLine splits a prompt line into words, handling quoted strings so
// paths with spaces can be given.
// Supports single quotes (no escaping), double quotes (backslash escaping), and basic escaping with backslash.
// Returns an error if quotes are unclosed or escape sequences are unterminated.
func SplitLine(cmd string) ([]string, error) {
	var parts []string
	var current strings.Builder
	inQuote := rune(0)
	escaped := false
	quoted := false // so "" gives an empty word.

	for _, r := range cmd {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			if inQuote == '\'' {
				current.WriteRune(r)
			} else {
				escaped = true
			}
			continue
		}
		if inQuote != 0 {
			if r == inQuote {
				inQuote = 0
			} else {
				current.WriteRune(r)
			}
			continue
		}
		if r == '"' || r == '\'' {
			inQuote = r
			quoted = true
			continue
		}
		if r == ' ' || r == '\t' || r == '\n' {
			if current.Len() > 0 || quoted {
				parts = append(parts, current.String())
				current.Reset()
				quoted = false
			}
			continue
		}
		current.WriteRune(r)
	}
	if escaped {
		return nil, errors.New("unterminated escape sequence: line ends with backslash")
	}
	if inQuote != 0 {
		return nil, fmt.Errorf("unclosed quote: missing closing %c", inQuote)
	}
	if current.Len() > 0 || quoted {
		parts = append(parts, current.String())
	}
	return parts, nil
}
