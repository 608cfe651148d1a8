package repl

import (
	"fmt"
	"strings"

	"fortio.org/sets"
	"fortio.org/terminal"
	"zds.io/zds/lexer"
	"zds.io/zds/object"
	"zds.io/zds/token"
	"zds.io/zds/trie"
)

type AutoComplete struct {
	Trie *trie.Trie
}

// NewCompletion completes keywords, natives and the prompt commands. Must
// be called after extensions.Init.
func NewCompletion() *AutoComplete {
	a := &AutoComplete{trie.NewTrie()}
	for _, c := range promptCommands {
		a.Trie.Insert(c)
	}
	for _, k := range sets.Sort(token.Info().Keywords) {
		a.Trie.Insert(k)
	}
	natives := object.ExtraFunctions()
	for _, name := range object.BuiltinNames() {
		if _, isFunc := natives[name]; isFunc {
			name += "("
		}
		a.Trie.Insert(name)
	}
	return a
}

func (a *AutoComplete) AutoComplete() terminal.AutoCompleteCallback {
	return func(t *terminal.Terminal, line string, pos int, key rune) (newLine string, newPos int, ok bool) {
		if key != '\t' {
			return // only tab for now
		}
		return a.autoCompleteCallback(t, line, pos)
	}
}

// wordStart is the start of the identifier ending at pos.
func wordStart(line string, pos int) int {
	start := pos
	for start > 0 && lexer.IsAlphaNum(rune(line[start-1])) {
		start--
	}
	return start
}

func (a *AutoComplete) Complete(line string, pos int) (newLine string, newPos int, choices []string) {
	start := wordStart(line, pos)
	l, words := a.Trie.PrefixAll(line[start:pos])
	if len(words) == 0 {
		return line, pos, nil
	}
	completed := words[0][:l]
	return line[:start] + completed + line[pos:], start + l, words
}

func (a *AutoComplete) autoCompleteCallback(t *terminal.Terminal, line string, pos int) (newLine string, newPos int, ok bool) {
	newLine, newPos, words := a.Complete(line, pos)
	if len(words) == 0 {
		return
	}
	if len(words) > 1 {
		fmt.Fprint(t.Out, "One of: ")
		for _, c := range words {
			if strings.HasSuffix(c, "(") {
				fmt.Fprint(t.Out, c, ") ")
			} else {
				fmt.Fprint(t.Out, c, " ")
			}
		}
		fmt.Fprintln(t.Out)
	}
	return newLine, newPos, true
}
