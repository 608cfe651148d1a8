package token

import "fortio.org/sets"

// Info enables introspection of known keywords and operators.
type ZdsInfo struct {
	Keywords  sets.Set[string]
	Operators sets.Set[string]
}

var info = ZdsInfo{
	Keywords:  sets.New[string](),
	Operators: sets.New("+", "-", "*", "/", "=", "==", "!=", ">", "<", ">=", "<=", "&", "&&", "|", "||"),
}

func init() {
	for k, t := range keywords {
		if t == AND || t == OR {
			info.Operators.Add(k)
			continue
		}
		info.Keywords.Add(k)
	}
}

func Info() ZdsInfo {
	return info
}

// IsKeyword reports whether word is reserved.
func IsKeyword(word string) bool {
	_, ok := keywords[word]
	return ok
}
