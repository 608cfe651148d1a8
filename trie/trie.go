// Trie implements a byte trie, used for the interactive prompt completion.
// It is fast as it uses arrays instead of maps.
package trie

type Trie struct {
	// Children of this node
	children [256]*Trie
	// This node itself is a valid word end in addition to having children.
	valid bool
	leaf  bool
}

// Shared end marker for leaves, the only node with "leaf" set.
var endMarker = &Trie{valid: true, leaf: true}

func NewTrie() *Trie {
	return &Trie{}
}

func (t *Trie) Insert(word string) {
	l := len(word)
	for i := range l {
		char := word[i]
		last := i == l-1
		switch child := t.children[char]; {
		case child == endMarker:
			if last {
				return // already there.
			}
			// Was a leaf, becomes an inner node that is still a valid word.
			t.children[char] = &Trie{valid: true}
		case child == nil:
			if last {
				t.children[char] = endMarker
				return
			}
			t.children[char] = &Trie{}
		case last:
			child.valid = true
			return
		}
		t = t.children[char]
	}
}

func (t *Trie) Contains(word string) bool {
	return t.Prefix(word).IsValid()
}

// Prefix returns the node for prefix, nil if no word starts with it.
func (t *Trie) Prefix(word string) *Trie {
	for i := range len(word) {
		t = t.children[word[i]]
		if t == nil {
			return nil
		}
	}
	return t
}

func (t *Trie) IsLeaf() bool {
	return t != nil && t.leaf
}

func (t *Trie) IsValid() bool {
	return t != nil && t.valid
}

// PrefixAll returns all the words starting with prefix, sorted, and the
// length of their longest common prefix.
func (t *Trie) PrefixAll(prefix string) (int, []string) {
	node := t.Prefix(prefix)
	if node == nil {
		return 0, nil
	}
	var words []string
	buf := []byte(prefix)
	node.collect(&buf, &words)
	return commonPrefixLen(words), words
}

func (t *Trie) collect(buf *[]byte, words *[]string) {
	if t.valid {
		*words = append(*words, string(*buf))
	}
	for c, child := range t.children {
		if child == nil {
			continue
		}
		*buf = append(*buf, byte(c))
		child.collect(buf, words)
		*buf = (*buf)[:len(*buf)-1]
	}
}

func commonPrefixLen(words []string) int {
	if len(words) == 0 {
		return 0
	}
	l := len(words[0])
	for _, w := range words[1:] {
		l = min(l, len(w))
		for i := range l {
			if w[i] != words[0][i] {
				l = i
				break
			}
		}
	}
	return l
}
