package suggest

// Suggestion is a single search result.
type Suggestion struct {
	Word string
	Rank int
}

// Outranks reports whether s sorts before o: higher rank first,
// equal ranks in ascending byte order of the word.
func (s Suggestion) Outranks(o Suggestion) bool {
	if s.Rank != o.Rank {
		return s.Rank > o.Rank
	}
	return s.Word < o.Word
}

// Index is the frozen, read-only trie. It is safe for any number of
// concurrent readers.
type Index struct {
	root    *Node
	words   int
	nodes   int
	maxRank int
}

// Lookup returns the node spelling prefix, or ErrNotFound.
func (x *Index) Lookup(prefix string) (*Node, error) {
	return lookup(x.root, prefix)
}

// Len returns the number of distinct words.
func (x *Index) Len() int { return x.words }

// Search returns the limit highest-ranked words starting with prefix.
// An empty prefix, a non-positive limit or an unknown prefix yields an
// empty result.
func (x *Index) Search(prefix string, limit int) []Suggestion {
	if prefix == "" || limit <= 0 {
		return []Suggestion{}
	}
	start, err := x.Lookup(prefix)
	if err != nil {
		return []Suggestion{}
	}
	// no subtree holds more words than the whole index
	if limit > x.words {
		limit = x.words
	}
	if limit == 0 {
		return []Suggestion{}
	}

	w := newWindow(limit)
	stack := []*Node{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.rank > 0 {
			w.offer(Suggestion{Word: n.word, Rank: n.rank})
		}
		for _, e := range n.edges {
			stack = append(stack, e.node)
		}
	}
	return w.results()
}

// Stats returns statistics about the loaded dictionary
func (x *Index) Stats() map[string]int {
	return map[string]int{
		"totalWords":   x.words,
		"totalNodes":   x.nodes,
		"maxFrequency": x.maxRank,
	}
}

// window is a fixed-size ordered list of candidates, padded with rank 0
// sentinels that every real entry outranks.
type window struct {
	slots []Suggestion
}

func newWindow(size int) *window {
	return &window{slots: make([]Suggestion, size)}
}

// offer places s before the first slot it outranks and drops the last slot.
func (w *window) offer(s Suggestion) {
	last := len(w.slots) - 1
	if !s.Outranks(w.slots[last]) {
		return
	}
	for i := range w.slots {
		if s.Outranks(w.slots[i]) {
			copy(w.slots[i+1:], w.slots[i:last])
			w.slots[i] = s
			return
		}
	}
}

// results cuts the window at the first remaining sentinel.
func (w *window) results() []Suggestion {
	for i, s := range w.slots {
		if s.Rank == 0 {
			return w.slots[:i]
		}
	}
	return w.slots
}
