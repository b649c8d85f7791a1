package suggest

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/maps"
)

var (
	// ErrInvalidEntry is returned by Insert for an empty word, a word that is
	// not valid UTF-8 or a negative rank.
	ErrInvalidEntry = errors.New("invalid dictionary entry")
	// ErrNotFound is returned by Lookup when no path spells the prefix.
	ErrNotFound = errors.New("prefix not found")
	// ErrFrozen is returned by Insert once the trie has been frozen.
	ErrFrozen = errors.New("trie is frozen")
)

// edge is a frozen child link. Edges of a frozen node are sorted by key.
type edge struct {
	key  rune
	node *Node
}

// Node is one prefix position in the trie.
type Node struct {
	children map[rune]*Node
	edges    []edge
	word     string
	rank     int
}

// Word returns the full text this node terminates, or "" for intermediate nodes.
func (n *Node) Word() string { return n.word }

// Rank returns the load-time rank, 0 when the node cannot be reported.
func (n *Node) Rank() int { return n.rank }

// IsTerminal reports whether a dictionary word ends at this node.
func (n *Node) IsTerminal() bool { return n.word != "" }

// child resolves one character. Frozen nodes binary search their edges.
func (n *Node) child(r rune) *Node {
	if n.children != nil {
		return n.children[r]
	}
	i := sort.Search(len(n.edges), func(i int) bool { return n.edges[i].key >= r })
	if i < len(n.edges) && n.edges[i].key == r {
		return n.edges[i].node
	}
	return nil
}

// lookup walks prefix from root. Invalid UTF-8 never spells a path, since
// Insert refuses such words.
func lookup(root *Node, prefix string) (*Node, error) {
	if !utf8.ValidString(prefix) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, prefix)
	}
	node := root
	for _, r := range prefix {
		if node = node.child(r); node == nil {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, prefix)
		}
	}
	return node, nil
}

// Trie is the mutable load-phase builder. It is not safe for concurrent use;
// a single loader inserts every entry and then calls Freeze.
type Trie struct {
	root     *Node
	words    int
	nodes    int
	maxRank  int
	inserted int
	frozen   bool
}

// NewTrie returns an empty trie ready for loading.
func NewTrie() *Trie {
	return &Trie{
		root:  &Node{children: make(map[rune]*Node)},
		nodes: 1,
	}
}

// Insert adds word with rank, overwriting any earlier rank for the same word.
func (t *Trie) Insert(word string, rank int) error {
	if t.frozen {
		return ErrFrozen
	}
	if word == "" {
		return fmt.Errorf("%w: empty word", ErrInvalidEntry)
	}
	if !utf8.ValidString(word) {
		return fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidEntry, word)
	}
	if rank < 0 {
		return fmt.Errorf("%w: negative rank %d for %q", ErrInvalidEntry, rank, word)
	}

	node := t.root
	for _, r := range word {
		next, ok := node.children[r]
		if !ok {
			next = &Node{children: make(map[rune]*Node)}
			node.children[r] = next
			t.nodes++
		}
		node = next
	}
	if node.word == "" {
		t.words++
	}
	node.word = word
	node.rank = rank
	t.inserted++
	if rank > t.maxRank {
		t.maxRank = rank
	}
	return nil
}

// Lookup returns the node spelling prefix, or ErrNotFound.
func (t *Trie) Lookup(prefix string) (*Node, error) {
	return lookup(t.root, prefix)
}

// Len returns the number of distinct words.
func (t *Trie) Len() int { return t.words }

// Freeze seals the trie and returns the read-only index over its nodes.
// Every child map is replaced by a key-sorted edge slice, so nothing
// reachable from the index can be mutated afterwards.
func (t *Trie) Freeze() *Index {
	if !t.frozen {
		stack := []*Node{t.root}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			keys := maps.Keys(n.children)
			slices.Sort(keys)
			n.edges = make([]edge, len(keys))
			for i, k := range keys {
				child := n.children[k]
				n.edges[i] = edge{key: k, node: child}
				stack = append(stack, child)
			}
			n.children = nil
		}
		t.frozen = true
		log.Debugf("Froze trie: %d words, %d nodes, %d inserts", t.words, t.nodes, t.inserted)
	}
	return &Index{
		root:    t.root,
		words:   t.words,
		nodes:   t.nodes,
		maxRank: t.maxRank,
	}
}
