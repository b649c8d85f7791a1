// Package suggest is the core, providing the ranked prefix trie and the bounded top-K retrieval over it.
package suggest

// Searcher defines the read side shared by the frozen index and the hot cache.
type Searcher interface {
	// Search returns at most limit suggestions starting with prefix,
	// ordered by rank descending then word ascending.
	Search(prefix string, limit int) []Suggestion

	// Stats returns statistics about the loaded dictionary
	Stats() map[string]int
}

var (
	_ Searcher = (*Index)(nil)
	_ Searcher = (*HotCache)(nil)
)
