package suggest

import (
	"errors"
	"testing"
)

func TestInsertAndLookup(t *testing.T) {
	trie := NewTrie()
	entries := map[string]int{
		"cat":  5,
		"car":  9,
		"cart": 9,
		"cap":  1,
	}
	for word, rank := range entries {
		if err := trie.Insert(word, rank); err != nil {
			t.Fatalf("Insert(%q, %d): %v", word, rank, err)
		}
	}

	for word, rank := range entries {
		node, err := trie.Lookup(word)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", word, err)
		}
		if !node.IsTerminal() || node.Word() != word || node.Rank() != rank {
			t.Errorf("Lookup(%q) = (%q, %d), want (%q, %d)", word, node.Word(), node.Rank(), word, rank)
		}
	}

	// intermediate prefixes exist but carry no word
	node, err := trie.Lookup("ca")
	if err != nil {
		t.Fatalf("Lookup(ca): %v", err)
	}
	if node.IsTerminal() || node.Rank() != 0 {
		t.Errorf("intermediate node should not be terminal, got (%q, %d)", node.Word(), node.Rank())
	}

	if trie.Len() != len(entries) {
		t.Errorf("Len() = %d, want %d", trie.Len(), len(entries))
	}
}

func TestLookupNotFound(t *testing.T) {
	trie := NewTrie()
	if err := trie.Insert("cat", 5); err != nil {
		t.Fatal(err)
	}
	for _, prefix := range []string{"dog", "cats", "cb"} {
		if _, err := trie.Lookup(prefix); !errors.Is(err, ErrNotFound) {
			t.Errorf("Lookup(%q) err = %v, want ErrNotFound", prefix, err)
		}
	}
}

// last write wins, no accumulation
func TestInsertOverwrites(t *testing.T) {
	trie := NewTrie()
	for _, rank := range []int{3, 10, 7} {
		if err := trie.Insert("word", rank); err != nil {
			t.Fatal(err)
		}
	}
	node, err := trie.Lookup("word")
	if err != nil {
		t.Fatal(err)
	}
	if node.Rank() != 7 {
		t.Errorf("rank = %d, want 7", node.Rank())
	}
	if trie.Len() != 1 {
		t.Errorf("Len() = %d, want 1", trie.Len())
	}
}

func TestInsertInvalid(t *testing.T) {
	testCases := []struct {
		word string
		rank int
	}{
		{"", 1},
		{"", 0},
		{"word", -1},
		{"\xff", 1},
		{"ab\xfe", 2},
		{"caf\xe9", 3},
	}
	trie := NewTrie()
	for _, tc := range testCases {
		if err := trie.Insert(tc.word, tc.rank); !errors.Is(err, ErrInvalidEntry) {
			t.Errorf("Insert(%q, %d) err = %v, want ErrInvalidEntry", tc.word, tc.rank, err)
		}
	}
	if trie.Len() != 0 {
		t.Errorf("rejected entries must not be stored, Len() = %d", trie.Len())
	}
	// the root never becomes a word
	if root, _ := trie.Lookup(""); root.IsTerminal() {
		t.Error("root marked terminal after invalid insert")
	}
}

func TestUnicodeWords(t *testing.T) {
	trie := NewTrie()
	words := map[string]int{"привет": 4, "приём": 2, "日本語": 8}
	for w, r := range words {
		if err := trie.Insert(w, r); err != nil {
			t.Fatal(err)
		}
	}
	idx := trie.Freeze()
	for w, r := range words {
		node, err := idx.Lookup(w)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", w, err)
		}
		if node.Rank() != r {
			t.Errorf("Lookup(%q) rank = %d, want %d", w, node.Rank(), r)
		}
	}
	got := idx.Search("при", 5)
	if len(got) != 2 || got[0].Word != "привет" || got[1].Word != "приём" {
		t.Errorf("Search(при) = %v", got)
	}
}

func TestFreezeRejectsInserts(t *testing.T) {
	trie := NewTrie()
	if err := trie.Insert("a", 1); err != nil {
		t.Fatal(err)
	}
	idx := trie.Freeze()
	if err := trie.Insert("b", 1); !errors.Is(err, ErrFrozen) {
		t.Errorf("Insert after Freeze err = %v, want ErrFrozen", err)
	}
	if _, err := idx.Lookup("b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("frozen index changed after rejected insert")
	}
	// freezing again hands out the same snapshot
	if again := trie.Freeze(); again.Len() != idx.Len() {
		t.Errorf("second Freeze Len() = %d, want %d", again.Len(), idx.Len())
	}
	// lookups on the builder keep working after the freeze
	if node, err := trie.Lookup("a"); err != nil || node.Rank() != 1 {
		t.Errorf("Lookup(a) after Freeze = %v, %v", node, err)
	}
}
