package suggest

import (
	"fmt"
	"sync"
	"testing"
)

// countingSearcher records how often the cache falls through.
type countingSearcher struct {
	*Index
	mu    sync.Mutex
	calls int
}

func (c *countingSearcher) Search(prefix string, limit int) []Suggestion {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.Index.Search(prefix, limit)
}

func newCounting(t *testing.T) *countingSearcher {
	return &countingSearcher{Index: buildIndex(t, map[string]int{
		"cat": 5, "car": 9, "cart": 9, "cap": 1, "dog": 3, "door": 7,
	})}
}

func TestHotCacheServesRepeats(t *testing.T) {
	inner := newCounting(t)
	hc := NewHotCache(inner, 8)

	first := hc.Search("ca", 3)
	second := hc.Search("ca", 3)
	if fmt.Sprint(first) != fmt.Sprint(second) {
		t.Errorf("cached result differs: %v vs %v", first, second)
	}
	if inner.calls != 1 {
		t.Errorf("index called %d times, want 1", inner.calls)
	}

	// narrower requests are cut from the cached answer
	if got := hc.Search("ca", 1); len(got) != 1 || got[0].Word != "car" {
		t.Errorf("Search(ca, 1) = %v", got)
	}
	if inner.calls != 1 {
		t.Errorf("narrower request missed the cache")
	}

	// wider requests go back to the index and widen the entry
	if got := hc.Search("ca", 10); len(got) != 4 {
		t.Errorf("Search(ca, 10) = %v", got)
	}
	if inner.calls != 2 {
		t.Errorf("wider request should fall through, calls = %d", inner.calls)
	}

	// a complete answer covers any limit
	hc.Search("ca", 50)
	if inner.calls != 2 {
		t.Errorf("complete cached answer not reused, calls = %d", inner.calls)
	}

	stats := hc.Stats()
	if stats["hotCacheHits"] != 3 || stats["hotCacheMisses"] != 2 || stats["totalWords"] != 6 {
		t.Errorf("Stats() = %v", stats)
	}
}

func TestHotCacheServesLongerPrefixes(t *testing.T) {
	inner := newCounting(t)
	hc := NewHotCache(inner, 8)

	// four matches under a limit of ten: the answer is complete
	hc.Search("ca", 10)

	testCases := []struct {
		prefix string
		limit  int
		want   string
	}{
		{"car", 5, "[{car 9} {cart 9}]"},
		{"cat", 1, "[{cat 5}]"},
		{"ca", 2, "[{car 9} {cart 9}]"},
		{"cap", 3, "[{cap 1}]"},
		{"carx", 3, "[]"},
	}
	for _, tc := range testCases {
		if got := fmt.Sprint(hc.Search(tc.prefix, tc.limit)); got != tc.want {
			t.Errorf("Search(%q, %d) = %s, want %s", tc.prefix, tc.limit, got, tc.want)
		}
	}
	if inner.calls != 1 {
		t.Errorf("longer prefixes reached the index, calls = %d", inner.calls)
	}

	// a truncated answer cannot stand in for a longer prefix
	hc.Search("do", 1)
	if got := hc.Search("doo", 1); len(got) != 1 || got[0].Word != "door" {
		t.Errorf("Search(doo) = %v", got)
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3", inner.calls)
	}
}

func TestHotCacheResultsAreCopies(t *testing.T) {
	hc := NewHotCache(newCounting(t), 4)
	got := hc.Search("do", 2)
	got[0].Word = "mutated"
	if again := hc.Search("do", 2); again[0].Word != "door" {
		t.Errorf("caller mutation leaked into cache: %v", again)
	}
}

func TestHotCacheEvictsLeastRecent(t *testing.T) {
	inner := newCounting(t)
	hc := NewHotCache(inner, 2)

	hc.Search("ca", 2)
	hc.Search("do", 2)
	hc.Search("ca", 2)  // refresh ca
	hc.Search("car", 2) // evicts do
	if inner.calls != 3 {
		t.Fatalf("calls = %d, want 3", inner.calls)
	}

	hc.Search("ca", 2)
	if inner.calls != 3 {
		t.Errorf("recently used prefix was evicted")
	}
	hc.Search("do", 2)
	if inner.calls != 4 {
		t.Errorf("least recent prefix was not evicted")
	}
	if n := hc.Stats()["hotCacheWords"]; n != 2 {
		t.Errorf("hotCacheWords = %d, want 2", n)
	}
}

func TestHotCacheEmptyInputs(t *testing.T) {
	inner := newCounting(t)
	hc := NewHotCache(inner, 2)
	if got := hc.Search("", 5); len(got) != 0 {
		t.Errorf("Search(\"\") = %v", got)
	}
	if got := hc.Search("ca", 0); len(got) != 0 {
		t.Errorf("Search(ca, 0) = %v", got)
	}
	if inner.calls != 0 {
		t.Errorf("empty inputs should not reach the index")
	}
}
