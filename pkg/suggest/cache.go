package suggest

import (
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// cachedResult is the answer for one prefix at the largest limit asked so far.
type cachedResult struct {
	limit       int
	suggestions []Suggestion
}

// covers reports whether the cached answer can serve a request for limit results.
// A result shorter than its own limit already holds every match.
func (c *cachedResult) covers(limit int) bool {
	return limit <= c.limit || len(c.suggestions) < c.limit
}

// HotCache memoizes search results per prefix with LRU eviction.
// The wrapped index is immutable, so cached answers never go stale.
// A complete answer for a prefix also serves every longer prefix.
type HotCache struct {
	next       Searcher
	hotTrie    *patricia.Trie
	accessTime map[string]int64
	clock      int64
	hits       int64
	misses     int64
	maxEntries int
	mu         sync.Mutex
}

// NewHotCache wraps next with a cache holding up to maxEntries prefixes.
func NewHotCache(next Searcher, maxEntries int) *HotCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &HotCache{
		next:       next,
		hotTrie:    patricia.NewTrie(),
		accessTime: make(map[string]int64, maxEntries),
		maxEntries: maxEntries,
	}
}

// Search answers from the cache when possible and falls through to the index otherwise.
func (hc *HotCache) Search(prefix string, limit int) []Suggestion {
	if prefix == "" || limit <= 0 {
		return []Suggestion{}
	}

	hc.mu.Lock()
	if item := hc.hotTrie.Get(patricia.Prefix(prefix)); item != nil {
		cached := item.(*cachedResult)
		if cached.covers(limit) {
			hc.hits++
			hc.markAccessed(prefix)
			out := truncateCopy(cached.suggestions, limit)
			hc.mu.Unlock()
			return out
		}
	}
	if out, ok := hc.fromShorterPrefix(prefix, limit); ok {
		hc.hits++
		hc.mu.Unlock()
		return out
	}
	hc.misses++
	hc.mu.Unlock()

	results := hc.next.Search(prefix, limit)

	hc.mu.Lock()
	defer hc.mu.Unlock()
	if item := hc.hotTrie.Get(patricia.Prefix(prefix)); item != nil && item.(*cachedResult).limit >= limit {
		// a concurrent caller stored an answer at least as wide
		return results
	}
	if _, exists := hc.accessTime[prefix]; !exists && len(hc.accessTime) >= hc.maxEntries {
		hc.evictLRU()
	}
	hc.hotTrie.Set(patricia.Prefix(prefix), &cachedResult{
		limit:       limit,
		suggestions: truncateCopy(results, limit),
	})
	hc.markAccessed(prefix)
	return results
}

// fromShorterPrefix answers prefix from the longest cached shorter prefix
// whose result holds every match. Filtering a complete ranked list keeps its order.
func (hc *HotCache) fromShorterPrefix(prefix string, limit int) ([]Suggestion, bool) {
	var (
		key  string
		best *cachedResult
	)
	hc.hotTrie.VisitPrefixes(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		cached := item.(*cachedResult)
		if len(p) < len(prefix) && len(cached.suggestions) < cached.limit {
			key, best = string(p), cached
		}
		return nil
	})
	if best == nil {
		return nil, false
	}

	out := make([]Suggestion, 0, min(limit, len(best.suggestions)))
	for _, s := range best.suggestions {
		if strings.HasPrefix(s.Word, prefix) {
			out = append(out, s)
			if len(out) == limit {
				break
			}
		}
	}
	hc.markAccessed(key)
	return out, true
}

// Stats merges the index statistics with cache counters.
func (hc *HotCache) Stats() map[string]int {
	stats := hc.next.Stats()

	hc.mu.Lock()
	defer hc.mu.Unlock()
	stats["hotCacheWords"] = len(hc.accessTime)
	stats["maxHotWords"] = hc.maxEntries
	stats["hotCacheHits"] = int(hc.hits)
	stats["hotCacheMisses"] = int(hc.misses)
	return stats
}

func (hc *HotCache) markAccessed(prefix string) {
	hc.clock++
	hc.accessTime[prefix] = hc.clock
}

func (hc *HotCache) evictLRU() {
	var oldestPrefix string
	var oldestTime int64 = math.MaxInt64

	for prefix, accessTime := range hc.accessTime {
		if accessTime < oldestTime {
			oldestTime = accessTime
			oldestPrefix = prefix
		}
	}

	if oldestPrefix != "" {
		hc.hotTrie.Delete(patricia.Prefix(oldestPrefix))
		delete(hc.accessTime, oldestPrefix)
		log.Debugf("Evicted prefix '%s' from hot cache", oldestPrefix)
	}
}

func truncateCopy(s []Suggestion, limit int) []Suggestion {
	if len(s) > limit {
		s = s[:limit]
	}
	out := make([]Suggestion, len(s))
	copy(out, s)
	return out
}
