package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bastiangx/wordrank/pkg/suggest"
)

func TestInputHandlerRun(t *testing.T) {
	trie := suggest.NewTrie()
	trie.Insert("hello", 12000)
	trie.Insert("help", 300)
	trie.Insert("hero", 5)

	h := NewInputHandler(trie.Freeze(), 2, 4)
	h.logger.SetOutput(&bytes.Buffer{})

	var out bytes.Buffer
	in := strings.NewReader("he\n\n  hel \nzzz\ntoolong\n")
	if err := h.Run(in, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Found 2 suggestions for prefix 'he'",
		"hello",
		"12,000",
		"Found 2 suggestions for prefix 'hel'",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "hero") {
		t.Errorf("limit of 2 not applied:\n%s", got)
	}
	if strings.Contains(got, "zzz") || strings.Contains(got, "toolong") {
		t.Errorf("unexpected output for unmatched prefixes:\n%s", got)
	}
	if h.requestCount != 4 {
		t.Errorf("requestCount = %d, want 4", h.requestCount)
	}
	if strings.Contains(got, "> ") {
		t.Errorf("prompt printed for non-terminal input")
	}
}
