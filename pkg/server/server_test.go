package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/bastiangx/wordrank/internal/logger"
	"github.com/bastiangx/wordrank/pkg/config"
	"github.com/bastiangx/wordrank/pkg/suggest"
	"github.com/vmihailenco/msgpack/v5"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	trie := suggest.NewTrie()
	for word, rank := range map[string]int{
		"car": 9, "cart": 9, "cat": 5, "cap": 1, "dog": 3, "cab": 0,
	} {
		if err := trie.Insert(word, rank); err != nil {
			t.Fatal(err)
		}
	}
	cfg := config.ServerConfig{DefaultLimit: 2, MaxLimit: 3, MaxPrefix: 4}
	return NewServer(trie.Freeze(), cfg, logger.Discard())
}

// roundTrip feeds requests through ServeConn and decodes every response.
func roundTrip(t *testing.T, s *Server, reqs ...Request) []Response {
	t.Helper()
	var in, out bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, req := range reqs {
		if err := enc.Encode(&req); err != nil {
			t.Fatal(err)
		}
	}
	rw := struct {
		io.Reader
		io.Writer
	}{&in, &out}
	if err := s.ServeConn(context.Background(), rw); err != nil {
		t.Fatalf("ServeConn: %v", err)
	}

	var resps []Response
	dec := msgpack.NewDecoder(&out)
	for {
		var resp Response
		if err := dec.Decode(&resp); err != nil {
			if errors.Is(err, io.EOF) {
				return resps
			}
			t.Fatal(err)
		}
		resps = append(resps, resp)
	}
}

func words(suggestions []CompletionSuggestion) string {
	var w []string
	for _, s := range suggestions {
		w = append(w, s.Word)
	}
	return strings.Join(w, ",")
}

func TestServeConnComplete(t *testing.T) {
	testCases := []struct {
		req  Request
		want string
	}{
		{Request{ID: "1", Prefix: "ca", Limit: 3}, "car,cart,cat"},
		{Request{ID: "2", Command: CommandComplete, Prefix: "ca"}, "car,cart"},
		{Request{ID: "3", Prefix: "ca", Limit: 50}, "car,cart,cat"},
		{Request{ID: "4", Prefix: "d", Limit: 1}, "dog"},
		{Request{ID: "5", Prefix: "x", Limit: 3}, ""},
		{Request{ID: "6", Prefix: "", Limit: 3}, ""},
	}

	reqs := make([]Request, len(testCases))
	for i, tc := range testCases {
		reqs[i] = tc.req
	}
	resps := roundTrip(t, newTestServer(t), reqs...)
	if len(resps) != len(testCases) {
		t.Fatalf("got %d responses, want %d", len(resps), len(testCases))
	}
	for i, tc := range testCases {
		resp := resps[i]
		if resp.ID != tc.req.ID || resp.Error != "" {
			t.Errorf("request %s: response %+v", tc.req.ID, resp)
		}
		if got := words(resp.Suggestions); got != tc.want {
			t.Errorf("request %s: got %q, want %q", tc.req.ID, got, tc.want)
		}
		if resp.Count != len(resp.Suggestions) {
			t.Errorf("request %s: count %d for %d suggestions", tc.req.ID, resp.Count, len(resp.Suggestions))
		}
	}
	if resps[0].Suggestions[0].Rank != 9 {
		t.Errorf("rank = %d, want 9", resps[0].Suggestions[0].Rank)
	}
}

func TestServeConnErrors(t *testing.T) {
	resps := roundTrip(t, newTestServer(t),
		Request{ID: "long", Prefix: "caaaat"},
		Request{ID: "bogus", Command: "reload"},
		Request{ID: "runes", Prefix: "ёжик", Limit: 1},
	)
	if len(resps) != 3 {
		t.Fatalf("got %d responses", len(resps))
	}
	for _, resp := range resps[:2] {
		if resp.Code != 400 || resp.Error == "" {
			t.Errorf("%s: want a 400 error, got %+v", resp.ID, resp)
		}
	}
	// four runes fit a max prefix of 4 even though the bytes do not
	if resps[2].Error != "" {
		t.Errorf("runes: %+v", resps[2])
	}
}

func TestServeConnHealthAndStats(t *testing.T) {
	resps := roundTrip(t, newTestServer(t),
		Request{ID: "h", Command: CommandHealth},
		Request{ID: "s", Command: CommandStats},
	)
	if resps[0].Status != "ok" {
		t.Errorf("health = %+v", resps[0])
	}
	stats := resps[1].Stats
	if stats["totalWords"] != 6 || stats["maxFrequency"] != 9 || stats["requests"] != 2 {
		t.Errorf("stats = %v", stats)
	}
}

func TestServeConnGarbage(t *testing.T) {
	var out bytes.Buffer
	rw := struct {
		io.Reader
		io.Writer
	}{bytes.NewReader([]byte{0xc1}), &out}
	if err := newTestServer(t).ServeConn(context.Background(), rw); err == nil {
		t.Fatal("garbage input accepted")
	}
	var resp Response
	if err := msgpack.NewDecoder(&out).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != 400 {
		t.Errorf("resp = %+v", resp)
	}
}
