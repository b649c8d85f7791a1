package utils

import (
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Server struct {
		Addr string `toml:"addr"`
		Max  int    `toml:"max"`
	} `toml:"server"`
}

func TestSaveAndLoadTOML(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.toml")

	var in sample
	in.Server.Addr = "localhost:1"
	in.Server.Max = 7
	if err := SaveTOMLFile(in, path); err != nil {
		t.Fatalf("SaveTOMLFile: %v", err)
	}
	if !FileExists(path) {
		t.Fatal("config not written")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}

	var out sample
	if err := LoadTOMLFile(path, &out); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Errorf("loaded %+v, want %+v", out, in)
	}
}

func TestParseTOMLWithRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.toml")
	if err := os.WriteFile(path, []byte("[server]\naddr = 5\nmax = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tables, err := ParseTOMLWithRecovery(path)
	if err != nil {
		t.Fatal(err)
	}
	section, ok := ExtractSection(tables, "server")
	if !ok {
		t.Fatal("server section missing")
	}
	if _, ok := ExtractString(section, "addr"); ok {
		t.Error("integer addr accepted as string")
	}
	if n, ok := ExtractInt64(section, "max"); !ok || n != 3 {
		t.Errorf("max = %d, %v", n, ok)
	}
	if _, ok := ExtractSection(tables, "dict"); ok {
		t.Error("missing section reported present")
	}
}
