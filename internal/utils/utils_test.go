package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/BurntSushi/toml"
)

func TestWordAt(t *testing.T) {
	testCases := []struct {
		line     string
		col      int
		expected string
	}{
		{"SELECT * FROM ORD001 WHERE", 16, "ORD001"},
		{"SELECT * FROM ORD001 WHERE", 14, "ORD001"},
		{"SELECT * FROM ORD001 WHERE", 20, "ORD001"},
		{"call('ORD_01')", 8, "ORD_01"},
		{"a  b", 2, ""},
		{"注文 ORD001", 4, "ORD001"},
		{"x", -1, ""},
		{"x", 5, ""},
		{"", 0, ""},
	}

	for _, tc := range testCases {
		if got := WordAt(tc.line, tc.col); got != tc.expected {
			t.Errorf("WordAt(%q, %d) = %q, want %q", tc.line, tc.col, got, tc.expected)
		}
	}
}

func TestFormatWithCommas(t *testing.T) {
	testCases := map[int]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		1234567:  "1,234,567",
		-1234567: "-1,234,567",
	}
	for n, expected := range testCases {
		if got := FormatWithCommas(n); got != expected {
			t.Errorf("FormatWithCommas(%d) = %q, want %q", n, got, expected)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("SELECT 1", 20); got != "SELECT 1" {
		t.Errorf("unexpected %q", got)
	}
	if got := Truncate("受注テーブル", 3); got != "受注…" {
		t.Errorf("unexpected %q", got)
	}
}

func TestResolveAgainst(t *testing.T) {
	base := t.TempDir()
	if got := ResolveAgainst(base, "dict/a.csv"); got != filepath.Join(base, "dict", "a.csv") {
		t.Errorf("relative path resolved to %q", got)
	}
	abs := filepath.Join(base, "b.csv")
	if got := ResolveAgainst("/elsewhere", abs); got != abs {
		t.Errorf("absolute path changed to %q", got)
	}
	if got := ResolveAgainst(base, "  "); got != "" {
		t.Errorf("blank path resolved to %q", got)
	}
}

func TestTOMLExtractors(t *testing.T) {
	var data map[string]any
	_, err := toml.Decode(`
[server]
complete_limit = 5
watch = true

[[sources]]
path = "a.csv"
description_columns = [2, 3]

[[sources]]
path = "b.csv"
description_columns = [2, "x"]
`, &data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	server, ok := ExtractSection(data, "server")
	if !ok {
		t.Fatal("missing server section")
	}
	if n, ok := ExtractInt64(server, "complete_limit"); !ok || n != 5 {
		t.Errorf("complete_limit = %d, %v", n, ok)
	}
	if b, ok := ExtractBool(server, "watch"); !ok || !b {
		t.Errorf("watch = %v, %v", b, ok)
	}

	tables, ok := ExtractTables(data, "sources")
	if !ok || len(tables) != 2 {
		t.Fatalf("sources = %v, %v", tables, ok)
	}
	if p, _ := ExtractString(tables[0], "path"); p != "a.csv" {
		t.Errorf("path = %q", p)
	}
	if cols, ok := ExtractIntList(tables[0], "description_columns"); !ok || len(cols) != 2 || cols[1] != 3 {
		t.Errorf("columns = %v, %v", cols, ok)
	}
	if _, ok := ExtractIntList(tables[1], "description_columns"); ok {
		t.Error("mixed list must be rejected")
	}
}

func TestSaveTOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toml")
	in := struct {
		Name string `toml:"name"`
	}{Name: "exdict"}

	if err := SaveTOMLFile(in, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !IsReadableFile(path) {
		t.Fatal("saved file not readable")
	}
	var out struct {
		Name string `toml:"name"`
	}
	if err := LoadTOMLFile(path, &out); err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.Name != "exdict" {
		t.Errorf("name = %q", out.Name)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestStatDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", AppName)
	status := StatDir(dir)
	if !status.Exists || !status.Writable || status.Err != nil {
		t.Fatalf("StatDir(%q) = %+v", dir, status)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("scratch files left behind: %d entries", len(entries))
	}

	file := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	status = StatDir(filepath.Join(file, "sub"))
	if status.Exists || status.Writable || status.Err == nil {
		t.Errorf("directory under a file reported %+v", status)
	}
}

func TestConfigLocatorPath(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on linux")
	}
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	locator, err := NewConfigLocator()
	if err != nil {
		t.Fatalf("locator: %v", err)
	}
	want := filepath.Join(xdg, AppName, "config.toml")
	if got := locator.Path("config.toml"); got != want {
		t.Errorf("Path = %q, want %q", got, want)
	}
	if got := locator.RuntimeInfo()["env_xdg_config_home"]; got != xdg {
		t.Errorf("runtime info env = %q", got)
	}
}
