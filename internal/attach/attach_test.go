package attach

import (
	"os"
	"path/filepath"
	"testing"
)

func newResolver(t *testing.T, files map[string]string) *Resolver {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	r, err := NewResolver(dir)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestResolve(t *testing.T) {
	r := newResolver(t, map[string]string{
		"notes.txt": "hello from file",
	})

	got, ok := r.Resolve("notes.txt", "CLOB", 0, "app.docs")
	if !ok || got != "hello from file" {
		t.Errorf("Resolve = %q, %v", got, ok)
	}
}

func TestResolveMissesLeaveCellUntouched(t *testing.T) {
	r := newResolver(t, map[string]string{"present.txt": "x"})

	tests := []struct {
		name string
		cell string
	}{
		{"plain value", "just some text"},
		{"missing file", "absent.txt"},
		{"empty cell", ""},
		{"path traversal", "../present.txt"},
		{"nested path", "sub/present.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := r.Resolve(tt.cell, "CLOB", 0, "app.docs"); ok {
				t.Errorf("Resolve(%q) should not resolve", tt.cell)
			}
		})
	}
}

func TestResolveCompactsJSON(t *testing.T) {
	r := newResolver(t, map[string]string{
		"payload.json": "{\n  \"a\": 1,\n  \"b\": [1, 2]\n}\n",
		"broken.json":  "{not json",
	})

	got, ok := r.Resolve("payload.json", "CLOB", 0, "app.docs")
	if !ok || got != `{"a":1,"b":[1,2]}` {
		t.Errorf("Resolve = %q, %v", got, ok)
	}

	// Invalid JSON passes through unchanged.
	got, ok = r.Resolve("broken.json", "CLOB", 0, "app.docs")
	if !ok || got != "{not json" {
		t.Errorf("Resolve = %q, %v", got, ok)
	}
}

func TestResolveIgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0o755); err != nil {
		t.Fatal(err)
	}
	r, err := NewResolver(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := r.Resolve("subdir", "CLOB", 0, "t"); ok {
		t.Error("directory names must not resolve")
	}
}

func TestNewResolverRejectsNonDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewResolver(file); err == nil {
		t.Error("file path should be rejected")
	}
	if _, err := NewResolver(filepath.Join(dir, "missing")); err == nil {
		t.Error("missing path should be rejected")
	}
}
