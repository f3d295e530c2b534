package history

import (
	"path/filepath"
	"testing"
	"time"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	s := openStore(t)

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	runs := []Entry{
		{Command: "generate", Table: "app.users", Kind: "insert", Rows: 3, Statements: 4, Bytes: 512, Duration: 40 * time.Millisecond, Status: "success", StartedAt: base},
		{Command: "generate", Table: "app.users", Kind: "update", Status: "failed", Error: "primary key values required", StartedAt: base.Add(time.Minute)},
		{Command: "split", Statements: 120, Bytes: 90_000, Status: "success", StartedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range runs {
		if err := s.Record(e); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := s.List(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Command != "split" {
		t.Errorf("newest first: got %q", entries[0].Command)
	}
	if entries[1].Error != "primary key values required" {
		t.Errorf("error = %q", entries[1].Error)
	}
	if entries[2].Duration != 40*time.Millisecond {
		t.Errorf("duration = %v", entries[2].Duration)
	}
	for _, e := range entries {
		if e.ID == "" {
			t.Error("entries should get a generated id")
		}
	}
}

func TestListLimit(t *testing.T) {
	s := openStore(t)
	for i := 0; i < 5; i++ {
		e := Entry{Command: "generate", Status: "success", StartedAt: time.Now().Add(time.Duration(i) * time.Second)}
		if err := s.Record(e); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := s.List(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
}

func TestListEmpty(t *testing.T) {
	s := openStore(t)
	entries, err := s.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}
