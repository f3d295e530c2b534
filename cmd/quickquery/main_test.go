package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dbtoolkit/quickquery/internal/history"
	"github.com/urfave/cli/v2"
)

func buildApp() *cli.App {
	return &cli.App{
		Name: "quickquery",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}},
			&cli.StringFlag{Name: "log-level"},
			&cli.StringFlag{Name: "log-format"},
		},
		Commands: []*cli.Command{
			{
				Name:   "generate",
				Action: runGenerate,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "schema", Required: true},
					&cli.StringFlag{Name: "data", Required: true},
					&cli.StringFlag{Name: "table", Required: true},
					&cli.StringFlag{Name: "kind", Value: "insert"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}},
					&cli.StringFlag{Name: "attachments-dir"},
				},
			},
			{
				Name:   "split",
				Action: runSplit,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "in", Required: true},
					&cli.StringFlag{Name: "by"},
					&cli.IntFlag{Name: "limit"},
					&cli.StringFlag{Name: "out-dir", Value: "."},
				},
			},
			{
				Name:   "check-duplicates",
				Action: runCheckDuplicates,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "schema", Required: true},
					&cli.StringFlag{Name: "data", Required: true},
					&cli.StringFlag{Name: "table", Required: true},
				},
			},
		},
	}
}

type fixture struct {
	dir        string
	configPath string
	schemaPath string
	dataPath   string
}

func writeFixture(t *testing.T, historyEnabled bool) fixture {
	t.Helper()
	dir := t.TempDir()

	f := fixture{
		dir:        dir,
		configPath: filepath.Join(dir, "config.yaml"),
		schemaPath: filepath.Join(dir, "schema.csv"),
		dataPath:   filepath.Join(dir, "data.csv"),
	}

	cfg := "history:\n  enabled: false\n"
	if historyEnabled {
		cfg = "history:\n  path: " + filepath.Join(dir, "history.db") + "\n"
	}
	files := map[string]string{
		f.configPath: cfg,
		f.schemaPath: "id,NUMBER,no,,yes\nname,VARCHAR2(50),yes\n",
		f.dataPath:   "id,name\n1,Ann\n2,Bob\n",
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return f
}

func TestGenerateCommand(t *testing.T) {
	f := writeFixture(t, false)
	out := filepath.Join(f.dir, "out.sql")

	err := buildApp().Run([]string{"quickquery", "-c", f.configPath,
		"generate", "--schema", f.schemaPath, "--data", f.dataPath,
		"--table", "app.users", "--kind", "insert", "--out", out})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	sql := string(data)
	if !strings.HasPrefix(sql, "SET DEFINE OFF;") {
		t.Errorf("script missing header:\n%s", sql)
	}
	if !strings.Contains(sql, "INSERT INTO app.users (id, name) VALUES (1, 'Ann');") {
		t.Errorf("script missing insert:\n%s", sql)
	}
}

func TestGenerateCommandBackground(t *testing.T) {
	f := writeFixture(t, false)
	cfg := "generation:\n  row_threshold: 1\nhistory:\n  enabled: false\n"
	if err := os.WriteFile(f.configPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(f.dir, "out.sql")

	err := buildApp().Run([]string{"quickquery", "-c", f.configPath,
		"generate", "--schema", f.schemaPath, "--data", f.dataPath,
		"--table", "app.users", "--out", out})
	if err != nil {
		t.Fatalf("background generate: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	sql := string(data)
	if !strings.Contains(sql, "VALUES (1, 'Ann');") || !strings.Contains(sql, "VALUES (2, 'Bob');") {
		t.Errorf("background run must produce the full script:\n%s", sql)
	}
}

func TestGenerateCommandRecordsHistory(t *testing.T) {
	f := writeFixture(t, true)
	out := filepath.Join(f.dir, "out.sql")

	err := buildApp().Run([]string{"quickquery", "-c", f.configPath,
		"generate", "--schema", f.schemaPath, "--data", f.dataPath,
		"--table", "app.users", "--out", out})
	if err != nil {
		t.Fatal(err)
	}

	store, err := history.Open(filepath.Join(f.dir, "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	entries, err := store.List(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
	if entries[0].Command != "generate" || entries[0].Status != "success" || entries[0].Rows != 2 {
		t.Errorf("entry = %+v", entries[0])
	}
}

func TestGenerateCommandInvalidKind(t *testing.T) {
	f := writeFixture(t, false)

	err := buildApp().Run([]string{"quickquery", "-c", f.configPath,
		"generate", "--schema", f.schemaPath, "--data", f.dataPath,
		"--table", "app.users", "--kind", "upsert"})
	if err == nil {
		t.Error("unknown kind should be rejected")
	}
}

func TestSplitCommand(t *testing.T) {
	f := writeFixture(t, false)
	in := filepath.Join(f.dir, "script.sql")
	script := "SET DEFINE OFF;\nINSERT INTO t (a) VALUES (1);\nINSERT INTO t (a) VALUES (2);\nINSERT INTO t (a) VALUES (3);\n"
	if err := os.WriteFile(in, []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(f.dir, "chunks")
	if err := os.Mkdir(outDir, 0o755); err != nil {
		t.Fatal(err)
	}

	err := buildApp().Run([]string{"quickquery", "-c", f.configPath,
		"split", "--in", in, "--by", "count", "--limit", "2", "--out-dir", outDir})
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	chunks, err := filepath.Glob(filepath.Join(outDir, "script_*.sql"))
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunk files, got %v", chunks)
	}
	for _, path := range chunks {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(string(data), "SET DEFINE OFF;") {
			t.Errorf("chunk %s missing header", path)
		}
	}
}

func TestCheckDuplicatesCommand(t *testing.T) {
	f := writeFixture(t, false)
	if err := os.WriteFile(f.dataPath, []byte("id,name\n1,Ann\n1,Bob\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := buildApp().Run([]string{"quickquery", "-c", f.configPath,
		"check-duplicates", "--schema", f.schemaPath, "--data", f.dataPath,
		"--table", "app.users"})
	if err != nil {
		t.Fatalf("check-duplicates is advisory and should not fail: %v", err)
	}
}
