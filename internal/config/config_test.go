package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Generation.RowThreshold != 500 {
		t.Errorf("RowThreshold = %d", cfg.Generation.RowThreshold)
	}
	if cfg.Generation.ByteThreshold != 1<<20 {
		t.Errorf("ByteThreshold = %d", cfg.Generation.ByteThreshold)
	}
	if cfg.Split.Mode != "size" || cfg.Split.SizeLimit != 100_000 || cfg.Split.MaxCount != 500 {
		t.Errorf("Split = %+v", cfg.Split)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if !cfg.HistoryEnabled() {
		t.Error("history should default to enabled")
	}
	if cfg.History.Path == "" {
		t.Error("history path should have a default")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Generation.RowThreshold != 500 {
		t.Errorf("RowThreshold = %d", cfg.Generation.RowThreshold)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
generation:
  row_threshold: 50
split:
  mode: count
  max_count: 20
history:
  enabled: false
logging:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Generation.RowThreshold != 50 {
		t.Errorf("RowThreshold = %d", cfg.Generation.RowThreshold)
	}
	if cfg.Generation.ByteThreshold != 1<<20 {
		t.Error("unset threshold should keep its default")
	}
	if cfg.Split.Mode != "count" || cfg.Split.MaxCount != 20 {
		t.Errorf("Split = %+v", cfg.Split)
	}
	if cfg.HistoryEnabled() {
		t.Error("history explicitly disabled")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := writeConfig(t, "generation: [not a map\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse") {
		t.Errorf("Load = %v", err)
	}
}

func TestLoadInvalidSplitMode(t *testing.T) {
	path := writeConfig(t, "split:\n  mode: shards\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "split.mode") {
		t.Errorf("Load = %v", err)
	}
}

func TestLoadAttachmentsDir(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, "attachments:\n  dir: "+dir+"\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Attachments.Dir != dir {
		t.Errorf("Dir = %q", cfg.Attachments.Dir)
	}

	path = writeConfig(t, "attachments:\n  dir: "+filepath.Join(dir, "missing")+"\n")
	if _, err := Load(path); err == nil {
		t.Error("missing attachments dir should be rejected")
	}
}
