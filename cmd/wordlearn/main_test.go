package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	t.Setenv("WORDLEARN_DB_DRIVER", "")
	t.Setenv("WORDLEARN_DB_PATH", "")
	t.Setenv("WORDLEARN_LOG_LEVEL", "")

	base := t.TempDir()
	configPath := filepath.Join(base, "config.json")
	config := fmt.Sprintf(`{
  "database": {"driver": "sqlite", "path": %q},
  "logging": {"level": "error", "gorm_level": "silent"}
}`, filepath.Join(base, "words.db"))
	if err := os.WriteFile(configPath, []byte(config), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliTestEnv{configPath: configPath, baseDir: base}
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.configPath, "--env-file", filepath.Join(e.baseDir, "missing.env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCLIAddNextSeenList(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := env.run(t, "next", "--offline")
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if strings.TrimSpace(out) != "No word available" {
		t.Fatalf("unexpected empty next output %q", out)
	}

	out, err = env.run(t, "add", "casa", "--meaning", "home", "--translation", "house")
	if err != nil || strings.TrimSpace(out) != "added" {
		t.Fatalf("add: out=%q err=%v", out, err)
	}
	out, err = env.run(t, "add", "casa")
	if err != nil || strings.TrimSpace(out) != "already exists" {
		t.Fatalf("duplicate add: out=%q err=%v", out, err)
	}

	out, err = env.run(t, "next", "--offline")
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if !strings.HasPrefix(out, "#1 casa") || !strings.Contains(out, "translation: house") {
		t.Fatalf("unexpected next output %q", out)
	}

	out, err = env.run(t, "seen", "1")
	if err != nil {
		t.Fatalf("seen: %v", err)
	}
	if !strings.Contains(out, "seen 1, correct 0, difficulty 2") {
		t.Fatalf("unexpected seen output %q", out)
	}

	if _, err := env.run(t, "seen", "99", "--correct"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
	if _, err := env.run(t, "seen", "abc"); err == nil {
		t.Fatal("expected invalid id error")
	}

	out, err = env.run(t, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "casa,house,1,0,2,1.9") {
		t.Fatalf("expected CSV table row, got %q", out)
	}
}

func TestCLIImportExport(t *testing.T) {
	env := setupCLITestEnv(t)

	input := filepath.Join(env.baseDir, "words.csv")
	if err := os.WriteFile(input, []byte("word;meaning\ncasa;home\ngato;cat\n;orphan\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	out, err := env.run(t, "import", input)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if strings.TrimSpace(out) != "Imported 2 new words, skipped 0 already known and 1 invalid rows." {
		t.Fatalf("unexpected import output %q", out)
	}

	csvPath := filepath.Join(env.baseDir, "out.csv")
	if _, err := env.run(t, "export", csvPath); err != nil {
		t.Fatalf("export csv: %v", err)
	}
	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), "casa,home") || !strings.Contains(string(data), "gato,cat") {
		t.Fatalf("unexpected export %q", data)
	}

	xlsxPath := filepath.Join(env.baseDir, "out.xlsx")
	if _, err := env.run(t, "export", xlsxPath); err != nil {
		t.Fatalf("export xlsx: %v", err)
	}
	out, err = env.run(t, "import", xlsxPath)
	if err != nil {
		t.Fatalf("reimport: %v", err)
	}
	if strings.TrimSpace(out) != "Imported 0 new words, skipped 2 already known and 0 invalid rows." {
		t.Fatalf("unexpected reimport output %q", out)
	}

	if _, err := env.run(t, "import", filepath.Join(env.baseDir, "words.pdf")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCLIExplicitMissingConfigFails(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "nope.json"), "list"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}
