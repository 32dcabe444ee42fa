package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if len(cfg.Arxiv.Categories) == 0 {
		t.Error("expected categories to be populated")
	}
	if cfg.Ranking.Mode != ModeKeyword {
		t.Errorf("expected keyword mode, got %q", cfg.Ranking.Mode)
	}
	if cfg.Ranking.TopN != 100 {
		t.Errorf("expected top_n 100, got %d", cfg.Ranking.TopN)
	}
	if cfg.LLM.Provider != "anthropic" {
		t.Errorf("expected provider 'anthropic', got %q", cfg.LLM.Provider)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
	if len(cfg.Keywords()) == 0 {
		t.Error("expected default keywords")
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
ranking:
  mode: llm
  top_n: 50
profile:
  keywords:
    - dark energy
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	if cfg.Ranking.Mode != ModeLLM {
		t.Errorf("expected llm mode, got %q", cfg.Ranking.Mode)
	}
	if cfg.Ranking.TopN != 50 {
		t.Errorf("expected top_n 50, got %d", cfg.Ranking.TopN)
	}
	// Untouched defaults survive.
	if cfg.Ranking.BatchSize != 25 {
		t.Errorf("expected default batch_size 25, got %d", cfg.Ranking.BatchSize)
	}
	if cfg.Arxiv.Days != 10 {
		t.Errorf("expected default days 10, got %d", cfg.Arxiv.Days)
	}
}

func TestParseInvalidMode(t *testing.T) {
	if _, err := parse([]byte("ranking:\n  mode: magic\n")); err == nil {
		t.Error("expected error for unknown ranking mode")
	}
}

func TestKeywordsFiltersBlanksAndComments(t *testing.T) {
	cfg := &Config{Profile: Profile{Keywords: []string{" Hubble constant ", "", "# note", "Type Ia"}}}
	kws := cfg.Keywords()
	if len(kws) != 2 || kws[0] != "Hubble constant" || kws[1] != "Type Ia" {
		t.Errorf("unexpected keywords %v", kws)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestResolveConfigPathExplicit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ResolveConfigPath(path)
	if err != nil {
		t.Fatalf("ResolveConfigPath: %v", err)
	}
	if got != path {
		t.Errorf("expected %s, got %s", path, got)
	}

	if _, err := ResolveConfigPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}
