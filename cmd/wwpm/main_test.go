package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/wwpm/internal/config"
	"github.com/verte-zerg/wwpm/internal/model"
)

func TestDefaultConfigTemplateParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("template should load: %v", err)
	}
	if cfg.Play.Words != nil {
		t.Fatalf("template values should be commented out")
	}
	for _, section := range []string{"[play]", "[recognizer]", "[leaderboard]"} {
		if !strings.Contains(defaultConfigTemplate(), section) {
			t.Fatalf("template missing %s", section)
		}
	}
}

func TestApplyConfigRespectsFlags(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.Flags().Set("words", "7"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	words := 7
	fileWords := 12
	applyIntConfig(cmd, "words", &words, &fileWords)
	if words != 7 {
		t.Fatalf("explicit flag should win, got %d", words)
	}
	lang := defaultLang
	fileLang := "de"
	applyStringConfig(cmd, "lang", &lang, &fileLang)
	if lang != "de" {
		t.Fatalf("config should fill unset flag, got %s", lang)
	}
}

func TestValidateConfig(t *testing.T) {
	ok := model.Config{Words: 3, MinLen: 2, MaxLen: 5, Scale: 6}
	if err := validateConfig(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := []model.Config{
		{Words: 0, Scale: 6},
		{Words: 3, MinLen: 6, MaxLen: 5, Scale: 6},
		{Words: 3, Scale: 0},
	}
	for _, cfg := range bad {
		if err := validateConfig(cfg); err == nil {
			t.Errorf("expected error for %+v", cfg)
		}
	}
}
