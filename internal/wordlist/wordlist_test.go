package wordlist

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultListIsUsable(t *testing.T) {
	words := Default()
	if len(words) < 100 {
		t.Fatalf("expected a reasonably sized default list, got %d", len(words))
	}
	filter := FilterForLang("en")
	for _, w := range words {
		if !filter(w) {
			t.Fatalf("default word %q fails the english filter", w)
		}
	}
}

func TestLoadFallsBackForEnglish(t *testing.T) {
	words, err := Load(t.TempDir(), "en")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(words) != len(Default()) {
		t.Fatalf("expected embedded list, got %d words", len(words))
	}
	if _, err := Load(t.TempDir(), "de"); err == nil {
		t.Fatalf("expected error for missing non-english list")
	}
}

func TestLoadFiltersFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "en.txt"), []byte("Hello\n\nco-op\nworld\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	words, err := Load(dir, "en")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(words, []string{"hello", "world"}) {
		t.Fatalf("unexpected words: %v", words)
	}
}

func TestLangs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"de.txt", "fr.txt", "notes.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	langs, err := Langs(dir)
	if err != nil {
		t.Fatalf("langs: %v", err)
	}
	if !reflect.DeepEqual(langs, []string{"de", "en", "fr"}) {
		t.Fatalf("unexpected langs: %v", langs)
	}
}
