// Package wordlist loads word lists from files.
package wordlist

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed default_en.txt
var defaultEnglish string

// DefaultLang is the language of the embedded fallback list.
const DefaultLang = "en"

// LoadWords reads one word per line from the provided file path.
func LoadWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()
	return readWords(file)
}

// Default returns the embedded English word list.
func Default() []string {
	words, err := readWords(strings.NewReader(defaultEnglish))
	if err != nil {
		panic(fmt.Sprintf("embedded word list: %v", err))
	}
	return words
}

// Load returns the words for lang from dir, filtered for the language.
// English falls back to the embedded list when no file exists.
func Load(dir, lang string) ([]string, error) {
	path := filepath.Join(dir, lang+".txt")
	words, err := LoadWords(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load word list %s: %w", path, err)
		}
		if strings.ToLower(lang) != DefaultLang {
			return nil, fmt.Errorf("word list for %q not found at %s", lang, path)
		}
		words = Default()
	}
	filter := FilterForLang(lang)
	kept := words[:0]
	for _, w := range words {
		w = strings.ToLower(w)
		if filter(w) {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("word list for %q has no usable words", lang)
	}
	return kept, nil
}

// Langs lists the languages with a word list in dir, plus the embedded default.
func Langs(dir string) ([]string, error) {
	set := map[string]struct{}{DefaultLang: {}}
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read word list dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".txt" {
			continue
		}
		set[strings.TrimSuffix(e.Name(), ".txt")] = struct{}{}
	}
	langs := make([]string, 0, len(set))
	for l := range set {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs, nil
}

func readWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}
