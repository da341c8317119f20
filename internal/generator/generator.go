// Package generator picks the target words for a session.
package generator

import (
	"errors"
	"math/rand"
	"time"
	"unicode/utf8"
)

// ErrNoCandidates is returned when no word satisfies the length bounds.
var ErrNoCandidates = errors.New("no words within length bounds")

// Generator produces randomized word sequences.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic Generator.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate selects count words uniformly among those whose rune length lies
// in [minLen, maxLen]. A bound <= 0 is ignored. The same word is never picked
// twice in a row when there is a choice.
func (g *Generator) Generate(words []string, count, minLen, maxLen int) ([]string, error) {
	candidates := filterLength(words, minLen, maxLen)
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		word := candidates[g.rnd.Intn(len(candidates))]
		if len(candidates) > 1 && len(result) > 0 && word == result[len(result)-1] {
			word = candidates[(indexOf(candidates, word)+1+g.rnd.Intn(len(candidates)-1))%len(candidates)]
		}
		result = append(result, word)
	}
	return result, nil
}

func filterLength(words []string, minLen, maxLen int) []string {
	out := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		n := utf8.RuneCountInString(w)
		if n == 0 || (minLen > 0 && n < minLen) || (maxLen > 0 && n > maxLen) {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

func indexOf(words []string, w string) int {
	for i, v := range words {
		if v == w {
			return i
		}
	}
	return 0
}
