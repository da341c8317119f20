// Package game holds the word progression state machine and the session scorer.
package game

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/wwpm/internal/recognize"
)

// Construction errors.
var (
	ErrEmptyWordList = errors.New("word list is empty")
	ErrEmptyWord     = errors.New("word list contains an empty word")
)

// Matcher walks a fixed word list. It is Awaiting(Index) until every word has
// been matched, then Completed. The index only ever moves forward by one.
type Matcher struct {
	words []string
	index int
}

// NewMatcher copies words, normalizing them the same way recognized text is.
func NewMatcher(words []string) (*Matcher, error) {
	if len(words) == 0 {
		return nil, ErrEmptyWordList
	}
	normalized := make([]string, len(words))
	for i, w := range words {
		n := recognize.Normalize(w)
		if n == "" {
			return nil, fmt.Errorf("%w (position %d)", ErrEmptyWord, i)
		}
		normalized[i] = n
	}
	return &Matcher{words: normalized}, nil
}

// Submit compares text with the current target and advances on exact equality.
// It reports whether the index moved. Completed matchers ignore input.
func (m *Matcher) Submit(text string) bool {
	if m.Completed() {
		return false
	}
	if text != m.words[m.index] {
		return false
	}
	m.index++
	return true
}

// Current returns the target word, or false once completed.
func (m *Matcher) Current() (string, bool) {
	if m.Completed() {
		return "", false
	}
	return m.words[m.index], true
}

// Index returns the number of words matched so far.
func (m *Matcher) Index() int {
	return m.index
}

// Len returns the word list length.
func (m *Matcher) Len() int {
	return len(m.words)
}

// Completed reports whether every word has been matched.
func (m *Matcher) Completed() bool {
	return m.index >= len(m.words)
}

// Words returns a copy of the normalized word list.
func (m *Matcher) Words() []string {
	out := make([]string, len(m.words))
	copy(out, m.words)
	return out
}
