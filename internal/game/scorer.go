package game

import (
	"errors"
	"time"

	"github.com/verte-zerg/wwpm/internal/stats"
)

// ErrNotStarted is returned by Finalize before Start.
var ErrNotStarted = errors.New("scorer not started")

// Scorer records when a session started and computes its WWPM exactly once.
type Scorer struct {
	now func() time.Time

	startedAt time.Time
	started   bool
	endedAt   time.Time
	score     int
	finalized bool
}

// NewScorer returns a scorer reading time from now. A nil now uses time.Now.
func NewScorer(now func() time.Time) *Scorer {
	if now == nil {
		now = time.Now
	}
	return &Scorer{now: now}
}

// Start records the start time. Later calls are no-ops.
func (s *Scorer) Start() {
	if s.started {
		return
	}
	s.started = true
	s.startedAt = s.now()
}

// Finalize computes the score for words over the elapsed time. After the
// first successful call it returns the stored score unchanged.
func (s *Scorer) Finalize(words int) (int, error) {
	if s.finalized {
		return s.score, nil
	}
	if !s.started {
		return 0, ErrNotStarted
	}
	s.endedAt = s.now()
	s.score = stats.WWPM(words, s.endedAt.Sub(s.startedAt))
	s.finalized = true
	return s.score, nil
}

// Score returns the final score and whether it has been computed.
func (s *Scorer) Score() (int, bool) {
	return s.score, s.finalized
}

// StartedAt returns the start time, zero before Start.
func (s *Scorer) StartedAt() time.Time {
	return s.startedAt
}

// EndedAt returns the finalize time, zero before Finalize.
func (s *Scorer) EndedAt() time.Time {
	return s.endedAt
}

// Elapsed returns the time since start, frozen once finalized.
func (s *Scorer) Elapsed() time.Duration {
	if !s.started {
		return 0
	}
	if s.finalized {
		return s.endedAt.Sub(s.startedAt)
	}
	return s.now().Sub(s.startedAt)
}
