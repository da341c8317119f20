// Package model defines shared data structures.
package model

import "time"

// Point is a surface-local coordinate.
type Point struct {
	X float64
	Y float64
}

// Stroke is one press-to-release drawing motion. It is never empty.
type Stroke []Point

// Clone returns an independent copy of the stroke.
func (s Stroke) Clone() Stroke {
	out := make(Stroke, len(s))
	copy(out, s)
	return out
}

// Config defines play settings.
type Config struct {
	Lang        string
	Words       int
	MinLen      int
	MaxLen      int
	Recognizer  string
	Leaderboard string
	Scale       int
	Debug       bool
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Lang        string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// SessionStats captures a completed drawing session.
type SessionStats struct {
	StartedAt  time.Time
	EndedAt    time.Time
	Lang       string
	Words      int
	WordList   string
	Attempts   int
	Mismatches int
	Failures   int
	Discarded  int
	Score      int
	DurationMs int64
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID  int64
	EndedAt    time.Time
	Words      int
	Score      int
	DurationMs int64
}

// LeaderboardEntry is one row of the public high-score table.
type LeaderboardEntry struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}
