// Package stats contains score calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/wwpm/internal/model"
)

// MinElapsed is the shortest duration a score is computed over. Faster
// sessions are scored as if they took MinElapsed.
const MinElapsed = time.Second

const sparkChars = " .:-=+*#%@"

// WWPM returns round(words / minutes) with elapsed clamped to MinElapsed.
func WWPM(words int, elapsed time.Duration) int {
	if words <= 0 {
		return 0
	}
	if elapsed < MinElapsed {
		elapsed = MinElapsed
	}
	minutes := float64(elapsed.Milliseconds()) / 60000.0
	return int(math.Round(float64(words) / minutes))
}

// SessionMetrics returns the WWPM and the share of applied recognitions that matched.
func SessionMetrics(s model.SessionStats) (wwpm int, accuracy float64) {
	wwpm = WWPM(s.Words, time.Duration(s.DurationMs)*time.Millisecond)
	if s.Attempts > 0 {
		accuracy = float64(s.Words) / float64(s.Attempts)
	}
	return wwpm, accuracy
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary of local sessions. width limits the sparkline.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate, window, width int) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	scores := make([]float64, len(sessions))
	var total float64
	best := 0
	var words int
	var durationMs int64
	for i, s := range sessions {
		scores[i] = float64(s.Score)
		total += float64(s.Score)
		if s.Score > best {
			best = s.Score
		}
		words += s.Words
		durationMs += s.DurationMs
	}
	count := float64(len(sessions))
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Words written: %d", words),
		fmt.Sprintf("Time drawing: %s", (time.Duration(durationMs) * time.Millisecond).Round(time.Second)),
		fmt.Sprintf("Avg WWPM: %.1f", total/count),
		fmt.Sprintf("Best WWPM: %d", best),
	}
	trend := MovingAverage(scores, window)
	if width > 0 && len(trend) > width {
		trend = trend[len(trend)-width:]
	}
	if len(trend) > 1 {
		lines = append(lines, "Trend: "+Sparkline(trend))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderLeaderboard prints ranked leaderboard entries.
func RenderLeaderboard(w io.Writer, entries []model.LeaderboardEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No scores yet.")
		return err
	}
	if _, err := fmt.Fprintln(w, "High Scores"); err != nil {
		return err
	}
	for _, line := range LeaderboardLines(entries) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// LeaderboardLines formats entries as an aligned rank/name/score table.
func LeaderboardLines(entries []model.LeaderboardEntry) []string {
	t := table{columns: []column{{title: "#", right: true}, {title: "Name"}, {title: "WWPM", right: true}}}
	for i, e := range entries {
		t.add(strconv.Itoa(i+1), e.Username, strconv.Itoa(e.Score))
	}
	return t.lines()
}
