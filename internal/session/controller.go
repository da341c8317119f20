// Package session composes stroke capture, recognition and scoring into one
// drawing session.
//
// A Controller is driven from a single event loop: pointer events, undo and
// clear arrive serially, and the only asynchronous work is the recognition
// Request returned by OnRelease. The caller runs it off the loop and feeds the
// Result back through Resolve on the loop. Each Request is tagged with the word
// index and a sequence number taken at release time; Resolve drops results
// whose index is no longer current, and results older than one already
// applied, so a slow recognition can never move the session backwards or
// advance the same word twice.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/verte-zerg/wwpm/internal/game"
	"github.com/verte-zerg/wwpm/internal/model"
	"github.com/verte-zerg/wwpm/internal/recognize"
	"github.com/verte-zerg/wwpm/internal/stroke"
)

// UsernameLength is the exact leaderboard name length.
const UsernameLength = 3

// Errors returned by SubmitScore.
var (
	ErrNotCompleted    = errors.New("session not completed")
	ErrInvalidUsername = fmt.Errorf("username must be exactly %d characters", UsernameLength)
	ErrNoLeaderboard   = errors.New("no leaderboard configured")
)

// Canvas is the drawing surface: replay target plus rasterization for recognition.
type Canvas interface {
	stroke.Surface
	Rasterize() (image []byte, mimeType string, err error)
}

// Recognizer turns an image into normalized text. *recognize.Gateway implements it.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Leaderboard is the remote high-score table. *leaderboard.Client implements it.
type Leaderboard interface {
	Top(ctx context.Context) ([]model.LeaderboardEntry, error)
	Submit(ctx context.Context, username string, score int) ([]model.LeaderboardEntry, error)
}

// Options configures a Controller.
type Options struct {
	Words       []string
	Canvas      Canvas
	Leaderboard Leaderboard
	Now         func() time.Time
	Logf        func(format string, args ...any)
}

// Request is one pending recognition, created when a stroke completes.
type Request struct {
	Seq   uint64
	Index int
	Image []byte
	MIME  string
}

// Run performs the recognition call. It blocks; run it off the event loop.
func (r Request) Run(ctx context.Context, rec Recognizer) Result {
	text, err := rec.Recognize(ctx, r.Image, r.MIME)
	return Result{Request: r, Text: text, Err: err}
}

// Result is a finished recognition, handed back to Resolve.
type Result struct {
	Request Request
	Text    string
	Err     error
}

// Outcome says what Resolve did with a Result.
type Outcome int

// Resolve outcomes.
const (
	OutcomeStale Outcome = iota
	OutcomeSuperseded
	OutcomeFailed
	OutcomeMismatch
	OutcomeMatch
	OutcomeCompleted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStale:
		return "stale"
	case OutcomeSuperseded:
		return "superseded"
	case OutcomeFailed:
		return "failed"
	case OutcomeMismatch:
		return "mismatch"
	case OutcomeMatch:
		return "match"
	case OutcomeCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// View is a read-only snapshot for rendering.
type View struct {
	Target     string
	Index      int
	Total      int
	Completed  bool
	Strokes    int
	Drawing    bool
	Pending    int
	LastText   string
	LastFailed bool
	Score      int
	Elapsed    time.Duration
}

// Submission is the result of a successful SubmitScore.
type Submission struct {
	Stored []model.LeaderboardEntry
	Top    []model.LeaderboardEntry
	// RefreshErr is set when the score was stored but re-fetching the top list failed.
	RefreshErr error
}

// Controller owns one session: word list, progress, strokes and timing.
type Controller struct {
	matcher     *game.Matcher
	scorer      *game.Scorer
	history     *stroke.History
	canvas      Canvas
	leaderboard Leaderboard
	logf        func(format string, args ...any)

	seq     uint64
	applied uint64
	pending int

	lastText   string
	lastFailed bool

	attempts   int
	mismatches int
	failures   int
	discarded  int
}

// New starts a session. The clock starts immediately: the session is in
// Awaiting(0) from construction on.
func New(opts Options) (*Controller, error) {
	matcher, err := game.NewMatcher(opts.Words)
	if err != nil {
		return nil, err
	}
	if opts.Canvas == nil {
		return nil, errors.New("session: canvas is required")
	}
	logf := opts.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	c := &Controller{
		matcher:     matcher,
		scorer:      game.NewScorer(opts.Now),
		history:     stroke.NewHistory(),
		canvas:      opts.Canvas,
		leaderboard: opts.Leaderboard,
		logf:        logf,
	}
	c.scorer.Start()
	c.Redraw()
	return c, nil
}

// OnPressAt begins a stroke. Presses after completion or during an open
// stroke are ignored.
func (c *Controller) OnPressAt(p model.Point) bool {
	if c.matcher.Completed() {
		return false
	}
	if err := c.history.Begin(p); err != nil {
		return false
	}
	c.Redraw()
	return true
}

// OnMoveTo extends the open stroke; without a press it does nothing.
func (c *Controller) OnMoveTo(p model.Point) bool {
	if !c.history.Extend(p) {
		return false
	}
	c.Redraw()
	return true
}

// OnRelease closes the open stroke and returns the recognition to run for
// the now complete drawing. It returns false for a stray release.
func (c *Controller) OnRelease() (Request, bool) {
	if !c.history.End() {
		return Request{}, false
	}
	c.Redraw()
	if c.matcher.Completed() {
		return Request{}, false
	}
	image, mime, err := c.canvas.Rasterize()
	if err != nil {
		c.logf("rasterize: %v", err)
		return Request{}, false
	}
	c.seq++
	c.pending++
	return Request{Seq: c.seq, Index: c.matcher.Index(), Image: image, MIME: mime}, true
}

// OnUndo removes the last completed stroke and redraws.
func (c *Controller) OnUndo() bool {
	if !c.history.Undo() {
		return false
	}
	c.Redraw()
	return true
}

// OnClear wipes every stroke and redraws.
func (c *Controller) OnClear() {
	c.history.Clear()
	c.Redraw()
}

// Redraw replays the stroke history onto the canvas.
func (c *Controller) Redraw() {
	c.history.Redraw(c.canvas)
}

// Resolve applies a finished recognition to the word state machine.
func (c *Controller) Resolve(res Result) Outcome {
	if c.pending > 0 {
		c.pending--
	}
	req := res.Request
	if c.matcher.Completed() || req.Index != c.matcher.Index() {
		c.discarded++
		c.logf("discard stale result seq=%d index=%d current=%d", req.Seq, req.Index, c.matcher.Index())
		return OutcomeStale
	}
	if req.Seq <= c.applied {
		c.discarded++
		c.logf("discard superseded result seq=%d applied=%d", req.Seq, c.applied)
		return OutcomeSuperseded
	}
	c.applied = req.Seq
	c.attempts++

	if res.Err != nil {
		c.failures++
		c.lastText = ""
		c.lastFailed = true
		c.logf("recognition failed seq=%d: %v", req.Seq, res.Err)
		return OutcomeFailed
	}
	text := recognize.Normalize(res.Text)
	c.lastText = text
	c.lastFailed = false
	if !c.matcher.Submit(text) {
		c.mismatches++
		return OutcomeMismatch
	}

	c.history.Clear()
	c.Redraw()
	if !c.matcher.Completed() {
		return OutcomeMatch
	}
	score, err := c.scorer.Finalize(c.matcher.Len())
	if err != nil {
		c.logf("finalize: %v", err)
	}
	c.logf("session completed: %d words, %d WWPM", c.matcher.Len(), score)
	return OutcomeCompleted
}

// Completed reports whether every word has been matched.
func (c *Controller) Completed() bool {
	return c.matcher.Completed()
}

// Strokes returns a copy of the current stroke history.
func (c *Controller) Strokes() []model.Stroke {
	return c.history.Strokes()
}

// Snapshot returns the state needed to render the session.
func (c *Controller) Snapshot() View {
	target, _ := c.matcher.Current()
	score, _ := c.scorer.Score()
	return View{
		Target:     target,
		Index:      c.matcher.Index(),
		Total:      c.matcher.Len(),
		Completed:  c.matcher.Completed(),
		Strokes:    c.history.Len(),
		Drawing:    c.history.Open(),
		Pending:    c.pending,
		LastText:   c.lastText,
		LastFailed: c.lastFailed,
		Score:      score,
		Elapsed:    c.scorer.Elapsed(),
	}
}

// Stats returns the record of a completed session.
func (c *Controller) Stats(lang string) (model.SessionStats, error) {
	score, ok := c.scorer.Score()
	if !ok {
		return model.SessionStats{}, ErrNotCompleted
	}
	started := c.scorer.StartedAt()
	ended := c.scorer.EndedAt()
	return model.SessionStats{
		StartedAt:  started,
		EndedAt:    ended,
		Lang:       lang,
		Words:      c.matcher.Len(),
		WordList:   strings.Join(c.matcher.Words(), " "),
		Attempts:   c.attempts,
		Mismatches: c.mismatches,
		Failures:   c.failures,
		Discarded:  c.discarded,
		Score:      score,
		DurationMs: ended.Sub(started).Milliseconds(),
	}, nil
}

// ValidateUsername checks the leaderboard name contract.
func ValidateUsername(name string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) != UsernameLength {
		return ErrInvalidUsername
	}
	return nil
}

// SubmitScore validates username and sends the final score, then re-fetches
// the top list. Validation failures never reach the network. Failures leave
// the session untouched, so the call may be retried.
func (c *Controller) SubmitScore(ctx context.Context, username string) (Submission, error) {
	score, ok := c.scorer.Score()
	if !ok {
		return Submission{}, ErrNotCompleted
	}
	if err := ValidateUsername(username); err != nil {
		return Submission{}, err
	}
	if c.leaderboard == nil {
		return Submission{}, ErrNoLeaderboard
	}
	stored, err := c.leaderboard.Submit(ctx, strings.TrimSpace(username), score)
	if err != nil {
		return Submission{}, err
	}
	sub := Submission{Stored: stored}
	top, err := c.leaderboard.Top(ctx)
	if err != nil {
		sub.RefreshErr = err
		return sub, nil
	}
	sub.Top = top
	return sub, nil
}
