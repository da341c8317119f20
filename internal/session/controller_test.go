package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/verte-zerg/wwpm/internal/model"
	"github.com/verte-zerg/wwpm/internal/surface"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fakeCanvas struct {
	paths   [][]model.Point
	clears  int
	rasters int
}

func (f *fakeCanvas) Clear() {
	f.paths = nil
	f.clears++
}

func (f *fakeCanvas) DrawPath(points []model.Point) {
	f.paths = append(f.paths, append([]model.Point(nil), points...))
}

func (f *fakeCanvas) Rasterize() ([]byte, string, error) {
	if len(f.paths) == 0 {
		return nil, "", surface.ErrEmpty
	}
	f.rasters++
	return []byte{byte(len(f.paths))}, "image/png", nil
}

type fakeLeaderboard struct {
	entries []model.LeaderboardEntry
	submits int
	tops    int
	fail    error
}

func (f *fakeLeaderboard) Top(context.Context) ([]model.LeaderboardEntry, error) {
	f.tops++
	if f.fail != nil {
		return nil, f.fail
	}
	return append([]model.LeaderboardEntry(nil), f.entries...), nil
}

func (f *fakeLeaderboard) Submit(_ context.Context, username string, score int) ([]model.LeaderboardEntry, error) {
	f.submits++
	if f.fail != nil {
		return nil, f.fail
	}
	e := model.LeaderboardEntry{ID: int64(len(f.entries) + 1), Username: username, Score: score}
	f.entries = append([]model.LeaderboardEntry{e}, f.entries...)
	return []model.LeaderboardEntry{e}, nil
}

type harness struct {
	c      *Controller
	canvas *fakeCanvas
	clock  *fakeClock
	board  *fakeLeaderboard
}

func newHarness(t *testing.T, words ...string) *harness {
	t.Helper()
	h := &harness{
		canvas: &fakeCanvas{},
		clock:  &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
		board:  &fakeLeaderboard{},
	}
	c, err := New(Options{Words: words, Canvas: h.canvas, Leaderboard: h.board, Now: h.clock.now})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	h.c = c
	return h
}

// draw performs one press/move/release gesture and returns its request.
func (h *harness) draw(t *testing.T) Request {
	t.Helper()
	if !h.c.OnPressAt(model.Point{X: 1, Y: 1}) {
		t.Fatalf("press ignored")
	}
	h.c.OnMoveTo(model.Point{X: 5, Y: 5})
	req, ok := h.c.OnRelease()
	if !ok {
		t.Fatalf("release produced no request")
	}
	return req
}

func TestNewRejectsEmptyWordList(t *testing.T) {
	if _, err := New(Options{Canvas: &fakeCanvas{}}); err == nil {
		t.Fatalf("expected error for empty word list")
	}
	if _, err := New(Options{Words: []string{"cat"}}); err == nil {
		t.Fatalf("expected error for missing canvas")
	}
}

func TestScenarioCorrectFlow(t *testing.T) {
	h := newHarness(t, "cat", "dog")

	req := h.draw(t)
	if req.Index != 0 || req.MIME != "image/png" {
		t.Fatalf("unexpected request: %+v", req)
	}
	h.clock.advance(15 * time.Second)
	if got := h.c.Resolve(Result{Request: req, Text: "cat"}); got != OutcomeMatch {
		t.Fatalf("expected match, got %v", got)
	}
	v := h.c.Snapshot()
	if v.Target != "dog" || v.Index != 1 || v.Strokes != 0 {
		t.Fatalf("unexpected view after first word: %+v", v)
	}
	if len(h.canvas.paths) != 0 {
		t.Fatalf("canvas should be cleared after a match")
	}

	req = h.draw(t)
	h.clock.advance(15 * time.Second)
	if got := h.c.Resolve(Result{Request: req, Text: "DOG "}); got != OutcomeCompleted {
		t.Fatalf("expected completed, got %v", got)
	}
	v = h.c.Snapshot()
	if !v.Completed || v.Score != 4 {
		t.Fatalf("expected completed with 4 WWPM, got %+v", v)
	}
}

func TestScenarioMismatchKeepsStrokes(t *testing.T) {
	h := newHarness(t, "cat")
	req := h.draw(t)
	if got := h.c.Resolve(Result{Request: req, Text: "cta"}); got != OutcomeMismatch {
		t.Fatalf("expected mismatch, got %v", got)
	}
	v := h.c.Snapshot()
	if v.Index != 0 || v.Strokes != 1 || v.LastText != "cta" {
		t.Fatalf("unexpected view after mismatch: %+v", v)
	}
	if len(h.canvas.paths) != 1 {
		t.Fatalf("strokes should remain on canvas, got %d paths", len(h.canvas.paths))
	}
}

func TestScenarioUndo(t *testing.T) {
	h := newHarness(t, "cat")
	h.draw(t)
	h.draw(t)
	if !h.c.OnUndo() {
		t.Fatalf("undo should remove a stroke")
	}
	if len(h.c.Strokes()) != 1 || len(h.canvas.paths) != 1 {
		t.Fatalf("expected one stroke after undo, got %d/%d", len(h.c.Strokes()), len(h.canvas.paths))
	}
	h.c.OnUndo()
	if h.c.OnUndo() {
		t.Fatalf("undo on empty history should be a no-op")
	}
	if len(h.canvas.paths) != 0 {
		t.Fatalf("canvas should be blank")
	}
}

func TestScenarioFailureClearsLastText(t *testing.T) {
	h := newHarness(t, "cat")
	req := h.draw(t)
	h.c.Resolve(Result{Request: req, Text: "cta"})
	req = h.draw(t)
	if got := h.c.Resolve(Result{Request: req, Err: errors.New("boom")}); got != OutcomeFailed {
		t.Fatalf("expected failed, got %v", got)
	}
	v := h.c.Snapshot()
	if v.LastText != "" || !v.LastFailed || v.Index != 0 || v.Strokes != 2 {
		t.Fatalf("unexpected view after failure: %+v", v)
	}
}

func TestScenarioOutOfOrderResultsAdvanceOnce(t *testing.T) {
	h := newHarness(t, "cat", "dog")
	first := h.draw(t)
	second := h.draw(t)
	if first.Seq >= second.Seq || first.Index != second.Index {
		t.Fatalf("unexpected tags: %+v %+v", first, second)
	}
	if h.c.Snapshot().Pending != 2 {
		t.Fatalf("expected two pending requests")
	}
	if got := h.c.Resolve(Result{Request: second, Text: "cat"}); got != OutcomeMatch {
		t.Fatalf("expected match, got %v", got)
	}
	if got := h.c.Resolve(Result{Request: first, Text: "cat"}); got != OutcomeStale {
		t.Fatalf("expected stale, got %v", got)
	}
	v := h.c.Snapshot()
	if v.Index != 1 || v.Pending != 0 {
		t.Fatalf("expected index 1 and no pending, got %+v", v)
	}
}

func TestOlderResultForSameWordIsSuperseded(t *testing.T) {
	h := newHarness(t, "cat")
	first := h.draw(t)
	second := h.draw(t)
	if got := h.c.Resolve(Result{Request: second, Text: "cta"}); got != OutcomeMismatch {
		t.Fatalf("expected mismatch, got %v", got)
	}
	if got := h.c.Resolve(Result{Request: first, Text: "cat"}); got != OutcomeSuperseded {
		t.Fatalf("expected superseded, got %v", got)
	}
	if h.c.Snapshot().LastText != "cta" {
		t.Fatalf("superseded result must not replace the displayed text")
	}
}

func TestInputIgnoredWithoutPress(t *testing.T) {
	h := newHarness(t, "cat")
	if h.c.OnMoveTo(model.Point{X: 2, Y: 2}) {
		t.Fatalf("move without press should be ignored")
	}
	if _, ok := h.c.OnRelease(); ok {
		t.Fatalf("stray release should not produce a request")
	}
	if h.canvas.rasters != 0 {
		t.Fatalf("nothing should be rasterized")
	}
}

func TestClearDuringPendingRecognition(t *testing.T) {
	h := newHarness(t, "cat")
	req := h.draw(t)
	h.c.OnClear()
	if len(h.canvas.paths) != 0 {
		t.Fatalf("clear should blank the canvas")
	}
	if got := h.c.Resolve(Result{Request: req, Text: "cat"}); got != OutcomeCompleted {
		t.Fatalf("in-flight result should still apply, got %v", got)
	}
}

func TestCompletedSessionIgnoresInput(t *testing.T) {
	h := newHarness(t, "cat")
	req := h.draw(t)
	h.c.Resolve(Result{Request: req, Text: "cat"})
	if h.c.OnPressAt(model.Point{X: 1, Y: 1}) {
		t.Fatalf("press after completion should be ignored")
	}
	if got := h.c.Resolve(Result{Request: Request{Seq: 99, Index: 0}, Text: "cat"}); got != OutcomeStale {
		t.Fatalf("result after completion should be stale, got %v", got)
	}
}

func TestScoreIsFinalizedOnce(t *testing.T) {
	h := newHarness(t, "cat")
	req := h.draw(t)
	h.clock.advance(30 * time.Second)
	h.c.Resolve(Result{Request: req, Text: "cat"})
	h.clock.advance(time.Hour)
	if score := h.c.Snapshot().Score; score != 2 {
		t.Fatalf("expected score 2, got %d", score)
	}
	st, err := h.c.Stats("en")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Score != 2 || st.DurationMs != 30000 || st.Attempts != 1 || st.WordList != "cat" {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestValidateUsername(t *testing.T) {
	for _, name := range []string{"", "ab", "abcd", "   "} {
		if err := ValidateUsername(name); !errors.Is(err, ErrInvalidUsername) {
			t.Errorf("%q: expected ErrInvalidUsername, got %v", name, err)
		}
	}
	for _, name := range []string{"abc", "ÄÖÜ", " xyz "} {
		if err := ValidateUsername(name); err != nil {
			t.Errorf("%q: unexpected error %v", name, err)
		}
	}
}

func TestSubmitScore(t *testing.T) {
	h := newHarness(t, "cat")
	if _, err := h.c.SubmitScore(context.Background(), "abc"); !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("expected ErrNotCompleted, got %v", err)
	}

	req := h.draw(t)
	h.clock.advance(time.Minute)
	h.c.Resolve(Result{Request: req, Text: "cat"})

	if _, err := h.c.SubmitScore(context.Background(), "ab"); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername, got %v", err)
	}
	if h.board.submits != 0 {
		t.Fatalf("invalid username must not reach the leaderboard")
	}

	sub, err := h.c.SubmitScore(context.Background(), "abc")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(sub.Stored) != 1 || sub.Stored[0].Score != 1 || len(sub.Top) != 1 || h.board.tops != 1 {
		t.Fatalf("unexpected submission: %+v", sub)
	}
}

func TestSubmitScoreFailureIsRetryable(t *testing.T) {
	h := newHarness(t, "cat")
	req := h.draw(t)
	h.c.Resolve(Result{Request: req, Text: "cat"})

	h.board.fail = errors.New("offline")
	if _, err := h.c.SubmitScore(context.Background(), "abc"); err == nil {
		t.Fatalf("expected submit error")
	}
	h.board.fail = nil
	if _, err := h.c.SubmitScore(context.Background(), "abc"); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !h.c.Snapshot().Completed {
		t.Fatalf("session should stay completed")
	}
}

func TestRequestRun(t *testing.T) {
	rec := recognizerFunc(func(_ context.Context, image []byte, mime string) (string, error) {
		if len(image) != 1 || mime != "image/png" {
			t.Fatalf("unexpected input %v %s", image, mime)
		}
		return "cat", nil
	})
	res := Request{Seq: 3, Index: 1, Image: []byte{1}, MIME: "image/png"}.Run(context.Background(), rec)
	if res.Text != "cat" || res.Err != nil || res.Request.Seq != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

type recognizerFunc func(ctx context.Context, image []byte, mime string) (string, error)

func (f recognizerFunc) Recognize(ctx context.Context, image []byte, mime string) (string, error) {
	return f(ctx, image, mime)
}
