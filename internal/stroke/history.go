// Package stroke records freehand strokes and replays them onto a surface.
package stroke

import (
	"errors"

	"github.com/verte-zerg/wwpm/internal/model"
)

// ErrStrokeOpen is returned by Begin while a stroke is still being captured.
var ErrStrokeOpen = errors.New("stroke already open")

// Surface is a drawing target that can be wiped and painted with connected paths.
type Surface interface {
	Clear()
	DrawPath(points []model.Point)
}

// History is the ordered log of strokes for the current word attempt.
// The surface always shows exactly what Redraw paints from it.
type History struct {
	strokes []model.Stroke
	open    bool
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Begin opens a new stroke seeded with p.
func (h *History) Begin(p model.Point) error {
	if h.open {
		return ErrStrokeOpen
	}
	h.strokes = append(h.strokes, model.Stroke{p})
	h.open = true
	return nil
}

// Extend appends p to the open stroke. It reports false when no stroke is open.
func (h *History) Extend(p model.Point) bool {
	if !h.open {
		return false
	}
	last := len(h.strokes) - 1
	h.strokes[last] = append(h.strokes[last], p)
	return true
}

// End closes the open stroke. It reports false when no stroke was open.
func (h *History) End() bool {
	if !h.open {
		return false
	}
	h.open = false
	return true
}

// Undo removes the most recently completed stroke. An open stroke is kept.
func (h *History) Undo() bool {
	completed := len(h.strokes)
	if h.open {
		completed--
	}
	if completed <= 0 {
		return false
	}
	idx := completed - 1
	h.strokes = append(h.strokes[:idx], h.strokes[idx+1:]...)
	return true
}

// Clear drops every stroke, including one still being captured.
func (h *History) Clear() {
	h.strokes = nil
	h.open = false
}

// Open reports whether a stroke is being captured.
func (h *History) Open() bool {
	return h.open
}

// Len returns the number of strokes, counting an open one.
func (h *History) Len() int {
	return len(h.strokes)
}

// Strokes returns a deep copy of the recorded strokes.
func (h *History) Strokes() []model.Stroke {
	out := make([]model.Stroke, len(h.strokes))
	for i, s := range h.strokes {
		out[i] = s.Clone()
	}
	return out
}

// Redraw wipes the surface and replays every stroke in order.
func (h *History) Redraw(s Surface) {
	if s == nil {
		return
	}
	s.Clear()
	for _, st := range h.strokes {
		s.DrawPath(st)
	}
}
