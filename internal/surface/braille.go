// Package surface provides drawing surfaces for stroke replay.
package surface

import (
	"math"
	"strings"

	"github.com/verte-zerg/wwpm/internal/model"
)

// Braille is a terminal drawing surface. Each cell holds a 2x4 braille dot
// matrix, so point coordinates are in dots, not cells.
type Braille struct {
	cols  int
	rows  int
	cells [][]uint8
}

// NewBraille returns a blank canvas of cols x rows terminal cells.
func NewBraille(cols, rows int) *Braille {
	b := &Braille{}
	b.Resize(cols, rows)
	return b
}

// Resize changes the canvas size and wipes it. Callers redraw afterwards.
func (b *Braille) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	b.cols = cols
	b.rows = rows
	b.cells = makeCells(rows, cols)
}

// Size returns the canvas size in cells.
func (b *Braille) Size() (cols, rows int) {
	return b.cols, b.rows
}

// DotSize returns the canvas size in dots.
func (b *Braille) DotSize() (width, height int) {
	return b.cols * 2, b.rows * 4
}

// Clear implements stroke.Surface.
func (b *Braille) Clear() {
	for y := range b.cells {
		for x := range b.cells[y] {
			b.cells[y][x] = 0
		}
	}
}

// DrawPath implements stroke.Surface.
func (b *Braille) DrawPath(points []model.Point) {
	if len(points) == 0 {
		return
	}
	plot := func(x, y int) { setBrailleDot(b.cells, x, y) }
	prevX, prevY := dot(points[0])
	plot(prevX, prevY)
	for _, p := range points[1:] {
		x, y := dot(p)
		drawLine(prevX, prevY, x, y, plot)
		prevX, prevY = x, y
	}
}

// Empty reports whether no dot is set.
func (b *Braille) Empty() bool {
	for _, row := range b.cells {
		for _, mask := range row {
			if mask != 0 {
				return false
			}
		}
	}
	return true
}

// Lines renders the canvas, one string per cell row. Blank cells are spaces.
func (b *Braille) Lines() []string {
	lines := make([]string, len(b.cells))
	var sb strings.Builder
	for y, row := range b.cells {
		sb.Reset()
		for _, mask := range row {
			if mask == 0 {
				sb.WriteByte(' ')
				continue
			}
			sb.WriteRune(brailleFromMask(mask))
		}
		lines[y] = sb.String()
	}
	return lines
}

// String renders the canvas as newline separated rows.
func (b *Braille) String() string {
	return strings.Join(b.Lines(), "\n")
}

func dot(p model.Point) (int, int) {
	return int(math.Round(p.X)), int(math.Round(p.Y))
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := 0; y < height; y++ {
		cells[y] = make([]uint8, width)
	}
	return cells
}

func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := int(math.Abs(float64(x1 - x0)))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -int(math.Abs(float64(y1 - y0)))
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

func setBrailleDot(cells [][]uint8, x, y int) {
	if y < 0 || x < 0 {
		return
	}
	cellY := y / 4
	cellX := x / 2
	if cellY >= len(cells) || cellX >= len(cells[cellY]) {
		return
	}
	cells[cellY][cellX] |= brailleDotMask(x%2, y%4)
}

// brailleDotMask maps a dot inside a cell to its Unicode braille bit.
func brailleDotMask(x, y int) uint8 {
	switch {
	case x == 0 && y == 0:
		return 0x01
	case x == 0 && y == 1:
		return 0x02
	case x == 0 && y == 2:
		return 0x04
	case x == 0 && y == 3:
		return 0x40
	case x == 1 && y == 0:
		return 0x08
	case x == 1 && y == 1:
		return 0x10
	case x == 1 && y == 2:
		return 0x20
	case x == 1 && y == 3:
		return 0x80
	default:
		return 0
	}
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
