package surface

import (
	"bytes"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/verte-zerg/wwpm/internal/model"
	"github.com/verte-zerg/wwpm/internal/stroke"
)

func TestBrailleDrawPathSetsDots(t *testing.T) {
	b := NewBraille(4, 2)
	b.DrawPath([]model.Point{{X: 0, Y: 0}, {X: 7, Y: 0}})
	lines := b.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(lines))
	}
	top := []rune(lines[0])
	if len(top) != 4 {
		t.Fatalf("expected 4 cells, got %d", len(top))
	}
	for i, r := range top {
		if r != brailleFromMask(0x01|0x08) {
			t.Fatalf("cell %d: expected top dots, got %q", i, r)
		}
	}
	if strings.TrimSpace(lines[1]) != "" {
		t.Fatalf("expected blank second row, got %q", lines[1])
	}
}

func TestBrailleClipsOutOfBounds(t *testing.T) {
	b := NewBraille(1, 1)
	b.DrawPath([]model.Point{{X: -5, Y: -5}, {X: 40, Y: 40}})
	if b.Empty() {
		t.Fatalf("expected in-bounds part of the line to be drawn")
	}
	b.Clear()
	if !b.Empty() {
		t.Fatalf("expected clear to wipe dots")
	}
}

func TestRasterEmpty(t *testing.T) {
	r := NewRaster(20, 20)
	if _, _, err := r.Rasterize(); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestRasterProducesPNGWithInk(t *testing.T) {
	r := NewRaster(40, 20)
	r.DrawPath([]model.Point{{X: 5, Y: 5}, {X: 30, Y: 12}})
	data, mime, err := r.Rasterize()
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if mime != "image/png" {
		t.Fatalf("unexpected mime %q", mime)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	dark := 0
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			if r < 0x8000 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Fatalf("expected ink pixels in rasterized image")
	}
	if bounds.Dx() >= int(40*r.Scale) {
		t.Fatalf("expected image cropped to ink, got width %d", bounds.Dx())
	}
}

func TestLayeredMirrorsReplay(t *testing.T) {
	display := NewBraille(10, 5)
	layered := &Layered{Display: display, Raster: NewRaster(20, 20)}
	h := stroke.NewHistory()
	if err := h.Begin(model.Point{X: 1, Y: 1}); err != nil {
		t.Fatalf("begin: %v", err)
	}
	h.Extend(model.Point{X: 8, Y: 8})
	h.End()
	h.Redraw(layered)
	if display.Empty() || layered.Raster.Empty() {
		t.Fatalf("expected both layers to receive the stroke")
	}
	h.Clear()
	h.Redraw(layered)
	if !display.Empty() || !layered.Raster.Empty() {
		t.Fatalf("expected both layers to be wiped")
	}
}
