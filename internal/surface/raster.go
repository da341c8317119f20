package surface

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"

	"golang.org/x/image/vector"

	"github.com/verte-zerg/wwpm/internal/model"
)

// ErrEmpty is returned when rasterizing a surface with no ink.
var ErrEmpty = errors.New("surface is empty")

const (
	defaultScale     = 6.0
	defaultLineWidth = 5.0
	cropPadding      = 12
	capSides         = 8
)

// Raster is an off-screen surface that renders strokes as black ink on white
// and encodes the result as PNG for recognition. Points are in the same dot
// space as Braille; Scale converts dots to pixels.
type Raster struct {
	Scale     float64
	LineWidth float64

	width  int
	height int
	paths  [][]model.Point
}

// NewRaster returns a raster surface covering width x height dots.
func NewRaster(width, height int) *Raster {
	return &Raster{
		Scale:     defaultScale,
		LineWidth: defaultLineWidth,
		width:     width,
		height:    height,
	}
}

// Resize changes the covered dot area and wipes the surface.
func (r *Raster) Resize(width, height int) {
	r.width = width
	r.height = height
	r.paths = nil
}

// Clear implements stroke.Surface.
func (r *Raster) Clear() {
	r.paths = nil
}

// DrawPath implements stroke.Surface.
func (r *Raster) DrawPath(points []model.Point) {
	if len(points) == 0 {
		return
	}
	cp := make([]model.Point, len(points))
	copy(cp, points)
	r.paths = append(r.paths, cp)
}

// Empty reports whether nothing has been drawn since the last Clear.
func (r *Raster) Empty() bool {
	return len(r.paths) == 0
}

// Image renders the surface cropped to the ink bounds plus padding.
func (r *Raster) Image() (*image.Gray, error) {
	if r.Empty() {
		return nil, ErrEmpty
	}
	scale := r.Scale
	if scale <= 0 {
		scale = defaultScale
	}
	lineWidth := r.LineWidth
	if lineWidth <= 0 {
		lineWidth = defaultLineWidth
	}
	full := image.Rect(0, 0, int(math.Ceil(float64(r.width)*scale))+1, int(math.Ceil(float64(r.height)*scale))+1)
	mask := image.NewAlpha(full)
	z := vector.NewRasterizer(full.Dx(), full.Dy())
	half := lineWidth / 2

	for _, path := range r.paths {
		prev := scalePoint(path[0], scale)
		fillCap(z, mask, prev, half)
		for _, p := range path[1:] {
			cur := scalePoint(p, scale)
			fillSegment(z, mask, prev, cur, half)
			fillCap(z, mask, cur, half)
			prev = cur
		}
	}

	bounds := r.inkBounds(scale, half).Intersect(full)
	if bounds.Empty() {
		return nil, ErrEmpty
	}
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	draw.DrawMask(out, out.Bounds(), image.Black, image.Point{}, mask, bounds.Min, draw.Over)
	return out, nil
}

// Rasterize encodes the surface as PNG and returns the bytes with their MIME type.
func (r *Raster) Rasterize() ([]byte, string, error) {
	img, err := r.Image()
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), "image/png", nil
}

func (r *Raster) inkBounds(scale, half float64) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, path := range r.paths {
		for _, p := range path {
			minX = math.Min(minX, p.X*scale)
			minY = math.Min(minY, p.Y*scale)
			maxX = math.Max(maxX, p.X*scale)
			maxY = math.Max(maxY, p.Y*scale)
		}
	}
	pad := half + cropPadding
	return image.Rect(
		int(math.Floor(minX-pad)),
		int(math.Floor(minY-pad)),
		int(math.Ceil(maxX+pad)),
		int(math.Ceil(maxY+pad)),
	)
}

func scalePoint(p model.Point, scale float64) model.Point {
	return model.Point{X: p.X * scale, Y: p.Y * scale}
}

// fillSegment paints the rectangle of the given half width around a-b.
func fillSegment(z *vector.Rasterizer, mask *image.Alpha, a, b model.Point, half float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	nx, ny := -dy/length*half, dx/length*half
	z.Reset(mask.Bounds().Dx(), mask.Bounds().Dy())
	z.MoveTo(float32(a.X+nx), float32(a.Y+ny))
	z.LineTo(float32(b.X+nx), float32(b.Y+ny))
	z.LineTo(float32(b.X-nx), float32(b.Y-ny))
	z.LineTo(float32(a.X-nx), float32(a.Y-ny))
	z.ClosePath()
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
}

// fillCap paints a round-ish joint so consecutive segments connect smoothly.
func fillCap(z *vector.Rasterizer, mask *image.Alpha, c model.Point, half float64) {
	z.Reset(mask.Bounds().Dx(), mask.Bounds().Dy())
	for i := 0; i < capSides; i++ {
		angle := 2 * math.Pi * float64(i) / capSides
		x := float32(c.X + half*math.Cos(angle))
		y := float32(c.Y + half*math.Sin(angle))
		if i == 0 {
			z.MoveTo(x, y)
			continue
		}
		z.LineTo(x, y)
	}
	z.ClosePath()
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
}
