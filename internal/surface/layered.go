package surface

import (
	"github.com/verte-zerg/wwpm/internal/model"
	"github.com/verte-zerg/wwpm/internal/stroke"
)

// Layered mirrors every draw call onto a display surface and a raster, so
// the screen and the recognized image always come from the same replay.
type Layered struct {
	Display stroke.Surface
	Raster  *Raster
}

// Clear implements stroke.Surface.
func (l *Layered) Clear() {
	if l.Display != nil {
		l.Display.Clear()
	}
	l.Raster.Clear()
}

// DrawPath implements stroke.Surface.
func (l *Layered) DrawPath(points []model.Point) {
	if l.Display != nil {
		l.Display.DrawPath(points)
	}
	l.Raster.DrawPath(points)
}

// Rasterize encodes the raster layer.
func (l *Layered) Rasterize() ([]byte, string, error) {
	return l.Raster.Rasterize()
}
