package viz

import (
	"math"

	"github.com/san-kum/bhsim/internal/vec"
)

// Projector maps world coordinates onto canvas sub-pixels. At zoom 1 the
// square [-Window, Window]² of the rotated x-y plane fills the shorter
// canvas side; z is only used for depth ordering.
type Projector struct {
	Window     float64
	RotX, RotY float64
	Zoom       float64
}

func NewProjector(window float64) *Projector {
	return &Projector{Window: window, Zoom: 1}
}

func (p *Projector) RotateX(a float64) { p.RotX += a }
func (p *Projector) RotateY(a float64) { p.RotY += a }
func (p *Projector) ZoomIn()           { p.Zoom = math.Min(100, p.Zoom*1.25) }
func (p *Projector) ZoomOut()          { p.Zoom = math.Max(0.01, p.Zoom/1.25) }

// ResetView clears rotation and zoom.
func (p *Projector) ResetView() {
	p.RotX, p.RotY, p.Zoom = 0, 0, 1
}

// Rotate applies the view rotation, x axis first.
func (p *Projector) Rotate(v vec.Vec3) vec.Vec3 {
	x, y, z := v.X(), v.Y(), v.Z()
	cx, sx := math.Cos(p.RotX), math.Sin(p.RotX)
	y, z = y*cx-z*sx, y*sx+z*cx
	cy, sy := math.Cos(p.RotY), math.Sin(p.RotY)
	x, z = x*cy+z*sy, -x*sy+z*cy
	return vec.New(x, y, z)
}

// PixelsPerMeter is the scale for a canvas of w x h sub-pixels.
func (p *Projector) PixelsPerMeter(w, h int) float64 {
	side := min(w, h)
	return float64(side) / (2 * p.Window) * p.Zoom
}

// Project returns the sub-pixel position of v on a w x h canvas, its depth
// (larger is nearer) and whether it lands on the canvas. Screen y grows
// downward.
func (p *Projector) Project(v vec.Vec3, w, h int) (x, y int, depth float64, visible bool) {
	r := p.Rotate(v)
	s := p.PixelsPerMeter(w, h)
	fx := float64(w)/2 + r.X()*s
	fy := float64(h)/2 - r.Y()*s
	if math.IsNaN(fx) || math.IsNaN(fy) || math.Abs(fx) > 1e9 || math.Abs(fy) > 1e9 {
		return 0, 0, r.Z(), false
	}
	x, y = int(math.Floor(fx)), int(math.Floor(fy))
	return x, y, r.Z(), x >= 0 && y >= 0 && x < w && y < h
}

// Radius converts a world length into whole sub-pixels.
func (p *Projector) Radius(length float64, w, h int) int {
	return int(length * p.PixelsPerMeter(w, h))
}
