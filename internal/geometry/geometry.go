// Package geometry converts between media pixel space (native video
// dimensions) and display space (on-screen rendered pixels).
package geometry

// Point is a position in either coordinate space.
type Point struct {
	X float64
	Y float64
}

// Size is a width/height pair in either coordinate space.
type Size struct {
	Width  float64
	Height float64
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// IsZero reports whether the rectangle is the zero value.
func (r Rect) IsZero() bool {
	return r == Rect{}
}

// Mapper maps points between media space and display space. The scaled
// media is centered inside the viewport; that layout policy is fixed here
// and applied everywhere the mapper is used. A Mapper is pure and cheap to
// construct, so callers derive a fresh one whenever either size changes.
type Mapper struct {
	Media    Size
	Viewport Size
}

// Scale returns the display pixels per media pixel. When either media
// dimension is zero (metadata not yet available) the scale is 1 so that
// callers never divide by zero.
func (m Mapper) Scale() float64 {
	if m.Media.Width <= 0 || m.Media.Height <= 0 {
		return 1
	}
	sx := m.Viewport.Width / m.Media.Width
	sy := m.Viewport.Height / m.Media.Height
	if sx < sy {
		return sx
	}
	return sy
}

// offset is the display-space position of the media origin.
func (m Mapper) offset() Point {
	s := m.Scale()
	return Point{
		X: (m.Viewport.Width - m.Media.Width*s) / 2,
		Y: (m.Viewport.Height - m.Media.Height*s) / 2,
	}
}

// ToDisplay converts a media-space point to display space.
func (m Mapper) ToDisplay(p Point) Point {
	s := m.Scale()
	o := m.offset()
	return Point{X: p.X*s + o.X, Y: p.Y*s + o.Y}
}

// ToMedia converts a display-space point back to media space. It is the
// inverse of ToDisplay: ToMedia(ToDisplay(p)) == p within floating-point
// epsilon for any valid scale.
func (m Mapper) ToMedia(q Point) Point {
	s := m.Scale()
	if s == 0 {
		return Point{}
	}
	o := m.offset()
	return Point{X: (q.X - o.X) / s, Y: (q.Y - o.Y) / s}
}

// RectToDisplay converts a media-space rectangle to display space.
func (m Mapper) RectToDisplay(r Rect) Rect {
	s := m.Scale()
	o := m.ToDisplay(Point{X: r.X, Y: r.Y})
	return Rect{X: o.X, Y: o.Y, Width: r.Width * s, Height: r.Height * s}
}
