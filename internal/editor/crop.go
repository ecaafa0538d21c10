package editor

import (
	"math"

	"github.com/framecut/framecut/internal/geometry"
)

// Handle names the grab point of a crop gesture: one of the four corners,
// the interior (move), or none.
type Handle int

const (
	HandleNone Handle = iota
	HandleMove
	HandleNW
	HandleNE
	HandleSW
	HandleSE
)

func (h Handle) String() string {
	switch h {
	case HandleMove:
		return "move"
	case HandleNW:
		return "nw"
	case HandleNE:
		return "ne"
	case HandleSW:
		return "sw"
	case HandleSE:
		return "se"
	}
	return "none"
}

type cropDrag struct {
	handle  Handle
	last    geometry.Point // display-space position of the previous move
	dispose []func()
}

// BeginCropDrag starts a crop gesture at display-space point p. It hit-tests
// p against the current crop rectangle and, on a hit, attaches move/up
// handlers to the surface for the duration of the drag. A pointer-down while
// a drag is already active discards the old drag and starts fresh. Returns
// the handle that was hit, HandleNone when the gesture is ignored.
func (s *Session) BeginCropDrag(p geometry.Point) Handle {
	if !s.ready {
		return HandleNone
	}
	h := hitTestCrop(s.Mapper().RectToDisplay(s.crop), p, s.cfg.HitRadius)
	if h == HandleNone {
		return HandleNone
	}
	s.cancelCropDrag()
	d := &cropDrag{handle: h, last: p}
	d.dispose = append(d.dispose,
		s.surface.OnMove(s.updateCropDrag),
		s.surface.OnUp(s.EndCropDrag),
	)
	s.cropDrag = d
	return h
}

// CropDragging returns the handle of the active crop drag, HandleNone when idle.
func (s *Session) CropDragging() Handle {
	if s.cropDrag == nil {
		return HandleNone
	}
	return s.cropDrag.handle
}

// EndCropDrag finishes the active crop gesture, detaching its surface
// handlers. Safe to call with no drag active.
func (s *Session) EndCropDrag() { s.cancelCropDrag() }

func (s *Session) cancelCropDrag() {
	if s.cropDrag == nil {
		return
	}
	for _, dispose := range s.cropDrag.dispose {
		dispose()
	}
	s.cropDrag = nil
}

// updateCropDrag applies one pointer-move to the crop rectangle. The delta
// is taken against the previous move, not the drag origin, so no cumulative
// drift builds up, and is converted to media space by 1/scale.
func (s *Session) updateCropDrag(p geometry.Point) {
	d := s.cropDrag
	if d == nil {
		return
	}
	scale := s.Mapper().Scale()
	if scale <= 0 {
		return
	}
	dx := (p.X - d.last.X) / scale
	dy := (p.Y - d.last.Y) / scale
	d.last = p

	next := applyCropHandle(d.handle, s.crop, dx, dy, s.minCropSide(), s.media)
	if next != s.crop {
		s.crop = next
		s.notifyCrop()
	}
}

// hitTestCrop resolves a display-space pointer position against the crop
// rectangle projected to display space. Corner handles win within radius of
// their corner; the interior, strictly inside and outside all corner zones,
// resolves to move.
func hitTestCrop(r geometry.Rect, p geometry.Point, radius float64) Handle {
	corners := []struct {
		h Handle
		x float64
		y float64
	}{
		{HandleNW, r.X, r.Y},
		{HandleNE, r.X + r.Width, r.Y},
		{HandleSW, r.X, r.Y + r.Height},
		{HandleSE, r.X + r.Width, r.Y + r.Height},
	}
	for _, c := range corners {
		if math.Hypot(p.X-c.x, p.Y-c.y) <= radius {
			return c.h
		}
	}
	if p.X > r.X && p.X < r.X+r.Width && p.Y > r.Y && p.Y < r.Y+r.Height {
		return HandleMove
	}
	return HandleNone
}

// applyCropHandle mutates r by a media-space delta according to the handle's
// rules. Every result satisfies the crop invariants: the rectangle stays
// inside the media bounds and both sides stay at least minSide.
func applyCropHandle(h Handle, r geometry.Rect, dx, dy, minSide float64, media geometry.Size) geometry.Rect {
	switch h {
	case HandleMove:
		r.X = clampF(r.X+dx, 0, media.Width-r.Width)
		r.Y = clampF(r.Y+dy, 0, media.Height-r.Height)

	case HandleNW:
		nx := clampF(r.X+dx, 0, r.X+r.Width-minSide)
		ny := clampF(r.Y+dy, 0, r.Y+r.Height-minSide)
		r.Width = r.X + r.Width - nx
		r.Height = r.Y + r.Height - ny
		r.X, r.Y = nx, ny

	case HandleNE:
		r.Width = clampF(r.Width+dx, minSide, media.Width-r.X)
		ny := clampF(r.Y+dy, 0, r.Y+r.Height-minSide)
		r.Height = r.Y + r.Height - ny
		r.Y = ny

	case HandleSW:
		nx := clampF(r.X+dx, 0, r.X+r.Width-minSide)
		r.Width = r.X + r.Width - nx
		r.X = nx
		r.Height = clampF(r.Height+dy, minSide, media.Height-r.Y)

	case HandleSE:
		r.Width = clampF(r.Width+dx, minSide, media.Width-r.X)
		r.Height = clampF(r.Height+dy, minSide, media.Height-r.Y)
	}
	return r
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
