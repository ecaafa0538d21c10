package editor

import (
	"math"

	"github.com/framecut/framecut/internal/geometry"
)

// TrimHandle names the grab point of a trim gesture.
type TrimHandle int

const (
	TrimNone TrimHandle = iota
	TrimStart
	TrimEnd
)

func (h TrimHandle) String() string {
	switch h {
	case TrimStart:
		return "start"
	case TrimEnd:
		return "end"
	}
	return "none"
}

// Keyboard nudge steps in seconds. The default applies with no modifier,
// fine with Alt, coarse with Shift.
const (
	NudgeStepDefault = 0.1
	NudgeStepFine    = 0.01
	NudgeStepCoarse  = 1.0
)

// NudgeStep resolves the modifier keys of an arrow press to a step size.
func NudgeStep(alt, shift bool) float64 {
	switch {
	case alt:
		return NudgeStepFine
	case shift:
		return NudgeStepCoarse
	}
	return NudgeStepDefault
}

type trimDrag struct {
	handle  TrimHandle
	originX float64 // display-space X of the track's left edge
	width   float64 // display-space track width
	dispose []func()
}

// TrackPress handles a pointer-down on the timeline track at display-space
// point p, where origin is the track's top-left corner and width its
// display-space length. A press within HitRadius of the start or end handle
// begins a trim drag (pausing playback first); a press elsewhere on the
// track seeks the playhead without touching the selection. With no valid
// duration the whole track is disabled.
func (s *Session) TrackPress(p, origin geometry.Point, width float64) TrimHandle {
	if !s.ready || s.duration <= 0 || width <= 0 {
		return TrimNone
	}
	x := p.X - origin.X
	startX := s.sel.Start / s.duration * width
	endX := s.sel.End / s.duration * width

	var h TrimHandle
	switch {
	case math.Abs(x-startX) <= s.cfg.HitRadius:
		h = TrimStart
	case math.Abs(x-endX) <= s.cfg.HitRadius:
		h = TrimEnd
	}
	if h == TrimNone {
		// Click-to-seek on the track background.
		if x >= 0 && x <= width && s.transport != nil {
			s.transport.Seek(x / width * s.duration)
		}
		return TrimNone
	}

	s.cancelTrimDrag()
	if s.transport != nil && s.transport.Playing() {
		s.transport.Pause()
	}
	d := &trimDrag{handle: h, originX: origin.X, width: width}
	d.dispose = append(d.dispose,
		s.surface.OnMove(s.updateTrimDrag),
		s.surface.OnUp(s.EndTrimDrag),
	)
	s.trimDrag = d
	return h
}

// TrimDragging returns the handle of the active trim drag, TrimNone when idle.
func (s *Session) TrimDragging() TrimHandle {
	if s.trimDrag == nil {
		return TrimNone
	}
	return s.trimDrag.handle
}

// EndTrimDrag finishes the active trim gesture, detaching its surface
// handlers. Safe to call with no drag active.
func (s *Session) EndTrimDrag() { s.cancelTrimDrag() }

func (s *Session) cancelTrimDrag() {
	if s.trimDrag == nil {
		return
	}
	for _, dispose := range s.trimDrag.dispose {
		dispose()
	}
	s.trimDrag = nil
}

// updateTrimDrag moves the dragged handle to the time under the pointer,
// clamped so the selection keeps its minimum length, and scrubs the
// playhead live to the handle for preview feedback.
func (s *Session) updateTrimDrag(p geometry.Point) {
	d := s.trimDrag
	if d == nil {
		return
	}
	pct := clampF((p.X-d.originX)/d.width*100, 0, 100)
	t := pct / 100 * s.duration

	switch d.handle {
	case TrimStart:
		t = clampF(t, 0, s.sel.End-s.minGap())
		if t != s.sel.Start {
			s.sel.Start = t
			s.notifySelection()
		}
	case TrimEnd:
		t = clampF(t, s.sel.Start+s.minGap(), s.duration)
		if t != s.sel.End {
			s.sel.End = t
			s.notifySelection()
		}
	}
	if s.transport != nil {
		s.transport.Seek(t)
	}
}

// Nudge moves a trim handle by dir (-1 left, +1 right) times step seconds,
// clamped by the same rules as dragging and rounded to millisecond
// precision. The selection changes, and the playhead seeks to the new
// time, only when the rounded value differs from the current one.
func (s *Session) Nudge(h TrimHandle, dir int, step float64) {
	if !s.ready || s.duration <= 0 {
		return
	}
	delta := float64(dir) * step
	switch h {
	case TrimStart:
		t := round3(clampF(s.sel.Start+delta, 0, s.sel.End-s.minGap()))
		if t == s.sel.Start {
			return
		}
		s.sel.Start = t
		s.notifySelection()
		if s.transport != nil {
			s.transport.Seek(t)
		}
	case TrimEnd:
		t := round3(clampF(s.sel.End+delta, s.sel.Start+s.minGap(), s.duration))
		if t == s.sel.End {
			return
		}
		s.sel.End = t
		s.notifySelection()
		if s.transport != nil {
			s.transport.Seek(t)
		}
	}
}

// HandleTimeUpdate observes a playback-position update. While playing,
// reaching selection.end (within a small epsilon, to avoid pause flicker on
// coarse position updates) pauses playback and snaps the playhead exactly
// to the selection end.
func (s *Session) HandleTimeUpdate(t float64) {
	if !s.ready || s.transport == nil || !s.transport.Playing() {
		return
	}
	if t >= s.sel.End-s.cfg.EndEpsilon {
		s.transport.Pause()
		s.transport.Seek(s.sel.End)
	}
}

// TogglePlay pauses when playing; otherwise it starts playback, first
// rewinding to the selection start when the playhead sits at or past the
// selection end.
func (s *Session) TogglePlay() {
	if s.transport == nil || !s.ready {
		return
	}
	if s.transport.Playing() {
		s.transport.Pause()
		return
	}
	if s.transport.Position() >= s.sel.End {
		s.transport.Seek(s.sel.Start)
	}
	s.transport.Play()
}

// minGap is the effective minimum selection length. Clips shorter than the
// configured minimum stay fully selectable.
func (s *Session) minGap() float64 {
	if s.duration < s.cfg.MinDuration {
		return s.duration
	}
	return s.cfg.MinDuration
}

func round3(t float64) float64 {
	return math.Round(t*1000) / 1000
}
