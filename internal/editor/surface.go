package editor

import "github.com/framecut/framecut/internal/geometry"

// Surface is the global input surface pointer events are dispatched
// through. The host event loop feeds it every pointer move and release;
// editors attach handlers only for the duration of an active drag.
//
// Attaching returns a remove func that must run on every exit path of the
// gesture: explicit pointer-up, cancellation, or session teardown. Events
// are dispatched to handlers in attachment order, one at a time.
type Surface struct {
	nextID int
	move   []moveHandler
	up     []upHandler
}

type moveHandler struct {
	id int
	fn func(geometry.Point)
}

type upHandler struct {
	id int
	fn func()
}

// NewSurface returns an empty input surface.
func NewSurface() *Surface { return &Surface{} }

// OnMove attaches a pointer-move handler and returns its remover.
func (s *Surface) OnMove(fn func(geometry.Point)) func() {
	id := s.nextID
	s.nextID++
	s.move = append(s.move, moveHandler{id: id, fn: fn})
	return func() {
		for i, h := range s.move {
			if h.id == id {
				s.move = append(s.move[:i], s.move[i+1:]...)
				return
			}
		}
	}
}

// OnUp attaches a pointer-up handler and returns its remover.
func (s *Surface) OnUp(fn func()) func() {
	id := s.nextID
	s.nextID++
	s.up = append(s.up, upHandler{id: id, fn: fn})
	return func() {
		for i, h := range s.up {
			if h.id == id {
				s.up = append(s.up[:i], s.up[i+1:]...)
				return
			}
		}
	}
}

// Move dispatches a pointer-move at display-space position p. Handlers
// are copied first so one detaching itself mid-dispatch is safe.
func (s *Surface) Move(p geometry.Point) {
	handlers := make([]func(geometry.Point), len(s.move))
	for i, h := range s.move {
		handlers[i] = h.fn
	}
	for _, fn := range handlers {
		fn(p)
	}
}

// Up dispatches a pointer-up. A pointer-up with no attached handlers (no
// active drag) is a no-op.
func (s *Surface) Up() {
	handlers := make([]func(), len(s.up))
	for i, h := range s.up {
		handlers[i] = h.fn
	}
	for _, fn := range handlers {
		fn()
	}
}

// ListenerCount returns the number of attached handlers. Zero between
// gestures; tests use it to verify drags do not leak listeners.
func (s *Surface) ListenerCount() int {
	return len(s.move) + len(s.up)
}
