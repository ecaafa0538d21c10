package editor

import "github.com/framecut/framecut/internal/player"

// State mirrors the transport's observable playback state for display. It
// is derived, never authoritative: the transport is the sole source of
// truth and the mirror only moves on observed native events.
type State struct {
	CurrentTime float64
	Playing     bool
	Muted       bool
}

// EventSource is the native event feed of the media transport.
type EventSource interface {
	// Subscribe registers fn for future events and returns a disposer.
	Subscribe(fn func(player.Event)) func()
}

// Synchronizer subscribes to the transport's native events and keeps a
// State copy for the UI. Close releases the subscription.
type Synchronizer struct {
	state  State
	cancel func()
}

// NewSynchronizer starts mirroring src.
func NewSynchronizer(src EventSource) *Synchronizer {
	s := &Synchronizer{}
	s.cancel = src.Subscribe(s.observe)
	return s
}

// State returns the last observed playback state.
func (s *Synchronizer) State() State { return s.state }

// Close releases the event subscription. Safe to call twice.
func (s *Synchronizer) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Synchronizer) observe(ev player.Event) {
	s.state.CurrentTime = ev.Time
	switch ev.Kind {
	case player.EventPlay:
		s.state.Playing = true
	case player.EventPause:
		s.state.Playing = false
	case player.EventMuteChange:
		s.state.Muted = ev.Muted
	}
}
