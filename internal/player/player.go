// Package player provides the playback transport for a loaded clip: a
// seekable clock that models the position of the playhead, plus the native
// event stream (play, pause, mute change, position updates) that the
// editing layer observes. The clock is the sole source of truth for
// playback state; observers mirror it and never write back.
//
// The package is not safe for concurrent use. Like the rest of the editing
// engine it is driven from a single event loop.
package player

import "time"

// EventKind identifies a native playback event.
type EventKind int

const (
	EventPlay EventKind = iota
	EventPause
	EventMuteChange
	EventTimeUpdate
)

// Event is a native playback notification delivered to subscribers.
type Event struct {
	Kind  EventKind
	Time  float64 // playhead position in seconds at the time of the event
	Muted bool
}

// Clock is a playback head over a fixed duration. While playing, the
// position advances with the wall clock; Seek, Play and Pause behave like
// their media-element counterparts and emit the corresponding events.
type Clock struct {
	// Now is the time source, replaceable in tests.
	Now func() time.Time

	duration  float64
	base      float64 // position at the last play/pause/seek
	startedAt time.Time
	playing   bool
	muted     bool
	rate      float64

	nextSub int
	subs    []subscriber
}

type subscriber struct {
	id int
	fn func(Event)
}

// NewClock returns a paused clock at position 0 for the given duration.
func NewClock(duration float64) *Clock {
	if duration < 0 {
		duration = 0
	}
	return &Clock{Now: time.Now, duration: duration, rate: 1}
}

// Duration returns the clip duration in seconds.
func (c *Clock) Duration() float64 { return c.duration }

// SetDuration replaces the duration (new media loaded) and rewinds the
// clock to a paused position 0.
func (c *Clock) SetDuration(duration float64) {
	if duration < 0 {
		duration = 0
	}
	c.duration = duration
	c.playing = false
	c.base = 0
	c.emit(Event{Kind: EventTimeUpdate, Time: 0, Muted: c.muted})
}

// Position returns the current playhead position in seconds.
func (c *Clock) Position() float64 {
	pos := c.base
	if c.playing {
		pos += c.Now().Sub(c.startedAt).Seconds() * c.rate
	}
	return c.clamp(pos)
}

// Rate returns the playback rate. 1 is real time.
func (c *Clock) Rate() float64 { return c.rate }

// SetRate changes the playback rate, rebasing the position first so the
// already-elapsed span keeps its old speed. Non-positive rates are ignored.
func (c *Clock) SetRate(rate float64) {
	if rate <= 0 || rate == c.rate {
		return
	}
	c.base = c.Position()
	c.startedAt = c.Now()
	c.rate = rate
}

// Playing reports whether the clock is advancing.
func (c *Clock) Playing() bool { return c.playing }

// Muted reports the mute flag.
func (c *Clock) Muted() bool { return c.muted }

// Play starts advancing the playhead. A no-op while already playing.
func (c *Clock) Play() {
	if c.playing {
		return
	}
	c.startedAt = c.Now()
	c.playing = true
	c.emit(Event{Kind: EventPlay, Time: c.base, Muted: c.muted})
}

// Pause freezes the playhead at its current position. A no-op while paused.
func (c *Clock) Pause() {
	if !c.playing {
		return
	}
	c.base = c.Position()
	c.playing = false
	c.emit(Event{Kind: EventPause, Time: c.base, Muted: c.muted})
}

// Seek moves the playhead to t, clamped to [0, duration]. Playback state
// is preserved across the seek.
func (c *Clock) Seek(t float64) {
	c.base = c.clamp(t)
	c.startedAt = c.Now()
	c.emit(Event{Kind: EventTimeUpdate, Time: c.base, Muted: c.muted})
}

// SetMuted sets the mute flag, emitting a mute-change event when it flips.
func (c *Clock) SetMuted(muted bool) {
	if c.muted == muted {
		return
	}
	c.muted = muted
	c.emit(Event{Kind: EventMuteChange, Time: c.Position(), Muted: c.muted})
}

// Subscribe registers fn for all future events. The returned func removes
// the subscription; it must run on every exit path of the subscriber.
func (c *Clock) Subscribe(fn func(Event)) func() {
	id := c.nextSub
	c.nextSub++
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// SubscriberCount returns the number of live subscriptions.
func (c *Clock) SubscriberCount() int { return len(c.subs) }

func (c *Clock) emit(ev Event) {
	// Copy so a subscriber disposing itself mid-dispatch is safe.
	subs := make([]subscriber, len(c.subs))
	copy(subs, c.subs)
	for _, s := range subs {
		s.fn(ev)
	}
}

func (c *Clock) clamp(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > c.duration {
		return c.duration
	}
	return t
}
