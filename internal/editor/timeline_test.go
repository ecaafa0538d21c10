package editor_test

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/framecut/framecut/internal/editor"
	"github.com/framecut/framecut/internal/geometry"
)

// track geometry used throughout: a 300 px track at the origin.
var trackOrigin = geometry.Point{X: 0, Y: 0}

const trackWidth = 300.0

func checkSelectionInvariants(t testingT, s *editor.Session) {
	t.Helper()
	const eps = 1e-9
	sel := s.Selection()
	if sel.Start < -eps || sel.End > s.Duration()+eps {
		t.Fatalf("selection out of range: %+v (duration %v)", sel, s.Duration())
	}
	if sel.Start >= sel.End {
		t.Fatalf("selection inverted: %+v", sel)
	}
}

// Scenario: duration 30 s, selection [0,30]; dragging the start handle to a
// position mapping past the end clamps to end minus the minimum duration.
func TestStartDragClampsAgainstEnd(t *testing.T) {
	s, _ := newTestSession(t)
	defer s.Close()

	if h := s.TrackPress(geometry.Point{X: 0, Y: 0}, trackOrigin, trackWidth); h != editor.TrimStart {
		t.Fatalf("press = %v, want start", h)
	}
	// Past the right edge of the track: pct clamps to 100 => t=32s-ish => 30,
	// then the start clamp brings it to 30 - MinDuration.
	s.Surface().Move(geometry.Point{X: 320, Y: 0})
	s.Surface().Up()

	if got := s.Selection(); got.Start != 29 || got.End != 30 {
		t.Errorf("selection = %+v, want {29 30}", got)
	}
}

func TestEndDragClampsAgainstStart(t *testing.T) {
	s, _ := newTestSession(t)
	defer s.Close()

	if h := s.TrackPress(geometry.Point{X: trackWidth, Y: 0}, trackOrigin, trackWidth); h != editor.TrimEnd {
		t.Fatalf("press = %v, want end", h)
	}
	s.Surface().Move(geometry.Point{X: -50, Y: 0})
	s.Surface().Up()

	if got := s.Selection(); got.Start != 0 || got.End != 1 {
		t.Errorf("selection = %+v, want {0 1}", got)
	}
}

// Dragging a handle pauses playback and scrubs the playhead live to the
// time under the handle.
func TestDragPausesAndScrubs(t *testing.T) {
	s, tr := newTestSession(t)
	defer s.Close()
	tr.playing = true

	if h := s.TrackPress(geometry.Point{X: trackWidth, Y: 0}, trackOrigin, trackWidth); h != editor.TrimEnd {
		t.Fatal("expected end hit")
	}
	if tr.playing {
		t.Error("playback not paused on drag start")
	}
	s.Surface().Move(geometry.Point{X: 150, Y: 0}) // 50% => 15s
	s.Surface().Up()

	if got := s.Selection().End; got != 15 {
		t.Errorf("selection end = %v, want 15", got)
	}
	if len(tr.seeks) == 0 || tr.seeks[len(tr.seeks)-1] != 15 {
		t.Errorf("seeks = %v, want last seek at 15", tr.seeks)
	}
}

// Click on the track background seeks without touching the selection.
func TestClickToSeek(t *testing.T) {
	s, tr := newTestSession(t)
	defer s.Close()
	before := s.Selection()

	if h := s.TrackPress(geometry.Point{X: 150, Y: 0}, trackOrigin, trackWidth); h != editor.TrimNone {
		t.Fatalf("press = %v, want none", h)
	}
	if s.Selection() != before {
		t.Errorf("selection changed by click-to-seek: %+v", s.Selection())
	}
	if len(tr.seeks) != 1 || tr.seeks[0] != 15 {
		t.Errorf("seeks = %v, want [15]", tr.seeks)
	}
	if n := s.Surface().ListenerCount(); n != 0 {
		t.Errorf("click-to-seek attached %d listeners", n)
	}
}

// A click aimed at the track background can still land within the hit
// radius of a handle; the press then begins a drag that holds surface
// listeners until pointer-up releases them.
func TestPressNearHandleStartsDragNotSeek(t *testing.T) {
	s, tr := newTestSession(t)
	defer s.Close()

	if h := s.TrackPress(geometry.Point{X: 1, Y: 0}, trackOrigin, trackWidth); h != editor.TrimStart {
		t.Fatalf("press = %v, want start", h)
	}
	if len(tr.seeks) != 0 {
		t.Errorf("handle press seeked: %v", tr.seeks)
	}
	if n := s.Surface().ListenerCount(); n != 2 {
		t.Fatalf("drag holds %d listeners, want 2", n)
	}
	s.Surface().Up()
	if n := s.Surface().ListenerCount(); n != 0 {
		t.Errorf("leaked %d listeners after release", n)
	}
}

// Scenario: end handle focused, ArrowRight with Shift, selection [0,10],
// duration 30 => [0, 11.0].
func TestCoarseNudgeRight(t *testing.T) {
	s, _ := newTestSession(t)
	defer s.Close()
	if err := s.SetSelection(0, 10); err != nil {
		t.Fatal(err)
	}

	s.Nudge(editor.TrimEnd, +1, editor.NudgeStep(false, true))
	if got := s.Selection(); got.Start != 0 || got.End != 11.0 {
		t.Errorf("selection = %+v, want {0 11}", got)
	}
}

func TestNudgeStepModifiers(t *testing.T) {
	tests := []struct {
		alt, shift bool
		want       float64
	}{
		{false, false, 0.1},
		{true, false, 0.01},
		{false, true, 1.0},
		{true, true, 0.01}, // fine wins when both are held
	}
	for _, tt := range tests {
		if got := editor.NudgeStep(tt.alt, tt.shift); got != tt.want {
			t.Errorf("NudgeStep(%v,%v) = %v, want %v", tt.alt, tt.shift, got, tt.want)
		}
	}
}

// Repeated default nudges stay on exact millisecond values; no floating
// drift accumulates.
func TestNudgeRoundsToMilliseconds(t *testing.T) {
	s, _ := newTestSession(t)
	defer s.Close()

	for i := 0; i < 3; i++ {
		s.Nudge(editor.TrimStart, +1, editor.NudgeStepDefault)
	}
	if got := s.Selection().Start; got != 0.3 {
		t.Errorf("start = %v, want exactly 0.3", got)
	}
}

// A nudge whose rounded result equals the current value fires no change
// notification and no seek.
func TestNudgeAtClampBoundaryIsSilent(t *testing.T) {
	s, tr := newTestSession(t)
	defer s.Close()

	var notified bool
	s.OnSelectionChange = func(editor.Selection) { notified = true }
	s.Nudge(editor.TrimStart, -1, editor.NudgeStepCoarse) // already at 0
	if notified {
		t.Error("notification fired for clamped no-op nudge")
	}
	if len(tr.seeks) != 0 {
		t.Errorf("seeks = %v, want none", tr.seeks)
	}
}

func TestNudgeSeeksToNewTime(t *testing.T) {
	s, tr := newTestSession(t)
	defer s.Close()

	s.Nudge(editor.TrimEnd, -1, editor.NudgeStepCoarse)
	if got := s.Selection().End; got != 29 {
		t.Errorf("end = %v, want 29", got)
	}
	if len(tr.seeks) != 1 || tr.seeks[0] != 29 {
		t.Errorf("seeks = %v, want [29]", tr.seeks)
	}
}

// Scenario: playing media reaches the selection end => paused, position
// snapped exactly to the end.
func TestAutoPauseAtSelectionEnd(t *testing.T) {
	s, tr := newTestSession(t)
	defer s.Close()
	if err := s.SetSelection(5, 15); err != nil {
		t.Fatal(err)
	}
	tr.playing = true

	s.HandleTimeUpdate(15.0)
	if tr.playing {
		t.Error("playback not paused at selection end")
	}
	if tr.pos != 15.0 {
		t.Errorf("position = %v, want snapped exactly to 15.0", tr.pos)
	}
}

// Positions within epsilon of the end also pause; earlier ones do not.
func TestAutoPauseEpsilon(t *testing.T) {
	s, tr := newTestSession(t)
	defer s.Close()
	if err := s.SetSelection(5, 15); err != nil {
		t.Fatal(err)
	}

	tr.playing = true
	s.HandleTimeUpdate(14.9)
	if !tr.playing {
		t.Error("paused too early at 14.9")
	}
	s.HandleTimeUpdate(14.96)
	if tr.playing {
		t.Error("not paused within epsilon of the end")
	}
}

func TestTimeUpdateIgnoredWhilePaused(t *testing.T) {
	s, tr := newTestSession(t)
	defer s.Close()

	s.HandleTimeUpdate(29.99)
	if tr.pauses != 0 || len(tr.seeks) != 0 {
		t.Errorf("paused transport was driven: pauses=%d seeks=%v", tr.pauses, tr.seeks)
	}
}

// Play with the playhead at or past the selection end rewinds to the
// selection start first.
func TestPlayFromEndRewinds(t *testing.T) {
	s, tr := newTestSession(t)
	defer s.Close()
	if err := s.SetSelection(5, 15); err != nil {
		t.Fatal(err)
	}
	tr.pos = 15

	s.TogglePlay()
	if !tr.playing {
		t.Error("not playing after toggle")
	}
	if len(tr.seeks) != 1 || tr.seeks[0] != 5 {
		t.Errorf("seeks = %v, want rewind to [5]", tr.seeks)
	}

	s.TogglePlay()
	if tr.playing {
		t.Error("still playing after second toggle")
	}
}

func TestPlayMidSelectionDoesNotRewind(t *testing.T) {
	s, tr := newTestSession(t)
	defer s.Close()
	tr.pos = 12

	s.TogglePlay()
	if len(tr.seeks) != 0 {
		t.Errorf("seeks = %v, want none", tr.seeks)
	}
	if !tr.playing {
		t.Error("not playing")
	}
}

// With no valid duration the timeline is fully disabled.
func TestTimelineDisabledWithoutDuration(t *testing.T) {
	s := editor.NewSession(editor.DefaultConfig(), nil, &fakeTransport{})
	defer s.Close()
	s.SetViewport(geometry.Size{Width: 960, Height: 540})

	if h := s.TrackPress(geometry.Point{X: 0, Y: 0}, trackOrigin, trackWidth); h != editor.TrimNone {
		t.Errorf("press = %v, want none", h)
	}
	s.Nudge(editor.TrimStart, +1, editor.NudgeStepDefault)
	if s.Selection() != (editor.Selection{}) {
		t.Errorf("selection mutated: %+v", s.Selection())
	}
}

// Clips shorter than the configured minimum duration stay editable: the
// effective minimum gap shrinks to the clip length.
func TestShortClipSelection(t *testing.T) {
	s := editor.NewSession(editor.DefaultConfig(), nil, nil)
	defer s.Close()
	s.SetViewport(geometry.Size{Width: 960, Height: 540})
	if !s.LoadMetadata(1920, 1080, 0.5) {
		t.Fatal("metadata rejected")
	}
	if got := s.Selection(); got.Start != 0 || got.End != 0.5 {
		t.Fatalf("selection = %+v, want {0 0.5}", got)
	}
	checkSelectionInvariants(t, s)
}

// Property: the selection invariants hold after any mix of drags, nudges,
// clicks and time updates.
func TestSelectionInvariantsUnderRandomGestures(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tr := &fakeTransport{}
		s := editor.NewSession(editor.DefaultConfig(), nil, tr)
		defer s.Close()
		s.SetViewport(geometry.Size{Width: 960, Height: 540})
		duration := rapid.Float64Range(2, 7200).Draw(t, "duration")
		s.LoadMetadata(1920, 1080, duration)

		ops := rapid.IntRange(1, 20).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			switch rapid.IntRange(0, 3).Draw(t, "op") {
			case 0: // drag a handle somewhere on the track
				sel := s.Selection()
				x := sel.Start / duration * trackWidth
				if rapid.Bool().Draw(t, "end_handle") {
					x = sel.End / duration * trackWidth
				}
				if s.TrackPress(geometry.Point{X: x, Y: 0}, trackOrigin, trackWidth) != editor.TrimNone {
					moves := rapid.IntRange(0, 4).Draw(t, "moves")
					for mv := 0; mv < moves; mv++ {
						s.Surface().Move(geometry.Point{
							X: rapid.Float64Range(-100, trackWidth+100).Draw(t, "x"),
						})
						checkSelectionInvariants(t, s)
					}
					s.Surface().Up()
				}
			case 1: // nudge
				h := editor.TrimStart
				if rapid.Bool().Draw(t, "nudge_end") {
					h = editor.TrimEnd
				}
				dir := 1
				if rapid.Bool().Draw(t, "left") {
					dir = -1
				}
				steps := []float64{editor.NudgeStepFine, editor.NudgeStepDefault, editor.NudgeStepCoarse}
				s.Nudge(h, dir, steps[rapid.IntRange(0, 2).Draw(t, "step")])
			case 2: // click-to-seek, releasing if the press landed on a handle
				h := s.TrackPress(geometry.Point{X: rapid.Float64Range(0, trackWidth).Draw(t, "seek_x")}, trackOrigin, trackWidth)
				if h != editor.TrimNone {
					s.Surface().Up()
				}
			case 3: // playback progress
				tr.playing = rapid.Bool().Draw(t, "playing")
				s.HandleTimeUpdate(rapid.Float64Range(0, duration).Draw(t, "t"))
			}
			checkSelectionInvariants(t, s)
		}
		if n := s.Surface().ListenerCount(); n != 0 {
			t.Fatalf("leaked %d listeners", n)
		}
	})
}
