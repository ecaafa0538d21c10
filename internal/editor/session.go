// Package editor implements the direct-manipulation editing engine: the
// mapping from pointer and keyboard gestures in display space to valid,
// clamped crop and trim state in media space, plus the playback behavior
// (scrub preview, auto-pause at the selection end) that keeps the transport
// consistent with that state.
//
// All state is owned by a Session and mutated only through its command
// operations; there are no ambient globals. The package is single-threaded
// by design: drive it from one event loop.
package editor

import (
	"fmt"
	"math"

	"github.com/framecut/framecut/internal/export"
	"github.com/framecut/framecut/internal/geometry"
)

// Config holds the editing constants. They are configuration points, not
// hard-wired behavior; Default gives the canonical values.
type Config struct {
	MinCrop           float64 // minimum crop side length, media px
	MinDuration       float64 // minimum selection length, seconds
	MinExportDuration float64 // minimum exportable selection length, seconds
	HitRadius         float64 // handle hit radius, display px
	EndEpsilon        float64 // auto-pause tolerance near selection end, seconds
}

// DefaultConfig returns the canonical editing constants.
func DefaultConfig() Config {
	return Config{
		MinCrop:           50,
		MinDuration:       1.0,
		MinExportDuration: 0.1,
		HitRadius:         12,
		EndEpsilon:        0.05,
	}
}

// Selection is the trimmed time range in seconds.
type Selection struct {
	Start float64
	End   float64
}

// Transport is the subset of the media player the editors drive: pause and
// seek for scrub preview and auto-pause, play for the toggle control.
type Transport interface {
	Position() float64
	Seek(t float64)
	Play()
	Pause()
	Playing() bool
}

// ValidationError reports an edit that cannot be exported. The session
// stays fully usable after one; no state is reset.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid edit: " + e.Reason
}

// Session owns all edit state for one loaded media file: media dimensions
// and duration, the crop rectangle, the trim selection and the display
// viewport. Editors mutate that state only through the session's command
// operations, and drag state never outlives one gesture.
type Session struct {
	cfg       Config
	surface   *Surface
	transport Transport

	media    geometry.Size
	duration float64
	ready    bool // first valid metadata seen for the current media

	crop     geometry.Rect
	sel      Selection
	viewport geometry.Size

	cropDrag *cropDrag
	trimDrag *trimDrag

	// Change notifications, invoked after a mutation actually changed the
	// value. Optional.
	OnCropChange      func(geometry.Rect)
	OnSelectionChange func(Selection)
}

// NewSession creates a session dispatching drags through surface and
// driving transport for playback. A nil surface gets a private one; a nil
// transport disables playback behavior but not editing.
func NewSession(cfg Config, surface *Surface, transport Transport) *Session {
	if surface == nil {
		surface = NewSurface()
	}
	return &Session{cfg: cfg, surface: surface, transport: transport}
}

// Surface returns the input surface the session's drags listen on.
func (s *Session) Surface() *Surface { return s.surface }

// Ready reports whether valid media metadata has been loaded.
func (s *Session) Ready() bool { return s.ready }

// Crop returns the current crop rectangle in media space.
func (s *Session) Crop() geometry.Rect { return s.crop }

// Selection returns the current trim selection.
func (s *Session) Selection() Selection { return s.sel }

// MediaSize returns the loaded media dimensions.
func (s *Session) MediaSize() geometry.Size { return s.media }

// Duration returns the loaded media duration in seconds.
func (s *Session) Duration() float64 { return s.duration }

// Viewport returns the current display viewport.
func (s *Session) Viewport() geometry.Size { return s.viewport }

// Mapper returns a fresh geometry mapper for the current media and
// viewport. Never cached: it is rebuilt on every use so viewport and media
// changes take effect immediately.
func (s *Session) Mapper() geometry.Mapper {
	return geometry.Mapper{Media: s.media, Viewport: s.viewport}
}

// DisplayCrop returns the crop rectangle projected to display space.
func (s *Session) DisplayCrop() geometry.Rect {
	return s.Mapper().RectToDisplay(s.crop)
}

// SetViewport records a new display viewport size, from the initial layout
// or a container resize.
func (s *Session) SetViewport(size geometry.Size) {
	if size.Width < 0 {
		size.Width = 0
	}
	if size.Height < 0 {
		size.Height = 0
	}
	s.viewport = size
}

// LoadMetadata delivers media metadata. The event may fire several times
// with not-yet-valid values before real ones arrive; only the first valid
// firing resets the crop to the full frame and the selection to the whole
// duration, and returns true. Invalid values keep the session pending.
func (s *Session) LoadMetadata(width, height, duration float64) bool {
	if s.ready {
		return false
	}
	if width <= 0 || height <= 0 || duration <= 0 {
		return false
	}
	s.cancelCropDrag()
	s.cancelTrimDrag()
	s.media = geometry.Size{Width: width, Height: height}
	s.duration = duration
	s.crop = geometry.Rect{Width: width, Height: height}
	s.sel = Selection{Start: 0, End: duration}
	s.ready = true
	s.notifyCrop()
	s.notifySelection()
	return true
}

// ResetForNewMedia returns the session to the pending state ahead of a new
// media load. Any gesture in progress is aborted with no partial commit.
func (s *Session) ResetForNewMedia() {
	s.cancelCropDrag()
	s.cancelTrimDrag()
	s.ready = false
}

// ResetForMediaFailure clears all edit state after an unrecoverable media
// load failure: with no valid dimensions to clamp against, crop and
// selection become empty.
func (s *Session) ResetForMediaFailure() {
	s.cancelCropDrag()
	s.cancelTrimDrag()
	s.media = geometry.Size{}
	s.duration = 0
	s.crop = geometry.Rect{}
	s.sel = Selection{}
	s.ready = false
	s.notifyCrop()
	s.notifySelection()
}

// Close tears the session down, aborting any drag in progress so no
// surface listener outlives it.
func (s *Session) Close() {
	s.cancelCropDrag()
	s.cancelTrimDrag()
}

// SetCrop replaces the crop rectangle wholesale, for non-interactive use.
// Unlike drags, which clamp, explicit values that violate the crop
// invariants are rejected with a ValidationError.
func (s *Session) SetCrop(r geometry.Rect) error {
	if !s.ready {
		return &ValidationError{Reason: "media metadata is not loaded"}
	}
	minSide := s.minCropSide()
	switch {
	case r.X < 0 || r.Y < 0:
		return &ValidationError{Reason: "crop origin is outside the frame"}
	case r.X+r.Width > s.media.Width || r.Y+r.Height > s.media.Height:
		return &ValidationError{Reason: fmt.Sprintf("crop exceeds the %gx%g frame", s.media.Width, s.media.Height)}
	case r.Width < minSide || r.Height < minSide:
		return &ValidationError{Reason: fmt.Sprintf("crop sides must be at least %g px", minSide)}
	}
	if r != s.crop {
		s.crop = r
		s.notifyCrop()
	}
	return nil
}

// SetSelection replaces the trim selection wholesale, for non-interactive
// use. Values violating the selection invariants are rejected.
func (s *Session) SetSelection(start, end float64) error {
	if !s.ready {
		return &ValidationError{Reason: "media metadata is not loaded"}
	}
	switch {
	case start < 0 || end > s.duration:
		return &ValidationError{Reason: fmt.Sprintf("selection must lie within [0, %.3f]", s.duration)}
	case end-start < s.minGap():
		return &ValidationError{Reason: fmt.Sprintf("selection must be at least %.3fs long", s.minGap())}
	}
	next := Selection{Start: start, End: end}
	if next != s.sel {
		s.sel = next
		s.notifySelection()
	}
	return nil
}

// BuildExport validates the current edit and formats it into an export
// request: crop rounded to integer pixels, selection bounds rounded to
// milliseconds. Validation failures are synchronous and leave the session
// untouched.
func (s *Session) BuildExport(inputPath, outputPath string) (export.Request, error) {
	if !s.ready {
		return export.Request{}, &ValidationError{Reason: "media metadata is not loaded"}
	}
	if length := s.sel.End - s.sel.Start; length < s.cfg.MinExportDuration {
		return export.Request{}, &ValidationError{
			Reason: fmt.Sprintf("selection is %.3fs, minimum is %.1fs", length, s.cfg.MinExportDuration),
		}
	}
	if minSide := s.minCropSide(); s.crop.Width < minSide || s.crop.Height < minSide {
		return export.Request{}, &ValidationError{
			Reason: fmt.Sprintf("crop sides must be at least %g px", minSide),
		}
	}
	return export.Request{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Crop: export.Crop{
			X:      int(math.Round(s.crop.X)),
			Y:      int(math.Round(s.crop.Y)),
			Width:  int(math.Round(s.crop.Width)),
			Height: int(math.Round(s.crop.Height)),
		},
		Selection: export.Selection{
			Start: round3(s.sel.Start),
			End:   round3(s.sel.End),
		},
	}, nil
}

// minCropSide is the effective minimum crop side. Media smaller than the
// configured minimum stays fully croppable.
func (s *Session) minCropSide() float64 {
	min := s.cfg.MinCrop
	if s.media.Width > 0 && s.media.Width < min {
		min = s.media.Width
	}
	if s.media.Height > 0 && s.media.Height < min {
		min = s.media.Height
	}
	return min
}

func (s *Session) notifyCrop() {
	if s.OnCropChange != nil {
		s.OnCropChange(s.crop)
	}
}

func (s *Session) notifySelection() {
	if s.OnSelectionChange != nil {
		s.OnSelectionChange(s.sel)
	}
}
