package editor_test

import (
	"errors"
	"testing"

	"github.com/framecut/framecut/internal/editor"
	"github.com/framecut/framecut/internal/export"
	"github.com/framecut/framecut/internal/geometry"
)

// Metadata may fire several times with invalid values before real ones
// arrive; only the first valid firing resets the edit state.
func TestMetadataResetGating(t *testing.T) {
	s := editor.NewSession(editor.DefaultConfig(), nil, nil)
	defer s.Close()

	if s.LoadMetadata(0, 0, 0) {
		t.Error("invalid metadata accepted")
	}
	if s.LoadMetadata(1920, 0, 30) {
		t.Error("zero height accepted")
	}
	if s.Ready() {
		t.Fatal("session ready before valid metadata")
	}

	if !s.LoadMetadata(1920, 1080, 30) {
		t.Fatal("valid metadata rejected")
	}
	if got := s.Crop(); got != (geometry.Rect{Width: 1920, Height: 1080}) {
		t.Errorf("crop = %+v, want full frame", got)
	}
	if got := s.Selection(); got != (editor.Selection{Start: 0, End: 30}) {
		t.Errorf("selection = %+v, want {0 30}", got)
	}

	// A later firing for the same media must not clobber user edits.
	if err := s.SetSelection(5, 20); err != nil {
		t.Fatal(err)
	}
	if s.LoadMetadata(1920, 1080, 30) {
		t.Error("second valid firing performed a reset")
	}
	if got := s.Selection(); got != (editor.Selection{Start: 5, End: 20}) {
		t.Errorf("selection = %+v, want preserved {5 20}", got)
	}
}

func TestResetForNewMedia(t *testing.T) {
	s, _ := newTestSession(t)
	defer s.Close()

	s.ResetForNewMedia()
	if s.Ready() {
		t.Fatal("still ready after reset")
	}
	// The next valid metadata resets for the new file.
	if !s.LoadMetadata(1280, 720, 12) {
		t.Fatal("metadata for new media rejected")
	}
	if got := s.Crop(); got != (geometry.Rect{Width: 1280, Height: 720}) {
		t.Errorf("crop = %+v, want new full frame", got)
	}
	if got := s.Selection(); got != (editor.Selection{Start: 0, End: 12}) {
		t.Errorf("selection = %+v, want {0 12}", got)
	}
}

// An unrecoverable media failure clears crop and selection outright: there
// are no valid dimensions left to clamp against.
func TestResetForMediaFailure(t *testing.T) {
	s, _ := newTestSession(t)
	defer s.Close()

	s.ResetForMediaFailure()
	if s.Ready() {
		t.Error("ready after failure")
	}
	if !s.Crop().IsZero() {
		t.Errorf("crop = %+v, want zero", s.Crop())
	}
	if s.Selection() != (editor.Selection{}) {
		t.Errorf("selection = %+v, want zero", s.Selection())
	}
}

// A metadata reset mid-gesture aborts the drag with no partial commit.
func TestNewMediaAbortsActiveDrag(t *testing.T) {
	s, _ := newTestSession(t)
	defer s.Close()

	if h := s.BeginCropDrag(geometry.Point{X: 960, Y: 540}); h != editor.HandleSE {
		t.Fatal("expected se hit")
	}
	s.ResetForNewMedia()
	if n := s.Surface().ListenerCount(); n != 0 {
		t.Errorf("ListenerCount() = %d, want 0", n)
	}
	s.LoadMetadata(1280, 720, 10)
	s.Surface().Move(geometry.Point{X: 500, Y: 300})
	if got := s.Crop(); got != (geometry.Rect{Width: 1280, Height: 720}) {
		t.Errorf("aborted drag mutated crop: %+v", got)
	}
}

func TestSetCropValidation(t *testing.T) {
	s, _ := newTestSession(t)
	defer s.Close()

	tests := []struct {
		name string
		r    geometry.Rect
		ok   bool
	}{
		{"full frame", geometry.Rect{Width: 1920, Height: 1080}, true},
		{"interior", geometry.Rect{X: 100, Y: 100, Width: 400, Height: 300}, true},
		{"negative origin", geometry.Rect{X: -1, Width: 400, Height: 300}, false},
		{"past right edge", geometry.Rect{X: 1600, Width: 400, Height: 300}, false},
		{"below min side", geometry.Rect{Width: 49, Height: 300}, false},
		{"min side exactly", geometry.Rect{Width: 50, Height: 50}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.SetCrop(tt.r)
			if tt.ok && err != nil {
				t.Errorf("SetCrop(%+v) = %v, want nil", tt.r, err)
			}
			if !tt.ok {
				var verr *editor.ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("SetCrop(%+v) = %v, want ValidationError", tt.r, err)
				}
			}
		})
	}
}

func TestSetSelectionValidation(t *testing.T) {
	s, _ := newTestSession(t)
	defer s.Close()

	if err := s.SetSelection(-1, 10); err == nil {
		t.Error("negative start accepted")
	}
	if err := s.SetSelection(0, 31); err == nil {
		t.Error("end past duration accepted")
	}
	if err := s.SetSelection(10, 10.5); err == nil {
		t.Error("selection below minimum duration accepted")
	}
	if err := s.SetSelection(10, 11); err != nil {
		t.Errorf("valid selection rejected: %v", err)
	}
}

// Scenario: a selection shorter than the export minimum yields a
// validation error and no request. Editing constants are configurable, so
// a session tuned for fine trims can legitimately hold such a selection.
func TestExportRejectsTooShortSelection(t *testing.T) {
	cfg := editor.DefaultConfig()
	cfg.MinDuration = 0.01
	s := editor.NewSession(cfg, nil, nil)
	defer s.Close()
	s.SetViewport(geometry.Size{Width: 960, Height: 540})
	s.LoadMetadata(1920, 1080, 30)
	if err := s.SetSelection(2.0, 2.05); err != nil {
		t.Fatal(err)
	}

	_, err := s.BuildExport("in.mp4", "out.mp4")
	var verr *editor.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("BuildExport = %v, want ValidationError", err)
	}
	// The session stays fully usable afterwards.
	if got := s.Selection(); got != (editor.Selection{Start: 2.0, End: 2.05}) {
		t.Errorf("selection = %+v, want untouched", got)
	}
	if err := s.SetSelection(2.0, 3.0); err != nil {
		t.Errorf("session unusable after validation error: %v", err)
	}
}

func TestExportBeforeMetadata(t *testing.T) {
	s := editor.NewSession(editor.DefaultConfig(), nil, nil)
	defer s.Close()

	_, err := s.BuildExport("in.mp4", "out.mp4")
	var verr *editor.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("BuildExport = %v, want ValidationError", err)
	}
}

// Export formatting: crop to integer pixels, selection bounds to
// millisecond precision.
func TestExportFormatting(t *testing.T) {
	cfg := editor.DefaultConfig()
	s := editor.NewSession(cfg, nil, nil)
	defer s.Close()
	s.SetViewport(geometry.Size{Width: 960, Height: 540})
	s.LoadMetadata(1920, 1080, 30)

	if err := s.SetCrop(geometry.Rect{X: 10.4, Y: 20.6, Width: 100.2, Height: 200.49}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSelection(1.23456, 7.891011); err != nil {
		t.Fatal(err)
	}

	req, err := s.BuildExport("in.mp4", "out.mp4")
	if err != nil {
		t.Fatal(err)
	}
	wantCrop := export.Crop{X: 10, Y: 21, Width: 100, Height: 200}
	if req.Crop != wantCrop {
		t.Errorf("crop = %+v, want %+v", req.Crop, wantCrop)
	}
	wantSel := export.Selection{Start: 1.235, End: 7.891}
	if req.Selection != wantSel {
		t.Errorf("selection = %+v, want %+v", req.Selection, wantSel)
	}
	if req.InputPath != "in.mp4" || req.OutputPath != "out.mp4" {
		t.Errorf("paths = %q/%q", req.InputPath, req.OutputPath)
	}
}

// The mapper is rebuilt from current state on every use, so a viewport
// resize takes effect immediately.
func TestViewportResizeRefreshesMapper(t *testing.T) {
	s, _ := newTestSession(t)
	defer s.Close()

	if got := s.Mapper().Scale(); got != 0.5 {
		t.Fatalf("scale = %v, want 0.5", got)
	}
	s.SetViewport(geometry.Size{Width: 480, Height: 270})
	if got := s.Mapper().Scale(); got != 0.25 {
		t.Errorf("scale after resize = %v, want 0.25", got)
	}
	if got := s.DisplayCrop(); got != (geometry.Rect{Width: 480, Height: 270}) {
		t.Errorf("display crop = %+v, want {0 0 480 270}", got)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &editor.ValidationError{Reason: "selection is 0.050s, minimum is 0.1s"}
	want := "invalid edit: selection is 0.050s, minimum is 0.1s"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
