// Package state persists the last crop and trim for each input file so an
// interrupted editing session can be resumed.
package state

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNoState is returned by Load when no saved edit exists for the input.
var ErrNoState = errors.New("no saved edit state")

// State is the resumable edit for one input file. Crop is in source pixels,
// selection bounds in seconds.
type State struct {
	Input      string    `json:"input"`
	CropX      float64   `json:"crop_x"`
	CropY      float64   `json:"crop_y"`
	CropWidth  float64   `json:"crop_width"`
	CropHeight float64   `json:"crop_height"`
	Start      float64   `json:"start"`
	End        float64   `json:"end"`
	SavedAt    time.Time `json:"saved_at"`
}

// Store persists edit states to disk, keyed by input path.
type Store interface {
	Save(s *State) error
	Load(input string) (*State, error) // returns ErrNoState if none exists
	Delete(input string) error
}

// diskStore is the concrete Store that writes to the XDG data directory.
type diskStore struct {
	dir string
}

// NewStore returns a Store backed by the XDG data directory.
// Path: $XDG_DATA_HOME/framecut/edits/ or ~/.local/share/framecut/edits/
func NewStore() (Store, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving data directory: %w", err)
		}
		base = filepath.Join(home, ".local", "share")
	}
	dir := filepath.Join(base, "framecut", "edits")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &diskStore{dir: dir}, nil
}

// path keys the state file on the absolute input path so the same file is
// found again regardless of the working directory it is opened from.
func (d *diskStore) path(input string) string {
	abs, err := filepath.Abs(input)
	if err != nil {
		abs = input
	}
	sum := sha1.Sum([]byte(abs))
	return filepath.Join(d.dir, hex.EncodeToString(sum[:])+".json")
}

// Save marshals s to JSON and writes it atomically via a temp file + os.Rename.
func (d *diskStore) Save(s *State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to persist edit state: %w", err)
	}

	tmp, err := os.CreateTemp(d.dir, "edit-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to persist edit state: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up the temp file on any error path.
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to persist edit state: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to persist edit state: %w", err)
	}

	if err = os.Rename(tmpName, d.path(s.Input)); err != nil {
		return fmt.Errorf("failed to persist edit state: %w", err)
	}
	return nil
}

// Load reads and unmarshals the state file for input.
// Returns ErrNoState if none exists.
func (d *diskStore) Load(input string) (*State, error) {
	data, err := os.ReadFile(d.path(input))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoState
		}
		return nil, fmt.Errorf("failed to read edit state: %w", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse edit state: %w", err)
	}
	return &s, nil
}

// Delete removes the state file for input from disk.
func (d *diskStore) Delete(input string) error {
	if err := os.Remove(d.path(input)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete edit state: %w", err)
	}
	return nil
}
