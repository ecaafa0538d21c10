package media

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch observes the input file at path until ctx is cancelled, calling
// onChange after every write, create or rename touching it. Editors re-run
// the probe on a change so an externally re-encoded source refreshes its
// dimensions and duration. The containing directory is watched rather than
// the file itself, since tools commonly replace files via rename.
func Watch(ctx context.Context, path string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filepath.Base(abs) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				onChange()
			}

		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Watcher errors are non-fatal; keep watching.
		}
	}
}
