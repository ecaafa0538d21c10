// Package logging configures zerolog for framecut. Interactive commands
// log to a file (the TUI owns the terminal); everything else logs to a
// console writer on stderr.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Setup configures a zerolog logger writing to w at the given level.
// Unknown levels fall back to info.
func Setup(level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).With().Timestamp().Logger().Level(lvl)
}

// Console returns a human-readable stderr logger for non-TUI commands.
func Console(level string) zerolog.Logger {
	return Setup(level, zerolog.ConsoleWriter{Out: os.Stderr})
}

// OpenLogFile opens the framecut log file under the XDG state directory
// ($XDG_STATE_HOME/framecut/framecut.log or ~/.local/state/framecut/...),
// creating directories as needed. The caller closes it.
func OpenLogFile() (*os.File, error) {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".local", "state")
	}
	dir := filepath.Join(base, "framecut")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "framecut.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
