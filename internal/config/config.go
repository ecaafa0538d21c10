package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/framecut/framecut/internal/editor"
)

// Config holds all configurable framecut settings. The editing constants
// are deliberately configurable: different workflows want different
// minimum crop sizes and trim granularity.
type Config struct {
	MinCropPx            float64 `json:"min_crop_px"`
	MinDurationSec       float64 `json:"min_duration_sec"`
	MinExportDurationSec float64 `json:"min_export_duration_sec"`
	HitRadiusPx          float64 `json:"hit_radius_px"`
	FFmpegPath           string  `json:"ffmpeg_path"`
	FFprobePath          string  `json:"ffprobe_path"`
	OutputDir            string  `json:"output_dir"`
	LogLevel             string  `json:"log_level"` // debug | info | warn | error
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	ed := editor.DefaultConfig()
	return Config{
		MinCropPx:            ed.MinCrop,
		MinDurationSec:       ed.MinDuration,
		MinExportDurationSec: ed.MinExportDuration,
		HitRadiusPx:          ed.HitRadius,
		FFmpegPath:           "ffmpeg",
		FFprobePath:          "ffprobe",
		OutputDir:            ".",
		LogLevel:             "info",
	}
}

// Editor maps the configured constants onto the editing engine's config.
func (c Config) Editor() editor.Config {
	ed := editor.DefaultConfig()
	if c.MinCropPx > 0 {
		ed.MinCrop = c.MinCropPx
	}
	if c.MinDurationSec > 0 {
		ed.MinDuration = c.MinDurationSec
	}
	if c.MinExportDurationSec > 0 {
		ed.MinExportDuration = c.MinExportDurationSec
	}
	if c.HitRadiusPx > 0 {
		ed.HitRadius = c.HitRadiusPx
	}
	return ed
}

// LoadGlobal reads ~/.config/framecut/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "framecut", "config.json")
	return loadFile(path, true)
}

// LoadProject reads .framecutrc in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".framecutrc", false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()
	for _, c := range []*Config{global, project} {
		if c == nil {
			continue
		}
		if c.MinCropPx > 0 {
			result.MinCropPx = c.MinCropPx
		}
		if c.MinDurationSec > 0 {
			result.MinDurationSec = c.MinDurationSec
		}
		if c.MinExportDurationSec > 0 {
			result.MinExportDurationSec = c.MinExportDurationSec
		}
		if c.HitRadiusPx > 0 {
			result.HitRadiusPx = c.HitRadiusPx
		}
		if c.FFmpegPath != "" {
			result.FFmpegPath = c.FFmpegPath
		}
		if c.FFprobePath != "" {
			result.FFprobePath = c.FFprobePath
		}
		if c.OutputDir != "" {
			result.OutputDir = c.OutputDir
		}
		if c.LogLevel != "" {
			result.LogLevel = c.LogLevel
		}
	}
	return result
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
