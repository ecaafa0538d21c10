// Package media loads metadata for an input file through ffprobe and
// watches the file for on-disk changes.
package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// ErrNoVideoStream is returned when the probed file has no video stream.
var ErrNoVideoStream = errors.New("no video stream found")

// Info is the probed metadata of one media file.
type Info struct {
	Path     string
	Width    int
	Height   int
	Duration float64 // seconds
	Codec    string
}

// Valid reports whether the metadata is usable for editing. ffprobe can
// report zero dimensions or duration for broken or still-growing files.
func (i Info) Valid() bool {
	return i.Width > 0 && i.Height > 0 && i.Duration > 0
}

// probeOutput mirrors the ffprobe JSON layout we consume.
type probeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe runs ffprobe on path and parses the result. ffprobePath empty
// resolves "ffprobe" via PATH.
func Probe(ctx context.Context, ffprobePath, path string) (Info, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Info{}, fmt.Errorf("input file not found: %s", path)
		}
		return Info{}, err
	}

	bin := ffprobePath
	if bin == "" {
		bin = "ffprobe"
	}
	cmd := exec.CommandContext(ctx, bin,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return Info{}, fmt.Errorf("probing %s: %w", path, err)
	}

	info, err := ParseProbe(out)
	if err != nil {
		return Info{}, fmt.Errorf("probing %s: %w", path, err)
	}
	info.Path = path
	return info, nil
}

// ParseProbe parses raw ffprobe JSON output into an Info. Split from Probe
// so parsing is testable without an ffprobe binary.
func ParseProbe(data []byte) (Info, error) {
	var po probeOutput
	if err := json.Unmarshal(data, &po); err != nil {
		return Info{}, fmt.Errorf("parsing ffprobe output: %w", err)
	}

	var info Info
	found := false
	for _, st := range po.Streams {
		if st.CodecType == "video" {
			info.Width = st.Width
			info.Height = st.Height
			info.Codec = st.CodecName
			found = true
			break
		}
	}
	if !found {
		return Info{}, ErrNoVideoStream
	}

	if po.Format.Duration != "" {
		d, err := strconv.ParseFloat(po.Format.Duration, 64)
		if err != nil {
			return Info{}, fmt.Errorf("parsing duration %q: %w", po.Format.Duration, err)
		}
		info.Duration = d
	}
	return info, nil
}
