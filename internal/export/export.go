// Package export hands a finished edit to the external ffmpeg encoding
// backend and relays its progress back to the caller.
package export

import (
	"fmt"
	"strconv"
)

// Crop is the export crop rectangle in integer media pixels.
type Crop struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Selection is the export time range in seconds, millisecond precision.
type Selection struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Request carries everything the encoding backend needs for one export.
type Request struct {
	InputPath  string    `json:"input_path"`
	OutputPath string    `json:"output_path"`
	Crop       Crop      `json:"crop"`
	Selection  Selection `json:"selection"`
}

// Args builds the ffmpeg argument vector for req: trim with -ss/-to, crop
// through the video filter, audio copied through untouched, existing output
// overwritten.
func Args(req Request) []string {
	cropFilter := fmt.Sprintf("crop=%d:%d:%d:%d",
		req.Crop.Width, req.Crop.Height, req.Crop.X, req.Crop.Y)
	return []string{
		"-i", req.InputPath,
		"-ss", formatSeconds(req.Selection.Start),
		"-to", formatSeconds(req.Selection.End),
		"-filter:v", cropFilter,
		"-c:a", "copy",
		"-y",
		req.OutputPath,
	}
}

// formatSeconds renders a time bound without trailing zeros ("2.05", "30").
func formatSeconds(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}
