package export

import (
	"strconv"
	"strings"
)

// ProgressTime extracts the encode position from an ffmpeg stderr progress
// line. Lines look like "frame=  120 fps= 30 ... time=00:00:04.00 bitrate=...".
// Returns false for lines that carry no parseable time field.
func ProgressTime(line string) (float64, bool) {
	i := strings.Index(line, "time=")
	if i < 0 {
		return 0, false
	}
	rest := line[i+len("time="):]
	if j := strings.IndexByte(rest, ' '); j >= 0 {
		rest = rest[:j]
	}
	rest = strings.TrimSpace(rest)
	if rest == "" || rest == "N/A" {
		return 0, false
	}

	neg := false
	if strings.HasPrefix(rest, "-") {
		neg = true
		rest = rest[1:]
	}
	parts := strings.Split(rest, ":")
	if len(parts) != 3 {
		return 0, false
	}
	h, err1 := strconv.ParseFloat(parts[0], 64)
	m, err2 := strconv.ParseFloat(parts[1], 64)
	s, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	t := h*3600 + m*60 + s
	if neg {
		t = -t
	}
	return t, true
}
