package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/framecut/framecut/internal/editor"
	"github.com/framecut/framecut/internal/export"
	"github.com/framecut/framecut/internal/geometry"
	"github.com/framecut/framecut/internal/media"
	"github.com/framecut/framecut/internal/player"
)

var (
	exportCrop  string
	exportStart string
	exportEnd   string
	exportOut   string
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Crop and trim a clip without the interactive editor",
	Long: `Export runs the same validation and encoding pipeline as the interactive
editor, driven by flags instead of gestures. Crop defaults to the full frame
and the time range defaults to the whole clip.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		info, err := media.Probe(cmd.Context(), cfg.FFprobePath, path)
		if err != nil {
			return err
		}

		clock := player.NewClock(info.Duration)
		sess := editor.NewSession(cfg.Editor(), nil, clock)
		defer sess.Close()
		if !sess.LoadMetadata(float64(info.Width), float64(info.Height), info.Duration) {
			return fmt.Errorf("unusable media metadata for %s", path)
		}

		if exportCrop != "" {
			rect, err := parseCropSpec(exportCrop)
			if err != nil {
				return err
			}
			if err := sess.SetCrop(rect); err != nil {
				return err
			}
		}

		start, end := 0.0, info.Duration
		if exportStart != "" {
			if start, err = parseTime(exportStart); err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
		}
		if exportEnd != "" {
			if end, err = parseTime(exportEnd); err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}
		}
		if err := sess.SetSelection(start, end); err != nil {
			return err
		}

		out := exportOut
		if out == "" {
			out = defaultOutputPath(cfg.OutputDir, path)
		}
		req, err := sess.BuildExport(path, out)
		if err != nil {
			return err
		}

		runner := &export.Runner{FFmpegPath: cfg.FFmpegPath, Logger: logger}
		job, err := runner.Start(cmd.Context(), req)
		if err != nil {
			return err
		}
		logger.Info().Str("job", job.ID).Str("out", out).Msg("export started")

		for ev := range job.Events {
			switch ev.Kind {
			case export.EventProgress:
				logger.Debug().Str("job", job.ID).Msg(ev.Line)
			case export.EventDone:
				if ev.Err != nil {
					return ev.Err
				}
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
		return nil
	},
}

// parseCropSpec parses "x:y:w:h" in media pixels, matching the filter
// argument order ffmpeg uses.
func parseCropSpec(s string) (geometry.Rect, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return geometry.Rect{}, fmt.Errorf("invalid crop %q, want x:y:w:h", s)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geometry.Rect{}, fmt.Errorf("invalid crop %q: %w", s, err)
		}
		vals[i] = v
	}
	return geometry.Rect{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

// parseTime parses "SS", "MM:SS" or "HH:MM:SS", each with optional
// fractional seconds.
func parseTime(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) == 0 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	total := 0.0
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		total = total*60 + v
	}
	return total, nil
}

func init() {
	exportCmd.Flags().StringVar(&exportCrop, "crop", "", "crop rectangle as x:y:w:h in source pixels (default: full frame)")
	exportCmd.Flags().StringVar(&exportStart, "start", "", "selection start time (e.g. 12.5 or 1:02:03.5)")
	exportCmd.Flags().StringVar(&exportEnd, "end", "", "selection end time")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default: <input>_cut.<ext> next to the input)")
	rootCmd.AddCommand(exportCmd)
}
