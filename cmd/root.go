package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/framecut/framecut/internal/config"
	"github.com/framecut/framecut/internal/logging"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

// logger is the process-wide logger, configured from cfg.LogLevel.
var logger zerolog.Logger

var (
	flagFFmpeg   string
	flagFFprobe  string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "framecut",
	Short: "Crop and trim video clips from the terminal",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load and merge config files.
		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		project, err := config.LoadProject()
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		cfg = config.Merge(global, project)

		// Flags win over both config files.
		if flagFFmpeg != "" {
			cfg.FFmpegPath = flagFFmpeg
		}
		if flagFFprobe != "" {
			cfg.FFprobePath = flagFFprobe
		}
		if flagLogLevel != "" {
			cfg.LogLevel = flagLogLevel
		}

		logger = logging.Console(cfg.LogLevel)
		return nil
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// interactiveLogger routes logs to a file while the alternate screen owns
// the terminal. Falls back to a silent logger when the file cannot open.
func interactiveLogger() (zerolog.Logger, io.Closer) {
	f, err := logging.OpenLogFile()
	if err != nil {
		return logging.Setup(cfg.LogLevel, io.Discard), nil
	}
	return logging.Setup(cfg.LogLevel, f), f
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagFFmpeg, "ffmpeg", "", "path to the ffmpeg binary (default from config or PATH)")
	rootCmd.PersistentFlags().StringVar(&flagFFprobe, "ffprobe", "", "path to the ffprobe binary (default from config or PATH)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: trace, debug, info, warn, error")
}
