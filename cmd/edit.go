package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/framecut/framecut/internal/media"
	"github.com/framecut/framecut/internal/state"
	"github.com/framecut/framecut/internal/tui"
)

var editOut string

var editCmd = &cobra.Command{
	Use:   "edit <file>",
	Short: "Open a clip in the interactive crop/trim editor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		if !term.IsTerminal(os.Stdout.Fd()) {
			return fmt.Errorf("edit needs an interactive terminal; use 'framecut export' for scripted use")
		}

		info, err := media.Probe(cmd.Context(), cfg.FFprobePath, path)
		if err != nil {
			return err
		}

		out := editOut
		if out == "" {
			out = defaultOutputPath(cfg.OutputDir, path)
		}

		log, closer := interactiveLogger()
		if closer != nil {
			defer closer.Close()
		}

		// Watch the input so external re-encodes reload the editor. Watcher
		// errors are not fatal; editing continues without live reload.
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		changes := make(chan struct{}, 1)
		go func() {
			defer close(changes)
			err := media.Watch(ctx, path, func() {
				select {
				case changes <- struct{}{}:
				default:
				}
			})
			if err != nil && ctx.Err() == nil {
				log.Warn().Err(err).Msg("file watcher stopped")
			}
		}()

		// Resume the previous edit of this file if one was saved.
		store, err := state.NewStore()
		if err != nil {
			log.Warn().Err(err).Msg("edit state persistence disabled")
			store = nil
		}

		probe := func() (media.Info, error) {
			return media.Probe(ctx, cfg.FFprobePath, path)
		}
		return tui.Run(cfg, log, info, out, changes, probe, store)
	},
}

// defaultOutputPath derives "<dir>/<name>_cut.<ext>" from the input path.
func defaultOutputPath(dir, in string) string {
	base := filepath.Base(in)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext) + "_cut" + ext
	if dir == "" || dir == "." {
		dir = filepath.Dir(in)
	}
	return filepath.Join(dir, name)
}

func init() {
	editCmd.Flags().StringVarP(&editOut, "out", "o", "", "output file (default: <input>_cut.<ext> next to the input)")
	rootCmd.AddCommand(editCmd)
}
