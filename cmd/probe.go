package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/framecut/framecut/internal/media"
)

var probeJSON bool

var probeCmd = &cobra.Command{
	Use:   "probe <file>",
	Short: "Print the video metadata framecut sees for a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := media.Probe(cmd.Context(), cfg.FFprobePath, args[0])
		if err != nil {
			return err
		}

		if probeJSON {
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "  Path:      %s\n", info.Path)
		fmt.Fprintf(out, "  Size:      %dx%d\n", info.Width, info.Height)
		fmt.Fprintf(out, "  Duration:  %.3fs\n", info.Duration)
		fmt.Fprintf(out, "  Codec:     %s\n", info.Codec)
		return nil
	},
}

func init() {
	probeCmd.Flags().BoolVar(&probeJSON, "json", false, "machine-readable JSON output")
	rootCmd.AddCommand(probeCmd)
}
