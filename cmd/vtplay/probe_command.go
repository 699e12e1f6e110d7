package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vtplay/internal/media/ffprobe"
	"vtplay/internal/render"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var width, height int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "probe <file>",
		Short: "Show stream info and the render size for the current terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := resolveInput(args[0])
			if err != nil {
				return err
			}
			info, err := ffprobe.Probe(cmd.Context(), cfg.Player.FFprobeBinary, path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			bounds := newDetector(cfg, width, height).WriterBounds(out)
			size, err := render.Resolve(render.Size{Width: info.Width, Height: info.Height}, bounds, cfg.Player.CorrectionFactor)
			if err != nil {
				return fmt.Errorf("resolve render size: %w", err)
			}
			report := newProbeReport(path, info, bounds, size, cfg.FrameDelay())
			if jsonOutput {
				return writeJSON(cmd, report)
			}
			fmt.Fprintln(out, renderProbeReport(report, shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "Override the terminal width in cells")
	cmd.Flags().IntVar(&height, "height", 0, "Override the terminal height in cells")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	return cmd
}
