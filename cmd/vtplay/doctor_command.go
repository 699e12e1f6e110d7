package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vtplay/internal/preflight"
	"vtplay/internal/terminal"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools, log directory and terminal size",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			lines := renderSectionHeader("Dependencies", colorize)
			results := preflight.RunAll(cmd.Context(), cfg)
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
					if r.Optional {
						kind = statusWarn
					}
				}
				lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Terminal", colorize)...)
			tty := terminal.IsTerminal(os.Stdout.Fd())
			ttyKind := statusOK
			if !tty {
				ttyKind = statusWarn
			}
			lines = append(lines, renderStatusLine("Stdout TTY", ttyKind, yesNo(tty), colorize))
			bounds := newDetector(cfg, 0, 0).Bounds(os.Stdout.Fd())
			lines = append(lines, renderStatusLine("Cell budget", statusInfo, bounds.String(), colorize))
			lines = append(lines, renderStatusLine("Config", statusInfo, ctx.configPath, colorize))

			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			if preflight.Failed(results) {
				return errors.New("doctor: required checks failed")
			}
			return nil
		},
	}
}
