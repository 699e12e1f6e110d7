package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"vtplay/internal/config"
	"vtplay/internal/logging"
	"vtplay/internal/media/ffprobe"
	"vtplay/internal/playback"
	"vtplay/internal/render"
	"vtplay/internal/terminal"
)

// seekStep is how far SIGUSR1 and SIGUSR2 move the playback position.
const seekStep = 10

type playOptions struct {
	start       int
	width       int
	height      int
	noStatus    bool
	noAltScreen bool
	paced       bool
	quiet       bool
}

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var opts playOptions

	cmd := &cobra.Command{
		Use:   "play <file>",
		Short: "Play a video file in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if (opts.width > 0) != (opts.height > 0) {
				return errors.New("--width and --height must be set together")
			}
			if opts.start < 0 {
				return fmt.Errorf("--start must not be negative, got %d", opts.start)
			}
			path, err := resolveInput(args[0])
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			return runPlay(cmd, cfg, logger, path, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.start, "start", "s", 0, "Start position in seconds")
	cmd.Flags().IntVar(&opts.width, "width", 0, "Override the terminal width in cells")
	cmd.Flags().IntVar(&opts.height, "height", 0, "Override the terminal height in cells")
	cmd.Flags().BoolVar(&opts.noStatus, "no-status", false, "Hide the status line")
	cmd.Flags().BoolVar(&opts.noAltScreen, "no-alt-screen", false, "Draw on the main screen instead of the alternate screen")
	cmd.Flags().BoolVar(&opts.paced, "paced", false, "Pace frames from the probed frame rate instead of letting ffmpeg run in realtime")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print the playback summary")
	return cmd
}

func resolveInput(arg string) (string, error) {
	path, err := config.ExpandPath(arg)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("inspect input %q: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("input %q is a directory", path)
	}
	return path, nil
}

func newDetector(cfg *config.Config, width, height int) *terminal.Detector {
	override := render.Size{Width: cfg.Terminal.Width, Height: cfg.Terminal.Height}
	if width > 0 && height > 0 {
		override = render.Size{Width: width, Height: height}
	}
	fallback := render.Size{Width: cfg.Terminal.FallbackWidth, Height: cfg.Terminal.FallbackHeight}
	return terminal.NewDetector(override, fallback, cfg.Terminal.ReservedRows)
}

func runPlay(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, path string, opts playOptions) error {
	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	info, err := ffprobe.Probe(runCtx, cfg.Player.FFprobeBinary, path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	detector := newDetector(cfg, opts.width, opts.height)
	statusLine := cfg.Player.StatusLine && !opts.noStatus
	if !statusLine {
		detector.Reserved = 0
	}

	session, err := playback.NewSession(info, playback.Options{
		Path:         path,
		FFmpegBinary: cfg.Player.FFmpegBinary,
		Correction:   cfg.Player.CorrectionFactor,
		Bounds:       detector.WriterBounds(out),
		StartSeconds: opts.start,
		Realtime:     cfg.Player.Realtime && !opts.paced,
		FrameDelay:   cfg.FrameDelay(),
		StatusLine:   statusLine,
		AltScreen:    cfg.Player.AltScreen && !opts.noAltScreen,
	}, out, logger)
	if err != nil {
		return err
	}

	signals := make(chan os.Signal, 4)
	signal.Notify(signals, unix.SIGWINCH, unix.SIGUSR1, unix.SIGUSR2)
	defer signal.Stop(signals)
	go handlePlaybackSignals(runCtx, session, detector, out, signals, logger)

	summary, runErr := session.Run(runCtx)
	if !opts.quiet {
		fmt.Fprintln(cmd.ErrOrStderr(), renderSummary(summary, shouldColorize(cmd.ErrOrStderr())))
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logging.ErrorWithContext(logger, "playback failed", "playback_failed",
			logging.String(logging.FieldSessionID, summary.SessionID),
			logging.Error(runErr),
			logging.String(logging.FieldErrorHint, "run with --log-level debug to see decoder output"),
		)
		return fmt.Errorf("playback: %w", runErr)
	}
	return runErr
}

// handlePlaybackSignals serializes resize and seek requests until ctx ends.
func handlePlaybackSignals(ctx context.Context, session *playback.Session, detector *terminal.Detector, out io.Writer, signals <-chan os.Signal, logger *slog.Logger) {
	logger = logging.NewComponentLogger(logger, "cli")
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-signals:
			var err error
			switch sig {
			case unix.SIGWINCH:
				err = session.Resize(ctx, detector.WriterBounds(out))
			case unix.SIGUSR1:
				err = session.SeekBy(ctx, -seekStep)
			case unix.SIGUSR2:
				err = session.SeekBy(ctx, seekStep)
			}
			if err != nil && !ignorableSignalError(err) {
				logging.WarnWithContext(logger, "playback signal failed", "signal_failed",
					logging.String("signal", sig.String()),
					logging.Error(err),
					logging.String(logging.FieldImpact, "playback continues with the current decoder"),
				)
			}
		}
	}
}

// ignorableSignalError reports errors caused by the session ending while a
// request was in flight.
func ignorableSignalError(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, playback.ErrNotRunning) ||
		errors.Is(err, playback.ErrFeedClosed)
}
