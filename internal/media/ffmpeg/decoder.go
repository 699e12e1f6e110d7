package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"vtplay/internal/render"
)

// PixelFormat is the raw pixel layout requested from ffmpeg.
const PixelFormat = "bgra"

// Options describes one decoder invocation.
type Options struct {
	Binary       string
	Path         string
	Size         render.Size
	StartSeconds int
	// Realtime makes ffmpeg read input at its native frame rate (-re).
	Realtime bool
}

// Args returns the ffmpeg arguments for opts.
func Args(opts Options) []string {
	args := make([]string, 0, 24)
	if opts.Realtime {
		args = append(args, "-re")
	}
	args = append(args,
		"-nostdin",
		"-v", "level+info",
		"-an", "-sn",
		"-ss", strconv.Itoa(max(opts.StartSeconds, 0)),
		"-i", opts.Path,
		"-s", fmt.Sprintf("%dx%d", opts.Size.Width, opts.Size.Height),
		"-pix_fmt", PixelFormat,
		"-f", "rawvideo",
		"-",
	)
	return args
}

// Decoder is a running ffmpeg process.
type Decoder struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser
	size   render.Size

	closeOnce sync.Once
	closeErr  error
}

// Start launches ffmpeg for opts. The caller must Close the decoder.
func Start(ctx context.Context, opts Options) (*Decoder, error) {
	binary := strings.TrimSpace(opts.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	if strings.TrimSpace(opts.Path) == "" {
		return nil, errors.New("ffmpeg start: empty path")
	}
	if opts.Size.Width <= 0 || opts.Size.Height <= 0 {
		return nil, fmt.Errorf("ffmpeg start: %w: %s", render.ErrInvalidDimensions, opts.Size)
	}

	cmd := exec.CommandContext(ctx, binary, Args(opts)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stderr: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start: %w", err)
	}
	return &Decoder{
		cmd:    cmd,
		stdout: stdout,
		stderr: stderr,
		size:   opts.Size,
	}, nil
}

// Read reads raw pixel bytes from the decoder's stdout.
func (d *Decoder) Read(p []byte) (int, error) {
	return d.stdout.Read(p)
}

// Stderr returns the diagnostic line stream.
func (d *Decoder) Stderr() io.Reader {
	return d.stderr
}

// Size returns the output resolution the decoder was started with.
func (d *Decoder) Size() render.Size {
	return d.size
}

// Close kills the process and waits for it to exit. Pending reads on stdout
// and stderr observe end-of-stream. Close is safe to call more than once.
func (d *Decoder) Close() error {
	d.closeOnce.Do(func() {
		if d.cmd.Process != nil {
			_ = d.cmd.Process.Kill()
		}
		err := d.cmd.Wait()
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			d.closeErr = fmt.Errorf("ffmpeg wait: %w", err)
		}
	})
	return d.closeErr
}
