package ffprobe

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// UnknownDuration is displayed when the container reports no duration.
const UnknownDuration = "N/A"

// ErrEmptyPath is returned when Probe is called without a file path.
var ErrEmptyPath = errors.New("ffprobe: empty path")

// FrameRate is a frame-rate ratio. Both parts are positive.
type FrameRate struct {
	Num int
	Den int
}

// FPS returns frames per second.
func (r FrameRate) FPS() float64 {
	return float64(r.Num) / float64(r.Den)
}

// FrameDuration returns the wall-clock time of a single frame.
func (r FrameRate) FrameDuration() time.Duration {
	return time.Duration(int64(time.Second) * int64(r.Den) / int64(r.Num))
}

func (r FrameRate) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// VideoInfo describes the first video stream of a file. It is immutable once
// probed.
type VideoInfo struct {
	Width    int
	Height   int
	Duration string
	// FrameRate is nil when ffprobe could not report a usable rate.
	FrameRate *FrameRate
}

// Args returns the ffprobe arguments used to inspect path.
func Args(path string) []string {
	return []string{
		"-v", "warning",
		"-select_streams", "v:0",
		"-sexagesimal",
		"-show_entries", "stream=width,height,avg_frame_rate:format=duration",
		"--", path,
	}
}

// Probe executes ffprobe against path and parses the reported stream info.
func Probe(ctx context.Context, binary string, path string) (VideoInfo, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return VideoInfo{}, ErrEmptyPath
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, Args(path)...)
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return VideoInfo{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	info, err := ParseInfo(bytes.NewReader(output))
	if err != nil {
		return VideoInfo{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return info, nil
}

// ParseInfo reads ffprobe's default writer output. Section markers and
// unrecognized keys are ignored; unparsable values leave the field at its
// zero value.
func ParseInfo(r io.Reader) (VideoInfo, error) {
	info := VideoInfo{Duration: UnknownDuration}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "width":
			info.Width = parseInt(value)
		case "height":
			info.Height = parseInt(value)
		case "duration":
			info.Duration = formatDuration(value)
		case "avg_frame_rate":
			info.FrameRate = parseFrameRate(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return VideoInfo{}, err
	}
	return info, nil
}

// formatDuration converts a sexagesimal duration such as "0:01:02.500000" to
// a zero-padded "00:01:02".
func formatDuration(value string) string {
	whole, _, ok := strings.Cut(value, ".")
	if !ok || whole == "" {
		return UnknownDuration
	}
	if len(whole) < 8 {
		whole = strings.Repeat("0", 8-len(whole)) + whole
	}
	return whole
}

// parseFrameRate returns nil when either part is the literal "0" or the
// ratio is malformed.
func parseFrameRate(value string) *FrameRate {
	numText, denText, ok := strings.Cut(value, "/")
	if !ok || numText == "0" || denText == "0" {
		return nil
	}
	num, err := strconv.Atoi(numText)
	if err != nil || num <= 0 {
		return nil
	}
	den, err := strconv.Atoi(denText)
	if err != nil || den <= 0 {
		return nil
	}
	return &FrameRate{Num: num, Den: den}
}

func parseInt(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}
