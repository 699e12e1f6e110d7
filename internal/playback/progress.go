package playback

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"vtplay/internal/logging"
)

// PositionUnavailable is reported until the decoder prints its first time.
const PositionUnavailable = "N/A"

const (
	infoTag   = "[info]"
	timeField = "time="
)

// Progress holds the most recent playback position reported by the decoder.
// Writes are last-writer-wins; reads never block.
type Progress struct {
	pos      atomic.Pointer[string]
	duration time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	segment string
	sampler *logging.ProgressSampler
}

// NewProgress returns a tracker. duration, when known, enables sampled
// progress logging as a percentage of the file.
func NewProgress(duration time.Duration, logger *slog.Logger) *Progress {
	return &Progress{
		duration: duration,
		logger:   logging.NewComponentLogger(logger, "progress"),
		sampler:  logging.NewProgressSampler(10),
	}
}

// Current returns the last reported position as HH:MM:SS, or
// PositionUnavailable.
func (p *Progress) Current() string {
	if v := p.pos.Load(); v != nil {
		return *v
	}
	return PositionUnavailable
}

// Seconds returns the last reported position in whole seconds.
func (p *Progress) Seconds() (int, bool) {
	d, ok := ParseClock(p.Current())
	if !ok {
		return 0, false
	}
	return int(d / time.Second), true
}

// Set overwrites the current position.
func (p *Progress) Set(pos string) {
	p.pos.Store(&pos)
}

// Track scans one decoder's diagnostic stream until it ends. Time fields
// update the position; other tagged lines are forwarded to the logger.
// segment names the decoder so progress logging restarts after a seek.
func (p *Progress) Track(r io.Reader, segment string) error {
	scanner := bufio.NewScanner(r)
	scanner.Split(scanDiagnosticLines)
	for scanner.Scan() {
		p.handleLine(scanner.Text(), segment)
	}
	if err := scanner.Err(); err != nil {
		// Keep the pipe drained so the decoder never blocks on stderr.
		_, _ = io.Copy(io.Discard, r)
		return err
	}
	return nil
}

// Begin marks segment as the decoder whose times are authoritative. Lines
// from other segments still reach the logger but no longer move the
// position, and the position reads as unavailable until segment reports.
func (p *Progress) Begin(segment string) {
	p.mu.Lock()
	p.segment = segment
	p.pos.Store(nil)
	p.mu.Unlock()
}

func (p *Progress) handleLine(line, segment string) {
	if line == "" {
		return
	}
	if pos, ok := ParseTime(line); ok {
		p.record(pos, segment)
		return
	}
	level, msg := diagnosticLevel(line)
	p.logger.Log(context.Background(), level, "decoder output", logging.String("line", msg))
}

func (p *Progress) record(pos, segment string) {
	p.mu.Lock()
	if p.segment != "" && segment != p.segment {
		p.mu.Unlock()
		return
	}
	p.pos.Store(&pos)
	percent, known := p.percent(pos)
	emit := known && p.sampler.ShouldLog(percent, segment)
	p.mu.Unlock()

	if emit {
		p.logger.Info("playback progress",
			logging.String("segment", segment),
			logging.String("position", pos),
			logging.Float64("percent", math.Round(percent*10)/10),
		)
	}
}

func (p *Progress) percent(pos string) (float64, bool) {
	if p.duration <= 0 {
		return 0, false
	}
	d, ok := ParseClock(pos)
	if !ok {
		return 0, false
	}
	return float64(d) / float64(p.duration) * 100, true
}

// ParseTime extracts the whole-second position from an info-tagged decoder
// line such as "[info] frame=10 time=00:00:05.23 bitrate=...". The value
// runs to the next space or the end of the line.
func ParseTime(line string) (string, bool) {
	if !strings.HasPrefix(line, infoTag) {
		return "", false
	}
	idx := strings.Index(line, timeField)
	if idx < 0 {
		return "", false
	}
	value := line[idx+len(timeField):]
	if end := strings.IndexByte(value, ' '); end >= 0 {
		value = value[:end]
	}
	whole, _, _ := strings.Cut(value, ".")
	if _, ok := ParseClock(whole); !ok {
		return "", false
	}
	return whole, true
}

// ParseClock parses HH:MM:SS (hours may exceed two digits, a leading minus
// is rejected).
func ParseClock(value string) (time.Duration, bool) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, false
	}
	var total int
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || part[0] == '+' || part[0] == '-' {
			return 0, false
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second, true
}

func diagnosticLevel(line string) (slog.Level, string) {
	if !strings.HasPrefix(line, "[") {
		return slog.LevelDebug, line
	}
	end := strings.IndexByte(line, ']')
	if end < 0 {
		return slog.LevelDebug, line
	}
	msg := strings.TrimSpace(line[end+1:])
	switch line[1:end] {
	case "warning":
		return slog.LevelWarn, msg
	case "error", "fatal", "panic":
		return slog.LevelError, msg
	default:
		return slog.LevelDebug, msg
	}
}

// scanDiagnosticLines splits on '\n' or '\r'; ffmpeg rewrites its progress
// line in place with carriage returns.
func scanDiagnosticLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
