package playback

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"vtplay/internal/logging"
)

func TestParseTime(t *testing.T) {
	cases := []struct {
		line string
		want string
		ok   bool
	}{
		{"[info] frame=10 time=00:00:05.23 bitrate=1k", "00:00:05", true},
		{"[info] frame=10 fps=25 time=01:02:03.00", "01:02:03", true},
		{"[info] time=00:00:07", "00:00:07", true},
		{"[info] frame=10 bitrate=1k", "", false},
		{"[info] frame=10 time=N/A bitrate=N/A", "", false},
		{"[warning] time=00:00:05.00", "", false},
		{"frame=10 time=00:00:05.00", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseTime(tc.line)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseTime(%q) = %q, %v; want %q, %v", tc.line, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseClock(t *testing.T) {
	if d, ok := ParseClock("01:02:03"); !ok || d != time.Hour+2*time.Minute+3*time.Second {
		t.Fatalf("unexpected parse: %v %v", d, ok)
	}
	if d, ok := ParseClock("100:00:00"); !ok || d != 100*time.Hour {
		t.Fatalf("hours beyond two digits should parse: %v %v", d, ok)
	}
	for _, bad := range []string{"", "N/A", "00:05", "-1:00:00", "+1:00:00", "-00:00:00", "00:-0:00", "aa:bb:cc"} {
		if _, ok := ParseClock(bad); ok {
			t.Errorf("ParseClock(%q) should fail", bad)
		}
	}
}

func TestProgressTrackUpdatesPosition(t *testing.T) {
	p := NewProgress(10*time.Second, logging.NewNop())
	if got := p.Current(); got != PositionUnavailable {
		t.Fatalf("expected %q before any update, got %q", PositionUnavailable, got)
	}

	stream := "[info] frame=10 time=00:00:05.23 bitrate=1k\r" +
		"[info] frame=12 bitrate=1k\r" +
		"[info] frame=14 time=N/A bitrate=N/A\n"
	if err := p.Track(strings.NewReader(stream), "1"); err != nil {
		t.Fatalf("Track: %v", err)
	}
	if got := p.Current(); got != "00:00:05" {
		t.Fatalf("expected 00:00:05, got %q", got)
	}
	if secs, ok := p.Seconds(); !ok || secs != 5 {
		t.Fatalf("expected 5 seconds, got %d %v", secs, ok)
	}
}

func TestProgressIgnoresNegativeTime(t *testing.T) {
	p := NewProgress(0, logging.NewNop())
	if err := p.Track(strings.NewReader("[info] frame=1 time=-00:00:00.03 bitrate=N/A\n"), "1"); err != nil {
		t.Fatalf("Track: %v", err)
	}
	if got := p.Current(); got != PositionUnavailable {
		t.Fatalf("negative time moved the position to %q", got)
	}
}

func TestProgressDrainsAfterOversizedLine(t *testing.T) {
	p := NewProgress(0, logging.NewNop())
	r, w := io.Pipe()
	tracked := make(chan error, 1)
	go func() {
		tracked <- p.Track(r, "1")
	}()

	written := make(chan error, 1)
	go func() {
		long := bytes.Repeat([]byte("x"), bufio.MaxScanTokenSize+1)
		if _, err := w.Write(long); err != nil {
			written <- err
			return
		}
		_, err := w.Write([]byte("\n[info] time=00:00:01.00\n"))
		written <- err
		_ = w.Close()
	}()

	select {
	case err := <-written:
		if err != nil {
			t.Fatalf("write: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("writer blocked: Track stopped draining the stream")
	}
	if err := <-tracked; !errors.Is(err, bufio.ErrTooLong) {
		t.Fatalf("expected bufio.ErrTooLong, got %v", err)
	}
}

func TestProgressIgnoresStaleSegments(t *testing.T) {
	p := NewProgress(0, logging.NewNop())
	p.Set("00:00:09")
	p.Begin("2")
	if got := p.Current(); got != PositionUnavailable {
		t.Fatalf("Begin should reset the position, got %q", got)
	}

	_ = p.Track(strings.NewReader("[info] time=00:00:10.00\n"), "1")
	if got := p.Current(); got != PositionUnavailable {
		t.Fatalf("stale segment moved the position to %q", got)
	}
	_ = p.Track(strings.NewReader("[info] time=00:00:01.00\n"), "2")
	if got := p.Current(); got != "00:00:01" {
		t.Fatalf("expected 00:00:01, got %q", got)
	}
}

func TestProgressForwardsDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := NewProgress(0, logger)

	stream := "[warning] past duration too large\n[error] broken frame\n[debug] detail\nuntagged\n"
	if err := p.Track(strings.NewReader(stream), "1"); err != nil {
		t.Fatalf("Track: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`level=WARN msg="decoder output" component=progress line="past duration too large"`,
		`level=ERROR msg="decoder output" component=progress line="broken frame"`,
		`level=DEBUG msg="decoder output" component=progress line=detail`,
		`level=DEBUG msg="decoder output" component=progress line=untagged`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in log output:\n%s", want, out)
		}
	}
}

func TestProgressLogsSampledPercent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	p := NewProgress(100*time.Second, logger)

	var stream strings.Builder
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&stream, "[info] time=%s.00\r", FormatClock(time.Duration(i)*time.Second))
	}
	if err := p.Track(strings.NewReader(stream.String()), "1"); err != nil {
		t.Fatalf("Track: %v", err)
	}
	if got := strings.Count(buf.String(), `msg="playback progress"`); got < 2 || got > 11 {
		t.Fatalf("expected sampled progress logging, got %d entries:\n%s", got, buf.String())
	}
}
