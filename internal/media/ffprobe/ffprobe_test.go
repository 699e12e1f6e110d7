package ffprobe

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

const sampleOutput = `[STREAM]
width=1920
height=1080
avg_frame_rate=30000/1001
[/STREAM]
[FORMAT]
duration=0:01:02.502000
[/FORMAT]
`

func TestParseInfo(t *testing.T) {
	info, err := ParseInfo(strings.NewReader(sampleOutput))
	if err != nil {
		t.Fatalf("ParseInfo: %v", err)
	}
	if info.Width != 1920 || info.Height != 1080 {
		t.Fatalf("unexpected dimensions %dx%d", info.Width, info.Height)
	}
	if info.Duration != "00:01:02" {
		t.Fatalf("unexpected duration %q", info.Duration)
	}
	if info.FrameRate == nil || *info.FrameRate != (FrameRate{Num: 30000, Den: 1001}) {
		t.Fatalf("unexpected frame rate %v", info.FrameRate)
	}
	if got := info.FrameRate.FrameDuration(); got != 33366666*time.Nanosecond {
		t.Fatalf("unexpected frame duration %v", got)
	}
}

func TestParseInfoUnknownValues(t *testing.T) {
	tests := []struct {
		name string
		rate string
	}{
		{name: "zero numerator", rate: "0/0"},
		{name: "zero denominator", rate: "25/0"},
		{name: "garbage", rate: "abc"},
		{name: "negative", rate: "-25/1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := "width=640\nheight=360\navg_frame_rate=" + tc.rate + "\nduration=N/A\n"
			info, err := ParseInfo(strings.NewReader(out))
			if err != nil {
				t.Fatalf("ParseInfo: %v", err)
			}
			if info.FrameRate != nil {
				t.Fatalf("expected unknown frame rate, got %v", info.FrameRate)
			}
			if info.Duration != UnknownDuration {
				t.Fatalf("expected unknown duration, got %q", info.Duration)
			}
		})
	}
}

func TestParseInfoMissingFields(t *testing.T) {
	info, err := ParseInfo(strings.NewReader("[STREAM]\n[/STREAM]\n"))
	if err != nil {
		t.Fatalf("ParseInfo: %v", err)
	}
	if info.Width != 0 || info.Height != 0 || info.Duration != UnknownDuration || info.FrameRate != nil {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestFormatDurationPadsHours(t *testing.T) {
	if got := formatDuration("12:00:00.000000"); got != "12:00:00" {
		t.Fatalf("got %q", got)
	}
	if got := formatDuration("N/A"); got != UnknownDuration {
		t.Fatalf("got %q", got)
	}
}

func TestProbeRejectsEmptyPath(t *testing.T) {
	if _, err := Probe(context.Background(), "", "  "); !errors.Is(err, ErrEmptyPath) {
		t.Fatalf("expected ErrEmptyPath, got %v", err)
	}
}
