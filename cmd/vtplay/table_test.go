package main

import (
	"strings"
	"testing"
	"time"

	"vtplay/internal/playback"
	"vtplay/internal/render"
)

func TestPropertyLabel(t *testing.T) {
	cases := map[string]string{
		"frames":          "Frames",
		"render_size":     "Render Size",
		"terminal_bounds": "Terminal Bounds",
	}
	for in, want := range cases {
		if got := propertyLabel(in); got != want {
			t.Errorf("propertyLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable("", []string{"A", "B"}, [][]string{{"only"}}, nil, false)
	if !strings.Contains(out, "only") {
		t.Fatalf("missing cell in %q", out)
	}
	if renderTable("", nil, nil, nil, false) != "" {
		t.Fatal("expected empty output without headers")
	}
}

func TestRenderSummary(t *testing.T) {
	out := renderSummary(playback.Summary{
		SessionID: "abc",
		Frames:    12345,
		Partial:   true,
		Size:      render.Size{Width: 120, Height: 33},
		Elapsed:   10 * time.Second,
		Bytes:     3 * 1000 * 1000,
		Decoders:  2,
		Position:  "00:08:00",
		Duration:  "01:30:00",
	}, false)

	for _, want := range []string{"12,345", "partial", "120x33", "1234.50", "3.0 MB", "00:08:00 / 01:30:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
