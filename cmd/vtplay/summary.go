package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"vtplay/internal/media/ffprobe"
	"vtplay/internal/playback"
	"vtplay/internal/render"
)

func renderSummary(s playback.Summary, colorize bool) string {
	final := "complete"
	if s.Partial {
		final = "partial"
	}
	duration := s.Duration
	if duration == "" {
		duration = ffprobe.UnknownDuration
	}
	position := s.Position
	if position == "" {
		position = playback.PositionUnavailable
	}
	return renderProperties("Playback summary", []property{
		{"session", s.SessionID},
		{"frames", humanize.Comma(int64(s.Frames))},
		{"final_frame", final},
		{"render_size", s.Size.String()},
		{"elapsed", s.Elapsed.Round(time.Millisecond).String()},
		{"average_fps", fmt.Sprintf("%.2f", s.AverageFPS())},
		{"written", humanize.Bytes(uint64(max(s.Bytes, 0)))},
		{"decoders", strconv.Itoa(s.Decoders)},
		{"position", position + " / " + duration},
	}, colorize)
}

type probeReport struct {
	Path       string  `json:"path"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Duration   string  `json:"duration"`
	FrameRate  string  `json:"frame_rate"`
	FPS        float64 `json:"fps"`
	FrameDelay string  `json:"frame_delay"`
	Bounds     string  `json:"terminal_bounds"`
	RenderSize string  `json:"render_size"`
	FrameBytes int     `json:"frame_bytes"`
}

func newProbeReport(path string, info ffprobe.VideoInfo, bounds, size render.Size, fallbackDelay time.Duration) probeReport {
	report := probeReport{
		Path:       path,
		Width:      info.Width,
		Height:     info.Height,
		Duration:   info.Duration,
		FrameRate:  ffprobe.UnknownDuration,
		FrameDelay: playback.FrameDelay(info.FrameRate, fallbackDelay).String(),
		Bounds:     bounds.String(),
		RenderSize: size.String(),
		FrameBytes: size.FrameBytes(),
	}
	if info.FrameRate != nil {
		report.FrameRate = info.FrameRate.String()
		report.FPS = info.FrameRate.FPS()
	}
	return report
}

func renderProbeReport(r probeReport, colorize bool) string {
	fps := ffprobe.UnknownDuration
	if r.FPS > 0 {
		fps = fmt.Sprintf("%.3f", r.FPS)
	}
	return renderProperties(r.Path, []property{
		{"width", strconv.Itoa(r.Width)},
		{"height", strconv.Itoa(r.Height)},
		{"duration", r.Duration},
		{"frame_rate", r.FrameRate},
		{"fps", fps},
		{"frame_delay", r.FrameDelay},
		{"terminal_bounds", r.Bounds},
		{"render_size", r.RenderSize},
		{"raw_frame_size", humanize.Bytes(uint64(r.FrameBytes))},
	}, colorize)
}
