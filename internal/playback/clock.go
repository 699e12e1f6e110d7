package playback

import (
	"time"

	"vtplay/internal/media/ffprobe"
)

const (
	// AverageWindow is the sampling period of the windowed FPS average.
	AverageWindow = 500 * time.Millisecond
	// DefaultFrameDelay is used when the source frame rate is unknown.
	DefaultFrameDelay = 40 * time.Millisecond
)

// Metrics is the per-frame instrumentation shown on the status line.
type Metrics struct {
	Frame      int
	InstantFPS float64
	AverageFPS float64
}

// Clock derives instantaneous and windowed FPS from frame timestamps. The
// windowed average is recomputed only when more than AverageWindow has
// elapsed since the last checkpoint and is held constant in between.
type Clock struct {
	window          time.Duration
	checkpoint      time.Time
	checkpointFrame int
	prev            time.Time
	average         float64
}

// NewClock starts a clock at start with frame index 0.
func NewClock(start time.Time) *Clock {
	return &Clock{window: AverageWindow, checkpoint: start, prev: start}
}

// Observe records that frame was emitted at now.
func (c *Clock) Observe(frame int, now time.Time) Metrics {
	m := Metrics{Frame: frame}
	if delta := now.Sub(c.prev); delta > 0 {
		m.InstantFPS = float64(time.Second) / float64(delta)
	}
	if elapsed := now.Sub(c.checkpoint); elapsed > c.window {
		c.average = float64(time.Second) * float64(frame-c.checkpointFrame) / float64(elapsed)
		c.checkpoint = now
		c.checkpointFrame = frame
	}
	m.AverageFPS = c.average
	c.prev = now
	return m
}

// FrameDelay returns the inter-frame delay for rate, or fallback when the
// rate is unknown.
func FrameDelay(rate *ffprobe.FrameRate, fallback time.Duration) time.Duration {
	if rate == nil || rate.Num <= 0 || rate.Den <= 0 {
		if fallback <= 0 {
			return DefaultFrameDelay
		}
		return fallback
	}
	return rate.FrameDuration()
}

// Pacer schedules frames at a fixed delay. It is used when the decoder does
// not pace its own output.
type Pacer struct {
	delay time.Duration
	next  time.Time
}

// NewPacer returns a pacer for the given inter-frame delay.
func NewPacer(delay time.Duration) *Pacer {
	return &Pacer{delay: delay}
}

// Next returns how long to wait before presenting a frame at now. A pacer
// that falls more than one frame behind restarts its schedule instead of
// bursting to catch up.
func (p *Pacer) Next(now time.Time) time.Duration {
	if p.delay <= 0 {
		return 0
	}
	if p.next.IsZero() || now.Sub(p.next) > p.delay {
		p.next = now.Add(p.delay)
		return 0
	}
	wait := p.next.Sub(now)
	p.next = p.next.Add(p.delay)
	return max(wait, 0)
}
