package playback

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"vtplay/internal/handshake"
	"vtplay/internal/logging"
	"vtplay/internal/media/ffmpeg"
	"vtplay/internal/media/ffprobe"
	"vtplay/internal/render"
	"vtplay/internal/terminal"
)

const outputBufferSize = 256 * 1024

// EndMarker is written after the last frame when the alternate screen is not
// in use.
const EndMarker = "END"

// ErrNotRunning is returned by Seek and Resize before Run has started the
// first decoder or after it has returned.
var ErrNotRunning = errors.New("playback: session not running")

// Decoder is a running frame source with a diagnostic line stream.
type Decoder interface {
	Source
	Stderr() io.Reader
}

// StartFunc launches a decoder for opts. Decoders are bound to ctx.
type StartFunc func(ctx context.Context, opts ffmpeg.Options) (Decoder, error)

// StartFFmpeg launches an ffmpeg process.
func StartFFmpeg(ctx context.Context, opts ffmpeg.Options) (Decoder, error) {
	dec, err := ffmpeg.Start(ctx, opts)
	if err != nil {
		return nil, err
	}
	return dec, nil
}

// Options configures a session.
type Options struct {
	Path         string
	FFmpegBinary string
	// Correction is the vertical aspect correction factor.
	Correction float64
	// Bounds is the cell budget for the frame area.
	Bounds       render.Size
	StartSeconds int
	// Realtime lets the decoder pace itself; otherwise frames are paced from
	// the probed frame rate.
	Realtime bool
	// FrameDelay is the pacing delay used when the frame rate is unknown.
	FrameDelay time.Duration
	StatusLine bool
	AltScreen  bool
}

// Summary describes a finished session.
type Summary struct {
	SessionID string
	Frames    int
	// Partial reports that the final frame was cut short.
	Partial  bool
	Size     render.Size
	Elapsed  time.Duration
	Bytes    int64
	Decoders int
	Position string
	Duration string
}

// AverageFPS returns frames per second over the whole session.
func (s Summary) AverageFPS() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Frames) / s.Elapsed.Seconds()
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithStarter replaces the decoder launcher.
func WithStarter(fn StartFunc) SessionOption {
	return func(s *Session) {
		if fn != nil {
			s.start = fn
		}
	}
}

// WithNow replaces the wall clock used for FPS and pacing.
func WithNow(now func() time.Time) SessionOption {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSessionID fixes the session identifier.
func WithSessionID(id string) SessionOption {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// Session plays one file to a terminal writer.
type Session struct {
	id     string
	info   ffprobe.VideoInfo
	opts   Options
	out    *bufio.Writer
	logger *slog.Logger
	start  StartFunc
	now    func() time.Time

	idle     *handshake.Signal
	progress *Progress

	mu       sync.Mutex
	feed     *Feed
	runCtx   context.Context
	size     render.Size
	offset   int
	segment  string
	decoders int
	closing  bool
	trackers sync.WaitGroup
}

// NewSession resolves the render size for info within opts.Bounds and
// prepares a session writing to out.
func NewSession(info ffprobe.VideoInfo, opts Options, out io.Writer, logger *slog.Logger, options ...SessionOption) (*Session, error) {
	if out == nil {
		return nil, errors.New("playback: nil output")
	}
	size, err := render.Resolve(render.Size{Width: info.Width, Height: info.Height}, opts.Bounds, opts.Correction)
	if err != nil {
		return nil, fmt.Errorf("resolve render size: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Session{
		id:     uuid.NewString(),
		info:   info,
		opts:   opts,
		out:    bufio.NewWriterSize(out, outputBufferSize),
		start:  StartFFmpeg,
		now:    time.Now,
		idle:   handshake.NewSignal(true),
		size:   size,
		offset: max(opts.StartSeconds, 0),
	}
	for _, option := range options {
		option(s)
	}
	logger = logger.With(logging.String(logging.FieldSessionID, s.id))
	s.logger = logging.NewComponentLogger(logger, "playback")

	var duration time.Duration
	if d, ok := ParseClock(info.Duration); ok {
		duration = d
	}
	s.progress = NewProgress(duration, logger)
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Size returns the current render size.
func (s *Session) Size() render.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Position returns the absolute playback position as HH:MM:SS, or
// PositionUnavailable before the current decoder has reported a time.
func (s *Session) Position() string {
	s.mu.Lock()
	offset := s.offset
	s.mu.Unlock()
	seconds, ok := s.progress.Seconds()
	if !ok {
		return PositionUnavailable
	}
	return FormatClock(time.Duration(offset+seconds) * time.Second)
}

// Run starts the decoder and renders frames until the stream ends or ctx is
// cancelled. Cancellation returns ctx.Err() alongside the summary.
func (s *Session) Run(ctx context.Context) (Summary, error) {
	ctx = logging.WithSessionID(ctx, s.id)
	summary := Summary{SessionID: s.id, Duration: s.info.Duration}

	s.mu.Lock()
	if s.feed != nil || s.closing {
		s.mu.Unlock()
		return summary, errors.New("playback: session already started")
	}
	size, offset := s.size, s.offset
	s.mu.Unlock()

	dec, err := s.startDecoder(ctx, offset, size)
	if err != nil {
		return summary, err
	}
	feed := NewFeed(dec, s.idle)
	parser, err := render.NewParser(feed, size,
		render.WithSourceActive(feed.SourceActive()),
		render.WithParserIdle(s.idle),
	)
	if err != nil {
		_ = dec.Close()
		return summary, err
	}

	s.mu.Lock()
	s.feed = feed
	s.runCtx = ctx
	segment := s.beginSegment(offset)
	s.mu.Unlock()
	s.track(dec, segment)

	stop := context.AfterFunc(ctx, func() { _ = feed.Close() })
	defer stop()

	s.logger.Info("playback started",
		logging.String(logging.FieldEventType, "playback_started"),
		logging.String("path", s.opts.Path),
		logging.String("size", size.String()),
		logging.Int("start_seconds", offset),
		logging.Bool("realtime", s.opts.Realtime),
	)

	written, writeErr := s.writeString(s.screenPrologue())
	summary.Bytes += written

	var pacer *Pacer
	if !s.opts.Realtime {
		pacer = NewPacer(FrameDelay(s.info.FrameRate, s.opts.FrameDelay))
	}
	started := s.now()
	clock := NewClock(started)
	drawn := size

	for writeErr == nil && parser.Scan() {
		frame := parser.Frame()
		if pacer != nil {
			if wait := pacer.Next(s.now()); wait > 0 {
				if err := sleepContext(ctx, wait); err != nil {
					break
				}
			}
		}
		metrics := clock.Observe(frame.Index, s.now())
		n, err := s.drawFrame(frame, metrics, frame.Size != drawn)
		drawn = frame.Size
		summary.Bytes += n
		summary.Frames = frame.Index
		summary.Partial = frame.Partial
		summary.Size = frame.Size
		writeErr = err
	}
	summary.Elapsed = s.now().Sub(started)

	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
	// The loop may stop between frames; a Replace blocked on the parser must
	// observe the closed feed instead.
	s.idle.Set()
	_ = feed.Close()
	s.trackers.Wait()

	n, err := s.writeString(s.screenEpilogue())
	summary.Bytes += n
	if writeErr == nil {
		writeErr = err
	}

	s.mu.Lock()
	summary.Decoders = s.decoders
	s.feed = nil
	s.mu.Unlock()
	summary.Position = s.Position()
	if summary.Size.Width == 0 {
		summary.Size = s.Size()
	}

	if perr := parser.Err(); perr != nil {
		s.logger.Debug("decoder stream ended with error", logging.Error(perr))
	}
	s.logger.Info("playback finished",
		logging.String(logging.FieldEventType, "playback_finished"),
		logging.Int("frames", summary.Frames),
		logging.Bool("partial", summary.Partial),
		logging.Duration("elapsed", summary.Elapsed),
		logging.Int("decoders", summary.Decoders),
	)

	if writeErr != nil {
		return summary, fmt.Errorf("write frame: %w", writeErr)
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// Seek restarts decoding at seconds from the start of the file, keeping the
// current render size.
func (s *Session) Seek(ctx context.Context, seconds int) error {
	return s.replace(ctx, max(seconds, 0), s.Size())
}

// Resize recomputes the render size for bounds and, when it changed, restarts
// decoding at the current position with the new size.
func (s *Session) Resize(ctx context.Context, bounds render.Size) error {
	size, err := render.Resolve(render.Size{Width: s.info.Width, Height: s.info.Height}, bounds, s.opts.Correction)
	if err != nil {
		return fmt.Errorf("resolve render size: %w", err)
	}
	if size == s.Size() {
		return nil
	}
	return s.replace(ctx, s.seekBase(), size)
}

// SeekBy moves playback delta seconds from the current position, keeping the
// current render size.
func (s *Session) SeekBy(ctx context.Context, delta int) error {
	return s.replace(ctx, max(s.seekBase()+delta, 0), s.Size())
}

// seekBase is the absolute position in whole seconds. A decoder that has not
// reported a time yet sits at its start offset.
func (s *Session) seekBase() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	base := s.offset
	if seconds, ok := s.progress.Seconds(); ok {
		base += seconds
	}
	return base
}

func (s *Session) replace(ctx context.Context, seconds int, size render.Size) error {
	s.mu.Lock()
	feed, runCtx := s.feed, s.runCtx
	if feed == nil || s.closing {
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.mu.Unlock()

	dec, err := s.startDecoder(runCtx, seconds, size)
	if err != nil {
		return err
	}

	s.mu.Lock()
	prevSegment, prevOffset := s.segment, s.offset
	segment := s.beginSegment(seconds)
	s.mu.Unlock()
	s.track(dec, segment)

	if err := feed.Replace(ctx, dec); err != nil {
		_ = dec.Close()
		s.mu.Lock()
		s.segment, s.offset = prevSegment, prevOffset
		s.progress.Begin(prevSegment)
		s.mu.Unlock()
		return fmt.Errorf("replace decoder: %w", err)
	}

	s.mu.Lock()
	s.size = size
	s.mu.Unlock()

	s.logger.Info("decoder replaced",
		logging.String(logging.FieldEventType, "decoder_replaced"),
		logging.String("segment", segment),
		logging.String("size", size.String()),
		logging.Int("start_seconds", seconds),
	)
	return nil
}

func (s *Session) startDecoder(ctx context.Context, seconds int, size render.Size) (Decoder, error) {
	dec, err := s.start(ctx, ffmpeg.Options{
		Binary:       s.opts.FFmpegBinary,
		Path:         s.opts.Path,
		Size:         size,
		StartSeconds: seconds,
		Realtime:     s.opts.Realtime,
	})
	if err != nil {
		return nil, fmt.Errorf("start decoder: %w", err)
	}
	s.mu.Lock()
	s.decoders++
	s.mu.Unlock()
	return dec, nil
}

// beginSegment makes the most recently started decoder the position
// authority. Callers hold s.mu.
func (s *Session) beginSegment(seconds int) string {
	s.segment = strconv.Itoa(s.decoders)
	s.offset = seconds
	s.progress.Begin(s.segment)
	return s.segment
}

// track drains dec's diagnostic stream in the background.
func (s *Session) track(dec Decoder, segment string) {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return
	}
	s.trackers.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.trackers.Done()
		if err := s.progress.Track(dec.Stderr(), segment); err != nil {
			s.logger.Debug("decoder diagnostics ended", logging.String("segment", segment), logging.Error(err))
		}
	}()
}

func (s *Session) drawFrame(frame render.Frame, metrics Metrics, resized bool) (int64, error) {
	var n int64
	if resized {
		c, _ := s.out.WriteString(terminal.ClearScreen)
		n += int64(c)
	}
	c, _ := s.out.WriteString(terminal.CursorHome)
	n += int64(c)
	c, _ = s.out.Write(frame.Data)
	n += int64(c)
	if s.opts.StatusLine {
		c, _ = s.out.WriteString(StatusLine(metrics, s.Position(), s.info.Duration, frame.Size.Width))
		n += int64(c)
	}
	return n, s.out.Flush()
}

func (s *Session) writeString(text string) (int64, error) {
	if text == "" {
		return 0, nil
	}
	n, _ := s.out.WriteString(text)
	return int64(n), s.out.Flush()
}

func (s *Session) screenPrologue() string {
	prologue := terminal.ClearScreen + terminal.CursorHome
	if s.opts.AltScreen {
		prologue = terminal.EnterAltScreen + terminal.HideCursor + prologue
	}
	return prologue
}

func (s *Session) screenEpilogue() string {
	if s.opts.AltScreen {
		return terminal.ResetStyle + terminal.ShowCursor + terminal.ExitAltScreen
	}
	return terminal.ResetStyle + "\n" + EndMarker + "\n"
}

// StatusLine formats the line drawn under each frame, padded with spaces to
// width cells so a shorter line overwrites a longer one.
func StatusLine(m Metrics, position, duration string, width int) string {
	if duration == "" {
		duration = ffprobe.UnknownDuration
	}
	line := fmt.Sprintf("Frame: %7d | FPS: %6.2f | 0.5s Avg. FPS: %6.2f | %s / %s",
		m.Frame, m.InstantFPS, m.AverageFPS, position, duration)
	return fmt.Sprintf("%-*s", width, line)
}

// FormatClock renders d as HH:MM:SS with whole seconds.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total/60%60, total%60)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
