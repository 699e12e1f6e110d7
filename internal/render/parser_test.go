package render

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"vtplay/internal/handshake"
)

func solidFrame(size Size, b, g, r, a byte) []byte {
	out := make([]byte, 0, size.FrameBytes())
	for i := 0; i < size.Pixels(); i++ {
		out = append(out, b, g, r, a)
	}
	return out
}

func collect(t *testing.T, p *Parser) []Frame {
	t.Helper()
	var frames []Frame
	for p.Scan() {
		f := p.Frame()
		f.Data = append([]byte(nil), f.Data...)
		frames = append(frames, f)
	}
	return frames
}

func newTestParser(t *testing.T, r io.Reader, size Size, opts ...Option) *Parser {
	t.Helper()
	p, err := NewParser(r, size, opts...)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	return p
}

func TestParserSingleExactFrame(t *testing.T) {
	size := Size{Width: 4, Height: 3}
	p := newTestParser(t, bytes.NewReader(solidFrame(size, 10, 20, 30, 255)), size)

	frames := collect(t, p)
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	f := frames[0]
	if f.Index != 1 || f.Partial {
		t.Fatalf("unexpected frame header: index=%d partial=%v", f.Index, f.Partial)
	}
	data := string(f.Data)
	if got := strings.Count(data, RowTerminator); got != size.Height {
		t.Fatalf("expected %d row terminators, got %d", size.Height, got)
	}
	if got := strings.Count(data, cellPrefix); got != size.Pixels() {
		t.Fatalf("expected %d cells, got %d", size.Pixels(), got)
	}
	if !strings.HasPrefix(data, "\x1b[48;2;30;20;10m ") {
		t.Fatalf("expected red/green/blue order in escape, got %q", data[:24])
	}
	if p.Err() != nil {
		t.Fatalf("unexpected error: %v", p.Err())
	}
}

func TestParserCompositesAgainstBlack(t *testing.T) {
	size := Size{Width: 1, Height: 1}
	p := newTestParser(t, bytes.NewReader([]byte{200, 150, 100, 0}), size)
	frames := collect(t, p)
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	want := "\x1b[48;2;0;0;0m " + RowTerminator
	if string(frames[0].Data) != want {
		t.Fatalf("got %q want %q", frames[0].Data, want)
	}
}

func TestParserIndicesAreContiguousForAnyLength(t *testing.T) {
	size := Size{Width: 3, Height: 2}
	full := bytes.Repeat(solidFrame(size, 1, 2, 3, 128), 4)
	for n := 0; n <= len(full); n++ {
		p := newTestParser(t, bytes.NewReader(full[:n]), size)
		frames := collect(t, p)

		complete := n / size.FrameBytes()
		want := complete
		if n%size.FrameBytes() != 0 {
			want++
		}
		if len(frames) != want {
			t.Fatalf("length %d: expected %d frames, got %d", n, want, len(frames))
		}
		for i, f := range frames {
			if f.Index != i+1 {
				t.Fatalf("length %d: frame %d has index %d", n, i, f.Index)
			}
			last := i == len(frames)-1
			if f.Partial != (last && n%size.FrameBytes() != 0) {
				t.Fatalf("length %d: frame %d partial=%v", n, f.Index, f.Partial)
			}
		}
	}
}

func TestParserPartialFrameKeepsCompletedPixels(t *testing.T) {
	size := Size{Width: 2, Height: 2}
	stream := append(solidFrame(size, 0, 0, 255, 255), 9, 9, 9, 255, 1, 2)
	frames := collect(t, newTestParser(t, bytes.NewReader(stream), size))
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	last := frames[1]
	if !last.Partial || last.Index != 2 {
		t.Fatalf("unexpected final frame: %+v", last)
	}
	if got := strings.Count(string(last.Data), cellPrefix); got != 1 {
		t.Fatalf("expected one completed pixel in partial frame, got %d", got)
	}
}

type failingReader struct {
	data []byte
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestParserBrokenPipeEndsLikeEOF(t *testing.T) {
	size := Size{Width: 2, Height: 1}
	broken := errors.New("broken pipe")
	p := newTestParser(t, &failingReader{data: []byte{1, 2, 3, 4, 5}, err: broken}, size)
	frames := collect(t, p)
	if len(frames) != 1 || !frames[0].Partial {
		t.Fatalf("expected a single partial frame, got %+v", frames)
	}
	if !errors.Is(p.Err(), broken) {
		t.Fatalf("expected broken pipe error to be retained, got %v", p.Err())
	}
}

func TestParserIsNotRestartable(t *testing.T) {
	size := Size{Width: 1, Height: 1}
	p := newTestParser(t, bytes.NewReader([]byte{1, 2, 3, 255}), size)
	if !p.Scan() {
		t.Fatal("expected a frame")
	}
	if p.Scan() || p.Scan() {
		t.Fatal("expected exhausted parser")
	}
}

func TestParserOneSecondFeed(t *testing.T) {
	size, err := Resolve(Size{1920, 1080}, Size{120, 40}, DefaultCorrection)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// 30000/1001 fps for one second.
	frameCount := 30000 / 1001
	stream := bytes.Repeat(solidFrame(size, 5, 6, 7, 255), frameCount)
	stream = append(stream, solidFrame(size, 5, 6, 7, 255)[:size.FrameBytes()/3]...)

	frames := collect(t, newTestParser(t, bytes.NewReader(stream), size))
	if n := len(frames); n < 29 || n > 31 {
		t.Fatalf("expected about 30 frames, got %d", n)
	}
}

func TestParserWaitsForSourceActiveAtPixelBoundary(t *testing.T) {
	size := Size{Width: 2, Height: 1}
	active := handshake.NewSignal(false)
	idle := handshake.NewSignal(false)
	pr, pw := io.Pipe()
	p := newTestParser(t, pr, size, WithSourceActive(active), WithParserIdle(idle))

	scanned := make(chan bool, 1)
	go func() { scanned <- p.Scan() }()
	go func() {
		pw.Write(solidFrame(size, 1, 1, 1, 255))
		pw.Close()
	}()

	// The first pixel completes, the parser reports idle and waits.
	deadline := time.After(time.Second)
	for !idle.IsSet() {
		select {
		case <-deadline:
			t.Fatal("parser never went idle")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	select {
	case <-scanned:
		t.Fatal("parser should block while the source is inactive")
	case <-time.After(30 * time.Millisecond):
	}

	active.Set()
	select {
	case ok := <-scanned:
		if !ok {
			t.Fatal("expected a frame after activation")
		}
	case <-time.After(time.Second):
		t.Fatal("parser did not resume")
	}
	if idle.IsSet() {
		t.Fatal("parser must stay busy until the consumer asks for the next frame")
	}
	if p.Scan() {
		t.Fatal("expected end of stream")
	}
	if !idle.IsSet() {
		t.Fatal("parser should be idle after the stream ends")
	}
}

// swapSource yields the bytes of each segment in turn and reports
// ErrSourceReplaced between segments.
type swapSource struct {
	mu       sync.Mutex
	segments [][]byte
	sizes    []Size
	current  int
	notified bool
}

func (s *swapSource) ReadByte() (byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if s.current >= len(s.segments) {
			return 0, io.EOF
		}
		if !s.notified {
			s.notified = true
			if s.current > 0 {
				return 0, ErrSourceReplaced
			}
		}
		seg := s.segments[s.current]
		if len(seg) == 0 {
			s.current++
			s.notified = false
			continue
		}
		s.segments[s.current] = seg[1:]
		return seg[0], nil
	}
}

func (s *swapSource) Read(p []byte) (int, error) {
	b, err := s.ReadByte()
	if err != nil {
		return 0, err
	}
	p[0] = b
	return 1, nil
}

func (s *swapSource) Size() Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current < len(s.sizes) {
		return s.sizes[s.current]
	}
	return s.sizes[len(s.sizes)-1]
}

func TestParserResyncsAfterSourceReplaced(t *testing.T) {
	first := Size{Width: 2, Height: 2}
	second := Size{Width: 3, Height: 1}

	// One full frame, then half a frame plus half a pixel that must be dropped.
	seg1 := append(solidFrame(first, 1, 1, 1, 255), solidFrame(first, 2, 2, 2, 255)[:10]...)
	seg2 := solidFrame(second, 3, 3, 3, 255)
	src := &swapSource{segments: [][]byte{seg1, seg2}, sizes: []Size{first, second}}

	frames := collect(t, newTestParser(t, src, first))
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[0].Index != 1 || frames[0].Size != first {
		t.Fatalf("unexpected first frame %+v", frames[0])
	}
	got := frames[1]
	if got.Index != 2 || got.Partial || got.Size != second {
		t.Fatalf("unexpected second frame index=%d partial=%v size=%s", got.Index, got.Partial, got.Size)
	}
	if n := strings.Count(string(got.Data), "\x1b[48;2;3;3;3m "); n != second.Pixels() {
		t.Fatalf("expected %d cells from the new source, got %d in %q", second.Pixels(), n, got.Data)
	}
}

func TestNewParserValidates(t *testing.T) {
	if _, err := NewParser(nil, Size{1, 1}); err == nil {
		t.Fatal("expected error for nil reader")
	}
	if _, err := NewParser(bytes.NewReader(nil), Size{0, 1}); !errors.Is(err, ErrInvalidDimensions) {
		t.Fatalf("expected ErrInvalidDimensions, got %v", err)
	}
}
