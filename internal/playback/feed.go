package playback

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"vtplay/internal/handshake"
	"vtplay/internal/render"
)

const feedBufferSize = 64 * 1024

// ErrFeedClosed is returned by Replace after the feed has been closed.
var ErrFeedClosed = errors.New("playback: feed closed")

// Source is a raw pixel stream with a fixed output size.
type Source interface {
	io.ReadCloser
	Size() render.Size
}

// Feed presents the current decoder to the parser as a single byte stream
// and lets the session replace that decoder mid-playback. When a swap
// happens the parser's next read returns render.ErrSourceReplaced.
type Feed struct {
	swapMu sync.Mutex

	mu     sync.Mutex
	src    Source
	reader *bufio.Reader
	gen    uint64
	seen   uint64
	closed bool

	active *handshake.Signal
	idle   *handshake.Signal
}

// NewFeed wraps src. idle is the parser's idle signal, observed before any
// swap; a nil idle is treated as always idle.
func NewFeed(src Source, idle *handshake.Signal) *Feed {
	if idle == nil {
		idle = handshake.NewSignal(true)
	}
	return &Feed{
		src:    src,
		reader: bufio.NewReaderSize(src, feedBufferSize),
		active: handshake.NewSignal(true),
		idle:   idle,
	}
}

// SourceActive returns the signal the parser waits on between pixels.
func (f *Feed) SourceActive() *handshake.Signal {
	return f.active
}

// ReadByte implements io.ByteReader.
func (f *Feed) ReadByte() (byte, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return 0, io.EOF
	}
	if f.seen != f.gen {
		f.seen = f.gen
		f.mu.Unlock()
		return 0, render.ErrSourceReplaced
	}
	reader, gen := f.reader, f.gen
	f.mu.Unlock()

	b, err := reader.ReadByte()

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, io.EOF
	}
	if f.gen != gen {
		// The byte (or error) belongs to the decoder that was just replaced.
		f.seen = f.gen
		return 0, render.ErrSourceReplaced
	}
	return b, err
}

// Read implements io.Reader one byte at a time so every byte passes the
// replacement check.
func (f *Feed) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b, err := f.ReadByte()
	if err != nil {
		return 0, err
	}
	p[0] = b
	return 1, nil
}

// Size returns the output size of the current source.
func (f *Feed) Size() render.Size {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.src.Size()
}

// Current returns the source currently feeding the parser.
func (f *Feed) Current() Source {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.src
}

// Replace swaps in next. It clears sourceActive, waits for the parser to go
// idle, installs next, closes the previous source and sets sourceActive
// again. The previous source is closed only after next is installed so a read
// failing on the old pipe is reported as a swap rather than end-of-stream.
// On error the caller still owns next. A failure to close the previous
// source does not undo the swap.
func (f *Feed) Replace(ctx context.Context, next Source) error {
	if next == nil {
		return errors.New("playback: nil source")
	}
	f.swapMu.Lock()
	defer f.swapMu.Unlock()

	f.active.Clear()
	defer f.active.Set()

	if err := f.idle.WaitContext(ctx); err != nil {
		return fmt.Errorf("wait for render loop: %w", err)
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrFeedClosed
	}
	prev := f.src
	f.src = next
	f.reader = bufio.NewReaderSize(next, feedBufferSize)
	f.gen++
	f.mu.Unlock()

	_ = prev.Close()
	return nil
}

// Close ends the feed. The parser observes end-of-stream on its next read and
// any parser blocked on sourceActive is released.
func (f *Feed) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	src := f.src
	f.mu.Unlock()

	err := src.Close()
	f.active.Set()
	return err
}
