package render

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"vtplay/internal/handshake"
)

// ErrSourceReplaced is returned by a byte source when the stream underneath it
// was swapped for a new one. The parser drops any partially read pixel and
// frame, adopts the new source size and keeps scanning.
var ErrSourceReplaced = errors.New("render: source replaced")

// Sizer is implemented by sources whose output size may change when they are
// replaced.
type Sizer interface {
	Size() Size
}

type channelState uint8

const (
	readBlue channelState = iota
	readGreen
	readRed
	readAlpha
)

// Frame is one completed grid of cells. Data is owned by the parser and is
// only valid until the next call to Scan.
type Frame struct {
	Index   int
	Size    Size
	Data    []byte
	Partial bool
}

// Option customizes a Parser.
type Option func(*Parser)

// WithSourceActive makes the parser wait on s after every completed pixel.
func WithSourceActive(s *handshake.Signal) Option {
	return func(p *Parser) {
		if s != nil {
			p.active = s
		}
	}
}

// WithParserIdle makes the parser clear s while it processes a byte and set
// it once that byte's effects are applied.
func WithParserIdle(s *handshake.Signal) Option {
	return func(p *Parser) {
		if s != nil {
			p.idle = s
		}
	}
}

// Parser assembles BGRA quads into escape-coded frames. It is a forward-only
// iterator: once Scan returns false the parser is spent, and replaying a
// stream requires a new Parser over a new source.
type Parser struct {
	src    io.ByteReader
	size   Size
	active *handshake.Signal
	idle   *handshake.Signal

	state   channelState
	b, g, r uint8
	x, y    int
	touched bool

	buf     []byte
	index   int
	frame   Frame
	pending bool
	done    bool
	err     error
}

// NewParser returns a parser reading from r. Readers that do not implement
// io.ByteReader are buffered.
func NewParser(r io.Reader, size Size, opts ...Option) (*Parser, error) {
	if r == nil {
		return nil, errors.New("render: nil source")
	}
	if size.Width <= 0 || size.Height <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDimensions, size)
	}
	src, ok := r.(io.ByteReader)
	if !ok {
		src = bufio.NewReaderSize(r, 64*1024)
	}
	p := &Parser{
		src:    src,
		size:   size,
		active: handshake.NewSignal(true),
		idle:   handshake.NewSignal(true),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.buf = make([]byte, 0, FrameCapacity(size))
	return p, nil
}

// Scan advances to the next completed frame. It returns false once the
// source is exhausted and any final partial frame has been delivered.
func (p *Parser) Scan() bool {
	if p.done {
		return false
	}
	if p.pending {
		p.pending = false
		p.buf = p.buf[:0]
		p.releasePixel()
	}
	for {
		c, err := p.src.ReadByte()
		if err != nil {
			if errors.Is(err, ErrSourceReplaced) {
				p.resync()
				p.releasePixel()
				continue
			}
			return p.finish(err)
		}

		p.idle.Clear()
		p.touched = true
		switch p.state {
		case readBlue:
			p.b = c
			p.state = readGreen
		case readGreen:
			p.g = c
			p.state = readRed
		case readRed:
			p.r = c
			p.state = readAlpha
		case readAlpha:
			p.state = readBlue
			if p.appendPixel(c) {
				p.pending = true
				return true
			}
			p.releasePixel()
			continue
		}
		p.idle.Set()
	}
}

// Frame returns the frame produced by the last successful Scan.
func (p *Parser) Frame() Frame {
	return p.frame
}

// Err returns the read error that ended the stream, or nil for io.EOF. It is
// informational: a broken pipe and a clean end are handled identically.
func (p *Parser) Err() error {
	return p.err
}

// Size returns the grid size currently being assembled.
func (p *Parser) Size() Size {
	return p.size
}

// appendPixel composites the buffered channels with alpha a and appends the
// cell. It reports whether the frame is complete.
func (p *Parser) appendPixel(a uint8) bool {
	alpha := normalizeAlpha(a)
	p.buf = AppendCell(p.buf,
		compositeScaled(p.r, alpha),
		compositeScaled(p.g, alpha),
		compositeScaled(p.b, alpha))
	p.x++
	if p.x == p.size.Width {
		p.x = 0
		p.y++
		p.buf = append(p.buf, RowTerminator...)
	}
	if p.y < p.size.Height {
		return false
	}
	p.y = 0
	p.touched = false
	p.emit(false)
	return true
}

func (p *Parser) emit(partial bool) {
	p.index++
	p.frame = Frame{Index: p.index, Size: p.size, Data: p.buf, Partial: partial}
}

// releasePixel marks the parser idle and blocks until the source is active.
func (p *Parser) releasePixel() {
	p.idle.Set()
	p.active.Wait()
}

// resync discards the unfinished pixel and frame after a source swap.
func (p *Parser) resync() {
	p.state = readBlue
	p.x, p.y = 0, 0
	p.touched = false
	if s, ok := p.src.(Sizer); ok {
		if next := s.Size(); next.Width > 0 && next.Height > 0 && next != p.size {
			p.size = next
			if need := FrameCapacity(next); cap(p.buf) < need {
				p.buf = make([]byte, 0, need)
			}
		}
	}
	p.buf = p.buf[:0]
}

func (p *Parser) finish(err error) bool {
	p.done = true
	p.idle.Set()
	if !errors.Is(err, io.EOF) {
		p.err = err
	}
	if !p.touched {
		return false
	}
	p.emit(true)
	return true
}
