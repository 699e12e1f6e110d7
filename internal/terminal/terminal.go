// Package terminal discovers the cell budget of the controlling terminal and
// holds the escape sequences used to manage the screen during playback.
package terminal

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"vtplay/internal/render"
)

const (
	ClearScreen    = "\x1b[2J"
	CursorHome     = "\x1b[H"
	ResetStyle     = "\x1b[0m"
	HideCursor     = "\x1b[?25l"
	ShowCursor     = "\x1b[?25h"
	EnterAltScreen = "\x1b[?1049h"
	ExitAltScreen  = "\x1b[?1049l"
	DisableWrap    = "\x1b[?7l"
	EnableWrap     = "\x1b[?7h"
)

// IsTerminal reports whether fd refers to a terminal.
func IsTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// SizeFunc reports the terminal size in cells.
type SizeFunc func(fd int) (width, height int, err error)

// Detector resolves the playable cell budget.
type Detector struct {
	// Override, when non-zero, bypasses detection entirely.
	Override render.Size
	Fallback render.Size
	// Reserved rows are kept free for the status line.
	Reserved int

	size  SizeFunc
	isTTY func(fd uintptr) bool
}

// NewDetector returns a detector backed by x/term.
func NewDetector(override, fallback render.Size, reserved int) *Detector {
	return &Detector{
		Override: override,
		Fallback: fallback,
		Reserved: reserved,
		size:     term.GetSize,
		isTTY:    IsTerminal,
	}
}

// Bounds returns the cell budget for fd: the override when set, otherwise
// the terminal size (or the fallback when fd is not a terminal) minus the
// reserved rows. Both dimensions are at least 1.
func (d *Detector) Bounds(fd uintptr) render.Size {
	if d.Override.Width > 0 && d.Override.Height > 0 {
		return d.Override
	}
	out := d.Fallback
	if d.isTTY != nil && d.size != nil && d.isTTY(fd) {
		if w, h, err := d.size(int(fd)); err == nil && w > 0 && h > 0 {
			out = render.Size{Width: w, Height: h}
		}
	}
	out.Height -= d.Reserved
	out.Width = max(out.Width, 1)
	out.Height = max(out.Height, 1)
	return out
}

// WriterBounds is Bounds for the descriptor behind w. Writers that are not
// files never query the terminal.
func (d *Detector) WriterBounds(w io.Writer) render.Size {
	if file, ok := w.(*os.File); ok {
		return d.Bounds(file.Fd())
	}
	probe := *d
	probe.isTTY = nil
	return probe.Bounds(0)
}
