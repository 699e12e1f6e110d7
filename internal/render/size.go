package render

import (
	"errors"
	"fmt"
	"math"
)

// DefaultCorrection compensates for terminal cells being roughly twice as
// tall as they are wide.
const DefaultCorrection = 0.5

var (
	// ErrInvalidBounds reports a non-positive terminal cell budget.
	ErrInvalidBounds = errors.New("render: invalid bounds")
	// ErrInvalidDimensions reports a non-positive source resolution.
	ErrInvalidDimensions = errors.New("render: invalid dimensions")
	// ErrInvalidCorrection reports a non-positive or non-finite correction factor.
	ErrInvalidCorrection = errors.New("render: invalid correction factor")
)

// Size is a width/height pair in pixels (source) or cells (output).
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Pixels returns the number of pixels in one frame of this size.
func (s Size) Pixels() int {
	return s.Width * s.Height
}

// FrameBytes returns the raw byte length of one BGRA frame of this size.
func (s Size) FrameBytes() int {
	return s.Pixels() * 4
}

// Resolve fits src into bounds. The source height is first scaled by
// correction to obtain a row-equivalent height. A source that already fits is
// returned at its own width. Otherwise the dimension that overflows relative
// to the bounds aspect ratio is clamped and the other scaled proportionally.
//
// Rounding is half away from zero (math.Round) everywhere; results are
// clamped to at least 1 and never exceed bounds.
func Resolve(src, bounds Size, correction float64) (Size, error) {
	if bounds.Width <= 0 || bounds.Height <= 0 {
		return Size{}, fmt.Errorf("%w: %s", ErrInvalidBounds, bounds)
	}
	if src.Width <= 0 || src.Height <= 0 {
		return Size{}, fmt.Errorf("%w: %s", ErrInvalidDimensions, src)
	}
	if correction <= 0 || math.IsNaN(correction) || math.IsInf(correction, 0) {
		return Size{}, fmt.Errorf("%w: %v", ErrInvalidCorrection, correction)
	}

	w := float64(src.Width)
	rh := float64(src.Height) * correction
	bw := float64(bounds.Width)
	bh := float64(bounds.Height)

	var out Size
	switch {
	case w <= bw && rh <= bh:
		out = Size{Width: src.Width, Height: int(math.Round(rh))}
	case w/rh > bw/bh:
		out = Size{Width: bounds.Width, Height: int(math.Round(rh * bw / w))}
	default:
		out = Size{Width: int(math.Round(w * bh / rh)), Height: bounds.Height}
	}
	return clampSize(out, bounds), nil
}

func clampSize(s, bounds Size) Size {
	s.Width = min(max(s.Width, 1), bounds.Width)
	s.Height = min(max(s.Height, 1), bounds.Height)
	return s
}
