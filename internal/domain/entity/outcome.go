package entity

import (
	"fmt"
	"time"

	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
)

// Size classifies an outcome number
type Size string

// Sizes
const (
	SizeBig   Size = "Big"
	SizeSmall Size = "Small"
)

// Color classifies an outcome number. The violet variants carry the primary
// color they are tinted with.
type Color string

// Colors
const (
	ColorGreen       Color = "Green"
	ColorRed         Color = "Red"
	ColorGreenViolet Color = "GreenViolet"
	ColorRedViolet   Color = "RedViolet"
)

// IsViolet reports whether the color is one of the violet variants
func (c Color) IsViolet() bool {
	return c == ColorGreenViolet || c == ColorRedViolet
}

// Primary returns the primary color a color counts as
func (c Color) Primary() Color {
	switch c {
	case ColorGreen, ColorGreenViolet:
		return ColorGreen
	default:
		return ColorRed
	}
}

// SizeOf derives the size of n: Big iff n >= 5
func SizeOf(n int) Size {
	if n >= 5 {
		return SizeBig
	}
	return SizeSmall
}

// ColorOf derives the color of n
func ColorOf(n int) Color {
	switch n {
	case 0:
		return ColorRedViolet
	case 5:
		return ColorGreenViolet
	case 1, 3, 7, 9:
		return ColorGreen
	default:
		return ColorRed
	}
}

// RoundOutcome is the immutable drawn result of one round
type RoundOutcome struct {
	RoundID string
	Mode    GameMode
	Number  int
	Size    Size
	Color   Color
	Forced  bool
	DrawnAt time.Time
}

// NewRoundOutcome builds an outcome, deriving size and color from the number
func NewRoundOutcome(roundID string, mode GameMode, number int, forced bool, drawnAt time.Time) (*RoundOutcome, error) {
	if number < 0 || number > 9 {
		return nil, fmt.Errorf("%w: outcome number %d out of range", errs.ErrInvalidRequest, number)
	}
	if roundID == "" {
		return nil, fmt.Errorf("%w: empty round id", errs.ErrInvalidRequest)
	}
	return &RoundOutcome{
		RoundID: roundID,
		Mode:    mode,
		Number:  number,
		Size:    SizeOf(number),
		Color:   ColorOf(number),
		Forced:  forced,
		DrawnAt: drawnAt,
	}, nil
}
