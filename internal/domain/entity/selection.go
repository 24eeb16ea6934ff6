package entity

import (
	"fmt"
	"strconv"
	"strings"

	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	"github.com/shopspring/decimal"
)

// SelectionKind tags the variant a Selection holds
type SelectionKind string

// Selection kinds
const (
	SelectGreen  SelectionKind = "Green"
	SelectRed    SelectionKind = "Red"
	SelectViolet SelectionKind = "Violet"
	SelectDigit  SelectionKind = "Digit"
	SelectSize   SelectionKind = "Size"
)

// Selection is what a wager bets on: a color, a single digit or a size
type Selection struct {
	Kind  SelectionKind
	Digit int
	Size  Size
}

// Convenience constructors
var (
	GreenSelection  = Selection{Kind: SelectGreen}
	RedSelection    = Selection{Kind: SelectRed}
	VioletSelection = Selection{Kind: SelectViolet}
	BigSelection    = Selection{Kind: SelectSize, Size: SizeBig}
	SmallSelection  = Selection{Kind: SelectSize, Size: SizeSmall}
)

// DigitSelection bets on a single number
func DigitSelection(n int) Selection {
	return Selection{Kind: SelectDigit, Digit: n}
}

// ParseSelection accepts Green, Red, Violet, Big, Small or a single digit
func ParseSelection(s string) (Selection, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "green":
		return GreenSelection, nil
	case "red":
		return RedSelection, nil
	case "violet":
		return VioletSelection, nil
	case "big":
		return BigSelection, nil
	case "small":
		return SmallSelection, nil
	}
	if len(s) == 1 {
		if n, err := strconv.Atoi(s); err == nil {
			return DigitSelection(n), nil
		}
	}
	return Selection{}, fmt.Errorf("%w: %q", errs.ErrInvalidSelection, s)
}

// String renders the selection the way ParseSelection reads it
func (s Selection) String() string {
	switch s.Kind {
	case SelectDigit:
		return strconv.Itoa(s.Digit)
	case SelectSize:
		return string(s.Size)
	default:
		return string(s.Kind)
	}
}

// IsDigit reports whether the selection is a single number
func (s Selection) IsDigit() bool {
	return s.Kind == SelectDigit
}

// Accent is the display color used for notifications about this selection
func (s Selection) Accent() string {
	switch s.Kind {
	case SelectDigit:
		return string(ColorOf(s.Digit).Primary())
	case SelectSize:
		if s.Size == SizeBig {
			return "Orange"
		}
		return "Blue"
	default:
		return string(s.Kind)
	}
}

// Wins reports whether the selection wins against an outcome
func (s Selection) Wins(o RoundOutcome) bool {
	switch s.Kind {
	case SelectGreen:
		return o.Color == ColorGreen || o.Color == ColorGreenViolet
	case SelectRed:
		return o.Color == ColorRed || o.Color == ColorRedViolet
	case SelectViolet:
		return o.Color.IsViolet()
	case SelectDigit:
		return s.Digit == o.Number
	case SelectSize:
		return s.Size == o.Size
	default:
		return false
	}
}

// PayoutTable holds the winning multiples per kind of win
type PayoutTable struct {
	Standard decimal.Decimal
	Digit    decimal.Decimal
	// Partial applies when a primary color wins on its violet-tinted number
	Partial decimal.Decimal
}

// DefaultPayoutTable pays 1.9x, 9x on an exact digit and 1.5x on a violet-tinted primary win
func DefaultPayoutTable() PayoutTable {
	return PayoutTable{
		Standard: decimal.RequireFromString("1.9"),
		Digit:    decimal.NewFromInt(9),
		Partial:  decimal.RequireFromString("1.5"),
	}
}

// Multiple returns the payout multiple for the selection against an outcome, zero on a loss
func (s Selection) Multiple(o RoundOutcome, table PayoutTable) decimal.Decimal {
	if !s.Wins(o) {
		return decimal.Zero
	}
	switch {
	case s.Kind == SelectDigit:
		return table.Digit
	case (s.Kind == SelectGreen || s.Kind == SelectRed) && o.Color.IsViolet():
		return table.Partial
	default:
		return table.Standard
	}
}
