package entity

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	"github.com/shopspring/decimal"
)

// MaxDecimalPlaces defines the maximum number of decimal places allowed for money amounts
const MaxDecimalPlaces = 2

// ValidateAndConvertAmount parses a non-negative decimal string into cents.
// "10" and "10." become 1000, "10.5" becomes 1050, more than two places is rejected.
func ValidateAndConvertAmount(amount string) (int64, error) {
	amount = strings.TrimSpace(amount)
	if len(amount) == 0 {
		return 0, fmt.Errorf("%w: empty value", errs.ErrInvalidAmount)
	}

	if strings.HasPrefix(amount, "-") {
		return 0, errs.ErrNegativeAmount
	}

	whole, frac, hasPoint := strings.Cut(amount, ".")
	if hasPoint && strings.Contains(frac, ".") {
		return 0, fmt.Errorf("%w: invalid number format", errs.ErrInvalidAmount)
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > MaxDecimalPlaces {
		return 0, fmt.Errorf("%w: maximum %d decimal places allowed", errs.ErrInvalidAmount, MaxDecimalPlaces)
	}
	if !isDigits(whole) || (frac != "" && !isDigits(frac)) {
		return 0, fmt.Errorf("%w: %q is not a number", errs.ErrInvalidAmount, amount)
	}
	frac += strings.Repeat("0", MaxDecimalPlaces-len(frac))

	value, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return 0, errs.ErrAmountOverflow
		}
		return 0, fmt.Errorf("%w: %s", errs.ErrInvalidAmount, err.Error())
	}

	return value, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// AmountInCentsToString converts integer amount to a decimal string,
// 1015 becomes "10.15" and -1 becomes "-0.01"
func AmountInCentsToString(amountInCents int64) string {
	sign := ""
	abs := uint64(amountInCents)
	if amountInCents < 0 {
		sign = "-"
		abs = uint64(-(amountInCents + 1)) + 1
	}
	return fmt.Sprintf("%s%d.%02d", sign, abs/100, abs%100)
}

// EnsureTwoDecimalPlaces normalizes a money string to exactly two decimal places.
// Blank input is "0.00"; more than two decimals is rejected rather than rounded.
func EnsureTwoDecimalPlaces(amount string) (string, error) {
	if len(strings.TrimSpace(amount)) == 0 {
		return "0.00", nil
	}

	negative := strings.HasPrefix(strings.TrimSpace(amount), "-")
	cents, err := ValidateAndConvertAmount(strings.TrimPrefix(strings.TrimSpace(amount), "-"))
	if err != nil {
		return "", err
	}
	if negative {
		cents = -cents
	}
	return AmountInCentsToString(cents), nil
}

// AddCents adds two amounts and reports overflow instead of wrapping
func AddCents(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, errs.ErrAmountOverflow
	}
	return a + b, nil
}

// MulCents multiplies an amount by an integer factor and reports overflow
func MulCents(cents, factor int64) (int64, error) {
	if cents == 0 || factor == 0 {
		return 0, nil
	}
	result := cents * factor
	if result/factor != cents {
		return 0, errs.ErrAmountOverflow
	}
	return result, nil
}

// ApplyMultiple scales an amount by a decimal multiple, truncated to whole cents
func ApplyMultiple(cents int64, multiple decimal.Decimal) int64 {
	return decimal.NewFromInt(cents).Mul(multiple).Truncate(0).IntPart()
}

// CentsToDecimal converts minor units into a two place decimal
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -MaxDecimalPlaces)
}
