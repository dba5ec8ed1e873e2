package entity

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
)

// MaxDecimalPlaces defines the maximum number of decimal places allowed for money amounts
const MaxDecimalPlaces = 2

// ValidateAndConvertAmount parses a decimal string such as "25", "25.5" or "25.50"
// into cents. Negative values and more than two fractional digits are rejected.
func ValidateAndConvertAmount(amount string) (int64, error) {
	amount = strings.TrimSpace(amount)
	if len(amount) == 0 {
		return 0, fmt.Errorf("%w: empty value", errs.ErrInvalidAmount)
	}

	if strings.HasPrefix(amount, "-") {
		return 0, errs.ErrNegativeAmount
	}

	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("%w: invalid number format", errs.ErrInvalidAmount)
	}

	whole := parts[0]
	fraction := ""
	if len(parts) == 2 {
		fraction = parts[1]
	}
	if len(fraction) > MaxDecimalPlaces {
		return 0, fmt.Errorf("%w: maximum %d decimal places allowed", errs.ErrInvalidAmount, MaxDecimalPlaces)
	}
	if whole == "" && fraction == "" {
		return 0, fmt.Errorf("%w: no digits", errs.ErrInvalidAmount)
	}
	if !isDigits(whole) || !isDigits(fraction) {
		return 0, fmt.Errorf("%w: %q is not a decimal number", errs.ErrInvalidAmount, amount)
	}

	// Pad the fraction so "1.5" becomes 150 cents
	digits := whole + fraction + strings.Repeat("0", MaxDecimalPlaces-len(fraction))

	value, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errs.ErrAmountOverflow, err.Error())
	}

	return value, nil
}

// ValidatePositiveAmount parses amount like ValidateAndConvertAmount and also rejects zero
func ValidatePositiveAmount(amount string) (int64, error) {
	cents, err := ValidateAndConvertAmount(amount)
	if err != nil {
		return 0, err
	}
	if cents == 0 {
		return 0, fmt.Errorf("%w: amount must be greater than zero", errs.ErrInvalidAmount)
	}
	return cents, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// AmountInCentsToString converts integer amount to a decimal string
// For example:
// - 1015 becomes "10.15"
// - 1000 becomes "10.00"
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
// "10.1" becomes "10.10" and "" becomes "0.00"; more than two places is an error.
func EnsureTwoDecimalPlaces(amount string) (string, error) {
	amount = strings.TrimSpace(amount)
	if len(amount) == 0 {
		return "0.00", nil
	}

	parts := strings.Split(amount, ".")
	if len(parts) == 1 {
		return parts[0] + ".00", nil
	}
	if len(parts) > 2 {
		return "", fmt.Errorf("%w: invalid number format", errs.ErrInvalidAmount)
	}

	switch len(parts[1]) {
	case 0:
		return parts[0] + ".00", nil
	case 1:
		return parts[0] + "." + parts[1] + "0", nil
	case 2:
		return amount, nil
	default:
		return "", fmt.Errorf("%w: maximum %d decimal places allowed", errs.ErrInvalidAmount, MaxDecimalPlaces)
	}
}

// MultiplyAmount returns priceInCents*quantity, failing instead of wrapping around
func MultiplyAmount(priceInCents int64, quantity int) (int64, error) {
	if priceInCents < 0 || quantity < 0 {
		return 0, errs.ErrNegativeAmount
	}
	if quantity != 0 && priceInCents > math.MaxInt64/int64(quantity) {
		return 0, errs.ErrAmountOverflow
	}
	return priceInCents * int64(quantity), nil
}

// AddAmount returns a+b for non-negative amounts, failing on overflow
func AddAmount(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, errs.ErrNegativeAmount
	}
	if a > math.MaxInt64-b {
		return 0, errs.ErrAmountOverflow
	}
	return a + b, nil
}
