// Package core holds the domain model shared by storage, services and the
// reporting engine: users, categories, transactions and money handling.
//
// Amounts are kept as int64 cents everywhere inside the process. Floating
// point only appears at the JSON boundary, where monetary values are
// rendered at cent precision.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. Accepts both dot and comma
// separators. Negative and zero amounts are rejected.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, Validationf("Amount must be positive")
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, Validationf("Amount must be positive")
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, Validationf("Amount must be positive")
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, Validationf("Amount must be positive")
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, Validationf("Amount must be positive")
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, Validationf("Amount must be positive")
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, Validationf("Amount must be positive")
	}
	return cents, nil
}

// FloatToCents converts a JSON numeric amount to cents, rounding half away
// from zero.
func FloatToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CentsToFloat renders cents as a float for JSON responses.
func CentsToFloat(cents int64) float64 {
	return float64(cents) / 100.0
}

// FormatCents renders cents with exactly two decimal places, e.g. "12.50".
func FormatCents(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + twoDigits(cents%100)
	if neg {
		return "-" + s
	}
	return s
}

func twoDigits(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
