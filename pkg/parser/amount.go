package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnparseable is returned when an amount cell holds no usable number.
var ErrUnparseable = errors.New("unparseable amount")

// ParseAmount reads a bank amount regardless of locale. Currency symbols and
// spaces are dropped. When exactly two separators remain the first is a
// thousands mark and is removed; the next separator becomes the decimal point.
// A lone separator is always decimal, so "12,345" reads as 12.345.
func ParseAmount(raw string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == ',' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, raw)

	if strings.Count(cleaned, ",")+strings.Count(cleaned, ".") == 2 {
		cleaned = replaceFirstSeparator(cleaned, "")
	}
	cleaned = replaceFirstSeparator(cleaned, ".")

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnparseable, raw)
	}
	f, _ := d.Float64()
	return f, nil
}

func replaceFirstSeparator(s, with string) string {
	i := strings.IndexAny(s, ",.")
	if i < 0 {
		return s
	}
	return s[:i] + with + s[i+1:]
}
