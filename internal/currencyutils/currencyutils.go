// Package currencyutils parses and renders amounts written in the Argentine
// locale: "." groups thousands and "," separates decimals.
package currencyutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrEmptyAmount is returned by ParseAmount for blank input.
var ErrEmptyAmount = errors.New("empty amount")

// ParseAmount converts a locale amount such as "$ 1.234.567,89" into a decimal.
// Double quotes anywhere in the input are ignored, as is a leading "$".
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := StandardizeAmount(raw)
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", raw, err)
	}
	return amount, nil
}

// ParseLocaleAmount is ParseAmount with failures mapped to the missing marker.
func ParseLocaleAmount(raw string) decimal.NullDecimal {
	amount, err := ParseAmount(raw)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(amount)
}

// StandardizeAmount rewrites a locale amount into the form decimal.NewFromString accepts.
func StandardizeAmount(raw string) string {
	s := strings.ReplaceAll(raw, `"`, "")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	return strings.ReplaceAll(s, ",", ".")
}

// FormatLocaleAmount renders an amount so that ParseLocaleAmount returns it unchanged.
func FormatLocaleAmount(amount decimal.Decimal) string {
	return "$ " + groupDigits(amount.String())
}

// FormatGrouped renders an amount rounded to places with "." thousands and "," decimals.
func FormatGrouped(amount decimal.Decimal, places int32) string {
	return groupDigits(amount.StringFixed(places))
}

// groupDigits takes a plain decimal string ("-1234.5") and applies the locale separators.
func groupDigits(plain string) string {
	sign := ""
	if strings.HasPrefix(plain, "-") {
		sign = "-"
		plain = plain[1:]
	}

	intPart, fracPart, hasFrac := strings.Cut(plain, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte(',')
		b.WriteString(fracPart)
	}
	return b.String()
}
