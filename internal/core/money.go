// Package core provides the expense domain: entries, date keys, the month
// grid, currency input handling and the compound interest formula.
//
// This file contains the two amount parsers. NormalizeTypedAmount and
// ParseAmount handle the masked currency field of the expense form;
// ParseInterestInputs (interest.go) handles the plain numeric fields of the
// interest calculator. They accept different formats and are kept apart.
package core

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const currencySymbol = "R$"

var (
	printer        = message.NewPrinter(language.BrazilianPortuguese)
	nonDigits      = regexp.MustCompile(`[^0-9]`)
	nonAmountChars = regexp.MustCompile(`[^0-9,.\-]`)
	leadingNumber  = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)`)
)

// NormalizeTypedAmount turns the text of the amount field into its canonical
// display form. Every non-digit is noise; the digits are read as integer cents,
// so typing "12345" displays "R$ 123,45". No digits, or only zeros, display as
// an empty field.
func NormalizeTypedAmount(previous, typed string) string {
	digits := nonDigits.ReplaceAllString(previous+typed, "")
	if digits == "" {
		return ""
	}
	cents, err := decimal.NewFromString(digits)
	if err != nil || cents.IsZero() {
		return ""
	}
	return FormatCurrency(cents.Shift(-2))
}

// ParseAmount converts a displayed amount back to a number. Dots are thousands
// separators and the comma is the decimal mark. Text that does not start with
// a number yields zero.
//
// Examples:
//
//	ParseAmount("R$ 1.234,56") -> 1234.56
//	ParseAmount("12,5")        -> 12.5
//	ParseAmount("abc")         -> 0
func ParseAmount(display string) decimal.Decimal {
	cleaned := nonAmountChars.ReplaceAllString(display, "")
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	m := leadingNumber.FindString(cleaned)
	if m == "" {
		return decimal.Zero
	}
	m = strings.TrimSuffix(m, ".")
	v, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero
	}
	return v
}

// FormatCurrency renders d as Brazilian Real with two fraction digits,
// e.g. "R$ 1.234,56" or "-R$ 3,00". Digits come from the decimal itself, so
// every cent survives regardless of magnitude.
func FormatCurrency(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, cents := s[:len(s)-3], s[len(s)-2:]
	return sign + currencySymbol + " " + groupThousands(whole) + "," + cents
}

// groupThousands inserts the pt-BR thousands separator into a run of digits.
func groupThousands(digits string) string {
	if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
		return printer.Sprint(number.Decimal(n))
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte('.')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
