package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimal magnitudes outside this window do not survive a float64 conversion.
const (
	maxFloatMagnitude = 308
	minFloatMagnitude = -324
)

// InterestInput holds the parsed fields of the interest calculator.
type InterestInput struct {
	Principal   decimal.Decimal
	RatePercent decimal.Decimal
	// Months is already truncated toward zero and may exceed any int64.
	Months decimal.Decimal
}

// ParseInterestInputs reads the three calculator fields as plain decimal
// numbers ("1000", "1.5", "-0.3"). No currency symbols or thousands
// separators are accepted. Months are truncated toward zero.
func ParseInterestInputs(principal, rate, months string) (InterestInput, error) {
	p, err := parsePlainNumber("principal", principal)
	if err != nil {
		return InterestInput{}, err
	}
	r, err := parsePlainNumber("rate", rate)
	if err != nil {
		return InterestInput{}, err
	}
	m, err := parsePlainNumber("months", months)
	if err != nil {
		return InterestInput{}, err
	}
	return InterestInput{Principal: p, RatePercent: r, Months: m.Truncate(0)}, nil
}

// parsePlainNumber accepts finite numbers only. Values too small for a
// float64 read as zero.
func parsePlainNumber(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, &ValidationError{Field: field, Err: ErrNotANumber}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: field, Err: ErrNotANumber}
	}
	if magnitude(d) < minFloatMagnitude {
		return decimal.Zero, nil
	}
	if _, ok := finiteFloat(d); !ok {
		return decimal.Zero, &ValidationError{Field: field, Err: ErrNotANumber}
	}
	return d, nil
}

// magnitude is the base-10 exponent of the leading digit of d.
func magnitude(d decimal.Decimal) int64 {
	if d.IsZero() {
		return 0
	}
	return int64(d.NumDigits()) - 1 + int64(d.Exponent())
}

// finiteFloat converts d without materializing huge powers of ten. It
// reports false when d has no finite float64 value.
func finiteFloat(d decimal.Decimal) (float64, bool) {
	switch mag := magnitude(d); {
	case mag > maxFloatMagnitude:
		return 0, false
	case mag < minFloatMagnitude:
		return 0, true
	}
	f := d.InexactFloat64()
	return f, !math.IsInf(f, 0)
}

// ComputeFutureValue returns principal * (1 + ratePercent/100)^months.
// Negative rates and months are allowed. Any non-finite step, including a
// month count too large for float64, yields ErrResultOverflow.
func ComputeFutureValue(principal, ratePercent, months decimal.Decimal) (decimal.Decimal, error) {
	rate, okRate := finiteFloat(ratePercent)
	exp, okExp := finiteFloat(months)
	if !okRate || !okExp {
		return decimal.Zero, ErrResultOverflow
	}
	factor := math.Pow(1+rate/100, math.Trunc(exp))
	if math.IsInf(factor, 0) || math.IsNaN(factor) {
		return decimal.Zero, ErrResultOverflow
	}
	fv := principal.Mul(decimal.NewFromFloat(factor))
	if _, ok := finiteFloat(fv); !ok {
		return decimal.Zero, ErrResultOverflow
	}
	return fv, nil
}

// FutureValue is ComputeFutureValue over parsed calculator input.
func (in InterestInput) FutureValue() (decimal.Decimal, error) {
	return ComputeFutureValue(in.Principal, in.RatePercent, in.Months)
}
