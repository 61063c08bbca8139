package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	PriorityHigh   Priority = "Alta"
	PriorityMedium Priority = "Média"
	PriorityLow    Priority = "Baixa"
)

const (
	dateKeyLayout  = "2006-01-02"
	monthKeyLayout = "2006-01"
)

type (
	Priority string

	// DateKey is a calendar date in canonical YYYY-MM-DD form.
	DateKey string

	// MonthKey is a calendar month in canonical YYYY-MM form.
	MonthKey string

	// Entry is a single expense recorded on a day.
	Entry struct {
		Classification string
		Amount         decimal.Decimal
		Priority       Priority
	}

	// Dated pairs an entry with the day it was recorded on.
	Dated struct {
		Date  DateKey
		Entry Entry
	}
)

var (
	ErrEmptyClassification = errors.New("empty classification")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInvalidPriority     = errors.New("invalid priority")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidMonth        = errors.New("invalid month")
	ErrNotANumber          = errors.New("not a number")
	ErrResultOverflow      = errors.New("result is not a finite number")
	ErrEmptyReport         = errors.New("no expenses in month")
)

// ValidationError reports user input that was rejected. Nothing is mutated
// when one is returned.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IndexError is returned when an entry position does not exist for a day.
type IndexError struct {
	Key   DateKey
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range for %s (len %d)", e.Index, e.Key, e.Len)
}

// Priorities returns the selectable priorities in display order.
func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// ParsePriority accepts the display labels and their English names.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "alta", "high":
		return PriorityHigh, nil
	case "média", "media", "medium":
		return PriorityMedium, nil
	case "baixa", "low":
		return PriorityLow, nil
	}
	return "", &ValidationError{Field: "priority", Err: ErrInvalidPriority}
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

func (p Priority) String() string { return string(p) }

func (e Entry) Validate() error {
	if strings.TrimSpace(e.Classification) == "" {
		return &ValidationError{Field: "classification", Err: ErrEmptyClassification}
	}
	if !e.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	if !e.Priority.Valid() {
		return &ValidationError{Field: "priority", Err: ErrInvalidPriority}
	}
	return nil
}

// KeyFor returns the canonical key of t's calendar date. Time of day is ignored.
func KeyFor(t time.Time) DateKey {
	return DateKey(t.Format(dateKeyLayout))
}

// ParseDateKey validates s and returns it as a DateKey.
func ParseDateKey(s string) (DateKey, error) {
	t, err := time.Parse(dateKeyLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return KeyFor(t), nil
}

// Time returns the key as a UTC midnight.
func (k DateKey) Time() time.Time {
	t, err := time.Parse(dateKeyLayout, string(k))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Month returns the year-month prefix of the key.
func (k DateKey) Month() MonthKey {
	if len(k) < len(monthKeyLayout) {
		return ""
	}
	return MonthKey(k[:len(monthKeyLayout)])
}

func (k DateKey) String() string { return string(k) }

// MonthKeyFor returns the canonical key of t's month.
func MonthKeyFor(t time.Time) MonthKey {
	return MonthKey(t.Format(monthKeyLayout))
}

// ParseMonthKey validates s and returns it as a MonthKey.
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse(monthKeyLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return MonthKeyFor(t), nil
}

// Time returns the first day of the month as a UTC midnight.
func (m MonthKey) Time() time.Time {
	t, err := time.Parse(monthKeyLayout, string(m))
	if err != nil {
		return time.Time{}
	}
	return t
}

func (m MonthKey) String() string { return string(m) }
