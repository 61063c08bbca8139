// Package store holds the in-memory expense store of a session: a mapping
// from day to the ordered list of entries recorded on it.
package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"despesas/internal/core"
)

// Store maps a day to its entries in insertion order. A day with no entries
// is never kept in the map.
type Store struct {
	mu   sync.Mutex
	days map[core.DateKey][]core.Entry
}

func New() *Store {
	return &Store{days: make(map[core.DateKey][]core.Entry)}
}

// Add appends e to the entries of day. Invalid entries are rejected with a
// *core.ValidationError and leave the store untouched.
func (s *Store) Add(day core.DateKey, e core.Entry) error {
	e.Classification = strings.TrimSpace(e.Classification)
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days[day] = append(s.days[day], e)
	return nil
}

// Remove deletes the entry at index from day and returns it. When the day
// has no entries left its key is removed. An out-of-range index returns a
// *core.IndexError.
func (s *Store) Remove(day core.DateKey, index int) (core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.days[day]
	if index < 0 || index >= len(entries) {
		return core.Entry{}, &core.IndexError{Key: day, Index: index, Len: len(entries)}
	}
	removed := entries[index]
	rest := make([]core.Entry, 0, len(entries)-1)
	rest = append(rest, entries[:index]...)
	rest = append(rest, entries[index+1:]...)
	if len(rest) == 0 {
		delete(s.days, day)
	} else {
		s.days[day] = rest
	}
	return removed, nil
}

// Entries returns a copy of the entries recorded on day.
func (s *Store) Entries(day core.DateKey) []core.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Entry(nil), s.days[day]...)
}

// Has reports whether day has at least one entry.
func (s *Store) Has(day core.DateKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.days[day]
	return ok
}

// Len returns the number of days with entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.days)
}

// TotalForDate sums the amounts of day; zero when the day has no entries.
func (s *Store) TotalForDate(day core.DateKey) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, e := range s.days[day] {
		total = total.Add(e.Amount)
	}
	return total
}

// EntriesForMonth returns every entry of month ordered by day, then by
// insertion order within the day.
func (s *Store) EntriesForMonth(month core.MonthKey) []core.Dated {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []core.DateKey
	for k := range s.days {
		if k.Month() == month {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var out []core.Dated
	for _, k := range keys {
		for _, e := range s.days[k] {
			out = append(out, core.Dated{Date: k, Entry: e})
		}
	}
	return out
}

// TotalForMonth sums every amount recorded in month.
func (s *Store) TotalForMonth(month core.MonthKey) decimal.Decimal {
	total := decimal.Zero
	for _, d := range s.EntriesForMonth(month) {
		total = total.Add(d.Entry.Amount)
	}
	return total
}
