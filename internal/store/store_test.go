package store

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"despesas/internal/core"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func entry(class, amount string) core.Entry {
	return core.Entry{Classification: class, Amount: dec(amount), Priority: core.PriorityMedium}
}

func TestAddAndTotal(t *testing.T) {
	s := New()
	day := core.DateKey("2025-03-10")

	assert.True(t, s.TotalForDate(day).IsZero())

	require.NoError(t, s.Add(day, entry("Mercado", "10.25")))
	require.NoError(t, s.Add(day, entry("Padaria", "4.75")))
	require.NoError(t, s.Add("2025-03-11", entry("Ônibus", "5")))

	assert.True(t, s.TotalForDate(day).Equal(dec("15")))
	assert.True(t, s.Has(day))
	assert.Equal(t, 2, s.Len())

	got := s.Entries(day)
	require.Len(t, got, 2)
	assert.Equal(t, "Mercado", got[0].Classification)
	assert.Equal(t, "Padaria", got[1].Classification)
}

func TestAddTrimsClassification(t *testing.T) {
	s := New()
	day := core.DateKey("2025-03-10")
	require.NoError(t, s.Add(day, entry("  Mercado\t", "3")))
	assert.Equal(t, "Mercado", s.Entries(day)[0].Classification)
}

func TestAddRejectsInvalidAndLeavesStoreUnchanged(t *testing.T) {
	s := New()
	day := core.DateKey("2025-03-10")
	require.NoError(t, s.Add(day, entry("Mercado", "1")))
	before := s.Len()

	err := s.Add(day, entry("", "10"))
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.ErrorIs(t, err, core.ErrEmptyClassification)

	err = s.Add(day, entry("Mercado", "0"))
	require.ErrorAs(t, err, &ve)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	err = s.Add("2025-03-12", entry("", "0"))
	require.ErrorAs(t, err, &ve)

	assert.Equal(t, before, s.Len())
	assert.Len(t, s.Entries(day), 1)
	assert.False(t, s.Has("2025-03-12"))
}

func TestRemoveDeletesEmptyDay(t *testing.T) {
	s := New()
	day := core.DateKey("2025-03-10")
	require.NoError(t, s.Add(day, entry("A", "1")))
	require.NoError(t, s.Add(day, entry("B", "2")))
	require.NoError(t, s.Add(day, entry("C", "3")))

	removed, err := s.Remove(day, 1)
	require.NoError(t, err)
	assert.Equal(t, "B", removed.Classification)

	left := s.Entries(day)
	require.Len(t, left, 2)
	assert.Equal(t, "A", left[0].Classification)
	assert.Equal(t, "C", left[1].Classification)

	_, err = s.Remove(day, 0)
	require.NoError(t, err)
	_, err = s.Remove(day, 0)
	require.NoError(t, err)

	assert.False(t, s.Has(day))
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Entries(day))
}

func TestRemoveOutOfRange(t *testing.T) {
	s := New()
	day := core.DateKey("2025-03-10")
	require.NoError(t, s.Add(day, entry("A", "1")))

	for _, idx := range []int{-1, 1, 5} {
		_, err := s.Remove(day, idx)
		var ie *core.IndexError
		require.True(t, errors.As(err, &ie), "index %d", idx)
		assert.Equal(t, idx, ie.Index)
		assert.Equal(t, 1, ie.Len)
	}
	_, err := s.Remove("2025-01-01", 0)
	var ie *core.IndexError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 0, ie.Len)

	assert.Len(t, s.Entries(day), 1)
}

func TestEntriesForMonthOrdering(t *testing.T) {
	s := New()
	require.NoError(t, s.Add("2025-03-20", entry("late", "1")))
	require.NoError(t, s.Add("2025-03-02", entry("early-1", "2")))
	require.NoError(t, s.Add("2025-04-01", entry("next month", "3")))
	require.NoError(t, s.Add("2025-03-02", entry("early-2", "4")))
	require.NoError(t, s.Add("2025-02-28", entry("prev month", "5")))

	got := s.EntriesForMonth("2025-03")
	require.Len(t, got, 3)
	assert.Equal(t, core.DateKey("2025-03-02"), got[0].Date)
	assert.Equal(t, "early-1", got[0].Entry.Classification)
	assert.Equal(t, "early-2", got[1].Entry.Classification)
	assert.Equal(t, core.DateKey("2025-03-20"), got[2].Date)

	assert.True(t, s.TotalForMonth("2025-03").Equal(dec("7")))
	assert.Empty(t, s.EntriesForMonth("2024-03"))
}

func TestEntriesReturnsCopy(t *testing.T) {
	s := New()
	day := core.DateKey("2025-03-10")
	require.NoError(t, s.Add(day, entry("A", "1")))

	got := s.Entries(day)
	got[0].Classification = "mutated"
	assert.Equal(t, "A", s.Entries(day)[0].Classification)
}
