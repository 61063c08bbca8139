// Package session keeps the per-browser state of the expense calendar:
// its store, the visible month, the selected day and the entry draft.
package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"despesas/internal/core"
	"despesas/internal/store"
)

var ErrNoDaySelected = errors.New("no day selected")

// Draft is the content of the add-entry form of the selected day.
type Draft struct {
	Classification string
	RawAmount      string
	Priority       core.Priority
}

// NewDraft returns an empty draft with the default priority.
func NewDraft() Draft {
	return Draft{Priority: core.PriorityMedium}
}

type Session struct {
	ID    string
	Store *store.Store

	mu       sync.Mutex
	visible  time.Time
	selected *core.DateKey
	draft    Draft
}

func New(id string, now time.Time) *Session {
	return &Session{
		ID:      id,
		Store:   store.New(),
		visible: core.FirstOfMonth(now),
		draft:   NewDraft(),
	}
}

// Visible returns the first day of the month shown in the grid.
func (s *Session) Visible() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

func (s *Session) ShowNextMonth() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = core.NextMonth(s.visible)
	return s.visible
}

func (s *Session) ShowPrevMonth() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = core.PrevMonth(s.visible)
	return s.visible
}

// ShowMonthOf replaces the visible month with the month containing t.
func (s *Session) ShowMonthOf(t time.Time) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = core.FirstOfMonth(t)
	return s.visible
}

// Select makes day the selected day and starts a fresh draft.
func (s *Session) Select(day core.DateKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := day
	s.selected = &d
	s.draft = NewDraft()
}

func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
	s.draft = NewDraft()
}

func (s *Session) Selected() (core.DateKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return "", false
	}
	return *s.selected, true
}

func (s *Session) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// AddToSelected validates d and appends it to the selected day. On success
// the draft is reset; on failure d becomes the draft so the form keeps the
// user's input.
func (s *Session) AddToSelected(d Draft) (core.DateKey, core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected == nil {
		return "", core.Entry{}, ErrNoDaySelected
	}
	day := *s.selected

	if d.Priority == "" {
		d.Priority = core.PriorityMedium
	}
	e := core.Entry{
		Classification: strings.TrimSpace(d.Classification),
		Amount:         core.ParseAmount(d.RawAmount),
		Priority:       d.Priority,
	}
	if err := s.Store.Add(day, e); err != nil {
		s.draft = d
		return day, core.Entry{}, err
	}
	s.draft = NewDraft()
	return day, e, nil
}
