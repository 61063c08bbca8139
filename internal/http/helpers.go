package http

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"despesas/internal/core"
	"despesas/internal/session"
)

// maxCellEntries is how many entries a calendar cell lists before "+N mais".
const maxCellEntries = 3

const dayLabelLayout = "02/01/2006"

// User-facing messages.
const (
	msgFillRequired   = "Preencha classificação e valor."
	msgInvalidAmount  = "Digite um valor válido maior que 0."
	msgInvalidPrio    = "Selecione uma prioridade válida."
	msgNoDaySelected  = "Selecione um dia no calendário."
	msgEmptyReport    = "Não há despesas neste mês para gerar relatório."
	msgReportFailed   = "Não foi possível gerar o relatório. Tente novamente."
	msgInvalidNumbers = "Informe números válidos para capital, taxa e meses."
	msgOverflow       = "Resultado grande demais para ser exibido."
	msgRateLimited    = "Muitas requisições. Aguarde um instante."
)

type EntryView struct {
	Index          int
	Classification string
	Amount         string
	Priority       string
	PriorityClass  string
}

type DayCell struct {
	Key      core.DateKey
	Day      int
	InMonth  bool
	Today    bool
	Selected bool
	Total    string
	Entries  []EntryView
	More     int
}

type CalendarView struct {
	Label    string
	Month    core.MonthKey
	Weekdays [7]string
	Weeks    [][7]DayCell
	Total    string
	OOB      bool
}

// DayPanel is the side panel of the selected day. With no selection it
// renders the placeholder.
type DayPanel struct {
	Selected   bool
	Key        core.DateKey
	Label      string
	Entries    []EntryView
	Total      string
	Draft      session.Draft
	Priorities []core.Priority
}

type InterestView struct {
	Principal string
	Rate      string
	Months    string
	Result    string
	Computed  bool
}

type IndexView struct {
	Calendar CalendarView
	Panel    DayPanel
	Interest InterestView
}

func priorityClass(p core.Priority) string {
	switch p {
	case core.PriorityHigh:
		return "prio-high"
	case core.PriorityLow:
		return "prio-low"
	default:
		return "prio-medium"
	}
}

func entryViews(entries []core.Entry) []EntryView {
	out := make([]EntryView, 0, len(entries))
	for i, e := range entries {
		out = append(out, EntryView{
			Index:          i,
			Classification: e.Classification,
			Amount:         core.FormatCurrency(e.Amount),
			Priority:       e.Priority.String(),
			PriorityClass:  priorityClass(e.Priority),
		})
	}
	return out
}

// buildCalendar renders the visible month of sess as a grid of cells.
func buildCalendar(sess *session.Session, now time.Time) CalendarView {
	visible := sess.Visible()
	selected, hasSelection := sess.Selected()
	month := core.MonthKeyFor(visible)

	view := CalendarView{
		Label:    core.MonthLabel(visible),
		Month:    month,
		Weekdays: core.WeekdayLabels,
	}
	if total := sess.Store.TotalForMonth(month); total.IsPositive() {
		view.Total = core.FormatCurrency(total)
	}
	for _, week := range core.BuildMonthGrid(visible) {
		var row [7]DayCell
		for i, day := range week {
			key := core.KeyFor(day)
			cell := DayCell{
				Key:      key,
				Day:      day.Day(),
				InMonth:  core.InMonth(day, visible),
				Today:    core.SameDay(day, now),
				Selected: hasSelection && key == selected,
			}
			if entries := sess.Store.Entries(key); len(entries) > 0 {
				cell.Total = core.FormatCurrency(sess.Store.TotalForDate(key))
				views := entryViews(entries)
				if len(views) > maxCellEntries {
					cell.More = len(views) - maxCellEntries
					views = views[:maxCellEntries]
				}
				cell.Entries = views
			}
			row[i] = cell
		}
		view.Weeks = append(view.Weeks, row)
	}
	return view
}

func buildDayPanel(sess *session.Session) DayPanel {
	key, ok := sess.Selected()
	if !ok {
		return DayPanel{}
	}
	entries := sess.Store.Entries(key)
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return DayPanel{
		Selected:   true,
		Key:        key,
		Label:      key.Time().Format(dayLabelLayout),
		Entries:    entryViews(entries),
		Total:      core.FormatCurrency(total),
		Draft:      sess.Draft(),
		Priorities: core.Priorities(),
	}
}

// entryErrorMessage maps a rejected draft to the notification shown to the
// user. An empty field wins over an unparseable amount.
func entryErrorMessage(d session.Draft, err error) string {
	switch {
	case errors.Is(err, session.ErrNoDaySelected):
		return msgNoDaySelected
	case strings.TrimSpace(d.Classification) == "" || strings.TrimSpace(d.RawAmount) == "":
		return msgFillRequired
	case errors.Is(err, core.ErrInvalidAmount):
		return msgInvalidAmount
	case errors.Is(err, core.ErrInvalidPriority):
		return msgInvalidPrio
	default:
		return msgFillRequired
	}
}

func interestErrorMessage(err error) string {
	if errors.Is(err, core.ErrResultOverflow) {
		return msgOverflow
	}
	return msgInvalidNumbers
}
