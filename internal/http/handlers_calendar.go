package http

import (
	"net/http"

	"despesas/internal/core"
	applog "despesas/internal/log"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	sess := sessionFrom(r.Context())
	data := IndexView{
		Calendar: buildCalendar(sess, s.now()),
		Panel:    buildDayPanel(sess),
	}
	s.respond(w, r, NewHTMXResponse(), templatePart{"index.html", data})
}

// handleMonth moves the visible month: dir is prev, next or today.
func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	switch r.URL.Query().Get("dir") {
	case "prev":
		sess.ShowPrevMonth()
	case "next":
		sess.ShowNextMonth()
	case "today":
		sess.ShowMonthOf(s.now())
	default:
		BadRequestError("Direção inválida").Write(w)
		return
	}
	applog.FromContext(r.Context()).DebugContext(r.Context(), "Month changed",
		applog.FieldOperation, applog.OpNavigate,
		applog.FieldSessionID, sess.ID,
		applog.FieldMonth, core.MonthKeyFor(sess.Visible()).String())
	s.respond(w, r, NewHTMXResponse(), templatePart{"calendar", buildCalendar(sess, s.now())})
}

// handleSelectDay opens the panel of a day and refreshes the grid so the
// selection ring moves.
func (s *Server) handleSelectDay(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}
	day, err := core.ParseDateKey(p.Get("date"))
	if err != nil {
		BadRequestError("Data inválida").Write(w)
		return
	}
	sess := sessionFrom(r.Context())
	sess.Select(day)
	s.respondPanelAndCalendar(w, r, NewHTMXResponse())
}

func (s *Server) handleCloseDay(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sess.ClearSelection()
	s.respondPanelAndCalendar(w, r, NewHTMXResponse())
}

// handleAmount echoes the amount field in its canonical display form.
func (s *Server) handleAmount(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}
	value := core.NormalizeTypedAmount("", p.Get("amount"))
	s.respond(w, r, NewHTMXResponse(), templatePart{"amount-input", value})
}

// respondPanelAndCalendar renders the day panel as the main swap and the
// calendar out of band.
func (s *Server) respondPanelAndCalendar(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder) {
	sess := sessionFrom(r.Context())
	cal := buildCalendar(sess, s.now())
	cal.OOB = true
	s.respond(w, r, b,
		templatePart{"day-panel", buildDayPanel(sess)},
		templatePart{"calendar", cal},
	)
}
