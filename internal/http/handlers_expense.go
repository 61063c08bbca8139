package http

import (
	"errors"
	"net/http"

	"despesas/internal/core"
	applog "despesas/internal/log"
	"despesas/internal/session"
)

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(ctx)
	slogger := applog.NewStructuredLogger(applog.FromContext(ctx))

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		slogger.LogError(ctx, "Parse body error", err, applog.ComponentExpense, applog.OpCreate, nil)
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}

	var (
		day   core.DateKey
		entry core.Entry
	)
	draft, err := ParseDraft(p)
	if err == nil {
		day, entry, err = sess.AddToSelected(draft)
	}
	if err != nil {
		msg := entryErrorMessage(draft, err)
		applog.FromContext(ctx).InfoContext(ctx, "Entry rejected",
			applog.FieldOperation, applog.OpCreate,
			applog.FieldSessionID, sess.ID,
			"error_type", applog.ErrorTypeValidation,
			applog.FieldError, err.Error())
		b := NewHTMXResponse().
			Status(http.StatusUnprocessableEntity).
			TriggerErrorNotification(msg)
		if errors.Is(err, session.ErrNoDaySelected) {
			b.Write(w)
			return
		}
		s.respond(w, r, b, templatePart{"day-panel", buildDayPanel(sess)})
		return
	}

	slogger.LogEntryAdded(ctx, sess.ID, day.String(), entry.Classification, entry.Amount, entry.Priority.String())

	b := NewHTMXResponse().
		TriggerEntryAdded(day.String()).
		TriggerFormReset().
		TriggerSuccessNotification("Despesa adicionada em " + day.Time().Format(dayLabelLayout) + ".")
	s.respondPanelAndCalendar(w, r, b)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(ctx)
	slogger := applog.NewStructuredLogger(applog.FromContext(ctx))

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}
	day, idx, err := ParseDeleteParams(p)
	if err != nil {
		BadRequestError("Parâmetros inválidos").Write(w)
		return
	}

	if _, err := sess.Store.Remove(day, idx); err != nil {
		var ie *core.IndexError
		if errors.As(err, &ie) {
			slogger.LogError(ctx, "Entry index out of range", err, applog.ComponentExpense, applog.OpDelete,
				applog.LogFields{applog.FieldSessionID: sess.ID})
			BadRequestError("Despesa não encontrada").Write(w)
			return
		}
		slogger.LogError(ctx, "Failed to remove entry", err, applog.ComponentExpense, applog.OpDelete, nil)
		InternalServerError("Erro ao excluir despesa").Write(w)
		return
	}
	slogger.LogEntryRemoved(ctx, sess.ID, day.String(), idx)

	s.respondPanelAndCalendar(w, r, NewHTMXResponse().TriggerEntryRemoved(day.String()))
}
