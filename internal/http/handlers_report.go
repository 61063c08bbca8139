package http

import (
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"despesas/internal/config"
	"despesas/internal/core"
	applog "despesas/internal/log"
)

// handleReport exports the entries of ?month (default: the visible month).
//
// A file sink cannot be downloaded through an htmx swap, so an htmx request
// only checks for entries and answers with HX-Redirect to the same URL; the
// browser's plain GET then streams the attachment. Other sinks export in
// place and report where the data went.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(ctx)
	slogger := applog.NewStructuredLogger(applog.FromContext(ctx))

	if s.reports == nil {
		ErrorResponse(http.StatusServiceUnavailable, "Relatório indisponível").Write(w)
		return
	}
	month, err := ParseReportMonth(r.URL.Query(), sess.Visible())
	if err != nil {
		BadRequestError("Mês inválido").Write(w)
		return
	}
	isHTMX := r.Header.Get("HX-Request") == "true"

	if isHTMX && s.reports.Sink() == config.SinkXLSX {
		if len(sess.Store.EntriesForMonth(month)) == 0 {
			emptyReport(w)
			return
		}
		NewHTMXResponse().Redirect("/report?" + url.Values{"month": {month.String()}}.Encode()).Write(w)
		return
	}

	art, err := s.reports.Export(ctx, sess.Store, month)
	switch {
	case errors.Is(err, core.ErrEmptyReport):
		emptyReport(w)
		return
	case err != nil:
		slogger.LogError(ctx, "Report export failed", err, applog.ComponentReport, applog.OpExport,
			applog.LogFields{applog.FieldMonth: month.String(), applog.FieldSink: s.reports.Sink()})
		NewHTMXResponse().
			Status(http.StatusBadGateway).
			TriggerErrorNotification(msgReportFailed).
			Write(w)
		return
	}

	if len(art.Data) > 0 {
		w.Header().Set("Content-Type", art.ContentType)
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": art.Name}))
		w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(art.Data)
		return
	}

	NewHTMXResponse().
		TriggerReportExported(month.String(), art.Ref).
		TriggerSuccessNotification("Relatório exportado para a aba " + art.Name + ".").
		Write(w)
}

func emptyReport(w http.ResponseWriter) {
	UnprocessableEntityError(msgEmptyReport).
		TriggerNotification(NotificationWarning, msgEmptyReport, 4000).
		Write(w)
}
