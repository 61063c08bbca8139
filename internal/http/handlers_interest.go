package http

import (
	"net/http"

	"despesas/internal/core"
	applog "despesas/internal/log"
)

// handleInterest computes principal * (1 + rate/100)^months. Invalid input
// keeps the previous result on screen and raises a notification.
func (s *Server) handleInterest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}
	view := InterestView{
		Principal: p.Get("principal"),
		Rate:      p.Get("rate"),
		Months:    p.Get("months"),
	}

	in, err := core.ParseInterestInputs(view.Principal, view.Rate, view.Months)
	if err != nil {
		s.rejectInterest(w, r, view, err)
		return
	}
	fv, err := in.FutureValue()
	if err != nil {
		s.rejectInterest(w, r, view, err)
		return
	}

	view.Result = core.FormatCurrency(fv)
	view.Computed = true
	applog.FromContext(ctx).DebugContext(ctx, "Interest computed",
		applog.FieldOperation, applog.OpCompute,
		"months", in.Months.String(),
		"result", fv.StringFixed(2))
	s.respond(w, r, NewHTMXResponse(), templatePart{"interest-result", view})
}

func (s *Server) rejectInterest(w http.ResponseWriter, r *http.Request, view InterestView, err error) {
	ctx := r.Context()
	applog.FromContext(ctx).InfoContext(ctx, "Interest input rejected",
		applog.FieldOperation, applog.OpCompute,
		applog.FieldError, err.Error())
	b := NewHTMXResponse().
		Status(http.StatusUnprocessableEntity).
		TriggerErrorNotification(interestErrorMessage(err))
	s.respond(w, r, b, templatePart{"interest-result", view})
}
