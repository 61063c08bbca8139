package http

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"despesas/internal/config"
	"despesas/internal/core"
	applog "despesas/internal/log"
	"despesas/internal/middleware/ratelimit"
	"despesas/internal/report"
	"despesas/internal/report/xlsx"
	"despesas/internal/services"
	"despesas/internal/session"
)

var testNow = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

type harness struct {
	t      *testing.T
	srv    *Server
	reg    *session.Registry
	cookie *http.Cookie
	logs   *bytes.Buffer
}

func newHarness(t *testing.T, reports *services.ReportService, limiter *ratelimit.Limiter) *harness {
	t.Helper()
	logs := &bytes.Buffer{}
	logger := applog.New(applog.Config{
		Component: "test",
		Handler:   slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
	reg := session.NewRegistry(logger, 10, time.Hour).WithClock(func() time.Time { return testNow })
	if limiter == nil {
		limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: 1000})
	}
	srv := NewServer(":0", Deps{
		Sessions: reg,
		Reports:  reports,
		Limiter:  limiter,
		Logger:   logger,
		Now:      func() time.Time { return testNow },
	})
	t.Cleanup(reg.Stop)
	return &harness{t: t, srv: srv, reg: reg, logs: logs}
}

func xlsxReports() *services.ReportService {
	return services.NewReportService(xlsx.New(), config.SinkXLSX, nil)
}

// do sends a request carrying the harness session cookie and keeps the
// cookie the server answers with.
func (h *harness) do(method, path string, form url.Values, headers ...string) *httptest.ResponseRecorder {
	h.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	rr := httptest.NewRecorder()
	h.srv.Handler.ServeHTTP(rr, req)
	for _, c := range rr.Result().Cookies() {
		if c.Name == session.CookieName {
			h.cookie = c
		}
	}
	return rr
}

func (h *harness) session() *session.Session {
	h.t.Helper()
	require.NotNil(h.t, h.cookie, "no session cookie yet")
	sess, ok := h.reg.Get(h.cookie.Value)
	require.True(h.t, ok)
	return sess
}

func (h *harness) addEntry(date, classification, amount string) {
	h.t.Helper()
	rr := h.do(http.MethodPost, "/ui/day", url.Values{"date": {date}})
	require.Equal(h.t, http.StatusOK, rr.Code)
	rr = h.do(http.MethodPost, "/expenses", url.Values{
		"classification": {classification},
		"amount":         {amount},
		"priority":       {"Média"},
	})
	require.Equal(h.t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestIndexAndHealth(t *testing.T) {
	h := newHarness(t, xlsxReports(), nil)

	rr := h.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Calculadora de Despesas")
	assert.Contains(t, body, "março 2025")
	assert.Contains(t, body, "Nenhum dia selecionado")
	assert.Contains(t, body, "Clique em um dia do calendário para adicionar despesas.")
	assert.Contains(t, body, `data-date="2025-03-15"`)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, rr.Header().Get("Content-Security-Policy"))
	require.NotNil(t, h.cookie)
	assert.True(t, h.cookie.HttpOnly)

	first := h.cookie.Value
	h.do(http.MethodGet, "/", nil)
	assert.Equal(t, first, h.cookie.Value, "session must be reused")

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := h.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}

	rr = h.do(http.MethodGet, "/static/app.css", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Cache-Control"), "max-age=3600")

	rr = h.do(http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestTodayAndOverflowCells(t *testing.T) {
	h := newHarness(t, xlsxReports(), nil)
	body := h.do(http.MethodGet, "/", nil).Body.String()

	assert.Regexp(t, `class="day today"\s+data-date="2025-03-15"`, body)
	// March 2025 starts on a Saturday: the grid opens on Sunday 23 February.
	assert.Regexp(t, `class="day outside"\s+data-date="2025-02-23"`, body)
}

func TestMonthNavigation(t *testing.T) {
	h := newHarness(t, xlsxReports(), nil)

	rr := h.do(http.MethodPost, "/ui/month?dir=prev", url.Values{})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "fevereiro 2025")
	assert.NotContains(t, rr.Body.String(), "hx-swap-oob")

	h.do(http.MethodPost, "/ui/month?dir=next", url.Values{})
	rr = h.do(http.MethodPost, "/ui/month?dir=next", url.Values{})
	assert.Contains(t, rr.Body.String(), "abril 2025")

	rr = h.do(http.MethodPost, "/ui/month?dir=today", url.Values{})
	assert.Contains(t, rr.Body.String(), "março 2025")

	rr = h.do(http.MethodPost, "/ui/month?dir=sideways", url.Values{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = h.do(http.MethodGet, "/ui/month?dir=next", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestSelectAndCloseDay(t *testing.T) {
	h := newHarness(t, xlsxReports(), nil)

	rr := h.do(http.MethodPost, "/ui/day", url.Values{"date": {"2025-03-10"}})
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "10/03/2025")
	assert.Contains(t, body, "Nenhuma despesa ainda.")
	assert.Contains(t, body, `hx-swap-oob="true"`)
	assert.Regexp(t, `class="day selected"\s+data-date="2025-03-10"`, body)

	day, ok := h.session().Selected()
	require.True(t, ok)
	assert.Equal(t, core.DateKey("2025-03-10"), day)

	rr = h.do(http.MethodPost, "/ui/day", url.Values{"date": {"2025-02-30"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = h.do(http.MethodPost, "/ui/day/close", url.Values{})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Nenhum dia selecionado")
	_, ok = h.session().Selected()
	assert.False(t, ok)
}

func TestCreateEntryValidationAndSuccess(t *testing.T) {
	h := newHarness(t, xlsxReports(), nil)

	// No selected day.
	rr := h.do(http.MethodPost, "/expenses", url.Values{"classification": {"Mercado"}, "amount": {"R$ 10,00"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Header().Get("HX-Trigger"), msgNoDaySelected)

	h.do(http.MethodPost, "/ui/day", url.Values{"date": {"2025-03-10"}})

	cases := []struct {
		name string
		form url.Values
		msg  string
	}{
		{"empty classification", url.Values{"classification": {" "}, "amount": {"R$ 10,00"}}, msgFillRequired},
		{"empty amount", url.Values{"classification": {"Mercado"}, "amount": {""}}, msgFillRequired},
		{"zero amount", url.Values{"classification": {"Mercado"}, "amount": {"R$ 0,00"}}, msgInvalidAmount},
		{"not a number", url.Values{"classification": {"Mercado"}, "amount": {"abc"}}, msgInvalidAmount},
		{"unknown priority", url.Values{"classification": {"Mercado"}, "amount": {"R$ 1,00"}, "priority": {"urgente"}}, msgInvalidPrio},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := h.do(http.MethodPost, "/expenses", tc.form)
			assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
			trigger := rr.Header().Get("HX-Trigger")
			assert.Contains(t, trigger, `"show-notification"`)
			assert.Contains(t, trigger, tc.msg)
			assert.Contains(t, trigger, `"type":"error"`)
		})
	}
	assert.Equal(t, 0, h.session().Store.Len())

	// A rejected draft is kept for the panel.
	rr = h.do(http.MethodPost, "/expenses", url.Values{"classification": {"Farmácia"}, "amount": {"R$ 0,00"}})
	assert.Contains(t, rr.Body.String(), `value="Farmácia"`)

	rr = h.do(http.MethodPost, "/expenses", url.Values{
		"classification": {" Mercado "},
		"amount":         {"R$ 1.150,50"},
		"priority":       {"Alta"},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	trigger := rr.Header().Get("HX-Trigger")
	assert.Contains(t, trigger, `"entry:added"`)
	assert.Contains(t, trigger, `"date":"2025-03-10"`)
	assert.Contains(t, trigger, `"type":"success"`)

	body := rr.Body.String()
	assert.Contains(t, body, "Mercado")
	assert.Contains(t, body, "R$ 1.150,50")
	assert.Contains(t, body, `hx-swap-oob="true"`)

	entries := h.session().Store.Entries("2025-03-10")
	require.Len(t, entries, 1)
	assert.Equal(t, "Mercado", entries[0].Classification)
	assert.Equal(t, core.PriorityHigh, entries[0].Priority)
	assert.Equal(t, "1150.5", entries[0].Amount.String())

	// The draft was reset after the successful add.
	assert.Empty(t, h.session().Draft().Classification)
}

func TestCreateEntryAcceptsJSON(t *testing.T) {
	h := newHarness(t, xlsxReports(), nil)
	h.do(http.MethodPost, "/ui/day", url.Values{"date": {"2025-03-11"}})

	req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(`{"classification":"Luz","amount":"R$ 80,00"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(h.cookie)
	rr := httptest.NewRecorder()
	h.srv.Handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	entries := h.session().Store.Entries("2025-03-11")
	require.Len(t, entries, 1)
	assert.Equal(t, core.PriorityMedium, entries[0].Priority)
}

func TestCellShowsAtMostThreeEntries(t *testing.T) {
	h := newHarness(t, xlsxReports(), nil)
	for _, c := range []string{"A", "B", "C", "D", "E"} {
		h.addEntry("2025-03-04", "Item "+c, "R$ 1,00")
	}
	body := h.do(http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, body, "+2 mais")
	assert.Contains(t, body, "Item C")
	assert.Contains(t, body, "R$ 5,00")
}

func TestDeleteEntry(t *testing.T) {
	h := newHarness(t, xlsxReports(), nil)
	h.addEntry("2025-03-10", "Mercado", "R$ 10,00")
	h.addEntry("2025-03-10", "Padaria", "R$ 5,00")

	rr := h.do(http.MethodPost, "/expenses/delete", url.Values{"date": {"2025-03-10"}, "index": {"0"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("HX-Trigger"), `"entry:removed"`)
	assert.NotContains(t, rr.Body.String(), "Mercado")
	assert.Contains(t, rr.Body.String(), "Padaria")

	rr = h.do(http.MethodPost, "/expenses/delete", url.Values{"date": {"2025-03-10"}, "index": {"5"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = h.do(http.MethodPost, "/expenses/delete", url.Values{"date": {"2025-03-10"}, "index": {"x"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = h.do(http.MethodPost, "/expenses/delete", url.Values{"date": {"2025-03-10"}, "index": {"0"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, h.session().Store.Has("2025-03-10"))
	assert.Contains(t, rr.Body.String(), "Nenhuma despesa ainda.")
}

func TestAmountNormalization(t *testing.T) {
	h := newHarness(t, xlsxReports(), nil)

	rr := h.do(http.MethodPost, "/ui/amount", url.Values{"amount": {"12345"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `value="R$ 123,45"`)

	rr = h.do(http.MethodPost, "/ui/amount", url.Values{"amount": {"R$ 123,456"}})
	assert.Contains(t, rr.Body.String(), `value="R$ 1.234,56"`)

	rr = h.do(http.MethodPost, "/ui/amount", url.Values{"amount": {"abc"}})
	assert.Contains(t, rr.Body.String(), `value=""`)
}

func TestInterest(t *testing.T) {
	h := newHarness(t, xlsxReports(), nil)

	rr := h.do(http.MethodPost, "/interest", url.Values{"principal": {"1000"}, "rate": {"10"}, "months": {"12"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "R$ 3.138,43")

	rr = h.do(http.MethodPost, "/interest", url.Values{"principal": {"R$ 1000"}, "rate": {"10"}, "months": {"12"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Header().Get("HX-Trigger"), msgInvalidNumbers)
	assert.NotContains(t, rr.Body.String(), "Valor futuro")

	rr = h.do(http.MethodPost, "/interest", url.Values{"principal": {"1"}, "rate": {"100"}, "months": {"5000"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Header().Get("HX-Trigger"), msgOverflow)
}

func TestInterestRejectsNonFiniteInput(t *testing.T) {
	h := newHarness(t, xlsxReports(), nil)

	rr := h.do(http.MethodPost, "/interest", url.Values{"principal": {"1e999999999"}, "rate": {"0"}, "months": {"1"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Header().Get("HX-Trigger"), msgInvalidNumbers)

	rr = h.do(http.MethodPost, "/interest", url.Values{"principal": {"1000"}, "rate": {"10"}, "months": {"18446744073709551616"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Header().Get("HX-Trigger"), msgOverflow)
}

func TestRequestLoggerCarriesComponentAndRequestID(t *testing.T) {
	h := newHarness(t, xlsxReports(), nil)

	rr := h.do(http.MethodPost, "/interest", url.Values{"principal": {"x"}, "rate": {"1"}, "months": {"1"}})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	requestID := rr.Header().Get("X-Request-ID")
	require.NotEmpty(t, requestID)

	var rejected string
	for _, line := range strings.Split(h.logs.String(), "\n") {
		if strings.Contains(line, "Interest input rejected") {
			rejected = line
		}
	}
	require.NotEmpty(t, rejected)
	assert.Contains(t, rejected, "component=interest")
	assert.Contains(t, rejected, "request_id="+requestID)
	assert.Contains(t, h.logs.String(), "component=session")
}

func TestReportXLSX(t *testing.T) {
	h := newHarness(t, xlsxReports(), nil)

	rr := h.do(http.MethodGet, "/report?month=2025-03", nil, "HX-Request", "true")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Header().Get("HX-Trigger"), msgEmptyReport)

	rr = h.do(http.MethodGet, "/report?month=2025-3", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	h.addEntry("2025-03-10", "Mercado", "R$ 10,00")

	rr = h.do(http.MethodGet, "/report?month=2025-03", nil, "HX-Request", "true")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "/report?month=2025-03", rr.Header().Get("HX-Redirect"))

	rr = h.do(http.MethodGet, "/report", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, xlsx.ContentType, rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "despesas_2025-03.xlsx")
	assert.NotZero(t, rr.Body.Len())
}

type fakeSheetWriter struct {
	month core.MonthKey
	rows  []report.Row
}

func (f *fakeSheetWriter) Write(_ context.Context, month core.MonthKey, rows []report.Row) (report.Artifact, error) {
	f.month, f.rows = month, rows
	return report.Artifact{Name: "Despesas " + month.String(), Ref: "'Despesas " + month.String() + "'!A1:D2"}, nil
}

func TestReportSheetsSink(t *testing.T) {
	w := &fakeSheetWriter{}
	h := newHarness(t, services.NewReportService(w, config.SinkSheets, nil), nil)
	h.addEntry("2025-03-10", "Mercado", "R$ 10,00")

	rr := h.do(http.MethodGet, "/report?month=2025-03", nil, "HX-Request", "true")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("HX-Redirect"))
	trigger := rr.Header().Get("HX-Trigger")
	assert.Contains(t, trigger, `"report:exported"`)
	assert.Contains(t, trigger, "Despesas 2025-03")

	assert.Equal(t, core.MonthKey("2025-03"), w.month)
	require.Len(t, w.rows, 1)
	assert.Equal(t, "Mercado", w.rows[0].Classification)
}

func TestRateLimitedMutations(t *testing.T) {
	h := newHarness(t, xlsxReports(), ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: 1}))

	rr := h.do(http.MethodPost, "/ui/month?dir=next", url.Values{})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = h.do(http.MethodPost, "/ui/month?dir=next", url.Values{})
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
	assert.Contains(t, rr.Header().Get("HX-Trigger"), msgRateLimited)

	// Reads are never limited.
	rr = h.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestShutdownIsIdempotent(t *testing.T) {
	h := newHarness(t, xlsxReports(), nil)
	h.reg.Start(context.Background(), time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, h.srv.Shutdown(ctx))
	require.NoError(t, h.srv.Shutdown(ctx))
}
