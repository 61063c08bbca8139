package http

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	applog "despesas/internal/log"
	"despesas/internal/middleware/ratelimit"
	"despesas/internal/middleware/security"
	"despesas/internal/middleware/trace"
	"despesas/internal/services"
	"despesas/internal/session"
	appweb "despesas/web"
)

type Server struct {
	http.Server
	templates *template.Template
	sessions  *session.Registry
	reports   *services.ReportService
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	tracer    *trace.Middleware
	logger    *applog.Logger
	now       func() time.Time

	shutdownOnce sync.Once
}

// Deps are the collaborators of the server. Limiter, Logger and Now are
// optional.
type Deps struct {
	Sessions *session.Registry
	Reports  *services.ReportService
	Limiter  *ratelimit.Limiter
	Logger   *applog.Logger
	Now      func() time.Time
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	limiter := deps.Limiter
	if limiter == nil {
		limiter = ratelimit.NewLimiter(ratelimit.DefaultConfig())
	}

	s := &Server{
		sessions: deps.Sessions,
		reports:  deps.Reports,
		limiter:  limiter,
		detector: security.NewDetector(),
		logger:   logger,
		now:      now,
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	calendar := applog.ComponentMiddleware(applog.ComponentCalendar)
	expense := applog.ComponentMiddleware(applog.ComponentExpense)
	mux.Handle("GET /{$}", calendar(s.page(s.handleIndex)))
	mux.Handle("POST /ui/month", calendar(s.page(s.handleMonth)))
	mux.Handle("POST /ui/day", calendar(s.page(s.handleSelectDay)))
	mux.Handle("POST /ui/day/close", calendar(s.page(s.handleCloseDay)))
	mux.Handle("POST /ui/amount", expense(s.page(s.handleAmount)))
	mux.Handle("POST /expenses", expense(s.page(s.handleCreateEntry)))
	mux.Handle("POST /expenses/delete", expense(s.page(s.handleDeleteEntry)))
	mux.Handle("GET /report", applog.ComponentMiddleware(applog.ComponentReport)(s.page(s.handleReport)))
	mux.Handle("POST /interest", applog.ComponentMiddleware(applog.ComponentInterest)(s.page(s.handleInterest)))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var handler http.Handler = mux
	handler = limiter.Middleware(s.detector.ExtractClientIP, s.rateLimited)(handler)
	handler = headers.Middleware(handler)
	handler = s.detector.Middleware(s.suspicious)(handler)
	handler = s.tracer.Middleware(handler)
	handler = applog.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// page wraps session-bound handlers: no caching and a resolved session.
func (s *Server) page(h http.HandlerFunc) http.Handler {
	return security.NoStore(s.withSession(h))
}

// Shutdown stops the session janitor and the HTTP server. Safe to call twice.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		limits := s.limiter.GetMetrics()
		args := []any{
			applog.FieldOperation, applog.OpShutdown,
			"requests", s.tracer.TotalRequests(),
			"rate_limited", limits.TotalHits,
			"tracked_clients", limits.ClientCount,
		}
		if s.sessions != nil {
			args = append(args, "active_sessions", s.sessions.Len())
			s.sessions.Stop()
		}
		s.logger.InfoContext(ctx, "HTTP server stopping", args...)
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	NewHTMXResponse().
		Status(http.StatusTooManyRequests).
		TriggerErrorNotification(msgRateLimited).
		Write(w)
}

func (s *Server) suspicious(r *http.Request, clientIP string) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentSecurity).WarnContext(r.Context(), "Suspicious request",
		applog.FieldClientIP, clientIP,
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path,
		applog.FieldUserAgent, r.UserAgent())
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil || s.sessions == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// render executes the named templates in order into one body, so a
// response can carry a main fragment plus out-of-band swaps.
func (s *Server) render(ctx context.Context, parts ...templatePart) ([]byte, error) {
	if s.templates == nil {
		return nil, errTemplatesNotLoaded
	}
	var buf bytes.Buffer
	for _, p := range parts {
		if err := s.templates.ExecuteTemplate(&buf, p.name, p.data); err != nil {
			applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx, "Template execution failed", err,
				applog.ComponentTemplate, applog.OpRender, applog.LogFields{"template": p.name})
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

type templatePart struct {
	name string
	data any
}

// respond renders parts into b's body. A rendering failure replaces the
// whole response with a 500.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder, parts ...templatePart) {
	body, err := s.render(r.Context(), parts...)
	if err != nil {
		InternalServerError("Erro ao renderizar a página").Write(w)
		return
	}
	b.Header("Content-Type", "text/html; charset=utf-8").Body(body).Write(w)
}
