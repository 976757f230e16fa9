// Package server exposes the layout engine over HTTP.
//
// Routes:
//
//	GET  /healthz
//	POST /v1/layout                               body: pipeline.Request
//	GET  /v1/companies/{companyID}/layout         query: strategy, direction, projects_outside, focus, hover,
//	                                              click, connector, density, zoom, collapsed, expanded
//	GET  /v1/companies/{companyID}/hierarchy      query: search, status, owner, active_only
//
// Layout endpoints answer with the render-ready JSON result, or with an SVG
// when called with format=svg. Errors are JSON objects {code, message} with
// the status derived from the error code.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/crmmap/pkg/buildinfo"
	"github.com/matzehuels/crmmap/pkg/config"
	crmerrors "github.com/matzehuels/crmmap/pkg/errors"
	"github.com/matzehuels/crmmap/pkg/observability"
	"github.com/matzehuels/crmmap/pkg/pipeline"
)

// Server serves the HTTP API.
type Server struct {
	Runner *pipeline.Runner
	Logger *log.Logger

	// Defaults holds the configured layout settings. Fields a layout
	// request leaves out, in its body or its query string, take these.
	Defaults pipeline.Request
}

// New returns a server backed by runner.
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{Runner: runner, Logger: logger}
}

// Handler returns the routed handler with middleware attached.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Route("/companies/{companyID}", func(r chi.Router) {
			r.Get("/layout", s.handleCompanyLayout)
			r.Get("/hierarchy", s.handleHierarchy)
		})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, crmerrors.New(crmerrors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	s.Logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "version": buildinfo.Version})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, err := pipeline.DecodeRequest(r.Body, s.Defaults)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.layout(w, r, req)
}

func (s *Server) handleCompanyLayout(w http.ResponseWriter, r *http.Request) {
	req, err := requestFromQuery(s.Defaults, chi.URLParam(r, "companyID"), r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.layout(w, r, req)
}

func (s *Server) layout(w http.ResponseWriter, r *http.Request, req pipeline.Request) {
	format, err := pipeline.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if format != pipeline.FormatJSON && format != pipeline.FormatSVG {
		s.writeError(w, r, crmerrors.New(crmerrors.ErrCodeInvalidFormat, "the API serves json or svg, not %s", format))
		return
	}

	res, err := s.Runner.Execute(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if format == pipeline.FormatSVG {
		svg, err := pipeline.RenderOne(r.Context(), res, pipeline.FormatSVG, r.URL.Query().Get("detailed") == "true")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(svg)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHierarchy(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	h, err := s.Runner.Hierarchy(r.Context(), chi.URLParam(r, "companyID"), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Code      crmerrors.Code `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := crmerrors.HTTPStatus(err)
	code := crmerrors.GetCode(err)
	if code == "" {
		code = crmerrors.ErrCodeInternal
	}
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, string(code), err)

	msg := message(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "path", r.URL.Path, "request_id", RequestID(r.Context()), "err", err)
		if code == crmerrors.ErrCodeInternal {
			msg = "internal error"
		}
	}
	writeJSON(w, status, errorBody{Code: code, Message: msg, RequestID: RequestID(r.Context())})
}

// message returns the user message of err followed by its cause, if any.
func message(err error) string {
	var e *crmerrors.Error
	if errors.As(err, &e) && e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return crmerrors.UserMessage(err)
}

// =============================================================================
// Middleware
// =============================================================================

type ctxKey int

const requestIDKey ctxKey = 0

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID returns the id assigned to the request carrying ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		dur := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, rec.status, dur)
		s.Logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration", dur.Round(time.Microsecond),
			"request_id", RequestID(r.Context()))
	})
}
