// Package api exposes the voice command parser over HTTP next to the health,
// readiness and metrics endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "shopsense-voice/internal/common/errors"
	"shopsense-voice/internal/common/logger"
	"shopsense-voice/internal/common/observability"
	"shopsense-voice/internal/common/validation"
	"shopsense-voice/internal/models"
)

const (
	ParsePath     = "/api/v1/voice/parse"
	RequestHeader = "X-Request-ID"

	maxBodyBytes = 1 << 20
)

// Parser executes a decoded parse request.
type Parser interface {
	Execute(ctx context.Context, req *models.ParseRequest) (*models.ParseResponse, error)
}

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

type Options struct {
	Parser       Parser
	Checks       map[string]Check
	ParseTimeout time.Duration
	Gatherer     prometheus.Gatherer
	Obs          *observability.Observability
	Logger       logger.Logger
}

type Server struct {
	parser       Parser
	checks       map[string]Check
	parseTimeout time.Duration
	obs          *observability.Observability
	logger       logger.Logger
	handler      http.Handler
}

func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	if opts.Obs == nil {
		opts.Obs = observability.Noop()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.ParseTimeout <= 0 {
		opts.ParseTimeout = 10 * time.Second
	}

	s := &Server{
		parser:       opts.Parser,
		checks:       opts.Checks,
		parseTimeout: opts.ParseTimeout,
		obs:          opts.Obs,
		logger:       opts.Logger.With(map[string]interface{}{"component": "api"}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+ParsePath, s.handleParse)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	s.handler = s.withRequestID(mux)
	return s
}

func (s *Server) Handler() http.Handler { return s.handler }

// Run serves on addr until ctx is cancelled, then drains for up to
// shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, readTimeout, writeTimeout, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
	}

	s.logger.Info("http server listening", map[string]interface{}{"address": addr})
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

type ctxKey struct{}

// RequestID returns the id assigned to the request carrying ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestHeader, id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))

		s.logger.Debug("http request", map[string]interface{}{
			"requestId":  id,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"durationMs": time.Since(start).Milliseconds(),
		})
	})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, apperrors.NewInvalidInputError("read body: "+err.Error()))
		return
	}

	req, err := validation.DecodeParseRequest(body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.parseTimeout)
	defer cancel()

	resp, err := s.parser.Execute(ctx, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.obs.RecordParse(ctx, "api", string(resp.Command.Intent), resp.Command.Source)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failed := map[string]string{}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		s.logger.Warn("readiness check failed", map[string]interface{}{"checks": failed})
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "not_ready",
			"checks": failed,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

type errorBody struct {
	Error     *apperrors.StandardError `json:"error"`
	RequestID string                   `json:"requestId"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := apperrors.AsStandardError(err)
	status := apperrors.HTTPStatus(stdErr.Code)

	fields := map[string]interface{}{
		"requestId": RequestID(r.Context()),
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
		"status":    status,
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("parse request failed", fields)
	} else {
		s.logger.Warn("parse request rejected", fields)
	}

	writeJSON(w, status, errorBody{Error: stdErr, RequestID: RequestID(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
