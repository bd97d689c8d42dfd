package server

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"findatex-hq/regcheck/pkg/telemetry/logging"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// responseWriter captures the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// instrument assigns a request ID, then logs and records metrics for the
// request under its route pattern. A client-supplied X-Request-ID is kept.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		req := r.WithContext(logging.WithRequestID(r.Context(), requestID))
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, req)

		// The mux sets Pattern on the request it was handed.
		route := req.Pattern
		if route == "" {
			route = "unmatched"
		}
		latency := time.Since(start)
		s.metrics.RecordHTTPRequest(route, rw.statusCode, latency)

		level := s.logger.Info
		switch {
		case rw.statusCode >= 500:
			level = s.logger.Error
		case rw.statusCode >= 400:
			level = s.logger.Warn
		}
		level("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"route", route,
			"status", rw.statusCode,
			"latency_ms", latency.Milliseconds(),
			"request_id", requestID,
			"remote_addr", r.RemoteAddr,
		)
	})
}

// recovery turns handler panics into 500 responses.
func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.ErrorContext(r.Context(), "panic in handler",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				writeError(w, http.StatusInternalServerError, "internal_error",
					"An internal error occurred.")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
