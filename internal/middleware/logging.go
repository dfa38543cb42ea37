package middleware

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/detailing-desk/internal/metrics"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush and Hijack pass through so the sockjs streaming and websocket
// transports keep working behind the logger.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

type routeKey struct{}

type routeHolder struct {
	pattern string
}

// Route wraps the mux and reports the matched pattern back to Logging, which
// would otherwise only see its own copy of the request.
func Route(mux http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r)
		if h, ok := r.Context().Value(routeKey{}).(*routeHolder); ok {
			h.pattern = r.Pattern
		}
	})
}

// Logging assigns a request id, logs one line per request and records the
// request in m, labelled by the matched route pattern.
func Logging(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
				r.Header.Set(RequestIDHeader, requestID)
			}
			w.Header().Set(RequestIDHeader, requestID)

			holder := &routeHolder{}
			req := r.WithContext(context.WithValue(r.Context(), routeKey{}, holder))
			writer := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(writer, req)
			duration := time.Since(start)

			route := holder.pattern
			if route == "" {
				route = req.Pattern
			}
			if route == "" {
				route = "unmatched"
			}
			m.ObserveRequest(r.Method, route, writer.status, duration)

			entry := log.WithFields(log.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      writer.status,
				"duration_ms": duration.Milliseconds(),
				"request_id":  requestID,
				"ip":          getClientIP(r),
			})
			if writer.status >= http.StatusInternalServerError {
				entry.Warn("request")
			} else {
				entry.Debug("request")
			}
		})
	}
}

// Chain applies middlewares so the first one listed is the outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
