package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

type statusWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

// requestLogger logs every request and records it in the metrics.
func (h *handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		elapsed := time.Since(start)
		route := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}
		h.metrics.ObserveRequest(route, r.Method, sw.status, elapsed)

		h.logger.Info(fmt.Sprintf("%s %s -> %d", r.Method, r.URL.Path, sw.status),
			zap.String("op", "server.requestLogger"),
			zap.String("requestId", requestID),
			zap.String("route", route),
			zap.String("remoteAddr", r.RemoteAddr),
			zap.Int("status", sw.status),
			zap.Int64("responseSize", sw.written),
			zap.Duration("duration", elapsed),
		)
	})
}

// corsHandler allows the configured origins. A "*" entry allows any
// non-empty origin; no entries disables cross-origin access.
func (h *handler) corsHandler() func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}

	for _, origin := range h.cfg.CORSOrigins {
		if origin == "*" {
			options.AllowOriginFunc = func(r *http.Request, origin string) bool {
				return origin != ""
			}
			break
		}
	}
	if options.AllowOriginFunc == nil {
		if len(h.cfg.CORSOrigins) > 0 {
			options.AllowedOrigins = h.cfg.CORSOrigins
		} else {
			// An empty AllowedOrigins list would mean "*".
			options.AllowOriginFunc = func(r *http.Request, origin string) bool {
				return false
			}
		}
	}
	return cors.Handler(options)
}

// rateLimiter limits requests per client IP. It is a pass-through when
// rate limiting is disabled.
func (h *handler) rateLimiter() func(http.Handler) http.Handler {
	if !h.cfg.RateLimit.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		h.cfg.RateLimit.Requests,
		h.cfg.RateLimitWindow(),
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			h.respondErrorWithOp(w, http.StatusTooManyRequests, "rate limit exceeded", "server.rateLimiter")
		}),
	)
}
