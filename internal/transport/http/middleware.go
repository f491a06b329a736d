package httptransport

import (
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var (
	requestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulsely",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests grouped by route, method and status.",
	}, []string{"route", "method", "status"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pulsely",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	panicCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pulsely",
		Subsystem: "http",
		Name:      "panics_total",
		Help:      "Handler panics recovered by the middleware.",
	})
)

func init() {
	prometheus.MustRegister(requestCounter, requestDuration, panicCounter)
}

// Cors allows browser calls from a single configured origin. An empty origin
// disables CORS headers altogether.
func Cors(origin string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin != "" && (origin == "*" || r.Header.Get("Origin") == origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Authorization")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LogRequest logs method, path, status and duration of every request.
func LogRequest(logger logrus.FieldLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			begin := time.Now()
			resp := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(resp, r)

			entry := logger.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      resp.statusCode,
				"duration_ms": time.Since(begin).Milliseconds(),
			})
			if resp.statusCode >= http.StatusInternalServerError {
				entry.Warn("request served")
				return
			}
			entry.Debug("request served")
		})
	}
}

// PanicRecovery turns a handler panic into a 500 and logs the stack.
func PanicRecovery(logger logrus.FieldLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				if r := recover(); r != nil {
					panicCounter.Inc()
					logger.WithField("path", req.URL.Path).Errorf("http: panic serving request: %v\n%s", r, debug.Stack())
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"type":"server_error","detail":"internal server error"}` + "\n"))
				}
			}()
			next.ServeHTTP(w, req)
		})
	}
}

// RequestMetrics records request counts and latency labelled by route template.
func RequestMetrics() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			begin := time.Now()
			resp := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(resp, r)

			route := "unmatched"
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			requestDuration.WithLabelValues(route).Observe(time.Since(begin).Seconds())
			requestCounter.WithLabelValues(route, r.Method, strconv.Itoa(resp.statusCode)).Inc()
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (r *responseWriter) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	r.statusCode = statusCode
}
