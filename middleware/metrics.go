package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/Mishael-Joe/soraxi/metrics"
)

// statusRecorder remembers the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware counts requests and observes latency per route template.
func MetricsMiddleware(m *metrics.ServerMetrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := r.URL.Path
			if current := mux.CurrentRoute(r); current != nil {
				if template, err := current.GetPathTemplate(); err == nil {
					route = template
				}
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)

			elapsed := float64(time.Since(start).Milliseconds())
			m.Requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
			m.LatencyMS.WithLabelValues(route).Observe(elapsed)
		})
	}
}
