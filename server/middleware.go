package server

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/kmd/mea/observe"
)

// CorrelationIDHeader carries the request correlation id in both directions.
const CorrelationIDHeader = "X-Correlation-ID"

// CorrelationID reads the X-Correlation-ID header from the incoming request,
// generating a UUID when absent. The id is stored on the request context for
// the logger and echoed back in the response header.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(CorrelationIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(CorrelationIDHeader, id)
		next.ServeHTTP(w, r.WithContext(observe.WithCorrelationID(r.Context(), id)))
	})
}

// RequestLogger logs every completed request. Probe traffic is frequent, so
// successful probes log at debug and everything else at info.
func RequestLogger(logger observe.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []observe.Field{
				{Key: "method", Value: r.Method},
				{Key: "path", Value: r.URL.Path},
				{Key: "status", Value: status},
				{Key: "bytes", Value: ww.BytesWritten()},
				{Key: "latency_ms", Value: float64(time.Since(start).Microseconds()) / 1000},
				{Key: "remote_addr", Value: r.RemoteAddr},
			}
			if status == http.StatusOK {
				logger.Debug(r.Context(), "http request", fields...)
				return
			}
			logger.Info(r.Context(), "http request", fields...)
		})
	}
}
