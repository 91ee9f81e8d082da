package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"securiguard/pkg/logger"
)

// RequestLogger logs each request with method, path, status and latency
func RequestLogger(log *logger.Logger) func(next http.Handler) http.Handler {
	requestLog := log.WithComponent("http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				var event *zerolog.Event
				if ww.Status() >= http.StatusInternalServerError {
					event = requestLog.Error()
				} else {
					event = requestLog.Info()
				}
				event.
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("remote", r.RemoteAddr).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("latency", time.Since(start)).
					Str("request_id", chimiddleware.GetReqID(r.Context())).
					Msg("Request handled")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
