package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hongminglow/mposter-be/internal/logger"
)

// Logging writes one access line per request once the handler has returned.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		logger.Infof("%s %s %d %s reqid=%s",
			r.Method, r.URL.Path, status, time.Since(start).Truncate(time.Microsecond), chimw.GetReqID(r.Context()))
	})
}
