package appMiddleware

import (
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimit allows burst requests per IP in a window sized so that the
// sustained rate is requestsPerSecond. A non-positive rate disables limiting.
// It expects chi's RealIP to have normalized RemoteAddr.
func RateLimit(requestsPerSecond float64, burst int, logger *slog.Logger) func(http.Handler) http.Handler {
	if requestsPerSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	requests := max(burst, int(math.Ceil(requestsPerSecond)), 1)
	window := time.Duration(float64(requests) / requestsPerSecond * float64(time.Second))

	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logger.WarnContext(r.Context(), "Rate limit exceeded",
				slog.String("ip", r.RemoteAddr),
				slog.String("path", r.URL.Path))
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
		}),
	)
}
