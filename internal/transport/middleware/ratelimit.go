package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/wanderhub/internal"
	"github.com/frahmantamala/wanderhub/internal/transport"
	"github.com/go-chi/httprate"
)

// Throttle limits requests per client IP. A non-positive limit disables it.
func Throttle(limit int, window time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("rate limit exceeded", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
			_, body := internal.NewBadRequestError("Too many requests, retry later", internal.ErrCodeRateLimited).ToHTTPResponse()
			transport.WriteJSON(w, logger, http.StatusTooManyRequests, body)
		}),
	)
}
