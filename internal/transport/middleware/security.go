package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/wanderhub/internal"
	"github.com/frahmantamala/wanderhub/internal/transport"
	"github.com/unrolled/secure"
)

// SecureHeaders sets the usual hardening headers on every response.
func SecureHeaders(logger *slog.Logger, isDevelopment bool) func(http.Handler) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:      isDevelopment,
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := secureMiddleware.Process(w, r); err != nil {
				logger.Warn("secure headers blocked request", "path", r.URL.Path, "error", err)
				transport.WriteError(w, r, logger, internal.NewBadRequestError("Request rejected", internal.ErrCodeBadRequest))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
