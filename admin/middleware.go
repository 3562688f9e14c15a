package admin

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Verifier checks a pair of admin credentials.
type Verifier interface {
	Verify(accessKey, secretKey string) error
}

// AuthMiddleware requires HTTP basic credentials accepted by verifier.
// A nil verifier leaves the API open.
func AuthMiddleware(verifier Verifier) func(http.Handler) http.Handler {
	if verifier == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accessKey, secretKey, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="wally-admin"`)
				HandleError(w, fmt.Errorf("%w: missing credentials", ErrUnauthorized))
				return
			}

			if err := verifier.Verify(accessKey, secretKey); err != nil {
				w.Header().Set("WWW-Authenticate", `Basic realm="wally-admin"`)
				HandleError(w, fmt.Errorf("%w: %w", ErrUnauthorized, err))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger logs one line per admin request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		slog.Info("admin request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
