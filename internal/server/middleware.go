package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apierrors "bookstand/internal/errors"
	"bookstand/internal/models"
	"bookstand/internal/session"
)

// AuthMiddleware validates a bearer token when one is supplied and adds the
// identity it carries to the request context. Requests without a token pass
// through anonymously; whether an identity is required is each handler's
// decision, since the browse endpoints are public and only admin actions are
// gated.
func AuthMiddleware(jwtSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeError(w, apierrors.Unauthorized("Invalid authorization header"))
				return
			}

			user, err := session.ParseToken(jwtSecret, parts[1])
			if err != nil {
				writeError(w, apierrors.Unauthorized("Invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), models.UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// LogRequests logs one line per request.
func LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.InfoContext(r.Context(), "Request",
			"method", r.Method, "path", r.URL.Path,
			"status", rec.status, "dur", time.Since(start))
	})
}
