package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/attendly/attendly/internal/auth"
	"github.com/attendly/attendly/internal/metrics"
	"github.com/attendly/attendly/internal/model"
)

const (
	// minAuthDuration is the minimum time to spend on auth to prevent timing attacks.
	minAuthDuration = 50 * time.Millisecond
)

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger     *slog.Logger
	Tokens     *auth.TokenManager
	Metrics    metrics.Recorder
	CookieName string
}

// Auth returns a middleware that authenticates requests with a session
// token, taken from the Authorization header or the session cookie.
// On success the resolved AuthContext is injected into the request.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()

			// Ensure consistent timing regardless of outcome
			defer func() {
				elapsed := time.Since(startTime)
				if elapsed < minAuthDuration {
					time.Sleep(minAuthDuration - elapsed)
				}
			}()

			raw := extractToken(r, cfg.CookieName)
			if raw == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				recorder.IncTokenRejected("missing")
				writeAuthError(w)
				return
			}

			claims, err := cfg.Tokens.Validate(r.Context(), raw)
			if err != nil {
				reason := rejectionReason(err)
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				recorder.IncTokenRejected(reason)
				writeAuthError(w)
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				recorder.IncTokenRejected("invalid")
				writeAuthError(w)
				return
			}

			authCtx := &model.AuthContext{
				UserID:      userID,
				IsOrganiser: claims.IsOrganiser,
				TokenID:     claims.ID,
			}

			cfg.Logger.Debug("authentication successful",
				slog.Int64("user_id", authCtx.UserID),
				slog.Bool("is_organiser", authCtx.IsOrganiser),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithAuth(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireOrganiser returns middleware that restricts a route to
// organiser accounts. Must be applied after Auth.
func RequireOrganiser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := auth.AuthFromContext(r.Context())
			if authCtx == nil {
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}

			if !authCtx.IsOrganiser {
				writeJSONError(w, http.StatusForbidden, "FORBIDDEN", "Organiser role required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractToken pulls the session token from the Authorization header,
// falling back to the session cookie.
func extractToken(r *http.Request, cookieName string) string {
	if token, err := auth.TokenFromHeader(r.Header.Get("Authorization")); err == nil {
		return token
	}
	if cookieName != "" {
		if cookie, err := r.Cookie(cookieName); err == nil {
			return cookie.Value
		}
	}
	return ""
}

// rejectionReason classifies a validation error for logs and metrics.
// The HTTP response stays uniform; only internal telemetry sees the
// distinction.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		return "revoked"
	case errors.Is(err, auth.ErrMissingToken):
		return "missing"
	default:
		return "invalid"
	}
}

// writeAuthError writes a generic 401 without exposing which check failed.
func writeAuthError(w http.ResponseWriter) {
	writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
}

// writeJSONError writes a minimal structured error response.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":{"code":"` + code + `","message":"` + message + `"}}`))
}
