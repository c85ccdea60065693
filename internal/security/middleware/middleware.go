package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/KarthikRajS32/vsurvey/internal/identity"
	"github.com/KarthikRajS32/vsurvey/internal/security/ratelimit"
)

type claimsContextKey struct{}

// TokenVerifier checks a bearer token and returns the claims it carries.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, tokenString string) (*identity.Claims, error)
}

// AuthMiddleware requires a valid bearer token on every non-public route
// and stores the verified claims in the request context.
func AuthMiddleware(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			token, err := identity.ExtractToken(r.Header.Get("Authorization"))
			if err != nil {
				writeError(w, http.StatusForbidden, "missing or malformed authorization header")
				return
			}

			claims, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				logger.Warn("token verification failed",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()))
				writeError(w, http.StatusForbidden, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// isPublicPath lists routes served without a token. The legacy
// delete-user route and the websocket feed handle auth themselves.
func isPublicPath(path string) bool {
	switch path {
	case "/", "/health", "/metrics", "/api/auth/login":
		return true
	}
	return strings.HasPrefix(path, "/delete-user/") ||
		strings.HasPrefix(path, "/ws/responses/")
}

// WithClaims returns a context carrying verified claims. Handlers that
// authenticate outside this middleware (the websocket feed) use it too.
func WithClaims(ctx context.Context, claims *identity.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// GetClaims returns the verified claims stored by AuthMiddleware,
// or nil when the request was served on a public route.
func GetClaims(ctx context.Context) *identity.Claims {
	claims, _ := ctx.Value(claimsContextKey{}).(*identity.Claims)
	return claims
}

// CallerEmail returns the authenticated caller's email, or "" when
// the request carried no claims.
func CallerEmail(ctx context.Context) string {
	if claims := GetClaims(ctx); claims != nil {
		return claims.Email
	}
	return ""
}

// RateLimitMiddleware throttles requests per authenticated caller.
// Anonymous requests on public routes share one bucket per remote host.
func RateLimitMiddleware(limiter *ratelimit.Limiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := CallerEmail(r.Context())
			if caller == "" {
				caller = "anon:" + remoteHost(r)
			}

			if !limiter.Allow(caller) {
				logger.Warn("rate limit exceeded", slog.String("caller", caller))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func remoteHost(r *http.Request) string {
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		host = host[:idx]
	}
	return host
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
