package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// publicRoutes defines path prefixes and methods that do not require a token.
// Registration and login must be reachable without one.
var publicRoutes = []struct {
	method string
	prefix string
}{
	{method: http.MethodPost, prefix: "/api/bff/auth/login"},
	{method: http.MethodPost, prefix: "/api/bff/auth/register"},
	{method: http.MethodGet, prefix: "/health"},
	{method: http.MethodGet, prefix: "/metrics"},
}

// isPublicRoute checks whether a given method + path combination is public.
func isPublicRoute(method, path string) bool {
	for _, route := range publicRoutes {
		if method == route.method && strings.HasPrefix(path, route.prefix) {
			return true
		}
	}
	// OPTIONS requests are always allowed (for CORS preflight).
	return method == http.MethodOptions
}

// JWTAuth returns middleware that validates bearer tokens locally before a
// request is forwarded. It is optional: when the BFF runs without it, the
// Authorization header passes through verbatim and the upstream decides.
func JWTAuth(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicRoute(r.Method, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeErrors(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeErrors(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			token, err := jwt.Parse(parts[1], func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("invalid bearer token",
					slog.String("path", r.URL.Path),
					slog.String("error", errString(err)),
				)
				writeErrors(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func errString(err error) string {
	if err != nil {
		return err.Error()
	}
	return ""
}
