package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"tapstampr/internal/auth"
	"tapstampr/internal/httputil"
)

// publicPaths skip token verification
var publicPaths = map[string]bool{
	"/health": true,
}

// AuthMiddleware verifies the bearer token and attaches its subject as the
// user ID. With a nil verifier every request runs as the anonymous local
// user, whose folders live under the base storage key.
func AuthMiddleware(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil || publicPaths[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("request rejected", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, httputil.WithUserID(r, claims.GetUserID()))
		})
	}
}
