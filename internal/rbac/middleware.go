package rbac

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/cbmgo/financeiro/internal/auth"
	"github.com/cbmgo/financeiro/internal/platform/httpx"
	"github.com/cbmgo/financeiro/internal/shared"
)

// Middleware wires bearer-token authentication and permission checks for
// HTTP handlers. Permission checks run against the token's claim snapshot,
// not a live database lookup.
type Middleware struct {
	Tokens *auth.TokenManager
	Logger *slog.Logger
}

// RequireAuth verifies the bearer token and stores the principal in the
// request context. Missing, malformed, badly signed and expired tokens all
// collapse to a 401.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			httpx.Error(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "invalid authorization header")
			return
		}

		claims, err := m.Tokens.Verify(tokenString)
		if err != nil {
			httpx.Error(w, http.StatusUnauthorized, "invalid token")
			return
		}
		userID, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Error("rbac parse token subject", slog.String("subject", claims.Subject))
			}
			httpx.Error(w, http.StatusUnauthorized, "invalid token")
			return
		}

		principal := shared.Principal{UserID: userID, Permissions: claims.Permissions}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
	})
}

// RequireAny ensures the caller holds at least one of the required
// permission actions (logical OR). An empty requirement list is vacuously
// authorized.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			principal, ok := shared.PrincipalFromContext(r.Context())
			if !ok {
				httpx.Error(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			if !principal.HasAny(perms) {
				httpx.Error(w, http.StatusForbidden, "missing required permission")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
