package auth

import (
	"fmt"
	"net/http"
)

// AuthMiddleware is a middleware that checks for a valid JWT token and stores its claims in the context
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := ParseToken(r.Header.Get("Authorization"))
		if err == nil && !ValidRole(claims.Role) {
			err = fmt.Errorf("unknown role %q", claims.Role)
		}
		if err != nil {
			WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// RequireRole rejects callers whose role is not listed. It panics on a role
// missing from Roles so a misspelt guard fails at startup.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	for _, role := range roles {
		if !ValidRole(role) {
			panic(fmt.Sprintf("auth: unknown role %q", role))
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := GetClaimsFromToken(r)
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			WriteError(w, http.StatusForbidden, "Forbidden")
		})
	}
}
