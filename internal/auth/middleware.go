package auth

import (
	"net/http"

	applog "spesa/internal/log"
)

// Middleware rejects requests without a valid bearer token. Paths for which
// skip returns true pass through unauthenticated.
func Middleware(a *Authenticator, skip func(*http.Request) bool, onFail func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip != nil && skip(r) {
				next.ServeHTTP(w, r)
				return
			}
			token, err := BearerToken(r)
			if err == nil {
				var claims *Claims
				if claims, err = a.Verify(token); err == nil {
					next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
					return
				}
			}
			applog.FromContext(r.Context()).WithComponent(applog.ComponentAuth).
				WarnContext(r.Context(), "Rejected unauthenticated request",
					applog.FieldPath, r.URL.Path,
					applog.FieldError, err)
			onFail(w, r, err)
		})
	}
}
