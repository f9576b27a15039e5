package middleware

import (
	"net/http"

	"oder/internal/domain"
)

// Principal returns middleware that stamps every request with the configured
// user ID. There is no authentication layer yet; services still take the
// identity from context so one can be added without touching them.
func Principal(userID int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := domain.WithPrincipal(r.Context(), domain.ContextPrincipal{UserID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
