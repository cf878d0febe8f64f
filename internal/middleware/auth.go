package middleware

import (
	"context"
	"net/http"

	"github.com/filegate/service/internal/auth"
	"github.com/filegate/service/internal/response"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

// identityKey is the context key for the authenticated caller identity.
const identityKey contextKey = "identity"

// RequireAuth returns middleware that validates the bearer token against the
// token store and injects the caller identity into the request context.
// No downstream work happens without a valid identity.
func RequireAuth(validator *auth.Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := validator.Validate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				response.AppError(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom extracts the authenticated caller identity from the context.
func IdentityFrom(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*auth.Identity)
	return id, ok
}
