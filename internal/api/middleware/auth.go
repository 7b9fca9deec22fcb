package middleware

import (
	"context"
	"net/http"

	"github.com/gatherly/server/internal/auth"
	"github.com/gatherly/server/internal/domain/accounts"
	"github.com/rs/zerolog"
)

type contextKey string

const accountKey contextKey = "account"

// TokenValidator validates an access token and returns its claims.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// AccountLoader resolves an account id to a live account record.
type AccountLoader interface {
	GetByID(ctx context.Context, id string) (*accounts.Account, error)
}

// BearerAuth resolves the Authorization header to an account in the request
// context. No header means anonymous and the request proceeds; mutation
// handlers turn a missing account into 403 through the ownership check, so a
// 401 here is reserved for tokens that are present but unusable.
func BearerAuth(validator TokenValidator, loader AccountLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, err := auth.TokenFromHeader(header)
			if err != nil {
				unauthorized(w)
				return
			}

			claims, err := validator.Validate(token)
			if err != nil {
				unauthorized(w)
				return
			}

			account, err := loader.GetByID(r.Context(), claims.Subject)
			if err != nil {
				// Token is valid but the subject no longer exists.
				zerolog.Ctx(r.Context()).Warn().
					Str("subject", claims.Subject).
					Msg("token subject not found")
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), accountKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="gatherly"`)
	w.WriteHeader(http.StatusUnauthorized)
}

// AccountFromContext returns the authenticated account, or nil for anonymous
// requests.
func AccountFromContext(ctx context.Context) *accounts.Account {
	if account, ok := ctx.Value(accountKey).(*accounts.Account); ok {
		return account
	}
	return nil
}

// WithAccount stores an account in ctx. Used by tests to simulate an
// authenticated request without minting tokens.
func WithAccount(ctx context.Context, account *accounts.Account) context.Context {
	return context.WithValue(ctx, accountKey, account)
}
