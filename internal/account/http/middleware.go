package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/pingpong42/account/internal/account/domain"
	"github.com/pingpong42/account/internal/account/service"
	"github.com/pingpong42/account/pkg/api"
	"github.com/pingpong42/account/pkg/httpx"
	"github.com/pingpong42/account/pkg/slogx"
)

type principalKey struct{}

// principalFromCtx returns the account loaded by RequirePrincipal.
func principalFromCtx(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(principalKey{}).(domain.User)
	return u, ok
}

// RequirePrincipal loads the account named by the verified token and checks
// it is a live session. Runs after AuthnMiddleware, which already rejected
// requests without valid claims.
func RequirePrincipal(identity *service.IdentityService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			claims, ok := httpx.ClaimsFromCtx(ctx)
			if !ok {
				api.ErrInvalidToken.WriteError(w)
				return
			}

			user, err := identity.Get(ctx, claims.Subject)
			if err != nil {
				if errors.Is(err, service.ErrUnknownIdentity) {
					api.ErrInvalidToken.WriteError(w)
					return
				}
				log.Error("failed to load principal", "user_id", claims.Subject, "err", err)
				api.ErrServerError.WriteError(w)
				return
			}

			if !service.LoginRequired(user, claims) {
				api.ErrInvalidToken.WriteError(w)
				return
			}

			ctx = context.WithValue(ctx, principalKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects sessions whose account is not an administrator.
// Runs after RequirePrincipal.
func RequireAdmin() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			user, ok := principalFromCtx(ctx)
			claims, hasClaims := httpx.ClaimsFromCtx(ctx)
			if !ok || !hasClaims {
				api.ErrInvalidToken.WriteError(w)
				return
			}

			if !service.AdminRequired(user, claims) {
				api.ErrForbidden.WriteError(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
