package service

import (
	"github.com/pingpong42/account/internal/account/domain"
	"github.com/pingpong42/account/pkg/jwtx"
)

// LoginRequired reports whether the claims represent a live session for an
// active account. The token subject must match the loaded account.
func LoginRequired(user domain.User, claims jwtx.Claims) bool {
	if claims.Subject == "" || claims.Subject != user.ID {
		return false
	}
	if claims.TokenType != jwtx.TokenTypeAccess {
		return false
	}
	if err := claims.ValidateExpiry(); err != nil {
		return false
	}
	return user.IsActive
}

// AdminRequired reports whether the session belongs to an administrator.
// Admin status comes from the stored account, not from the token, so a
// demotion takes effect on the next request.
func AdminRequired(user domain.User, claims jwtx.Claims) bool {
	return LoginRequired(user, claims) && user.IsAdmin
}
