package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pingpong42/account/internal/account/domain"
	"github.com/pingpong42/account/internal/account/service"
	"github.com/pingpong42/account/pkg/jwtx"
)

func TestAccessPredicates(t *testing.T) {
	now := time.Now().UTC()

	activeUser := domain.User{ID: "1001", IsActive: true}
	adminUser := domain.User{ID: "1002", IsActive: true, IsAdmin: true}
	inactiveAdmin := domain.User{ID: "1003", IsActive: false, IsAdmin: true}

	accessFor := func(id string) jwtx.Claims {
		return jwtx.NewAccessClaims(id, "user", domain.RoleUser, time.Hour, "test", now)
	}

	tests := []struct {
		name      string
		user      domain.User
		claims    jwtx.Claims
		wantLogin bool
		wantAdmin bool
	}{
		{
			name:      "active user with matching token",
			user:      activeUser,
			claims:    accessFor("1001"),
			wantLogin: true,
		},
		{
			name:      "admin with matching token",
			user:      adminUser,
			claims:    accessFor("1002"),
			wantLogin: true,
			wantAdmin: true,
		},
		{
			name:   "subject mismatch",
			user:   activeUser,
			claims: accessFor("9999"),
		},
		{
			name:   "refresh token rejected",
			user:   activeUser,
			claims: jwtx.NewRefreshClaims("1001", time.Hour, "test", now),
		},
		{
			name:   "expired token",
			user:   activeUser,
			claims: jwtx.NewAccessClaims("1001", "user", domain.RoleUser, time.Minute, "test", now.Add(-time.Hour)),
		},
		{
			name:   "inactive account blocks even admins",
			user:   inactiveAdmin,
			claims: accessFor("1003"),
		},
		{
			name:   "empty claims",
			user:   activeUser,
			claims: jwtx.Claims{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.wantLogin, service.LoginRequired(tt.user, tt.claims))
			require.Equal(t, tt.wantAdmin, service.AdminRequired(tt.user, tt.claims))
		})
	}
}
