package http

import (
	"errors"
	"net/http"

	"github.com/pingpong42/account/internal/account/service"
	"github.com/pingpong42/account/pkg/api"
	"github.com/pingpong42/account/pkg/httpx"
	"github.com/pingpong42/account/pkg/slogx"
)

// OAuthHandler drives the provider login flow.
type OAuthHandler struct {
	OAuthService    *service.OAuthService
	IdentityService *service.IdentityService
	TokenService    *service.TokenService
}

// HandleLogin handles GET /oauth/login/. It hands the frontend the
// parameters for the provider's authorize redirect.
func (h *OAuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	params := h.OAuthService.LoginParams()
	httpx.WriteJSON(w, http.StatusOK, api.OAuthLoginResponse{
		ClientID:    params.ClientID,
		RedirectURI: params.RedirectURI,
	})
}

// HandleCallback handles GET /oauth/login/callback/. It exchanges the
// authorization code, upserts the account and returns a token pair.
func (h *OAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	profile, err := h.OAuthService.Callback(ctx, r.URL.Query().Get("code"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingCode):
			api.NewError(http.StatusBadRequest,
				"authorization code is missing", api.ErrorCodeOAuthNoCode).WriteError(w)
		case errors.Is(err, service.ErrExchangeFailed):
			api.NewError(http.StatusBadRequest,
				"authorization code was rejected by the provider", api.ErrorCodeOAuthFailed).WriteError(w)
		default:
			log.Error("oauth callback failed", "err", err)
			api.ErrServerError.WriteError(w)
		}
		return
	}

	user, err := h.IdentityService.Upsert(ctx, profile)
	if err != nil {
		log.Error("failed to upsert account", "user_id", profile.UserID, "err", err)
		api.ErrServerError.WriteError(w)
		return
	}

	pair, err := h.TokenService.Issue(ctx, user)
	if err != nil {
		log.Error("failed to issue tokens", "user_id", user.ID, "err", err)
		api.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, api.TokenResponse{
		User:         toUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}
