package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/pingpong42/account/internal/account/domain"
	"github.com/pingpong42/account/internal/account/service"
	"github.com/pingpong42/account/pkg/api"
	"github.com/pingpong42/account/pkg/httpx"
	"github.com/pingpong42/account/pkg/slogx"
)

// UsersHandler owns the account lifecycle endpoints.
type UsersHandler struct {
	IdentityService *service.IdentityService
	TokenService    *service.TokenService
	TwoFAService    *service.TwoFAService
}

// HandleRegister handles POST /users/. It creates an account from a
// provider profile and returns a token pair.
func (h *UsersHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		api.NewError(http.StatusBadRequest,
			"user_id is required", api.ErrorCodeBadRequest).WriteError(w)
		return
	}

	user, err := h.IdentityService.Register(ctx, domain.Profile{
		UserID: req.UserID,
		Name:   req.Name,
		Email:  req.Email,
		Image:  req.Image,
	})
	if err != nil {
		if errors.Is(err, service.ErrAccountExists) {
			api.NewError(http.StatusBadRequest,
				"an account with this id already exists", api.ErrorCodeExistAccount).WriteError(w)
			return
		}
		log.Error("register failed", "user_id", req.UserID, "err", err)
		api.ErrServerError.WriteError(w)
		return
	}

	h.respondWithTokens(w, r, user, http.StatusCreated)
}

// HandleLogin handles POST /users/login/. It authenticates a known account
// and returns a token pair.
func (h *UsersHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		api.NewError(http.StatusBadRequest,
			"user_id is required", api.ErrorCodeBadRequest).WriteError(w)
		return
	}

	user, err := h.IdentityService.Authenticate(ctx, domain.Profile{
		UserID: req.UserID,
		Name:   req.Name,
		Email:  req.Email,
		Image:  req.Image,
	})
	if err != nil {
		if errors.Is(err, service.ErrUnknownIdentity) {
			api.NewError(http.StatusBadRequest,
				"no account exists for this id", api.ErrorCodeNotExistID).WriteError(w)
			return
		}
		log.Error("login failed", "user_id", req.UserID, "err", err)
		api.ErrServerError.WriteError(w)
		return
	}

	h.respondWithTokens(w, r, user, http.StatusOK)
}

// HandleGet handles GET /users/. Returns the authenticated account.
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := principalFromCtx(r.Context())
	if !ok {
		api.ErrInvalidToken.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleGetByID handles GET /users/{user_id}/. Looks up any account by id;
// the route is restricted to administrators.
func (h *UsersHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := r.PathValue("user_id")
	user, err := h.IdentityService.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrUnknownIdentity) {
			api.NewError(http.StatusBadRequest,
				"no account exists for this id", api.ErrorCodeNotExistID).WriteError(w)
			return
		}
		log.Error("user lookup failed", "user_id", userID, "err", err)
		api.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleDelete handles DELETE /users/. Removes the authenticated account
// and its 2FA enrollment.
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	user, ok := principalFromCtx(ctx)
	if !ok {
		api.ErrInvalidToken.WriteError(w)
		return
	}

	if err := h.IdentityService.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, service.ErrUnknownIdentity) {
			api.NewError(http.StatusBadRequest,
				"no account exists for this id", api.ErrorCodeNotExistID).WriteError(w)
			return
		}
		log.Error("delete failed", "user_id", user.ID, "err", err)
		api.ErrServerError.WriteError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleLogout handles POST /users/logout/. Revokes the submitted refresh
// token; the access token simply runs out its short lifetime.
func (h *UsersHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req api.LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		api.NewError(http.StatusBadRequest,
			"refresh_token is required", api.ErrorCodeTokenRequired).WriteError(w)
		return
	}

	if err := h.TokenService.Revoke(ctx, req.RefreshToken); err != nil {
		if errors.Is(err, service.ErrTokenInvalid) {
			api.ErrInvalidToken.WriteError(w)
			return
		}
		log.Error("logout failed", "err", err)
		api.ErrServerError.WriteError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleRefresh handles POST /users/token/refresh/. Exchanges a refresh
// token for a new pair.
func (h *UsersHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	// Any malformed refresh input is an authentication failure, not a
	// validation error.
	var req api.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		api.NewError(http.StatusUnauthorized,
			"refresh_token is required", api.ErrorCodeTokenRequired).WriteError(w)
		return
	}

	user, pair, err := h.TokenService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenExpired):
			api.ErrExpiredToken.WriteError(w)
		case errors.Is(err, service.ErrTokenInvalid):
			api.ErrInvalidToken.WriteError(w)
		default:
			log.Error("refresh failed", "err", err)
			api.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, api.TokenResponse{
		User:         toUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

func (h *UsersHandler) respondWithTokens(w http.ResponseWriter, r *http.Request, user domain.User, status int) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	pair, err := h.TokenService.Issue(ctx, user)
	if err != nil {
		log.Error("failed to issue tokens", "user_id", user.ID, "err", err)
		api.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, status, api.TokenResponse{
		User:         toUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

func toUserResponse(user domain.User) api.UserResponse {
	resp := api.UserResponse{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Image:     user.Image,
		IsActive:  user.IsActive,
		IsAdmin:   user.IsAdmin,
		Role:      roleName(user.RoleID),
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}
	if user.LastLogin != nil {
		resp.LastLogin = user.LastLogin.UTC().Format(time.RFC3339)
	}
	return resp
}

func roleName(roleID int64) string {
	switch roleID {
	case domain.RoleAdmin:
		return "admin"
	default:
		return "user"
	}
}
