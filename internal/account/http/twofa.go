package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pingpong42/account/internal/account/service"
	"github.com/pingpong42/account/pkg/api"
	"github.com/pingpong42/account/pkg/httpx"
	"github.com/pingpong42/account/pkg/slogx"
)

// ticketHeader carries the verification ticket minted by HandleVerify.
const ticketHeader = "X-2FA-Token"

// TwoFAHandler owns the TOTP enrollment and verification endpoints.
// Every route requires an authenticated principal.
type TwoFAHandler struct {
	TwoFAService *service.TwoFAService
}

// HandleSetup handles GET /twofa/setup/. Generates a fresh secret and
// returns it with an inline QR code.
func (h *TwoFAHandler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	user, ok := principalFromCtx(ctx)
	if !ok {
		api.ErrInvalidToken.WriteError(w)
		return
	}

	setup, err := h.TwoFAService.Setup(ctx, user)
	if err != nil {
		log.Error("twofa setup failed", "user_id", user.ID, "err", err)
		api.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, api.TwoFASetupResponse{
		QRURL:  setup.QRURL,
		Secret: setup.Secret,
	})
}

// HandleVerify handles POST /twofa/verify/. Checks a TOTP code and returns
// a short-lived ticket on success.
func (h *TwoFAHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	user, ok := principalFromCtx(ctx)
	if !ok {
		api.ErrInvalidToken.WriteError(w)
		return
	}

	var req api.TwoFAVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		api.NewError(http.StatusBadRequest,
			"code is required", api.ErrorCodeBadRequest).WriteError(w)
		return
	}

	ticket, err := h.TwoFAService.Verify(ctx, user.ID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotSetUp):
			api.NewError(http.StatusBadRequest,
				"two-factor auth has not been set up", api.ErrorCodeNotSetUp).WriteError(w)
		case errors.Is(err, service.ErrInvalidCode):
			httpx.WriteJSON(w, http.StatusBadRequest, api.TwoFAVerifyResponse{
				Success: false,
				Message: "invalid verification code",
			})
		default:
			log.Error("twofa verify failed", "user_id", user.ID, "err", err)
			api.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, api.TwoFAVerifyResponse{
		Success:   true,
		TempToken: ticket,
	})
}

// HandleStatus handles GET /twofa/status/. Reads the ticket from the
// X-2FA-Token header; a missing or stale ticket is not an error, just an
// unverified status.
func (h *TwoFAHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	user, ok := principalFromCtx(ctx)
	if !ok {
		api.ErrInvalidToken.WriteError(w)
		return
	}

	status, err := h.TwoFAService.Status(ctx, user.ID, r.Header.Get(ticketHeader))
	if err != nil {
		log.Error("twofa status failed", "user_id", user.ID, "err", err)
		api.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, api.TwoFAStatusResponse{
		Enabled:  status.Enabled,
		Verified: status.Verified,
	})
}

// HandleDisable handles DELETE /twofa/setup/. Drops the enrollment and any
// live ticket.
func (h *TwoFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	user, ok := principalFromCtx(ctx)
	if !ok {
		api.ErrInvalidToken.WriteError(w)
		return
	}

	if err := h.TwoFAService.Disable(ctx, user.ID); err != nil {
		if errors.Is(err, service.ErrNotSetUp) {
			api.NewError(http.StatusBadRequest,
				"two-factor auth has not been set up", api.ErrorCodeNotSetUp).WriteError(w)
			return
		}
		log.Error("twofa disable failed", "user_id", user.ID, "err", err)
		api.ErrServerError.WriteError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
