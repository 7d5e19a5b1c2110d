// Package api defines the wire types shared by the account service handlers
// and its clients.
package api

// ErrorResponse is the uniform error payload returned by every endpoint.
type ErrorResponse struct {
	// Detail is a human-readable description of the error
	Detail string `json:"detail"`

	// Code is a stable machine-readable error code (e.g. "exist_account")
	Code string `json:"code"`
}

// OAuthLoginResponse carries the parameters a frontend needs to redirect the
// browser to the identity provider's authorize page.
type OAuthLoginResponse struct {
	ClientID    string `json:"client_id"`
	RedirectURI string `json:"redirect_uri"`
}

// UserResponse is the public representation of an account.
type UserResponse struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Image     string `json:"image,omitempty"`
	IsActive  bool   `json:"is_active"`
	IsAdmin   bool   `json:"is_admin"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
	LastLogin string `json:"last_login,omitempty"`
}

// RegisterRequest creates a new account from a provider profile.
type RegisterRequest struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Image  string `json:"image,omitempty"`
}

// LoginRequest authenticates an existing provider profile, upserting the
// stored profile fields along the way.
type LoginRequest struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Image  string `json:"image,omitempty"`
}

// TokenResponse is returned by register, login and refresh.
type TokenResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
}

// RefreshRequest exchanges a refresh token for a fresh token pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest revokes a refresh token.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TwoFASetupResponse carries the provisioning material for an authenticator
// app. QRURL is a data URI containing an inline PNG.
type TwoFASetupResponse struct {
	QRURL  string `json:"qr_url"`
	Secret string `json:"secret"`
}

// TwoFAVerifyRequest submits a TOTP code for verification.
type TwoFAVerifyRequest struct {
	Code string `json:"code"`
}

// TwoFAVerifyResponse reports the verification outcome. TempToken is a
// short-lived ticket the client presents via the X-2FA-Token header.
type TwoFAVerifyResponse struct {
	Success   bool   `json:"success"`
	TempToken string `json:"temp_token,omitempty"`
	Message   string `json:"message,omitempty"`
}

// TwoFAStatusResponse reports whether 2FA is enabled for the account and
// whether the presented ticket is currently valid.
type TwoFAStatusResponse struct {
	Enabled  bool `json:"is_enabled"`
	Verified bool `json:"is_verified"`
}

// HealthResponse is returned by the readiness endpoint.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
