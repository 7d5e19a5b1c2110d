package domain

// TwoFactorAuth is the stored 2FA enrollment for a user (at most one per
// user). SecretKey is sealed before it hits the database and is never
// returned to callers after setup.
type TwoFactorAuth struct {
	UserID     string
	SecretKey  string // sealed TOTP secret
	IsVerified bool
}

// TwoFASetup is returned once, at enrollment time. QRURL is a PNG data URI
// of the provisioning QR code; Secret is the raw base32 secret for manual
// entry.
type TwoFASetup struct {
	QRURL  string `json:"qr_url"`
	Secret string `json:"secret"`
}

// TwoFAStatus reports whether 2FA is enabled and whether the caller holds a
// verification ticket that is still live.
type TwoFAStatus struct {
	Enabled  bool `json:"is_enabled"`
	Verified bool `json:"is_verified"`
}
