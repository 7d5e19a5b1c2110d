package domain

import "time"

// TokenPair is what token issuance returns: a short-lived access token and a
// longer-lived refresh token, both signed JWTs.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // access token lifetime in seconds
}

// BlacklistEntry is a revoked refresh token, keyed by its jti claim. Entries
// only need to live until the token itself would have expired; housekeeping
// prunes the rest.
type BlacklistEntry struct {
	JTI       string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
