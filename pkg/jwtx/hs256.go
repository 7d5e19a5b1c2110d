package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// minSecretBytes is the floor for the HMAC secret. Anything shorter than the
// hash output weakens the MAC for no benefit.
const minSecretBytes = 32

// HS256 signs and verifies tokens with a single shared secret. Forging a
// token without the secret fails signature validation deterministically.
type HS256 struct {
	secret []byte
	issuer string
}

// NewHS256 builds the codec. The secret must carry at least 32 bytes.
func NewHS256(secret []byte, issuer string) (*HS256, error) {
	if len(secret) < minSecretBytes {
		return nil, fmt.Errorf("jwtx: signing secret must be at least %d bytes, got %d",
			minSecretBytes, len(secret))
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &HS256{secret: key, issuer: issuer}, nil
}

func (h *HS256) Alg() string { return "HS256" }

// Issuer returns the iss value the codec stamps and enforces.
func (h *HS256) Issuer() string { return h.issuer }

// Sign produces a compact serialized JWT for the claims.
func (h *HS256) Sign(c Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := tok.SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// Verify parses the token, checks signature, expiry, and issuer, and returns
// the claims. Errors map onto the package sentinels so callers can
// distinguish "expired" from "forged or garbled".
func (h *HS256) Verify(raw string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrAlgMismatch
		}
		return h.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	if h.issuer != "" && claims.Issuer != h.issuer {
		return Claims{}, ErrIssuer
	}

	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, ErrAlgMismatch):
		return ErrAlgMismatch
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
}
