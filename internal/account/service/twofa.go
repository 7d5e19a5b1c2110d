package service

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/pingpong42/account/internal/account/cache"
	"github.com/pingpong42/account/internal/account/domain"
	"github.com/pingpong42/account/internal/account/store"
	"github.com/pingpong42/account/pkg/cryptox"
)

const (
	// DefaultTicketTTL is how long a verification ticket stays valid.
	DefaultTicketTTL = 5 * time.Minute

	qrImageSize = 256

	ticketKeyPrefix = "2fa:verified:"
)

var (
	// ErrNotSetUp is returned when a user verifies before enrolling.
	ErrNotSetUp = errors.New("two-factor auth not set up")

	// ErrInvalidCode is returned when the submitted TOTP code is wrong.
	ErrInvalidCode = errors.New("invalid verification code")
)

// TwoFAService manages TOTP enrollment and verification. Secrets are sealed
// before they reach the database; successful verifications mint short-lived
// tickets whose fingerprints live in the cache.
type TwoFAService struct {
	Store  store.Store
	Cache  cache.Cache
	Sealer *cryptox.SecretBox

	// Issuer is the name shown in authenticator apps.
	Issuer string

	// TicketTTL defaults to five minutes when zero.
	TicketTTL time.Duration
}

func (s *TwoFAService) ticketTTL() time.Duration {
	if s.TicketTTL > 0 {
		return s.TicketTTL
	}
	return DefaultTicketTTL
}

// Setup generates a fresh TOTP secret for the user and returns the secret
// plus an inline QR code. Calling Setup again replaces the previous secret
// and resets the verified flag.
func (s *TwoFAService) Setup(ctx context.Context, user domain.User) (domain.TwoFASetup, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: accountName(user),
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.TwoFASetup{}, fmt.Errorf("generate totp key: %w", err)
	}

	sealed, err := s.Sealer.Seal(key.Secret())
	if err != nil {
		return domain.TwoFASetup{}, fmt.Errorf("seal totp secret: %w", err)
	}

	if err := s.Store.TwoFA().UpsertSecret(ctx, user.ID, sealed); err != nil {
		return domain.TwoFASetup{}, fmt.Errorf("store totp secret: %w", err)
	}

	qr, err := renderQRDataURI(key)
	if err != nil {
		return domain.TwoFASetup{}, err
	}

	return domain.TwoFASetup{
		QRURL:  qr,
		Secret: key.Secret(),
	}, nil
}

// accountName labels the enrollment in the authenticator app. The email is
// the most recognizable label; accounts without one fall back to the id.
func accountName(user domain.User) string {
	if user.Email != "" {
		return user.Email
	}
	return user.ID
}

// Verify checks a TOTP code and, on success, marks the enrollment verified
// and returns a ticket valid for the ticket TTL. The cache stores only the
// ticket's fingerprint.
func (s *TwoFAService) Verify(ctx context.Context, userID, code string) (string, error) {
	record, err := s.Store.TwoFA().GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrNotSetUp
		}
		return "", fmt.Errorf("load totp secret: %w", err)
	}

	secret, err := s.Sealer.Open(record.SecretKey)
	if err != nil {
		return "", fmt.Errorf("unseal totp secret: %w", err)
	}

	if !totp.Validate(code, secret) {
		return "", ErrInvalidCode
	}

	if !record.IsVerified {
		if err := s.Store.TwoFA().MarkVerified(ctx, userID); err != nil {
			return "", fmt.Errorf("mark verified: %w", err)
		}
	}

	ticket, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", fmt.Errorf("generate ticket: %w", err)
	}

	key := ticketKeyPrefix + userID
	if err := s.Cache.Set(ctx, key, cryptox.FingerprintToken(ticket), s.ticketTTL()); err != nil {
		return "", fmt.Errorf("cache ticket: %w", err)
	}

	return ticket, nil
}

// Status reports whether the user has a verified enrollment and whether the
// presented ticket is still live. An empty ticket or a user without an
// enrollment yields a negative status, never an error.
func (s *TwoFAService) Status(ctx context.Context, userID, ticket string) (domain.TwoFAStatus, error) {
	record, err := s.Store.TwoFA().GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TwoFAStatus{}, nil
		}
		return domain.TwoFAStatus{}, fmt.Errorf("load enrollment: %w", err)
	}

	status := domain.TwoFAStatus{Enabled: record.IsVerified}
	if ticket == "" {
		return status, nil
	}

	cached, ok, err := s.Cache.Get(ctx, ticketKeyPrefix+userID)
	if err != nil {
		return domain.TwoFAStatus{}, fmt.Errorf("read ticket cache: %w", err)
	}
	if !ok {
		return status, nil
	}

	fp := cryptox.FingerprintToken(ticket)
	if len(cached) == len(fp) && subtle.ConstantTimeCompare([]byte(cached), []byte(fp)) == 1 {
		status.Verified = true
	}
	return status, nil
}

// Disable removes the user's enrollment and any live ticket.
func (s *TwoFAService) Disable(ctx context.Context, userID string) error {
	if err := s.Cache.Delete(ctx, ticketKeyPrefix+userID); err != nil {
		return fmt.Errorf("drop ticket: %w", err)
	}
	err := s.Store.TwoFA().DeleteByUserID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotSetUp
	}
	return err
}

// renderQRDataURI renders the provisioning URI as an inline PNG data URI,
// ready for an <img> tag.
func renderQRDataURI(key *otp.Key) (string, error) {
	img, err := key.Image(qrImageSize, qrImageSize)
	if err != nil {
		return "", fmt.Errorf("render qr image: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode qr png: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
