package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pingpong42/account/internal/account/domain"
	"github.com/pingpong42/account/internal/account/store"
)

var (
	// ErrAccountExists is returned by Register when the user id is taken.
	ErrAccountExists = errors.New("account already exists")

	// ErrUnknownIdentity is returned when no account matches the user id.
	ErrUnknownIdentity = errors.New("no account for this identity")
)

// IdentityService owns account records: creation, profile upserts and
// lookups. User ids are the identity provider's numeric ids rendered as
// strings, never generated locally.
type IdentityService struct {
	Store store.Store
}

// Register creates a new account from a provider profile. The account is
// created with the default user role. Returns ErrAccountExists when the id
// is already registered.
func (s *IdentityService) Register(ctx context.Context, profile domain.Profile) (domain.User, error) {
	if profile.UserID == "" {
		return domain.User{}, ErrUnknownIdentity
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:        profile.UserID,
		Name:      profile.Name,
		Email:     profile.Email,
		Image:     profile.Image,
		RoleID:    domain.RoleUser,
		IsActive:  true,
		CreatedAt: now,
		LastLogin: &now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrAccountExists
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Authenticate looks up the account for a provider profile, merges any
// fresh profile fields and records the login time. Returns
// ErrUnknownIdentity when the id is not registered.
func (s *IdentityService) Authenticate(ctx context.Context, profile domain.Profile) (domain.User, error) {
	if profile.UserID == "" {
		return domain.User{}, ErrUnknownIdentity
	}

	var user domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		existing, err := tx.Users().GetUserByID(ctx, profile.UserID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		merged := mergeProfile(existing, profile)
		merged.LastLogin = &now

		if err := tx.Users().UpdateUser(ctx, merged); err != nil {
			return err
		}
		user = merged
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUnknownIdentity
		}
		return domain.User{}, fmt.Errorf("authenticate: %w", err)
	}

	return user, nil
}

// Upsert authenticates the profile, creating the account first when it does
// not exist yet. Used by the OAuth callback, where both first-time and
// returning users arrive on the same path. A concurrent first login can make
// the create race; losing the race degrades to a plain authenticate.
func (s *IdentityService) Upsert(ctx context.Context, profile domain.Profile) (domain.User, error) {
	user, err := s.Authenticate(ctx, profile)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUnknownIdentity) {
		return domain.User{}, err
	}

	user, err = s.Register(ctx, profile)
	if err == nil {
		return user, nil
	}
	if errors.Is(err, ErrAccountExists) {
		return s.Authenticate(ctx, profile)
	}
	return domain.User{}, err
}

// Get fetches an account by id.
func (s *IdentityService) Get(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUnknownIdentity
		}
		return domain.User{}, err
	}
	return user, nil
}

// Delete removes an account and its 2FA enrollment.
func (s *IdentityService) Delete(ctx context.Context, userID string) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.TwoFA().DeleteByUserID(ctx, userID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return tx.Users().DeleteUser(ctx, userID)
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrUnknownIdentity
	}
	return err
}

// mergeProfile overlays non-empty profile fields onto the stored account.
// Empty fields mean the provider did not supply a value and must not erase
// stored data.
func mergeProfile(user domain.User, profile domain.Profile) domain.User {
	if profile.Name != "" {
		user.Name = profile.Name
	}
	if profile.Email != "" {
		user.Email = profile.Email
	}
	if profile.Image != "" {
		user.Image = profile.Image
	}
	return user
}
