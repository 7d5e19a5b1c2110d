package store

import (
	"context"
	"errors"

	"github.com/pingpong42/account/internal/account/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	Roles() Roles
	TwoFA() TwoFA
	TokenBlacklist() TokenBlacklist

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to run multi-step operations that must be atomic
	// (e.g. the login upsert).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by its external provider ID.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// CreateUser inserts a new user. A duplicate primary key surfaces as
	// ErrAlreadyExists so callers can fall back to an update.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser overwrites the mutable profile fields (name, email, image,
	// last_login, is_active).
	UpdateUser(ctx context.Context, u domain.User) error

	// DeleteUser removes the user; the twofa row cascades per schema.
	DeleteUser(ctx context.Context, userID string) error

	// CountUsers returns the total number of users.
	CountUsers(ctx context.Context) (int64, error)
}

type Roles interface {
	// GetRoleByID fetches a role by its well-known ID.
	GetRoleByID(ctx context.Context, id int64) (domain.Role, error)

	// GetRoleByName fetches a role by name.
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	// ListAll returns all roles in the system.
	ListAll(ctx context.Context) ([]domain.Role, error)
}

type TwoFA interface {
	// GetByUserID returns the user's 2FA record, ErrNotFound if never set up.
	GetByUserID(ctx context.Context, userID string) (domain.TwoFactorAuth, error)

	// UpsertSecret stores a freshly sealed secret for the user and resets
	// is_verified, invalidating any previous enrollment.
	UpsertSecret(ctx context.Context, userID string, sealedSecret string) error

	// MarkVerified flips is_verified after a successful code check.
	MarkVerified(ctx context.Context, userID string) error

	// DeleteByUserID removes the enrollment.
	DeleteByUserID(ctx context.Context, userID string) error
}

type TokenBlacklist interface {
	// Add records a revoked refresh token until its natural expiry.
	Add(ctx context.Context, e domain.BlacklistEntry) error

	// Contains reports whether a jti has been revoked.
	Contains(ctx context.Context, jti string) (bool, error)

	// DeleteExpired is housekeeping; entries past their expiry are dead weight.
	DeleteExpired(ctx context.Context) error
}
