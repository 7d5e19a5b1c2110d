package domain

import "time"

// Well-known role IDs, seeded by migration at startup so concurrent
// first-logins never race on role creation.
const (
	RoleAdmin int64 = 1
	RoleUser  int64 = 2
)

// User is an account keyed by the identity the OAuth provider issued.
type User struct {
	ID        string // external provider ID, primary key
	Name      string
	Email     string // optional, "" when unset
	Image     string // avatar URI, optional
	RoleID    int64  // foreign key to user_role
	IsActive  bool
	IsAdmin   bool
	CreatedAt time.Time
	LastLogin *time.Time // nullable, stamped on every login
}

type Role struct {
	ID   int64
	Name string
}

// Profile is the normalized record the OAuth bridge produces from the
// provider's profile response. Empty fields mean "not supplied" and are
// skipped when merged into an existing user.
type Profile struct {
	UserID string
	Name   string
	Email  string
	Image  string
}
