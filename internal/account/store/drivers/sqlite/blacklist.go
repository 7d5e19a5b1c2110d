package sqlite

import (
	"context"
	"time"

	"github.com/pingpong42/account/internal/account/domain"
)

type blacklistRepo struct {
	db dbtx
}

func (r *blacklistRepo) Add(ctx context.Context, e domain.BlacklistEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO token_blacklist (jti, user_id, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(jti) DO NOTHING`,
		e.JTI, e.UserID, e.ExpiresAt)
	return err
}

func (r *blacklistRepo) Contains(ctx context.Context, jti string) (bool, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM token_blacklist WHERE jti = ?`, jti).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *blacklistRepo) DeleteExpired(ctx context.Context) error {
	// Compare against a driver-formatted timestamp rather than
	// CURRENT_TIMESTAMP so the text encodings line up.
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM token_blacklist WHERE expires_at < ?`, time.Now().UTC())
	return err
}
