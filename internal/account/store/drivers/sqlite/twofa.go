package sqlite

import (
	"context"

	"github.com/pingpong42/account/internal/account/domain"
)

type twofaRepo struct {
	db dbtx
}

func (r *twofaRepo) GetByUserID(ctx context.Context, userID string) (domain.TwoFactorAuth, error) {
	var tfa domain.TwoFactorAuth
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, secret_key, is_verified FROM twofa WHERE user_id = ?`, userID).
		Scan(&tfa.UserID, &tfa.SecretKey, &tfa.IsVerified)
	if err != nil {
		return domain.TwoFactorAuth{}, mapNotFound(err)
	}
	return tfa, nil
}

func (r *twofaRepo) UpsertSecret(ctx context.Context, userID string, sealedSecret string) error {
	// Re-enrollment replaces the secret and drops the verified flag.
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO twofa (user_id, secret_key, is_verified) VALUES (?, ?, 0)
		 ON CONFLICT(user_id) DO UPDATE SET secret_key = excluded.secret_key, is_verified = 0`,
		userID, sealedSecret)
	return err
}

func (r *twofaRepo) MarkVerified(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE twofa SET is_verified = 1 WHERE user_id = ?`, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *twofaRepo) DeleteByUserID(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM twofa WHERE user_id = ?`, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}
