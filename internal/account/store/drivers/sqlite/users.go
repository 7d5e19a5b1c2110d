package sqlite

import (
	"context"
	"database/sql"

	"github.com/pingpong42/account/internal/account/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `user_id, name, email, image, role_id, is_active, is_admin, created_at, last_login`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (user_id, name, email, image, role_id, is_active, is_admin, last_login)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, mapStringNull(u.Email), mapStringNull(u.Image),
		u.RoleID, u.IsActive, u.IsAdmin, mapOptionalTime(u.LastLogin))
	return mapConflict(err)
}

func (r *usersRepo) UpdateUser(ctx context.Context, u domain.User) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, image = ?, is_active = ?, last_login = ?
		 WHERE user_id = ?`,
		u.Name, mapStringNull(u.Email), mapStringNull(u.Image),
		u.IsActive, mapOptionalTime(u.LastLogin), u.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u         domain.User
		email     sql.NullString
		image     sql.NullString
		lastLogin sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Name, &email, &image, &u.RoleID,
		&u.IsActive, &u.IsAdmin, &u.CreatedAt, &lastLogin)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Email = mapNullString(email)
	u.Image = mapNullString(image)
	u.LastLogin = mapNullTimePtr(lastLogin)
	return u, nil
}

// requireRow maps a zero-row write to ErrNotFound so callers can tell an
// update against a deleted user apart from success.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}
