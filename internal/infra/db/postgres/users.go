package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	domainuser "rento/internal/domain/user"
)

type UserRepository struct {
	tx pgx.Tx
}

const userColumns = `id, name, email, phone, password_hash, created_at, updated_at`

func scanUser(row pgx.Row) (*domainuser.User, error) {
	var u domainuser.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	u, err := scanUser(r.tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, string(id)))
	if isNoRows(err) {
		return nil, domainuser.ErrNotFound
	}
	return u, err
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	u, err := scanUser(r.tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email))))
	if isNoRows(err) {
		return nil, domainuser.ErrNotFound
	}
	return u, err
}

func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			password_hash = EXCLUDED.password_hash,
			updated_at = EXCLUDED.updated_at`,
		string(u.ID), u.Name, u.Email, u.Phone, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if code, constraint := pgCode(err); code == codeUniqueViolation && constraint == "users_email_key" {
		return domainuser.ErrEmailAlreadyUsed
	}
	return err
}
