package users

import (
	"context"
	"github.com/ariefcatur/erp-lite/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

var _ Store = (*Repo)(nil)

const userColumns = `id, name, email, role, password_hash, created_at, updated_at`

func (r *Repo) Insert(ctx context.Context, u User) error {
	_, err := postgres.Conn(ctx, r.DB).Exec(ctx, `
		INSERT INTO users(`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Name, u.Email, u.Role, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if postgres.IsUniqueViolation(err, "users_email_key") {
		return ErrEmailTaken.Wrap(err)
	}
	return err
}

func (r *Repo) GetByID(ctx context.Context, id string) (User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

func (r *Repo) List(ctx context.Context) ([]User, error) {
	rows, err := postgres.Conn(ctx, r.DB).Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *Repo) Update(ctx context.Context, u User) error {
	ct, err := postgres.Conn(ctx, r.DB).Exec(ctx, `
		UPDATE users SET name = $2, email = $3, role = $4, password_hash = $5, updated_at = $6
		WHERE id = $1`,
		u.ID, u.Name, u.Email, u.Role, u.PasswordHash, u.UpdatedAt)
	if postgres.IsUniqueViolation(err, "users_email_key") {
		return ErrEmailTaken.Wrap(err)
	}
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := postgres.Conn(ctx, r.DB).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *Repo) one(ctx context.Context, sql string, args ...any) (User, error) {
	u, err := scanUser(postgres.Conn(ctx, r.DB).QueryRow(ctx, sql, args...))
	if postgres.IsNoRows(err) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
