package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepo struct{ DB Querier }

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.DB.QueryRow(ctx, `SELECT id::text, name, email, password FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser stores a user whose password is already hashed. An existing
// email keeps its row and only gets the new name and hash.
func (r *UserRepo) CreateUser(ctx context.Context, name, email, passwordHash string) (string, error) {
	var id string
	err := r.DB.QueryRow(ctx, `
		INSERT INTO users (name, email, password)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, password = EXCLUDED.password
		RETURNING id::text
	`, name, email, passwordHash).Scan(&id)
	return id, err
}
