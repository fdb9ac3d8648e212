package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

const StrategyCredentials = "credentials"

var ErrUserNotFound = errors.New("user not found")

type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

type Credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// CredentialsProvider accepts an email and password checked against the
// bcrypt hash stored for that user.
type CredentialsProvider struct {
	users UserStore
	v     *validator.Validate
}

func NewCredentialsProvider(users UserStore) *CredentialsProvider {
	return &CredentialsProvider{users: users, v: validator.New()}
}

func (p *CredentialsProvider) Authorize(ctx context.Context, creds map[string]string) (*User, error) {
	c := Credentials{Email: creds["email"], Password: creds["password"]}
	if err := p.v.Struct(c); err != nil {
		return nil, nil
	}
	u, err := p.users.GetUserByEmail(ctx, c.Email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(c.Password)) != nil {
		return nil, nil
	}
	return u, nil
}

// HashPassword is used when seeding users.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
