package auth

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrCredentialsSignin means the submitted credentials were rejected.
	// It is the only sign-in failure callers are expected to recover from.
	ErrCredentialsSignin = errors.New("CredentialsSignin")
	ErrUnknownProvider   = errors.New("unknown sign-in provider")
)

type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// Provider checks one kind of credentials. A nil user with a nil error
// means the credentials were rejected.
type Provider interface {
	Authorize(ctx context.Context, creds map[string]string) (*User, error)
}

// Manager is the sign-in entry point: it dispatches to a provider by
// strategy name and opens a session for the accepted user.
type Manager struct {
	providers map[string]Provider
	sessions  *Sessions
}

func NewManager(sessions *Sessions, providers map[string]Provider) *Manager {
	return &Manager{providers: providers, sessions: sessions}
}

func (m *Manager) SignIn(ctx context.Context, strategy string, creds map[string]string) (*Session, error) {
	p, ok := m.providers[strategy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, strategy)
	}
	u, err := p.Authorize(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("authorize %s: %w", strategy, err)
	}
	if u == nil {
		return nil, ErrCredentialsSignin
	}
	return m.sessions.Issue(u)
}
