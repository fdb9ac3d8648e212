package actions

import (
	"context"
	"errors"
	"net/url"

	"github.com/ariefcatur/go-dashboard-invoices/internal/auth"
)

// CredentialSignin is handed back to the login form when the identity
// provider rejects the credentials.
const CredentialSignin = "CredentialSignin"

type AuthOutcome struct {
	// Message is CredentialSignin on rejected credentials, empty otherwise.
	Message string
	Session *auth.Session
}

// Authenticate forwards every submitted field to the credentials strategy.
// Only auth.ErrCredentialsSignin is turned into a value; any other failure
// is returned as is.
func (a *Actions) Authenticate(ctx context.Context, _ string, form url.Values) (AuthOutcome, error) {
	sess, err := a.Identity.SignIn(ctx, auth.StrategyCredentials, FormFields(form))
	if err != nil {
		if errors.Is(err, auth.ErrCredentialsSignin) {
			return AuthOutcome{Message: CredentialSignin}, nil
		}
		return AuthOutcome{}, err
	}
	return AuthOutcome{Session: sess}, nil
}
