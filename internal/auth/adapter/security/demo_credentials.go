package security

import (
	"context"
	"fmt"
	"strings"

	"backoffice/internal/auth/domain/model"
	"backoffice/internal/auth/domain/repository"
	apperrors "backoffice/internal/shared/errors"

	"golang.org/x/crypto/bcrypt"
)

// DemoAccount is a plaintext account definition used to build the demo provider.
type DemoAccount struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// DemoAccounts are the two logins of the demo panel. They are not a user
// store; replace the provider for anything beyond a demo.
var DemoAccounts = []DemoAccount{
	{Email: "mina@aromefloral.ma", Password: "arome2025", Name: "Mina", Role: model.RoleAdmin},
	{Email: "client@aromefloral.ma", Password: "client123", Name: "Client Test", Role: model.RoleClient},
}

// DemoCredentialProvider checks logins against a fixed account list.
type DemoCredentialProvider struct {
	accounts map[string]model.Account
	// dummy is compared against for unknown emails.
	dummy []byte
}

// NewDemoCredentialProvider hashes the given accounts with bcrypt at cost.
func NewDemoCredentialProvider(accounts []DemoAccount, cost int) (*DemoCredentialProvider, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	p := &DemoCredentialProvider{accounts: make(map[string]model.Account, len(accounts))}
	for _, a := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", a.Email, err)
		}
		p.accounts[a.Email] = model.Account{Email: a.Email, Name: a.Name, Role: a.Role, PasswordHash: hash}
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}
	p.dummy = dummy
	return p, nil
}

// Authenticate returns the account whose email and password both match.
// Emails are compared exactly, as typed.
func (p *DemoCredentialProvider) Authenticate(ctx context.Context, email, password string) (*model.Account, error) {
	email = strings.TrimSpace(email)
	account, ok := p.accounts[email]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(p.dummy, []byte(password))
		return nil, apperrors.NewInvalidCredentialsError()
	}
	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)); err != nil {
		return nil, apperrors.NewInvalidCredentialsError()
	}
	return &account, nil
}

var _ repository.CredentialProvider = (*DemoCredentialProvider)(nil)
