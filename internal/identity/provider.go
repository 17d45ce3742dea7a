// Package identity is the credential authority: it owns password hashes and
// issues session tokens. Account profile fields belong to the account service.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/society-be/internal/auth"
	"github.com/hongminglow/society-be/internal/models"
	"github.com/hongminglow/society-be/internal/storage"
)

// Secret length bounds in bytes. bcrypt rejects anything past 72.
const (
	MinSecretLength = 6
	MaxSecretLength = 72
)

var (
	ErrWeakSecret         = fmt.Errorf("password should be at least %d characters", MinSecretLength)
	ErrSecretTooLong      = fmt.Errorf("password must be at most %d bytes", MaxSecretLength)
	ErrEmailRegistered    = errors.New("a user with this email address has already been registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// Provider creates, rotates and verifies credentials.
type Provider struct {
	credentials storage.CredentialStore
	accounts    storage.AccountStore
	hasher      auth.PasswordHasher
	tokens      *auth.TokenManager
}

// NewProvider wires the provider; a nil hasher defaults to bcrypt.
func NewProvider(credentials storage.CredentialStore, accounts storage.AccountStore, hasher auth.PasswordHasher, tokens *auth.TokenManager) *Provider {
	if hasher == nil {
		hasher = auth.BcryptHasher{}
	}
	return &Provider{credentials: credentials, accounts: accounts, hasher: hasher, tokens: tokens}
}

// CreateCredential registers email with secret and returns the new account id.
// The account row gets default profile values: resident, active, no forced change.
func (p *Provider) CreateCredential(ctx context.Context, email, secret string) (string, error) {
	if err := checkSecret(secret); err != nil {
		return "", err
	}
	hash, err := p.hasher.Hash(secret)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	created, err := p.credentials.CreateIdentity(ctx, models.Account{
		Email:    email,
		Role:     models.RoleResident,
		IsActive: true,
	}, hash)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return "", ErrEmailRegistered
		}
		return "", err
	}
	return created.ID, nil
}

// UpdateCredential replaces the secret for accountID.
func (p *Provider) UpdateCredential(ctx context.Context, accountID, secret string) error {
	if err := checkSecret(secret); err != nil {
		return err
	}
	hash, err := p.hasher.Hash(secret)
	if err != nil {
		return fmt.Errorf("hash secret: %w", err)
	}
	if err := p.credentials.UpdatePasswordHash(ctx, accountID, hash); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// SignIn verifies email and secret and issues a session token.
func (p *Provider) SignIn(ctx context.Context, email, secret string) (string, models.Account, error) {
	accountID, hash, err := p.credentials.PasswordHashByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", models.Account{}, ErrInvalidCredentials
		}
		return "", models.Account{}, err
	}
	if !p.hasher.Verify(hash, secret) {
		return "", models.Account{}, ErrInvalidCredentials
	}
	account, err := p.accounts.AccountByID(ctx, accountID)
	if err != nil {
		return "", models.Account{}, err
	}
	if !account.IsActive {
		return "", models.Account{}, ErrAccountDisabled
	}
	token, err := p.tokens.Generate(account)
	if err != nil {
		return "", models.Account{}, fmt.Errorf("generate token: %w", err)
	}
	return token, account, nil
}

func checkSecret(secret string) error {
	switch {
	case len(secret) < MinSecretLength:
		return ErrWeakSecret
	case len(secret) > MaxSecretLength:
		return ErrSecretTooLong
	}
	return nil
}
