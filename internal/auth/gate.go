package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hongminglow/society-be/internal/apperr"
	"github.com/hongminglow/society-be/internal/models"
	"github.com/hongminglow/society-be/internal/storage"
)

// Gate resolves session tokens to accounts. It reloads the account on every
// call so role and active-state changes apply to the next request. Tokens
// issued before the account's last password write are refused.
type Gate struct {
	tokens      *TokenManager
	accounts    storage.AccountStore
	credentials storage.CredentialStore
}

// NewGate constructs the gate.
func NewGate(tokens *TokenManager, accounts storage.AccountStore, credentials storage.CredentialStore) *Gate {
	return &Gate{tokens: tokens, accounts: accounts, credentials: credentials}
}

// CurrentAccount returns the account bound to the bearer token.
func (g *Gate) CurrentAccount(ctx context.Context, token string) (models.Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Account{}, apperr.ErrUnauthenticated
	}
	claims, err := g.tokens.Parse(token)
	if err != nil {
		return models.Account{}, fmt.Errorf("%w: %v", apperr.ErrUnauthenticated, err)
	}
	account, err := g.accounts.AccountByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Account{}, apperr.ErrUnauthenticated
		}
		return models.Account{}, apperr.Upstream("load session account", err)
	}
	if !account.IsActive {
		return models.Account{}, fmt.Errorf("%w: account is inactive", apperr.ErrUnauthenticated)
	}

	changed, err := g.credentials.CredentialUpdatedAt(ctx, account.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Account{}, apperr.ErrUnauthenticated
		}
		return models.Account{}, apperr.Upstream("load credential timestamp", err)
	}
	// iat has second precision.
	if claims.IssuedAt == nil || claims.IssuedAt.Time.Before(changed.Truncate(time.Second)) {
		return models.Account{}, fmt.Errorf("%w: password changed since sign-in", apperr.ErrUnauthenticated)
	}
	return account, nil
}

// RequireRole authorizes account for an operation limited to allowed.
func RequireRole(account *models.Account, allowed models.RoleSet) error {
	if account == nil {
		return apperr.ErrUnauthenticated
	}
	if !allowed.Contains(account.Role) {
		return apperr.ErrForbidden
	}
	return nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
