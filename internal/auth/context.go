package auth

import (
	"context"

	"github.com/hongminglow/society-be/internal/models"
)

type accountCtxKey struct{}

// WithAccount stores the request's resolved account.
func WithAccount(ctx context.Context, account models.Account) context.Context {
	return context.WithValue(ctx, accountCtxKey{}, account)
}

// AccountFromContext returns the account resolved for this request, or nil when anonymous.
func AccountFromContext(ctx context.Context) *models.Account {
	account, ok := ctx.Value(accountCtxKey{}).(models.Account)
	if !ok {
		return nil
	}
	return &account
}
