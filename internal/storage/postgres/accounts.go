package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/hongminglow/society-be/internal/models"
	"github.com/hongminglow/society-be/internal/storage"
)

var accountColumns = []string{
	"id", "email", "phone", "full_name", "role", "is_active",
	"must_change_password", "unit_id", "created_at", "updated_at",
}

// AccountByID fetches an account by primary key.
func (s *Store) AccountByID(ctx context.Context, id string) (models.Account, error) {
	return s.getAccount(ctx, squirrel.Eq{"id": id})
}

// AccountByEmail fetches the single account with the given email, case-insensitively.
func (s *Store) AccountByEmail(ctx context.Context, email string) (models.Account, error) {
	return s.getAccount(ctx, squirrel.Expr("lower(email) = lower(?)", email))
}

func (s *Store) getAccount(ctx context.Context, where squirrel.Sqlizer) (models.Account, error) {
	query, args, err := psql.Select(accountColumns...).From("accounts").Where(where).Limit(2).ToSql()
	if err != nil {
		return models.Account{}, fmt.Errorf("building select query: %w", err)
	}
	var accounts []models.Account
	if err := pgxscan.Select(ctx, s.db, &accounts, query, args...); err != nil {
		return models.Account{}, fmt.Errorf("scanning account: %w", err)
	}
	switch len(accounts) {
	case 0:
		return models.Account{}, storage.ErrNotFound
	case 1:
		return accounts[0], nil
	default:
		return models.Account{}, storage.ErrMultipleRows
	}
}

// UpdateProfile persists the caller-controlled profile fields.
func (s *Store) UpdateProfile(ctx context.Context, account models.Account) error {
	return s.updateAccount(ctx, account.ID, map[string]any{
		"full_name":            account.FullName,
		"phone":                account.Phone,
		"role":                 account.Role,
		"is_active":            account.IsActive,
		"must_change_password": account.MustChangePassword,
	})
}

// SetMustChangePassword toggles the forced password change flag.
func (s *Store) SetMustChangePassword(ctx context.Context, id string, value bool) error {
	return s.updateAccount(ctx, id, map[string]any{"must_change_password": value})
}

// UpdateRole changes an account's role.
func (s *Store) UpdateRole(ctx context.Context, id string, role models.Role) error {
	return s.updateAccount(ctx, id, map[string]any{"role": role})
}

func (s *Store) updateAccount(ctx context.Context, id string, fields map[string]any) error {
	query, args, err := psql.Update("accounts").
		SetMap(fields).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update query: %w", err)
	}
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
