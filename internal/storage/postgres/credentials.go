package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/society-be/internal/models"
	"github.com/hongminglow/society-be/internal/storage"
)

// CreateIdentity inserts the account row and its credential in one transaction.
func (s *Store) CreateIdentity(ctx context.Context, account models.Account, passwordHash string) (models.Account, error) {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	insertAccount, accountArgs, err := psql.Insert("accounts").
		Columns("id", "email", "phone", "full_name", "role", "is_active", "must_change_password").
		Values(account.ID, account.Email, account.Phone, account.FullName, account.Role, account.IsActive, account.MustChangePassword).
		Suffix("RETURNING " + strings.Join(accountColumns, ", ")).
		ToSql()
	if err != nil {
		return models.Account{}, fmt.Errorf("building insert query: %w", err)
	}
	insertCredential, credentialArgs, err := psql.Insert("credentials").
		Columns("account_id", "password_hash").
		Values(account.ID, passwordHash).
		ToSql()
	if err != nil {
		return models.Account{}, fmt.Errorf("building insert query: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return models.Account{}, fmt.Errorf("begin transaction: %w", err)
	}

	var created models.Account
	if err := pgxscan.Get(ctx, tx, &created, insertAccount, accountArgs...); err != nil {
		rollback(ctx, tx)
		if isUniqueViolation(err) {
			return models.Account{}, storage.ErrAlreadyExists
		}
		return models.Account{}, fmt.Errorf("inserting account: %w", err)
	}
	if _, err := tx.Exec(ctx, insertCredential, credentialArgs...); err != nil {
		rollback(ctx, tx)
		return models.Account{}, fmt.Errorf("inserting credential: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Account{}, fmt.Errorf("commit transaction: %w", err)
	}
	return created, nil
}

// UpdatePasswordHash replaces the stored hash for an account.
func (s *Store) UpdatePasswordHash(ctx context.Context, accountID, passwordHash string) error {
	query, args, err := psql.Update("credentials").
		Set("password_hash", passwordHash).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"account_id": accountID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update query: %w", err)
	}
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// PasswordHashByEmail returns the account id and hash for sign-in.
func (s *Store) PasswordHashByEmail(ctx context.Context, email string) (string, string, error) {
	query, args, err := psql.Select("c.account_id", "c.password_hash").
		From("credentials c").
		Join("accounts a ON a.id = c.account_id").
		Where("lower(a.email) = lower(?)", email).
		ToSql()
	if err != nil {
		return "", "", fmt.Errorf("building select query: %w", err)
	}
	var row struct {
		AccountID    string `db:"account_id"`
		PasswordHash string `db:"password_hash"`
	}
	if err := pgxscan.Get(ctx, s.db, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return "", "", storage.ErrNotFound
		}
		return "", "", fmt.Errorf("scanning credential: %w", err)
	}
	return row.AccountID, row.PasswordHash, nil
}

// CredentialUpdatedAt returns when the account's hash was last written.
func (s *Store) CredentialUpdatedAt(ctx context.Context, accountID string) (time.Time, error) {
	query, args, err := psql.Select("updated_at").
		From("credentials").
		Where(squirrel.Eq{"account_id": accountID}).
		ToSql()
	if err != nil {
		return time.Time{}, fmt.Errorf("building select query: %w", err)
	}
	var updatedAt time.Time
	if err := s.db.QueryRow(ctx, query, args...).Scan(&updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, storage.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("scanning credential timestamp: %w", err)
	}
	return updatedAt, nil
}
