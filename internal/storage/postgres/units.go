package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/hongminglow/society-be/internal/models"
	"github.com/hongminglow/society-be/internal/storage"
)

// UnitByID fetches a unit by primary key.
func (s *Store) UnitByID(ctx context.Context, id string) (models.Unit, error) {
	return s.getUnit(ctx, squirrel.Eq{"id": id})
}

// UnitByNumber fetches a unit by its display number.
func (s *Store) UnitByNumber(ctx context.Context, number string) (models.Unit, error) {
	return s.getUnit(ctx, squirrel.Eq{"unit_number": number})
}

func (s *Store) getUnit(ctx context.Context, where squirrel.Sqlizer) (models.Unit, error) {
	query, args, err := psql.Select("id", "unit_number", "owner_id").From("units").Where(where).ToSql()
	if err != nil {
		return models.Unit{}, fmt.Errorf("building select query: %w", err)
	}
	var unit models.Unit
	if err := pgxscan.Get(ctx, s.db, &unit, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return models.Unit{}, storage.ErrNotFound
		}
		return models.Unit{}, fmt.Errorf("scanning unit: %w", err)
	}
	return unit, nil
}

// AssignOwner points the unit at the account and mirrors unit_id on the account.
func (s *Store) AssignOwner(ctx context.Context, unitID, accountID string) error {
	updateUnit, unitArgs, err := psql.Update("units").
		Set("owner_id", accountID).
		Where(squirrel.Eq{"id": unitID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update query: %w", err)
	}
	updateAccount, accountArgs, err := psql.Update("accounts").
		Set("unit_id", unitID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": accountID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update query: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	tag, err := tx.Exec(ctx, updateUnit, unitArgs...)
	if err != nil {
		rollback(ctx, tx)
		return fmt.Errorf("updating unit owner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		rollback(ctx, tx)
		return storage.ErrNotFound
	}
	tag, err = tx.Exec(ctx, updateAccount, accountArgs...)
	if err != nil {
		rollback(ctx, tx)
		return fmt.Errorf("updating account unit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		rollback(ctx, tx)
		return storage.ErrNotFound
	}
	return tx.Commit(ctx)
}
