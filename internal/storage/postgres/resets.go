package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"github.com/hongminglow/society-be/internal/models"
	"github.com/hongminglow/society-be/internal/storage"
)

var resetColumns = []string{"id", "user_id", "status", "created_at", "resolved_at", "resolved_by", "admin_notes"}

// CreatePendingReset inserts a pending request. The partial unique index on
// (user_id) WHERE status = 'pending' makes the insert a no-op when one exists,
// in which case the existing row is returned.
func (s *Store) CreatePendingReset(ctx context.Context, req models.PasswordResetRequest) (models.PasswordResetRequest, bool, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	query, args, err := psql.Insert("password_reset_requests").
		Columns("id", "user_id", "status").
		Values(req.ID, req.UserID, models.ResetPending).
		Suffix("ON CONFLICT (user_id) WHERE status = 'pending' DO NOTHING RETURNING " + strings.Join(resetColumns, ", ")).
		ToSql()
	if err != nil {
		return models.PasswordResetRequest{}, false, fmt.Errorf("building insert query: %w", err)
	}
	var created models.PasswordResetRequest
	err = pgxscan.Get(ctx, s.db, &created, query, args...)
	if err == nil {
		return created, true, nil
	}
	if !pgxscan.NotFound(err) {
		return models.PasswordResetRequest{}, false, fmt.Errorf("inserting reset request: %w", err)
	}

	existing, err := s.getReset(ctx, squirrel.Eq{"user_id": req.UserID, "status": models.ResetPending})
	if err != nil {
		return models.PasswordResetRequest{}, false, err
	}
	return existing, false, nil
}

// ResetRequestByID fetches a reset request by primary key.
func (s *Store) ResetRequestByID(ctx context.Context, id string) (models.PasswordResetRequest, error) {
	return s.getReset(ctx, squirrel.Eq{"id": id})
}

// ResolveReset moves a pending request to a terminal status.
func (s *Store) ResolveReset(ctx context.Context, id string, status models.ResetStatus, resolvedBy string, notes *string, at time.Time) (models.PasswordResetRequest, error) {
	query, args, err := psql.Update("password_reset_requests").
		Set("status", status).
		Set("resolved_at", at).
		Set("resolved_by", resolvedBy).
		Set("admin_notes", notes).
		Where(squirrel.Eq{"id": id, "status": models.ResetPending}).
		Suffix("RETURNING " + strings.Join(resetColumns, ", ")).
		ToSql()
	if err != nil {
		return models.PasswordResetRequest{}, fmt.Errorf("building update query: %w", err)
	}
	var resolved models.PasswordResetRequest
	err = pgxscan.Get(ctx, s.db, &resolved, query, args...)
	if err == nil {
		return resolved, nil
	}
	if !pgxscan.NotFound(err) {
		return models.PasswordResetRequest{}, fmt.Errorf("resolving reset request: %w", err)
	}
	if _, err := s.ResetRequestByID(ctx, id); err != nil {
		return models.PasswordResetRequest{}, err
	}
	return models.PasswordResetRequest{}, storage.ErrNotPending
}

// ListResetRequests returns requests newest first; an empty status lists all.
func (s *Store) ListResetRequests(ctx context.Context, status models.ResetStatus) ([]models.PasswordResetRequest, error) {
	qb := psql.Select(resetColumns...).From("password_reset_requests").OrderBy("created_at DESC")
	if status != "" {
		qb = qb.Where(squirrel.Eq{"status": status})
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var out []models.PasswordResetRequest
	if err := pgxscan.Select(ctx, s.db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("scanning reset requests: %w", err)
	}
	return out, nil
}

func (s *Store) getReset(ctx context.Context, where squirrel.Sqlizer) (models.PasswordResetRequest, error) {
	query, args, err := psql.Select(resetColumns...).From("password_reset_requests").Where(where).ToSql()
	if err != nil {
		return models.PasswordResetRequest{}, fmt.Errorf("building select query: %w", err)
	}
	var req models.PasswordResetRequest
	if err := pgxscan.Get(ctx, s.db, &req, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return models.PasswordResetRequest{}, storage.ErrNotFound
		}
		return models.PasswordResetRequest{}, fmt.Errorf("scanning reset request: %w", err)
	}
	return req, nil
}

