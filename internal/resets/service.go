// Package resets implements the password reset request queue: residents
// submit requests without a session and admins approve or reject them.
package resets

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/society-be/internal/apperr"
	"github.com/hongminglow/society-be/internal/auth"
	"github.com/hongminglow/society-be/internal/models"
	"github.com/hongminglow/society-be/internal/storage"
)

// Messages returned to the submitter.
const (
	MsgSubmitted      = "Password reset request submitted"
	MsgAlreadyPending = "A password reset request is already pending"
)

// Service runs the reset request workflow.
type Service struct {
	requests storage.ResetRequestStore
	accounts storage.AccountStore
	log      *zap.Logger
	now      func() time.Time
}

// NewService constructs the service; a nil logger discards output.
func NewService(requests storage.ResetRequestStore, accounts storage.AccountStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{requests: requests, accounts: accounts, log: log, now: time.Now}
}

// SubmitResult reports the pending request and whether it already existed.
type SubmitResult struct {
	Request        models.PasswordResetRequest `json:"request"`
	AlreadyPending bool                        `json:"alreadyPending"`
	Message        string                      `json:"message"`
}

// Submit records a pending reset request for the account with email. At most
// one pending request exists per account; a repeat submit returns it.
func (s *Service) Submit(ctx context.Context, email string) (SubmitResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return SubmitResult{}, apperr.Validation("email is required")
	}

	account, err := s.accounts.AccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return SubmitResult{}, apperr.NotFound("no account found with this email")
		}
		return SubmitResult{}, apperr.Upstream("lookup account", err)
	}

	req, created, err := s.requests.CreatePendingReset(ctx, models.PasswordResetRequest{
		UserID:    account.ID,
		Status:    models.ResetPending,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return SubmitResult{}, apperr.Upstream("create reset request", err)
	}
	if !created {
		return SubmitResult{Request: req, AlreadyPending: true, Message: MsgAlreadyPending}, nil
	}

	s.log.Info("reset request submitted", zap.String("request_id", req.ID), zap.String("account_id", account.ID))
	return SubmitResult{Request: req, Message: MsgSubmitted}, nil
}

// Resolve moves a pending request to decision. The credential is not touched;
// an admin rotates it separately through the account service.
func (s *Service) Resolve(ctx context.Context, actor *models.Account, requestID string, decision models.ResetStatus, notes string) (models.PasswordResetRequest, error) {
	if err := auth.RequireRole(actor, models.ResetResolvers); err != nil {
		return models.PasswordResetRequest{}, err
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return models.PasswordResetRequest{}, apperr.Validation("resetRequestId is required")
	}
	if !decision.Terminal() {
		return models.PasswordResetRequest{}, apperr.Validation("decision must be approved or rejected")
	}

	var adminNotes *string
	if n := strings.TrimSpace(notes); n != "" {
		adminNotes = &n
	}
	req, err := s.requests.ResolveReset(ctx, requestID, decision, actor.ID, adminNotes, s.now().UTC())
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		return models.PasswordResetRequest{}, apperr.NotFound("reset request not found")
	case errors.Is(err, storage.ErrNotPending):
		return models.PasswordResetRequest{}, apperr.ErrAlreadyResolved
	default:
		return models.PasswordResetRequest{}, apperr.Upstream("resolve reset request", err)
	}

	s.log.Info("reset request resolved",
		zap.String("request_id", req.ID),
		zap.String("status", string(req.Status)),
		zap.String("actor_id", actor.ID),
	)
	return req, nil
}

// List returns requests newest first. An empty status returns all of them.
func (s *Service) List(ctx context.Context, actor *models.Account, status models.ResetStatus) ([]models.PasswordResetRequest, error) {
	if err := auth.RequireRole(actor, models.ResetResolvers); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, apperr.Validation("invalid status")
	}
	out, err := s.requests.ListResetRequests(ctx, status)
	if err != nil {
		return nil, apperr.Upstream("list reset requests", err)
	}
	return out, nil
}
