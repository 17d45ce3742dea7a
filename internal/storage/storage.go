package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hongminglow/society-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrMultipleRows indicates a single-row lookup matched more than one row.
var ErrMultipleRows = errors.New("multiple rows matched")

// ErrNotPending indicates a reset request has already left the pending state.
var ErrNotPending = errors.New("reset request is not pending")

// AccountStore captures account profile persistence.
type AccountStore interface {
	AccountByID(ctx context.Context, id string) (models.Account, error)
	AccountByEmail(ctx context.Context, email string) (models.Account, error)
	// UpdateProfile writes full name, phone, role, active and must-change fields as given.
	UpdateProfile(ctx context.Context, account models.Account) error
	SetMustChangePassword(ctx context.Context, id string, value bool) error
	UpdateRole(ctx context.Context, id string, role models.Role) error
}

// CredentialStore owns the base identity rows and their password hashes.
type CredentialStore interface {
	// CreateIdentity inserts an account with default profile fields and its credential hash.
	CreateIdentity(ctx context.Context, account models.Account, passwordHash string) (models.Account, error)
	UpdatePasswordHash(ctx context.Context, accountID, passwordHash string) error
	PasswordHashByEmail(ctx context.Context, email string) (accountID, passwordHash string, err error)
	// CredentialUpdatedAt reports when the account's hash was last written.
	CredentialUpdatedAt(ctx context.Context, accountID string) (time.Time, error)
}

// UnitStore captures unit ownership.
type UnitStore interface {
	UnitByID(ctx context.Context, id string) (models.Unit, error)
	UnitByNumber(ctx context.Context, number string) (models.Unit, error)
	// AssignOwner sets the unit owner and mirrors the unit onto the account.
	AssignOwner(ctx context.Context, unitID, accountID string) error
}

// ResetRequestStore captures password reset request persistence.
type ResetRequestStore interface {
	// CreatePendingReset inserts a pending request unless one already exists for the user,
	// in which case it returns the existing request and created=false.
	CreatePendingReset(ctx context.Context, req models.PasswordResetRequest) (out models.PasswordResetRequest, created bool, err error)
	ResetRequestByID(ctx context.Context, id string) (models.PasswordResetRequest, error)
	// ResolveReset transitions a pending request; ErrNotPending if it was already resolved.
	ResolveReset(ctx context.Context, id string, status models.ResetStatus, resolvedBy string, notes *string, at time.Time) (models.PasswordResetRequest, error)
	ListResetRequests(ctx context.Context, status models.ResetStatus) ([]models.PasswordResetRequest, error)
}

// Store is the full persistence surface used by the service.
type Store interface {
	AccountStore
	CredentialStore
	UnitStore
	ResetRequestStore
	Close()
}
