// Package accounts implements the account lifecycle: admin-mediated creation
// with default credentials, self registration, role changes, and the
// forced/self-service password transitions.
package accounts

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/society-be/internal/apperr"
	"github.com/hongminglow/society-be/internal/auth"
	"github.com/hongminglow/society-be/internal/identity"
	"github.com/hongminglow/society-be/internal/models"
	"github.com/hongminglow/society-be/internal/storage"
)

// MinPasswordLength is enforced on self-service password changes.
const MinPasswordLength = 6

// CredentialProvider is the identity provider surface the lifecycle needs.
type CredentialProvider interface {
	CreateCredential(ctx context.Context, email, secret string) (string, error)
	UpdateCredential(ctx context.Context, accountID, secret string) error
	SignIn(ctx context.Context, email, secret string) (string, models.Account, error)
}

// Store is the persistence the lifecycle writes to directly.
type Store interface {
	storage.AccountStore
	storage.UnitStore
}

// Config holds lifecycle policy knobs.
type Config struct {
	EmailDomain string
	// ResetForcesPasswordChange flags the target must_change_password after an admin reset.
	ResetForcesPasswordChange bool
	Defaults                  DefaultCredentialStrategy
}

// Service runs account lifecycle operations.
type Service struct {
	store    Store
	provider CredentialProvider
	cfg      Config
	log      *zap.Logger
}

// NewService constructs the service, filling in default policy values.
func NewService(store Store, provider CredentialProvider, cfg Config, log *zap.Logger) *Service {
	if cfg.EmailDomain == "" {
		cfg.EmailDomain = DefaultEmailDomain
	}
	if cfg.Defaults == nil {
		cfg.Defaults = PhoneCredential{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, provider: provider, cfg: cfg, log: log}
}

// CreateAccountInput is the admin form for a new account.
type CreateAccountInput struct {
	FullName   string
	Email      string
	Phone      string
	Role       models.Role
	UnitID     string
	UnitNumber string
	IsActive   bool
}

// CreateAccountResult is the created account plus non-fatal warnings.
type CreateAccountResult struct {
	Account  models.Account `json:"account"`
	Warnings []string       `json:"warnings,omitempty"`
}

// CreateAccount creates an account on behalf of an admin. The account always
// starts with must_change_password set because its credential is a default.
func (s *Service) CreateAccount(ctx context.Context, actor *models.Account, input CreateAccountInput) (CreateAccountResult, error) {
	if err := auth.RequireRole(actor, models.AccountAdmins); err != nil {
		return CreateAccountResult{}, err
	}
	input.FullName = strings.TrimSpace(input.FullName)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.FullName == "" || input.Phone == "" {
		return CreateAccountResult{}, apperr.Validation("fullName and phone are required")
	}
	if !input.Role.Valid() {
		return CreateAccountResult{}, apperr.Validation("invalid role")
	}
	if input.Email == "" {
		input.Email = SyntheticEmail(input.Phone, s.cfg.EmailDomain)
	}

	accountID, err := s.provider.CreateCredential(ctx, input.Email, s.cfg.Defaults.DefaultCredential(input))
	if err != nil {
		s.log.Warn("create credential failed", zap.String("email", input.Email), zap.Error(err))
		return CreateAccountResult{}, credentialError("create credential", err)
	}

	account := models.Account{
		ID:                 accountID,
		Email:              input.Email,
		Phone:              input.Phone,
		FullName:           input.FullName,
		Role:               input.Role,
		IsActive:           input.IsActive,
		MustChangePassword: true,
	}
	if err := s.store.UpdateProfile(ctx, account); err != nil {
		s.log.Error("account created without profile", zap.String("account_id", accountID), zap.Error(err))
		return CreateAccountResult{}, &ProfileUpdateError{AccountID: accountID, Err: err}
	}

	result := CreateAccountResult{Account: account}
	if warning := s.assignUnit(ctx, accountID, input); warning != "" {
		result.Warnings = append(result.Warnings, warning)
	}
	if fresh, err := s.store.AccountByID(ctx, accountID); err == nil {
		result.Account = fresh
	}

	s.log.Info("account created",
		zap.String("account_id", accountID),
		zap.String("role", input.Role.String()),
		zap.String("actor_id", actor.ID),
	)
	return result, nil
}

// assignUnit links the unit to the new account. Failures are reported as a
// warning only; the account stays.
func (s *Service) assignUnit(ctx context.Context, accountID string, input CreateAccountInput) string {
	unitID := strings.TrimSpace(input.UnitID)
	if unitID == "" && strings.TrimSpace(input.UnitNumber) != "" {
		unit, err := s.store.UnitByNumber(ctx, strings.TrimSpace(input.UnitNumber))
		if err != nil {
			s.log.Warn("unit lookup failed", zap.String("unit_number", input.UnitNumber), zap.Error(err))
			return "account created but unit " + input.UnitNumber + " could not be found"
		}
		unitID = unit.ID
	}
	if unitID == "" {
		return ""
	}
	if err := s.store.AssignOwner(ctx, unitID, accountID); err != nil {
		s.log.Warn("unit assignment failed",
			zap.String("account_id", accountID),
			zap.String("unit_id", unitID),
			zap.Error(err),
		)
		return "account created but unit assignment failed: " + err.Error()
	}
	return ""
}

// ResetPassword sets a new credential for target on behalf of an admin.
func (s *Service) ResetPassword(ctx context.Context, actor *models.Account, targetID, secret string) error {
	if err := auth.RequireRole(actor, models.AccountAdmins); err != nil {
		return err
	}
	targetID = strings.TrimSpace(targetID)
	if targetID == "" || secret == "" {
		return apperr.Validation("userId and newPassword are required")
	}
	if err := s.provider.UpdateCredential(ctx, targetID, secret); err != nil {
		return credentialError("update credential", err)
	}
	s.log.Info("password reset by admin", zap.String("account_id", targetID), zap.String("actor_id", actor.ID))

	if s.cfg.ResetForcesPasswordChange {
		if err := s.store.SetMustChangePassword(ctx, targetID, true); err != nil {
			return &FlagUpdateError{AccountID: targetID, Value: true, Err: err}
		}
	}
	return nil
}

// credentialError keeps provider messages verbatim. Over-long secrets are bad
// input rather than a provider failure.
func credentialError(op string, err error) error {
	if errors.Is(err, identity.ErrSecretTooLong) {
		return apperr.New(apperr.ErrValidation, err.Error())
	}
	return apperr.Upstream(op, err)
}

// ChangeOwnPassword rotates the caller's credential and then clears the
// forced-change flag. The two writes are not atomic; if the second fails the
// new credential is already live and a FlagUpdateError is returned.
func (s *Service) ChangeOwnPassword(ctx context.Context, actor *models.Account, secret string) error {
	if actor == nil {
		return apperr.ErrUnauthenticated
	}
	if len(secret) < MinPasswordLength {
		return apperr.Validation("password must be at least 6 characters")
	}
	if err := s.provider.UpdateCredential(ctx, actor.ID, secret); err != nil {
		return credentialError("update credential", err)
	}
	if err := s.store.SetMustChangePassword(ctx, actor.ID, false); err != nil {
		s.log.Error("password changed but flag not cleared", zap.String("account_id", actor.ID), zap.Error(err))
		return &FlagUpdateError{AccountID: actor.ID, Value: false, Err: err}
	}
	s.log.Info("password changed", zap.String("account_id", actor.ID))
	return nil
}

// UpdateRole changes target's role on behalf of an admin.
func (s *Service) UpdateRole(ctx context.Context, actor *models.Account, targetID, rawRole string) error {
	if err := auth.RequireRole(actor, models.AccountAdmins); err != nil {
		return err
	}
	targetID = strings.TrimSpace(targetID)
	if targetID == "" || strings.TrimSpace(rawRole) == "" {
		return apperr.Validation("userId and role are required")
	}
	role, ok := models.ParseRole(rawRole)
	if !ok {
		return apperr.Validation("invalid role")
	}
	if err := s.store.UpdateRole(ctx, targetID, role); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Upstream("update role", err)
	}
	s.log.Info("role updated", zap.String("account_id", targetID), zap.String("role", role.String()), zap.String("actor_id", actor.ID))
	return nil
}

// RegisterInput is the self-registration form.
type RegisterInput struct {
	FullName string
	Email    string
	Phone    string
	Password string
}

// Register creates a resident account with a user-chosen credential.
func (s *Service) Register(ctx context.Context, input RegisterInput) (models.Account, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Phone = strings.TrimSpace(input.Phone)
	if input.FullName == "" || input.Email == "" || input.Phone == "" {
		return models.Account{}, apperr.Validation("fullName, email, and phone are required")
	}
	if len(input.Password) < MinPasswordLength {
		return models.Account{}, apperr.Validation("password must be at least 6 characters")
	}

	accountID, err := s.provider.CreateCredential(ctx, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, identity.ErrEmailRegistered) {
			return models.Account{}, apperr.New(apperr.ErrConflict, err.Error())
		}
		return models.Account{}, credentialError("create credential", err)
	}
	account := models.Account{
		ID:       accountID,
		Email:    input.Email,
		Phone:    input.Phone,
		FullName: input.FullName,
		Role:     models.RoleResident,
		IsActive: true,
	}
	if err := s.store.UpdateProfile(ctx, account); err != nil {
		return models.Account{}, &ProfileUpdateError{AccountID: accountID, Err: err}
	}
	s.log.Info("resident registered", zap.String("account_id", accountID))
	return account, nil
}

// SignInResult carries the session token and the account as the client must see it.
type SignInResult struct {
	Token   string         `json:"token"`
	Account models.Account `json:"account"`
}

// SignIn exchanges email and password for a session token.
func (s *Service) SignIn(ctx context.Context, email, password string) (SignInResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return SignInResult{}, apperr.Validation("email and password are required")
	}
	token, account, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidCredentials), errors.Is(err, identity.ErrAccountDisabled):
			return SignInResult{}, apperr.New(apperr.ErrUnauthenticated, err.Error())
		default:
			return SignInResult{}, apperr.Upstream("sign in", err)
		}
	}
	return SignInResult{Token: token, Account: account}, nil
}

// BootstrapInput describes the first administrator seeded at startup.
type BootstrapInput struct {
	Email    string
	Phone    string
	FullName string
	Password string
}

// Bootstrap creates an app_admin account unless one with the email exists.
// Without a password the default credential strategy applies and the admin
// must change it on first sign-in.
func (s *Service) Bootstrap(ctx context.Context, input BootstrapInput) (models.Account, bool, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return models.Account{}, false, apperr.Validation("bootstrap email is required")
	}
	existing, err := s.store.AccountByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return models.Account{}, false, apperr.Upstream("lookup bootstrap admin", err)
	}

	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		fullName = "Administrator"
	}
	secret := input.Password
	mustChange := false
	if secret == "" {
		secret = s.cfg.Defaults.DefaultCredential(CreateAccountInput{Phone: input.Phone, Email: email})
		mustChange = true
	}
	accountID, err := s.provider.CreateCredential(ctx, email, secret)
	if err != nil {
		return models.Account{}, false, credentialError("create credential", err)
	}
	account := models.Account{
		ID:                 accountID,
		Email:              email,
		Phone:              strings.TrimSpace(input.Phone),
		FullName:           fullName,
		Role:               models.RoleAppAdmin,
		IsActive:           true,
		MustChangePassword: mustChange,
	}
	if err := s.store.UpdateProfile(ctx, account); err != nil {
		return models.Account{}, false, &ProfileUpdateError{AccountID: accountID, Err: err}
	}
	s.log.Info("bootstrap admin created", zap.String("account_id", accountID), zap.String("email", email))
	return account, true, nil
}
