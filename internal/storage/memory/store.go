// Package memory provides a process-local Store used by STORAGE_DRIVER=memory
// and by handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hongminglow/society-be/internal/models"
	"github.com/hongminglow/society-be/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps every table in maps guarded by a single mutex.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]models.Account
	hashes   map[string]string
	rotated  map[string]time.Time
	units    map[string]models.Unit
	resets   map[string]models.PasswordResetRequest
	now      func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]models.Account),
		hashes:   make(map[string]string),
		rotated:  make(map[string]time.Time),
		units:    make(map[string]models.Unit),
		resets:   make(map[string]models.PasswordResetRequest),
		now:      time.Now,
	}
}

// Close is a no-op.
func (s *Store) Close() {}

// AddUnit seeds a unit; an empty ID is generated.
func (s *Store) AddUnit(unit models.Unit) models.Unit {
	s.mu.Lock()
	defer s.mu.Unlock()
	if unit.ID == "" {
		unit.ID = uuid.NewString()
	}
	s.units[unit.ID] = unit
	return unit
}

func (s *Store) AccountByID(_ context.Context, id string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[id]
	if !ok {
		return models.Account{}, storage.ErrNotFound
	}
	return acct, nil
}

func (s *Store) AccountByEmail(_ context.Context, email string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, err := s.idByEmailLocked(email)
	if err != nil {
		return models.Account{}, err
	}
	return s.accounts[id], nil
}

func (s *Store) idByEmailLocked(email string) (string, error) {
	var found []string
	for id, acct := range s.accounts {
		if strings.EqualFold(acct.Email, email) {
			found = append(found, id)
		}
	}
	switch len(found) {
	case 0:
		return "", storage.ErrNotFound
	case 1:
		return found[0], nil
	default:
		return "", storage.ErrMultipleRows
	}
}

func (s *Store) UpdateProfile(_ context.Context, account models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.accounts[account.ID]
	if !ok {
		return storage.ErrNotFound
	}
	cur.FullName = account.FullName
	cur.Phone = account.Phone
	cur.Role = account.Role
	cur.IsActive = account.IsActive
	cur.MustChangePassword = account.MustChangePassword
	cur.UpdatedAt = s.now().UTC()
	s.accounts[account.ID] = cur
	return nil
}

func (s *Store) SetMustChangePassword(_ context.Context, id string, value bool) error {
	return s.mutateAccount(id, func(a *models.Account) { a.MustChangePassword = value })
}

func (s *Store) UpdateRole(_ context.Context, id string, role models.Role) error {
	return s.mutateAccount(id, func(a *models.Account) { a.Role = role })
}

func (s *Store) mutateAccount(id string, fn func(*models.Account)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[id]
	if !ok {
		return storage.ErrNotFound
	}
	fn(&acct)
	acct.UpdatedAt = s.now().UTC()
	s.accounts[id] = acct
	return nil
}

func (s *Store) CreateIdentity(_ context.Context, account models.Account, passwordHash string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.idByEmailLocked(account.Email); err == nil {
		return models.Account{}, storage.ErrAlreadyExists
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := s.now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	s.accounts[account.ID] = account
	s.hashes[account.ID] = passwordHash
	s.rotated[account.ID] = now
	return account, nil
}

func (s *Store) UpdatePasswordHash(_ context.Context, accountID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[accountID]; !ok {
		return storage.ErrNotFound
	}
	s.hashes[accountID] = passwordHash
	s.rotated[accountID] = s.now().UTC()
	return nil
}

func (s *Store) CredentialUpdatedAt(_ context.Context, accountID string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	at, ok := s.rotated[accountID]
	if !ok {
		return time.Time{}, storage.ErrNotFound
	}
	return at, nil
}

func (s *Store) PasswordHashByEmail(_ context.Context, email string) (string, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, err := s.idByEmailLocked(email)
	if err != nil {
		return "", "", err
	}
	return id, s.hashes[id], nil
}

func (s *Store) UnitByID(_ context.Context, id string) (models.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	unit, ok := s.units[id]
	if !ok {
		return models.Unit{}, storage.ErrNotFound
	}
	return unit, nil
}

func (s *Store) UnitByNumber(_ context.Context, number string) (models.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, unit := range s.units {
		if unit.UnitNumber == number {
			return unit, nil
		}
	}
	return models.Unit{}, storage.ErrNotFound
}

func (s *Store) AssignOwner(_ context.Context, unitID, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	unit, ok := s.units[unitID]
	if !ok {
		return storage.ErrNotFound
	}
	acct, ok := s.accounts[accountID]
	if !ok {
		return storage.ErrNotFound
	}
	unit.OwnerID = &accountID
	s.units[unitID] = unit
	acct.UnitID = &unitID
	s.accounts[accountID] = acct
	return nil
}

func (s *Store) CreatePendingReset(_ context.Context, req models.PasswordResetRequest) (models.PasswordResetRequest, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.resets {
		if existing.UserID == req.UserID && existing.Status == models.ResetPending {
			return existing, false, nil
		}
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.Status = models.ResetPending
	if req.CreatedAt.IsZero() {
		req.CreatedAt = s.now().UTC()
	}
	s.resets[req.ID] = req
	return req, true, nil
}

func (s *Store) ResetRequestByID(_ context.Context, id string) (models.PasswordResetRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.resets[id]
	if !ok {
		return models.PasswordResetRequest{}, storage.ErrNotFound
	}
	return req, nil
}

func (s *Store) ResolveReset(_ context.Context, id string, status models.ResetStatus, resolvedBy string, notes *string, at time.Time) (models.PasswordResetRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.resets[id]
	if !ok {
		return models.PasswordResetRequest{}, storage.ErrNotFound
	}
	if req.Status != models.ResetPending {
		return models.PasswordResetRequest{}, storage.ErrNotPending
	}
	req.Status = status
	req.ResolvedAt = &at
	req.ResolvedBy = &resolvedBy
	req.AdminNotes = notes
	s.resets[id] = req
	return req, nil
}

func (s *Store) ListResetRequests(_ context.Context, status models.ResetStatus) ([]models.PasswordResetRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.PasswordResetRequest, 0, len(s.resets))
	for _, req := range s.resets {
		if status == "" || req.Status == status {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
