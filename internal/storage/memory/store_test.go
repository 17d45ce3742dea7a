package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/society-be/internal/models"
	"github.com/hongminglow/society-be/internal/storage"
)

func TestStore_Identity(t *testing.T) {
	ctx := t.Context()
	s := NewStore()

	created, err := s.CreateIdentity(ctx, models.Account{Email: "a@society.local", Role: models.RoleResident, IsActive: true}, "hash-1")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	t.Run("Should reject a duplicate email regardless of case", func(t *testing.T) {
		_, err := s.CreateIdentity(ctx, models.Account{Email: "A@Society.Local"}, "hash-2")
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	})

	t.Run("Should look up the hash by email", func(t *testing.T) {
		id, hash, err := s.PasswordHashByEmail(ctx, "a@society.local")
		require.NoError(t, err)
		assert.Equal(t, created.ID, id)
		assert.Equal(t, "hash-1", hash)
	})

	t.Run("Should stamp every credential write", func(t *testing.T) {
		first, err := s.CredentialUpdatedAt(ctx, created.ID)
		require.NoError(t, err)
		later := first.Add(time.Minute)
		s.now = func() time.Time { return later }
		t.Cleanup(func() { s.now = time.Now })

		require.NoError(t, s.UpdatePasswordHash(ctx, created.ID, "hash-1"))
		got, err := s.CredentialUpdatedAt(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, later.Equal(got))
	})

	t.Run("Should report missing accounts", func(t *testing.T) {
		_, err := s.AccountByEmail(ctx, "nobody@x.com")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, s.UpdatePasswordHash(ctx, "missing", "h"), storage.ErrNotFound)
		_, err = s.CredentialUpdatedAt(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestStore_AssignOwner(t *testing.T) {
	ctx := t.Context()
	s := NewStore()
	acct, err := s.CreateIdentity(ctx, models.Account{Email: "owner@society.local"}, "h")
	require.NoError(t, err)
	unit := s.AddUnit(models.Unit{UnitNumber: "A-101"})

	require.NoError(t, s.AssignOwner(ctx, unit.ID, acct.ID))

	gotUnit, err := s.UnitByNumber(ctx, "A-101")
	require.NoError(t, err)
	require.NotNil(t, gotUnit.OwnerID)
	assert.Equal(t, acct.ID, *gotUnit.OwnerID)

	gotAcct, err := s.AccountByID(ctx, acct.ID)
	require.NoError(t, err)
	require.NotNil(t, gotAcct.UnitID)
	assert.Equal(t, unit.ID, *gotAcct.UnitID)

	assert.ErrorIs(t, s.AssignOwner(ctx, "missing", acct.ID), storage.ErrNotFound)
}

func TestStore_ResetRequests(t *testing.T) {
	ctx := t.Context()
	s := NewStore()

	first, created, err := s.CreatePendingReset(ctx, models.PasswordResetRequest{UserID: "u1"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.ResetPending, first.Status)

	t.Run("Should return the existing pending request", func(t *testing.T) {
		again, created, err := s.CreatePendingReset(ctx, models.PasswordResetRequest{UserID: "u1"})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, again.ID)
	})

	t.Run("Should resolve once", func(t *testing.T) {
		at := time.Now().UTC()
		resolved, err := s.ResolveReset(ctx, first.ID, models.ResetRejected, "admin", nil, at)
		require.NoError(t, err)
		assert.Equal(t, models.ResetRejected, resolved.Status)
		assert.Equal(t, "admin", *resolved.ResolvedBy)

		_, err = s.ResolveReset(ctx, first.ID, models.ResetApproved, "admin", nil, at)
		assert.ErrorIs(t, err, storage.ErrNotPending)
	})

	t.Run("Should allow a new pending request after resolution", func(t *testing.T) {
		_, created, err := s.CreatePendingReset(ctx, models.PasswordResetRequest{UserID: "u1"})
		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("Should filter by status", func(t *testing.T) {
		pending, err := s.ListResetRequests(ctx, models.ResetPending)
		require.NoError(t, err)
		assert.Len(t, pending, 1)
		all, err := s.ListResetRequests(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}
