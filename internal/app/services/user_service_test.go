package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/flashclass/internal/app/models"
	"github.com/yigit/flashclass/internal/app/models/dto"
	"github.com/yigit/flashclass/internal/pkg/apperrors"
)

func TestChangeRole(t *testing.T) {
	f := newFixture(t)
	f.user(t, adminID)
	f.user(t, aliceID)

	_, err := f.users.ChangeRole(f.ctx, adminID, adminID.ID, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAccessDenied)
	assert.Contains(t, err.Error(), "own role")

	_, err = f.users.ChangeRole(f.ctx, aliceID, adminID.ID, nil)
	assert.ErrorIs(t, err, apperrors.ErrAccessDenied)

	assert.Empty(t, f.notifier.disconnected)

	patch, err := f.users.ChangeRole(f.ctx, adminID, "alice", nil)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, *patch.Role)
	assert.Equal(t, []string{"alice"}, f.notifier.disconnected, "streams opened under the old role are closed")

	patch, err = f.users.ChangeRole(f.ctx, adminID, "alice", nil)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, *patch.Role, "second toggle reverts")

	bad := models.RoleType("owner")
	_, err = f.users.ChangeRole(f.ctx, adminID, "alice", &bad)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.users.ChangeRole(f.ctx, adminID, "ghost", nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestChangeRolePatchMatchesStore(t *testing.T) {
	f := newFixture(t)
	f.user(t, adminID)
	f.user(t, aliceID)
	f.user(t, bobID)

	snapshot, err := f.users.ListUsers(f.ctx, adminID)
	require.NoError(t, err)

	admin := models.RoleAdmin
	patch, err := f.users.ChangeRole(f.ctx, adminID, "bob", &admin)
	require.NoError(t, err)

	merged := models.MergeInto(snapshot, models.Patch[models.User](patch))
	reread, err := f.users.ListUsers(f.ctx, adminID)
	require.NoError(t, err)

	roles := func(list []models.User) map[string]models.RoleType {
		out := map[string]models.RoleType{}
		for _, u := range list {
			out[u.ID] = u.Role
		}
		return out
	}
	assert.Equal(t, roles(reread), roles(merged))
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	f.user(t, adminID)
	f.user(t, aliceID)

	_, err := f.users.DeleteUser(f.ctx, adminID, adminID.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "own account")

	assert.Empty(t, f.notifier.disconnected)

	patch, err := f.users.DeleteUser(f.ctx, adminID, "alice")
	require.NoError(t, err)
	assert.True(t, patch.Deleted)
	assert.Equal(t, []string{"alice"}, f.notifier.disconnected)

	_, err = f.users.GetProfile(f.ctx, aliceID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreateUserByAdmin(t *testing.T) {
	f := newFixture(t)
	req := &dto.CreateUserRequest{Name: "Carol", Email: "Carol@Example.com", Password: "secret123", Role: models.RoleAdmin}

	_, err := f.users.CreateUser(f.ctx, aliceID, req)
	assert.ErrorIs(t, err, apperrors.ErrAccessDenied)

	user, err := f.users.CreateUser(f.ctx, adminID, req)
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", user.Email)
	assert.Equal(t, models.RoleAdmin, user.Role)

	_, err = f.users.CreateUser(f.ctx, adminID, req)
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	_, err = f.users.CreateUser(f.ctx, adminID, &dto.CreateUserRequest{Name: "D", Email: "d@example.com", Password: "short", Role: models.RoleUser})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Contains(t, apperrors.FieldErrors(err), "password")
}

func TestListUsersRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.ListUsers(f.ctx, aliceID)
	assert.ErrorIs(t, err, apperrors.ErrAccessDenied)
}
