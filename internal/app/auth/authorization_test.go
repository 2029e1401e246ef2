package auth

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/flashclass/internal/app/models"
	"github.com/yigit/flashclass/internal/pkg/apperrors"
)

var (
	admin   = models.Identity{ID: "admin-1", Email: "admin@example.com", Role: models.RoleAdmin}
	owner   = models.Identity{ID: "u1", Email: "owner@example.com", Role: models.RoleUser}
	other   = models.Identity{ID: "u2", Email: "other@example.com", Role: models.RoleUser}
	manual  = models.Identity{ID: "u3", Email: "jane@x.com", Role: models.RoleUser}
	folderD = "d1"
)

func testClass() models.Class {
	return models.Class{
		ID:            "c1",
		Name:          "Physics",
		CreatedBy:     "creator",
		Members:       []string{"u2"},
		ManualMembers: []models.ManualMember{{Name: "Jane Doe", Email: "jane@x.com"}},
		Flashcards:    []string{"f1"},
		Folders:       []string{"d1"},
	}
}

func TestCanViewFlashcardAndFolder(t *testing.T) {
	card := models.Flashcard{ID: "f9", CreatedBy: "u1"}
	folder := models.Folder{ID: "d9", CreatedBy: "u1"}

	tests := []struct {
		name     string
		identity models.Identity
		resource models.Entity
		want     bool
	}{
		{"owner views card", owner, card, true},
		{"other cannot view card", other, card, false},
		{"admin views card", admin, &card, true},
		{"owner views folder", owner, &folder, true},
		{"other cannot view folder", other, folder, false},
		{"anonymous cannot view", models.Identity{}, models.Flashcard{ID: "x"}, false},
		{"nil pointer", owner, (*models.Flashcard)(nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanView(tt.identity, tt.resource))
		})
	}
}

func TestClassMutationIsAdminOnly(t *testing.T) {
	class := testClass()
	member := models.Identity{ID: "u2", Role: models.RoleUser}
	creator := models.Identity{ID: "creator", Role: models.RoleUser}

	for _, id := range []models.Identity{owner, other, member, creator, manual} {
		assert.False(t, CanMutate(id, class), "identity %s", id.ID)
		assert.False(t, CanMutate(id, &class), "identity %s", id.ID)
	}
	assert.True(t, CanMutate(admin, class))
}

func TestClassViewFollowsMembership(t *testing.T) {
	class := testClass()

	assert.True(t, CanView(models.Identity{ID: "u2"}, class), "registered member")
	assert.True(t, CanView(models.Identity{ID: "creator"}, class), "creator")
	assert.True(t, CanView(manual, class), "manual member by email")
	assert.False(t, CanView(models.Identity{ID: "u4", Email: "JANE@x.com"}, class), "email match is case-sensitive")
	assert.False(t, CanView(owner, class))
	assert.True(t, CanView(admin, class))
}

func TestSelfRoleChangeAlwaysDenied(t *testing.T) {
	self := models.User{ID: admin.ID, Role: models.RoleAdmin}
	assert.False(t, CanChangeRole(admin, self))
	assert.False(t, CanDeleteUser(admin, self))
	assert.False(t, CanMutate(admin, self))

	target := models.User{ID: "u1", Role: models.RoleUser}
	assert.True(t, CanChangeRole(admin, target))
	assert.True(t, CanDeleteUser(admin, target))
	assert.False(t, CanChangeRole(other, target))
	assert.False(t, CanChangeRole(owner, target))
}

func TestUserViewSelfOnly(t *testing.T) {
	assert.True(t, CanView(owner, models.User{ID: "u1"}))
	assert.False(t, CanView(owner, models.User{ID: "u2"}))
	assert.True(t, CanView(admin, models.User{ID: "u2"}))
}

func TestCanViewThroughClass(t *testing.T) {
	class := testClass()
	direct := models.Flashcard{ID: "f1", CreatedBy: "creator"}
	viaFolder := models.Flashcard{ID: "f2", CreatedBy: "creator", FolderID: &folderD}
	unshared := models.Flashcard{ID: "f3", CreatedBy: "creator"}

	member := models.Identity{ID: "u2"}
	assert.True(t, CanViewThroughClass(member, direct, class))
	assert.True(t, CanViewThroughClass(member, &viaFolder, class))
	assert.False(t, CanViewThroughClass(member, unshared, class))
	assert.True(t, CanViewThroughClass(manual, models.Folder{ID: "d1"}, class))
	assert.False(t, CanViewThroughClass(other, direct, class), "non-member")
}

func TestDecide(t *testing.T) {
	card := models.Flashcard{ID: "f1", CreatedBy: "u1"}
	assert.Equal(t, Allowed, Decide(owner, card, true))
	assert.Equal(t, Denied, Decide(other, card, true))
	assert.Equal(t, NotFound, Decide(admin, nil, false))
	assert.Equal(t, NotFound, Decide(owner, card, false))
	assert.Equal(t, "not_found", NotFound.String())
}

func TestAuthorizationServiceErrors(t *testing.T) {
	svc := NewAuthorizationService(zerolog.Nop())

	err := svc.ValidateMutate(owner, testClass())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAccessDenied)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, svc.ValidateMutate(admin, testClass()))
	assert.NoError(t, svc.ValidateView(owner, models.Folder{ID: "d", CreatedBy: "u1"}))
	assert.ErrorIs(t, svc.ValidateView(other, (*models.Folder)(nil)), apperrors.ErrAccessDenied)
	assert.ErrorIs(t, svc.ValidateAdmin(owner), apperrors.ErrAccessDenied)

	err = svc.ValidateRoleChange(admin, models.User{ID: admin.ID})
	assert.ErrorIs(t, err, apperrors.ErrAccessDenied)
	assert.Contains(t, err.Error(), "own role")

	err = svc.ValidateUserDeletion(admin, models.User{ID: admin.ID})
	assert.Contains(t, err.Error(), "own account")
	assert.NoError(t, svc.ValidateUserDeletion(admin, models.User{ID: "u1"}))
}
