package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/flashclass/internal/app/models"
	"github.com/yigit/flashclass/internal/app/models/dto"
	"github.com/yigit/flashclass/internal/pkg/apperrors"
)

func TestCreateClass(t *testing.T) {
	f := newFixture(t)

	_, err := f.classes.CreateClass(f.ctx, aliceID, &dto.CreateClassRequest{Name: "Physics"})
	assert.ErrorIs(t, err, apperrors.ErrAccessDenied)

	_, err = f.classes.CreateClass(f.ctx, adminID, &dto.CreateClassRequest{Name: "  "})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	class, err := f.classes.CreateClass(f.ctx, adminID, &dto.CreateClassRequest{Name: " Physics ", Institute: "City"})
	require.NoError(t, err)
	assert.NotEmpty(t, class.ID)
	assert.Equal(t, "Physics", class.Name)
	assert.Equal(t, adminID.ID, class.CreatedBy)
	assert.Empty(t, class.Members)
	assert.Zero(t, class.MaterialCount())
}

func TestGetClassNotFoundBeforeAccessDenied(t *testing.T) {
	f := newFixture(t)
	f.class(t, "c1", []string{"alice"}, []string{}, []string{},
		models.ManualMember{Name: "Jane", Email: "jane@x.com"})

	_, err := f.classes.GetClass(f.ctx, bobID, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.classes.GetClass(f.ctx, bobID, "c1")
	assert.ErrorIs(t, err, apperrors.ErrAccessDenied)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)

	class, err := f.classes.GetClass(f.ctx, janeID, "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", class.ID)
}

func TestListClassesFiltersByMembership(t *testing.T) {
	f := newFixture(t)
	f.class(t, "c1", []string{"alice"}, []string{}, []string{})
	f.class(t, "c2", []string{"bob"}, []string{}, []string{},
		models.ManualMember{Name: "Jane", Email: "jane@x.com"})
	f.class(t, "c3", []string{}, []string{}, []string{})

	ids := func(list []models.Class) []string {
		out := []string{}
		for _, c := range list {
			out = append(out, c.ID)
		}
		return out
	}

	all, err := f.classes.ListClasses(f.ctx, adminID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c1", "c2", "c3"}, ids(all))

	mine, err := f.classes.ListClasses(f.ctx, aliceID)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, ids(mine))

	manual, err := f.classes.ListClasses(f.ctx, janeID)
	require.NoError(t, err)
	assert.Equal(t, []string{"c2"}, ids(manual))
}

func TestGetMaterialsAndRoster(t *testing.T) {
	f := newFixture(t)
	f.card(t, "f1", "admin", "d1")
	f.card(t, "f2", "admin", nil)
	f.class(t, "c1", []string{"alice"}, []string{"f1", "f2", "gone"}, []string{"d1"},
		models.ManualMember{Name: "Jane", Email: "jane@x.com"})

	class, cards, err := f.classes.GetMaterials(f.ctx, aliceID, "c1")
	require.NoError(t, err)
	assert.Equal(t, 4, class.MaterialCount())
	assert.Equal(t, []string{"f1", "f2", "f1"}, cardIDs(cards))

	_, _, err = f.classes.GetMaterials(f.ctx, bobID, "c1")
	assert.ErrorIs(t, err, apperrors.ErrAccessDenied)

	roster, err := f.classes.GetRoster(f.ctx, aliceID, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.RosterCounts{Registered: 1, Manual: 1}, roster)
}

func TestDeleteClass(t *testing.T) {
	f := newFixture(t)
	f.class(t, "c1", []string{"alice"}, []string{}, []string{})

	_, err := f.classes.DeleteClass(f.ctx, aliceID, "c1")
	assert.ErrorIs(t, err, apperrors.ErrAccessDenied)

	patch, err := f.classes.DeleteClass(f.ctx, adminID, "c1")
	require.NoError(t, err)
	assert.True(t, patch.Deleted)
	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, EventClassDeleted, f.notifier.events[0].eventType)
	assert.Equal(t, []string{"c1"}, f.notifier.closed)

	_, err = f.classes.GetClass(f.ctx, adminID, "c1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListClassesBackendFailure(t *testing.T) {
	f := newFixture(t)
	f.store.FailWith(func(op, coll, id string) error {
		if op == "all" {
			return errors.New("timeout")
		}
		return nil
	})
	_, err := f.classes.ListClasses(f.ctx, aliceID)
	assert.ErrorIs(t, err, apperrors.ErrBackendUnavailable)
}
