package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/flashclass/internal/app/models"
	"github.com/yigit/flashclass/internal/app/models/dto"
)

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	f.user(t, adminID)
	f.user(t, aliceID)
	f.user(t, bobID)
	f.card(t, "f1", "alice", nil)
	f.card(t, "f2", "alice", "d1")
	f.card(t, "f3", "bob", nil)
	f.folder(t, "d1", "alice")
	f.class(t, "c1", []string{"alice"}, []string{"f1", "gone"}, []string{"d1"},
		models.ManualMember{Name: "Jane", Email: "jane@x.com"})
	f.class(t, "c2", []string{"bob"}, []string{}, []string{})

	stats, err := f.dashboard.GetStats(f.ctx, aliceID)
	require.NoError(t, err)
	assert.Equal(t, &dto.DashboardStats{Flashcards: 2, Folders: 1, Classes: 1}, stats)

	stats, err = f.dashboard.GetStats(f.ctx, adminID)
	require.NoError(t, err)
	assert.Equal(t, &dto.DashboardStats{Flashcards: 3, Folders: 1, Classes: 2, Users: 3}, stats)

	charts, err := f.dashboard.GetCharts(f.ctx, aliceID)
	require.NoError(t, err)
	assert.Nil(t, charts.Roles)
	require.Len(t, charts.Classes, 1)
	assert.Equal(t, dto.ClassChartEntry{ClassID: "c1", Name: "Class c1", Members: 2, Materials: 3}, charts.Classes[0])

	charts, err = f.dashboard.GetCharts(f.ctx, adminID)
	require.NoError(t, err)
	assert.Len(t, charts.Classes, 2)
	assert.Equal(t, []dto.RoleCount{{Role: "user", Count: 2}, {Role: "admin", Count: 1}}, charts.Roles)
}
