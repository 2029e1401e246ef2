package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func sampleClass() Class {
	return Class{
		ID:        "c1",
		Name:      "Biology",
		CreatedBy: "creator",
		Members:   []string{"u1", "u2"},
		ManualMembers: []ManualMember{
			{Name: "Jane Doe", Email: "jane@x.com"},
		},
		Flashcards: []string{"f1"},
		Folders:    []string{"d1", "d2"},
	}
}

func TestHasMember(t *testing.T) {
	c := sampleClass()

	tests := []struct {
		name string
		id   Identity
		want bool
	}{
		{"registered member", Identity{ID: "u1", Email: "u1@x.com"}, true},
		{"creator", Identity{ID: "creator"}, true},
		{"manual member by email", Identity{ID: "u9", Email: "jane@x.com"}, true},
		{"manual email differs in case", Identity{ID: "u9", Email: "Jane@x.com"}, false},
		{"stranger", Identity{ID: "u9", Email: "other@x.com"}, false},
		{"admin is not implicitly a member", Identity{ID: "adm", Role: RoleAdmin}, false},
		{"empty identity", Identity{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.HasMember(tt.id))
		})
	}
}

func TestRosterAndMaterialCount(t *testing.T) {
	c := sampleClass()
	r := c.Roster()

	assert.Equal(t, 2, r.Registered)
	assert.Equal(t, 1, r.Manual)
	assert.Equal(t, 3, r.Total())
	assert.Equal(t, 3, c.MaterialCount())
}

func TestSharesFlashcard(t *testing.T) {
	c := sampleClass()

	assert.True(t, c.SharesFlashcard(Flashcard{ID: "f1"}))
	assert.True(t, c.SharesFlashcard(Flashcard{ID: "f7", FolderID: strPtr("d2")}))
	assert.False(t, c.SharesFlashcard(Flashcard{ID: "f7", FolderID: strPtr("d3")}))
	assert.False(t, c.SharesFlashcard(Flashcard{ID: "f7"}))
}

func TestClassPatchMerge(t *testing.T) {
	classes := []Class{sampleClass(), {ID: "c2", Name: "Chemistry"}}
	empty := []string{}

	merged := MergeInto[Class](classes, ClassPatch{ClassID: "c1", Members: &empty})

	assert.Empty(t, merged[0].Members)
	assert.Len(t, merged[0].ManualMembers, 1, "manual members untouched")
	assert.Equal(t, []string{"u1", "u2"}, classes[0].Members, "snapshot not mutated")
	assert.Equal(t, "Chemistry", merged[1].Name)

	removed := MergeInto[Class](merged, ClassPatch{ClassID: "c2", Deleted: true})
	assert.Len(t, removed, 1)

	unchanged := MergeInto[Class](removed, ClassPatch{ClassID: "missing", Members: &empty})
	assert.Equal(t, removed, unchanged)
}

func TestFlashcardPatchClearsFolder(t *testing.T) {
	cards := []Flashcard{{ID: "f1", Title: "t", FolderID: strPtr("d1")}}
	merged := MergeInto[Flashcard](cards, FlashcardPatch{FlashcardID: "f1", Title: "new", Question: "q", Answer: "a"})

	assert.Equal(t, "new", merged[0].Title)
	assert.True(t, merged[0].Unorganized())
}

func TestSortByCreatedAt(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cards := []Flashcard{
		{ID: "b", CreatedAt: base.Add(time.Hour)},
		{ID: "a", CreatedAt: base},
		{ID: "c", CreatedAt: base.Add(time.Hour)},
	}
	SortByCreatedAt(cards)

	assert.Equal(t, []string{"a", "b", "c"}, []string{cards[0].ID, cards[1].ID, cards[2].ID})
}

func TestRoleToggle(t *testing.T) {
	assert.Equal(t, RoleAdmin, RoleUser.Toggle())
	assert.Equal(t, RoleUser, RoleAdmin.Toggle())
	assert.False(t, RoleType("owner").Valid())
}
