package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appModels "github.com/yigit/flashclass/internal/app/models"
)

func TestPrintMaterialsKeepsDuplicates(t *testing.T) {
	folder := "d1"
	class := &appModels.Class{ID: "c1", Name: "Physics", Flashcards: []string{"f1"}, Folders: []string{"d1"}}
	cards := []appModels.Flashcard{
		{ID: "f1", Title: "Newton", FolderID: &folder},
		{ID: "f1", Title: "Newton", FolderID: &folder},
	}

	var buf bytes.Buffer
	require.NoError(t, printMaterials(&buf, class, cards))

	out := buf.String()
	assert.Contains(t, out, "Physics (c1): 2 references, 2 cards")
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("Newton")))
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, path := range [][]string{
		{"migrate", "up"},
		{"migrate", "status"},
		{"create-admin"},
		{"set-role"},
		{"materials"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestSetRoleRejectsUnknownRole(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"set-role", "a@example.com", "owner"})
	root.SetOut(&bytes.Buffer{})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")
}
