package dto

import (
	"time"

	"github.com/yigit/flashclass/internal/app/models"
)

// FolderRequest creates or renames a folder
type FolderRequest struct {
	Name string `json:"name" binding:"notblank,max=50" example:"Biology"`
}

// FolderResponse is a folder as shown to clients
type FolderResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// FolderPatchResponse is the patch a caller merges into its folder list
type FolderPatchResponse struct {
	Patch models.FolderPatch `json:"patch"`
}

// FromFolder converts a model to its response
func FromFolder(f *models.Folder) FolderResponse {
	return FolderResponse{
		ID:        f.ID,
		Name:      f.Name,
		CreatedBy: f.CreatedBy,
		CreatedAt: f.CreatedAt,
	}
}

// FromFolders converts a list of folders
func FromFolders(folders []models.Folder) []FolderResponse {
	out := make([]FolderResponse, 0, len(folders))
	for i := range folders {
		out = append(out, FromFolder(&folders[i]))
	}
	return out
}
