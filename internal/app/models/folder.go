package models

import "time"

// FolderNameMaxLength is the longest folder name accepted
const FolderNameMaxLength = 50

// Folder is a grouping label. Cards point at it through FolderID, it holds no card list.
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

func (f Folder) EntityID() string { return f.ID }
