package models

import (
	"sort"
	"time"
)

// Flashcard is a question/answer card, optionally tagged with a folder
type Flashcard struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	FolderID  *string   `json:"folderId,omitempty"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

func (f Flashcard) EntityID() string { return f.ID }

// Unorganized reports whether the card carries no folder reference at all
func (f Flashcard) Unorganized() bool {
	return f.FolderID == nil || *f.FolderID == ""
}

// InFolder reports whether the card is tagged with folderID
func (f Flashcard) InFolder(folderID string) bool {
	return !f.Unorganized() && *f.FolderID == folderID
}

// SortByCreatedAt orders cards oldest first, keeping the relative order of equal timestamps
func SortByCreatedAt(cards []Flashcard) {
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].CreatedAt.Before(cards[j].CreatedAt)
	})
}
