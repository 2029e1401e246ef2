package dto

import (
	"time"

	"github.com/yigit/flashclass/internal/app/models"
)

// FlashcardRequest carries the editable fields of a card
type FlashcardRequest struct {
	Title    string  `json:"title" binding:"max=200" example:"Arithmetic"`
	Question string  `json:"question" binding:"notblank" example:"2+2?"`
	Answer   string  `json:"answer" binding:"notblank" example:"4"`
	FolderID *string `json:"folderId,omitempty" example:"d1"`
}

// FlashcardFilter selects the cards listed for the caller
type FlashcardFilter struct {
	// Folder is "all", "unorganized" or a folder id
	Folder                     string `form:"folder,default=all"`
	TreatDanglingAsUnorganized bool   `form:"treatDanglingAsUnorganized"`
}

// FlashcardResponse is a card as shown to clients
type FlashcardResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	FolderID  *string   `json:"folderId"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// FlashcardListResponse represents a page of flashcards
type FlashcardListResponse struct {
	Flashcards []FlashcardResponse `json:"flashcards"`
	PaginationInfo
}

// FlashcardPatchResponse is the patch a caller merges into its card list
type FlashcardPatchResponse struct {
	Patch models.FlashcardPatch `json:"patch"`
}

// FromFlashcard converts a model to its response
func FromFlashcard(f *models.Flashcard) FlashcardResponse {
	return FlashcardResponse{
		ID:        f.ID,
		Title:     f.Title,
		Question:  f.Question,
		Answer:    f.Answer,
		FolderID:  f.FolderID,
		CreatedBy: f.CreatedBy,
		CreatedAt: f.CreatedAt,
	}
}

// FromFlashcards converts a list of cards, keeping duplicates and order
func FromFlashcards(cards []models.Flashcard) []FlashcardResponse {
	out := make([]FlashcardResponse, 0, len(cards))
	for i := range cards {
		out = append(out, FromFlashcard(&cards[i]))
	}
	return out
}
