package dto

import (
	"time"

	"github.com/yigit/flashclass/internal/app/models"
)

// CreateClassRequest creates a class with empty member and material sets
type CreateClassRequest struct {
	Name        string `json:"name" binding:"notblank,max=100" example:"Physics 101"`
	Institute   string `json:"institute" binding:"max=200" example:"City College"`
	Description string `json:"description" binding:"max=2000"`
}

// SetMembersRequest replaces the registered members. The list is the complete desired set.
type SetMembersRequest struct {
	Members []string `json:"members" binding:"dive,notblank"`
}

// ManualMemberRequest adds a person without an account
type ManualMemberRequest struct {
	Name  string `json:"name" binding:"notblank" example:"Jane Doe"`
	Email string `json:"email" binding:"notblank" example:"jane@x.com"`
	Roll  string `json:"roll" example:"17"`
}

// SetMaterialsRequest replaces the shared flashcards and folders
type SetMaterialsRequest struct {
	Flashcards []string `json:"flashcards" binding:"dive,notblank"`
	Folders    []string `json:"folders" binding:"dive,notblank"`
}

// ClassResponse is a class as shown to clients
type ClassResponse struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Institute     string                `json:"institute"`
	Description   string                `json:"description"`
	CreatedBy     string                `json:"createdBy"`
	CreatedAt     time.Time             `json:"createdAt"`
	Members       []string              `json:"members"`
	ManualMembers []models.ManualMember `json:"manualMembers"`
	Flashcards    []string              `json:"flashcards"`
	Folders       []string              `json:"folders"`
	Roster        models.RosterCounts   `json:"roster"`
	MaterialCount int                   `json:"materialCount"`
}

// ClassPatchResponse is the patch a caller merges into its class list
type ClassPatchResponse struct {
	Patch models.ClassPatch `json:"patch"`
}

// ClassMaterialsResponse lists the resolved cards of a class. Cards reachable twice appear twice.
type ClassMaterialsResponse struct {
	ClassID    string              `json:"classId"`
	Flashcards []FlashcardResponse `json:"flashcards"`
	Count      int                 `json:"count"`
}

// FromClass converts a model to its response
func FromClass(c *models.Class) ClassResponse {
	return ClassResponse{
		ID:            c.ID,
		Name:          c.Name,
		Institute:     c.Institute,
		Description:   c.Description,
		CreatedBy:     c.CreatedBy,
		CreatedAt:     c.CreatedAt,
		Members:       c.Members,
		ManualMembers: c.ManualMembers,
		Flashcards:    c.Flashcards,
		Folders:       c.Folders,
		Roster:        c.Roster(),
		MaterialCount: c.MaterialCount(),
	}
}

// FromClasses converts a list of classes
func FromClasses(classes []models.Class) []ClassResponse {
	out := make([]ClassResponse, 0, len(classes))
	for i := range classes {
		out = append(out, FromClass(&classes[i]))
	}
	return out
}
