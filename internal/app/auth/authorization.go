// Package auth decides what an identity may view or mutate. Every check is a pure function of
// the identity and an already-fetched entity; nothing here reads or writes the store.
package auth

import (
	"github.com/rs/zerolog"

	"github.com/yigit/flashclass/internal/app/models"
	"github.com/yigit/flashclass/internal/pkg/apperrors"
)

// Decision is the outcome of resolving a resource for an identity
type Decision int

const (
	Allowed Decision = iota
	Denied
	NotFound
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case Denied:
		return "denied"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// CanView reports whether id may read resource.
// Flashcards and folders reached through a class are checked with CanViewThroughClass.
func CanView(id models.Identity, resource models.Entity) bool {
	if id.IsAdmin() {
		return true
	}
	switch r := resource.(type) {
	case models.Flashcard:
		return owns(id, r.CreatedBy)
	case *models.Flashcard:
		return r != nil && owns(id, r.CreatedBy)
	case models.Folder:
		return owns(id, r.CreatedBy)
	case *models.Folder:
		return r != nil && owns(id, r.CreatedBy)
	case models.Class:
		return r.HasMember(id)
	case *models.Class:
		return r != nil && r.HasMember(id)
	case models.User:
		return owns(id, r.ID)
	case *models.User:
		return r != nil && owns(id, r.ID)
	default:
		return false
	}
}

// CanMutate reports whether id may edit or delete resource.
// Class mutation is admin only. Nobody mutates their own user record through this path.
func CanMutate(id models.Identity, resource models.Entity) bool {
	switch r := resource.(type) {
	case models.Flashcard:
		return id.IsAdmin() || owns(id, r.CreatedBy)
	case *models.Flashcard:
		return r != nil && (id.IsAdmin() || owns(id, r.CreatedBy))
	case models.Folder:
		return id.IsAdmin() || owns(id, r.CreatedBy)
	case *models.Folder:
		return r != nil && (id.IsAdmin() || owns(id, r.CreatedBy))
	case models.Class, *models.Class:
		return id.IsAdmin()
	case models.User:
		return CanChangeRole(id, r)
	case *models.User:
		return r != nil && CanChangeRole(id, *r)
	default:
		return false
	}
}

// CanViewThroughClass reports whether a flashcard or folder is visible to id because class
// shares it and id belongs to class
func CanViewThroughClass(id models.Identity, resource models.Entity, class models.Class) bool {
	if !class.HasMember(id) {
		return false
	}
	switch r := resource.(type) {
	case models.Flashcard:
		return class.SharesFlashcard(r)
	case *models.Flashcard:
		return r != nil && class.SharesFlashcard(*r)
	case models.Folder:
		return containsID(class.Folders, r.ID)
	case *models.Folder:
		return r != nil && containsID(class.Folders, r.ID)
	default:
		return false
	}
}

// CanChangeRole allows an admin to change any role but their own
func CanChangeRole(actor models.Identity, target models.User) bool {
	return actor.IsAdmin() && actor.ID != target.ID
}

// CanDeleteUser allows an admin to delete any account but their own
func CanDeleteUser(actor models.Identity, target models.User) bool {
	return actor.IsAdmin() && actor.ID != target.ID
}

// Decide folds the lookup result and the view check into one outcome.
// A missing resource is NotFound even for an admin.
func Decide(id models.Identity, resource models.Entity, found bool) Decision {
	if !found || resource == nil {
		return NotFound
	}
	if CanView(id, resource) {
		return Allowed
	}
	return Denied
}

func owns(id models.Identity, createdBy string) bool {
	return id.ID != "" && id.ID == createdBy
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// AuthorizationService turns failed checks into apperrors values for the service layer
type AuthorizationService struct {
	logger zerolog.Logger
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(logger zerolog.Logger) *AuthorizationService {
	return &AuthorizationService{logger: logger}
}

// ValidateView returns an access-denied error when id may not read resource
func (s *AuthorizationService) ValidateView(id models.Identity, resource models.Entity) error {
	if CanView(id, resource) {
		return nil
	}
	s.deny(id, "view", resource)
	return apperrors.NewAccessDeniedError("Access denied")
}

// ValidateMutate returns an access-denied error when id may not edit resource
func (s *AuthorizationService) ValidateMutate(id models.Identity, resource models.Entity) error {
	if CanMutate(id, resource) {
		return nil
	}
	s.deny(id, "mutate", resource)
	return apperrors.NewAccessDeniedError("Access denied")
}

// ValidateAdmin rejects non-admin identities
func (s *AuthorizationService) ValidateAdmin(id models.Identity) error {
	if id.IsAdmin() {
		return nil
	}
	s.logger.Warn().Str("userID", id.ID).Msg("Admin role required")
	return apperrors.NewAccessDeniedError("Admin role required")
}

// ValidateRoleChange rejects role changes by non-admins and on one's own account
func (s *AuthorizationService) ValidateRoleChange(actor models.Identity, target models.User) error {
	if CanChangeRole(actor, target) {
		return nil
	}
	if actor.ID == target.ID {
		return apperrors.NewAccessDeniedError("You cannot change your own role")
	}
	return apperrors.NewAccessDeniedError("Admin role required")
}

// ValidateUserDeletion rejects deletion by non-admins and of one's own account
func (s *AuthorizationService) ValidateUserDeletion(actor models.Identity, target models.User) error {
	if CanDeleteUser(actor, target) {
		return nil
	}
	if actor.ID == target.ID {
		return apperrors.NewAccessDeniedError("You cannot delete your own account")
	}
	return apperrors.NewAccessDeniedError("Admin role required")
}

func (s *AuthorizationService) deny(id models.Identity, action string, resource models.Entity) {
	s.logger.Debug().
		Str("userID", id.ID).
		Str("action", action).
		Str("resourceID", entityID(resource)).
		Msg("Access denied")
}

// entityID tolerates nil pointers wrapped in the interface
func entityID(e models.Entity) string {
	switch r := e.(type) {
	case nil:
		return ""
	case *models.Flashcard:
		if r == nil {
			return ""
		}
	case *models.Folder:
		if r == nil {
			return ""
		}
	case *models.Class:
		if r == nil {
			return ""
		}
	case *models.User:
		if r == nil {
			return ""
		}
	}
	return e.EntityID()
}
