package models

// RoleType defines the user role
type RoleType string

const (
	RoleUser  RoleType = "user"
	RoleAdmin RoleType = "admin"
)

// Valid reports whether r is a known role
func (r RoleType) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Toggle flips between user and admin
func (r RoleType) Toggle() RoleType {
	if r == RoleAdmin {
		return RoleUser
	}
	return RoleAdmin
}

// Collection names in the document store
const (
	CollectionUsers         = "users"
	CollectionFlashcards    = "flashcards"
	CollectionFolders       = "folders"
	CollectionClasses       = "classes"
	CollectionCredentials   = "credentials"
	CollectionRevokedTokens = "revoked_tokens"
)

// Identity is the signed-in caller. It is passed explicitly into every access decision.
// Role is looked up from the users collection, it is never taken from the token.
type Identity struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	DisplayName string   `json:"displayName"`
	Role        RoleType `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Entity is any stored record addressable by id
type Entity interface {
	EntityID() string
}
