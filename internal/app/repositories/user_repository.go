package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/yigit/flashclass/internal/app/models"
	"github.com/yigit/flashclass/internal/docstore"
	"github.com/yigit/flashclass/internal/pkg/apperrors"
)

// UserRepository handles the users collection
type UserRepository struct {
	store docstore.Store
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(store docstore.Store) *UserRepository {
	return &UserRepository{store: store}
}

func setUserID(u *models.User, id string) { u.ID = id }

// GetByID retrieves a user, NotFound when the id does not resolve
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	doc, err := r.store.Get(ctx, models.CollectionUsers, id)
	if err != nil {
		return nil, translate(err, "user", id)
	}
	return decodeOne(doc, "user", setUserID)
}

// GetByEmail finds the first user with the given email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	docs, err := r.store.Find(ctx, models.CollectionUsers, docstore.Equal("email", normalizeEmail(email)))
	if err != nil {
		return nil, translate(err, "user", email)
	}
	if len(docs) == 0 {
		return nil, apperrors.NewNotFoundError("user", email)
	}
	return decodeOne(docs[0], "user", setUserID)
}

// EmailExists reports whether any user document carries email
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns every user
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	docs, err := r.store.All(ctx, models.CollectionUsers)
	if err != nil {
		return nil, translate(err, "users", "")
	}
	return decodeAll(docs, "user", setUserID)
}

// Create writes the profile document under the id issued by the auth collaborator
func (r *UserRepository) Create(ctx context.Context, id string, user *models.User) error {
	err := r.store.Set(ctx, models.CollectionUsers, id, docstore.Fields{
		"name":      user.Name,
		"email":     normalizeEmail(user.Email),
		"role":      string(user.Role),
		"createdAt": docstore.ServerTimestamp,
	})
	return translate(err, "user", id)
}

// SetRole replaces the role field
func (r *UserRepository) SetRole(ctx context.Context, id string, role models.RoleType) error {
	err := r.store.Update(ctx, models.CollectionUsers, id, docstore.Fields{"role": string(role)})
	return translate(err, "user", id)
}

// Delete removes the user document
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return translate(r.store.Delete(ctx, models.CollectionUsers, id), "user", id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
