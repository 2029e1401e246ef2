package repositories

import (
	"context"

	"github.com/yigit/flashclass/internal/app/models"
	"github.com/yigit/flashclass/internal/docstore"
)

// CredentialRepository stores password hashes apart from the readable user profile
type CredentialRepository struct {
	store docstore.Store
}

// NewCredentialRepository creates a new CredentialRepository
func NewCredentialRepository(store docstore.Store) *CredentialRepository {
	return &CredentialRepository{store: store}
}

func setCredentialID(c *models.Credential, id string) { c.UserID = id }

// Create stores the credential and returns the generated user id
func (r *CredentialRepository) Create(ctx context.Context, email, passwordHash string) (string, error) {
	id, err := r.store.Insert(ctx, models.CollectionCredentials, docstore.Fields{
		"email":        normalizeEmail(email),
		"passwordHash": passwordHash,
		"createdAt":    docstore.ServerTimestamp,
	})
	if err != nil {
		return "", translate(err, "credential", "")
	}
	return id, nil
}

// GetByEmail finds the credential for an email
func (r *CredentialRepository) GetByEmail(ctx context.Context, email string) (*models.Credential, error) {
	docs, err := r.store.Find(ctx, models.CollectionCredentials, docstore.Equal("email", normalizeEmail(email)))
	if err != nil {
		return nil, translate(err, "credential", email)
	}
	if len(docs) == 0 {
		return nil, translate(docstore.ErrNotFound, "credential", email)
	}
	return decodeOne(docs[0], "credential", setCredentialID)
}

// Delete removes the credential of a user
func (r *CredentialRepository) Delete(ctx context.Context, userID string) error {
	return translate(r.store.Delete(ctx, models.CollectionCredentials, userID), "credential", userID)
}
