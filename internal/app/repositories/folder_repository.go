package repositories

import (
	"context"

	"github.com/yigit/flashclass/internal/app/models"
	"github.com/yigit/flashclass/internal/docstore"
)

// FolderRepository handles the folders collection
type FolderRepository struct {
	store docstore.Store
}

// NewFolderRepository creates a new FolderRepository
func NewFolderRepository(store docstore.Store) *FolderRepository {
	return &FolderRepository{store: store}
}

func setFolderID(f *models.Folder, id string) { f.ID = id }

// GetByID retrieves a folder
func (r *FolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	doc, err := r.store.Get(ctx, models.CollectionFolders, id)
	if err != nil {
		return nil, translate(err, "folder", id)
	}
	return decodeOne(doc, "folder", setFolderID)
}

// ListAll returns every folder
func (r *FolderRepository) ListAll(ctx context.Context) ([]models.Folder, error) {
	docs, err := r.store.All(ctx, models.CollectionFolders)
	if err != nil {
		return nil, translate(err, "folders", "")
	}
	return decodeAll(docs, "folder", setFolderID)
}

// ListByOwner returns the folders created by userID
func (r *FolderRepository) ListByOwner(ctx context.Context, userID string) ([]models.Folder, error) {
	docs, err := r.store.Find(ctx, models.CollectionFolders, docstore.Equal("createdBy", userID))
	if err != nil {
		return nil, translate(err, "folders", "")
	}
	return decodeAll(docs, "folder", setFolderID)
}

// Create stores a new folder
func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) (*models.Folder, error) {
	id, err := r.store.Insert(ctx, models.CollectionFolders, docstore.Fields{
		"name":      folder.Name,
		"createdBy": folder.CreatedBy,
		"createdAt": docstore.ServerTimestamp,
	})
	if err != nil {
		return nil, translate(err, "folder", "")
	}
	return r.GetByID(ctx, id)
}

// Rename replaces the folder name
func (r *FolderRepository) Rename(ctx context.Context, id, name string) error {
	err := r.store.Update(ctx, models.CollectionFolders, id, docstore.Fields{"name": name})
	return translate(err, "folder", id)
}

// Delete removes a folder. Cards tagged with it keep their dangling reference.
func (r *FolderRepository) Delete(ctx context.Context, id string) error {
	return translate(r.store.Delete(ctx, models.CollectionFolders, id), "folder", id)
}
