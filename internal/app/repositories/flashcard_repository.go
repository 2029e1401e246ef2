package repositories

import (
	"context"

	"github.com/yigit/flashclass/internal/app/models"
	"github.com/yigit/flashclass/internal/docstore"
)

// FlashcardRepository handles the flashcards collection
type FlashcardRepository struct {
	store docstore.Store
}

// NewFlashcardRepository creates a new FlashcardRepository
func NewFlashcardRepository(store docstore.Store) *FlashcardRepository {
	return &FlashcardRepository{store: store}
}

func setFlashcardID(f *models.Flashcard, id string) { f.ID = id }

// GetByID retrieves a flashcard
func (r *FlashcardRepository) GetByID(ctx context.Context, id string) (*models.Flashcard, error) {
	doc, err := r.store.Get(ctx, models.CollectionFlashcards, id)
	if err != nil {
		return nil, translate(err, "flashcard", id)
	}
	return decodeOne(doc, "flashcard", setFlashcardID)
}

// ListAll returns every flashcard in the store's natural order
func (r *FlashcardRepository) ListAll(ctx context.Context) ([]models.Flashcard, error) {
	docs, err := r.store.All(ctx, models.CollectionFlashcards)
	if err != nil {
		return nil, translate(err, "flashcards", "")
	}
	return decodeAll(docs, "flashcard", setFlashcardID)
}

// ListByOwner returns the cards created by userID
func (r *FlashcardRepository) ListByOwner(ctx context.Context, userID string) ([]models.Flashcard, error) {
	return r.find(ctx, docstore.Equal("createdBy", userID))
}

// ListByFolder returns the cards tagged with folderID, whoever created them
func (r *FlashcardRepository) ListByFolder(ctx context.Context, folderID string) ([]models.Flashcard, error) {
	return r.find(ctx, docstore.Equal("folderId", folderID))
}

func (r *FlashcardRepository) find(ctx context.Context, q docstore.Query) ([]models.Flashcard, error) {
	docs, err := r.store.Find(ctx, models.CollectionFlashcards, q)
	if err != nil {
		return nil, translate(err, "flashcards", "")
	}
	return decodeAll(docs, "flashcard", setFlashcardID)
}

// Create stores a new card and returns it with its generated id
func (r *FlashcardRepository) Create(ctx context.Context, card *models.Flashcard) (*models.Flashcard, error) {
	id, err := r.store.Insert(ctx, models.CollectionFlashcards, docstore.Fields{
		"title":     card.Title,
		"question":  card.Question,
		"answer":    card.Answer,
		"folderId":  card.FolderID,
		"createdBy": card.CreatedBy,
		"createdAt": docstore.ServerTimestamp,
	})
	if err != nil {
		return nil, translate(err, "flashcard", "")
	}
	return r.GetByID(ctx, id)
}

// Update writes the editable fields of a card. A nil FolderID clears the folder tag.
func (r *FlashcardRepository) Update(ctx context.Context, p models.FlashcardPatch) error {
	err := r.store.Update(ctx, models.CollectionFlashcards, p.FlashcardID, docstore.Fields{
		"title":    p.Title,
		"question": p.Question,
		"answer":   p.Answer,
		"folderId": p.FolderID,
	})
	return translate(err, "flashcard", p.FlashcardID)
}

// Delete removes a card
func (r *FlashcardRepository) Delete(ctx context.Context, id string) error {
	return translate(r.store.Delete(ctx, models.CollectionFlashcards, id), "flashcard", id)
}
