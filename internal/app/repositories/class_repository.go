package repositories

import (
	"context"

	"github.com/yigit/flashclass/internal/app/models"
	"github.com/yigit/flashclass/internal/docstore"
)

// ClassRepository handles the classes collection
type ClassRepository struct {
	store docstore.Store
}

// NewClassRepository creates a new ClassRepository
func NewClassRepository(store docstore.Store) *ClassRepository {
	return &ClassRepository{store: store}
}

// setClassID also normalizes missing lists so callers never see nil sets
func setClassID(c *models.Class, id string) {
	c.ID = id
	if c.Members == nil {
		c.Members = []string{}
	}
	if c.ManualMembers == nil {
		c.ManualMembers = []models.ManualMember{}
	}
	if c.Flashcards == nil {
		c.Flashcards = []string{}
	}
	if c.Folders == nil {
		c.Folders = []string{}
	}
}

// GetByID retrieves a class
func (r *ClassRepository) GetByID(ctx context.Context, id string) (*models.Class, error) {
	doc, err := r.store.Get(ctx, models.CollectionClasses, id)
	if err != nil {
		return nil, translate(err, "class", id)
	}
	return decodeOne(doc, "class", setClassID)
}

// ListAll returns every class
func (r *ClassRepository) ListAll(ctx context.Context) ([]models.Class, error) {
	docs, err := r.store.All(ctx, models.CollectionClasses)
	if err != nil {
		return nil, translate(err, "classes", "")
	}
	return decodeAll(docs, "class", setClassID)
}

// ListByMember returns the classes whose members list holds userID
func (r *ClassRepository) ListByMember(ctx context.Context, userID string) ([]models.Class, error) {
	docs, err := r.store.Find(ctx, models.CollectionClasses, docstore.ArrayContains("members", userID))
	if err != nil {
		return nil, translate(err, "classes", "")
	}
	return decodeAll(docs, "class", setClassID)
}

// Create stores a new class with empty sets
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) (*models.Class, error) {
	id, err := r.store.Insert(ctx, models.CollectionClasses, docstore.Fields{
		"name":          class.Name,
		"institute":     class.Institute,
		"description":   class.Description,
		"createdBy":     class.CreatedBy,
		"createdAt":     docstore.ServerTimestamp,
		"members":       []string{},
		"manualMembers": []models.ManualMember{},
		"flashcards":    []string{},
		"folders":       []string{},
	})
	if err != nil {
		return nil, translate(err, "class", "")
	}
	return r.GetByID(ctx, id)
}

// ApplyPatch writes the sets carried by p as whole-field replacements
func (r *ClassRepository) ApplyPatch(ctx context.Context, p models.ClassPatch) error {
	fields := docstore.Fields{}
	if p.Members != nil {
		fields["members"] = nonNilStrings(*p.Members)
	}
	if p.ManualMembers != nil {
		mm := *p.ManualMembers
		if mm == nil {
			mm = []models.ManualMember{}
		}
		fields["manualMembers"] = mm
	}
	if p.Flashcards != nil {
		fields["flashcards"] = nonNilStrings(*p.Flashcards)
	}
	if p.Folders != nil {
		fields["folders"] = nonNilStrings(*p.Folders)
	}
	if len(fields) == 0 {
		return nil
	}
	return translate(r.store.Update(ctx, models.CollectionClasses, p.ClassID, fields), "class", p.ClassID)
}

// Delete removes a class
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	return translate(r.store.Delete(ctx, models.CollectionClasses, id), "class", id)
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
