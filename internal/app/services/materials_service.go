package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/yigit/flashclass/internal/app/models"
	"github.com/yigit/flashclass/internal/app/repositories"
	"github.com/yigit/flashclass/internal/pkg/apperrors"
)

// MaterialsService expands a class's shared references into concrete flashcards
type MaterialsService interface {
	// ResolveClassMaterials returns the directly shared cards followed by the cards of every shared
	// folder. A card reachable both ways appears twice. Dangling card ids are skipped.
	ResolveClassMaterials(ctx context.Context, class *models.Class) ([]models.Flashcard, error)
	// ResolveClassMaterialsByID loads the class first and fails with NotFound if it does not resolve
	ResolveClassMaterialsByID(ctx context.Context, classID string) (*models.Class, []models.Flashcard, error)
}

type materialsServiceImpl struct {
	classRepo     *repositories.ClassRepository
	flashcardRepo *repositories.FlashcardRepository
	logger        zerolog.Logger
}

// NewMaterialsService creates a new MaterialsService
func NewMaterialsService(
	classRepo *repositories.ClassRepository,
	flashcardRepo *repositories.FlashcardRepository,
	logger zerolog.Logger,
) MaterialsService {
	return &materialsServiceImpl{
		classRepo:     classRepo,
		flashcardRepo: flashcardRepo,
		logger:        logger,
	}
}

func (s *materialsServiceImpl) ResolveClassMaterials(ctx context.Context, class *models.Class) ([]models.Flashcard, error) {
	if class == nil {
		return nil, apperrors.NewNotFoundError("class", "")
	}

	materials := make([]models.Flashcard, 0, len(class.Flashcards))

	for _, id := range class.Flashcards {
		card, err := s.flashcardRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				s.logger.Debug().
					Str("classID", class.ID).
					Str("flashcardID", id).
					Msg("Skipping dangling flashcard reference")
				continue
			}
			return nil, err
		}
		materials = append(materials, *card)
	}

	for _, folderID := range class.Folders {
		cards, err := s.flashcardRepo.ListByFolder(ctx, folderID)
		if err != nil {
			return nil, err
		}
		materials = append(materials, cards...)
	}

	s.logger.Debug().
		Str("classID", class.ID).
		Int("directRefs", len(class.Flashcards)).
		Int("folderRefs", len(class.Folders)).
		Int("resolved", len(materials)).
		Msg("Resolved class materials")

	return materials, nil
}

func (s *materialsServiceImpl) ResolveClassMaterialsByID(ctx context.Context, classID string) (*models.Class, []models.Flashcard, error) {
	class, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		return nil, nil, err
	}
	materials, err := s.ResolveClassMaterials(ctx, class)
	if err != nil {
		return nil, nil, err
	}
	return class, materials, nil
}
