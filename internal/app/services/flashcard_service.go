package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/flashclass/internal/app/auth"
	"github.com/yigit/flashclass/internal/app/models"
	"github.com/yigit/flashclass/internal/app/models/dto"
	"github.com/yigit/flashclass/internal/app/repositories"
	"github.com/yigit/flashclass/internal/pkg/apperrors"
	"github.com/yigit/flashclass/internal/pkg/helpers"
	"github.com/yigit/flashclass/internal/pkg/validation"
)

// Folder filter values accepted by ListFlashcards besides a folder id
const (
	FolderFilterAll         = "all"
	FolderFilterUnorganized = "unorganized"
)

// FlashcardService defines the interface for flashcard operations
type FlashcardService interface {
	CreateFlashcard(ctx context.Context, actor models.Identity, req *dto.FlashcardRequest) (*models.Flashcard, error)
	GetFlashcard(ctx context.Context, actor models.Identity, id string) (*models.Flashcard, error)
	ListFlashcards(ctx context.Context, actor models.Identity, filter dto.FlashcardFilter) ([]models.Flashcard, error)
	UpdateFlashcard(ctx context.Context, actor models.Identity, id string, req *dto.FlashcardRequest) (models.FlashcardPatch, error)
	DeleteFlashcard(ctx context.Context, actor models.Identity, id string) (models.FlashcardPatch, error)
}

type flashcardServiceImpl struct {
	flashcardRepo *repositories.FlashcardRepository
	folderRepo    *repositories.FolderRepository
	classRepo     *repositories.ClassRepository
	authzService  *auth.AuthorizationService
	logger        zerolog.Logger
}

// NewFlashcardService creates a new FlashcardService
func NewFlashcardService(
	flashcardRepo *repositories.FlashcardRepository,
	folderRepo *repositories.FolderRepository,
	classRepo *repositories.ClassRepository,
	authzService *auth.AuthorizationService,
	logger zerolog.Logger,
) FlashcardService {
	return &flashcardServiceImpl{
		flashcardRepo: flashcardRepo,
		folderRepo:    folderRepo,
		classRepo:     classRepo,
		authzService:  authzService,
		logger:        logger,
	}
}

func validateCardFields(req *dto.FlashcardRequest, requireTitle bool) error {
	fields := map[string]string{
		"question": req.Question,
		"answer":   req.Answer,
	}
	if requireTitle {
		fields["title"] = req.Title
	}
	return validation.Required(fields)
}

// resolveFolder checks that a referenced folder exists and belongs to the caller
func (s *flashcardServiceImpl) resolveFolder(ctx context.Context, actor models.Identity, folderID *string) (*string, error) {
	folderID = helpers.OptionalString(folderID)
	if folderID == nil {
		return nil, nil
	}
	folder, err := s.folderRepo.GetByID(ctx, *folderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewValidationError(map[string]string{"folderId": "folder does not exist"})
		}
		return nil, err
	}
	if !auth.CanMutate(actor, folder) {
		return nil, apperrors.NewValidationError(map[string]string{"folderId": "folder belongs to another user"})
	}
	return folderID, nil
}

func (s *flashcardServiceImpl) CreateFlashcard(ctx context.Context, actor models.Identity, req *dto.FlashcardRequest) (*models.Flashcard, error) {
	if err := validateCardFields(req, false); err != nil {
		return nil, err
	}
	folderID, err := s.resolveFolder(ctx, actor, req.FolderID)
	if err != nil {
		return nil, err
	}

	card, err := s.flashcardRepo.Create(ctx, &models.Flashcard{
		Title:     strings.TrimSpace(req.Title),
		Question:  strings.TrimSpace(req.Question),
		Answer:    strings.TrimSpace(req.Answer),
		FolderID:  folderID,
		CreatedBy: actor.ID,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("userID", actor.ID).Msg("Failed to create flashcard")
		return nil, err
	}

	s.logger.Info().Str("flashcardID", card.ID).Str("userID", actor.ID).Msg("Flashcard created")
	return card, nil
}

// GetFlashcard allows the owner, an admin, or a member of a class that shares the card
func (s *flashcardServiceImpl) GetFlashcard(ctx context.Context, actor models.Identity, id string) (*models.Flashcard, error) {
	card, err := s.flashcardRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if auth.CanView(actor, card) {
		return card, nil
	}

	classes, err := s.classRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, class := range classes {
		if auth.CanViewThroughClass(actor, card, class) {
			return card, nil
		}
	}
	return nil, s.authzService.ValidateView(actor, card)
}

func (s *flashcardServiceImpl) ListFlashcards(ctx context.Context, actor models.Identity, filter dto.FlashcardFilter) ([]models.Flashcard, error) {
	var (
		cards []models.Flashcard
		err   error
	)
	if actor.IsAdmin() {
		cards, err = s.flashcardRepo.ListAll(ctx)
	} else {
		cards, err = s.flashcardRepo.ListByOwner(ctx, actor.ID)
	}
	if err != nil {
		return nil, err
	}

	switch f := strings.TrimSpace(filter.Folder); f {
	case "", FolderFilterAll:
		return cards, nil
	case FolderFilterUnorganized:
		return s.unorganized(ctx, cards, filter.TreatDanglingAsUnorganized)
	default:
		out := make([]models.Flashcard, 0)
		for _, c := range cards {
			if c.InFolder(f) {
				out = append(out, c)
			}
		}
		return out, nil
	}
}

// unorganized keeps cards without a folder. A card whose folder no longer exists counts as
// organized unless treatDangling is set.
func (s *flashcardServiceImpl) unorganized(ctx context.Context, cards []models.Flashcard, treatDangling bool) ([]models.Flashcard, error) {
	var existing map[string]struct{}
	if treatDangling {
		folders, err := s.folderRepo.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		existing = make(map[string]struct{}, len(folders))
		for _, f := range folders {
			existing[f.ID] = struct{}{}
		}
	}

	out := make([]models.Flashcard, 0)
	for _, c := range cards {
		if c.Unorganized() {
			out = append(out, c)
			continue
		}
		if treatDangling {
			if _, ok := existing[*c.FolderID]; !ok {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (s *flashcardServiceImpl) UpdateFlashcard(ctx context.Context, actor models.Identity, id string, req *dto.FlashcardRequest) (models.FlashcardPatch, error) {
	if err := validateCardFields(req, true); err != nil {
		return models.FlashcardPatch{}, err
	}

	card, err := s.flashcardRepo.GetByID(ctx, id)
	if err != nil {
		return models.FlashcardPatch{}, err
	}
	if err := s.authzService.ValidateMutate(actor, card); err != nil {
		return models.FlashcardPatch{}, err
	}

	// keeping the current folder is always allowed, even if it dangles
	folderID := helpers.OptionalString(req.FolderID)
	if folderID == nil || card.Unorganized() || *folderID != *card.FolderID {
		folderID, err = s.resolveFolder(ctx, actor, folderID)
		if err != nil {
			return models.FlashcardPatch{}, err
		}
	}

	patch := models.FlashcardPatch{
		FlashcardID: card.ID,
		Title:       strings.TrimSpace(req.Title),
		Question:    strings.TrimSpace(req.Question),
		Answer:      strings.TrimSpace(req.Answer),
		FolderID:    folderID,
	}
	if err := s.flashcardRepo.Update(ctx, patch); err != nil {
		s.logger.Error().Err(err).Str("flashcardID", id).Msg("Failed to update flashcard")
		return models.FlashcardPatch{}, err
	}

	s.logger.Info().Str("flashcardID", id).Str("userID", actor.ID).Msg("Flashcard updated")
	return patch, nil
}

func (s *flashcardServiceImpl) DeleteFlashcard(ctx context.Context, actor models.Identity, id string) (models.FlashcardPatch, error) {
	card, err := s.flashcardRepo.GetByID(ctx, id)
	if err != nil {
		return models.FlashcardPatch{}, err
	}
	if err := s.authzService.ValidateMutate(actor, card); err != nil {
		return models.FlashcardPatch{}, err
	}
	if err := s.flashcardRepo.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("flashcardID", id).Msg("Failed to delete flashcard")
		return models.FlashcardPatch{}, err
	}

	s.logger.Info().Str("flashcardID", id).Str("userID", actor.ID).Msg("Flashcard deleted")
	return models.FlashcardPatch{FlashcardID: id, Deleted: true}, nil
}
