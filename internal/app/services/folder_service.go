package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/yigit/flashclass/internal/app/auth"
	"github.com/yigit/flashclass/internal/app/models"
	"github.com/yigit/flashclass/internal/app/repositories"
	"github.com/yigit/flashclass/internal/pkg/apperrors"
)

// FolderService defines the interface for folder operations
type FolderService interface {
	CreateFolder(ctx context.Context, actor models.Identity, name string) (*models.Folder, error)
	GetFolder(ctx context.Context, actor models.Identity, id string) (*models.Folder, error)
	ListFolders(ctx context.Context, actor models.Identity) ([]models.Folder, error)
	RenameFolder(ctx context.Context, actor models.Identity, id, name string) (models.FolderPatch, error)
	// DeleteFolder removes only the folder. Cards tagged with it keep the dangling id.
	DeleteFolder(ctx context.Context, actor models.Identity, id string) (models.FolderPatch, error)
}

type folderServiceImpl struct {
	folderRepo   *repositories.FolderRepository
	classRepo    *repositories.ClassRepository
	authzService *auth.AuthorizationService
	logger       zerolog.Logger
}

// NewFolderService creates a new FolderService
func NewFolderService(
	folderRepo *repositories.FolderRepository,
	classRepo *repositories.ClassRepository,
	authzService *auth.AuthorizationService,
	logger zerolog.Logger,
) FolderService {
	return &folderServiceImpl{
		folderRepo:   folderRepo,
		classRepo:    classRepo,
		authzService: authzService,
		logger:       logger,
	}
}

// validateFolderName trims name and enforces the non-empty and length rules
func validateFolderName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.NewValidationError(map[string]string{"name": "name is required"})
	}
	if utf8.RuneCountInString(name) > models.FolderNameMaxLength {
		return "", apperrors.NewValidationError(map[string]string{
			"name": fmt.Sprintf("name must be at most %d characters", models.FolderNameMaxLength),
		})
	}
	return name, nil
}

func (s *folderServiceImpl) CreateFolder(ctx context.Context, actor models.Identity, name string) (*models.Folder, error) {
	name, err := validateFolderName(name)
	if err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.Create(ctx, &models.Folder{Name: name, CreatedBy: actor.ID})
	if err != nil {
		s.logger.Error().Err(err).Str("userID", actor.ID).Msg("Failed to create folder")
		return nil, err
	}

	s.logger.Info().Str("folderID", folder.ID).Str("userID", actor.ID).Msg("Folder created")
	return folder, nil
}

func (s *folderServiceImpl) GetFolder(ctx context.Context, actor models.Identity, id string) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if auth.CanView(actor, folder) {
		return folder, nil
	}

	classes, err := s.classRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, class := range classes {
		if auth.CanViewThroughClass(actor, folder, class) {
			return folder, nil
		}
	}
	return nil, s.authzService.ValidateView(actor, folder)
}

func (s *folderServiceImpl) ListFolders(ctx context.Context, actor models.Identity) ([]models.Folder, error) {
	if actor.IsAdmin() {
		return s.folderRepo.ListAll(ctx)
	}
	return s.folderRepo.ListByOwner(ctx, actor.ID)
}

func (s *folderServiceImpl) RenameFolder(ctx context.Context, actor models.Identity, id, name string) (models.FolderPatch, error) {
	name, err := validateFolderName(name)
	if err != nil {
		return models.FolderPatch{}, err
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return models.FolderPatch{}, err
	}
	if err := s.authzService.ValidateMutate(actor, folder); err != nil {
		return models.FolderPatch{}, err
	}
	if err := s.folderRepo.Rename(ctx, id, name); err != nil {
		s.logger.Error().Err(err).Str("folderID", id).Msg("Failed to rename folder")
		return models.FolderPatch{}, err
	}

	s.logger.Info().Str("folderID", id).Str("userID", actor.ID).Msg("Folder renamed")
	return models.FolderPatch{FolderID: id, Name: &name}, nil
}

func (s *folderServiceImpl) DeleteFolder(ctx context.Context, actor models.Identity, id string) (models.FolderPatch, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return models.FolderPatch{}, err
	}
	if err := s.authzService.ValidateMutate(actor, folder); err != nil {
		return models.FolderPatch{}, err
	}
	if err := s.folderRepo.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("folderID", id).Msg("Failed to delete folder")
		return models.FolderPatch{}, err
	}

	s.logger.Info().Str("folderID", id).Str("userID", actor.ID).Msg("Folder deleted")
	return models.FolderPatch{FolderID: id, Deleted: true}, nil
}
