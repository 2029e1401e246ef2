package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/flashclass/internal/app/auth"
	"github.com/yigit/flashclass/internal/app/models"
	"github.com/yigit/flashclass/internal/app/models/dto"
	"github.com/yigit/flashclass/internal/app/repositories"
	"github.com/yigit/flashclass/internal/pkg/validation"
)

// ClassService defines the interface for class operations
type ClassService interface {
	CreateClass(ctx context.Context, actor models.Identity, req *dto.CreateClassRequest) (*models.Class, error)
	GetClass(ctx context.Context, actor models.Identity, id string) (*models.Class, error)
	ListClasses(ctx context.Context, actor models.Identity) ([]models.Class, error)
	DeleteClass(ctx context.Context, actor models.Identity, id string) (models.ClassPatch, error)
	GetMaterials(ctx context.Context, actor models.Identity, id string) (*models.Class, []models.Flashcard, error)
	GetRoster(ctx context.Context, actor models.Identity, id string) (models.RosterCounts, error)
}

type classServiceImpl struct {
	classRepo         *repositories.ClassRepository
	materialsService  MaterialsService
	membershipService MembershipService
	authzService      *auth.AuthorizationService
	notifier          ClassNotifier
	logger            zerolog.Logger
}

// NewClassService creates a new ClassService
func NewClassService(
	classRepo *repositories.ClassRepository,
	materialsService MaterialsService,
	membershipService MembershipService,
	authzService *auth.AuthorizationService,
	notifier ClassNotifier,
	logger zerolog.Logger,
) ClassService {
	return &classServiceImpl{
		classRepo:         classRepo,
		materialsService:  materialsService,
		membershipService: membershipService,
		authzService:      authzService,
		notifier:          notifierOrNoop(notifier),
		logger:            logger,
	}
}

func (s *classServiceImpl) CreateClass(ctx context.Context, actor models.Identity, req *dto.CreateClassRequest) (*models.Class, error) {
	name := strings.TrimSpace(req.Name)
	if err := validation.Required(map[string]string{"name": name}); err != nil {
		return nil, err
	}
	if err := s.authzService.ValidateAdmin(actor); err != nil {
		return nil, err
	}

	class, err := s.classRepo.Create(ctx, &models.Class{
		Name:        name,
		Institute:   strings.TrimSpace(req.Institute),
		Description: strings.TrimSpace(req.Description),
		CreatedBy:   actor.ID,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("actorID", actor.ID).Msg("Failed to create class")
		return nil, err
	}

	s.logger.Info().Str("classID", class.ID).Str("actorID", actor.ID).Msg("Class created")
	return class, nil
}

// GetClass resolves the class before checking access so a missing id is NotFound, not AccessDenied
func (s *classServiceImpl) GetClass(ctx context.Context, actor models.Identity, id string) (*models.Class, error) {
	class, err := s.classRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authzService.ValidateView(actor, class); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *classServiceImpl) ListClasses(ctx context.Context, actor models.Identity) ([]models.Class, error) {
	classes, err := s.classRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		return classes, nil
	}

	visible := make([]models.Class, 0)
	for _, c := range classes {
		if s.membershipService.IsMember(actor, c) {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

func (s *classServiceImpl) DeleteClass(ctx context.Context, actor models.Identity, id string) (models.ClassPatch, error) {
	if err := s.authzService.ValidateAdmin(actor); err != nil {
		return models.ClassPatch{}, err
	}
	if err := s.classRepo.Delete(ctx, id); err != nil {
		return models.ClassPatch{}, err
	}

	patch := models.ClassPatch{ClassID: id, Deleted: true}
	publishPatch(s.notifier, models.Class{ID: id}, patch)
	s.logger.Info().Str("classID", id).Str("actorID", actor.ID).Msg("Class deleted")
	return patch, nil
}

func (s *classServiceImpl) GetMaterials(ctx context.Context, actor models.Identity, id string) (*models.Class, []models.Flashcard, error) {
	class, err := s.GetClass(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	materials, err := s.materialsService.ResolveClassMaterials(ctx, class)
	if err != nil {
		return nil, nil, err
	}
	return class, materials, nil
}

func (s *classServiceImpl) GetRoster(ctx context.Context, actor models.Identity, id string) (models.RosterCounts, error) {
	class, err := s.GetClass(ctx, actor, id)
	if err != nil {
		return models.RosterCounts{}, err
	}
	return s.membershipService.Roster(*class), nil
}
