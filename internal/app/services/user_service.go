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
	pkgauth "github.com/yigit/flashclass/internal/pkg/auth"
	"github.com/yigit/flashclass/internal/pkg/validation"
)

// UserService defines the interface for user management
type UserService interface {
	GetProfile(ctx context.Context, actor models.Identity) (*models.User, error)
	ListUsers(ctx context.Context, actor models.Identity) ([]models.User, error)
	CreateUser(ctx context.Context, actor models.Identity, req *dto.CreateUserRequest) (*models.User, error)
	// ChangeRole sets role, or toggles the current role when role is nil
	ChangeRole(ctx context.Context, actor models.Identity, targetID string, role *models.RoleType) (models.UserPatch, error)
	DeleteUser(ctx context.Context, actor models.Identity, targetID string) (models.UserPatch, error)
}

type userServiceImpl struct {
	userRepo       *repositories.UserRepository
	credentialRepo *repositories.CredentialRepository
	authzService   *auth.AuthorizationService
	streams        StreamCloser
	hashPassword   func(string) (string, error)
	logger         zerolog.Logger
}

// NewUserService creates a new UserService. streams may be nil.
func NewUserService(
	userRepo *repositories.UserRepository,
	credentialRepo *repositories.CredentialRepository,
	authzService *auth.AuthorizationService,
	streams StreamCloser,
	logger zerolog.Logger,
) UserService {
	if streams == nil {
		streams = noopNotifier{}
	}
	return &userServiceImpl{
		userRepo:       userRepo,
		credentialRepo: credentialRepo,
		authzService:   authzService,
		streams:        streams,
		hashPassword:   pkgauth.HashPassword,
		logger:         logger,
	}
}

func (s *userServiceImpl) GetProfile(ctx context.Context, actor models.Identity) (*models.User, error) {
	return s.userRepo.GetByID(ctx, actor.ID)
}

func (s *userServiceImpl) ListUsers(ctx context.Context, actor models.Identity) ([]models.User, error) {
	if err := s.authzService.ValidateAdmin(actor); err != nil {
		return nil, err
	}
	return s.userRepo.List(ctx)
}

func (s *userServiceImpl) CreateUser(ctx context.Context, actor models.Identity, req *dto.CreateUserRequest) (*models.User, error) {
	if err := validation.Struct(struct {
		Name     string `json:"name" validate:"notblank,max=100"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"password"`
		Role     string `json:"role" validate:"oneof=user admin"`
	}{req.Name, req.Email, req.Password, string(req.Role)}); err != nil {
		return nil, err
	}
	if err := s.authzService.ValidateAdmin(actor); err != nil {
		return nil, err
	}

	user, err := createAccount(ctx, s.userRepo, s.credentialRepo, s.hashPassword,
		strings.TrimSpace(req.Name), req.Email, req.Password, req.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("userID", user.ID).Str("actorID", actor.ID).Str("role", string(user.Role)).Msg("User created by admin")
	return user, nil
}

func (s *userServiceImpl) ChangeRole(ctx context.Context, actor models.Identity, targetID string, role *models.RoleType) (models.UserPatch, error) {
	if role != nil && !role.Valid() {
		return models.UserPatch{}, apperrors.NewValidationError(map[string]string{"role": "role must be one of: user admin"})
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return models.UserPatch{}, err
	}
	if err := s.authzService.ValidateRoleChange(actor, *target); err != nil {
		return models.UserPatch{}, err
	}

	next := target.Role.Toggle()
	if role != nil {
		next = *role
	}
	if err := s.userRepo.SetRole(ctx, targetID, next); err != nil {
		s.logger.Error().Err(err).Str("userID", targetID).Msg("Failed to change role")
		return models.UserPatch{}, err
	}

	s.logger.Info().
		Str("userID", targetID).
		Str("actorID", actor.ID).
		Str("from", string(target.Role)).
		Str("to", string(next)).
		Msg("User role changed")
	// open event streams carry the old role
	s.streams.DisconnectUser(targetID)
	return models.UserPatch{UserID: targetID, Role: &next}, nil
}

func (s *userServiceImpl) DeleteUser(ctx context.Context, actor models.Identity, targetID string) (models.UserPatch, error) {
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return models.UserPatch{}, err
	}
	if err := s.authzService.ValidateUserDeletion(actor, *target); err != nil {
		return models.UserPatch{}, err
	}

	if err := s.userRepo.Delete(ctx, targetID); err != nil {
		s.logger.Error().Err(err).Str("userID", targetID).Msg("Failed to delete user")
		return models.UserPatch{}, err
	}
	// accounts seeded without a password have no credential
	if err := s.credentialRepo.Delete(ctx, targetID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.Warn().Err(err).Str("userID", targetID).Msg("User deleted but credential removal failed")
	}

	s.streams.DisconnectUser(targetID)
	s.logger.Info().Str("userID", targetID).Str("actorID", actor.ID).Msg("User deleted")
	return models.UserPatch{UserID: targetID, Deleted: true}, nil
}

// createAccount writes the credential and the profile under the same generated id
func createAccount(
	ctx context.Context,
	userRepo *repositories.UserRepository,
	credentialRepo *repositories.CredentialRepository,
	hash func(string) (string, error),
	name, emailAddr, password string,
	role models.RoleType,
) (*models.User, error) {
	exists, err := userRepo.EmailExists(ctx, emailAddr)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &apperrors.CustomError{Err: apperrors.ErrEmailAlreadyExists, Message: "Email already registered"}
	}

	hashed, err := hash(password)
	if err != nil {
		return nil, apperrors.NewBackendError("hash password", err)
	}

	id, err := credentialRepo.Create(ctx, emailAddr, hashed)
	if err != nil {
		return nil, err
	}
	if err := userRepo.Create(ctx, id, &models.User{Name: name, Email: emailAddr, Role: role}); err != nil {
		// leave no credential without a profile
		_ = credentialRepo.Delete(ctx, id)
		return nil, err
	}
	return userRepo.GetByID(ctx, id)
}
