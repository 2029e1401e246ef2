package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/flashclass/internal/app/models"
	"github.com/yigit/flashclass/internal/app/models/dto"
	"github.com/yigit/flashclass/internal/app/repositories"
	"github.com/yigit/flashclass/internal/pkg/apperrors"
	"github.com/yigit/flashclass/internal/pkg/auth"
	"github.com/yigit/flashclass/internal/pkg/email"
	"github.com/yigit/flashclass/internal/pkg/validation"
)

// AuthService is the authentication collaborator: it signs users up and in, and turns a bearer
// token into a verified identity whose role comes from the users collection.
type AuthService struct {
	userRepo       *repositories.UserRepository
	credentialRepo *repositories.CredentialRepository
	tokenRepo      *repositories.TokenRepository
	jwtService     *auth.JWTService
	mailer         email.EmailService
	hashPassword   func(string) (string, error)
	logger         zerolog.Logger
}

// NewAuthService creates a new AuthService. mailer may be nil.
func NewAuthService(
	userRepo *repositories.UserRepository,
	credentialRepo *repositories.CredentialRepository,
	tokenRepo *repositories.TokenRepository,
	jwtService *auth.JWTService,
	mailer email.EmailService,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		credentialRepo: credentialRepo,
		tokenRepo:      tokenRepo,
		jwtService:     jwtService,
		mailer:         mailer,
		hashPassword:   auth.HashPassword,
		logger:         logger,
	}
}

// SetPasswordHasher replaces the bcrypt hasher, e.g. with a cheaper cost in tests
func (s *AuthService) SetPasswordHasher(hash func(string) (string, error)) {
	s.hashPassword = hash
}

// Register creates an account with the user role and signs it in
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := validation.Struct(struct {
		Name     string `json:"name" validate:"notblank,max=100"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"min=8"`
	}{req.Name, req.Email, req.Password}); err != nil {
		return nil, err
	}

	user, err := s.CreateAccount(ctx, req.Name, req.Email, req.Password, models.RoleUser)
	if err != nil {
		return nil, err
	}

	if s.mailer != nil {
		if err := s.mailer.SendWelcomeEmail(user.Email, user.Name); err != nil {
			s.logger.Warn().Err(err).Str("userID", user.ID).Msg("Welcome email failed")
		}
	}

	s.logger.Info().Str("userID", user.ID).Msg("User registered")
	return s.issue(user)
}

// CreateAccount writes a credential and profile with the given role. Used by registration,
// admin bootstrap and the CLI.
func (s *AuthService) CreateAccount(ctx context.Context, name, emailAddr, password string, role models.RoleType) (*models.User, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError(map[string]string{"role": "role must be one of: user admin"})
	}
	return createAccount(ctx, s.userRepo, s.credentialRepo, s.hashPassword, strings.TrimSpace(name), emailAddr, password, role)
}

// Login verifies the password and issues an access token
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	cred, err := s.credentialRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(cred.PasswordHash, req.Password) {
		s.logger.Warn().Str("userID", cred.UserID).Msg("Failed login attempt")
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByID(ctx, cred.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	s.logger.Info().Str("userID", user.ID).Msg("User logged in")
	return s.issue(user)
}

// Logout revokes the token so it cannot be used again before it expires
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return apperrors.ErrTokenInvalid
	}
	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.tokenRepo.Revoke(ctx, claims.ID, claims.UserID, expiresAt); err != nil {
		return err
	}
	s.logger.Info().Str("userID", claims.UserID).Msg("User logged out")
	return nil
}

// Authenticate validates a token and loads the caller's identity, including the current role
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.Identity, *auth.Claims, error) {
	claims, err := s.jwtService.ValidateAndExtractClaims(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return models.Identity{}, nil, apperrors.ErrTokenExpired
		}
		return models.Identity{}, nil, apperrors.ErrTokenInvalid
	}

	revoked, err := s.tokenRepo.IsRevoked(ctx, claims.ID)
	if err != nil {
		return models.Identity{}, nil, err
	}
	if revoked {
		return models.Identity{}, nil, apperrors.ErrTokenRevoked
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// account deleted after the token was issued
			return models.Identity{}, nil, apperrors.ErrTokenInvalid
		}
		return models.Identity{}, nil, err
	}
	return user.Identity(), claims, nil
}

func (s *AuthService) issue(user *models.User) (*dto.AuthResponse, error) {
	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		s.logger.Error().Err(err).Str("userID", user.ID).Msg("Failed to sign token")
		return nil, apperrors.NewBackendError("sign token", err)
	}
	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: token.Token,
			TokenType:   "Bearer",
			ExpiresIn:   int64(token.ExpiresIn),
		},
		User: dto.FromUser(user),
	}, nil
}
