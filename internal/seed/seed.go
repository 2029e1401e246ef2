package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	appModels "github.com/yigit/flashclass/internal/app/models"
	appRepos "github.com/yigit/flashclass/internal/app/repositories"
	"github.com/yigit/flashclass/internal/pkg/apperrors"
)

// AccountCreator writes a credential and profile in one step
type AccountCreator interface {
	CreateAccount(ctx context.Context, name, email, password string, role appModels.RoleType) (*appModels.User, error)
}

// Admin describes the account ensured on start
type Admin struct {
	Name     string
	Email    string
	Password string
}

// EnsureAdmin creates the bootstrap admin if no account uses its email yet.
// An existing account with that email is promoted to admin.
func EnsureAdmin(ctx context.Context, creator AccountCreator, userRepo *appRepos.UserRepository, admin Admin, lgr zerolog.Logger) error {
	if admin.Email == "" {
		lgr.Debug().Msg("No bootstrap admin configured")
		return nil
	}

	user, err := creator.CreateAccount(ctx, admin.Name, admin.Email, admin.Password, appModels.RoleAdmin)
	if err == nil {
		lgr.Info().Str("userID", user.ID).Str("email", user.Email).Msg("Bootstrap admin created")
		return nil
	}
	if !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		return err
	}

	existing, err := userRepo.GetByEmail(ctx, admin.Email)
	if err != nil {
		return err
	}
	if existing.Role == appModels.RoleAdmin {
		lgr.Debug().Str("userID", existing.ID).Msg("Bootstrap admin already present")
		return nil
	}
	if err := userRepo.SetRole(ctx, existing.ID, appModels.RoleAdmin); err != nil {
		return err
	}
	lgr.Warn().Str("userID", existing.ID).Msg("Existing account promoted to admin")
	return nil
}
