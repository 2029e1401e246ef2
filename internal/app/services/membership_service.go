package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/flashclass/internal/app/auth"
	"github.com/yigit/flashclass/internal/app/models"
	"github.com/yigit/flashclass/internal/app/repositories"
	"github.com/yigit/flashclass/internal/pkg/email"
	"github.com/yigit/flashclass/internal/pkg/validation"
)

// MembershipService answers and edits who belongs to a class.
// Every write replaces whole sets and returns the patch the caller merges into its snapshot.
type MembershipService interface {
	IsMember(id models.Identity, class models.Class) bool
	Roster(class models.Class) models.RosterCounts
	// AddManualMember appends a person without an account. Duplicates are kept and
	// registered members are never cross-checked.
	AddManualMember(ctx context.Context, actor models.Identity, classID, name, emailAddr, roll string) (models.ClassPatch, error)
	// SetMembers replaces the registered members with exactly userIDs. Manual members are untouched.
	SetMembers(ctx context.Context, actor models.Identity, classID string, userIDs []string) (models.ClassPatch, error)
	// SetMaterials replaces the shared flashcard and folder sets
	SetMaterials(ctx context.Context, actor models.Identity, classID string, flashcardIDs, folderIDs []string) (models.ClassPatch, error)
}

type membershipServiceImpl struct {
	classRepo    *repositories.ClassRepository
	authzService *auth.AuthorizationService
	notifier     ClassNotifier
	mailer       email.EmailService
	now          func() time.Time
	logger       zerolog.Logger
}

// NewMembershipService creates a new MembershipService. notifier and mailer may be nil.
func NewMembershipService(
	classRepo *repositories.ClassRepository,
	authzService *auth.AuthorizationService,
	notifier ClassNotifier,
	mailer email.EmailService,
	logger zerolog.Logger,
) MembershipService {
	return &membershipServiceImpl{
		classRepo:    classRepo,
		authzService: authzService,
		notifier:     notifierOrNoop(notifier),
		mailer:       mailer,
		now:          time.Now,
		logger:       logger,
	}
}

func (s *membershipServiceImpl) IsMember(id models.Identity, class models.Class) bool {
	return class.HasMember(id)
}

func (s *membershipServiceImpl) Roster(class models.Class) models.RosterCounts {
	return class.Roster()
}

// loadForMutation checks the admin rule before touching the store so non-admins learn nothing
func (s *membershipServiceImpl) loadForMutation(ctx context.Context, actor models.Identity, classID string) (*models.Class, error) {
	if err := s.authzService.ValidateAdmin(actor); err != nil {
		return nil, err
	}
	class, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if err := s.authzService.ValidateMutate(actor, class); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *membershipServiceImpl) write(ctx context.Context, class *models.Class, patch models.ClassPatch) (models.ClassPatch, error) {
	if err := s.classRepo.ApplyPatch(ctx, patch); err != nil {
		return models.ClassPatch{}, err
	}
	publishPatch(s.notifier, *class, patch)
	return patch, nil
}

func (s *membershipServiceImpl) AddManualMember(ctx context.Context, actor models.Identity, classID, name, emailAddr, roll string) (models.ClassPatch, error) {
	name = strings.TrimSpace(name)
	emailAddr = strings.TrimSpace(emailAddr)
	if err := validation.Required(map[string]string{"name": name, "email": emailAddr}); err != nil {
		return models.ClassPatch{}, err
	}

	class, err := s.loadForMutation(ctx, actor, classID)
	if err != nil {
		return models.ClassPatch{}, err
	}

	member := models.ManualMember{
		Name:    name,
		Email:   emailAddr,
		Roll:    strings.TrimSpace(roll),
		AddedAt: s.now().UTC(),
	}
	manual := append(append([]models.ManualMember{}, class.ManualMembers...), member)

	patch, err := s.write(ctx, class, models.ClassPatch{ClassID: class.ID, ManualMembers: &manual})
	if err != nil {
		s.logger.Error().Err(err).Str("classID", class.ID).Msg("Failed to add manual member")
		return models.ClassPatch{}, err
	}

	s.logger.Info().
		Str("classID", class.ID).
		Str("actorID", actor.ID).
		Int("manualCount", len(manual)).
		Msg("Manual member added")

	if s.mailer != nil {
		if err := s.mailer.SendClassInvitation(member.Email, member.Name, class.Name, member.Roll); err != nil {
			s.logger.Warn().Err(err).Str("classID", class.ID).Msg("Class invitation email failed")
		}
	}
	return patch, nil
}

func (s *membershipServiceImpl) SetMembers(ctx context.Context, actor models.Identity, classID string, userIDs []string) (models.ClassPatch, error) {
	class, err := s.loadForMutation(ctx, actor, classID)
	if err != nil {
		return models.ClassPatch{}, err
	}

	members := uniqueIDs(userIDs)
	patch, err := s.write(ctx, class, models.ClassPatch{ClassID: class.ID, Members: &members})
	if err != nil {
		s.logger.Error().Err(err).Str("classID", class.ID).Msg("Failed to set class members")
		return models.ClassPatch{}, err
	}

	s.logger.Info().
		Str("classID", class.ID).
		Str("actorID", actor.ID).
		Int("registeredCount", len(members)).
		Msg("Class members replaced")
	return patch, nil
}

func (s *membershipServiceImpl) SetMaterials(ctx context.Context, actor models.Identity, classID string, flashcardIDs, folderIDs []string) (models.ClassPatch, error) {
	class, err := s.loadForMutation(ctx, actor, classID)
	if err != nil {
		return models.ClassPatch{}, err
	}

	cards := uniqueIDs(flashcardIDs)
	folders := uniqueIDs(folderIDs)
	patch, err := s.write(ctx, class, models.ClassPatch{ClassID: class.ID, Flashcards: &cards, Folders: &folders})
	if err != nil {
		s.logger.Error().Err(err).Str("classID", class.ID).Msg("Failed to set class materials")
		return models.ClassPatch{}, err
	}

	s.logger.Info().
		Str("classID", class.ID).
		Int("flashcards", len(cards)).
		Int("folders", len(folders)).
		Msg("Class materials replaced")
	return patch, nil
}
