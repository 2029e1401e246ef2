package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/flashclass/internal/app/auth"
	"github.com/yigit/flashclass/internal/app/models"
	"github.com/yigit/flashclass/internal/app/repositories"
	"github.com/yigit/flashclass/internal/docstore"
	"github.com/yigit/flashclass/internal/docstore/memory"
	pkgauth "github.com/yigit/flashclass/internal/pkg/auth"
)

var (
	adminID = models.Identity{ID: "admin", Email: "admin@example.com", Role: models.RoleAdmin}
	aliceID = models.Identity{ID: "alice", Email: "alice@example.com", Role: models.RoleUser}
	bobID   = models.Identity{ID: "bob", Email: "bob@example.com", Role: models.RoleUser}
	janeID  = models.Identity{ID: "jane", Email: "jane@x.com", Role: models.RoleUser}
)

type publishedEvent struct {
	classID   string
	eventType string
	payload   any
	audience  func(models.Identity) bool
}

type recordingNotifier struct {
	mu           sync.Mutex
	events       []publishedEvent
	closed       []string
	disconnected []string
}

func (n *recordingNotifier) PublishTo(classID, eventType string, payload any, audience func(models.Identity) bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, publishedEvent{classID, eventType, payload, audience})
}

func (n *recordingNotifier) CloseClass(classID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = append(n.closed, classID)
}

func (n *recordingNotifier) DisconnectUser(userID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.disconnected = append(n.disconnected, userID)
	return 1
}

type invitation struct {
	to, name, class, roll string
}

type recordingMailer struct {
	invitations []invitation
	welcomed    []string
	err         error
}

func (m *recordingMailer) SendClassInvitation(toEmail, toName, className, roll string) error {
	m.invitations = append(m.invitations, invitation{toEmail, toName, className, roll})
	return m.err
}

func (m *recordingMailer) SendWelcomeEmail(toEmail, toName string) error {
	m.welcomed = append(m.welcomed, toEmail)
	return m.err
}

type fixture struct {
	ctx      context.Context
	store    *memory.Store
	repos    *repositories.Repositories
	notifier *recordingNotifier
	mailer   *recordingMailer

	materials  MaterialsService
	membership MembershipService
	classes    ClassService
	flashcards FlashcardService
	folders    FolderService
	users      UserService
	dashboard  DashboardService
	auth       *AuthService
}

func cheapHash(p string) (string, error) {
	return pkgauth.HashPasswordWithCost(p, bcrypt.MinCost)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	store.SetClock(func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) })
	repos := repositories.NewRepositories(store)
	logger := zerolog.Nop()
	authz := auth.NewAuthorizationService(logger)
	notifier := &recordingNotifier{}
	mailer := &recordingMailer{}

	materials := NewMaterialsService(repos.ClassRepository, repos.FlashcardRepository, logger)
	membership := NewMembershipService(repos.ClassRepository, authz, notifier, mailer, logger)
	users := NewUserService(repos.UserRepository, repos.CredentialRepository, authz, notifier, logger)
	users.(*userServiceImpl).hashPassword = cheapHash

	jwt := pkgauth.NewJWTService(pkgauth.JWTConfig{SecretKey: "test", AccessTokenExp: time.Hour, TokenIssuer: "flashclass.test"})
	authSvc := NewAuthService(repos.UserRepository, repos.CredentialRepository, repos.TokenRepository, jwt, mailer, logger)
	authSvc.SetPasswordHasher(cheapHash)

	return &fixture{
		ctx:        context.Background(),
		store:      store,
		repos:      repos,
		notifier:   notifier,
		mailer:     mailer,
		materials:  materials,
		membership: membership,
		classes:    NewClassService(repos.ClassRepository, materials, membership, authz, notifier, logger),
		flashcards: NewFlashcardService(repos.FlashcardRepository, repos.FolderRepository, repos.ClassRepository, authz, logger),
		folders:    NewFolderService(repos.FolderRepository, repos.ClassRepository, authz, logger),
		users:      users,
		dashboard:  NewDashboardService(repos, logger),
		auth:       authSvc,
	}
}

func (f *fixture) put(t *testing.T, collection, id string, fields docstore.Fields) {
	t.Helper()
	require.NoError(t, f.store.Set(f.ctx, collection, id, fields))
}

func (f *fixture) card(t *testing.T, id, owner string, folderID any) {
	t.Helper()
	f.put(t, models.CollectionFlashcards, id, docstore.Fields{
		"title": id, "question": "q-" + id, "answer": "a-" + id,
		"folderId": folderID, "createdBy": owner, "createdAt": docstore.ServerTimestamp,
	})
}

func (f *fixture) folder(t *testing.T, id, owner string) {
	t.Helper()
	f.put(t, models.CollectionFolders, id, docstore.Fields{"name": id, "createdBy": owner})
}

func (f *fixture) user(t *testing.T, id models.Identity) {
	t.Helper()
	f.put(t, models.CollectionUsers, id.ID, docstore.Fields{"name": id.ID, "email": id.Email, "role": string(id.Role)})
}

func (f *fixture) class(t *testing.T, id string, members, flashcards, folders []string, manual ...models.ManualMember) {
	t.Helper()
	if manual == nil {
		manual = []models.ManualMember{}
	}
	f.put(t, models.CollectionClasses, id, docstore.Fields{
		"name": "Class " + id, "createdBy": adminID.ID,
		"members": members, "manualMembers": manual,
		"flashcards": flashcards, "folders": folders,
	})
}

func cardIDs(cards []models.Flashcard) []string {
	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	return ids
}
