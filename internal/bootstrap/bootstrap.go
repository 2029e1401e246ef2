package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/flashclass/internal/app/auth"
	appControllers "github.com/yigit/flashclass/internal/app/controllers"
	appMigrations "github.com/yigit/flashclass/internal/app/migrations"
	appModels "github.com/yigit/flashclass/internal/app/models"
	appRepos "github.com/yigit/flashclass/internal/app/repositories"
	appRoutes "github.com/yigit/flashclass/internal/app/routes"
	appServices "github.com/yigit/flashclass/internal/app/services"
	"github.com/yigit/flashclass/internal/config"
	"github.com/yigit/flashclass/internal/db"
	"github.com/yigit/flashclass/internal/docstore"
	"github.com/yigit/flashclass/internal/docstore/memory"
	"github.com/yigit/flashclass/internal/docstore/natskv"
	"github.com/yigit/flashclass/internal/docstore/postgres"
	appMiddleware "github.com/yigit/flashclass/internal/middleware"
	pkgAuth "github.com/yigit/flashclass/internal/pkg/auth"
	"github.com/yigit/flashclass/internal/pkg/email"
	"github.com/yigit/flashclass/internal/pkg/helpers"
	"github.com/yigit/flashclass/internal/pkg/logger"
	"github.com/yigit/flashclass/internal/pkg/metrics"
	"github.com/yigit/flashclass/internal/pkg/websocket"
	"github.com/yigit/flashclass/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store   docstore.Store
	Metrics *metrics.Metrics
	Repos   *appRepos.Repositories
	Hub     *websocket.Hub

	JWTService        *pkgAuth.JWTService
	AuthzService      *appAuth.AuthorizationService
	AuthService       *appServices.AuthService
	UserService       appServices.UserService
	MaterialsService  appServices.MaterialsService
	MembershipService appServices.MembershipService
	ClassService      appServices.ClassService
	FlashcardService  appServices.FlashcardService
	FolderService     appServices.FolderService
	DashboardService  appServices.DashboardService

	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.ConfigFromStrings(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().
		Str("logLevel", cfg.Logging.Level).
		Str("logFormat", cfg.Logging.Format).
		Str("store", cfg.Store.Backend).
		Msg("Logger configured")
	return cfg, lgr, nil
}

// OpenStore connects the configured document store backend. For postgres the schema
// migrations are applied first.
func OpenStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (docstore.Store, error) {
	switch cfg.Store.Backend {
	case config.StorePostgres:
		lgr.Info().Msg("Establishing database connection...")
		pool, err := db.NewPostgresPool(ctx, cfg, lgr)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to database")
			return nil, err
		}

		migrator := appMigrations.NewMigrator(pool, lgr)
		defer migrator.Close()
		if err := migrator.Up(ctx); err != nil {
			pool.Close()
			lgr.Error().Err(err).Msg("Database migration error")
			return nil, fmt.Errorf("database migrations failed: %w", err)
		}
		lgr.Info().Msg("Database migrations successfully applied")
		return postgres.New(pool), nil

	case config.StoreNATS:
		lgr.Info().Str("url", cfg.NATS.URL).Msg("Connecting to NATS key-value store...")
		store, err := natskv.Connect(cfg.NATS.URL, natskv.Config{
			BucketPrefix: cfg.NATS.BucketPrefix,
			History:      uint8(cfg.NATS.History),
		})
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to NATS")
			return nil, err
		}
		return store, nil

	case config.StoreMemory:
		lgr.Warn().Msg("Using in-memory store, data is lost on restart")
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// BuildDependencies initializes repositories, services and controllers over store
func BuildDependencies(cfg *config.Config, store docstore.Store, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, Metrics: metrics.New()}

	deps.Store = docstore.Instrument(store, deps.Metrics)
	deps.Repos = appRepos.NewRepositories(deps.Store)
	deps.Hub = websocket.NewHub(logger.Component("websocket"))

	var mailer email.EmailService
	if cfg.SMTPEnabled() {
		mailer = email.NewEmailService(email.SMTPConfig{
			Host:      cfg.SMTP.Host,
			Port:      cfg.SMTP.Port,
			Username:  cfg.SMTP.Username,
			Password:  cfg.SMTP.Password,
			FromName:  cfg.SMTP.FromName,
			FromEmail: cfg.SMTP.FromEmail,
			UseTLS:    cfg.SMTP.UseTLS,
			BaseURL:   cfg.SMTP.BaseURL,
		}, logger.Component("email"))
	} else {
		lgr.Info().Msg("SMTP not configured, emails are disabled")
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	deps.AuthzService = appAuth.NewAuthorizationService(logger.Component("authz"))

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.CredentialRepository,
		deps.Repos.TokenRepository,
		deps.JWTService,
		mailer,
		logger.Component("auth"),
	)
	deps.UserService = appServices.NewUserService(
		deps.Repos.UserRepository,
		deps.Repos.CredentialRepository,
		deps.AuthzService,
		deps.Hub,
		logger.Component("users"),
	)
	deps.MaterialsService = appServices.NewMaterialsService(
		deps.Repos.ClassRepository,
		deps.Repos.FlashcardRepository,
		logger.Component("materials"),
	)
	deps.MembershipService = appServices.NewMembershipService(
		deps.Repos.ClassRepository,
		deps.AuthzService,
		deps.Hub,
		mailer,
		logger.Component("membership"),
	)
	deps.ClassService = appServices.NewClassService(
		deps.Repos.ClassRepository,
		deps.MaterialsService,
		deps.MembershipService,
		deps.AuthzService,
		deps.Hub,
		logger.Component("classes"),
	)
	deps.FlashcardService = appServices.NewFlashcardService(
		deps.Repos.FlashcardRepository,
		deps.Repos.FolderRepository,
		deps.Repos.ClassRepository,
		deps.AuthzService,
		logger.Component("flashcards"),
	)
	deps.FolderService = appServices.NewFolderService(
		deps.Repos.FolderRepository,
		deps.Repos.ClassRepository,
		deps.AuthzService,
		logger.Component("folders"),
	)
	deps.DashboardService = appServices.NewDashboardService(deps.Repos, logger.Component("dashboard"))

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.AuthService)

	deps.Controllers = appRoutes.Controllers{
		Auth:      appControllers.NewAuthController(deps.AuthService, lgr),
		User:      appControllers.NewUserController(deps.UserService, lgr),
		Flashcard: appControllers.NewFlashcardController(deps.FlashcardService, lgr),
		Folder:    appControllers.NewFolderController(deps.FolderService, lgr),
		Class: appControllers.NewClassController(
			deps.ClassService,
			deps.MembershipService,
			websocket.NewHandler(deps.Hub, cfg.Server.CORSOrigins, logger.Component("websocket")),
			lgr,
		),
		Dashboard: appControllers.NewDashboardController(deps.DashboardService, lgr),
	}

	return deps, nil
}

// SeedDefaultData ensures the configured bootstrap admin exists
func SeedDefaultData(ctx context.Context, cfg *config.Config, deps *Dependencies) error {
	return seed.EnsureAdmin(ctx, deps.AuthService, deps.Repos.UserRepository, seed.Admin{
		Name:     cfg.Admin.Name,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	}, deps.Logger)
}

// SetupRouter configures the Gin engine with middleware and routes
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.Use(
		appMiddleware.Recovery(lgr),
		appMiddleware.RequestLogger(logger.Component("http")),
		deps.Metrics.Middleware(),
	)

	appRoutes.SetupSwagger(router, "localhost:"+cfg.Server.Port)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})
	router.GET("/api/v1/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if _, err := deps.Store.Find(ctx, appModels.CollectionUsers, docstore.Equal("email", "")); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "store": cfg.Store.Backend})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": cfg.Store.Backend})
	})

	return router, nil
}
