package app

import (
	"context"
	"fmt"

	"github.com/lumapix/photos-api/config"
	"github.com/lumapix/photos-api/handlers"
	"github.com/lumapix/photos-api/middleware"
	"github.com/lumapix/photos-api/repositories"
	"github.com/lumapix/photos-api/repositories/postgres"
	"github.com/lumapix/photos-api/services"
	"github.com/lumapix/photos-api/supabase"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Users     repositories.UserRepository
	Photos    repositories.PhotoRepository
	TxManager repositories.TransactionManager

	// Token verification. The key cache is exposed so operators can force
	// a JWKS refetch without restarting the process.
	KeyCache       *supabase.KeyCache
	TokenValidator *supabase.Validator

	// Services
	UserService  *services.UserService
	PhotoService *services.PhotoService

	// HTTP
	AuthMiddleware *middleware.AuthMiddleware
	PhotoHandler   *handlers.PhotoHandler
	UserHandler    *handlers.UserHandler
	HealthHandler  *handlers.HealthHandler
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	// Initialize PostgreSQL
	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize repositories
	deps.initRepositories()

	// Initialize domain services
	deps.initServices()

	// Initialize token verification (Supabase JWKS)
	deps.initAuth(cfg)

	// Initialize HTTP handlers
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the PostgreSQL connection and schema
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	// Test the connection
	if err := d.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if err := factory.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	d.Logger.Info("database connection established",
		zap.String("connection", cfg.Database.LogString()))

	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Users = repos.Users
	d.Photos = repos.Photos
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

// initServices initializes the domain services
func (d *Dependencies) initServices() {
	d.UserService = services.NewUserService(d.Users, d.Logger)
	d.PhotoService = services.NewPhotoService(d.Photos, d.TxManager, d.Logger)
}

// initAuth wires the JWKS key cache, token validator, and auth middleware
func (d *Dependencies) initAuth(cfg *config.Config) {
	jwksURL := cfg.Supabase.JWKSURL()
	if jwksURL == "" {
		d.Logger.Warn("supabase not configured, protected routes will reject all requests")
		d.AuthMiddleware = middleware.NewAuthMiddleware(&rejectAllValidator{}, d.UserService, d.Logger)
		return
	}

	d.KeyCache = supabase.NewKeyCache(supabase.KeyCacheConfig{
		JWKSURL:     jwksURL,
		TTL:         cfg.Supabase.JWKSCacheTTL,
		HTTPTimeout: cfg.Supabase.JWKSTimeout,
	})
	d.TokenValidator = supabase.NewValidator(d.KeyCache, supabase.ValidatorConfig{
		Audience:       cfg.Supabase.Audience,
		VerifyAudience: cfg.Supabase.VerifyAudience,
	})
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.TokenValidator, d.UserService, d.Logger)

	d.Logger.Info("token validation initialized", zap.String("jwks_url", jwksURL))
}

// initHandlers initializes the HTTP handlers
func (d *Dependencies) initHandlers() {
	d.PhotoHandler = handlers.NewPhotoHandler(d.PhotoService, d.Logger)
	d.UserHandler = handlers.NewUserHandler(d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(d.DB, d.Logger)
}

// rejectAllValidator rejects all tokens (used when Supabase is not configured)
type rejectAllValidator struct{}

func (*rejectAllValidator) ValidateToken(context.Context, string) (*supabase.Identity, error) {
	return nil, fmt.Errorf("authentication not configured")
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	// Close database connection
	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
