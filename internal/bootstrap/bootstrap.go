package bootstrap

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/abroadcrm/internal/app/auth"
	appControllers "github.com/yigit/abroadcrm/internal/app/controllers"
	appMigrations "github.com/yigit/abroadcrm/internal/app/migrations"
	appRepos "github.com/yigit/abroadcrm/internal/app/repositories"
	"github.com/yigit/abroadcrm/internal/app/repositories/memory"
	appRoutes "github.com/yigit/abroadcrm/internal/app/routes"
	appServices "github.com/yigit/abroadcrm/internal/app/services"
	"github.com/yigit/abroadcrm/internal/config"
	"github.com/yigit/abroadcrm/internal/db"
	appMiddleware "github.com/yigit/abroadcrm/internal/middleware"
	pkgAuth "github.com/yigit/abroadcrm/internal/pkg/auth"
	"github.com/yigit/abroadcrm/internal/pkg/filestorage"
	"github.com/yigit/abroadcrm/internal/pkg/helpers"
	"github.com/yigit/abroadcrm/internal/pkg/logger"
	"github.com/yigit/abroadcrm/internal/pkg/tokenblacklist"
	"github.com/yigit/abroadcrm/internal/pkg/validation"
	"github.com/yigit/abroadcrm/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Blacklist      appRepos.TokenBlacklist
	FileStorage    filestorage.FileStorage
	JWTService     *pkgAuth.JWTService
	Services       *appServices.Services
	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
	Logger         zerolog.Logger

	closers []func()
}

// Close releases the connections opened while building the dependencies
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.FromSettings(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().
		Str("logLevel", cfg.Logging.Level).
		Str("logFormat", cfg.Logging.Format).
		Str("dbDriver", cfg.Database.Driver).
		Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects to PostgreSQL and applies pending migrations when auto_migrate is set.
// The memory driver needs no connection and returns nil.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	if cfg.Database.Driver == config.DriverMemory {
		lgr.Warn().Msg("Using the in-memory store, data will not survive a restart")
		return nil, nil
	}

	lgr.Info().Str("host", cfg.Database.Host).Str("dbname", cfg.Database.DBName).Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if !cfg.Database.AutoMigrate {
		return database, nil
	}

	lgr.Info().Msg("Running database migrations...")
	sqlDB := database.SQLDB()
	defer sqlDB.Close()

	if err := appMigrations.NewMigrator(sqlDB).Up(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
// A nil database selects the in-memory repositories.
func BuildDependencies(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	if database != nil {
		deps.Repos = appRepos.NewRepositories(database)
	} else {
		deps.Repos = memory.New().Repositories()
	}

	var err error
	if deps.Blacklist, err = buildBlacklist(ctx, cfg, database, deps); err != nil {
		deps.Close()
		return nil, err
	}
	if _, err := PurgeExpiredTokens(ctx, deps.Blacklist, lgr); err != nil {
		lgr.Warn().Err(err).Msg("Failed to purge expired blacklisted tokens, proceeding anyway...")
	}
	if deps.FileStorage, err = buildFileStorage(ctx, cfg); err != nil {
		lgr.Error().Err(err).Str("backend", cfg.Storage.Backend).Msg("Failed to initialize file storage")
		deps.Close()
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 7*24*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	validation.Setup()

	deps.Services = appServices.NewServices(appServices.Dependencies{
		Repos:      deps.Repos,
		Blacklist:  deps.Blacklist,
		Storage:    deps.FileStorage,
		JWTService: deps.JWTService,
		Policy:     appAuth.NewRolePolicy(),
		Logger:     lgr,
	})

	admin := seed.AdminAccount{
		Username: cfg.Seed.AdminUsername,
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
	}
	if err := seed.EnsureAdmin(ctx, deps.Repos.Users, admin, lgr.With().Str("component", "seed").Logger()); err != nil {
		lgr.Error().Err(err).Msg("Failed to create bootstrap admin, proceeding anyway...")
	}

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.Services.Auth)
	controllerLog := func(name string) zerolog.Logger {
		return lgr.With().Str("controller", name).Logger()
	}
	deps.Controllers = appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(deps.Services.Auth, controllerLog("auth")),
		Users:        appControllers.NewUserController(deps.Services.Users, controllerLog("users")),
		Students:     appControllers.NewStudentController(deps.Services.Students, deps.Services.Remarks, controllerLog("students")),
		Universities: appControllers.NewUniversityController(deps.Services.Universities, controllerLog("universities")),
		Applications: appControllers.NewApplicationController(deps.Services.Applications, controllerLog("applications")),
		Employees:    appControllers.NewEmployeeController(deps.Services.Employees, controllerLog("employees")),
	}

	lgr.Info().Msg("Dependencies built")
	return deps, nil
}

func buildBlacklist(ctx context.Context, cfg *config.Config, database *db.PostgresDB, deps *Dependencies) (appRepos.TokenBlacklist, error) {
	switch cfg.Auth.BlacklistBackend {
	case "postgres":
		if database == nil {
			return nil, fmt.Errorf("postgres token blacklist requires a database connection")
		}
		return appRepos.NewTokenRepository(database.Pool), nil
	case "redis":
		client, err := tokenblacklist.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			deps.Logger.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to redis")
			return nil, err
		}
		deps.closers = append(deps.closers, func() { _ = client.Close() })
		return tokenblacklist.NewRedis(client), nil
	default:
		return tokenblacklist.NewMemory(), nil
	}
}

type expiredTokenPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// PurgeExpiredTokens removes expired entries from blacklists that keep them around.
// Backends that expire entries on their own, like redis, are skipped.
func PurgeExpiredTokens(ctx context.Context, blacklist appRepos.TokenBlacklist, lgr zerolog.Logger) (int64, error) {
	purger, ok := blacklist.(expiredTokenPurger)
	if !ok {
		return 0, nil
	}

	purged, err := purger.PurgeExpired(ctx)
	if err != nil {
		return 0, err
	}
	lgr.Info().Int64("purged", purged).Msg("Expired blacklisted tokens purged")
	return purged, nil
}

func buildFileStorage(ctx context.Context, cfg *config.Config) (filestorage.FileStorage, error) {
	if cfg.Storage.Backend == "s3" {
		return filestorage.NewS3Storage(ctx, filestorage.S3Config{
			Bucket:    cfg.Storage.S3Bucket,
			Region:    cfg.Storage.S3Region,
			Endpoint:  cfg.Storage.S3Endpoint,
			AccessKey: cfg.Storage.S3AccessKey,
			SecretKey: cfg.Storage.S3SecretKey,
		})
	}
	return filestorage.NewLocalStorage(cfg.Storage.LocalPath, cfg.Storage.BaseURL)
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		appMiddleware.Recovery(lgr),
		appMiddleware.RequestLogger(lgr.With().Str("component", "http").Logger()),
		appMiddleware.CORS(cfg.Server.CORSOrigins),
	)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupHealthCheck(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	// Local uploads are served from the path part of the storage base URL
	if local, ok := deps.FileStorage.(*filestorage.LocalStorage); ok {
		prefix := "/uploads"
		if u, err := url.Parse(cfg.Storage.BaseURL); err == nil && u.Path != "" && u.Path != "/" {
			prefix = u.Path
		}
		router.Static(prefix, local.BasePath())
		lgr.Info().Str("path", local.BasePath()).Str("prefix", prefix).Msg("Static file serving configured for uploads directory")
	}

	return router
}
