package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appAuth "github.com/yigit/schoolcore/internal/app/auth"
	"github.com/yigit/schoolcore/internal/app/calendar"
	appControllers "github.com/yigit/schoolcore/internal/app/controllers"
	appMigrations "github.com/yigit/schoolcore/internal/app/migrations"
	appRepos "github.com/yigit/schoolcore/internal/app/repositories"
	"github.com/yigit/schoolcore/internal/app/repositories/inmem"
	appRoutes "github.com/yigit/schoolcore/internal/app/routes"
	appServices "github.com/yigit/schoolcore/internal/app/services"
	"github.com/yigit/schoolcore/internal/config"
	"github.com/yigit/schoolcore/internal/db"
	appMiddleware "github.com/yigit/schoolcore/internal/middleware"
	pkgAuth "github.com/yigit/schoolcore/internal/pkg/auth"
	"github.com/yigit/schoolcore/internal/pkg/clock"
	"github.com/yigit/schoolcore/internal/pkg/logger"
	"github.com/yigit/schoolcore/internal/seed"
)

// demoTokenTTL bounds the admin token logged after seeding
const demoTokenTTL = 24 * time.Hour

// Storage is the store the services run on plus the demo-data surface
type Storage interface {
	appServices.Store
	seed.Seeder
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store          Storage
	Services       *appServices.Services
	JWTService     *pkgAuth.JWTService
	AuthzService   *appAuth.AuthorizationService
	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.GetEnv("CONFIG_PATH", filepath.Join("configs", "config.yaml"))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "pretty"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStorage opens the configured store. For Postgres it connects and runs
// migrations; the returned closer releases the pool.
func SetupStorage(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (Storage, func(), error) {
	if cfg.Database.Driver == config.DriverMemory {
		lgr.Warn().Msg("Using in-memory storage, data is lost on restart")
		return inmem.New(), func() {}, nil
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, nil, err
	}

	lgr.Info().Msg("Running database migrations...")
	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	migrator := appMigrations.NewMigrator(database.Pool)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return appRepos.NewStore(database.Pool), database.Close, nil
}

// Settings converts the school section of the configuration.
// validateConfig has already checked the dates parse.
func Settings(cfg *config.Config) appServices.Settings {
	settings := appServices.DefaultSettings()
	if len(cfg.School.DefaultWeekendDays) > 0 {
		settings.DefaultWeekend = calendar.ParseWeekendDays(cfg.School.DefaultWeekendDays, calendar.DefaultWeekend)
	}
	if cfg.School.PeriodsPerDay > 0 {
		settings.PeriodsPerDay = cfg.School.PeriodsPerDay
	}
	if d, err := calendar.ParseDate(cfg.School.FallbackStart); err == nil {
		settings.FallbackStart = d
	}
	if d, err := calendar.ParseDate(cfg.School.FallbackEnd); err == nil {
		settings.FallbackEnd = d
	}
	return settings
}

// BuildDependencies initializes services, middleware and controllers over store.
func BuildDependencies(cfg *config.Config, store Storage, clk clock.Clock, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Store: store, Logger: lgr}

	deps.Services = appServices.NewServices(store, clk, Settings(cfg))

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		TokenIssuer: cfg.JWT.Issuer,
	})
	deps.AuthzService = appAuth.NewAuthorizationService(store)
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.Controllers = appRoutes.Controllers{
		Academic:   appControllers.NewAcademicController(deps.Services.AcademicYear, deps.Services.Enrollment),
		Attendance: appControllers.NewAttendanceController(deps.Services.Attendance, deps.Services.Stats, deps.Services.PeriodStats),
		Teacher:    appControllers.NewTeacherController(deps.Services, deps.AuthzService),
		Proxy:      appControllers.NewProxyController(deps.Services.Proxy, deps.AuthzService),
		Timetable:  appControllers.NewTimetableController(deps.Services.Timetable),
	}

	return deps
}

// SeedDemoData fills an empty store and logs an admin token for trying the API.
func SeedDemoData(ctx context.Context, deps *Dependencies) error {
	admin, err := seed.CreateDefaultData(ctx, deps.Store, deps.Logger)
	if err != nil {
		return fmt.Errorf("failed to create demo data: %w", err)
	}
	if admin == nil {
		return nil
	}

	token, err := deps.JWTService.GenerateToken(*admin, demoTokenTTL)
	if err != nil {
		return fmt.Errorf("failed to sign demo token: %w", err)
	}
	deps.Logger.Info().Str("token", token).Dur("ttl", demoTokenTTL).Msg("Demo admin token")
	return nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestID(), appMiddleware.RequestLogger())

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)
	appRoutes.SetupSwagger(router)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
