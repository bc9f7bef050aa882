// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	appPrepplan "github.com/prepline/v1/internal/application/prepplan"
	"github.com/prepline/v1/internal/infrastructure/ai/openai"
	"github.com/prepline/v1/internal/infrastructure/config"
	"github.com/prepline/v1/internal/infrastructure/http/server"
	gormRepo "github.com/prepline/v1/internal/infrastructure/persistence/gorm"
	"github.com/prepline/v1/internal/infrastructure/persistence/memory"
	"github.com/prepline/v1/internal/infrastructure/persistence/postgres"
	redisRepo "github.com/prepline/v1/internal/infrastructure/persistence/redis"
	"github.com/prepline/v1/internal/infrastructure/persistence/sqlite"
	"github.com/prepline/v1/internal/ports/outbound"
	"github.com/prepline/v1/pkg/logger"
)

// Module provides all dependency injection modules
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DatabaseModule,
	CacheModule,
	RepositoryModule,
	CollaboratorModule,
	ServiceModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load("")
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// DatabaseModule provides the GORM connection for the configured driver
var DatabaseModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
		if cfg.Database.Driver == "postgres" {
			return postgres.Connect(cfg, log)
		}

		logLevel := gormLogger.Warn
		if cfg.App.Debug {
			logLevel = gormLogger.Info
		}
		db, err := sqlite.SetupDatabase(cfg.Database.SQLitePath, logLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to setup SQLite database: %w", err)
		}
		log.Info("Connected to SQLite database",
			zap.String("path", cfg.Database.SQLitePath),
		)
		return db, nil
	},
)

// CacheModule provides the shelf-life cache: Redis when enabled, otherwise
// in-process.
var CacheModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (outbound.CacheRepository, error) {
		if !cfg.Redis.Enabled {
			log.Info("Redis disabled, using in-memory cache")
			return memory.NewCacheRepository(), nil
		}
		client, err := redisRepo.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		log.Info("Connected to Redis", zap.String("addr", cfg.Redis.RedisAddr()))
		return redisRepo.NewCacheRepository(client, log), nil
	},
)

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	gormRepo.NewPrepPlanRepository,
	gormRepo.NewChefRepository,
	gormRepo.NewCommitmentSourceRepository,
)

// CollaboratorModule provides the external AI collaborator client, bound to
// each collaborator contract it implements.
var CollaboratorModule = fx.Provide(
	openai.NewClient,
	func(c *openai.Client) outbound.IngredientGenerator { return c },
	func(c *openai.Client) outbound.QuantityEstimator { return c },
	func(c *openai.Client) outbound.ShelfLifeKnowledge { return c },
	func(c *openai.Client) outbound.BatchSuggester { return c },
)

// ServiceModule provides the application services
var ServiceModule = fx.Provide(
	appPrepplan.NewGatherer,
	appPrepplan.NewAggregator,
	appPrepplan.NewShelfLifeResolver,
	appPrepplan.NewAdvisor,
	appPrepplan.NewService,
)

// HTTPModule provides the HTTP server
var HTTPModule = fx.Provide(
	server.NewServer,
)

// LifecycleModule registers start/stop hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	db *gorm.DB,
	srv *server.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting prepline",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)
			go func() {
				if err := srv.Start(); err != nil {
					log.Fatal("HTTP server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down prepline")

			if err := srv.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			sqlDB, err := db.DB()
			if err == nil {
				if err := sqlDB.Close(); err != nil {
					log.Error("Failed to close database connection", zap.Error(err))
				}
			}

			_ = log.Sync()
			return nil
		},
	})
}
