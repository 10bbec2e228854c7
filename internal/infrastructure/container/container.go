// Package container provides dependency injection using Uber FX
// This implements the Dependency Inversion Principle from SOLID
package container

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/myboiiPrime/AI-food/internal/application/kitchen"
	"github.com/myboiiPrime/AI-food/internal/infrastructure/ai/roboflow"
	"github.com/myboiiPrime/AI-food/internal/infrastructure/cache"
	"github.com/myboiiPrime/AI-food/internal/infrastructure/config"
	"github.com/myboiiPrime/AI-food/internal/infrastructure/http/handlers"
	"github.com/myboiiPrime/AI-food/internal/infrastructure/http/middleware"
	"github.com/myboiiPrime/AI-food/internal/infrastructure/http/server"
	"github.com/myboiiPrime/AI-food/internal/infrastructure/nutrition/usda"
	"github.com/myboiiPrime/AI-food/internal/infrastructure/recipes/spoonacular"
	"github.com/myboiiPrime/AI-food/internal/ports/inbound"
	"github.com/myboiiPrime/AI-food/internal/ports/outbound"
	"github.com/myboiiPrime/AI-food/pkg/logger"
)

// Module provides all dependency injection modules
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	CacheModule,
	ClientModule,
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

// CacheModule provides the optional nutrition lookup cache. A nil repository
// means caching is off.
var CacheModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (outbound.CacheRepository, error) {
		if !cfg.Cache.Enabled {
			return nil, nil
		}

		if cfg.Cache.Provider == "redis" {
			return cache.NewRedisCache(cfg, log)
		}

		log.Info("using in-memory nutrition cache")
		return cache.NewMemoryCache(), nil
	},
)

// ClientModule provides the remote backend clients. Each client is nil when
// its API key is absent so the service can start degraded, matching the
// health endpoint's availability flags.
var ClientModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) outbound.VisionService {
		if cfg.Vision.APIKey == "" {
			log.Warn("vision backend disabled: no API key configured")
			return nil
		}
		return roboflow.NewClient(cfg.Vision, log)
	},

	func(cfg *config.Config, log *zap.Logger) outbound.RecipeSearchService {
		if cfg.Recipes.APIKey == "" {
			log.Warn("recipe backend disabled: no API key configured")
			return nil
		}
		return spoonacular.NewClient(cfg.Recipes, log)
	},

	func(cfg *config.Config, cacheRepo outbound.CacheRepository, log *zap.Logger) outbound.NutritionService {
		if cfg.Nutrition.APIKey == "" {
			log.Warn("nutrition backend disabled: no API key configured")
			return nil
		}
		return usda.NewClient(cfg.Nutrition, cacheRepo, cfg.Cache.TTL, log)
	},
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	fx.Annotate(
		kitchen.NewService,
		fx.As(new(inbound.KitchenService)),
	),
)

// HTTPModule provides HTTP server and handlers
var HTTPModule = fx.Provide(
	handlers.NewAPIHandlers,
	middleware.New,
	server.New,
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	srv *server.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("starting application",
				zap.String("name", cfg.App.Name),
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			go func() {
				if err := srv.Start(); err != nil {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down application")

			if err := srv.Shutdown(ctx); err != nil {
				log.Error("http server shutdown failed", zap.Error(err))
			}

			_ = log.Sync()
			return nil
		},
	})
}
