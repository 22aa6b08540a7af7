package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	configs "github.com/arclyte/accounts/config"
	"github.com/arclyte/accounts/internal/dto"
	"github.com/arclyte/accounts/internal/handler"
	"github.com/arclyte/accounts/internal/middleware"
	"github.com/arclyte/accounts/internal/repository"
	"github.com/arclyte/accounts/internal/router"
	"github.com/arclyte/accounts/internal/service"
	"github.com/arclyte/accounts/pkg/database"
	"github.com/arclyte/accounts/pkg/logger"
	"github.com/arclyte/accounts/pkg/redis"
	"github.com/arclyte/accounts/pkg/storage"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Initialize Zap logger
	if err := logger.InitLogger(config.App.Environment); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
	)

	dto.RegisterCustomValidators()

	db, err := database.NewPostgresDB(database.Config{
		Host:            config.Database.Host,
		Port:            config.Database.Port,
		User:            config.Database.User,
		Password:        config.Database.Password,
		Database:        config.Database.Name,
		SSLMode:         config.Database.SSLMode,
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: 60,
		ConnMaxIdleTime: 10,
	})
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	redisClient := redis.NewClient(redis.Config{
		Host:         config.Redis.Host,
		Port:         config.Redis.Port,
		Password:     config.Redis.Password,
		DB:           config.Redis.Database,
		Enabled:      config.Redis.Enabled,
		PoolSize:     config.Redis.PoolSize,
		MinIdleConns: config.Redis.MinIdleConns,
	}, logger.GetLogger())
	defer redisClient.Close()

	fileStore, presigner, err := newStorage(config)
	if err != nil {
		logger.GetLogger().Fatal("Failed to initialize storage", zap.Error(err))
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	documentRepo := repository.NewDocumentRepository(db)

	// Services
	tokenService := service.NewTokenService(
		config.JWT.AccessSecret,
		config.JWT.RefreshSecret,
		config.JWT.AccessTTL,
		config.JWT.RefreshTTL,
	)
	authService := service.NewAuthService(userRepo, tokenService)
	userService := service.NewUserService(userRepo)
	uploadService := service.NewUploadService(userRepo, documentRepo, fileStore, presigner)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, config.JWT.RefreshTTL, config.IsProduction())
	userHandler := handler.NewUserHandler(userService, uploadService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	jwtMiddleware := middleware.NewJWTMiddleware(tokenService)

	r := router.NewRouter(
		authHandler,
		userHandler,
		healthHandler,
		jwtMiddleware,
		redisClient,
		config,
	).SetupRoutes()

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
			zap.String("host", "0.0.0.0"),
		)
		if err := r.Run(":" + config.App.Port); err != nil {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", config.App.Port),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.GetLogger().Info("Shutting down server...")
}

// newStorage builds the configured upload backend. Only S3 supports
// presigned client uploads.
func newStorage(config *configs.Config) (storage.Store, storage.Presigner, error) {
	switch config.Storage.Driver {
	case "s3":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
			Endpoint:  config.Storage.S3Endpoint,
			Region:    config.Storage.S3Region,
			Bucket:    config.Storage.S3Bucket,
			AccessKey: config.Storage.S3AccessKey,
			SecretKey: config.Storage.S3SecretKey,
		})
		if err != nil {
			return nil, nil, err
		}
		return s3Store, s3Store, nil
	default:
		localStore, err := storage.NewLocalStore(config.Storage.LocalDir)
		if err != nil {
			return nil, nil, err
		}
		return localStore, localStore, nil
	}
}
