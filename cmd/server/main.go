package main

import (
	"os"
	"os/signal"
	"syscall"

	configs "github.com/contactbook/api/config"
	"github.com/contactbook/api/internal/handler"
	"github.com/contactbook/api/internal/middleware"
	"github.com/contactbook/api/internal/repository"
	"github.com/contactbook/api/internal/router"
	"github.com/contactbook/api/internal/service"
	"github.com/contactbook/api/pkg/database"
	"github.com/contactbook/api/pkg/logger"
	"github.com/contactbook/api/pkg/redis"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Initialize Zap logger
	if err := logger.InitLogger(config); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
		zap.String("version", "1.0.0"),
	)

	db, err := database.NewPostgresDB(database.Config{
		DSN:             config.DatabaseConnectionString(),
		MaxIdleConns:    config.Database.MaxIdleConns,
		MaxOpenConns:    config.Database.MaxOpenConns,
		ConnMaxLifetime: config.Database.ConnMaxLifetime,
		ConnMaxIdleTime: config.Database.ConnMaxIdleTime,
	})
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	// Run auto migrations
	if err := database.AutoMigrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	// Repositories
	userRepo := repository.NewUserRepository(db)
	contactRepo := repository.NewContactRepository(db)

	redisClient, err := redis.NewClient(config)
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Services
	tokenService := service.NewTokenService(config)
	hasher := service.NewPasswordHasher()
	sessionCache := service.NewSessionCache(redisClient, userRepo, config.Cache.SessionTTL)

	mailer, err := service.NewMailer(config)
	if err != nil {
		logger.GetLogger().Fatal("Failed to initialize mailer", zap.Error(err))
	}

	authService := service.NewAuthService(userRepo, tokenService, hasher, mailer)
	contactService := service.NewContactService(contactRepo)

	avatarService, err := service.NewAvatarService(config, userRepo)
	if err != nil {
		logger.GetLogger().Fatal("Failed to initialize avatar storage", zap.Error(err))
	}

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(avatarService)
	contactHandler := handler.NewContactHandler(contactService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	authMiddleware := middleware.NewAuthMiddleware(tokenService, sessionCache)

	r := router.NewRouter(
		authHandler,
		userHandler,
		contactHandler,
		healthHandler,
		authMiddleware,
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
