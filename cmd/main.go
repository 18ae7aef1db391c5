package main

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/talkroom/chat-room-service/internal/cache"
	"github.com/talkroom/chat-room-service/internal/config"
	"github.com/talkroom/chat-room-service/internal/domain"
	"github.com/talkroom/chat-room-service/internal/handler"
	"github.com/talkroom/chat-room-service/internal/repository"
	"github.com/talkroom/chat-room-service/internal/service"
	"github.com/talkroom/chat-room-service/pkg/database"
	pkglog "github.com/talkroom/chat-room-service/pkg/log"
	"github.com/talkroom/chat-room-service/pkg/middleware"
	"github.com/talkroom/chat-room-service/pkg/pubsub"
	"github.com/talkroom/chat-room-service/pkg/session"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fallback := pkglog.L()
		fallback.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Level == "debug",
		ServiceName: "chat-room-service",
	})
	logger := pkglog.L()

	// Connect to database using GORM
	db, err := database.New(&database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Auto-migrate
	if err := database.AutoMigrate(db, &domain.RoomModel{}, &domain.ChatModel{}); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Msg("database migration completed")

	// Initialize repositories
	roomRepo := repository.NewGormRoomRepository(db)
	chatRepo := repository.NewGormChatRepository(db)

	// Initialize Redis chat-history cache
	chatCache, err := cache.NewRedisChatCache(cfg.Redis, cfg.Cache.Prefix)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer chatCache.Close()
	logger.Info().Msg("redis cache connected")

	// Initialize the event publisher
	publisher, err := pubsub.NewRedisPublisher(pubsub.RedisConfig{
		Address:  cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect event publisher")
	}
	defer publisher.Close()

	// Initialize service
	chatService := service.NewChatService(roomRepo, chatRepo, chatCache, cfg.Cache.TTL, publisher)

	// Initialize sessions and auth middleware
	sessions := session.NewManager(cfg.Session.Secret, cfg.Session.TTL, "chat-room-service")
	auth := middleware.NewSessionAuth(sessions)

	// Initialize HTTP handler
	httpHandler := handler.NewHandler(chatService, sessions, auth)

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Register routes
	httpHandler.RegisterRoutes(r)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info().Str("addr", addr).Str("driver", cfg.Database.Driver).Msg("chat-room-service starting")
	if err := r.Run(addr); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}
