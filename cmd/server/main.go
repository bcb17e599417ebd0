package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhattran/cardfolio/adapters/event"
	httpAdapter "github.com/nhattran/cardfolio/adapters/http"
	"github.com/nhattran/cardfolio/adapters/media_storage"
	"github.com/nhattran/cardfolio/adapters/persistence"
	authUC "github.com/nhattran/cardfolio/internal/application/usecase/auth"
	avatarUC "github.com/nhattran/cardfolio/internal/application/usecase/avatar"
	cardUC "github.com/nhattran/cardfolio/internal/application/usecase/card"
	"github.com/nhattran/cardfolio/internal/config"
	"github.com/nhattran/cardfolio/internal/domain/card"
	"github.com/nhattran/cardfolio/pkg/auth"
	"github.com/nhattran/cardfolio/pkg/logger"
	"github.com/nhattran/cardfolio/pkg/tracing"
)

func main() {
	fmt.Println("Start Cardfolio API Server...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)

	if cfg.Jaeger.OTLPEndpoint != "" {
		tp, err := tracing.NewTracerProvider(cfg, appLogger, "cardfolio-api")
		if err != nil {
			appLogger.Fatal("cannot init tracer", err)
		}
		defer tp.Shutdown(context.Background())
	}

	// Initialize dependencies
	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		log.Fatalf("FATAL: cannot connect Postgres: %v", err)
	}
	defer dbPool.Close()

	redisClient, err := persistence.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("FATAL: cannot connect Redis: %v", err)
	}
	defer redisClient.Close()

	kafkaClient, err := event.NewKafkaProducerClient(cfg)
	if err != nil {
		log.Fatalf("FATAL: cannot init Kafka: %v", err)
	}
	defer kafkaClient.Close()

	// Repositories
	userRepo := persistence.NewPostgresUserRepo(dbPool)
	cardRepo := persistence.NewPostgresCardRepo(dbPool, appLogger)
	cardCache := persistence.NewRedisCardCache(redisClient)

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	uploader, err := media_storage.NewCloudinaryAdapter(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize uploader: %v", err)
	}

	// One visibility policy for every read path.
	policy := card.Policy{LegacyVisibility: cfg.Cards.LegacyVisibility}

	// Use Cases
	loginUseCase := authUC.NewLoginUseCase(userRepo, jwtSvc, appLogger)
	getCardUseCase := cardUC.NewGetCardUseCase(cardRepo, cardCache, policy, kafkaClient, appLogger)
	updateCardUseCase := cardUC.NewUpdateCardUseCase(cardRepo, cardCache, kafkaClient, appLogger)
	listOwnCardsUseCase := cardUC.NewListOwnCardsUseCase(cardRepo)
	uploadAvatarUseCase := avatarUC.NewUploadAvatarUseCase(
		cardRepo, cardCache, uploader, kafkaClient, cfg.Cards.MaxAvatarBytes, appLogger,
	)

	// HTTP Handlers
	authHandler := httpAdapter.NewAuthHandler(loginUseCase)
	cardHandler := httpAdapter.NewCardHandler(
		getCardUseCase,
		updateCardUseCase,
		listOwnCardsUseCase,
		uploadAvatarUseCase,
	)

	// Middleware
	authMiddleware := httpAdapter.AuthMiddleware(jwtSvc)
	optionalAuthMiddleware := httpAdapter.OptionalAuthMiddleware(jwtSvc)
	errorMiddleware := httpAdapter.ErrorMiddleware(appLogger)

	// Setup Gin router
	router := gin.Default()
	router.Use(errorMiddleware)

	api := router.Group("/api")
	{

		admin := api.Group("/admin")
		{

			adminAuth := admin.Group("/auth")
			adminAuth.POST("/login", authHandler.Login)

			adminPrivate := admin.Group("/")
			adminPrivate.Use(authMiddleware)
			{

				adminPrivate.GET("/health-auth", func(c *gin.Context) {

					userID, ok := httpAdapter.GetOwnerIDFromGinContext(c)
					if !ok {
						c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot get user id from context"})
						return
					}
					c.JSON(http.StatusOK, gin.H{
						"status":   "OK",
						"message":  "Authentication middleware is working!",
						"owner_id": userID,
					})
				})

				adminPrivate.GET("/cards", cardHandler.ListOwnCards)
				adminPrivate.PUT("/cards/:id", cardHandler.UpdateCard)
			}
		}

		public := api.Group("/")
		{
			public.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })

			viewer := public.Group("/")
			viewer.Use(optionalAuthMiddleware)
			{
				viewer.GET("/cards/:id", cardHandler.GetCard)
				viewer.GET("/users/:id/card", cardHandler.GetPrimaryCard)
				// Optional auth keeps the upload use case in charge of its
				// own rejection order.
				viewer.POST("/cards/avatar", cardHandler.UploadAvatar)
			}
		}
	}

	appLogger.Info("Server running on port " + cfg.App.Port)
	if err := router.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Cannot run server: %v", err)
	}
}
