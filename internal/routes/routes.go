package routes

import (
	"context"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/peptok/CoachMarketBack/internal/cache"
	"github.com/peptok/CoachMarketBack/internal/config"
	"github.com/peptok/CoachMarketBack/internal/handlers"
	"github.com/peptok/CoachMarketBack/internal/messaging"
	"github.com/peptok/CoachMarketBack/internal/middleware"
	"github.com/peptok/CoachMarketBack/internal/models"
	"github.com/peptok/CoachMarketBack/internal/repository"
	"github.com/peptok/CoachMarketBack/internal/services"
	adminws "github.com/peptok/CoachMarketBack/internal/websocket"
	"go.uber.org/zap"
)

// RegisterRoutes wires repositories, services and handlers onto app. The
// admin hub and, when brokers are configured, the Kafka match consumer run
// until ctx is cancelled.
func RegisterRoutes(
	ctx context.Context,
	app *fiber.App,
	cfg *config.Config,
	db *pgxpool.Pool,
	matchCache *cache.MatchCache,
	logger *zap.Logger,
) {
	coachRepo := repository.NewCoachRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	pricingRepo := repository.NewPricingConfigRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	adminHub := adminws.NewHub(logger.Named("admin_ws"))
	go adminHub.Run(ctx)

	matchmakingService := services.NewMatchmakingService(coachRepo, matchRepo, matchCache, logger.Named("matching"))
	pricingService := services.NewPricingService(pricingRepo, cfg.DefaultPricing, adminHub, logger.Named("pricing"))
	if cfg.KafkaEnabled() {
		consumer := messaging.NewKafkaMatchConsumer(messaging.Config{
			Brokers:       cfg.KafkaBrokers,
			GroupID:       cfg.KafkaConsumerGroup,
			RequestTopic:  cfg.KafkaRequestTopic,
			ResponseTopic: cfg.KafkaResponseTopic,
			ErrorTopic:    cfg.KafkaErrorTopic,
		}, matchmakingService, logger.Named("kafka"))
		go func() {
			if err := consumer.Run(ctx); err != nil {
				logger.Error("kafka match consumer stopped", zap.Error(err))
			}
		}()
	}

	sessionService := services.NewSessionService(
		db,
		sessionRepo,
		paymentRepo,
		coachRepo,
		matchRepo,
		pricingService,
		logger.Named("sessions"),
	)

	healthHandler := handlers.NewHealthHandler(db, coachRepo, matchCache, logger)
	coachHandler := handlers.NewCoachHandler(coachRepo, sessionService, logger)
	matchHandler := handlers.NewMatchHandler(matchmakingService, cfg.MaxMatchesPerRequest, logger)
	pricingHandler := handlers.NewPricingHandler(pricingService, logger)
	sessionHandler := handlers.NewSessionHandler(sessionService, logger)
	adminWSHandler := handlers.NewAdminWSHandler(adminHub, cfg.JWTSecret)

	app.Get("/health", healthHandler.Health)

	api := app.Group("/api")

	api.Use("/v1/ws", adminWSHandler.WebSocketAuth)
	api.Get("/v1/ws/admin", websocket.New(adminWSHandler.HandleWebSocket))

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	coaches := authProtected.Group("/coaches")
	coaches.Get("", coachHandler.ListCoaches)
	coaches.Get("/me/earnings", middleware.RequireRoles(models.RoleCoach), coachHandler.MyEarnings)
	coaches.Get("/:id", coachHandler.GetCoach)

	matches := authProtected.Group("/matches")
	matches.Post("", middleware.RequireRoles(models.RoleCompany, models.RoleAdmin), matchHandler.CreateMatches)
	matches.Get("/stats", middleware.RequireRoles(models.RoleAdmin), matchHandler.Stats)
	matches.Get("/:requestId", middleware.RequireRoles(models.RoleCompany, models.RoleAdmin), matchHandler.GetMatches)

	pricing := authProtected.Group("/pricing")
	pricing.Get("/config", pricingHandler.GetConfig)
	pricing.Put("/config", middleware.RequireRoles(models.RoleAdmin), pricingHandler.UpdateConfig)
	pricing.Post("/preview", middleware.RequireRoles(models.RoleCompany, models.RoleCoach), pricingHandler.Preview)

	sessions := authProtected.Group("/sessions")
	sessions.Post("/book", middleware.RequireRoles(models.RoleCompany), sessionHandler.BookSession)
	sessions.Get("", middleware.RequireRoles(models.RoleCompany, models.RoleCoach), sessionHandler.ListSessions)
	sessions.Get("/:id", middleware.RequireRoles(models.RoleCompany, models.RoleCoach), sessionHandler.GetSession)
}
