package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/medisure/claims-portal/internal/admin"
	"github.com/medisure/claims-portal/internal/auth"
	"github.com/medisure/claims-portal/internal/claim"
	"github.com/medisure/claims-portal/internal/config"
	"github.com/medisure/claims-portal/internal/events"
	"github.com/medisure/claims-portal/internal/middleware"
	"github.com/medisure/claims-portal/internal/secrets"
	"github.com/medisure/claims-portal/internal/storage"
	"github.com/medisure/claims-portal/internal/user"
)

// Deps aggregates shared dependencies required to wire routes. Nil entries
// fall back to in-memory implementations in development.
type Deps struct {
	Cfg       config.Config
	Logger    *slog.Logger
	Dynamo    *dynamodb.Client
	DB        *pgxpool.Pool
	Cache     *redis.Client
	Store     storage.ObjectStore
	Publisher events.Publisher
	Secrets   secrets.Provider
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce a durable store outside of dev, even though config also checks.
	if !d.Cfg.IsDev() && d.Dynamo == nil && d.DB == nil {
		return fmt.Errorf("a claim store is required when APP_ENV=%s", d.Cfg.AppEnv)
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Repositories: DynamoDB when a table is configured, Postgres as the
	// relational alternative, in-memory otherwise.
	var userRepo user.Repository
	var claimRepo claim.Repository
	switch {
	case d.Dynamo != nil && d.Cfg.DynamoTable != "":
		userRepo = user.NewDynamoRepository(d.Dynamo, d.Cfg.DynamoTable)
		claimRepo = claim.NewDynamoRepository(d.Dynamo, d.Cfg.DynamoTable)
	case d.DB != nil:
		userRepo = user.NewPostgresRepository(d.DB)
		claimRepo = claim.NewPostgresRepository(d.DB)
	default:
		userRepo = user.NewMemoryRepository()
		claimRepo = claim.NewMemoryRepository()
	}

	store := d.Store
	if store == nil {
		store = storage.NewMemoryStore()
	}
	publisher := d.Publisher
	if publisher == nil {
		publisher = events.NewLogPublisher(d.Logger)
	}
	secretProvider := d.Secrets
	if secretProvider == nil {
		secretProvider = secrets.Static(d.Cfg.JWTSecret)
	}

	// Services and handlers
	userSvc := user.NewService(userRepo)
	tokens := auth.NewTokenService(secretProvider, d.Cfg.TokenTTL)
	authSvc := auth.NewService(d.Cfg, userRepo, userSvc, tokens)
	claimSvc := claim.NewService(claimRepo, store, publisher, d.Logger)

	authHandler := auth.NewHandler(userSvc, authSvc)
	userHandler := user.NewHandler(userSvc)
	claimHandler := claim.NewHandler(claimSvc)
	adminHandler := admin.NewHandler(userSvc, claimSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	var rateLimiter fiber.Handler
	if d.Cache != nil {
		rateLimiter = middleware.LoginRateLimit(d.Cache, 5)
	}
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	// Protected routes
	jwtmw := middleware.JWTAuth(tokens)
	protected := api.Group("", jwtmw)
	RegisterUserRoutes(protected, userHandler)

	var idem fiber.Handler
	if d.Cache != nil {
		idem = middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	}
	RegisterClaimRoutes(protected, claimHandler, idem)

	adminGroup := protected.Group("/admin", middleware.RequireRole(user.RoleAdmin))
	RegisterAdminRoutes(adminGroup, adminHandler)

	return nil
}
