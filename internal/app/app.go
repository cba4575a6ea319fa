// Package app wires the application together: configuration, shared
// infrastructure, and the feature modules with their HTTP routes.
package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gatherly/server/internal/module/auth"
	"github.com/gatherly/server/internal/module/negotiation"
	"github.com/gatherly/server/internal/module/notification"
	"github.com/gatherly/server/internal/module/party"
	sharedcache "github.com/gatherly/server/internal/shared/cache"
	"github.com/gatherly/server/internal/shared/config"
	"github.com/gatherly/server/internal/shared/database"
	"github.com/gatherly/server/internal/shared/events"
	"github.com/gatherly/server/internal/shared/logger"
	"github.com/gatherly/server/internal/shared/middleware"
	"github.com/gatherly/server/internal/utils/metrics"
)

// App holds the application dependencies and module handlers.
type App struct {
	config    *config.Config
	db        *gorm.DB
	redis     redis.UniversalClient
	router    *gin.Engine
	logger    *logger.Logger
	zapLogger *zap.Logger
	eventBus  *events.Bus
	metrics   *metrics.Metrics

	tokenManager *auth.TokenManager

	partyHandler        *party.Handler
	partyAdmin          *party.AdminHandler
	negotiationHandler  *negotiation.Handler
	negotiationAdmin    *negotiation.AdminHandler
	notificationHandler *notification.Handler
	notificationService *notification.Service
}

// New creates and wires the application.
func New(cfg *config.Config) (*App, error) {
	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	// Zap logger for modules that use zap
	zapLog, err := logger.NewZapLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("init zap logger: %w", err)
	}

	app := &App{
		config:    cfg,
		logger:    log,
		zapLogger: zapLog,
		metrics:   metrics.New("gatherly"),
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	app.db = db

	if err := db.AutoMigrate(
		&party.Party{},
		&negotiation.Collaboration{},
		&negotiation.Counter{},
		&notification.Notification{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	// Redis is optional, log warning but continue
	if cfg.Redis.Address != "" {
		redisClient, err := sharedcache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn("redis connection failed, unread counts will not be cached", logger.Err(err))
		} else {
			app.redis = redisClient
		}
	}

	app.eventBus = events.NewBus(zapLog)
	app.router = app.setupRouter()

	app.initModules()
	app.registerEventHandlers()
	app.registerRoutes()

	return app, nil
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter() *gin.Engine {
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.Metrics(a.metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// initModules constructs all feature modules and their handlers.
func (a *App) initModules() {
	a.tokenManager = auth.NewTokenManager(&auth.Config{
		Secret:      a.config.Auth.JWTSecret,
		TokenExpiry: a.config.Auth.TokenExpiry,
		Issuer:      a.config.Auth.Issuer,
	})

	// Party module
	partyRepo := party.NewRepository(a.db)
	partyService := party.NewService(partyRepo, a.zapLogger)
	a.partyHandler = party.NewHandler(partyService, a.tokenManager, a.metrics)
	a.partyAdmin = party.NewAdminHandler(partyService, a.metrics)

	// Negotiation module
	negotiationRepo := negotiation.NewRepository(a.db)
	directory := negotiation.NewPartyDirectory(a.db)
	negotiationService := negotiation.NewService(negotiationRepo, directory, a.eventBus, a.metrics, a.zapLogger,
		negotiation.Limits{MaxRounds: a.config.Negotiation.MaxRounds})
	a.negotiationHandler = negotiation.NewHandler(negotiationService)
	a.negotiationAdmin = negotiation.NewAdminHandler(negotiationService)

	// Notification module
	notificationRepo := notification.NewRepository(a.db)
	a.notificationService = notification.NewService(notificationRepo, a.redis, a.metrics, a.zapLogger)
	a.notificationHandler = notification.NewHandler(a.notificationService)
}

// registerEventHandlers subscribes modules to workflow events.
func (a *App) registerEventHandlers() {
	a.eventBus.Register(notification.NewEventHandler(a.notificationService, a.zapLogger))
}

// registerRoutes mounts all module routes on the router.
func (a *App) registerRoutes() {
	v1 := a.router.Group("/api/v1")

	public := v1.Group("")

	authed := v1.Group("")
	authed.Use(middleware.RequireAuth(a.tokenManager))

	admin := v1.Group("/admin")
	admin.Use(middleware.RequireAuth(a.tokenManager))
	admin.Use(middleware.RequireAdmin())

	a.partyHandler.RegisterRoutes(public, authed)
	a.partyAdmin.RegisterRoutes(admin)
	a.negotiationHandler.RegisterRoutes(authed)
	a.negotiationAdmin.RegisterRoutes(admin)
	a.notificationHandler.RegisterRoutes(authed)
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop releases application resources.
func (a *App) Stop() {
	if a.redis != nil {
		if err := sharedcache.Close(a.redis); err != nil {
			a.logger.Warn("close redis", logger.Err(err))
		}
	}
	if err := database.Close(a.db); err != nil {
		a.logger.Warn("close database", logger.Err(err))
	}
	if a.zapLogger != nil {
		_ = a.zapLogger.Sync()
	}
}
