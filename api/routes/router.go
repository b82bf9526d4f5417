package routes

import (
	"net/http"
	"time"

	"ingrezzi/internal/auth"
	"ingrezzi/internal/authorizations"
	"ingrezzi/internal/checkin"
	"ingrezzi/internal/events"
	"ingrezzi/internal/notifications"
	"ingrezzi/internal/shared/config"
	"ingrezzi/internal/shared/database"
	"ingrezzi/internal/tickets"
	"ingrezzi/pkg/cache"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	notifier notifications.Service

	cacheService cache.Service
	authRepo     auth.Repository
	eventRepo    events.Repository
	authzService authorizations.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, notifier notifications.Service) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		notifier: notifier,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	// Shared dependencies used across modules
	r.cacheService = cache.NewService(r.db.GetRedisClient())
	r.authRepo = auth.NewRepository(r.db.GetPostgreSQL())
	r.eventRepo = events.NewRepository(r.db.GetPostgreSQL())

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)
		r.setupEventRoutes(api)
		r.setupTicketRoutes(api)
		r.setupAuthorizationRoutes(api)
		r.setupCheckinRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "ingrezzi-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "ingrezzi-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authService := auth.NewService(r.authRepo, r.config)
	authController := auth.NewController(authService)
	authRouter := auth.NewRouter(authController)

	authRouter.SetupRoutes(rg)
}

// setupEventRoutes configures event management routes
func (r *Router) setupEventRoutes(rg *gin.RouterGroup) {
	eventService := events.NewService(r.eventRepo, r.authRepo)
	eventService.SetCacheService(r.cacheService)
	eventController := events.NewController(eventService)

	events.SetupEventRoutes(rg, eventController)
}

// setupTicketRoutes configures ticket issuance and listing routes
func (r *Router) setupTicketRoutes(rg *gin.RouterGroup) {
	ticketRepo := tickets.NewRepository(r.db.GetPostgreSQL())
	ticketService := tickets.NewService(ticketRepo, r.eventRepo, r.notifier)
	ticketService.SetCacheService(r.cacheService)
	ticketController := tickets.NewController(ticketService)

	tickets.SetupTicketRoutes(rg, ticketController)
}

// setupAuthorizationRoutes configures check-in grant management routes
func (r *Router) setupAuthorizationRoutes(rg *gin.RouterGroup) {
	authzRepo := authorizations.NewRepository(r.db.GetPostgreSQL())
	r.authzService = authorizations.NewService(authzRepo, r.eventRepo, r.authRepo, r.notifier)
	authzController := authorizations.NewController(r.authzService)

	authorizations.SetupAuthorizationRoutes(rg, authzController)
}

// setupCheckinRoutes configures the redemption engine routes
func (r *Router) setupCheckinRoutes(rg *gin.RouterGroup) {
	checkinRepo := checkin.NewRepository(r.db.GetPostgreSQL())
	checkinService := checkin.NewService(checkinRepo, r.authzService, r.db.GetRedisClient(), r.config, r.notifier)
	checkinController := checkin.NewController(checkinService)

	checkin.SetupCheckinRoutes(rg, checkinController)
}
