package api

import (
	"tms/api/company"
	"tms/api/health"
	"tms/api/middleware"
	"tms/api/shipmentorder"
	"tms/config"

	"github.com/gin-gonic/gin"
)

// Router Route configuration
type Router struct {
	engine                  *gin.Engine
	config                  *config.Config
	healthController        *health.Controller
	companyController       *company.Controller
	shipmentOrderController *shipmentorder.Controller
}

// NewRouter Create route configuration
func NewRouter(
	cfg *config.Config,
	healthController *health.Controller,
	companyController *company.Controller,
	shipmentOrderController *shipmentorder.Controller,
) *Router {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Middleware order matters: the request id must exist before anything logs
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.RecoveryMiddleware())
	engine.Use(middleware.LoggingMiddleware())
	engine.Use(middleware.CORSMiddleware(&cfg.CORS))
	engine.Use(middleware.RateLimitMiddleware(&cfg.Server.RateLimit))

	return &Router{
		engine:                  engine,
		config:                  cfg,
		healthController:        healthController,
		companyController:       companyController,
		shipmentOrderController: shipmentOrderController,
	}
}

// SetupRoutes Set up all routes
func (r *Router) SetupRoutes() {
	apiGroup := r.engine.Group("/api/v1")
	{
		r.healthController.RegisterRoutes(apiGroup)
		r.companyController.RegisterRoutes(apiGroup)
		r.shipmentOrderController.RegisterRoutes(apiGroup)
	}

	r.engine.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"name":    r.config.App.Name,
			"version": r.config.App.Version,
			"env":     r.config.App.Env,
			"health":  "/api/v1/health",
		})
	})
}

// GetEngine Get Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
