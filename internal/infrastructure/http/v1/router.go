// Package v1 provides HTTP API version 1.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tourledger/internal/core/apperror"
	"tourledger/internal/domain/auth"
	"tourledger/internal/infrastructure/http/v1/handlers"
	"tourledger/internal/infrastructure/http/v1/middleware"
	"tourledger/internal/infrastructure/metrics"
	"tourledger/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// DB is pinged by the readiness probe. Optional.
	DB handlers.Pinger

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	SettlementService handlers.SettlementService
	BillService       handlers.BillService

	// Metrics, when set, instruments requests and serves /metrics.
	Metrics *metrics.Metrics

	// Development keeps gin in debug mode.
	Development bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
	}
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.DB)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.JWTValidator))
	v1.Use(middleware.RequireRole(auth.RoleAccountant, auth.RoleManager))
	{
		registerSettlementRoutes(v1, cfg)
		registerBillRoutes(v1, cfg)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": apperror.CodeNotFound, "message": "route not found"})
	})

	return router
}

func registerSettlementRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.SettlementService == nil {
		return
	}
	h := handlers.NewSettlementHandler(handlers.NewBaseHandler(), cfg.SettlementService, observer(cfg.Metrics))

	rg.GET("/groups/:id/settlement", h.Get)
	rg.POST("/settlements/preview", h.Preview)
}

func registerBillRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.BillService == nil {
		return
	}
	var obs handlers.BillObserver
	if cfg.Metrics != nil {
		obs = cfg.Metrics
	}
	h := handlers.NewBillHandler(handlers.NewBaseHandler(), cfg.BillService, obs)

	rg.GET("/groups/:id/bill", h.Get)
}

// observer avoids handing handlers a typed nil.
func observer(m *metrics.Metrics) handlers.SettlementObserver {
	if m == nil {
		return nil
	}
	return m
}
